package core

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

const (
	hashRoom2   = "hash-room-2"
	longEnough  = time.Hour
	quietPeriod = 150 * time.Millisecond
)

// fakeVerifier maps hashes to the plaintext they were made from.
type fakeVerifier map[string]string

func (f fakeVerifier) Verify(_ context.Context, hash, password string) (bool, error) {
	want, ok := f[hash]
	if !ok {
		return false, errors.New("malformed hash")
	}
	return want == password, nil
}

// gatedVerifier blocks every check until release is closed.
type gatedVerifier struct {
	started chan struct{}
	release chan struct{}
	inner   PasswordVerifier
}

func (g *gatedVerifier) Verify(ctx context.Context, hash, password string) (bool, error) {
	g.started <- struct{}{}
	select {
	case <-g.release:
	case <-ctx.Done():
		return false, ctx.Err()
	}
	return g.inner.Verify(ctx, hash, password)
}

var testChannels = []ChannelConfig{
	{Name: "room-1"},
	{Name: "room-2", PasswordHash: hashRoom2},
}

func startHub(t *testing.T, verifier PasswordVerifier, interval time.Duration) *Hub {
	t.Helper()

	if verifier == nil {
		verifier = fakeVerifier{hashRoom2: "secret"}
	}
	channels, err := NewChannelRegistry(testChannels, verifier, interval, nil)
	if err != nil {
		t.Fatalf("new channel registry: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	hub := NewHub(channels, nil)
	hub.calls = make(chan func())
	go hub.Run(ctx)

	t.Cleanup(func() {
		cancel()
		channels.StopAll()
	})
	return hub
}

func connect(t *testing.T, hub *Hub, id string) *Client {
	t.Helper()
	c := NewClient(id, "")
	hub.RegisterClient(c)
	return c
}

func command(t *testing.T, kind CommandKind, payload any) Command {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return Command{Kind: kind, Payload: raw}
}

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

// mustNoEvent fails if an event of the given kind shows up within quietPeriod.
func mustNoEvent(t *testing.T, ch <-chan *Event, kind EventKind) {
	t.Helper()

	deadline := time.After(quietPeriod)
	for {
		select {
		case ev := <-ch:
			if ev != nil && ev.Kind == kind {
				t.Fatalf("unexpected %v event: %+v", kind, ev)
			}
		case <-deadline:
			return
		}
	}
}

func mustFail(t *testing.T, c *Client, code string) *CoreError {
	t.Helper()
	ev := mustEvent(t, c.Events, EventCommandFailed)
	if ev.Error == nil || ev.Error.Code != code {
		t.Fatalf("expected %s failure, got %+v", code, ev.Error)
	}
	return ev.Error
}

// inspect runs fn on the hub goroutine and waits for it to return.
// It needs a hub started by startHub.
func (h *Hub) inspect(fn func()) {
	finished := make(chan struct{})
	select {
	case h.calls <- func() { fn(); close(finished) }:
		<-finished
	case <-h.done:
	}
}

// checkMembership asserts that both sides of every membership agree.
func checkMembership(t *testing.T, hub *Hub) {
	t.Helper()

	var problems []string
	hub.inspect(func() {
		for _, ch := range hub.channels.All() {
			ch.mu.RLock()
			for u := range ch.users {
				if !u.IsJoined(ch) {
					problems = append(problems, u.ID+" in "+ch.Name+" members but not joined")
				}
				if registered, ok := hub.clients.Get(u.ID); !ok || registered != u {
					problems = append(problems, u.ID+" in "+ch.Name+" but not registered")
				}
			}
			ch.mu.RUnlock()
		}
		for _, u := range hub.clients.clients {
			for _, ch := range u.channels {
				if !ch.HasUser(u) {
					problems = append(problems, u.ID+" joined "+ch.Name+" but not a member")
				}
			}
		}
	})
	for _, p := range problems {
		t.Error(p)
	}
}

func usersCount(hub *Hub, name string) int {
	ch, _ := hub.channels.Get(name)
	return ch.UsersCount()
}

func registered(hub *Hub, id string) bool {
	var ok bool
	hub.inspect(func() { _, ok = hub.clients.Get(id) })
	return ok
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}
