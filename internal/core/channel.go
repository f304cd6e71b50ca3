package core

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultBroadcastInterval is the period of the random number broadcast.
const DefaultBroadcastInterval = 5 * time.Second

// PasswordVerifier checks a plaintext password against a stored hash.
// A mismatch is reported as false with a nil error.
type PasswordVerifier interface {
	Verify(ctx context.Context, hash, password string) (bool, error)
}

// Channel is a named chat room with an optional password gate.
// Name and password hash never change after construction.
type Channel struct {
	Name string

	passwordHash string
	verifier     PasswordVerifier
	log          *zerolog.Logger

	mu    sync.RWMutex
	users map[*Client]struct{}

	stopOnce sync.Once
	stop     chan struct{}
	stopped  chan struct{}
}

// NewChannel constructs a channel and starts its random number broadcast.
// The broadcast runs until Stop is called.
func NewChannel(name, passwordHash string, verifier PasswordVerifier, interval time.Duration, logger *zerolog.Logger) *Channel {
	if interval <= 0 {
		interval = DefaultBroadcastInterval
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	chLog := logger.With().Str("channel", name).Logger()

	ch := &Channel{
		Name:         name,
		passwordHash: passwordHash,
		verifier:     verifier,
		log:          &chLog,
		users:        make(map[*Client]struct{}),
		stop:         make(chan struct{}),
		stopped:      make(chan struct{}),
	}
	go ch.runBroadcast(interval)
	return ch
}

// IsPrivate returns true if joining requires a password.
func (ch *Channel) IsPrivate() bool {
	return ch.passwordHash != ""
}

// VerifyPassword checks the candidate against the channel's password hash.
func (ch *Channel) VerifyPassword(ctx context.Context, candidate string) (bool, error) {
	if ch.verifier == nil {
		return false, errors.New("no password verifier configured")
	}
	return ch.verifier.Verify(ctx, ch.passwordHash, candidate)
}

// UsersCount returns the number of joined users.
func (ch *Channel) UsersCount() int {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	return len(ch.users)
}

// HasUser reports whether c is in the member set.
func (ch *Channel) HasUser(c *Client) bool {
	ch.mu.RLock()
	defer ch.mu.RUnlock()
	_, ok := ch.users[c]
	return ok
}

// SendUsersCountTo reports the member count to a single user.
func (ch *Channel) SendUsersCountTo(c *Client) {
	c.SendEvent(&Event{Kind: EventUsersCount, Channel: ch.Name, Count: ch.UsersCount()})
}

// Stop cancels the broadcast task and waits for it to exit. Safe to call more than once.
func (ch *Channel) Stop() {
	ch.stopOnce.Do(func() { close(ch.stop) })
	<-ch.stopped
}

func (ch *Channel) onUserJoined(c *Client) {
	ch.addUser(c)

	c.SendEvent(&Event{Kind: EventJoined, Channel: ch.Name})

	if !ch.IsPrivate() {
		ch.greet(c)
	}
}

func (ch *Channel) greet(c *Client) {
	c.SendEvent(&Event{Kind: EventGreeting, Channel: ch.Name, Content: "Hello " + c.Name})
}

func (ch *Channel) addUser(c *Client) {
	ch.mu.Lock()
	ch.users[c] = struct{}{}
	ch.mu.Unlock()
}

func (ch *Channel) removeUser(c *Client) {
	ch.mu.Lock()
	delete(ch.users, c)
	ch.mu.Unlock()
}

// broadcast sends an event to all users in the channel.
func (ch *Channel) broadcast(ev *Event) {
	ch.mu.RLock()
	defer ch.mu.RUnlock()

	for c := range ch.users {
		if !c.SendEvent(ev) {
			ch.log.Debug().Str("conn_id", c.ID).Str("event", ev.Kind.String()).Msg("event dropped, client queue full")
		}
	}
}

func (ch *Channel) runBroadcast(interval time.Duration) {
	defer close(ch.stopped)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ch.sendRandom(rand.Float64())
		case <-ch.stop:
			return
		}
	}
}

func (ch *Channel) sendRandom(n float64) {
	ch.broadcast(&Event{Kind: EventRandom, Channel: ch.Name, Number: n})
}
