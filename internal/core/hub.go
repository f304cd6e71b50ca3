package core

import (
	"context"

	"github.com/rs/zerolog"
)

// Hub is the single scheduler of the chat core. Every command, registration and
// membership change runs on the goroutine that calls Run.
type Hub struct {
	channels *ChannelRegistry
	clients  *ClientRegistry
	payloads *payloadValidator
	log      *zerolog.Logger

	register   chan *Client
	unregister chan string
	requests   chan request
	verified   chan verification
	calls      chan func() // nil unless a test installs it
	done       chan struct{}
}

type request struct {
	client *Client
	cmd    Command
}

// verification is the outcome of a password check started by a join.
type verification struct {
	user    *Client
	channel *Channel
	ok      bool
	err     error
}

// NewHub creates a hub serving the given channel set.
func NewHub(channels *ChannelRegistry, logger *zerolog.Logger) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Hub{
		channels:   channels,
		clients:    NewClientRegistry(),
		payloads:   newPayloadValidator(),
		log:        logger,
		register:   make(chan *Client),
		unregister: make(chan string, 64),
		requests:   make(chan request, 256),
		verified:   make(chan verification, 16),
		done:       make(chan struct{}),
	}
}

// Channels returns the hub's channel registry.
func (h *Hub) Channels() *ChannelRegistry {
	return h.channels
}

// Run processes hub events until the context is canceled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.clients.Add(c)
			h.log.Debug().Str("conn_id", c.ID).Str("user", c.Name).Msg("client registered")
		case id := <-h.unregister:
			h.disconnect(id)
		case req := <-h.requests:
			h.handle(ctx, req)
		case res := <-h.verified:
			h.completeJoin(ctx, res)
		case fn := <-h.calls:
			fn()
		}
	}
}

// RegisterClient adds a client to the hub. It returns once the hub has recorded it,
// so commands submitted afterwards always see the client.
func (h *Hub) RegisterClient(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
	}
}

// UnregisterClient schedules removal of a client from every channel and from the hub.
// It does not wait for the removal.
func (h *Hub) UnregisterClient(c *Client) {
	select {
	case h.unregister <- c.ID:
	case <-h.done:
	default:
		// Queue full; hand off without holding up the caller.
		go func() {
			select {
			case h.unregister <- c.ID:
			case <-h.done:
			}
		}()
	}
}

// Submit queues a command issued on client's connection.
// Commands from one connection are processed in submission order.
func (h *Hub) Submit(c *Client, cmd Command) {
	select {
	case h.requests <- request{client: c, cmd: cmd}:
	case <-h.done:
	}
}

func (h *Hub) handle(ctx context.Context, req request) {
	if user, ok := h.clients.Get(req.client.ID); ok && user.pending {
		user.backlog = append(user.backlog, req.cmd)
		return
	}
	h.dispatch(ctx, req.client, req.cmd)
}

// drainBacklog replays parked commands until the backlog is empty or another join suspends.
func (h *Hub) drainBacklog(ctx context.Context, user *Client) {
	for len(user.backlog) > 0 && !user.pending {
		cmd := user.backlog[0]
		user.backlog = user.backlog[1:]
		h.dispatch(ctx, user, cmd)
	}
	if len(user.backlog) == 0 {
		user.backlog = nil
	}
}

func (h *Hub) disconnect(id string) {
	user, ok := h.clients.Remove(id)
	if !ok {
		h.log.Debug().Str("conn_id", id).Msg("disconnect for unknown client")
		return
	}

	h.log.Debug().Str("conn_id", id).Str("user", user.Name).Strs("channels", user.JoinedChannels()).Msg("user leaving all channels")
	user.LeaveAll()
	user.backlog = nil
}

func (h *Hub) fail(c *Client, kind CommandKind, err error) {
	ev := FailureEvent(err)

	logEv := h.log.Debug()
	if ev.Error.Code == ErrCodeClientNotFound {
		logEv = h.log.Error()
	}
	logEv.Str("conn_id", c.ID).
		Str("command", kind.String()).
		Str("code", ev.Error.Code).
		Strs("validation_errors", ev.Error.ValidationErrors).
		Msg(ev.Error.Error())

	c.SendEvent(ev)
}
