package core

import (
	"fmt"
	"math/rand/v2"
)

const clientEventBuffer = 32

// Client is a chat participant bound to one live connection.
// Everything except Events is owned by the hub goroutine.
type Client struct {
	ID     string
	Name   string
	Events chan *Event

	channels map[string]*Channel

	// pending is set while a password check for a join is in flight;
	// commands arriving meanwhile wait in backlog.
	pending bool
	backlog []Command
}

// NewClient constructs a client with an initialized event queue.
// An empty name is replaced by a generated one.
func NewClient(id, name string) *Client {
	if name == "" {
		name = generateName()
	}
	return &Client{
		ID:       id,
		Name:     name,
		Events:   make(chan *Event, clientEventBuffer),
		channels: make(map[string]*Channel),
	}
}

func generateName() string {
	return fmt.Sprintf("user%010d", rand.Int64N(10_000_000_000))
}

// Join adds the client to the channel on both sides of the membership relation.
func (c *Client) Join(ch *Channel) {
	c.channels[ch.Name] = ch
	ch.onUserJoined(c)
}

// Leave removes the client from the channel on both sides of the membership relation.
func (c *Client) Leave(ch *Channel) {
	ch.removeUser(c)
	delete(c.channels, ch.Name)
}

// LeaveAll drops every membership of the client. No events are emitted.
func (c *Client) LeaveAll() {
	for name, ch := range c.channels {
		ch.removeUser(c)
		delete(c.channels, name)
	}
}

// IsJoined reports whether the client is a member of the channel.
func (c *Client) IsJoined(ch *Channel) bool {
	_, ok := c.channels[ch.Name]
	return ok
}

// JoinedChannels returns the names of joined channels.
func (c *Client) JoinedChannels() []string {
	names := make([]string, 0, len(c.channels))
	for name := range c.channels {
		names = append(names, name)
	}
	return names
}

// SendMessageToChannel delivers content from this client to every member of ch.
func (c *Client) SendMessageToChannel(content string, ch *Channel) {
	ch.broadcast(&Event{
		Kind:    EventMessage,
		Channel: ch.Name,
		User:    c.Name,
		Content: content,
	})
}

// SendEvent queues an event to this client only.
// Returns false if the queue is full and the event was dropped.
func (c *Client) SendEvent(ev *Event) bool {
	select {
	case c.Events <- ev:
		return true
	default:
		// Drop if slow consumer.
		return false
	}
}
