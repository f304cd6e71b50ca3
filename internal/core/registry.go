package core

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
)

// ChannelConfig describes one channel of the fixed channel set.
type ChannelConfig struct {
	Name         string
	PasswordHash string
}

// ChannelRegistry maps channel names to channels. It is populated once and never changes.
type ChannelRegistry struct {
	channels map[string]*Channel
}

// NewChannelRegistry constructs every configured channel and starts their broadcasts.
func NewChannelRegistry(configs []ChannelConfig, verifier PasswordVerifier, interval time.Duration, logger *zerolog.Logger) (*ChannelRegistry, error) {
	r := &ChannelRegistry{channels: make(map[string]*Channel, len(configs))}
	for _, cfg := range configs {
		if _, exists := r.channels[cfg.Name]; exists {
			r.StopAll()
			return nil, fmt.Errorf("duplicate channel %q", cfg.Name)
		}
		if cfg.PasswordHash != "" && verifier == nil {
			r.StopAll()
			return nil, fmt.Errorf("channel %q is private but no password verifier is configured", cfg.Name)
		}
		r.channels[cfg.Name] = NewChannel(cfg.Name, cfg.PasswordHash, verifier, interval, logger)
	}
	return r, nil
}

// Get returns the channel with the given name.
func (r *ChannelRegistry) Get(name string) (*Channel, bool) {
	ch, ok := r.channels[name]
	return ch, ok
}

// All returns every channel ordered by name.
func (r *ChannelRegistry) All() []*Channel {
	out := make([]*Channel, 0, len(r.channels))
	for _, ch := range r.channels {
		out = append(out, ch)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// StopAll stops the broadcast task of every channel.
func (r *ChannelRegistry) StopAll() {
	for _, ch := range r.channels {
		ch.Stop()
	}
}

// ClientRegistry maps connection ids to clients. It is only touched by the hub goroutine.
type ClientRegistry struct {
	clients map[string]*Client
}

// NewClientRegistry returns an empty registry.
func NewClientRegistry() *ClientRegistry {
	return &ClientRegistry{clients: make(map[string]*Client)}
}

// Add registers a client under its connection id.
func (r *ClientRegistry) Add(c *Client) {
	r.clients[c.ID] = c
}

// Get returns the client registered for id.
func (r *ClientRegistry) Get(id string) (*Client, bool) {
	c, ok := r.clients[id]
	return c, ok
}

// Remove deletes the client registered for id and returns it.
func (r *ClientRegistry) Remove(id string) (*Client, bool) {
	c, ok := r.clients[id]
	if ok {
		delete(r.clients, id)
	}
	return c, ok
}

// Len returns the number of registered clients.
func (r *ClientRegistry) Len() int {
	return len(r.clients)
}
