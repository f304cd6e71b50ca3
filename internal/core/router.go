package core

import (
	"context"
	"encoding/json"
	"fmt"
)

// dispatch routes one command to its handler and reports any refusal to the issuing client.
func (h *Hub) dispatch(ctx context.Context, c *Client, cmd Command) {
	h.log.Debug().Str("conn_id", c.ID).Str("command", cmd.Kind.String()).Msg("command received")

	var err error
	switch cmd.Kind {
	case CommandJoin:
		err = h.join(ctx, c, cmd.Payload)
	case CommandLeave:
		err = h.leave(c, cmd.Payload)
	case CommandMessage:
		err = h.message(c, cmd.Payload)
	case CommandCount:
		err = h.count(c, cmd.Payload)
	default:
		err = NewError(ErrBadRequest, fmt.Sprintf("Unknown command %d", cmd.Kind))
	}
	if err != nil {
		h.fail(c, cmd.Kind, err)
	}
}

// resolve looks up the registered user behind c and the named channel.
func (h *Hub) resolve(c *Client, channelName string) (*Client, *Channel, error) {
	user, ok := h.clients.Get(c.ID)
	if !ok {
		return nil, nil, NewError(ErrClientNotFound, "User does not exist for client with id "+c.ID)
	}
	ch, ok := h.channels.Get(channelName)
	if !ok {
		return nil, nil, NewError(ErrChannelNotFound, "Channel does not exist with name "+channelName)
	}
	return user, ch, nil
}

func (h *Hub) join(ctx context.Context, c *Client, payload json.RawMessage) error {
	var p JoinPayload
	if err := h.payloads.decode(payload, &p); err != nil {
		return err
	}
	user, ch, err := h.resolve(c, p.Channel)
	if err != nil {
		return err
	}

	if !ch.IsPrivate() {
		user.Join(ch)
		h.log.Info().Str("conn_id", user.ID).Str("user", user.Name).Str("channel", ch.Name).Msg("user joined channel")
		return nil
	}

	if p.Password == nil || *p.Password == "" {
		return NewError(ErrPasswordRequired, "You must provide a password to join a private channel")
	}

	// Park further commands from this connection until the check completes.
	user.pending = true
	go h.verify(ctx, user, ch, *p.Password)
	return nil
}

// verify runs the password check off the hub goroutine and posts the result back.
func (h *Hub) verify(ctx context.Context, user *Client, ch *Channel, password string) {
	ok, err := ch.VerifyPassword(ctx, password)
	select {
	case h.verified <- verification{user: user, channel: ch, ok: ok, err: err}:
	case <-ctx.Done():
	}
}

func (h *Hub) completeJoin(ctx context.Context, res verification) {
	user := res.user
	if current, ok := h.clients.Get(user.ID); !ok || current != user {
		h.log.Debug().Str("conn_id", user.ID).Str("channel", res.channel.Name).Msg("password check finished after disconnect")
		return
	}
	user.pending = false

	switch {
	case res.err != nil:
		h.log.Warn().Err(res.err).Str("channel", res.channel.Name).Msg("password verification error")
		h.fail(user, CommandJoin, NewError(ErrInvalidPassword, "Invalid password"))
	case !res.ok:
		h.fail(user, CommandJoin, NewError(ErrInvalidPassword, "Invalid password"))
	default:
		user.Join(res.channel)
		h.log.Info().Str("conn_id", user.ID).Str("user", user.Name).Str("channel", res.channel.Name).Msg("user joined channel")
	}

	h.drainBacklog(ctx, user)
}

func (h *Hub) leave(c *Client, payload json.RawMessage) error {
	var p LeavePayload
	if err := h.payloads.decode(payload, &p); err != nil {
		return err
	}
	user, ch, err := h.resolve(c, p.Channel)
	if err != nil {
		return err
	}
	if !user.IsJoined(ch) {
		return NewError(ErrNotJoined, "You are not joined to the channel "+ch.Name)
	}

	user.Leave(ch)
	h.log.Info().Str("conn_id", user.ID).Str("user", user.Name).Str("channel", ch.Name).Msg("user left channel")
	return nil
}

func (h *Hub) message(c *Client, payload json.RawMessage) error {
	var p MessagePayload
	if err := h.payloads.decode(payload, &p); err != nil {
		return err
	}
	user, ch, err := h.resolve(c, p.Channel)
	if err != nil {
		return err
	}

	msg := Message{Content: p.Content, Channel: ch, From: user}
	if !msg.CanBeDelivered() {
		return NewError(ErrNotJoined, "You must be joined to the channel to post messages")
	}

	h.log.Debug().Str("user", user.Name).Str("channel", ch.Name).Msg("sending message")
	msg.Send()
	return nil
}

func (h *Hub) count(c *Client, payload json.RawMessage) error {
	var p CountPayload
	if err := h.payloads.decode(payload, &p); err != nil {
		return err
	}
	user, ch, err := h.resolve(c, p.Channel)
	if err != nil {
		return err
	}
	if !user.IsJoined(ch) {
		return NewError(ErrNotJoined, "You must be joined to the channel to execute commands")
	}

	ch.SendUsersCountTo(user)
	return nil
}
