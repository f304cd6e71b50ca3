package http

import (
	"context"
	"errors"
	"io"
	stdhttp "net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/chanchat-server/internal/config"
	"github.com/vovakirdan/chanchat-server/internal/core"
)

// wsReadLimit is the largest accepted frame. Content over 8000 characters in a smaller
// frame is answered with a validation failure.
const wsReadLimit = 1 << 20

var errRateLimited = errors.New("rate limit exceeded")

// WSHandler upgrades HTTP connections and bridges them to core.Client.
type WSHandler struct {
	hub       *core.Hub
	rateLimit config.RateLimit
	log       *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(hub *core.Hub, rateLimit config.RateLimit, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{hub: hub, rateLimit: rateLimit, log: logger}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	ctx := r.Context()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")
	conn.SetReadLimit(wsReadLimit)

	client := core.NewClient(uuid.NewString(), "")
	h.hub.RegisterClient(client)
	defer h.hub.UnregisterClient(client)

	connLog := h.log.With().Str("conn_id", client.ID).Str("user", client.Name).Logger()
	connLog.Debug().Str("remote_addr", r.RemoteAddr).Msg("ws connected")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, client, &connLog)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, client, &connLog)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	switch {
	case errors.Is(err, errRateLimited):
		status = websocket.StatusPolicyViolation
		reason = err.Error()
	case err != nil && !errors.Is(err, context.Canceled):
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != -1 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			connLog.Warn().Err(err).Msg("ws connection closed with error")
		}
	}

	connLog.Debug().Int("status", int(status)).Msg("ws disconnected")
	conn.Close(status, reason)
}

// readLoop charges the rate limiter for every frame, then hands the command to the hub.
func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, client *core.Client, log *zerolog.Logger) error {
	limiter := newRateLimiter(h.rateLimit)

	for {
		_, frame, err := conn.Read(ctx)
		if err != nil {
			return err
		}

		if !limiter.allow() {
			log.Warn().Msg("too many requests, disconnecting")
			failure := core.NewError(core.ErrRateLimited, "Too many requests, disconnecting.")
			if writeErr := wsjson.Write(ctx, conn, commandFailed(failure)); writeErr != nil {
				return writeErr
			}
			return errRateLimited
		}

		cmd, protoErr := inboundToCommand(frame)
		if protoErr != nil {
			log.Debug().Str("reason", protoErr.Message).Msg("rejected inbound frame")
			if writeErr := wsjson.Write(ctx, conn, commandFailed(protoErr)); writeErr != nil {
				return writeErr
			}
			continue
		}
		h.hub.Submit(client, cmd)
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *core.Client, log *zerolog.Logger) error {
	for {
		select {
		case event, ok := <-client.Events:
			if !ok {
				return nil
			}
			if err := wsjson.Write(ctx, conn, outboundFromEvent(event)); err != nil {
				log.Error().Err(err).Msg("write ws event")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
