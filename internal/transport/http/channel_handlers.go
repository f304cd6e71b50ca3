package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/chanchat-server/internal/core"
)

// ChannelHandlers provides HTTP handlers describing the configured channel set.
type ChannelHandlers struct {
	channels *core.ChannelRegistry
	log      *zerolog.Logger
}

// NewChannelHandlers creates a new channel handlers instance.
func NewChannelHandlers(channels *core.ChannelRegistry, logger *zerolog.Logger) *ChannelHandlers {
	return &ChannelHandlers{
		channels: channels,
		log:      logger,
	}
}

// ChannelResponse represents a channel in API responses.
// Member counts are only reported to members over the websocket.
type ChannelResponse struct {
	Name    string `json:"name"`
	Private bool   `json:"private"`
}

// ListChannels returns every configured channel.
// GET /api/channels
func (h *ChannelHandlers) ListChannels(c *gin.Context) {
	all := h.channels.All()
	resp := make([]ChannelResponse, 0, len(all))
	for _, ch := range all {
		resp = append(resp, ChannelResponse{Name: ch.Name, Private: ch.IsPrivate()})
	}

	h.log.Debug().Int("count", len(resp)).Msg("listed channels")
	c.JSON(http.StatusOK, resp)
}
