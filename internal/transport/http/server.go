package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/chanchat-server/internal/config"
	"github.com/vovakirdan/chanchat-server/internal/core"
)

// NewServer builds an HTTP server exposing the websocket endpoint and a few read-only routes.
// /ws stays on the plain mux; the upgrade cannot hijack a gin response writer.
func NewServer(hub *core.Hub, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))

	router.GET("/health", healthHandler)

	channelHandlers := NewChannelHandlers(hub.Channels(), logger)
	api := router.Group("/api")
	api.GET("/channels", channelHandlers.ListChannels)

	mux := stdhttp.NewServeMux()
	mux.Handle("/ws", NewWSHandler(hub, cfg.RateLimit, logger))
	mux.Handle("/", router)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
