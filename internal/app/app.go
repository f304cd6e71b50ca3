package app

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/chanchat-server/internal/auth"
	"github.com/vovakirdan/chanchat-server/internal/config"
	"github.com/vovakirdan/chanchat-server/internal/core"
	transporthttp "github.com/vovakirdan/chanchat-server/internal/transport/http"
)

// App wires together core and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	tlsCertFile     string
	tlsKeyFile      string
	hub             *core.Hub
	channels        *core.ChannelRegistry
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	channels, err := core.NewChannelRegistry(cfg.CoreChannels(), auth.NewBcryptVerifier(), cfg.BroadcastInterval, logger)
	if err != nil {
		return nil, fmt.Errorf("init channels: %w", err)
	}
	for _, ch := range channels.All() {
		logger.Info().Str("channel", ch.Name).Bool("private", ch.IsPrivate()).Msg("channel ready")
	}

	hub := core.NewHub(channels, logger)
	server := transporthttp.NewServer(hub, cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		tlsCertFile:     cfg.TLSCertFile,
		tlsKeyFile:      cfg.TLSKeyFile,
		hub:             hub,
		channels:        channels,
		log:             logger,
	}, nil
}

// Handler exposes the HTTP handler, mainly for tests.
func (a *App) Handler() stdhttp.Handler {
	return a.server.Handler
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go a.hub.Run(hubCtx)

	go func() {
		var err error
		if a.tlsCertFile != "" {
			a.log.Info().Str("addr", a.server.Addr).Msg("serving https")
			err = a.server.ListenAndServeTLS(a.tlsCertFile, a.tlsKeyFile)
		} else {
			a.log.Info().Str("addr", a.server.Addr).Msg("serving http")
			err = a.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup()
			return err
		}

		a.cleanup()
		return <-serverErr
	}
}

// cleanup stops the channel broadcasts.
func (a *App) cleanup() {
	a.channels.StopAll()
	a.log.Info().Msg("channel broadcasts stopped")
}
