// Package api exposes Scopeline over HTTP: public share-token endpoints
// for clients and authenticated organization endpoints for members.
package api

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lanternworks/scopeline/internal/auth"
	"github.com/lanternworks/scopeline/internal/config"
	"github.com/lanternworks/scopeline/internal/llm"
	"github.com/lanternworks/scopeline/internal/negotiation"
	"github.com/lanternworks/scopeline/internal/notify"
	"github.com/lanternworks/scopeline/internal/ratelimit"
	"gorm.io/gorm"
)

// Deps bundles the services handlers depend on.
type Deps struct {
	Cfg         *config.Config
	DB          *gorm.DB
	Auth        *auth.Service
	Negotiator  *negotiation.Service
	Completer   llm.Completer
	Notifier    notify.Sender
	ChatLimiter ratelimit.Limiter
	AuthLimiter ratelimit.Limiter
}

// StartOpts holds configuration for the API server.
type StartOpts struct {
	Deps Deps
	Port int
	Out  io.Writer
}

// Start launches the HTTP server. It blocks until ctx is cancelled, then
// shuts down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	if opts.Deps.DB == nil {
		return fmt.Errorf("api: db is required")
	}
	if opts.Deps.Auth == nil {
		return fmt.Errorf("api: auth service is required")
	}
	if opts.Deps.Negotiator == nil {
		return fmt.Errorf("api: negotiation service is required")
	}
	if opts.Port <= 0 {
		opts.Port = 8080
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	registerRoutes(router, opts.Deps)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: router,
	}

	// Graceful shutdown on context cancellation.
	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "Scopeline API listening on http://localhost:%d\n", opts.Port)
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}
