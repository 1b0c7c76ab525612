package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/choropleth/internal/config"
	"github.com/sells-group/choropleth/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interactive map and its JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		l, err := loadModel(ctx, cfg, nil)
		if err != nil {
			return err
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := newHTTPServer(l, cfg, port)
		go sweepSessions(ctx, srv.sessions, time.Duration(cfg.Server.SessionTTLMins)*time.Minute)

		return runHTTPServer(ctx, srv.http, time.Duration(cfg.Server.ShutdownTimeoutSecs)*time.Second)
	},
}

type httpServer struct {
	http     *http.Server
	sessions *server.SessionStore
}

func newHTTPServer(l *loaded, c *config.Config, port int) httpServer {
	s := server.New(l.Model, server.Options{
		Render:         l.Render,
		Title:          c.Map.Title,
		Description:    c.Map.Description,
		CORSOrigins:    c.Server.CORSOrigins,
		MaxSessions:    c.Server.MaxSessions,
		SessionTTL:     time.Duration(c.Server.SessionTTLMins) * time.Minute,
		RequestTimeout: time.Duration(c.Server.RequestTimeoutSecs) * time.Second,
	})
	return httpServer{
		http: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           s.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		},
		sessions: s.Sessions(),
	}
}

// runHTTPServer serves until ctx is cancelled, then shuts down gracefully.
func runHTTPServer(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration) error {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}

	go func() {
		<-ctx.Done()
		zap.L().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			zap.L().Error("server shutdown", zap.Error(err))
		}
	}()

	zap.L().Info("starting server", zap.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return eris.Wrap(err, "server listen")
	}
	return nil
}

// sweepSessions drops expired tooltip sessions every ttl/2 until ctx is done.
func sweepSessions(ctx context.Context, store *server.SessionStore, ttl time.Duration) {
	interval := ttl / 2
	if interval <= 0 {
		interval = time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := store.Sweep(); n > 0 {
				zap.L().Debug("swept expired sessions", zap.Int("count", n))
			}
		}
	}
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
