package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/desertthunder/setlist/internal/auth"
	"github.com/desertthunder/setlist/internal/ratelimit"
	"github.com/desertthunder/setlist/internal/server"
	"github.com/desertthunder/setlist/internal/shared"
	"github.com/desertthunder/setlist/internal/spotify"
	"github.com/urfave/cli/v3"
)

// Serve starts the HTTP server with the configured auth, rate limiter and
// Spotify client. Missing Spotify credentials are tolerated (the playlist
// endpoint reports them per request); a missing password is not, since it
// would make the empty string a valid login.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config := r.config
	configPath := cmd.String("config")
	if _, err := os.Stat(configPath); err == nil {
		loaded, err := shared.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		config = loaded
	}

	host := config.Server.Host
	if cmd.String("host") != "" {
		host = cmd.String("host")
	}
	port := config.Server.Port
	if cmd.Int("port") != 0 {
		port = cmd.Int("port")
	}

	if config.Auth.Password == "" {
		return fmt.Errorf("auth password is not configured: %w", shared.ErrInvalidConfig)
	}
	if config.Auth.SessionSecret == "" {
		r.logger.Warn("session secret is not configured, logins will fail")
	}

	var limiter ratelimit.Limiter = ratelimit.NewMemory()
	if config.RateLimit.RedisAddr != "" {
		limiter = ratelimit.NewRedis(ratelimit.NewRedisClient(config.RateLimit.RedisAddr, config.RateLimit.RedisPassword))
		r.logger.Info("using redis rate limiter", "addr", config.RateLimit.RedisAddr)
	}

	app := server.New(server.Options{
		Codec:     auth.NewCodec(config.Auth.SessionSecret),
		Password:  config.Auth.Password,
		Limiter:   limiter,
		Playlists: spotify.NewClient(config.Credentials.Spotify.ClientID, config.Credentials.Spotify.ClientSecret, nil),
		Logger:    r.logger,
	})

	addr := fmt.Sprintf("%s:%d", host, port)
	srv := &http.Server{Addr: addr, Handler: app}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	r.logger.Info("starting server", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
