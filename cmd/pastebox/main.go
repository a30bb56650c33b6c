package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pastebox/cfg"
	"pastebox/svc/api"
	"pastebox/svc/db"
	"pastebox/svc/lim"
	"pastebox/svc/svc"
	"pastebox/svc/util"

	"golang.org/x/sync/errgroup"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "-health" {
		os.Exit(probe())
	}

	util.InitLog("info", false)
	c, err := cfg.Load()
	if err != nil {
		util.Fatal().Err(err).Msg("failed to load configuration")
	}
	util.InitLog(c.LogLevel, c.Environment == "development")
	if err := cfg.Validate(c); err != nil {
		util.Fatal().Err(err).Msg("invalid configuration")
	}
	defer c.Wipe()
	util.Info().Str("environment", c.Environment).Msg("starting pastebox")

	var rdb *db.Redis
	if c.RedisURL != "" {
		rdb, err = db.NewRedis(c.RedisURL, c.RedisTimeout)
		if err != nil {
			if c.Environment == "production" {
				util.Fatal().Err(err).Msg("redis required in production when REDIS_URL is set")
			}
			util.Warn().Err(err).Msg("redis unavailable, rate limiting stays local")
			rdb = nil
		} else {
			util.Info().Msg("redis connected")
			defer rdb.Close()
		}
	}

	pasteSvc := svc.NewPaste(db.NewMem(), c)

	limiter, err := lim.New(c.RateLimitRequests, c.RateLimitWindow, c.RateLimitMaxClients, rdb, c.TrustedProxies)
	if err != nil {
		util.Fatal().Err(err).Msg("failed to create rate limiter")
	}
	util.Info().
		Int("requests", c.RateLimitRequests).
		Dur("window", c.RateLimitWindow).
		Str("backend", limiter.Backend()).
		Strs("trusted_proxies", c.TrustedProxies).
		Msg("rate limiter initialized")

	server := api.NewServer(c, pasteSvc, limiter, rdb)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		util.Info().Msg("shutting down gracefully...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), c.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		util.Error().Err(err).Msg("server stopped with error")
		os.Exit(1)
	}
	util.Info().Int("pastes", pasteSvc.Count()).Msg("shutdown complete")
}

// probe is used as a container health check: it hits /health on the local port.
func probe() int {
	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://localhost:" + port + "/health")
	if err != nil {
		return 1
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 1
	}
	return 0
}
