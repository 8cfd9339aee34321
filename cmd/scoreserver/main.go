// Command scoreserver serves player scores and the final leaderboard over HTTP.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/jermochi/Hygin/internal/scoreserver"
	"github.com/jermochi/Hygin/pkg/scores"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	// .env is optional
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("loading .env: %w", err)
	}

	cfg, err := scoreserver.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := zerolog.New(stdout).Level(cfg.Level()).With().Timestamp().Logger()
	log.Logger = logger

	store, err := scores.OpenSQLite(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening score database: %w", err)
	}
	defer store.Close()
	logger.Info().Str("path", cfg.DBPath).Msg("connected to sqlite")

	srv := scoreserver.New(cfg.HTTPAddr, logger, store, store, cfg.LeaderboardLimit)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("starting http server")
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}
