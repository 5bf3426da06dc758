package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

type httpServer interface {
	Start(address string) error
	Shutdown(ctx context.Context) error
}

type backgroundWorker interface {
	Run(ctx context.Context) error
}

// serve runs srv and worker until ctx is done or either fails. The HTTP server
// is shut down first; worker is cancelled only after Shutdown returns, so events
// recorded by in-flight requests are still drained.
func serve(ctx context.Context, srv httpServer, addr string, worker backgroundWorker, timeout time.Duration, log zerolog.Logger) error {
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return worker.Run(workerCtx)
	})

	g.Go(func() error {
		if err := srv.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		defer stopWorker()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
