// Package server runs the HTTP API, the gRPC health port, the queue
// workers and the scheduler until the context is cancelled.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/shashiranjanraj/uniformhub/internal/kernel"
	"github.com/shashiranjanraj/uniformhub/pkg/grpc"
	"github.com/shashiranjanraj/uniformhub/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

type Options struct {
	HTTPAddr string
	GRPCAddr string // empty disables the gRPC port
	Workers  int    // 0 disables in-process queue workers
	Schedule bool
}

// Run blocks until ctx is cancelled or a listener fails, then drains
// in-flight requests, jobs and gRPC calls.
func Run(ctx context.Context, k *kernel.Kernel, o Options) error {
	handler, err := k.Handler()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              o.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errc := make(chan error, 2)
	var bg sync.WaitGroup

	go func() {
		logger.Info("http: listening", "addr", o.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- fmt.Errorf("http: %w", err)
		}
	}()

	var gs *grpc.Server
	if o.GRPCAddr != "" {
		lis, err := net.Listen("tcp", o.GRPCAddr)
		if err != nil {
			return fmt.Errorf("grpc: listen %s: %w", o.GRPCAddr, err)
		}
		gs = grpc.New(k.Check)
		go func() {
			if err := gs.Serve(lis); err != nil {
				errc <- err
			}
		}()
	}

	if o.Workers > 0 {
		bg.Add(1)
		go func() {
			defer bg.Done()
			k.Queue.Work(ctx, o.Workers)
		}()
	}
	if o.Schedule {
		k.Scheduler().Start(ctx)
	}

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err = <-errc:
		logger.Error("server failed", "error", err)
	}
	cancel()

	sctx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if serr := srv.Shutdown(sctx); serr != nil {
		logger.Warn("http: shutdown", "error", serr)
	}
	if gs != nil {
		gs.Stop()
	}
	bg.Wait()
	return err
}
