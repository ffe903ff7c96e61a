// Package logger provides the application's structured, levelled logger
// built on log/slog.
//
// WithCtx returns a logger already tagged with the request ID so every
// line written while serving a request can be correlated:
//
//	log := logger.WithCtx(r.Context())
//	log.Info("listing published", "listing_id", l.ID)
//	// → time=... level=INFO msg="listing published" request_id=a1b2c3d4 listing_id=7
package logger

import (
	"context"
	"log/slog"
	"os"

	"github.com/shashiranjanraj/uniformhub/config"
)

var L *slog.Logger

// base is the console handler; sinks such as MongoDB are fanned out next to it.
var base slog.Handler

var mongoSink *MongoHandler

func init() {
	opts := &slog.HandlerOptions{Level: slog.LevelDebug}

	if config.IsProduction() {
		opts.Level = slog.LevelInfo
		base = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		base = slog.NewTextHandler(os.Stdout, opts)
	}

	L = slog.New(base)
	slog.SetDefault(L)
}

// EnableMongo adds an asynchronous MongoDB sink next to stdout. It is a
// no-op when uri is empty.
func EnableMongo(uri string) error {
	if uri == "" {
		return nil
	}
	h, err := NewMongoHandler(uri, config.Get("LOG_MONGO_DB", "uniformhub"), config.Get("LOG_MONGO_COLLECTION", "app_logs"))
	if err != nil {
		return err
	}
	mongoSink = h
	L = slog.New(NewMultiHandler(base, h))
	slog.SetDefault(L)
	return nil
}

// Close flushes and detaches any extra sinks.
func Close() {
	if mongoSink != nil {
		mongoSink.Close()
		mongoSink = nil
		L = slog.New(base)
		slog.SetDefault(L)
	}
}

type ctxKey struct{}

// WithCtx returns the per-request logger stored by the Logger middleware,
// or the base logger when there is none.
func WithCtx(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return L
	}
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return L
}

// InjectLogger stores a *slog.Logger (pre-tagged with request_id) into ctx.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

func Debug(msg string, args ...any) { L.Debug(msg, args...) }

func Info(msg string, args ...any) { L.Info(msg, args...) }

func Warn(msg string, args ...any) { L.Warn(msg, args...) }

func Error(msg string, args ...any) { L.Error(msg, args...) }
