// Package kernel wires configuration, storage and services into the HTTP
// handler and background workers that cmd/uniformhub runs.
package kernel

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/uniformhub/app/routes"
	"github.com/shashiranjanraj/uniformhub/app/services"
	"github.com/shashiranjanraj/uniformhub/config"
	"github.com/shashiranjanraj/uniformhub/pkg/cache"
	"github.com/shashiranjanraj/uniformhub/pkg/ctx"
	"github.com/shashiranjanraj/uniformhub/pkg/database"
	"github.com/shashiranjanraj/uniformhub/pkg/event"
	"github.com/shashiranjanraj/uniformhub/pkg/logger"
	"github.com/shashiranjanraj/uniformhub/pkg/mail"
	"github.com/shashiranjanraj/uniformhub/pkg/metrics"
	"github.com/shashiranjanraj/uniformhub/pkg/middleware"
	"github.com/shashiranjanraj/uniformhub/pkg/notification"
	"github.com/shashiranjanraj/uniformhub/pkg/overpass"
	"github.com/shashiranjanraj/uniformhub/pkg/queue"
	"github.com/shashiranjanraj/uniformhub/pkg/reqid"
	"github.com/shashiranjanraj/uniformhub/pkg/router"
	"github.com/shashiranjanraj/uniformhub/pkg/schedule"
	"github.com/shashiranjanraj/uniformhub/pkg/ws"
)

type Kernel struct {
	DB       *gorm.DB
	Cache    cache.Store
	Queue    *queue.Manager
	Bus      *event.Bus
	Hub      *ws.Hub
	Services *services.Services

	cors middleware.CORSOptions
}

// Options overrides the resources New would otherwise default. Only DB is
// required.
type Options struct {
	DB       *gorm.DB
	Cache    cache.Store
	Queue    *queue.Manager
	Mailer   mail.Sender
	Notifier *notification.Notifier
	Geo      services.GeoSource
}

// Boot loads config, connects to the database and Redis and builds the
// kernel. Redis is optional: without it the cache and the queue stay in
// process.
func Boot(c context.Context) (*Kernel, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := logger.EnableMongo(config.MongoLogURI()); err != nil {
		logger.Warn("mongo log sink disabled", "error", err)
	}
	if err := database.Connect(); err != nil {
		return nil, err
	}

	store, err := cache.Connect(c)
	if err != nil {
		logger.Warn("redis unavailable, using in-process cache and queue", "error", err)
	}
	q := queue.New(queue.NewMemoryDriver())
	if cache.RDB != nil {
		q = queue.New(queue.NewRedisDriver(cache.RDB))
	}

	var notifier *notification.Notifier
	if hook := config.SlackWebhook(); hook != "" {
		notifier = notification.New(hook)
	}

	return New(Options{
		DB:       database.DB,
		Cache:    store,
		Queue:    q,
		Mailer:   mail.FromEnv(),
		Notifier: notifier,
		Geo:      overpass.New(config.OverpassURL()).WithRetry(3, 2*time.Second),
	}), nil
}

// New builds services over already-open resources. Tests call it with an
// in-memory sqlite database.
func New(o Options) *Kernel {
	if o.Queue == nil {
		o.Queue = queue.NewSync()
	}
	o.Queue.UseDB(o.DB)

	cors := middleware.CORSOptionsFromConfig()
	hub := ws.NewHub(cors.CheckOrigin)
	bus := event.New()

	return &Kernel{
		DB:    o.DB,
		Cache: o.Cache,
		Queue: o.Queue,
		Bus:   bus,
		Hub:   hub,
		Services: services.New(services.Deps{
			DB:        o.DB,
			Cache:     o.Cache,
			Bus:       bus,
			Queue:     o.Queue,
			Mailer:    o.Mailer,
			Notifier:  o.Notifier,
			Publisher: hub,
			Geo:       o.Geo,
		}),
		cors: cors,
	}
}

// Router builds the full route table with the global middleware stack.
//
// Order, outermost first: trusted-proxy address rewrite, metrics, recovery,
// request id, access log, CORS, rate limit, then session resolution so
// handlers see the principal.
func (k *Kernel) Router() (*router.Router, error) {
	proxies, err := middleware.TrustedProxies(config.TrustedProxies())
	if err != nil {
		return nil, err
	}

	r := router.New()
	r.Use(
		proxies,
		metrics.Middleware(),
		middleware.Recovery,
		reqid.Middleware(),
		middleware.Logger,
		middleware.CORS(k.cors),
		middleware.RateLimit(300, time.Minute),
		middleware.Session(k.Services.Auth),
	)

	r.Handle("/metrics", "metrics", metrics.Handler())
	r.Get("/health", "health", ctx.Wrap(k.health))

	if err := routes.RegisterAPI(r, k.Services, k.Hub); err != nil {
		return nil, err
	}
	return r, nil
}

// Handler is Router().Handler().
func (k *Kernel) Handler() (http.Handler, error) {
	r, err := k.Router()
	if err != nil {
		return nil, err
	}
	return r.Handler(), nil
}

func (k *Kernel) health(c *ctx.Context) {
	if err := k.Check(c.Context()); err != nil {
		c.ErrorData(http.StatusServiceUnavailable, "Unhealthy", map[string]string{"database": err.Error()})
		return
	}
	c.Success(map[string]string{"database": "ok"})
}

// Check pings the database. It backs /health and the gRPC health service.
func (k *Kernel) Check(c context.Context) error {
	sqlDB, err := k.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(c)
}

// Scheduler registers the periodic housekeeping tasks.
func (k *Kernel) Scheduler() *schedule.Scheduler {
	s := schedule.New()

	s.Hourly().Name("sessions:prune").WithoutOverlapping().Run(func(c context.Context) error {
		n, err := k.Services.Auth.PruneSessions(c)
		if n > 0 {
			logger.Info("pruned expired sessions", "count", n)
		}
		return err
	})

	s.Daily().Name("email-logs:prune").WithoutOverlapping().Run(func(c context.Context) error {
		n, err := k.Services.Emails.PruneLogs(c, config.EmailLogRetention())
		if n > 0 {
			logger.Info("pruned email logs", "count", n)
		}
		return err
	})

	return s
}

// Close releases the database, Redis and log sinks.
func (k *Kernel) Close() error {
	var errs []error
	k.Bus.Wait()
	if sqlDB, err := k.DB.DB(); err == nil {
		errs = append(errs, sqlDB.Close())
	}
	if cache.RDB != nil {
		errs = append(errs, cache.RDB.Close())
	}
	logger.Close()
	return errors.Join(errs...)
}
