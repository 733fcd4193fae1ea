// Package kernel builds AgroMap's HTTP handler: global middleware, the
// service graph, event listeners and every route.
package kernel

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"time"

	"gorm.io/gorm"

	"github.com/agromap/agromap/app/controllers"
	agql "github.com/agromap/agromap/app/graphql"
	"github.com/agromap/agromap/app/routes"
	"github.com/agromap/agromap/app/services"
	"github.com/agromap/agromap/config"
	"github.com/agromap/agromap/pkg/auth"
	"github.com/agromap/agromap/pkg/cache"
	"github.com/agromap/agromap/pkg/event"
	"github.com/agromap/agromap/pkg/graphql"
	"github.com/agromap/agromap/pkg/logger"
	"github.com/agromap/agromap/pkg/metrics"
	"github.com/agromap/agromap/pkg/middleware"
	"github.com/agromap/agromap/pkg/reqid"
	"github.com/agromap/agromap/pkg/router"
	"github.com/agromap/agromap/pkg/schedule"
	"github.com/agromap/agromap/pkg/sse"
	"github.com/agromap/agromap/pkg/storage"
	"github.com/agromap/agromap/pkg/ws"
)

// Deps are the long-lived resources opened by the server command.
type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	Cache  cache.Store
	Disk   storage.Disk
}

// HTTP is the assembled application.
type HTTP struct {
	router *router.Router
	hub    *ws.Hub
	stream *sse.Broker
	bus    *event.Bus
	svc    *services.Services
	cached bool
}

// NewHTTP wires the application. Background goroutines (the websocket hub,
// the rate limiter janitor) stop when ctx ends.
func NewHTTP(ctx context.Context, d Deps) (*HTTP, error) {
	cfg := d.Config
	if d.Cache == nil {
		d.Cache = cache.Noop{}
	}

	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
	bus := event.NewBus()
	hub := ws.NewHub(originCheck(cfg.CORSOrigins))
	go hub.Run(ctx)
	stream := sse.NewBroker()

	svc := services.New(services.Deps{
		DB:             d.DB,
		Issuer:         issuer,
		Cache:          d.Cache,
		Disk:           d.Disk,
		Events:         bus,
		UploadFolder:   cfg.Storage.UploadFolder,
		UploadMaxBytes: cfg.Storage.UploadMaxBytes,
	})
	listen(bus, d.Cache, hub, stream)

	schema, err := agql.Schema(svc.Markets, svc.Products)
	if err != nil {
		return nil, err
	}

	r := router.New()

	// Global middleware, outermost first. Metrics wraps everything so its
	// latency is the total; the request ID exists before the logger runs;
	// preflights are answered before the limiter counts them. Identify only
	// attaches claims and never rejects.
	limiter := middleware.NewRateLimiter(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst)
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(limiter.Middleware)
	r.Use(middleware.Identify(issuer, svc.Auth.Role))

	// Unauthenticated, like /health.
	r.Handle("/metrics", metrics.Handler())

	if local, ok := d.Disk.(*storage.LocalDisk); ok {
		r.Handle("/storage/*", http.StripPrefix("/storage/", http.FileServer(http.Dir(local.Root()))))
	}

	ctrl := controllers.New(svc, d.DB, controllers.Options{
		TokenTTL:       cfg.TokenTTL,
		SecureCookies:  cfg.IsProduction(),
		UploadMaxBytes: cfg.Storage.UploadMaxBytes,
	})
	routes.RegisterAPI(r, ctrl, routes.Realtime{
		CommentFeed:   hub,
		CommentStream: stream,
		GraphQL:       graphql.Handler(schema),
	})

	_, noop := d.Cache.(cache.Noop)
	return &HTTP{router: r, hub: hub, stream: stream, bus: bus, svc: svc, cached: !noop}, nil
}

func (k *HTTP) Handler() http.Handler { return k.router.Handler() }

// Router exposes the route table (route:list).
func (k *HTTP) Router() *router.Router { return k.router }

// Wait blocks until asynchronous event listeners finish.
func (k *HTTP) Wait() { k.bus.Wait() }

// Schedule registers the background jobs. Cache warming is skipped when
// there is no cache to warm.
func (k *HTTP) Schedule(s *schedule.Scheduler, warmEvery time.Duration) {
	if !k.cached {
		return
	}
	s.Every(warmEvery, "markets.warm", func(ctx context.Context) error {
		_, err := k.svc.Markets.List(ctx)
		return err
	})
	s.Every(warmEvery, "admin.stats.warm", func(ctx context.Context) error {
		_, err := k.svc.Admin.Stats(ctx)
		return err
	})
}

// listen subscribes cache invalidation and the live comment feeds to the
// service events.
func listen(bus *event.Bus, store cache.Store, hub *ws.Hub, stream *sse.Broker) {
	forget := func(keys ...string) event.Handler {
		return func(interface{}) {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := store.Del(ctx, keys...); err != nil {
				logger.Warn("cache: invalidate failed", "keys", keys, "error", err)
			}
		}
	}
	everything := forget(services.CacheKeyMarkets, services.CacheKeyAdminStats)
	bus.Listen(services.EventMarketChanged, everything)
	bus.Listen(services.EventProductChanged, everything)
	bus.Listen(services.EventCatalogChanged, forget(services.CacheKeyAdminStats))
	bus.Listen(services.EventCommentCreated, forget(services.CacheKeyAdminStats))
	bus.Listen(services.EventCommentDeleted, forget(services.CacheKeyAdminStats))

	bus.Listen(services.EventCommentCreated, func(payload interface{}) {
		msg, err := json.Marshal(map[string]interface{}{
			"type":    services.EventCommentCreated,
			"comment": payload,
		})
		if err != nil {
			logger.Error("ws: encode comment", "error", err)
			return
		}
		hub.Broadcast(msg)
	})
	bus.Listen(services.EventCommentCreated, func(payload interface{}) {
		if err := stream.Publish(services.EventCommentCreated, payload); err != nil {
			logger.Error("sse: publish comment", "error", err)
		}
	})
}

// originCheck mirrors the CORS allow-list for websocket upgrades.
func originCheck(origins []string) func(*http.Request) bool {
	if len(origins) == 0 || slices.Contains(origins, "*") {
		return nil
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(origins, origin)
	}
}
