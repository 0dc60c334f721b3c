package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/raghq/docpipe/internal/api/handlers"
	"github.com/raghq/docpipe/internal/api/middleware"
	"github.com/raghq/docpipe/internal/cache"
	"github.com/raghq/docpipe/internal/config"
	"github.com/raghq/docpipe/internal/document"
	"github.com/raghq/docpipe/internal/metastore"
	"github.com/raghq/docpipe/internal/objectstore"
	"github.com/raghq/docpipe/internal/queue"
)

type Router struct {
	mux   *chi.Mux
	db    *pgxpool.Pool
	redis *redis.Client
	store *objectstore.Client
	cfg   *config.Config
}

func NewRouter(db *pgxpool.Pool, rdb *redis.Client, store *objectstore.Client, cfg *config.Config) *Router {
	return &Router{
		mux:   chi.NewRouter(),
		db:    db,
		redis: rdb,
		store: store,
		cfg:   cfg,
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)

	rl := middleware.NewRateLimiter(50, 100)
	r.Use(rl.Limit)

	health := handlers.NewHealthHandler(rt.db, rt.redis)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	var q *queue.Client
	if rt.redis != nil {
		q = queue.NewClient(rt.cfg.Redis)
	}
	docSvc := document.NewService(rt.db, rt.store, q, rt.cfg.AWS.Bucket)
	meta := metastore.NewStore(rt.db)

	var c *cache.Cache
	if rt.redis != nil {
		c = cache.NewCache(rt.redis)
	}

	r.Route("/api/v1", func(r chi.Router) {
		docH := handlers.NewDocumentHandler(docSvc)
		analysisH := handlers.NewAnalysisHandler(meta, c, rt.cfg.Analysis.PreviewLimit)

		r.Route("/documents", func(r chi.Router) {
			r.Post("/", docH.Upload)
			r.Get("/", docH.List)
			r.Get("/{id}", docH.Get)
			r.Delete("/{id}", docH.Delete)
			r.Get("/{id}/status", docH.Status)
			r.Get("/{id}/analysis", analysisH.Get)
			r.Post("/{id}/requeue", docH.Requeue)
		})
	})

	return r
}
