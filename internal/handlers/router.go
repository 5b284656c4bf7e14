package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"dream_weaver/internal/discovery"
	"dream_weaver/internal/follow"
	"dream_weaver/internal/locale"
	"dream_weaver/internal/location"
	"dream_weaver/internal/metrics"
	"dream_weaver/internal/storage"
)

// Deps is everything the HTTP surface needs.
type Deps struct {
	Journal    *storage.JournalStorage
	Follows    *follow.Store
	Bundle     *locale.Bundle
	Assistant  Assistant
	Sessions   *discovery.SessionManager
	Discoverer *discovery.Discoverer
	Keywords   *discovery.KeywordCache
	Provider   location.Provider
	Metrics    *metrics.Collector
	Logger     *zap.Logger
	// AllowedOrigins defaults to local development origins when empty.
	AllowedOrigins []string
}

func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	current := func() discovery.KeywordSet {
		return d.Keywords.EntryKeywords(d.Journal.List())
	}

	var observeToggle func(bool)
	if d.Metrics != nil {
		observeToggle = d.Metrics.ObserveFollowToggle
	}

	journal := NewJournalHandler(d.Journal, d.Bundle, logger)
	aiTools := NewAIHandler(d.Journal, d.Assistant, d.Bundle, logger)
	disc := NewDiscoveryHandler(d.Sessions, d.Discoverer, d.Provider, current, d.Bundle, logger)
	follows := NewFollowHandler(d.Follows, d.Discoverer, current, observeToggle, d.Bundle, logger)
	loc := NewLocaleHandler(d.Bundle, logger)

	origins := d.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(requestLogger(logger, d.Metrics))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, logger, "handlers.health", http.StatusOK, map[string]string{"status": "healthy"})
	})
	if d.Metrics != nil {
		router.Handle("/metrics", d.Metrics.Handler())
	}

	router.Route("/entries", func(r chi.Router) {
		r.Get("/", journal.HandleGetEntries)
		r.Post("/", journal.HandleCreateEntry)
		r.Get("/{id}", journal.HandleGetEntry)
		r.Put("/{id}", journal.HandleUpdateEntry)
		r.Delete("/{id}", journal.HandleDeleteEntry)
		r.Post("/{id}/interpret", aiTools.HandleInterpret)
		r.Post("/{id}/story-spark", aiTools.HandleStorySpark)
		r.Post("/{id}/visualize", aiTools.HandleVisualize)
	})

	router.Get("/prompts/random", loc.HandleRandomPrompt)

	router.Route("/discovery/sessions", func(r chi.Router) {
		r.Post("/", disc.HandleOpen)
		r.Get("/{id}", disc.HandleGet)
		r.Post("/{id}/retry", disc.HandleRetry)
		r.Delete("/{id}", disc.HandleClose)
	})

	router.Get("/directory/{userID}", follows.HandleProfile)
	router.Get("/follows", follows.HandleConnections)
	router.Post("/follows/{userID}/toggle", follows.HandleToggle)

	router.Get("/locale", loc.HandleGet)
	router.Put("/locale", loc.HandleSet)

	return router
}

// requestLogger logs each request and records it against the matched route pattern.
func requestLogger(logger *zap.Logger, collector *metrics.Collector) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}

			logger.Info("HTTP Request",
				zap.String("method", r.Method),
				zap.String("route", route),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("requestID", chimiddleware.GetReqID(r.Context())),
			)
			if collector != nil {
				collector.ObserveHTTP(r.Method, route, status, time.Since(start))
			}
		})
	}
}
