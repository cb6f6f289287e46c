package viewer

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/pitchpilot/pitch-analyzer/internal/config"
	"github.com/pitchpilot/pitch-analyzer/internal/store"
	"github.com/pitchpilot/pitch-analyzer/pkg/log"
	"github.com/pitchpilot/pitch-analyzer/pkg/metrics"
	"github.com/pitchpilot/pitch-analyzer/pkg/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const (
	gracefulShutdownTimeout = 5 * time.Second
	cleanupInterval         = 10 * time.Minute
	uniqueViewsResetPeriod  = 7 * 24 * time.Hour
)

// registered once per process, the default registerer rejects duplicates
var metricMiddleware = sync.OnceValue(func() *metrics.Middleware {
	m := metrics.NewMiddleware("viewer")
	m.MustRegisterDefault()
	return m
})

type Server struct {
	cfg       *config.Config
	store     store.Store
	listener  net.Listener
	publisher Publisher
}

// New returns the results viewer server. publisher may be nil.
func New(cfg *config.Config, store store.Store, listener net.Listener, publisher Publisher) *Server {
	return &Server{
		cfg:       cfg,
		store:     store,
		listener:  listener,
		publisher: publisher,
	}
}

// Router builds the viewer routes with their middleware.
func (s *Server) Router() http.Handler {
	router := chi.NewRouter()

	router.Use(
		middleware.StripPrefix(s.cfg.Viewer.PathPrefix),
		metricMiddleware().Handler,
		cors.Handler(cors.Options{
			AllowedOrigins: s.cfg.Viewer.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "DELETE", "HEAD", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
			ExposedHeaders: []string{"X-Request-Id"},
			MaxAge:         300,
		}),
		middleware.RequestID,
		log.Logger(zap.L(), "viewer"),
		chiMiddleware.Recoverer,
	)

	h := NewHandler(s.store, s.cfg.Viewer.BaseURL, s.cfg.Viewer.ShareTTL, s.publisher)

	router.Get("/health", h.Health)
	router.Handle("/metrics", promhttp.Handler())

	router.Get("/results", h.GetResults)
	router.Get("/results/{token}", h.GetSharedResults)

	router.Route("/api/results", func(r chi.Router) {
		r.Get("/", h.ListShared)
		r.Post("/", h.Share)
		r.Get("/{token}", h.GetShared)
		r.Delete("/{token}", h.DeleteShared)
	})

	return router
}

func (s *Server) Run(ctx context.Context) error {
	zap.S().Named("viewer").Info("Initializing results viewer")

	srv := http.Server{Addr: s.cfg.Viewer.Address, Handler: s.Router()}

	go func() {
		<-ctx.Done()
		zap.S().Named("viewer").Infof("Shutdown signal received: %s", ctx.Err())
		ctxTimeout, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
		defer cancel()

		srv.SetKeepAlivesEnabled(false)
		_ = srv.Shutdown(ctxTimeout)
		zap.S().Named("viewer").Info("results viewer terminated")
	}()

	go NewCleaner(s.store, s.publisher, cleanupInterval).Run(ctx)
	go resetUniqueViews(ctx, uniqueViewsResetPeriod)

	zap.S().Named("viewer").Infof("Listening on %s...", s.listener.Addr().String())
	if err := srv.Serve(s.listener); err != nil && !errors.Is(err, net.ErrClosed) && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func resetUniqueViews(ctx context.Context, period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			metrics.UniqueResultViews.Reset()
			zap.S().Named("viewer").Info("weekly unique result views metric reset")
		case <-ctx.Done():
			return
		}
	}
}
