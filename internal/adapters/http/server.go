package httpadapter

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	api "scriptguard/internal/api"
	"scriptguard/internal/logging"
	"scriptguard/internal/metrics"
	"scriptguard/internal/ports"
	"scriptguard/internal/services/alerts"
	"scriptguard/internal/services/compliance"
	"scriptguard/internal/services/scanner"
	"scriptguard/internal/workers/scanrunner"
)

const defaultScanWait = 30 * time.Second

type Deps struct {
	Engine    *compliance.Engine
	Scans     *scanner.Service
	Jobs      ports.JobRepository
	Processor scanrunner.Processor
	Alerts    *alerts.Manager
	Settings  ports.SettingsStore
	Metrics   *metrics.Metrics
	Logger    *zap.Logger

	// CORSOrigins are the storefront origins the browser monitor posts from.
	CORSOrigins []string
	// ScanWait caps inline processing of POST /scans?wait=true.
	ScanWait time.Duration
}

// Server serves the JSON API for the browser monitor and operators. It
// implements the generated StrictServerInterface.
type Server struct {
	Deps
	logger *zap.Logger
}

var _ api.StrictServerInterface = (*Server)(nil)

func New(d Deps) *Server {
	if d.ScanWait <= 0 {
		d.ScanWait = defaultScanWait
	}
	return &Server{Deps: d, logger: logging.OrNop(d.Logger)}
}

// Routes returns a chi.Router mounting the generated handlers and /metrics.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	origins := s.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"https://*", "http://*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	if s.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.Metrics.Registry, promhttp.HandlerOpts{}))
	}

	// Generated handler wiring
	handler := api.NewStrictHandlerWithOptions(s, []api.StrictMiddlewareFunc{s.knownStore}, api.StrictHTTPServerOptions{
		RequestErrorHandlerFunc:  s.requestError,
		ResponseErrorHandlerFunc: s.responseError,
	})
	api.HandlerWithOptions(handler, api.ChiServerOptions{BaseRouter: r, ErrorHandlerFunc: s.requestError})
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("requestId", middleware.GetReqID(r.Context())))
	})
}

// knownStore rejects store-scoped operations for stores with no settings.
// The generated wrapper has already bound {storeId} by the time it runs.
func (s *Server) knownStore(f api.StrictHandlerFunc, operationID string) api.StrictHandlerFunc {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request, request interface{}) (interface{}, error) {
		if chi.URLParam(r, "storeId") == "" {
			return f(ctx, w, r, request)
		}
		storeID, err := bindStoreID(r)
		if err != nil {
			return nil, &apiError{status: http.StatusBadRequest, msg: "invalid storeId"}
		}
		if s.Settings != nil {
			if _, err := s.Settings.Store(ctx, storeID); err != nil {
				return nil, &apiError{status: http.StatusNotFound, msg: "unknown store"}
			}
		}
		return f(ctx, w, r, request)
	}
}
