// Package httpapi exposes the cheque lifecycle over HTTP.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/sheikh-saqib/echeque-service/internal/cheque"
	"github.com/sheikh-saqib/echeque-service/internal/metrics"
	"github.com/sheikh-saqib/echeque-service/internal/models"
)

// Lifecycle is the set of cheque operations the HTTP layer calls.
// *cheque.Manager satisfies it.
type Lifecycle interface {
	Issue(ctx context.Context, p cheque.IssueParams) (models.Cheque, error)
	Sign(ctx context.Context, id, otp string) (models.Cheque, error)
	Present(ctx context.Context, id string) (models.Cheque, error)
	Revoke(ctx context.Context, id string) (models.Cheque, error)
	Status(ctx context.Context, id string) (models.Cheque, error)
	Peek(ctx context.Context, id string) (models.Cheque, error)
}

// Options configures the router.
type Options struct {
	Logger      *zap.Logger
	Metrics     *metrics.Metrics
	CORSOrigins []string
	Version     string
}

// NewRouter wires the e-cheque routes, CORS policy, request logging and metrics.
func NewRouter(lc Lifecycle, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &handler{lifecycle: lc, logger: logger, version: opts.Version}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(logger, opts.Metrics))
	r.Use(middleware.Recoverer)
	r.Use(corsPolicy(opts.CORSOrigins).Handler)

	r.Get("/", h.root)
	r.Handle("/metrics", opts.Metrics.Handler())

	r.Route("/echeques", func(r chi.Router) {
		r.Post("/issue", h.issue)
		r.Post("/sign", h.sign)
		r.Get("/{id}", h.detail)
		r.Post("/{id}/present", h.present)
		r.Post("/{id}/revoke", h.revoke)
		r.Get("/{id}/status", h.status)
	})

	return r
}

// corsPolicy allows the listed origins with credentials, any method and any header.
func corsPolicy(origins []string) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodHead,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
}

// requestLogger logs one line per request and counts it by route pattern.
func requestLogger(logger *zap.Logger, mt *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := "unmatched" // keeps raw paths out of metric labels
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			mt.ObserveRequest(route, status)
			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("route", route),
				zap.Int("status", status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
