// Package httptransport assembles the public HTTP surface: the versioned API,
// health checking, and the Prometheus scrape endpoint.
package httptransport

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"verigate/internal/platform/redis"
	"verigate/internal/verification/handler"
	"verigate/pkg/platform/httputil"
)

// HealthChecker reports whether a backing dependency is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Router carries the dependencies the top-level routes need.
type Router struct {
	verifications *handler.Handler
	redis         *redis.Client
}

// NewRouter wires all public endpoints.
func NewRouter(verifications *handler.Handler, redisClient *redis.Client) http.Handler {
	rt := &Router{verifications: verifications, redis: redisClient}

	r := chi.NewRouter()
	r.Get("/healthz", rt.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(api chi.Router) {
		verifications.Register(api)
	})

	return r
}

func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{"status": "ok"}
	code := http.StatusOK

	if rt.redis != nil {
		if err := rt.redis.Health(ctx); err != nil {
			status["status"] = "degraded"
			status["redis"] = "unreachable"
			code = http.StatusServiceUnavailable
		} else {
			status["redis"] = "ok"
		}
	}

	httputil.WriteJSON(w, code, status)
}
