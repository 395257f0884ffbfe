package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aeromarket/drone-service/internal/platform/metrics"
)

// NewRouter wires all marketplace routes onto a chi router.
func NewRouter(h *Handler, mm *metrics.MetricsManager) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	if mm != nil {
		r.Use(requestLatency(mm))
	}

	r.Get("/health", h.HandleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/drones", func(r chi.Router) {
			r.Post("/", h.HandleCreateDrone)
			r.Get("/", h.HandleListDrones)
			r.Get("/price", h.HandleListByPriceRange)
			r.Get("/category/{category}", h.HandleListByCategory)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.HandleGetDrone)
				r.Put("/", h.HandleUpdateDrone)
				r.Delete("/", h.HandleDeleteDrone)
				r.Post("/reviews", h.HandleAddReview)
				r.Post("/purchase", h.HandlePurchaseDrone)
				r.Get("/owner", h.HandleGetDroneOwner)
			})
		})

		r.Route("/users/{userId}", func(r chi.Router) {
			r.Get("/drones", h.HandleListUserDrones)
			r.Get("/favorites", h.HandleListFavorites)
			r.Post("/favorites/{droneId}", h.HandleAddFavorite)
			r.Delete("/favorites/{droneId}", h.HandleRemoveFavorite)
		})
	})

	return r
}

// requestLatency observes per-route request duration using the chi route
// pattern as the operation label, so path parameters do not explode
// cardinality.
func requestLatency(mm *metrics.MetricsManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)

			pattern := chi.RouteContext(r.Context()).RoutePattern()
			if pattern == "" {
				pattern = "unmatched"
			}
			mm.RequestLatency.WithLabelValues(r.Method + " " + pattern).Observe(time.Since(start).Seconds())
		})
	}
}
