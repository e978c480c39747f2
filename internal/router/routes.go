package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/encoreinstant/avito-moderation/internal/handler"
	"github.com/encoreinstant/avito-moderation/internal/middleware"
)

// SetupRoutes регистрирует все маршруты дашборда. Все /api маршруты закрыты
// JWT-аутентификацией модератора.
func SetupRoutes(mux *chi.Mux, ads *handler.AdsHandler, stats *handler.StatsHandler, prefs *handler.PrefsHandler, jwtSecret string) {
	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(jwtSecret))

		r.Get("/api/ads", ads.HandleListAds)
		r.Get("/api/ads/{id}", ads.HandleGetAd)
		r.Post("/api/ads/{id}/approve", ads.HandleApprove)
		r.Post("/api/ads/{id}/reject", ads.HandleReject)
		r.Post("/api/ads/{id}/request-changes", ads.HandleRequestChanges)
		r.Post("/api/ads/bulk", ads.HandleBulk)
		r.Get("/api/categories", ads.HandleCategories)

		r.Get("/api/stats/summary", stats.HandleSummary)
		r.Get("/api/stats/chart/activity", stats.HandleActivity)
		r.Get("/api/stats/chart/decisions", stats.HandleDecisions)
		r.Get("/api/stats/chart/categories", stats.HandleCategories)
		r.Get("/api/moderators/me", stats.HandleMe)

		r.Get("/api/preferences", prefs.HandleGet)
		r.Put("/api/preferences/filters", prefs.HandlePutFilters)
		r.Put("/api/preferences/theme", prefs.HandlePutTheme)
		r.Put("/api/preferences/onboarding", prefs.HandlePutOnboarding)
	})
}
