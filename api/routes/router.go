package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Arcano33sa/suitea33-sub002/api/controllers"
	"github.com/Arcano33sa/suitea33-sub002/api/middleware"
	"github.com/Arcano33sa/suitea33-sub002/pkg/config"
	"github.com/Arcano33sa/suitea33-sub002/pkg/db"
	"github.com/Arcano33sa/suitea33-sub002/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP db.Pinger,
	gatherer prometheus.Gatherer,
	dashboardService controllers.DashboardService,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/dashboard", func(r chi.Router) {
		r.Get("/overview", controllers.DashboardOverview(dashboardService))
		r.Post("/sync", controllers.DashboardSync(dashboardService, logg))

		r.Get("/focus", controllers.DashboardFocus(dashboardService))
		r.Put("/focus", controllers.DashboardSetFocus(dashboardService, logg))

		r.Get("/events", controllers.DashboardCards(dashboardService, logg))
		r.Route("/events/{eventID}", func(r chi.Router) {
			r.Get("/snapshot", controllers.DashboardSnapshot(dashboardService, logg))
			r.Get("/alerts", controllers.DashboardAlerts(dashboardService, logg))
			r.Post("/expand", controllers.DashboardExpand(dashboardService, logg))
			r.Post("/collapse", controllers.DashboardCollapse(dashboardService, logg))
		})
	})

	return r
}
