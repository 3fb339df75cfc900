package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/Arcano33sa/suitea33-sub002/api/responses"
	"github.com/Arcano33sa/suitea33-sub002/pkg/config"
	"github.com/Arcano33sa/suitea33-sub002/pkg/db"
	pkgerrors "github.com/Arcano33sa/suitea33-sub002/pkg/errors"
	"github.com/Arcano33sa/suitea33-sub002/pkg/logger"
)

const readyTimeout = 2 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Dashboard-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the POS store and, when configured, redis.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP db.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Dashboard-Env", cfg.App.Env)
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		checks := map[string]string{
			"database": probe(ctx, dbP),
			"redis":    "disabled",
		}
		if cfg.Redis.Enabled() {
			checks["redis"] = probe(ctx, redisP)
		}
		if checks["database"] != "ok" || checks["redis"] == "down" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeDependency, "not ready").WithDetails(checks))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}

func probe(ctx context.Context, p db.Pinger) string {
	if p == nil {
		return "down"
	}
	if err := p.Ping(ctx); err != nil {
		return "down"
	}
	return "ok"
}
