package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/graingrove-backend/api/responses"
	"github.com/angelmondragon/graingrove-backend/pkg/config"
	"github.com/angelmondragon/graingrove-backend/pkg/db"
	pkgerrors "github.com/angelmondragon/graingrove-backend/pkg/errors"
	"github.com/angelmondragon/graingrove-backend/pkg/logger"
	"github.com/angelmondragon/graingrove-backend/pkg/redis"
)

const readinessTimeout = 2 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-GrainGrove-Env", cfg.App.Env)
		responses.WriteSuccess(r.Context(), w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when both the database and Redis answer a ping.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-GrainGrove-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := map[string]string{"database": "ok", "redis": "ok"}
		var failed error
		if dbP == nil {
			checks["database"] = "missing"
			failed = pkgerrors.New(pkgerrors.CodeDependency, "database not configured")
		} else if err := dbP.Ping(ctx); err != nil {
			checks["database"] = "unavailable"
			failed = pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unavailable")
		}
		if redisP == nil {
			checks["redis"] = "missing"
			failed = pkgerrors.New(pkgerrors.CodeDependency, "redis not configured")
		} else if err := redisP.Ping(ctx); err != nil {
			checks["redis"] = "unavailable"
			failed = pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unavailable")
		}

		if failed != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.As(failed).WithDetails(checks))
			return
		}
		responses.WriteSuccess(r.Context(), w, map[string]any{"status": "ready", "checks": checks})
	}
}
