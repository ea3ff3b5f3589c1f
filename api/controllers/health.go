package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/baxeinwear/storefront-backend/api/responses"
	"github.com/baxeinwear/storefront-backend/pkg/config"
	pkgerrors "github.com/baxeinwear/storefront-backend/pkg/errors"
	"github.com/baxeinwear/storefront-backend/pkg/logger"
)

const readinessTimeout = 2 * time.Second

// Pinger is satisfied by the database and Redis clients.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Baxeinwear-Env", cfg.App.Env)
		responses.WriteSuccess(w, "live", map[string]string{"status": "live"})
	}
}

// HealthReady pings the database and Redis and reports 503 when either is down.
func HealthReady(cfg *config.Config, db Pinger, cache Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Baxeinwear-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		for _, check := range []struct {
			name string
			dep  Pinger
		}{{"database", db}, {"redis", cache}} {
			if check.dep == nil {
				continue
			}
			if err := check.dep.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, check.name+" unavailable"))
				return
			}
		}

		responses.WriteSuccess(w, "ready", map[string]string{"status": "ready"})
	}
}
