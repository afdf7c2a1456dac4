package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/medicart/medicart-backend/api/responses"
	"github.com/medicart/medicart-backend/pkg/config"
	"github.com/medicart/medicart-backend/pkg/logger"
)

// UpstreamPinger is the health surface of a remote collaborator.
type UpstreamPinger interface {
	Ping(ctx context.Context) error
}

// HealthLive reports process liveness.
func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{
			"status": "ok",
			"env":    cfg.App.Env,
		})
	}
}

// HealthReady pings the upstream collaborators. Nil pingers (an unconfigured
// cache, say) are reported as skipped rather than failing readiness.
func HealthReady(logg *logger.Logger, upstreams map[string]UpstreamPinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := http.StatusOK
		checks := map[string]string{}
		for name, pinger := range upstreams {
			if pinger == nil {
				checks[name] = "skipped"
				continue
			}
			if err := pinger.Ping(ctx); err != nil {
				checks[name] = "unavailable"
				status = http.StatusServiceUnavailable
				if logg != nil {
					logg.Warn(logg.WithFields(ctx, map[string]any{
						"check": name,
						"error": err.Error(),
					}), "readiness check failed")
				}
				continue
			}
			checks[name] = "ok"
		}

		responses.WriteSuccessStatus(w, status, checks)
	}
}
