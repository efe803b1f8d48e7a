package handlers

import (
	"context"
	"net/http"
	"time"
)

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{"status": "ok"}
	if a.Config != nil {
		body["store"] = a.Config.StoreDriver
	}
	if a.Hub != nil {
		body["subscribers"] = a.Hub.Len()
	}
	if a.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := a.DB.Ping(ctx); err != nil {
			a.Logger.Warn().Err(err).Msg("health check: store unreachable")
			body["status"] = "degraded"
			a.json(w, http.StatusServiceUnavailable, body)
			return
		}
	}
	a.json(w, http.StatusOK, body)
}
