package health

import (
	"context"
	"log/slog"
	"net/http"
)

type service interface {
	Ping(ctx context.Context) error
}

// Health reports liveness via a storage connectivity probe. Any storage
// failure collapses into a single unhealthy signal.
func Health(w http.ResponseWriter, r *http.Request, service service) {
	if err := service.Ping(r.Context()); err != nil {
		slog.Error("Health probe failed", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("Service is unhealthy"))

		return
	}

	_, _ = w.Write([]byte("Service is healthy"))
}
