package health

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/churchconnect/realtime/internal/infrastructure/json"
)

var (
	startTime       = time.Now()
	healthy   int32 = 1 // 1: healthy, 0 = unhealthy
)

// SetHealthy flips the readiness flag; the gateway marks itself unhealthy
// while draining connections during shutdown.
func SetHealthy(ok bool) {
	if ok {
		atomic.StoreInt32(&healthy, 1)
		return
	}
	atomic.StoreInt32(&healthy, 0)
}

type Handler struct {
	connections func() int
}

// NewHandler takes a callback reporting the current number of live
// WebSocket connections, included in the health payload.
func NewHandler(connections func() int) *Handler {
	if connections == nil {
		connections = func() int { return 0 }
	}
	return &Handler{connections: connections}
}

// GetHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the gateway, including uptime and live connection count
// @Tags         health
// @Produce      json
// @Success      200 {object} healthResponse "Service is healthy"
// @Failure      503 {object} healthResponse "Service is unhealthy"
// @Router       /health [get]
// @Router       /healthz [get]
// @Router       /ready [get]
// @Router       /live [get]
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:      "ok",
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Uptime:      time.Since(startTime).Round(time.Second).String(),
		Connections: h.connections(),
	}

	if atomic.LoadInt32(&healthy) == 0 {
		resp.Status = "unhealthy"
		json.Write(w, http.StatusServiceUnavailable, resp)
		return
	}

	json.Write(w, http.StatusOK, resp)
}
