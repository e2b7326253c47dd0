package health

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetHealth_Reports_Ok_With_Connections(t *testing.T) {
	req := require.New(t)
	SetHealthy(true)

	h := NewHandler(func() int { return 3 })

	w := httptest.NewRecorder()
	h.GetHealth(w, httptest.NewRequest("GET", "/health", nil))

	req.Equal(200, w.Code)

	var body healthResponse
	req.NoError(json.Unmarshal(w.Body.Bytes(), &body))
	req.Equal("ok", body.Status)
	req.Equal(3, body.Connections)
	req.NotEmpty(body.Uptime)
	req.NotEmpty(body.Timestamp)
}

func TestGetHealth_Unhealthy_While_Draining(t *testing.T) {
	req := require.New(t)
	SetHealthy(false)
	defer SetHealthy(true)

	h := NewHandler(nil)

	w := httptest.NewRecorder()
	h.GetHealth(w, httptest.NewRequest("GET", "/ready", nil))

	req.Equal(503, w.Code)

	var body healthResponse
	req.NoError(json.Unmarshal(w.Body.Bytes(), &body))
	req.Equal("unhealthy", body.Status)
}
