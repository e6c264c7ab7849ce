package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/EmpoweredVote/zone-incidents/internal/config"
	"github.com/EmpoweredVote/zone-incidents/internal/dbtest"
)

func newTestServer(t *testing.T, mutate func(*config.Config)) http.Handler {
	t.Helper()
	d := dbtest.Open(t)
	require.NoError(t, Migrate(d))

	cfg := config.Default()
	cfg.Database.URL = "sqlite://memory"
	cfg.RateLimit.RPS = 0
	if mutate != nil {
		mutate(&cfg)
	}
	return New(&cfg, d, zap.NewNop())
}

func send(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthOutsidePrefix(t *testing.T) {
	h := newTestServer(t, nil)

	rec := send(t, h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	assert.Equal(t, http.StatusNotFound, send(t, h, http.MethodGet, "/v1/health", "").Code)
}

func TestRoutesLiveUnderPrefix(t *testing.T) {
	h := newTestServer(t, nil)

	assert.Equal(t, http.StatusOK, send(t, h, http.MethodGet, "/v1/zones", "").Code)
	assert.Equal(t, http.StatusOK, send(t, h, http.MethodGet, "/v1/incidents", "").Code)
	assert.Equal(t, http.StatusOK, send(t, h, http.MethodGet, "/v1/users", "").Code)

	rec := send(t, h, http.MethodGet, "/zones", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"statusCode":404`)
}

func TestEmptyPrefix(t *testing.T) {
	h := newTestServer(t, func(c *config.Config) { c.Server.Prefix = "" })
	assert.Equal(t, http.StatusOK, send(t, h, http.MethodGet, "/zones", "").Code)
}

// TestZoneIncidentLifecycle drives the whole API through one router: a zone
// with a polygon, incidents in it, filters, validation and cleanup.
func TestZoneIncidentLifecycle(t *testing.T) {
	h := newTestServer(t, nil)

	rec := send(t, h, http.MethodPost, "/v1/zone", `{"name":"Centro","risk_level":2,"coordinates":[[[1,1],[2,2],[3,3]]]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var z struct {
		ID       string `json:"id"`
		Location struct {
			ID string `json:"id"`
		} `json:"location"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &z))
	require.NotEmpty(t, z.Location.ID)

	for _, body := range []string{
		`{"zone_id":"` + z.ID + `","severity":2,"type":"THEFT","report_time":"2024-05-01T10:00:00Z"}`,
		`{"zone":{"connect":{"id":"` + z.ID + `"}},"severity":4,"type":"FIRE","report_time":"2024-05-02T10:00:00Z"}`,
	} {
		rec = send(t, h, http.MethodPost, "/v1/incident", body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	var list []struct {
		ID                     string `json:"id"`
		Severity               int    `json:"severity"`
		IsValidatedByAuthority bool   `json:"is_validated_by_authority"`
	}
	rec = send(t, h, http.MethodGet, "/v1/incidents/severity/3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, 4, list[0].Severity)

	rec = send(t, h, http.MethodPut, "/v1/incidents/"+list[0].ID+"/validate", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = send(t, h, http.MethodGet, "/v1/incidents/zone/"+z.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.False(t, list[0].IsValidatedByAuthority)
	assert.True(t, list[1].IsValidatedByAuthority)

	// the zone is still referenced
	assert.Equal(t, http.StatusBadRequest, send(t, h, http.MethodDelete, "/v1/zones/"+z.ID, "").Code)

	for _, inc := range list {
		require.Equal(t, http.StatusOK, send(t, h, http.MethodDelete, "/v1/incidents/"+inc.ID, "").Code)
	}
	require.Equal(t, http.StatusOK, send(t, h, http.MethodDelete, "/v1/zones/"+z.ID, "").Code)
	assert.Equal(t, http.StatusNotFound, send(t, h, http.MethodGet, "/v1/zones/"+z.ID, "").Code)
}

func TestRateLimitApplies(t *testing.T) {
	h := newTestServer(t, func(c *config.Config) {
		c.RateLimit.RPS = 0.01
		c.RateLimit.Burst = 1
	})

	assert.Equal(t, http.StatusOK, send(t, h, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, send(t, h, http.MethodGet, "/health", "").Code)
}
