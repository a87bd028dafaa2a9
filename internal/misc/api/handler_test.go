package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"

	"github.com/emicklei/go-restful/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/babelcloud/gbox/packages/relay/internal/misc/api"
	"github.com/babelcloud/gbox/packages/relay/internal/misc/model"
	"github.com/babelcloud/gbox/packages/relay/internal/misc/service"
	browser "github.com/babelcloud/gbox/packages/relay/pkg/browser"
)

type fakeSession struct {
	healthy bool
	mode    browser.DisplayMode
}

func (s fakeSession) Healthy() bool { return s.healthy }
func (s fakeSession) Mode() browser.DisplayMode { return s.mode }

func get(session service.Session, path string) *httptest.ResponseRecorder {
	ws := new(restful.WebService)
	ws.Path("/api").Produces(restful.MIME_JSON)
	api.RegisterRoutes(ws, api.NewMiscHandler(service.New(session)))
	c := restful.NewContainer()
	c.Add(ws)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Accept", restful.MIME_JSON)
	rec := httptest.NewRecorder()
	c.ServeHTTP(rec, req)
	return rec
}

func TestGetVersion(t *testing.T) {
	rec := get(nil, "/api/version")
	require.Equal(t, http.StatusOK, rec.Code)

	var info model.VersionInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, service.Version, info.Version)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, "unknown", info.FormattedTime)
	assert.NotEmpty(t, info.Uptime)
}

func TestGetHealth(t *testing.T) {
	tests := []struct {
		name       string
		session    service.Session
		wantStatus int
		want       model.HealthInfo
	}{
		{"up", fakeSession{healthy: true, mode: browser.ModeWindowed}, http.StatusOK,
			model.HealthInfo{Status: "ok", Browser: true, BrowserMode: "normal"}},
		{"down", fakeSession{mode: browser.ModeHeadless}, http.StatusServiceUnavailable,
			model.HealthInfo{Status: "degraded", BrowserMode: "headless"}},
		{"no session", nil, http.StatusServiceUnavailable,
			model.HealthInfo{Status: "degraded"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(tt.session, "/api/health")
			assert.Equal(t, tt.wantStatus, rec.Code)

			var got model.HealthInfo
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}
