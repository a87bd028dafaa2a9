package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/emicklei/go-restful/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/babelcloud/gbox/packages/relay/internal/history/api"
	historySvc "github.com/babelcloud/gbox/packages/relay/internal/history/service"
	model "github.com/babelcloud/gbox/packages/relay/pkg/chat"
	"github.com/babelcloud/gbox/packages/relay/pkg/logger"
)

type failingLister struct{ err error }

func (f failingLister) ListByUsername(ctx context.Context, username string) ([]model.Entry, error) {
	return nil, f.err
}

func newContainer(store api.Lister) *restful.Container {
	log := logger.New()
	log.Silence()

	ws := new(restful.WebService)
	ws.Path("/api").Produces(restful.MIME_JSON)
	api.RegisterRoutes(ws, api.NewHistoryHandler(store, log))

	c := restful.NewContainer()
	c.Add(ws)
	return c
}

func get(c *restful.Container, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Accept", restful.MIME_JSON)
	rec := httptest.NewRecorder()
	c.ServeHTTP(rec, req)
	return rec
}

func TestGetHistory(t *testing.T) {
	store := historySvc.NewMemoryStore()
	ctx := context.Background()
	cmd := `{"action":"navigate","url":"https://www.youtube.com/results?search_query=cats"}`
	require.NoError(t, store.Append(ctx, model.Entry{
		Username: "ana", Message: "hi", AIResponse: "Hello!",
		CreatedAt: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, store.Append(ctx, model.Entry{
		Username: "ana", Message: "find cats", AIResponse: "Searching.", Command: &cmd,
		CreatedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}))

	rec := get(newContainer(store), "/api/history/ana")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		History []map[string]interface{} `json:"history"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.History, 2)
	assert.Equal(t, "find cats", body.History[0]["message"])
	assert.Equal(t, cmd, body.History[0]["command"])
	assert.Equal(t, "Hello!", body.History[1]["ai_response"])
	assert.Nil(t, body.History[1]["command"])
	assert.Contains(t, body.History[1], "created_at")
}

func TestGetHistoryUnknownUserIsEmpty(t *testing.T) {
	rec := get(newContainer(historySvc.NewMemoryStore()), "/api/history/nobody")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"history":[]}`, rec.Body.String())
}

func TestGetHistoryStoreFailure(t *testing.T) {
	rec := get(newContainer(failingLister{err: errors.New("connection refused")}), "/api/history/ana")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}
