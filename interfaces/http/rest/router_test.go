package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"paperindex/application/loading"
	"paperindex/application/queries"
	"paperindex/domain/config"
	"paperindex/domain/paper"
	"paperindex/domain/projection"
	"paperindex/infrastructure/observability"
	"paperindex/infrastructure/persistence/memory"
)

var testPapers = []paper.Paper{
	{
		ID:         "hep-th/9901001",
		Title:      "Strings on Graphs",
		Authors:    []string{"Ann Lee"},
		Categories: []string{"hep-th"},
		Abstract:   "graph strings graph",
		Published:  "2024-01-01",
	},
	{
		ID:         "2401.00002",
		Title:      "Graph Attention",
		Authors:    []string{"Ann Lee", "Bo Chen"},
		Categories: []string{"cs.LG"},
		Abstract:   "graph attention networks",
		Published:  "2024-01-02",
	},
	{
		ID:         "2401.00003",
		Title:      "Sparse Models",
		Authors:    []string{"Bo Chen"},
		Categories: []string{"cs.LG"},
		Abstract:   "sparse models",
		Published:  "2024-01-03",
	},
}

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	store := memory.NewStore()
	cfg := config.DefaultDomainConfig()

	coordinator := loading.NewCoordinator(store, projection.NewProjector(nil, cfg.KeywordTopK), nil, nil, cfg, zap.NewNop())
	_, err := coordinator.Load(context.Background(), paper.NewSliceSource(testPapers))
	require.NoError(t, err)

	router := queries.NewRouter(store, nil, cfg, time.Second, zap.NewNop())
	return NewRouter(router, store, observability.NewCollector("test"), Options{EnableCORS: true}, zap.NewNop()).Setup()
}

func get(t *testing.T, h http.Handler, target string) (int, map[string]interface{}) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	var body map[string]interface{}
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") != "" {
		_ = json.Unmarshal(rec.Body.Bytes(), &body)
	}
	return rec.Code, body
}

func paperIDs(body map[string]interface{}) []string {
	papers, _ := body["papers"].([]interface{})
	ids := make([]string, 0, len(papers))
	for _, p := range papers {
		ids = append(ids, p.(map[string]interface{})["arxiv_id"].(string))
	}
	return ids
}

func TestRecent(t *testing.T) {
	h := newTestServer(t)

	status, body := get(t, h, "/papers/recent?category=cs.LG&limit=1")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "cs.LG", body["category"])
	assert.Equal(t, float64(1), body["limit"])
	assert.Equal(t, float64(1), body["count"])
	assert.Equal(t, []string{"2401.00003"}, paperIDs(body))

	status, body = get(t, h, "/papers/recent?category=math.AG")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(0), body["count"])
	assert.Equal(t, []interface{}{}, body["papers"])
}

func TestRecent_BadParameters(t *testing.T) {
	h := newTestServer(t)

	for _, target := range []string{
		"/papers/recent?category=cs.LG&limit=abc",
		"/papers/recent?category=cs.LG&limit=0",
		"/papers/recent?category=cs.LG&limit=1000",
		"/papers/recent",
	} {
		status, body := get(t, h, target)
		assert.Equal(t, http.StatusBadRequest, status, target)
		assert.Equal(t, "INVALID_QUERY_PARAMETER", body["type"], target)
	}
}

func TestSearch(t *testing.T) {
	h := newTestServer(t)

	status, body := get(t, h, "/papers/search?category=cs.LG&start=2024-01-01&end=2024-01-02")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"2401.00002"}, paperIDs(body))
	assert.Equal(t, "2024-01-01", body["start"])

	status, _ = get(t, h, "/papers/search?category=cs.LG&start=2024-01-03&end=2024-01-01")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestByAuthor(t *testing.T) {
	h := newTestServer(t)

	status, body := get(t, h, "/papers/author/Ann%20Lee")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Ann Lee", body["author"])
	assert.ElementsMatch(t, []string{"hep-th/9901001", "2401.00002"}, paperIDs(body))
}

func TestByKeyword(t *testing.T) {
	h := newTestServer(t)

	status, body := get(t, h, "/papers/keyword/GRAPH?limit=5")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"2401.00002", "hep-th/9901001"}, paperIDs(body))
}

func TestByID(t *testing.T) {
	h := newTestServer(t)

	for _, target := range []string{"/papers/hep-th/9901001", "/papers/hep-th%2F9901001"} {
		status, body := get(t, h, target)
		require.Equal(t, http.StatusOK, status, target)
		assert.Equal(t, "hep-th/9901001", body["arxiv_id"], target)
		require.Equal(t, float64(1), body["count"], target)
		first := body["papers"].([]interface{})[0].(map[string]interface{})
		assert.Equal(t, "graph strings graph", first["abstract"])
	}

	status, body := get(t, h, "/papers/9999.99999")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", body["type"])
}

func TestProbesAndMetrics(t *testing.T) {
	h := newTestServer(t)

	status, body := get(t, h, "/health")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", body["status"])

	status, body = get(t, h, "/ready")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "memory", body["table"])

	get(t, h, "/papers/recent?category=cs.LG")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `test_http_requests_total{method="GET",route="/papers/recent",status="200"} 1`)

	status, _ = get(t, h, "/nowhere")
	assert.Equal(t, http.StatusNotFound, status)
}
