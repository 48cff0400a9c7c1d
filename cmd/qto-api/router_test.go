package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/spherical-ai/spherical/libs/quantity-engine/cmd/qto-api/handlers"
	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/config"
	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/observability"
	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/service"
)

const houseExport = `{
  "name": "house.ifc",
  "schema": "IFC4",
  "project": "Demo",
  "elements": [
    {"id": "w1", "type": "IfcWall", "property_sets": {"Qto_WallBaseQuantities": {"NetSideArea": 30}}},
    {"id": "w2", "type": "IfcWall", "property_sets": {"Qto_WallBaseQuantities": {"NetSideArea": 30}}},
    {"id": "w3", "type": "IfcWall", "property_sets": {"Qto_WallBaseQuantities": {"NetSideArea": 24}}},
    {"id": "w4", "type": "IfcWall", "property_sets": {"Qto_WallBaseQuantities": {"NetSideArea": 24}}},
    {"id": "d1", "type": "IfcDoor"},
    {"id": "d2", "type": "IfcDoor"},
    {"id": "t1", "type": "IfcFlowTerminal"}
  ]
}`

// syncBuffer is written by server goroutines and read by the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestServer(t *testing.T, maxUpload int64) (*httptest.Server, *syncBuffer) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Database.SQLite.Path = filepath.Join(t.TempDir(), "qto.db")
	cfg.Server.MaxUploadBytes = maxUpload

	logs := &syncBuffer{}
	logger := observability.NewLogger(observability.LogConfig{Level: "info", Output: logs})

	svc, err := service.Open(context.Background(), cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })

	srv := httptest.NewServer(NewRouter(logger, svc, cfg.Server))
	t.Cleanup(srv.Close)
	return srv, logs
}

func do(t *testing.T, method, url string, body string, out any) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func importHouse(t *testing.T, srv *httptest.Server) handlers.SummaryDTO {
	t.Helper()
	var summary handlers.SummaryDTO
	resp := do(t, http.MethodPost, srv.URL+"/api/v1/models", houseExport, &summary)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return summary
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, 0)

	var body map[string]string
	resp := do(t, http.MethodGet, srv.URL+"/health", "", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])
}

func TestImportAndSummary(t *testing.T) {
	srv, logs := newTestServer(t, 0)

	summary := importHouse(t, srv)
	assert.Equal(t, "house.ifc", summary.Model.Name)
	assert.Equal(t, "IFC4", summary.Info.Schema)
	assert.Equal(t, 216.0, summary.Plastering.Area)
	assert.Equal(t, 2, summary.Plastering.Faces)
	assert.Equal(t, "AUTHORITATIVE", summary.Plastering.Confidence)
	require.Len(t, summary.Dropped, 1)
	assert.Equal(t, "t1", summary.Dropped[0].ElementID)
	require.Len(t, summary.Groups, 2)
	assert.Equal(t, "Door", summary.Groups[0].Type)

	var again handlers.SummaryDTO
	resp := do(t, http.MethodPost, srv.URL+"/api/v1/models?name=ignored", houseExport, &again)
	assert.Equal(t, http.StatusCreated, resp.StatusCode, "a renamed export is a different document")

	resp = do(t, http.MethodPost, srv.URL+"/api/v1/models", houseExport, &again)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, again.Existing)
	assert.Equal(t, summary.Model.ID, again.Model.ID)

	var got handlers.SummaryDTO
	resp = do(t, http.MethodGet, srv.URL+"/api/v1/models/"+summary.Model.ID+"/summary", "", &got)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, summary.Plastering, got.Plastering)

	var list struct {
		Models []handlers.ModelDTO `json:"models"`
	}
	do(t, http.MethodGet, srv.URL+"/api/v1/models", "", &list)
	assert.Len(t, list.Models, 2)

	assert.Contains(t, logs.String(), `"trace_id"`)
	assert.Contains(t, logs.String(), `"path":"/api/v1/models"`)
}

func TestImport_Errors(t *testing.T) {
	srv, _ := newTestServer(t, 64)

	var body map[string]string
	resp := do(t, http.MethodPost, srv.URL+"/api/v1/models", "", &body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid element export", body["error"])

	resp = do(t, http.MethodPost, srv.URL+"/api/v1/models", houseExport, &body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestQuery(t *testing.T) {
	srv, _ := newTestServer(t, 0)
	summary := importHouse(t, srv)
	url := srv.URL + "/api/v1/models/" + summary.Model.ID + "/query"

	var first handlers.QueryResponseDTO
	resp := do(t, http.MethodPost, url, `{"question": "How much plaster for 12mm double coat?"}`, &first)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "PLASTER_VOLUME", first.Intent)
	require.NotNil(t, first.Payload.Value)
	assert.InDelta(t, 5.184, *first.Payload.Value, 1e-9)
	assert.Contains(t, first.Answer, "5.184 m³")
	assert.NotEmpty(t, first.SessionID)

	var second handlers.QueryResponseDTO
	do(t, http.MethodPost, url, `{"question": "How many doors?", "sessionId": "`+first.SessionID+`"}`, &second)
	assert.Equal(t, first.SessionID, second.SessionID)
	assert.Equal(t, "The model contains 2 doors.", second.Answer)

	var byName handlers.QueryResponseDTO
	do(t, http.MethodPost, srv.URL+"/api/v1/models/house.ifc/query", `{"question": "Tell me a joke"}`, &byName)
	assert.Equal(t, "UNKNOWN", byName.Intent)
	assert.True(t, byName.Payload.ClarificationNeeded)
	assert.NotEqual(t, first.SessionID, byName.SessionID)

	var history struct {
		Entries []map[string]any `json:"entries"`
	}
	resp = do(t, http.MethodGet, srv.URL+"/api/v1/models/"+summary.Model.ID+"/history?limit=2", "", &history)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, history.Entries, 2)
}

func TestQuery_Errors(t *testing.T) {
	srv, _ := newTestServer(t, 0)
	summary := importHouse(t, srv)
	url := srv.URL + "/api/v1/models/" + summary.Model.ID + "/query"

	var body map[string]string
	resp := do(t, http.MethodPost, url, `{}`, &body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "question is required", body["error"])

	resp = do(t, http.MethodPost, url, `not json`, &body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, http.MethodPost, srv.URL+"/api/v1/models/00000000-0000-0000-0000-000000000001/query", `{"question": "How many doors?"}`, &body)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/api/v1/models/"+summary.Model.ID+"/history?limit=0", "", &body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExportAndDelete(t *testing.T) {
	srv, _ := newTestServer(t, 0)
	summary := importHouse(t, srv)
	base := srv.URL + "/api/v1/models/" + summary.Model.ID

	resp := do(t, http.MethodGet, base+"/export", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "house.ifc.xlsx")

	f, err := excelize.OpenReader(resp.Body)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Dropped")
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "IfcFlowTerminal"}, rows[1])

	resp = do(t, http.MethodDelete, base, "", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, http.MethodGet, base+"/summary", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
