package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/chaincodegen/internal/activity"
	"github.com/matthewbaird/chaincodegen/internal/artifact"
	"github.com/matthewbaird/chaincodegen/internal/event"
	"github.com/matthewbaird/chaincodegen/internal/pipeline"
	"github.com/matthewbaird/chaincodegen/internal/project"
	"github.com/matthewbaird/chaincodegen/internal/store"
)

const assetTransfer = `{
  "chaincodeName": "AssetTransfer",
  "chaincodeVersion": "1.0",
  "canvas": [
    {"instanceId": "init_1", "blockId": "init", "position": {"x": 10, "y": 10}},
    {"instanceId": "createAsset_2", "blockId": "createAsset", "position": {"x": 10, "y": 90}},
    {"instanceId": "readAsset_3", "blockId": "readAsset", "position": {"x": 10, "y": 170}}
  ],
  "blockProps": {
    "init_1": {"message": "Initializing the chaincode"},
    "createAsset_2": {"assetType": "Asset"}
  },
  "assetFields": [
    {"name": "ID", "type": "string", "jsonTag": "id"},
    {"name": "Owner", "type": "string", "jsonTag": "owner"},
    {"name": "Value", "type": "int", "jsonTag": "value"}
  ]
}`

type fixture struct {
	router   http.Handler
	projects *store.MemoryStore
	activity *activity.MemoryStore
	root     string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		projects: store.NewMemoryStore(),
		activity: activity.NewMemoryStore(),
		root:     t.TempDir(),
	}
	pl := &pipeline.Pipeline{
		Prefix:   "cc",
		Sinks:    artifact.Multi{artifact.DirSink{Root: f.root}},
		Recorder: event.NewActivityRecorder(f.activity),
	}
	gh := NewGenerateHandler(pl)
	ph := NewProjectHandler(f.projects, f.activity, pl)

	r := chi.NewRouter()
	r.Get("/healthz", HandleHealth)
	r.Get("/v1/blocks", HandleListBlocks)
	r.Post("/v1/generate", gh.HandleGenerate)
	r.Post("/v1/validate", ValidateProject)
	r.Post("/v1/projects", ph.CreateProject)
	r.Get("/v1/projects", ph.ListProjects)
	r.Get("/v1/projects/{id}", ph.GetProject)
	r.Put("/v1/projects/{id}", ph.UpdateProject)
	r.Delete("/v1/projects/{id}", ph.DeleteProject)
	r.Get("/v1/projects/{id}/chaincode", ph.DownloadChaincode)
	r.Post("/v1/projects/{id}/generate", ph.GenerateProject)
	r.Get("/v1/projects/{id}/generations", ph.ListGenerations)
	f.router = r
	return f
}

func (f *fixture) do(t *testing.T, method, target, body string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func TestHealth(t *testing.T) {
	w := newFixture(t).do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestListBlocks(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/v1/blocks", "")
	require.Equal(t, http.StatusOK, w.Code)
	all := decode[struct {
		Categories []project.Category `json:"categories"`
		Blocks     []project.BlockDef `json:"blocks"`
	}](t, w)
	assert.Len(t, all.Blocks, len(project.Catalog))
	assert.Len(t, all.Categories, len(project.Categories))

	w = f.do(t, http.MethodGet, "/v1/blocks?category=assets", "")
	require.Equal(t, http.StatusOK, w.Code)
	assets := decode[struct {
		Categories []project.Category `json:"categories"`
		Blocks     []project.BlockDef `json:"blocks"`
	}](t, w)
	require.Len(t, assets.Categories, 1)
	for _, b := range assets.Blocks {
		assert.Equal(t, "assets", b.Category)
	}

	w = f.do(t, http.MethodGet, "/v1/blocks?category=nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGenerate(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/v1/generate", assetTransfer)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	out := decode[pipeline.Output](t, w)
	assert.Equal(t, "Asset", out.AssetType)
	assert.Equal(t, "asset_transfer.go", out.FileName)
	assert.Contains(t, out.Source, "func (s *SmartContract) ReadAsset(")
	assert.Empty(t, out.Artifacts, "ad hoc generation is never published")

	entries, err := os.ReadDir(f.root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestGenerate_Raw(t *testing.T) {
	w := newFixture(t).do(t, http.MethodPost, "/v1/generate?raw=true", assetTransfer)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/x-go; charset=utf-8", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "// Generated Chaincode: AssetTransfer v1.0\npackage main\n"))
}

func TestGenerate_YAMLByContentType(t *testing.T) {
	body := "chaincodeName: Fleet\ncanvas:\n  - {instanceId: q_1, blockId: query}\nassetFields:\n  - {name: ID, type: string, jsonTag: id}\n"
	w := newFixture(t).do(t, http.MethodPost, "/v1/generate", body, "Content-Type", "application/yaml")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	out := decode[pipeline.Output](t, w)
	assert.Contains(t, out.Source, "func (s *SmartContract) QueryAssets(")
	assert.Equal(t, "fleet.go", out.FileName)
}

func TestGenerate_BadInput(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/v1/generate", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_PROJECT", decode[errorBody](t, w).Code)

	w = f.do(t, http.MethodPost, "/v1/generate?format=toml", assetTransfer)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_FORMAT", decode[errorBody](t, w).Code)
}

func TestValidate(t *testing.T) {
	f := newFixture(t)
	body := `{"chaincodeName":"X","canvas":[{"instanceId":"a","blockId":"readAsset"},{"instanceId":"a","blockId":"deleteAsset"}],
		"assetFields":[{"name":"Owner","type":"string","jsonTag":"owner"}]}`

	w := f.do(t, http.MethodPost, "/v1/validate", body)
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[struct {
		Valid       bool     `json:"valid"`
		Errors      []string `json:"errors"`
		Diagnostics []struct {
			Code string `json:"code"`
		} `json:"diagnostics"`
	}](t, w)
	assert.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "duplicate block instance id")
	require.NotEmpty(t, res.Diagnostics)
	assert.Equal(t, "missing_key_field", res.Diagnostics[0].Code)
}

func TestProjectLifecycle(t *testing.T) {
	f := newFixture(t)

	// Create
	w := f.do(t, http.MethodPost, "/v1/projects", assetTransfer)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[store.Record](t, w)
	id := created.Project.ID
	require.NotEmpty(t, id)

	// Get
	w = f.do(t, http.MethodGet, "/v1/projects/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "AssetTransfer", decode[store.Record](t, w).Project.Name)

	// List
	w = f.do(t, http.MethodGet, "/v1/projects?page_size=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct {
		Projects   []ProjectSummary `json:"projects"`
		TotalCount int              `json:"total_count"`
		PageSize   int              `json:"page_size"`
	}](t, w)
	assert.Equal(t, 1, list.TotalCount)
	assert.Equal(t, 5, list.PageSize)
	require.Len(t, list.Projects, 1)
	assert.Equal(t, 3, list.Projects[0].Blocks)

	// Update
	renamed := strings.Replace(assetTransfer, `"AssetTransfer"`, `"CarTransfer"`, 1)
	w = f.do(t, http.MethodPut, "/v1/projects/"+id, renamed)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, id, decode[store.Record](t, w).Project.ID)

	// Download
	w = f.do(t, http.MethodGet, "/v1/projects/"+id+"/chaincode", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename=car_transfer.go`, w.Header().Get("Content-Disposition"))
	src, _ := io.ReadAll(w.Body)
	assert.Contains(t, string(src), "func (s *SmartContract) CreateAsset(")

	// Generate publishes and records
	w = f.do(t, http.MethodPost, "/v1/projects/"+id+"/generate", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	out := decode[pipeline.Output](t, w)
	require.Len(t, out.Artifacts, 1)
	assert.FileExists(t, out.Artifacts[0])

	w = f.do(t, http.MethodGet, "/v1/projects/"+id+"/generations", "")
	require.Equal(t, http.StatusOK, w.Code)
	gens := decode[struct {
		Generations []activity.Entry `json:"generations"`
		TotalCount  int              `json:"total_count"`
	}](t, w)
	require.Equal(t, 1, gens.TotalCount)
	assert.Equal(t, event.TypeChaincodeGenerated, gens.Generations[0].EventType)

	w = f.do(t, http.MethodGet, "/v1/projects/"+id+"/generations?event_types=project_saved,project_deleted", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, decode[struct {
		TotalCount int `json:"total_count"`
	}](t, w).TotalCount)

	// Delete
	w = f.do(t, http.MethodDelete, "/v1/projects/"+id, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = f.do(t, http.MethodGet, "/v1/projects/"+id, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decode[errorBody](t, w).Code)
}

func TestProject_Errors(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/v1/projects/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ID", decode[errorBody](t, w).Code)

	w = f.do(t, http.MethodPut, "/v1/projects/6f1c2a53-8f0e-4b7a-9a43-1f8f2b2e9d11", assetTransfer)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodPost, "/v1/projects", `{"chaincodeName":"  "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode[errorBody](t, w).Code)

	w = f.do(t, http.MethodGet, "/v1/projects/6f1c2a53-8f0e-4b7a-9a43-1f8f2b2e9d11/generations", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"generations":[],"total_count":0}`, w.Body.String())
}
