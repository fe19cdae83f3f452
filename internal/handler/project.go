// Project handlers operate on the project store. Saves and deletions are
// recorded as domain events; generation history is read back from the
// activity store.
package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/matthewbaird/chaincodegen/internal/activity"
	"github.com/matthewbaird/chaincodegen/internal/codegen"
	"github.com/matthewbaird/chaincodegen/internal/event"
	"github.com/matthewbaird/chaincodegen/internal/pipeline"
	"github.com/matthewbaird/chaincodegen/internal/store"
)

// ProjectHandler implements HTTP handlers for stored projects.
type ProjectHandler struct {
	store    store.Store
	activity activity.Store
	pipeline *pipeline.Pipeline
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(s store.Store, a activity.Store, pl *pipeline.Pipeline) *ProjectHandler {
	return &ProjectHandler{store: s, activity: a, pipeline: pl}
}

// ProjectSummary is the list view of a stored project.
type ProjectSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"chaincodeName"`
	Version   string    `json:"chaincodeVersion"`
	Blocks    int       `json:"blocks"`
	Fields    int       `json:"fields"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ─── CRUD ────────────────────────────────────────────────────────────────────

// CreateProject stores a new project.
// POST /v1/projects
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	p, ok := decodeProject(w, r)
	if !ok {
		return
	}
	if err := p.Validate(); err != nil {
		validationError(w, err)
		return
	}
	rec, err := h.store.Create(r.Context(), p)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	recordEvent(r.Context(), h.pipeline.Recorder, event.NewProjectSaved(event.ProjectPayload{
		ProjectID: rec.Project.ID,
		Name:      rec.Project.Name,
		Version:   rec.Project.Version,
		Created:   true,
	}))
	writeJSON(w, http.StatusCreated, rec)
}

// GetProject returns one stored project.
// GET /v1/projects/{id}
func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	id, ok := parseProjectID(w, r)
	if !ok {
		return
	}
	rec, err := h.store.Get(r.Context(), id)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// ListProjects returns a page of project summaries, most recently updated
// first.
// GET /v1/projects?page_size=20&offset=0
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	page := parsePagination(r)
	recs, total, err := h.store.List(r.Context(), store.ListOptions{Limit: page.Limit, Offset: page.Offset})
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	out := make([]ProjectSummary, len(recs))
	for i, rec := range recs {
		out[i] = ProjectSummary{
			ID:        rec.Project.ID,
			Name:      rec.Project.Name,
			Version:   rec.Project.Version,
			Blocks:    len(rec.Project.Canvas),
			Fields:    len(rec.Project.AssetFields),
			CreatedAt: rec.CreatedAt,
			UpdatedAt: rec.UpdatedAt,
		}
	}
	writeJSON(w, http.StatusOK, struct {
		Projects   []ProjectSummary `json:"projects"`
		TotalCount int              `json:"total_count"`
		PageSize   int              `json:"page_size"`
		Offset     int              `json:"offset"`
	}{out, total, page.Limit, page.Offset})
}

// UpdateProject replaces a stored project. The id in the path wins over any
// id in the body.
// PUT /v1/projects/{id}
func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	id, ok := parseProjectID(w, r)
	if !ok {
		return
	}
	p, ok := decodeProject(w, r)
	if !ok {
		return
	}
	if err := p.Validate(); err != nil {
		validationError(w, err)
		return
	}
	p.ID = id
	rec, err := h.store.Update(r.Context(), p)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	recordEvent(r.Context(), h.pipeline.Recorder, event.NewProjectSaved(event.ProjectPayload{
		ProjectID: rec.Project.ID,
		Name:      rec.Project.Name,
		Version:   rec.Project.Version,
	}))
	writeJSON(w, http.StatusOK, rec)
}

// DeleteProject removes a stored project. Its history stays in the
// activity store.
// DELETE /v1/projects/{id}
func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id, ok := parseProjectID(w, r)
	if !ok {
		return
	}
	rec, err := h.store.Get(r.Context(), id)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	if err := h.store.Delete(r.Context(), id); err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	recordEvent(r.Context(), h.pipeline.Recorder, event.NewProjectDeleted(event.ProjectPayload{
		ProjectID: id,
		Name:      rec.Project.Name,
		Version:   rec.Project.Version,
	}))
	w.WriteHeader(http.StatusNoContent)
}

// ─── Generation ──────────────────────────────────────────────────────────────

// DownloadChaincode renders a stored project as a Go source download. The
// download is not published or recorded.
// GET /v1/projects/{id}/chaincode
func (h *ProjectHandler) DownloadChaincode(w http.ResponseWriter, r *http.Request) {
	id, ok := parseProjectID(w, r)
	if !ok {
		return
	}
	rec, err := h.store.Get(r.Context(), id)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	out := pipeline.Render(rec.Project, parseBool(r, "gofmt", h.pipeline.Gofmt))
	writeSource(w, out, true)
}

// GenerateProject renders a stored project, publishes the source to the
// configured artifact sinks and records the generation.
// POST /v1/projects/{id}/generate
func (h *ProjectHandler) GenerateProject(w http.ResponseWriter, r *http.Request) {
	id, ok := parseProjectID(w, r)
	if !ok {
		return
	}
	rec, err := h.store.Get(r.Context(), id)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	pl := *h.pipeline
	pl.Gofmt = parseBool(r, "gofmt", pl.Gofmt)
	out, err := pl.Run(r.Context(), rec.Project)
	if err != nil {
		writeError(w, http.StatusBadGateway, "PUBLISH_FAILED", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// ListGenerations returns the generation history of a project, newest
// first.
// GET /v1/projects/{id}/generations?limit=50&cursor=...
func (h *ProjectHandler) ListGenerations(w http.ResponseWriter, r *http.Request) {
	id, ok := parseProjectID(w, r)
	if !ok {
		return
	}
	opts := activity.DefaultQueryOptions()
	opts.EventTypes = []string{event.TypeChaincodeGenerated}
	if v := r.URL.Query().Get("event_types"); v != "" {
		opts.EventTypes = strings.Split(v, ",")
	}
	if s := r.URL.Query().Get("since"); s != "" {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			opts.Since = &t
		}
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			opts.Limit = min(n, 500)
		}
	}
	opts.Cursor = r.URL.Query().Get("cursor")

	entries, next, total, err := h.activity.QueryByEntity(r.Context(), "project", id, opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "QUERY_FAILED", err.Error())
		return
	}
	if entries == nil {
		entries = []activity.Entry{}
	}
	writeJSON(w, http.StatusOK, struct {
		Generations []activity.Entry `json:"generations"`
		NextCursor  string           `json:"next_cursor,omitempty"`
		TotalCount  int              `json:"total_count"`
	}{entries, next, total})
}

// ─── Validation ──────────────────────────────────────────────────────────────

// ValidateProject checks a posted project without storing or rendering it.
// Structural errors are returned alongside the generator's diagnostics.
// POST /v1/validate
func ValidateProject(w http.ResponseWriter, r *http.Request) {
	p, ok := decodeProject(w, r)
	if !ok {
		return
	}
	var problems []string
	if err := p.Validate(); err != nil {
		problems = strings.Split(err.Error(), "\n")
	}
	res := p.Generate()
	if res.Diagnostics == nil {
		res.Diagnostics = []codegen.Diagnostic{}
	}
	writeJSON(w, http.StatusOK, struct {
		Valid       bool                 `json:"valid"`
		Errors      []string             `json:"errors,omitempty"`
		AssetType   string               `json:"asset_type"`
		Diagnostics []codegen.Diagnostic `json:"diagnostics"`
		FileName    string               `json:"file_name"`
	}{len(problems) == 0, problems, res.AssetType, res.Diagnostics, p.FileName()})
}
