package handler

import (
	"net/http"

	"github.com/matthewbaird/chaincodegen/internal/project"
)

// HandleHealth reports liveness.
// GET /healthz
func HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleListBlocks returns the block palette, optionally filtered by
// category.
// GET /v1/blocks?category=assets
func HandleListBlocks(w http.ResponseWriter, r *http.Request) {
	blocks := project.Catalog
	categories := project.Categories
	if c := r.URL.Query().Get("category"); c != "" {
		blocks = project.ByCategory()[c]
		categories = nil
		for _, cat := range project.Categories {
			if cat.ID == c {
				categories = append(categories, cat)
			}
		}
		if len(categories) == 0 {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "unknown category: "+c)
			return
		}
	}
	writeJSON(w, http.StatusOK, struct {
		Categories []project.Category `json:"categories"`
		Blocks     []project.BlockDef `json:"blocks"`
	}{categories, blocks})
}
