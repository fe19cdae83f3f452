package handler

import (
	"net/http"

	"github.com/matthewbaird/chaincodegen/internal/pipeline"
)

// GenerateHandler renders projects posted inline, without storing them.
type GenerateHandler struct {
	pipeline *pipeline.Pipeline
}

// NewGenerateHandler creates a GenerateHandler. Only the pipeline's gofmt
// default and recorder are used; ad hoc output is never published.
func NewGenerateHandler(pl *pipeline.Pipeline) *GenerateHandler {
	return &GenerateHandler{pipeline: pl}
}

// HandleGenerate renders the posted project. With ?raw=true the response is
// the Go source itself; otherwise it is the JSON generation result.
// POST /v1/generate
func (h *GenerateHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	p, ok := decodeProject(w, r)
	if !ok {
		return
	}
	pl := pipeline.Pipeline{
		Gofmt:    parseBool(r, "gofmt", h.pipeline.Gofmt),
		Recorder: h.pipeline.Recorder,
	}
	out, err := pl.Run(r.Context(), p)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "GENERATE_FAILED", err.Error())
		return
	}
	if parseBool(r, "raw", false) {
		writeSource(w, out, false)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func writeSource(w http.ResponseWriter, out *pipeline.Output, download bool) {
	w.Header().Set("Content-Type", "text/x-go; charset=utf-8")
	if download {
		w.Header().Set("Content-Disposition", attachment(out.FileName))
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(out.Source))
}
