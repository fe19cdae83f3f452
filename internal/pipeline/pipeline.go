// Package pipeline runs a project through generation and then the optional
// steps around it: gofmt, artifact publication and event recording. The CLI
// and the HTTP handlers share it.
package pipeline

import (
	"context"
	"fmt"
	"go/format"
	"log"

	"github.com/matthewbaird/chaincodegen/internal/artifact"
	"github.com/matthewbaird/chaincodegen/internal/codegen"
	"github.com/matthewbaird/chaincodegen/internal/event"
	"github.com/matthewbaird/chaincodegen/internal/project"
)

// Output is a generation result plus what the pipeline did with it.
type Output struct {
	*codegen.Result
	FileName    string   `json:"file_name"`
	Formatted   bool     `json:"formatted"`
	FormatError string   `json:"format_error,omitempty"`
	Artifacts   []string `json:"artifacts,omitempty"`
}

// Render generates the project's source. With gofmt the source is passed
// through go/format; if it does not parse, the raw text is kept and the parse
// error reported in FormatError.
func Render(p *project.Project, gofmt bool) *Output {
	out := &Output{Result: p.Generate(), FileName: p.FileName()}
	if !gofmt {
		return out
	}
	src, err := format.Source([]byte(out.Source))
	if err != nil {
		out.FormatError = err.Error()
		return out
	}
	out.Source = string(src)
	out.Formatted = true
	return out
}

// Pipeline holds the optional collaborators. The zero value only renders.
type Pipeline struct {
	Gofmt    bool
	Prefix   string
	Sinks    artifact.Multi
	Recorder event.Recorder
}

// Run renders p, publishes the source to every sink and records a
// ChaincodeGenerated event. Sink failures are returned after recording; the
// output is valid either way.
func (pl *Pipeline) Run(ctx context.Context, p *project.Project) (*Output, error) {
	out := Render(p, pl.Gofmt)

	var publishErr error
	if len(pl.Sinks) > 0 {
		key := artifact.Key(pl.Prefix, p.Name, p.Version)
		out.Artifacts, publishErr = pl.Sinks.Put(ctx, key, []byte(out.Source))
		if publishErr != nil {
			publishErr = fmt.Errorf("publishing %s: %w", key, publishErr)
		}
	}

	if pl.Recorder != nil {
		codes := make([]string, len(out.Diagnostics))
		for i, d := range out.Diagnostics {
			codes[i] = d.Code
		}
		evt := event.NewChaincodeGenerated(event.ChaincodeGeneratedPayload{
			ProjectID:   p.ID,
			Name:        p.Name,
			Version:     p.Version,
			AssetType:   out.AssetType,
			Blocks:      len(p.Canvas),
			Bytes:       len(out.Source),
			Diagnostics: codes,
			Artifacts:   out.Artifacts,
		})
		if err := pl.Recorder.Record(ctx, evt); err != nil {
			log.Printf("pipeline: recording %s: %v", evt.EventType, err)
		}
	}
	return out, publishErr
}
