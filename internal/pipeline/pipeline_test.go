package pipeline

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/chaincodegen/internal/activity"
	"github.com/matthewbaird/chaincodegen/internal/artifact"
	"github.com/matthewbaird/chaincodegen/internal/event"
	"github.com/matthewbaird/chaincodegen/internal/idgen"
	"github.com/matthewbaird/chaincodegen/internal/project"
	"github.com/matthewbaird/chaincodegen/internal/schema"
)

func sampleProject(t *testing.T) *project.Project {
	t.Helper()
	p := project.New()
	p.ID = "p1"
	p.Name = "AssetTransfer"
	ids := &idgen.Sequence{}
	for _, b := range []string{"init", "createAsset", "readAsset", "updateAsset", "deleteAsset", "query"} {
		_, err := p.AddBlock(ids, b, project.Position{})
		require.NoError(t, err)
	}
	return p
}

func TestRender(t *testing.T) {
	p := sampleProject(t)

	raw := Render(p, false)
	assert.False(t, raw.Formatted)
	assert.Equal(t, "asset_transfer.go", raw.FileName)
	assert.Equal(t, p.Generate().Source, raw.Source)

	formatted := Render(p, true)
	require.True(t, formatted.Formatted, formatted.FormatError)
	assert.Empty(t, formatted.FormatError)
	// gofmt aligns struct tags.
	assert.Contains(t, formatted.Source, "\tID          string `json:\"id\"`\n")
	assert.Contains(t, formatted.Source, "func (s *SmartContract) AssetExists(")
}

func TestRender_UnparseableKeepsRaw(t *testing.T) {
	p := sampleProject(t)
	p.BlockProps["createAsset_2"]["assetType"] = "not valid"

	out := Render(p, true)
	assert.False(t, out.Formatted)
	assert.NotEmpty(t, out.FormatError)
	assert.Contains(t, out.Source, "type not valid struct {")
}

func diagnosticCodes(out *Output) []string {
	var codes []string
	for _, d := range out.Diagnostics {
		codes = append(codes, d.Code)
	}
	return codes
}

func TestRender_UnparseableOutputIsDiagnosed(t *testing.T) {
	keywordTag := sampleProject(t)
	require.NoError(t, keywordTag.AddField(schema.Field{Name: "Kind", Type: schema.TypeString, JSONTag: "type"}))

	keywordType := sampleProject(t)
	keywordType.BlockProps["createAsset_2"]["assetType"] = "Package"

	for name, p := range map[string]*project.Project{"KeywordTag": keywordTag, "KeywordType": keywordType} {
		t.Run(name, func(t *testing.T) {
			out := Render(p, true)
			require.NotEmpty(t, out.FormatError)
			assert.NotEmpty(t, diagnosticCodes(out), "source that does not parse must carry a diagnostic")
		})
	}
}

type captureRecorder struct{ events []event.DomainEvent }

func (c *captureRecorder) Record(_ context.Context, evt event.DomainEvent) error {
	c.events = append(c.events, evt)
	return nil
}

func TestPipeline_Run(t *testing.T) {
	root := t.TempDir()
	rec := &captureRecorder{}
	pl := &Pipeline{Prefix: "cc", Sinks: artifact.Multi{artifact.DirSink{Root: root}}, Recorder: rec}

	out, err := pl.Run(context.Background(), sampleProject(t))
	require.NoError(t, err)
	require.Len(t, out.Artifacts, 1)
	assert.True(t, strings.HasSuffix(out.Artifacts[0], "cc/asset_transfer/1.0/asset_transfer.go"))

	data, err := os.ReadFile(out.Artifacts[0])
	require.NoError(t, err)
	assert.Equal(t, out.Source, string(data))

	require.Len(t, rec.events, 1)
	assert.Equal(t, event.TypeChaincodeGenerated, rec.events[0].EventType)
	assert.Equal(t, "p1", rec.events[0].AffectedEntities[0].EntityID)
}

type brokenSink struct{}

func (brokenSink) Put(context.Context, string, []byte) (string, error) {
	return "", errors.New("bucket gone")
}

func TestPipeline_SinkErrorStillRecords(t *testing.T) {
	store := activity.NewMemoryStore()
	pl := &Pipeline{Sinks: artifact.Multi{brokenSink{}}, Recorder: event.NewActivityRecorder(store)}

	out, err := pl.Run(context.Background(), sampleProject(t))
	assert.ErrorContains(t, err, "bucket gone")
	require.NotNil(t, out)
	assert.NotEmpty(t, out.Source)

	_, _, total, qerr := store.QueryByEntity(context.Background(), "project", "p1", activity.DefaultQueryOptions())
	require.NoError(t, qerr)
	assert.Equal(t, 1, total)
}

func TestPipeline_ZeroValue(t *testing.T) {
	var pl Pipeline
	out, err := pl.Run(context.Background(), sampleProject(t))
	require.NoError(t, err)
	assert.Empty(t, out.Artifacts)
}
