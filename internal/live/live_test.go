package live

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/chaincodegen/internal/event"
	"github.com/matthewbaird/chaincodegen/internal/pipeline"
	"github.com/matthewbaird/chaincodegen/internal/project"
	"github.com/matthewbaird/chaincodegen/internal/schema"
)

type reply struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id"`
	Data      json.RawMessage `json:"data"`
}

type countingRecorder struct{ n atomic.Int32 }

func (c *countingRecorder) Record(context.Context, event.DomainEvent) error {
	c.n.Add(1)
	return nil
}

type client struct {
	t    *testing.T
	ctx  context.Context
	conn *websocket.Conn
}

func dial(t *testing.T, pl *pipeline.Pipeline) (*client, *Manager) {
	t.Helper()
	r := chi.NewRouter()
	sessions := RegisterRoutes(r, pl)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/v1/live", nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.CloseNow() })
	return &client{t: t, ctx: ctx, conn: conn}, sessions
}

func (c *client) send(typ, id string, data any) {
	c.t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(c.t, err)
	require.NoError(c.t, wsjson.Write(c.ctx, c.conn, ClientMessage{Type: typ, ID: id, Data: raw}))
}

func (c *client) read() reply {
	c.t.Helper()
	var r reply
	require.NoError(c.t, wsjson.Read(c.ctx, c.conn, &r))
	return r
}

func (c *client) source() SourceData {
	c.t.Helper()
	r := c.read()
	require.Equal(c.t, "source", r.Type, string(r.Data))
	var s SourceData
	require.NoError(c.t, json.Unmarshal(r.Data, &s))
	return s
}

func TestLive_SessionGreeting(t *testing.T) {
	c, sessions := dial(t, &pipeline.Pipeline{})

	r := c.read()
	require.Equal(t, "session", r.Type)
	var data SessionData
	require.NoError(t, json.Unmarshal(r.Data, &data))
	assert.NotEmpty(t, data.SessionID)
	assert.Equal(t, project.DefaultName, data.Project.Name)
	assert.Len(t, data.Project.AssetFields, 4)
	assert.Equal(t, 1, sessions.Count())

	c.conn.Close(websocket.StatusNormalClosure, "")
	assert.Eventually(t, func() bool { return sessions.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestLive_EditsRegenerate(t *testing.T) {
	c, _ := dial(t, &pipeline.Pipeline{})
	c.read() // session

	c.send("add_block", "1", AddBlockData{BlockID: "init"})
	r := c.read()
	require.Equal(t, "project", r.Type)
	assert.Equal(t, "1", r.RequestID)
	var p project.Project
	require.NoError(t, json.Unmarshal(r.Data, &p))
	require.Len(t, p.Canvas, 1)
	initID := p.Canvas[0].InstanceID
	assert.True(t, strings.HasPrefix(initID, "init_"))

	src := c.source()
	assert.Contains(t, src.Source, "func (s *SmartContract) InitLedger(")
	assert.Equal(t, "my_chaincode.go", src.FileName)

	c.send("add_block", "2", AddBlockData{BlockID: "createAsset"})
	c.read()
	r2 := c.source()
	assert.Contains(t, r2.Source, "func (s *SmartContract) CreateAsset(")

	c.send("rename", "3", RenameData{Name: "CarRegistry"})
	c.read()
	assert.Equal(t, "car_registry.go", c.source().FileName)

	c.send("move_block", "4", BlockData{InstanceID: initID, Index: 1})
	c.read()
	moved := c.source().Source
	assert.Less(t, strings.Index(moved, "CreateAsset("), strings.Index(moved, "InitLedger("))

	c.send("add_field", "5", FieldData{Field: schemaField("Color", "string", "color")})
	c.read()
	assert.Contains(t, c.source().Source, "Color")

	c.send("remove_block", "6", BlockData{InstanceID: initID})
	c.read()
	assert.NotContains(t, c.source().Source, "InitLedger")
}

func TestLive_EditErrors(t *testing.T) {
	c, _ := dial(t, &pipeline.Pipeline{})
	c.read()

	c.send("add_block", "1", AddBlockData{BlockID: "teleport"})
	r := c.read()
	require.Equal(t, "error", r.Type)
	var e ErrorData
	require.NoError(t, json.Unmarshal(r.Data, &e))
	assert.Equal(t, "edit_failed", e.Code)
	assert.Contains(t, e.Message, "unknown block")

	require.NoError(t, wsjson.Write(c.ctx, c.conn, ClientMessage{Type: "remove_block", ID: "2", Data: json.RawMessage(`{"instance_id":7}`)}))
	r = c.read()
	require.Equal(t, "error", r.Type)
	require.NoError(t, json.Unmarshal(r.Data, &e))
	assert.Equal(t, "invalid_data", e.Code)

	c.send("frobnicate", "3", nil)
	r = c.read()
	require.Equal(t, "error", r.Type)
	assert.Equal(t, "3", r.RequestID)
}

func TestLive_LoadDocumentAndExport(t *testing.T) {
	c, _ := dial(t, &pipeline.Pipeline{})
	c.read()

	doc := `chaincodeName: Fleet
chaincodeVersion: "2.0"
canvas:
  - instanceId: readAsset_1
    blockId: readAsset
assetFields:
  - {name: VIN, type: string, jsonTag: vin}
`
	c.send("load", "1", LoadData{Document: doc, Format: "yaml"})
	r := c.read()
	require.Equal(t, "project", r.Type)
	src := c.source()
	assert.Equal(t, "fleet.go", src.FileName)
	assert.Contains(t, src.Source, "ReadAsset(")
	require.NotEmpty(t, src.Diagnostics)
	assert.Equal(t, "missing_key_field", src.Diagnostics[0].Code)

	c.send("export", "2", ExportData{Format: "json"})
	r = c.read()
	require.Equal(t, "document", r.Type)
	var d DocumentData
	require.NoError(t, json.Unmarshal(r.Data, &d))
	assert.Equal(t, "fleet.json", d.FileName)
	assert.Contains(t, d.Document, `"chaincodeName": "Fleet"`)

	c.send("load", "3", LoadData{Document: "{", Format: "json"})
	r = c.read()
	assert.Equal(t, "error", r.Type)
}

func TestLive_GenerateRecords(t *testing.T) {
	rec := &countingRecorder{}
	c, _ := dial(t, &pipeline.Pipeline{Recorder: rec})
	c.read()

	gofmt := true
	c.send("add_block", "1", AddBlockData{BlockID: "createAsset"})
	c.read()
	c.source()
	assert.Zero(t, rec.n.Load())

	c.send("generate", "2", GenerateData{Gofmt: &gofmt})
	src := c.source()
	assert.True(t, src.Formatted, src.FormatError)
	assert.EqualValues(t, 1, rec.n.Load())

	c.send("ping", "3", nil)
	assert.Equal(t, "pong", c.read().Type)
}

func schemaField(name, typ, tag string) schema.Field {
	return schema.Field{Name: name, Type: schema.ParseTypeTag(typ), JSONTag: tag}
}

func TestLive_SessionsStatus(t *testing.T) {
	r := chi.NewRouter()
	RegisterRoutes(r, &pipeline.Pipeline{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/live/sessions", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var status Status
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, 0, status.Open)
}
