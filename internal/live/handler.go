package live

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/matthewbaird/chaincodegen/internal/codegen"
	"github.com/matthewbaird/chaincodegen/internal/idgen"
	"github.com/matthewbaird/chaincodegen/internal/pipeline"
	"github.com/matthewbaird/chaincodegen/internal/project"
)

// Handler manages WebSocket connections for live editing.
type Handler struct {
	sessions *Manager
	pipeline *pipeline.Pipeline
	ids      idgen.Generator
}

// NewHandler creates a WebSocket handler. Explicit "generate" requests are
// recorded through the pipeline's recorder; edits only re-render.
func NewHandler(sessions *Manager, pl *pipeline.Pipeline, ids idgen.Generator) *Handler {
	return &Handler{sessions: sessions, pipeline: pl, ids: ids}
}

// ServeHTTP upgrades to WebSocket and runs the message loop.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		log.Printf("live: websocket accept: %v", err)
		return
	}
	defer conn.CloseNow()

	sess := h.sessions.Create()
	sess.Gofmt = h.pipeline.Gofmt
	defer h.sessions.Remove(sess.ID)
	ctx := r.Context()

	h.send(ctx, conn, ServerMessage{
		Type: "session",
		Data: SessionData{SessionID: sess.ID, Project: sess.Project},
	})

	for {
		var msg ClientMessage
		err := wsjson.Read(ctx, conn, &msg)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				log.Printf("live: connection closed: %v", websocket.CloseStatus(err))
			}
			return
		}
		sess.Touch()

		switch msg.Type {
		case "load":
			h.handleLoad(ctx, conn, sess, msg)
		case "rename", "add_block", "remove_block", "move_block", "set_props",
			"add_field", "update_field", "remove_field":
			h.handleEdit(ctx, conn, sess, msg)
		case "generate":
			h.handleGenerate(ctx, conn, sess, msg)
		case "export":
			h.handleExport(ctx, conn, sess, msg)
		case "ping":
			h.send(ctx, conn, ServerMessage{Type: "pong", RequestID: msg.ID})
		default:
			h.sendError(ctx, conn, msg.ID, "unknown_type", fmt.Sprintf("unknown message type: %s", msg.Type))
		}
	}
}

func (h *Handler) handleLoad(ctx context.Context, conn *websocket.Conn, sess *Session, msg ClientMessage) {
	var data LoadData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		h.sendError(ctx, conn, msg.ID, "invalid_data", "invalid load data")
		return
	}

	var (
		p   *project.Project
		err error
	)
	switch {
	case data.Document != "":
		format, ferr := project.ParseFormat(data.Format)
		if ferr != nil {
			h.sendError(ctx, conn, msg.ID, "invalid_format", ferr.Error())
			return
		}
		p, err = project.Decode([]byte(data.Document), format)
	case len(data.Project) > 0:
		p, err = project.Decode(data.Project, project.FormatJSON)
	default:
		p = project.New()
	}
	if err != nil {
		h.sendError(ctx, conn, msg.ID, "invalid_project", err.Error())
		return
	}

	sess.Project = p
	h.send(ctx, conn, ServerMessage{Type: "project", RequestID: msg.ID, Data: p})
	h.sendSource(ctx, conn, sess, msg.ID)
}

func (h *Handler) handleEdit(ctx context.Context, conn *websocket.Conn, sess *Session, msg ClientMessage) {
	if err := h.applyEdit(sess.Project, msg); err != nil {
		code := "edit_failed"
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
			code = "invalid_data"
		}
		h.sendError(ctx, conn, msg.ID, code, err.Error())
		return
	}
	h.send(ctx, conn, ServerMessage{Type: "project", RequestID: msg.ID, Data: sess.Project})
	h.sendSource(ctx, conn, sess, msg.ID)
}

// applyEdit decodes an edit message and applies it to p.
func (h *Handler) applyEdit(p *project.Project, msg ClientMessage) error {
	switch msg.Type {
	case "rename":
		var d RenameData
		if err := json.Unmarshal(msg.Data, &d); err != nil {
			return err
		}
		if d.Name != "" {
			p.Name = d.Name
		}
		if d.Version != "" {
			p.Version = d.Version
		}
		return nil
	case "add_block":
		var d AddBlockData
		if err := json.Unmarshal(msg.Data, &d); err != nil {
			return err
		}
		_, err := p.AddBlock(h.ids, d.BlockID, d.Position)
		return err
	case "add_field", "update_field", "remove_field":
		var d FieldData
		if err := json.Unmarshal(msg.Data, &d); err != nil {
			return err
		}
		switch msg.Type {
		case "add_field":
			return p.AddField(d.Field)
		case "update_field":
			return p.UpdateField(d.Name, d.Field)
		default:
			return p.RemoveField(d.Name)
		}
	}

	var d BlockData
	if err := json.Unmarshal(msg.Data, &d); err != nil {
		return err
	}
	switch msg.Type {
	case "remove_block":
		return p.RemoveBlock(d.InstanceID)
	case "move_block":
		return p.MoveBlock(d.InstanceID, d.Index)
	default:
		return p.SetBlockProps(d.InstanceID, d.Props)
	}
}

func (h *Handler) handleGenerate(ctx context.Context, conn *websocket.Conn, sess *Session, msg ClientMessage) {
	var data GenerateData
	if len(msg.Data) > 0 {
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			h.sendError(ctx, conn, msg.ID, "invalid_data", "invalid generate data")
			return
		}
	}
	if data.Gofmt != nil {
		sess.Gofmt = *data.Gofmt
	}

	start := time.Now()
	pl := pipeline.Pipeline{Gofmt: sess.Gofmt, Recorder: h.pipeline.Recorder}
	out, err := pl.Run(ctx, sess.Project)
	if err != nil {
		h.sendError(ctx, conn, msg.ID, "generate_failed", err.Error())
		return
	}
	sess.Generations++
	h.send(ctx, conn, ServerMessage{Type: "source", RequestID: msg.ID, Data: sourceData(out, time.Since(start))})
}

func (h *Handler) handleExport(ctx context.Context, conn *websocket.Conn, sess *Session, msg ClientMessage) {
	var data ExportData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		h.sendError(ctx, conn, msg.ID, "invalid_data", "invalid export data")
		return
	}
	format, err := project.ParseFormat(data.Format)
	if err != nil {
		h.sendError(ctx, conn, msg.ID, "invalid_format", err.Error())
		return
	}
	doc, err := project.Encode(sess.Project, format)
	if err != nil {
		h.sendError(ctx, conn, msg.ID, "export_failed", err.Error())
		return
	}
	h.send(ctx, conn, ServerMessage{
		Type:      "document",
		RequestID: msg.ID,
		Data: DocumentData{
			Format:   string(format),
			FileName: project.Slug(sess.Project.Name) + "." + string(format),
			Document: string(doc),
		},
	})
}

func (h *Handler) sendSource(ctx context.Context, conn *websocket.Conn, sess *Session, requestID string) {
	start := time.Now()
	out := pipeline.Render(sess.Project, sess.Gofmt)
	h.send(ctx, conn, ServerMessage{Type: "source", RequestID: requestID, Data: sourceData(out, time.Since(start))})
}

func sourceData(out *pipeline.Output, elapsed time.Duration) SourceData {
	diags := out.Diagnostics
	if diags == nil {
		diags = []codegen.Diagnostic{}
	}
	return SourceData{
		Source:      out.Source,
		FileName:    out.FileName,
		AssetType:   out.AssetType,
		Diagnostics: diags,
		Formatted:   out.Formatted,
		FormatError: out.FormatError,
		Elapsed:     elapsed.String(),
	}
}

func (h *Handler) send(ctx context.Context, conn *websocket.Conn, msg ServerMessage) {
	if err := wsjson.Write(ctx, conn, msg); err != nil {
		log.Printf("live: write error: %v", err)
	}
}

func (h *Handler) sendError(ctx context.Context, conn *websocket.Conn, requestID, code, message string) {
	h.send(ctx, conn, ServerMessage{
		Type:      "error",
		RequestID: requestID,
		Data: ErrorData{
			Code:    code,
			Message: message,
		},
	})
}
