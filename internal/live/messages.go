// Package live is the WebSocket protocol for editing a project and seeing
// the generated chaincode after every change.
package live

import (
	"encoding/json"

	"github.com/matthewbaird/chaincodegen/internal/codegen"
	"github.com/matthewbaird/chaincodegen/internal/project"
	"github.com/matthewbaird/chaincodegen/internal/schema"
)

// ── Client → Server messages ────────────────────────────────────────────────

// ClientMessage is the envelope for all client-to-server WebSocket messages.
type ClientMessage struct {
	Type string          `json:"type"` // "load", "add_block", "generate", "export", "ping", ...
	ID   string          `json:"id"`   // Client-assigned request ID
	Data json.RawMessage `json:"data,omitempty"`
}

// LoadData replaces the working project. Either Project carries the JSON
// export form or Document carries a file in Format.
type LoadData struct {
	Project  json.RawMessage `json:"project,omitempty"`
	Document string          `json:"document,omitempty"`
	Format   string          `json:"format,omitempty"`
}

// RenameData sets the chaincode name and version. Empty values are kept.
type RenameData struct {
	Name    string `json:"chaincodeName"`
	Version string `json:"chaincodeVersion"`
}

// AddBlockData is the payload for "add_block".
type AddBlockData struct {
	BlockID  string           `json:"block_id"`
	Position project.Position `json:"position"`
}

// BlockData addresses a placed block. Index is used by "move_block";
// Props by "set_props".
type BlockData struct {
	InstanceID string         `json:"instance_id"`
	Index      int            `json:"index,omitempty"`
	Props      codegen.Config `json:"props,omitempty"`
}

// FieldData is the payload for the field messages. Name addresses the
// existing field for "update_field" and "remove_field".
type FieldData struct {
	Name  string       `json:"name,omitempty"`
	Field schema.Field `json:"field"`
}

// GenerateData is the payload for "generate".
type GenerateData struct {
	Gofmt *bool `json:"gofmt,omitempty"`
}

// ExportData is the payload for "export".
type ExportData struct {
	Format string `json:"format"`
}

// ── Server → Client messages ────────────────────────────────────────────────

// ServerMessage is the envelope for all server-to-client WebSocket messages.
type ServerMessage struct {
	Type      string `json:"type"`                 // "session", "project", "source", "document", "error", "pong"
	RequestID string `json:"request_id,omitempty"` // Echoes client ID
	Data      any    `json:"data,omitempty"`
}

// SessionData carries session information.
type SessionData struct {
	SessionID string           `json:"session_id"`
	Project   *project.Project `json:"project"`
}

// SourceData carries the generated chaincode for the working project.
type SourceData struct {
	Source      string               `json:"source"`
	FileName    string               `json:"file_name"`
	AssetType   string               `json:"asset_type"`
	Diagnostics []codegen.Diagnostic `json:"diagnostics"`
	Formatted   bool                 `json:"formatted"`
	FormatError string               `json:"format_error,omitempty"`
	Elapsed     string               `json:"elapsed"`
}

// DocumentData carries an exported project file.
type DocumentData struct {
	Format   string `json:"format"`
	FileName string `json:"file_name"`
	Document string `json:"document"`
}

// ErrorData carries an error message.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
