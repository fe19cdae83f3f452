package event

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/matthewbaird/chaincodegen/internal/activity"
)

// Event types.
const (
	TypeChaincodeGenerated = "chaincode_generated"
	TypeProjectSaved       = "project_saved"
	TypeProjectDeleted     = "project_deleted"
)

// DomainEvent carries the canonical shape of every domain event.
type DomainEvent struct {
	ID               string               `json:"id"`
	EventType        string               `json:"event_type"`
	OccurredAt       time.Time            `json:"occurred_at"`
	AffectedEntities []activity.SourceRef `json:"affected_entities"`
	Summary          string               `json:"summary"`
	Payload          json.RawMessage      `json:"payload,omitempty"`
}

func newID() string { return uuid.New().String() }

func mustJSON(v any) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}

func projectRef(id string) []activity.SourceRef {
	if id == "" {
		return nil
	}
	return []activity.SourceRef{{EntityType: "project", EntityID: id, Role: "subject"}}
}

// ── Generation ───────────────────────────────────────────────────────────────

// ChaincodeGeneratedPayload carries event-specific data for ChaincodeGenerated.
type ChaincodeGeneratedPayload struct {
	ProjectID   string   `json:"project_id,omitempty"`
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	AssetType   string   `json:"asset_type"`
	Blocks      int      `json:"blocks"`
	Bytes       int      `json:"bytes"`
	Diagnostics []string `json:"diagnostics,omitempty"`
	Artifacts   []string `json:"artifacts,omitempty"`
}

func NewChaincodeGenerated(p ChaincodeGeneratedPayload) DomainEvent {
	summary := fmt.Sprintf("Generated %s v%s (%d blocks, %d bytes)", p.Name, p.Version, p.Blocks, p.Bytes)
	if n := len(p.Diagnostics); n > 0 {
		summary += fmt.Sprintf(" with %d diagnostics", n)
	}
	return DomainEvent{
		ID:               newID(),
		EventType:        TypeChaincodeGenerated,
		OccurredAt:       time.Now(),
		AffectedEntities: projectRef(p.ProjectID),
		Summary:          summary,
		Payload:          mustJSON(p),
	}
}

// ── Projects ─────────────────────────────────────────────────────────────────

// ProjectPayload carries event-specific data for project lifecycle events.
type ProjectPayload struct {
	ProjectID string `json:"project_id"`
	Name      string `json:"name"`
	Version   string `json:"version"`
	Created   bool   `json:"created,omitempty"`
}

func NewProjectSaved(p ProjectPayload) DomainEvent {
	verb := "Saved"
	if p.Created {
		verb = "Created"
	}
	return DomainEvent{
		ID:               newID(),
		EventType:        TypeProjectSaved,
		OccurredAt:       time.Now(),
		AffectedEntities: projectRef(p.ProjectID),
		Summary:          fmt.Sprintf("%s project %s v%s", verb, p.Name, p.Version),
		Payload:          mustJSON(p),
	}
}

func NewProjectDeleted(p ProjectPayload) DomainEvent {
	return DomainEvent{
		ID:               newID(),
		EventType:        TypeProjectDeleted,
		OccurredAt:       time.Now(),
		AffectedEntities: projectRef(p.ProjectID),
		Summary:          fmt.Sprintf("Deleted project %s", p.Name),
		Payload:          mustJSON(p),
	}
}
