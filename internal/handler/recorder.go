package handler

import (
	"context"
	"log"

	"github.com/matthewbaird/chaincodegen/internal/event"
)

// recordEvent records a domain event if a recorder is configured.
// Errors are logged but do not fail the request.
func recordEvent(ctx context.Context, rec event.Recorder, evt event.DomainEvent) {
	if rec == nil {
		return
	}
	if err := rec.Record(ctx, evt); err != nil {
		log.Printf("event recording failed: %v", err)
	}
}
