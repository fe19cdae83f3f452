package activity

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Store is the interface for reading and writing activity entries.
type Store interface {
	// WriteEntries writes one or more activity entries (one event → many entries).
	WriteEntries(ctx context.Context, entries []Entry) error

	// QueryByEntity returns activity entries for a specific entity, newest first.
	QueryByEntity(ctx context.Context, entityType, entityID string, opts QueryOptions) (entries []Entry, nextCursor string, totalCount int, err error)

	// Search performs a case-insensitive substring search across summaries.
	Search(ctx context.Context, query string, opts SearchOptions) (entries []Entry, totalCount int, err error)
}

// timeLayout is fixed-width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLStore implements Store over database/sql with "?" placeholders.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore creates a new SQLStore.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// CreateTable creates the activity_entries table if it does not exist.
func (s *SQLStore) CreateTable(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS activity_entries (
			event_id    TEXT NOT NULL,
			event_type  TEXT NOT NULL,
			occurred_at TEXT NOT NULL,
			entity_type TEXT NOT NULL,
			entity_id   TEXT NOT NULL,
			entity_role TEXT NOT NULL,
			summary     TEXT NOT NULL,
			payload     TEXT,
			PRIMARY KEY (entity_type, entity_id, occurred_at, event_id)
		);
		CREATE INDEX IF NOT EXISTS idx_activity_entity_time
			ON activity_entries (entity_type, entity_id, occurred_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("creating activity_entries table: %w", err)
	}
	return nil
}

// WriteEntries inserts activity entries. Duplicates are ignored.
func (s *SQLStore) WriteEntries(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString(`INSERT OR IGNORE INTO activity_entries (
		event_id, event_type, occurred_at, entity_type, entity_id, entity_role, summary, payload
	) VALUES `)

	args := make([]any, 0, len(entries)*8)
	for i, e := range entries {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(?, ?, ?, ?, ?, ?, ?, ?)")
		var payload any
		if len(e.Payload) > 0 {
			payload = string(e.Payload)
		}
		args = append(args,
			e.EventID, e.EventType, e.OccurredAt.UTC().Format(timeLayout),
			e.EntityType, e.EntityID, e.EntityRole, e.Summary, payload,
		)
	}

	if _, err := s.db.ExecContext(ctx, b.String(), args...); err != nil {
		return fmt.Errorf("writing activity entries: %w", err)
	}
	return nil
}

const entryColumns = `event_id, event_type, occurred_at, entity_type, entity_id, entity_role, summary, payload`

// QueryByEntity returns activity entries for a specific entity with filtering and pagination.
func (s *SQLStore) QueryByEntity(ctx context.Context, entityType, entityID string, opts QueryOptions) ([]Entry, string, int, error) {
	limit := opts.limit()

	conditions := []string{"entity_type = ?", "entity_id = ?"}
	args := []any{entityType, entityID}

	if opts.Since != nil {
		conditions = append(conditions, "occurred_at >= ?")
		args = append(args, opts.Since.UTC().Format(timeLayout))
	}
	if opts.Until != nil {
		conditions = append(conditions, "occurred_at <= ?")
		args = append(args, opts.Until.UTC().Format(timeLayout))
	}
	if len(opts.EventTypes) > 0 {
		conditions = append(conditions, "event_type IN ("+placeholders(len(opts.EventTypes))+")")
		for _, et := range opts.EventTypes {
			args = append(args, et)
		}
	}

	where := strings.Join(conditions, " AND ")
	var totalCount int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM activity_entries WHERE "+where, args...).Scan(&totalCount); err != nil {
		return nil, "", 0, fmt.Errorf("counting activity entries: %w", err)
	}

	pageArgs := append([]any(nil), args...)
	pageWhere := where
	if opts.Cursor != "" {
		if cursorTime, err := time.Parse(time.RFC3339Nano, opts.Cursor); err == nil {
			pageWhere += " AND occurred_at < ?"
			pageArgs = append(pageArgs, cursorTime.UTC().Format(timeLayout))
		}
	}
	pageArgs = append(pageArgs, limit+1) // one extra to detect the next page

	entries, err := s.query(ctx,
		"SELECT "+entryColumns+" FROM activity_entries WHERE "+pageWhere+" ORDER BY occurred_at DESC LIMIT ?",
		pageArgs...)
	if err != nil {
		return nil, "", 0, err
	}

	var nextCursor string
	if len(entries) > limit {
		entries = entries[:limit]
		nextCursor = entries[len(entries)-1].OccurredAt.Format(time.RFC3339Nano)
	}
	return entries, nextCursor, totalCount, nil
}

// Search performs a case-insensitive substring search across summaries.
func (s *SQLStore) Search(ctx context.Context, query string, opts SearchOptions) ([]Entry, int, error) {
	conditions := []string{"LOWER(summary) LIKE '%' || LOWER(?) || '%'"}
	args := []any{query}

	if opts.EntityType != "" {
		conditions = append(conditions, "entity_type = ?")
		args = append(args, opts.EntityType)
	}
	if opts.Since != nil {
		conditions = append(conditions, "occurred_at >= ?")
		args = append(args, opts.Since.UTC().Format(timeLayout))
	}

	where := strings.Join(conditions, " AND ")
	var totalCount int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM activity_entries WHERE "+where, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("counting activity entries: %w", err)
	}

	entries, err := s.query(ctx,
		"SELECT "+entryColumns+" FROM activity_entries WHERE "+where+" ORDER BY occurred_at DESC LIMIT ?",
		append(args, opts.limit())...)
	if err != nil {
		return nil, 0, err
	}
	return entries, totalCount, nil
}

func (s *SQLStore) query(ctx context.Context, q string, args ...any) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying activity entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var occurred string
		var payload sql.NullString
		if err := rows.Scan(&e.EventID, &e.EventType, &occurred, &e.EntityType, &e.EntityID,
			&e.EntityRole, &e.Summary, &payload); err != nil {
			return nil, fmt.Errorf("scanning activity entry: %w", err)
		}
		if e.OccurredAt, err = time.Parse(timeLayout, occurred); err != nil {
			return nil, fmt.Errorf("parsing occurred_at: %w", err)
		}
		if payload.Valid {
			e.Payload = []byte(payload.String)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
