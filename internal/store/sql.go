package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/matthewbaird/chaincodegen/internal/project"
)

// timeLayout is fixed-width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLStore implements Store over database/sql. Queries use "?" placeholders
// and the schema sticks to types SQLite accepts.
type SQLStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLStore creates a new SQLStore. Call CreateTable once before use.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, now: time.Now}
}

// CreateTable creates the projects table if it does not exist.
func (s *SQLStore) CreateTable(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS projects (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			version    TEXT NOT NULL,
			body       TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_projects_updated ON projects (updated_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("creating projects table: %w", err)
	}
	return nil
}

func (s *SQLStore) Create(ctx context.Context, p *project.Project) (*Record, error) {
	stored := p.Clone()
	stored.ID = uuid.New().String()
	body, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("encoding project: %w", err)
	}
	now := s.now().UTC()
	ts := now.Format(timeLayout)

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO projects (id, name, version, body, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		stored.ID, stored.Name, stored.Version, string(body), ts, ts,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting project: %w", err)
	}
	return &Record{Project: stored, CreatedAt: now, UpdatedAt: now}, nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, body, created_at, updated_at FROM projects WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading project %s: %w", id, err)
	}
	return rec, nil
}

func (s *SQLStore) List(ctx context.Context, opts ListOptions) ([]Record, int, error) {
	opts = opts.normalize()

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting projects: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, body, created_at, updated_at FROM projects ORDER BY updated_at DESC, id LIMIT ? OFFSET ?`,
		opts.Limit, opts.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning project: %w", err)
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("listing projects: %w", err)
	}
	return out, total, nil
}

func (s *SQLStore) Update(ctx context.Context, p *project.Project) (*Record, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encoding project: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE projects SET name = ?, version = ?, body = ?, updated_at = ? WHERE id = ?`,
		p.Name, p.Version, string(body), s.now().UTC().Format(timeLayout), p.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating project %s: %w", p.ID, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, fmt.Errorf("updating project %s: %w", p.ID, err)
	} else if n == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, p.ID)
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting project %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting project %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (*Record, error) {
	var id, body, created, updated string
	if err := sc.Scan(&id, &body, &created, &updated); err != nil {
		return nil, err
	}
	p := &project.Project{}
	if err := json.Unmarshal([]byte(body), p); err != nil {
		return nil, fmt.Errorf("decoding project %s: %w", id, err)
	}
	p.ID = id
	p.Normalize()

	rec := &Record{Project: p}
	var err error
	if rec.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if rec.UpdatedAt, err = time.Parse(timeLayout, updated); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return rec, nil
}
