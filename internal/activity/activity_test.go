package activity

import (
	"context"
	"database/sql"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

var base = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func testEntry(eventType, entityID, summary string, minutes int) Entry {
	return Entry{
		EventID:    eventType + "-" + summary,
		EventType:  eventType,
		OccurredAt: base.Add(time.Duration(minutes) * time.Minute),
		EntityType: "project",
		EntityID:   entityID,
		EntityRole: "subject",
		Summary:    summary,
		Payload:    json.RawMessage(`{"n":1}`),
	}
}

func seed(t *testing.T, s Store) {
	t.Helper()
	require.NoError(t, s.WriteEntries(context.Background(), []Entry{
		testEntry("chaincode_generated", "alpha", "Generated Alpha v1.0", 1),
		testEntry("project_saved", "alpha", "Saved Alpha", 2),
		testEntry("chaincode_generated", "alpha", "Generated Alpha v1.1", 3),
		testEntry("chaincode_generated", "beta", "Generated Beta v0.1", 4),
	}))
}

func exerciseStore(t *testing.T, s Store) {
	ctx := context.Background()
	seed(t, s)

	t.Run("QueryByEntity", func(t *testing.T) {
		got, next, total, err := s.QueryByEntity(ctx, "project", "alpha", DefaultQueryOptions())
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		assert.Empty(t, next)
		require.Len(t, got, 3)
		assert.Equal(t, "Generated Alpha v1.1", got[0].Summary)
		assert.JSONEq(t, `{"n":1}`, string(got[0].Payload))
		assert.True(t, got[0].OccurredAt.Equal(base.Add(3*time.Minute)))
	})

	t.Run("FilterEventType", func(t *testing.T) {
		opts := DefaultQueryOptions()
		opts.EventTypes = []string{"chaincode_generated"}
		got, _, total, err := s.QueryByEntity(ctx, "project", "alpha", opts)
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		for _, e := range got {
			assert.Equal(t, "chaincode_generated", e.EventType)
		}
	})

	t.Run("TimeWindow", func(t *testing.T) {
		since := base.Add(2 * time.Minute)
		got, _, _, err := s.QueryByEntity(ctx, "project", "alpha", QueryOptions{Since: &since})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("Pagination", func(t *testing.T) {
		page1, next, total, err := s.QueryByEntity(ctx, "project", "alpha", QueryOptions{Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		require.Len(t, page1, 2)
		require.NotEmpty(t, next)

		page2, next2, _, err := s.QueryByEntity(ctx, "project", "alpha", QueryOptions{Limit: 2, Cursor: next})
		require.NoError(t, err)
		require.Len(t, page2, 1)
		assert.Empty(t, next2)
		assert.Equal(t, "Generated Alpha v1.0", page2[0].Summary)
	})

	t.Run("Search", func(t *testing.T) {
		got, total, err := s.Search(ctx, "generated", SearchOptions{})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		assert.Equal(t, "Generated Beta v0.1", got[0].Summary)

		got, total, err = s.Search(ctx, "ALPHA", SearchOptions{Limit: 1})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		assert.Len(t, got, 1)
	})

	t.Run("Empty", func(t *testing.T) {
		require.NoError(t, s.WriteEntries(ctx, nil))
		got, _, total, err := s.QueryByEntity(ctx, "project", "nobody", DefaultQueryOptions())
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.Zero(t, total)
	})
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestSQLStore_SQLite(t *testing.T) {
	db, err := sql.Open("sqlite", "file::memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	s := NewSQLStore(db)
	require.NoError(t, s.CreateTable(context.Background()))
	exerciseStore(t, s)
}

func TestSQLStore_WriteEntriesStatement(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	e1 := testEntry("project_saved", "alpha", "Saved Alpha", 0)
	e2 := testEntry("project_deleted", "alpha", "Deleted Alpha", 1)
	e2.Payload = nil

	mock.ExpectExec(regexp.QuoteMeta("INSERT OR IGNORE INTO activity_entries")).
		WithArgs(
			e1.EventID, e1.EventType, "2026-05-01T12:00:00.000000000Z", "project", "alpha", "subject", "Saved Alpha", `{"n":1}`,
			e2.EventID, e2.EventType, "2026-05-01T12:01:00.000000000Z", "project", "alpha", "subject", "Deleted Alpha", nil,
		).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, NewSQLStore(db).WriteEntries(context.Background(), []Entry{e1, e2}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "?", placeholders(1))
	assert.Equal(t, "?, ?, ?", placeholders(3))
}
