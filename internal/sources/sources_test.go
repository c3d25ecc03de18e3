package sources

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/domain"
)

var fixedNow = time.Date(2026, 3, 4, 15, 30, 0, 0, time.UTC) // a Wednesday

func newReplica(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenReplica(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	stmts := []string{
		`CREATE TABLE leads (id INTEGER PRIMARY KEY, name TEXT, email TEXT, phone TEXT, lead_status TEXT,
			course_list TEXT, lead_source TEXT, lead_owner TEXT, created_at TEXT)`,
		`INSERT INTO leads (name, email, lead_status, lead_source, created_at) VALUES
			('Asha Rao', 'asha@example.com', 'open', 'website', '2026-03-04 09:00:00'),
			('Vikram Shah', 'vikram@example.com', 'won', 'referral', '2026-03-03 11:00:00'),
			('Meera Iyer', 'meera@example.com', 'open', 'website', '2026-02-20 10:00:00')`,
		`CREATE TABLE rms_candidates (id INTEGER PRIMARY KEY, name TEXT, skills TEXT, role TEXT, status TEXT,
			position TEXT, location TEXT, created_at TEXT)`,
		`INSERT INTO rms_candidates (name, skills, role, status, location, created_at) VALUES
			('Rohan', 'go, sql', 'backend', 'screening', 'Pune', '2026-03-01 10:00:00'),
			('Kavya', 'react', 'frontend', 'offer', 'Bengaluru', '2026-03-02 10:00:00')`,
	}
	for _, s := range stmts {
		_, err := db.Exec(s)
		require.NoError(t, err)
	}
	return db
}

func fixedClock(r *Repository) *Repository {
	r.now = func() time.Time { return fixedNow }
	return r
}

func TestDetectTable(t *testing.T) {
	repo := NewCRM(nil, 10, nil)

	tests := []struct {
		query string
		want  string
	}{
		{"show all campaigns", "campaigns"},
		{"Courses starting soon", "Course"},
		{"notes and comments for Asha", "notes"},
		{"list trainers and learners", "trainers"},
		{"anything new?", "leads"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, repo.detectTable(tt.query).Table, tt.query)
	}
}

func TestRetrieveAllLeadsNewestFirst(t *testing.T) {
	repo := fixedClock(NewCRM(newReplica(t), 10, nil))

	records, err := repo.Retrieve(context.Background(), "show me all leads", domain.ConversationWindow{})
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Asha Rao", records[0]["name"])
	assert.Equal(t, "leads", records[0]["_table"])
}

func TestRetrieveLeadsToday(t *testing.T) {
	repo := fixedClock(NewCRM(newReplica(t), 10, nil))

	records, err := repo.Retrieve(context.Background(), "leads today", domain.ConversationWindow{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Asha Rao", records[0]["name"])
}

func TestRetrieveNewLeadsLastWeek(t *testing.T) {
	repo := fixedClock(NewCRM(newReplica(t), 10, nil))

	records, err := repo.Retrieve(context.Background(), "new leads", domain.ConversationWindow{})
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestRetrieveTextTerms(t *testing.T) {
	repo := fixedClock(NewRMS(newReplica(t), 10, nil))

	records, err := repo.Retrieve(context.Background(), "list candidates in Pune", domain.ConversationWindow{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Rohan", records[0]["name"])
}

func TestRetrievePageSize(t *testing.T) {
	repo := fixedClock(NewCRM(newReplica(t), 2, nil))

	records, err := repo.Retrieve(context.Background(), "leads", domain.ConversationWindow{})
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestRetrieveMissingTable(t *testing.T) {
	repo := fixedClock(NewRMS(newReplica(t), 10, nil))

	_, err := repo.Retrieve(context.Background(), "upcoming interviews", domain.ConversationWindow{})
	assert.Error(t, err)
}

func TestSearchTerms(t *testing.T) {
	repo := NewCRM(nil, 10, nil)

	assert.Equal(t, []string{"website"}, repo.searchTerms("Show me all new leads from website"))
	assert.Empty(t, repo.searchTerms("list all tasks this week"))
}

func TestParseFilters(t *testing.T) {
	f := parseFilters("tasks this week", fixedNow)
	require.True(t, f.HasRange())
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), *f.Start)
	assert.Equal(t, time.Date(2026, 3, 4, 23, 59, 59, 0, time.UTC), *f.End)

	f = parseFilters("yesterday", fixedNow)
	assert.Equal(t, time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), *f.Start)

	f = parseFilters("new learners", fixedNow)
	assert.Equal(t, time.Date(2026, 2, 25, 0, 0, 0, 0, time.UTC), *f.Start)

	assert.False(t, parseFilters("all leads", fixedNow).HasRange())
}
