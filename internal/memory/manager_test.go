package memory

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/domain"
	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/tests/helpers"
)

func TestLoadOldestFirstBounded(t *testing.T) {
	ctx := context.Background()
	store := helpers.NewTestSQLiteStore(t)
	session := &domain.Session{OwnerID: "a1"}
	require.NoError(t, store.CreateSession(ctx, session))

	m := NewManager(store, time.Second, nil)
	base := time.Now().Add(-time.Hour)
	for i := 1; i <= 7; i++ {
		require.NoError(t, m.Save(ctx, &domain.Turn{
			SessionID:         session.SessionID,
			OwnerID:           "a1",
			UserMessage:       fmt.Sprintf("q%d", i),
			AssistantResponse: fmt.Sprintf("a%d", i),
			SourceType:        domain.SourceNone,
			CreatedAt:         base.Add(time.Duration(i) * time.Minute),
		}))
	}

	res := m.Load(ctx, session.SessionID, 0)
	require.True(t, res.OK())
	assert.Equal(t, DefaultWindow, res.Value.Len())

	var msgs []string
	for turn := range res.Value.Turns() {
		msgs = append(msgs, turn.UserMessage)
	}
	assert.Equal(t, []string{"q3", "q4", "q5", "q6", "q7"}, msgs)

	// Turns() restarts on every call.
	again := slices.Collect(res.Value.Turns())
	assert.Len(t, again, 5)
}

func TestLoadEmptySession(t *testing.T) {
	store := helpers.NewTestSQLiteStore(t)
	m := NewManager(store, 0, nil)

	res := m.Load(context.Background(), "fresh", 5)
	assert.True(t, res.OK())
	assert.Zero(t, res.Value.Len())
}

type brokenStore struct{}

func (brokenStore) AppendTurn(ctx context.Context, turn *domain.Turn) error {
	return errors.New("disk full")
}

func (brokenStore) LoadRecentTurns(ctx context.Context, sessionID string, limit int) ([]domain.Turn, error) {
	return nil, errors.New("database is locked")
}

func (brokenStore) ListTurnsByOwner(ctx context.Context, ownerID string, limit int) ([]domain.Turn, error) {
	return nil, errors.New("database is locked")
}

func TestLoadFailureYieldsEmptyWindow(t *testing.T) {
	m := NewManager(brokenStore{}, 0, nil)

	res := m.Load(context.Background(), "s1", 5)
	assert.False(t, res.OK())
	assert.Equal(t, domain.FaultMemory, res.Fault)
	assert.EqualError(t, res.Err, "database is locked")
	assert.Zero(t, res.Value.Len())

	assert.ErrorContains(t, m.Save(context.Background(), &domain.Turn{}), "disk full")
}
