package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/domain"
)

// driverName is go-sqlite3 with the pragmas applied on every new connection.
const driverName = "sqlite3_chatbot"

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			for _, pragma := range []string{
				"PRAGMA foreign_keys = ON",
				"PRAGMA busy_timeout = 5000",
			} {
				if _, err := conn.Exec(pragma, nil); err != nil {
					return fmt.Errorf("%s: %w", pragma, err)
				}
			}
			return nil
		},
	})
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens the database at dsn and applies migrations.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every connection to an in-memory database sees its own empty schema.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := &SQLiteStore{db: db, now: time.Now}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			admin_id TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'active',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			last_activity DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			ended_at DATETIME
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_admin ON sessions(admin_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS chat_history (
			turn_id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			admin_id TEXT NOT NULL,
			user_message TEXT NOT NULL,
			assistant_response TEXT NOT NULL,
			source_type TEXT NOT NULL,
			record_count INTEGER NOT NULL DEFAULT 0,
			response_time_ms INTEGER NOT NULL DEFAULT 0,
			tokens_used INTEGER,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (session_id) REFERENCES sessions(session_id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_history_session ON chat_history(session_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_history_admin ON chat_history(admin_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS audit_logs (
			audit_id TEXT PRIMARY KEY,
			admin_id TEXT NOT NULL,
			session_id TEXT,
			action TEXT NOT NULL,
			metadata TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_logs_session ON audit_logs(session_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS retrieved_contexts (
			context_id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			admin_id TEXT NOT NULL,
			source_type TEXT NOT NULL,
			query_text TEXT NOT NULL,
			payload TEXT,
			record_count INTEGER NOT NULL DEFAULT 0,
			error_message TEXT,
			retrieval_time_ms INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_retrieved_contexts_session ON retrieved_contexts(session_id, created_at)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}

	// Databases created before token accounting lack the column.
	if err := s.ensureColumn("chat_history", "tokens_used", "ALTER TABLE chat_history ADD COLUMN tokens_used INTEGER"); err != nil {
		return err
	}
	return nil
}

func (s *SQLiteStore) ensureColumn(tableName, columnName, ddl string) error {
	rows, err := s.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", tableName))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull int
		var dfltValue sql.NullString
		var pk int
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			return err
		}
		if name == columnName {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	_, err = s.db.Exec(ddl)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateSession inserts a new session. Missing ids and timestamps are filled in.
func (s *SQLiteStore) CreateSession(ctx context.Context, session *domain.Session) error {
	if session.SessionID == "" {
		session.SessionID = uuid.NewString()
	}
	if session.Status == "" {
		session.Status = domain.SessionStatusActive
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = s.now()
	}
	if session.LastActivity.IsZero() {
		session.LastActivity = session.CreatedAt
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (session_id, admin_id, status, created_at, last_activity, ended_at) VALUES (?, ?, ?, ?, ?, ?)`,
		session.SessionID, session.OwnerID, string(session.Status), session.CreatedAt, session.LastActivity, session.EndedAt)
	return err
}

// GetSession retrieves a session by ID. A missing session yields nil, nil.
func (s *SQLiteStore) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	var session domain.Session
	var status string
	var endedAt sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT session_id, admin_id, status, created_at, last_activity, ended_at FROM sessions WHERE session_id = ?`,
		sessionID).Scan(&session.SessionID, &session.OwnerID, &status, &session.CreatedAt, &session.LastActivity, &endedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	session.Status = domain.SessionStatus(status)
	if endedAt.Valid {
		t := endedAt.Time
		session.EndedAt = &t
	}
	return &session, nil
}

// TouchSession updates last activity. Concurrent touches are last-write-wins.
func (s *SQLiteStore) TouchSession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET last_activity = ? WHERE session_id = ?`,
		s.now(), sessionID)
	return err
}

// EndSession moves an active session to ended and returns the updated row.
func (s *SQLiteStore) EndSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	if err := s.closeSession(ctx, sessionID, domain.SessionStatusEnded); err != nil {
		return nil, err
	}
	return s.GetSession(ctx, sessionID)
}

// ExpireSession moves an active session to expired.
func (s *SQLiteStore) ExpireSession(ctx context.Context, sessionID string) error {
	return s.closeSession(ctx, sessionID, domain.SessionStatusExpired)
}

func (s *SQLiteStore) closeSession(ctx context.Context, sessionID string, status domain.SessionStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET status = ?, ended_at = ? WHERE session_id = ? AND status = ?`,
		string(status), s.now(), sessionID, string(domain.SessionStatusActive))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	existing, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if existing == nil {
		return domain.ErrSessionNotFound
	}
	return domain.ErrSessionNotActive
}

// AppendTurn inserts one immutable chat history row.
func (s *SQLiteStore) AppendTurn(ctx context.Context, turn *domain.Turn) error {
	if turn.TurnID == "" {
		turn.TurnID = uuid.NewString()
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = s.now()
	}
	var tokens sql.NullInt64
	if turn.TokensUsed != nil {
		tokens = sql.NullInt64{Int64: int64(*turn.TokensUsed), Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_history (turn_id, session_id, admin_id, user_message, assistant_response, source_type, record_count, response_time_ms, tokens_used, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		turn.TurnID, turn.SessionID, turn.OwnerID, turn.UserMessage, turn.AssistantResponse,
		string(turn.SourceType), turn.RecordCount, turn.ResponseTimeMs, tokens, turn.CreatedAt)
	return err
}

const turnColumns = `turn_id, session_id, admin_id, user_message, assistant_response, source_type, record_count, response_time_ms, tokens_used, created_at`

// LoadRecentTurns returns the latest limit turns of a session, oldest first.
func (s *SQLiteStore) LoadRecentTurns(ctx context.Context, sessionID string, limit int) ([]domain.Turn, error) {
	query := `SELECT ` + turnColumns + ` FROM chat_history WHERE session_id = ? ORDER BY created_at DESC, rowid DESC`
	args := []interface{}{sessionID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	turns, err := s.queryTurns(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

// ListTurnsByOwner returns an owner's most recent turns across sessions, newest first.
func (s *SQLiteStore) ListTurnsByOwner(ctx context.Context, ownerID string, limit int) ([]domain.Turn, error) {
	query := `SELECT ` + turnColumns + ` FROM chat_history WHERE admin_id = ? ORDER BY created_at DESC, rowid DESC`
	args := []interface{}{ownerID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return s.queryTurns(ctx, query, args...)
}

func (s *SQLiteStore) queryTurns(ctx context.Context, query string, args ...interface{}) ([]domain.Turn, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	turns := []domain.Turn{}
	for rows.Next() {
		var t domain.Turn
		var source string
		var tokens sql.NullInt64
		if err := rows.Scan(&t.TurnID, &t.SessionID, &t.OwnerID, &t.UserMessage, &t.AssistantResponse,
			&source, &t.RecordCount, &t.ResponseTimeMs, &tokens, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.SourceType = domain.SourceType(source)
		if tokens.Valid {
			n := int(tokens.Int64)
			t.TokensUsed = &n
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

// AppendAudit inserts an audit entry.
func (s *SQLiteStore) AppendAudit(ctx context.Context, entry *domain.AuditEntry) error {
	if entry.AuditID == "" {
		entry.AuditID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_logs (audit_id, admin_id, session_id, action, metadata, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		entry.AuditID, entry.OwnerID, nullString(entry.SessionID), string(entry.Action), nullString(string(entry.Metadata)), entry.CreatedAt)
	return err
}

// ListAudit returns the audit trail of a session in insertion order.
func (s *SQLiteStore) ListAudit(ctx context.Context, sessionID string) ([]domain.AuditEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT audit_id, admin_id, session_id, action, metadata, created_at FROM audit_logs WHERE session_id = ? ORDER BY created_at ASC, rowid ASC`,
		sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		var session, metadata sql.NullString
		var action string
		if err := rows.Scan(&e.AuditID, &e.OwnerID, &session, &action, &metadata, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.SessionID = session.String
		e.Action = domain.AuditAction(action)
		if metadata.Valid {
			e.Metadata = []byte(metadata.String)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// SaveRetrievedContext records one dispatch attempt.
func (s *SQLiteStore) SaveRetrievedContext(ctx context.Context, rc *domain.RetrievedContext) error {
	if rc.ContextID == "" {
		rc.ContextID = uuid.NewString()
	}
	if rc.CreatedAt.IsZero() {
		rc.CreatedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO retrieved_contexts (context_id, session_id, admin_id, source_type, query_text, payload, record_count, error_message, retrieval_time_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rc.ContextID, rc.SessionID, rc.OwnerID, string(rc.SourceType), rc.QueryText, nullString(string(rc.Payload)),
		rc.RecordCount, nullString(rc.ErrorMessage), rc.RetrievalTimeMs, rc.CreatedAt)
	return err
}

// ListRetrievedContexts returns a session's retrieval traces, oldest first.
func (s *SQLiteStore) ListRetrievedContexts(ctx context.Context, sessionID string) ([]domain.RetrievedContext, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT context_id, session_id, admin_id, source_type, query_text, payload, record_count, error_message, retrieval_time_ms, created_at
		 FROM retrieved_contexts WHERE session_id = ? ORDER BY created_at ASC, rowid ASC`,
		sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contexts []domain.RetrievedContext
	for rows.Next() {
		var rc domain.RetrievedContext
		var source string
		var payload, errMsg sql.NullString
		if err := rows.Scan(&rc.ContextID, &rc.SessionID, &rc.OwnerID, &source, &rc.QueryText, &payload,
			&rc.RecordCount, &errMsg, &rc.RetrievalTimeMs, &rc.CreatedAt); err != nil {
			return nil, err
		}
		rc.SourceType = domain.SourceType(source)
		if payload.Valid {
			rc.Payload = []byte(payload.String)
		}
		rc.ErrorMessage = errMsg.String
		contexts = append(contexts, rc)
	}
	return contexts, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
