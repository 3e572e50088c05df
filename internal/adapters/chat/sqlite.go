package chat

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nickfox/LLMCreativeStudio/internal/core"
)

//go:embed migrations/001_initial_schema.sql
var chatMigrationV1 string

// SQLiteChatStore implements ChatStore with SQLite storage.
type SQLiteChatStore struct {
	dbPath string
	db     *sql.DB // Write connection
	readDB *sql.DB // Read-only connection
	mu     sync.RWMutex

	maxRetries    int
	baseRetryWait time.Duration
}

// NewSQLiteChatStore creates a new SQLite-based chat store.
func NewSQLiteChatStore(dbPath string) (*SQLiteChatStore, error) {
	s := &SQLiteChatStore{
		dbPath:        dbPath,
		maxRetries:    5,
		baseRetryWait: 100 * time.Millisecond,
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("creating chat directory: %w", err)
	}

	// Single write connection with WAL keeps writers serialized while
	// readers go through a separate pool.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening write database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	s.db = db

	readDB, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&mode=ro&_pragma=busy_timeout(1000)")
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("opening read database: %w", err)
	}
	readDB.SetMaxOpenConns(10)
	readDB.SetMaxIdleConns(5)
	readDB.SetConnMaxLifetime(5 * time.Minute)
	s.readDB = readDB

	if err := s.migrate(); err != nil {
		_ = db.Close()
		_ = readDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

func (s *SQLiteChatStore) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS chat_schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at TEXT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM chat_schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("checking schema version: %w", err)
	}

	migrations := []string{chatMigrationV1}
	for i, migration := range migrations {
		version := i + 1
		if version <= currentVersion {
			continue
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning migration transaction: %w", err)
		}

		for _, stmt := range splitStatements(migration) {
			if _, err := tx.Exec(stmt); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("executing migration v%d: %w", version, err)
			}
		}

		if _, err := tx.Exec(
			"INSERT INTO chat_schema_migrations (version, applied_at) VALUES (?, ?)",
			version, time.Now().UTC().Format(time.RFC3339),
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("recording migration v%d: %w", version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration v%d: %w", version, err)
		}
	}

	return nil
}

// splitStatements splits a SQL script into individual statements.
func splitStatements(script string) []string {
	var statements []string
	for _, stmt := range strings.Split(script, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		lines := strings.Split(stmt, "\n")
		var sqlLines []string
		for _, line := range lines {
			trimmed := strings.TrimSpace(line)
			if trimmed != "" && !strings.HasPrefix(trimmed, "--") {
				sqlLines = append(sqlLines, line)
			}
		}
		if len(sqlLines) > 0 {
			statements = append(statements, strings.Join(sqlLines, "\n"))
		}
	}
	return statements
}

// retryWrite executes a write operation with exponential backoff on
// SQLITE_BUSY.
func (s *SQLiteChatStore) retryWrite(ctx context.Context, operation string, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if err := fn(); err != nil {
			if isSQLiteBusy(err) {
				lastErr = err
				wait := s.baseRetryWait * time.Duration(1<<attempt)
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(wait):
					continue
				}
			}
			return err
		}
		return nil
	}
	return fmt.Errorf("%s failed after %d retries: %w", operation, s.maxRetries, lastErr)
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "SQLITE_BUSY") ||
		strings.Contains(msg, "SQLITE_LOCKED")
}

// SaveSession persists a chat session.
func (s *SQLiteChatStore) SaveSession(ctx context.Context, session *core.ChatSessionState) error {
	return s.retryWrite(ctx, "SaveSession", func() error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO chat_sessions (id, title, mode, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				title = excluded.title,
				mode = excluded.mode,
				updated_at = excluded.updated_at
		`,
			session.ID,
			session.Title,
			session.Mode,
			session.CreatedAt.UTC().Format(time.RFC3339Nano),
			session.UpdatedAt.UTC().Format(time.RFC3339Nano),
		)
		return err
	})
}

// LoadSession retrieves a chat session by ID.
func (s *SQLiteChatStore) LoadSession(ctx context.Context, id string) (*core.ChatSessionState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.readDB.QueryRowContext(ctx, `
		SELECT id, title, mode, created_at, updated_at
		FROM chat_sessions WHERE id = ?
	`, id)

	var session core.ChatSessionState
	var createdAt, updatedAt string
	var title sql.NullString

	err := row.Scan(&session.ID, &title, &session.Mode, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning session: %w", err)
	}

	session.Title = title.String
	session.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	session.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)

	return &session, nil
}

// ListSessions returns all chat sessions, most recently updated first.
func (s *SQLiteChatStore) ListSessions(ctx context.Context) ([]*core.ChatSessionState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.readDB.QueryContext(ctx, `
		SELECT id, title, mode, created_at, updated_at
		FROM chat_sessions
		ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*core.ChatSessionState
	for rows.Next() {
		var session core.ChatSessionState
		var createdAt, updatedAt string
		var title sql.NullString

		if err := rows.Scan(&session.ID, &title, &session.Mode, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}

		session.Title = title.String
		session.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		session.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)

		sessions = append(sessions, &session)
	}

	return sessions, rows.Err()
}

// DeleteSession removes a chat session and all its messages.
func (s *SQLiteChatStore) DeleteSession(ctx context.Context, id string) error {
	return s.retryWrite(ctx, "DeleteSession", func() error {
		_, err := s.db.ExecContext(ctx, "DELETE FROM chat_sessions WHERE id = ?", id)
		return err
	})
}

// SaveMessage adds a message to a session and bumps the session timestamp.
func (s *SQLiteChatStore) SaveMessage(ctx context.Context, msg *core.ChatMessageState) error {
	return s.retryWrite(ctx, "SaveMessage", func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO chat_messages (id, session_id, sender, participant, persona, content, timestamp, round, round_label, is_system, is_synthesis)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			msg.ID,
			msg.SessionID,
			msg.Sender,
			msg.Participant,
			msg.Persona,
			msg.Content,
			msg.Timestamp.UTC().Format(time.RFC3339Nano),
			msg.Round,
			msg.RoundLabel,
			boolToInt(msg.IsSystem),
			boolToInt(msg.IsSynthesis),
		)
		if err != nil {
			_ = tx.Rollback()
			return err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE chat_sessions SET updated_at = ? WHERE id = ?
		`, msg.Timestamp.UTC().Format(time.RFC3339Nano), msg.SessionID)
		if err != nil {
			_ = tx.Rollback()
			return err
		}

		return tx.Commit()
	})
}

// LoadMessages retrieves all messages for a session in timestamp order.
func (s *SQLiteChatStore) LoadMessages(ctx context.Context, sessionID string) ([]*core.ChatMessageState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.readDB.QueryContext(ctx, `
		SELECT id, session_id, sender, participant, persona, content, timestamp, round, round_label, is_system, is_synthesis
		FROM chat_messages
		WHERE session_id = ?
		ORDER BY timestamp ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var messages []*core.ChatMessageState
	for rows.Next() {
		var msg core.ChatMessageState
		var timestamp string
		var participant, persona, roundLabel sql.NullString
		var isSystem, isSynthesis int

		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.Sender, &participant, &persona, &msg.Content, &timestamp, &msg.Round, &roundLabel, &isSystem, &isSynthesis); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}

		msg.Timestamp, _ = time.Parse(time.RFC3339Nano, timestamp)
		msg.Participant = participant.String
		msg.Persona = persona.String
		msg.RoundLabel = roundLabel.String
		msg.IsSystem = isSystem != 0
		msg.IsSynthesis = isSynthesis != 0

		messages = append(messages, &msg)
	}

	return messages, rows.Err()
}

// Close closes both database connections.
func (s *SQLiteChatStore) Close() error {
	var errs []error
	if s.readDB != nil {
		if err := s.readDB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing read connection: %w", err))
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing write connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var _ core.ChatStore = (*SQLiteChatStore)(nil)
