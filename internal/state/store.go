// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package state

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/paper-rec/pkg/types"
)

const (
	dbFile              = "state.db"
	DefaultConversation = "default"
)

// Store persists conversation state in SQLite. Each Emit replaces the
// papers slot of the conversation and appends the tagged message.
type Store struct {
	db           *sql.DB
	conversation string
	log          *slog.Logger
}

// Open opens or creates the state database at cfg.Dir/state.db and creates
// the schema if it does not exist.
func Open(cfg types.StateConfig, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	conversation := cfg.Conversation
	if conversation == "" {
		conversation = DefaultConversation
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &Store{db: db, conversation: conversation, log: logger}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Conversation returns the conversation this store writes to.
func (s *Store) Conversation() string { return s.conversation }

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS papers (
			conversation TEXT NOT NULL,
			paper_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			title TEXT NOT NULL,
			abstract TEXT NOT NULL,
			year TEXT NOT NULL,
			citation_count TEXT NOT NULL,
			url TEXT NOT NULL,
			PRIMARY KEY (conversation, paper_id)
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			conversation TEXT NOT NULL,
			tool_call_id TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Emit stores u in one transaction.
func (s *Store) Emit(ctx context.Context, u Update) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM papers WHERE conversation = ?`, s.conversation); err != nil {
		return fmt.Errorf("clearing papers slot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO papers (conversation, paper_id, position, title, abstract, year, citation_count, url)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, id := range u.orderedIDs() {
		p := u.Papers[id]
		if _, err := stmt.ExecContext(ctx, s.conversation, id, i, p.Title, p.Abstract, p.Year, p.CitationCount, p.URL); err != nil {
			return fmt.Errorf("inserting paper %s: %w", id, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO messages (conversation, tool_call_id, content, created_at) VALUES (?, ?, ?, ?)`,
		s.conversation, u.Message.CallID, u.Message.Content, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("inserting message: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	s.log.Debug("state updated", "conversation", s.conversation, "tool_call_id", u.CallID, "papers", len(u.Papers))
	return nil
}

// Papers returns the current contents of the papers slot and the paper IDs
// in the order they were emitted.
func (s *Store) Papers(ctx context.Context) (types.Papers, []string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT paper_id, title, abstract, year, citation_count, url
		 FROM papers WHERE conversation = ? ORDER BY position`, s.conversation)
	if err != nil {
		return nil, nil, fmt.Errorf("querying papers: %w", err)
	}
	defer rows.Close()

	papers := make(types.Papers)
	var order []string
	for rows.Next() {
		var id string
		var p types.Recommendation
		if err := rows.Scan(&id, &p.Title, &p.Abstract, &p.Year, &p.CitationCount, &p.URL); err != nil {
			return nil, nil, fmt.Errorf("scanning paper: %w", err)
		}
		papers[id] = p
		order = append(order, id)
	}
	return papers, order, rows.Err()
}

// Messages returns the tool messages of the conversation, oldest first.
func (s *Store) Messages(ctx context.Context) ([]types.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT tool_call_id, content FROM messages WHERE conversation = ? ORDER BY rowid`, s.conversation)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var msgs []types.Message
	for rows.Next() {
		var m types.Message
		if err := rows.Scan(&m.CallID, &m.Content); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}
