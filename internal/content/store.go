// Package content stores the curated response blocks the decision engine
// points replies at. Blocks are authored as markdown files and mirrored into
// a local sqlite database so lookups stay cheap and queryable.
package content

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jakco/support-router/internal/engine"
)

type Store struct {
	db *sql.DB
}

func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA journal_mode=WAL; PRAGMA foreign_keys=ON;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply sqlite pragmas: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) AutoMigrate(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS blocks (
			id TEXT PRIMARY KEY,
			category TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			body TEXT NOT NULL,
			position INTEGER NOT NULL DEFAULT 0,
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		);`,
		`CREATE INDEX IF NOT EXISTS idx_blocks_category ON blocks(category, position);`,
	}
	for _, query := range queries {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("migrate blocks schema: %w", err)
		}
	}
	return nil
}

// Replace swaps the whole block corpus in one transaction. The loader calls
// this on startup and on every watched change, so partial corpora are never
// visible.
func (s *Store) Replace(ctx context.Context, blocks []engine.Block) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM blocks`); err != nil {
		return fmt.Errorf("clear blocks: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	for position, block := range blocks {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO blocks (id, category, title, body, position, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
			block.ID, block.Category, block.Title, block.Body, position, now)
		if err != nil {
			return fmt.Errorf("insert block %s: %w", block.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}
	return nil
}

func (s *Store) FindBlockByID(ctx context.Context, id string) (engine.Block, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, category, title, body FROM blocks WHERE id = ?`, id)
	var block engine.Block
	if err := row.Scan(&block.ID, &block.Category, &block.Title, &block.Body); err != nil {
		if err == sql.ErrNoRows {
			return engine.Block{}, false, nil
		}
		return engine.Block{}, false, fmt.Errorf("find block %s: %w", id, err)
	}
	return block, true, nil
}

func (s *Store) FindBlocks(ctx context.Context, category string, limit int) ([]engine.Block, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, category, title, body FROM blocks WHERE category = ? ORDER BY position LIMIT ?`,
		category, limit)
	if err != nil {
		return nil, fmt.Errorf("find blocks for %s: %w", category, err)
	}
	defer rows.Close()

	var blocks []engine.Block
	for rows.Next() {
		var block engine.Block
		if err := rows.Scan(&block.ID, &block.Category, &block.Title, &block.Body); err != nil {
			return nil, fmt.Errorf("scan block: %w", err)
		}
		blocks = append(blocks, block)
	}
	return blocks, rows.Err()
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM blocks`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count blocks: %w", err)
	}
	return count, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}
