package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"chessbot/pkg/logx"
)

const schema = `
CREATE TABLE IF NOT EXISTS cursors (
	doc TEXT PRIMARY KEY,
	idx INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS publishes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	at TEXT NOT NULL,
	doc TEXT NOT NULL,
	page INTEGER NOT NULL,
	chat_id INTEGER NOT NULL
);
`

type sqliteStore struct {
	db  *sql.DB
	log logx.Logger
}

func openSQLite(cfg Config, log logx.Logger) (Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if cfg.BusyTimeout > 0 {
		ms := cfg.BusyTimeout.Milliseconds()
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", ms))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &sqliteStore{db: db, log: log}, nil
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqliteStore) LastIndex(ctx context.Context, doc string) (int, error) {
	var idx int
	err := s.db.QueryRowContext(ctx, `SELECT idx FROM cursors WHERE doc = ?`, doc).Scan(&idx)
	if errors.Is(err, sql.ErrNoRows) {
		return -1, nil
	}
	if err != nil {
		s.log.Warn("cursor read failed; treating as unset", logx.String("doc", doc), logx.Err(err))
		return -1, nil
	}
	if idx < 0 {
		return -1, nil
	}
	return idx, nil
}

func (s *sqliteStore) SetLastIndex(ctx context.Context, doc string, idx int) error {
	if idx < 0 {
		return errors.New("cursor index must be non-negative")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cursors(doc, idx) VALUES(?,?)
		 ON CONFLICT(doc) DO UPDATE SET idx=excluded.idx`,
		doc, idx,
	)
	return err
}

func (s *sqliteStore) AppendPublish(ctx context.Context, rec PublishRecord) error {
	if rec.At.IsZero() {
		rec.At = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO publishes(at, doc, page, chat_id) VALUES(?,?,?,?)`,
		rec.At.Format(time.RFC3339Nano), rec.Document, rec.Page, rec.ChatID,
	)
	return err
}
