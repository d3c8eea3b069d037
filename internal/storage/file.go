package storage

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"chessbot/pkg/logx"
)

// fileStore is a dependency-free persistence backend.
//
// Files under cfg.Path:
//   - <doc>.cursor    (single decimal integer, atomically replaced)
//   - publish.jsonl   (append-only JSON Lines publish log)
type fileStore struct {
	log logx.Logger

	mu  sync.Mutex
	dir string

	publishFile *os.File
}

func openFile(cfg Config, log logx.Logger) (Store, error) {
	dir := strings.TrimSpace(cfg.Path)
	if dir == "" {
		return nil, errors.New("storage.path is required for file driver")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	pf, err := os.OpenFile(filepath.Join(dir, "publish.jsonl"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}

	return &fileStore{log: log, dir: dir, publishFile: pf}, nil
}

func (s *fileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.publishFile == nil {
		return nil
	}
	err := s.publishFile.Close()
	s.publishFile = nil
	return err
}

func (s *fileStore) cursorPath(doc string) string {
	return filepath.Join(s.dir, doc+".cursor")
}

func (s *fileStore) LastIndex(ctx context.Context, doc string) (int, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.cursorPath(doc))
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("cursor unreadable; treating as unset", logx.String("doc", doc), logx.Err(err))
		}
		return -1, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil || n < 0 {
		s.log.Warn("cursor corrupt; treating as unset", logx.String("doc", doc), logx.String("raw", string(b)))
		return -1, nil
	}
	return n, nil
}

func (s *fileStore) SetLastIndex(ctx context.Context, doc string, idx int) error {
	_ = ctx
	if idx < 0 {
		return errors.New("cursor index must be non-negative")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	// Atomic replace so a crash mid-write never leaves a torn cursor.
	path := s.cursorPath(doc)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(strconv.Itoa(idx)), 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (s *fileStore) AppendPublish(ctx context.Context, rec PublishRecord) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.publishFile == nil {
		return errors.New("publish log closed")
	}
	return json.NewEncoder(s.publishFile).Encode(rec)
}
