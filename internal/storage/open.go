package storage

import (
	"context"
	"errors"
	"strings"

	"chessbot/pkg/logx"
)

// Store is the persistence API used by the publication engine.
//
// LastIndex returns -1 when nothing has been published for the document
// yet (including a missing or corrupt backing record: re-publishing the
// first page is safer than refusing to start).
type Store interface {
	LastIndex(ctx context.Context, doc string) (int, error)
	SetLastIndex(ctx context.Context, doc string, idx int) error
	AppendPublish(ctx context.Context, rec PublishRecord) error
	Close() error
}

// Open initializes the configured store.
func Open(cfg Config, log logx.Logger) (Store, error) {
	if log.IsZero() {
		log = logx.Nop()
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "file", "":
		return openFile(cfg, log)
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	default:
		return nil, errors.New("unknown storage driver: " + cfg.Driver)
	}
}
