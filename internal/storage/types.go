package storage

import (
	"time"
)

// Config configures the cursor store.
//
// Driver values:
//   - "file": dependency-free per-document text files
//   - "sqlite": SQLite database file
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// PublishRecord records one successful page publication.
// Keep it compact and schema-stable.
type PublishRecord struct {
	At       time.Time `json:"at"`
	Document string    `json:"document"`
	Page     int       `json:"page"`
	ChatID   int64     `json:"chat_id"`
}
