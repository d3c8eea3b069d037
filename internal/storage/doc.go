package storage

// Package storage persists the per-document page cursor and a log of
// successful publications.
//
// It currently supports:
//   - "file": one small text file per document cursor + JSONL publish log
//   - "sqlite": a single SQLite database file
