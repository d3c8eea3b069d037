package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"chessbot/pkg/logx"
)

func openTestSQLite(t *testing.T) Store {
	t.Helper()
	st, err := Open(Config{
		Driver:      "sqlite",
		Path:        filepath.Join(t.TempDir(), "state.db"),
		BusyTimeout: time.Second,
	}, logx.Nop())
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestSQLiteCursorRoundTrip(t *testing.T) {
	t.Parallel()
	st := openTestSQLite(t)
	ctx := context.Background()

	if got, err := st.LastIndex(ctx, "pdf"); err != nil || got != -1 {
		t.Fatalf("LastIndex = (%d, %v), want (-1, nil) for unset cursor", got, err)
	}

	if err := st.SetLastIndex(ctx, "pdf", 0); err != nil {
		t.Fatalf("SetLastIndex error: %v", err)
	}
	if err := st.SetLastIndex(ctx, "pdf", 1); err != nil {
		t.Fatalf("SetLastIndex upsert error: %v", err)
	}
	if got, _ := st.LastIndex(ctx, "pdf"); got != 1 {
		t.Fatalf("LastIndex = %d, want 1", got)
	}

	// Other documents stay untouched.
	if got, _ := st.LastIndex(ctx, "djvu"); got != -1 {
		t.Fatalf("djvu cursor = %d, want -1", got)
	}
}

func TestSQLitePublishLog(t *testing.T) {
	t.Parallel()
	st := openTestSQLite(t)
	ctx := context.Background()

	if err := st.AppendPublish(ctx, PublishRecord{Document: "pdf", Page: 3, ChatID: -100}); err != nil {
		t.Fatalf("AppendPublish error: %v", err)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	t.Parallel()
	if _, err := Open(Config{Driver: "redis", Path: "x"}, logx.Nop()); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
