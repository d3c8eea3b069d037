package book

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"chessbot/internal/storage"
	"chessbot/pkg/logx"
)

// PhotoSender delivers one page image to a chat. Implemented by the
// Telegram adapter; tests use a fake.
type PhotoSender interface {
	SendPhoto(ctx context.Context, chatID int64, path, caption string) error
}

// Outcome classifies one PublishNext call.
type Outcome int

const (
	// Published: the next page was sent and the cursor advanced by one.
	Published Outcome = iota
	// AllPublished: no pages remain; no send, no state change.
	AllPublished
	// SendFailed: delivery failed; the cursor was NOT advanced, so the
	// next trigger resends the same page.
	SendFailed
	// Skipped: another publish for the same document was in flight.
	Skipped
	// Failed: the catalog or cursor store could not be consulted.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Published:
		return "published"
	case AllPublished:
		return "all_published"
	case SendFailed:
		return "send_failed"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result reports what a PublishNext call did. Page is the 0-based index
// of the page that was sent (valid when Outcome == Published).
type Result struct {
	Outcome Outcome
	Page    int
	Err     error
}

// Engine owns all page-cursor mutation. The read-decide-send-write
// sequence for a given document is serialized: a concurrent call for the
// same document is dropped with Skipped rather than interleaved, so the
// same page is never sent twice and the cursor never overshoots.
// Publishes for different documents proceed independently.
type Engine struct {
	store  storage.Store
	sender PhotoSender
	chatID int64
	log    logx.Logger

	mu       sync.Mutex
	inflight map[string]*sync.Mutex
}

func NewEngine(store storage.Store, sender PhotoSender, chatID int64, log logx.Logger) *Engine {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Engine{
		store:    store,
		sender:   sender,
		chatID:   chatID,
		log:      log,
		inflight: map[string]*sync.Mutex{},
	}
}

func (e *Engine) lockFor(doc string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	m, ok := e.inflight[doc]
	if !ok {
		m = &sync.Mutex{}
		e.inflight[doc] = m
	}
	return m
}

// PublishNext sends the page after the persisted cursor and advances the
// cursor by exactly one on success.
func (e *Engine) PublishNext(ctx context.Context, doc Document) Result {
	lock := e.lockFor(doc.Name)
	if !lock.TryLock() {
		e.log.Warn("publish already in flight; skipping", logx.String("doc", doc.Name))
		return Result{Outcome: Skipped}
	}
	defer lock.Unlock()

	last, err := e.store.LastIndex(ctx, doc.Name)
	if err != nil {
		return Result{Outcome: Failed, Err: fmt.Errorf("read cursor: %w", err)}
	}

	pages, err := ListPages(doc.PagesDir)
	if err != nil {
		return Result{Outcome: Failed, Err: fmt.Errorf("list pages: %w", err)}
	}

	next := last + 1
	if next >= len(pages) {
		e.log.Info("all pages already published", logx.String("doc", doc.Name), logx.Int("pages", len(pages)))
		return Result{Outcome: AllPublished}
	}

	path := filepath.Join(doc.PagesDir, pages[next])
	caption := fmt.Sprintf("📖 Page %d", next+1)
	if err := e.sender.SendPhoto(ctx, e.chatID, path, caption); err != nil {
		e.log.Error("page send failed", logx.String("doc", doc.Name), logx.Int("page", next+1), logx.Err(err))
		return Result{Outcome: SendFailed, Err: err}
	}

	if err := e.store.SetLastIndex(ctx, doc.Name, next); err != nil {
		// The page went out but the cursor did not persist; the next
		// trigger will resend it. Surface the error to the caller.
		e.log.Error("cursor write failed after send", logx.String("doc", doc.Name), logx.Int("page", next+1), logx.Err(err))
		return Result{Outcome: Published, Page: next, Err: err}
	}

	if err := e.store.AppendPublish(ctx, storage.PublishRecord{
		At:       time.Now(),
		Document: doc.Name,
		Page:     next,
		ChatID:   e.chatID,
	}); err != nil {
		e.log.Warn("publish log append failed", logx.String("doc", doc.Name), logx.Err(err))
	}

	e.log.Info("page published", logx.String("doc", doc.Name), logx.Int("page", next+1), logx.Int("pages", len(pages)))
	return Result{Outcome: Published, Page: next}
}
