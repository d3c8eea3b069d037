// Package app wires configuration, storage, rendering, the Telegram
// adapter, the publication engine and the trigger surfaces into one
// process.
package app

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"chessbot/internal/book"
	"chessbot/internal/config"
	"chessbot/internal/httpserver"
	"chessbot/internal/puzzle"
	"chessbot/internal/render"
	"chessbot/internal/scheduler"
	"chessbot/internal/storage"
	"chessbot/internal/telegram"
	"chessbot/pkg/logx"
)

type App struct {
	cfg config.Config
	log logx.Logger

	store   storage.Store
	adapter *telegram.Adapter
	ui      *telegram.UI
	engine  *book.Engine
	sched   *scheduler.Service
	http    *httpserver.Server

	docs   []book.Document
	client *http.Client

	ready atomic.Bool
}

func New(cfg config.Config, log logx.Logger) (*App, error) {
	hour, minute, err := config.ParseHHMM(cfg.PublishAt)
	if err != nil {
		return nil, fmt.Errorf("publish time: %w", err)
	}

	storePath := strings.TrimSpace(cfg.Storage.Path)
	if storePath == "" {
		switch strings.ToLower(strings.TrimSpace(cfg.Storage.Driver)) {
		case "sqlite", "sqlite3":
			storePath = filepath.Join(cfg.DataDir, "state.db")
		default:
			storePath = filepath.Join(cfg.DataDir, "state")
		}
	}
	store, err := storage.Open(storage.Config{
		Driver:      cfg.Storage.Driver,
		Path:        storePath,
		BusyTimeout: cfg.Storage.BusyTimeout,
	}, log.With(logx.String("comp", "storage")))
	if err != nil {
		return nil, err
	}

	adapter, err := telegram.New(telegram.Config{
		Token:       cfg.BotToken,
		HTTPTimeout: cfg.HTTPTimeout,
	}, log.With(logx.String("comp", "telegram")))
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	a := &App{
		cfg:     cfg,
		log:     log,
		store:   store,
		adapter: adapter,
		docs:    documents(cfg),
		client:  &http.Client{Timeout: cfg.HTTPTimeout},
	}

	a.engine = book.NewEngine(store, adapter, cfg.ChatID, log.With(logx.String("comp", "publisher")))

	a.sched = scheduler.New(scheduler.Config{
		Days:     cfg.PublishDays,
		Hour:     hour,
		Minute:   minute,
		Timezone: cfg.Timezone,
	}, log.With(logx.String("comp", "scheduler")))

	a.http = httpserver.New(httpserver.Config{
		Port:          cfg.Port,
		TriggerSecret: cfg.TriggerSecret,
	}, httpserver.Hooks{
		Ready:         a.ready.Load,
		ProcessUpdate: adapter.ProcessUpdate,
		Trigger:       a.Trigger,
	}, log.With(logx.String("comp", "http")))

	return a, nil
}

// Start brings the bot up: puzzle list, page catalogs, handlers,
// scheduler, HTTP server and webhook registration. Unreachable sources
// degrade to empty catalogs; only wiring failures abort.
func (a *App) Start(ctx context.Context) error {
	puzzles, err := puzzle.Fetch(ctx, a.client, a.cfg.PuzzlesURL, a.log)
	if err != nil {
		// The puzzle UI presents "try later"; page publication still works.
		a.log.Error("puzzle list unavailable; starting with empty catalog", logx.Err(err))
		puzzles = nil
	}
	sel := puzzle.NewSelector(puzzles, rand.NewSource(time.Now().UnixNano()))
	a.ui = telegram.NewUI(sel, a.log.With(logx.String("comp", "ui")))
	a.ui.Register(a.adapter)

	for _, doc := range a.docs {
		if err := book.Prepare(ctx, a.client, doc, a.rasterizerFor(doc.Format), a.cfg.RenderDPI, a.log); err != nil {
			// One document failing must not block the others; its empty
			// catalog keeps PublishNext a no-op until fixed.
			a.log.Error("document preparation failed", logx.String("doc", doc.Name), logx.Err(err))
		}
	}

	for _, doc := range a.docs {
		doc := doc
		a.sched.Add(doc.Name, func(ctx context.Context) {
			res := a.engine.PublishNext(ctx, doc)
			a.logOutcome("schedule", doc.Name, res)
		})
	}
	if err := a.sched.Start(ctx); err != nil {
		return err
	}

	if err := a.http.Start(ctx); err != nil {
		return err
	}

	if err := a.adapter.SetWebhook(ctx, a.cfg.PublicURL); err != nil {
		a.log.Error("webhook registration failed", logx.Err(err))
	}

	a.ready.Store(true)
	a.log.Info("bot started",
		logx.Int64("chat", a.cfg.ChatID),
		logx.Int("documents", len(a.docs)),
		logx.Int("puzzles", sel.Len()),
		logx.Int("port", a.cfg.Port))
	return nil
}

// Trigger performs one manual round: a puzzle push plus one PublishNext
// per configured document. Invoked fire-and-forget from the HTTP
// trigger; every outcome is logged with its source.
func (a *App) Trigger(ctx context.Context, source string) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	if msg, err := a.ui.DailyPuzzleMessage(); err != nil {
		a.log.Warn("puzzle push skipped", logx.String("source", source), logx.Err(err))
	} else if err := a.adapter.SendText(ctx, a.cfg.ChatID, msg, nil); err != nil {
		a.log.Error("puzzle push failed", logx.String("source", source), logx.Err(err))
	} else {
		a.log.Info("puzzle pushed", logx.String("source", source))
	}

	for _, doc := range a.docs {
		res := a.engine.PublishNext(ctx, doc)
		a.logOutcome(source, doc.Name, res)
	}
}

func (a *App) logOutcome(source, doc string, res book.Result) {
	fields := []logx.Field{
		logx.String("source", source),
		logx.String("doc", doc),
		logx.String("outcome", res.Outcome.String()),
	}
	if res.Outcome == book.Published {
		fields = append(fields, logx.Int("page", res.Page+1))
	}
	if res.Err != nil {
		a.log.Error("publish attempt failed", append(fields, logx.Err(res.Err))...)
		return
	}
	a.log.Info("publish attempt finished", fields...)
}

func (a *App) Stop(ctx context.Context) error {
	a.ready.Store(false)
	var firstErr error
	if err := a.sched.Stop(ctx); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := a.http.Stop(ctx); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := a.store.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	a.log.Info("bot stopped")
	return firstErr
}

func (a *App) rasterizerFor(f book.Format) book.Rasterizer {
	switch f {
	case book.FormatDJVU:
		return render.NewDJVU(a.log.With(logx.String("comp", "render")))
	default:
		return render.NewFitz(a.log.With(logx.String("comp", "render")))
	}
}

// documents derives the configured content streams. Names double as
// cursor-store keys, so they must stay stable across releases.
func documents(cfg config.Config) []book.Document {
	var docs []book.Document
	if strings.TrimSpace(cfg.PDFURL) != "" {
		docs = append(docs, book.Document{
			Name:       "pdf",
			SourceURL:  cfg.PDFURL,
			SourceFile: filepath.Join(cfg.DataDir, "chess_book.pdf"),
			PagesDir:   filepath.Join(cfg.DataDir, "pdf_pages"),
			Format:     book.FormatPDF,
		})
	}
	if strings.TrimSpace(cfg.DJVUURL) != "" {
		docs = append(docs, book.Document{
			Name:       "djvu",
			SourceURL:  cfg.DJVUURL,
			SourceFile: filepath.Join(cfg.DataDir, "chess_book.djvu"),
			PagesDir:   filepath.Join(cfg.DataDir, "djvu_pages"),
			Format:     book.FormatDJVU,
		})
	}
	return docs
}
