// Package telegram wraps the Bot API client: outbound sends, callback
// answers, webhook registration and inbound update dispatch.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
	tele "gopkg.in/telebot.v4"

	"chessbot/pkg/logx"
)

type Config struct {
	Token       string
	HTTPTimeout time.Duration

	// APIBase is the Bot API server root. Empty means the public
	// api.telegram.org.
	APIBase string

	// RatePerSec caps outbound sends to stay under Bot API flood limits.
	RatePerSec int
}

// Adapter owns the telebot instance. Updates are pushed in via
// ProcessUpdate (webhook body) instead of long-polling.
type Adapter struct {
	cfg Config
	log logx.Logger

	bot     *tele.Bot
	limiter *rate.Limiter
	http    *http.Client
}

func New(cfg Config, log logx.Logger) (*Adapter, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	perSec := cfg.RatePerSec
	if perSec <= 0 {
		perSec = 1
	}
	if strings.TrimSpace(cfg.APIBase) == "" {
		cfg.APIBase = "https://api.telegram.org"
	}

	b, err := tele.NewBot(tele.Settings{
		URL:    cfg.APIBase,
		Token:  cfg.Token,
		Client: &http.Client{Timeout: timeout},
	})
	if err != nil {
		return nil, err
	}
	return &Adapter{
		cfg:     cfg,
		log:     log,
		bot:     b,
		limiter: rate.NewLimiter(rate.Limit(perSec), perSec*3),
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// Handle registers a telebot handler (command or callback endpoint).
func (a *Adapter) Handle(endpoint any, h tele.HandlerFunc) {
	a.bot.Handle(endpoint, h)
}

// ProcessUpdate decodes a webhook body and dispatches it through the
// registered handlers. The call is synchronous; an HTTP 200 from the
// webhook route means the update was processed.
func (a *Adapter) ProcessUpdate(body []byte) error {
	var u tele.Update
	if err := json.Unmarshal(body, &u); err != nil {
		return fmt.Errorf("decode update: %w", err)
	}
	a.bot.ProcessUpdate(u)
	return nil
}

// SendText sends an HTML-formatted message.
func (a *Adapter) SendText(ctx context.Context, chatID int64, text string, markup *tele.ReplyMarkup) error {
	if err := a.limiter.Wait(ctx); err != nil {
		return err
	}
	_, err := a.bot.Send(&tele.Chat{ID: chatID}, text, &tele.SendOptions{
		ParseMode:   tele.ModeHTML,
		ReplyMarkup: markup,
	})
	return err
}

// SendPhoto uploads a local image file with a caption.
func (a *Adapter) SendPhoto(ctx context.Context, chatID int64, path, caption string) error {
	if err := a.limiter.Wait(ctx); err != nil {
		return err
	}
	photo := &tele.Photo{File: tele.FromDisk(path), Caption: caption}
	_, err := a.bot.Send(&tele.Chat{ID: chatID}, photo)
	return err
}

// SetWebhook registers publicURL+"/webhook" with Telegram, dropping any
// updates queued while the bot was down.
func (a *Adapter) SetWebhook(ctx context.Context, publicURL string) error {
	payload := struct {
		URL                string `json:"url"`
		DropPendingUpdates bool   `json:"drop_pending_updates"`
	}{
		URL:                strings.TrimRight(publicURL, "/") + "/webhook",
		DropPendingUpdates: true,
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := strings.TrimRight(a.cfg.APIBase, "/") + "/bot" + strings.TrimSpace(a.cfg.Token) + "/setWebhook"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var out struct {
		OK          bool   `json:"ok"`
		ErrorCode   int    `json:"error_code"`
		Description string `json:"description"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&out)

	if resp.StatusCode/100 != 2 || !out.OK {
		if out.Description != "" {
			return fmt.Errorf("telegram setWebhook failed: %s (code=%d http=%d)", out.Description, out.ErrorCode, resp.StatusCode)
		}
		return fmt.Errorf("telegram setWebhook failed: http=%d", resp.StatusCode)
	}

	a.log.Info("webhook registered", logx.String("url", payload.URL))
	return nil
}
