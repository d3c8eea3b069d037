package telegram

import (
	"strings"

	tele "gopkg.in/telebot.v4"

	"chessbot/internal/puzzle"
	"chessbot/pkg/logx"
)

// UI is the puzzle conversation controller. Each user-facing message
// moves between two states: Start (offer a puzzle) and PuzzleShown
// (offer the solution or a new puzzle). Every transition edits the
// existing message in place.
type UI struct {
	sel *puzzle.Selector
	log logx.Logger
}

func NewUI(sel *puzzle.Selector, log logx.Logger) *UI {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &UI{sel: sel, log: log}
}

// Register attaches the /start command and callback handling.
func (u *UI) Register(ad *Adapter) {
	ad.Handle("/start", u.onStart)
	ad.Handle(tele.OnCallback, u.onCallback)
}

func (u *UI) onStart(c tele.Context) error {
	text, rm := u.StartMessage()
	return c.Send(text, &tele.SendOptions{ParseMode: tele.ModeHTML, ReplyMarkup: rm})
}

func (u *UI) onCallback(c tele.Context) error {
	cb := c.Callback()
	if cb == nil {
		return nil
	}
	defer func() {
		// Always clear the button spinner, even on unknown actions.
		_ = c.Respond(&tele.CallbackResponse{})
	}()

	action := strings.TrimSpace(strings.TrimPrefix(cb.Data, "\f"))
	text, rm, known := u.Transition(action)
	if !known {
		u.log.Debug("unknown callback action", logx.String("action", action))
		return nil
	}
	return c.Edit(text, &tele.SendOptions{ParseMode: tele.ModeHTML, ReplyMarkup: rm})
}
