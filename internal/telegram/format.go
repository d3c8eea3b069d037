package telegram

import (
	"errors"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"

	"chessbot/internal/puzzle"
	"chessbot/pkg/logx"
	"chessbot/pkg/tgui"
)

// Callback action identifiers embedded in inline buttons. The numeric
// suffix of a solution action is the puzzle list index; it stays valid
// only while this process and its puzzle list live.
const (
	actionNewPuzzle      = "new_puzzle"
	actionSolutionPrefix = "sol_"
)

func startKeyboard() *tele.ReplyMarkup {
	return tgui.NewInline().
		Row(tgui.Btn("♟️ Get a puzzle", actionNewPuzzle)).
		Markup()
}

func puzzleKeyboard(index int) *tele.ReplyMarkup {
	return tgui.NewInline().
		Row(tgui.Btn("💡 Show solution", actionSolutionPrefix+strconv.Itoa(index))).
		Row(tgui.Btn("♟️ New puzzle", actionNewPuzzle)).
		Markup()
}

// StartMessage renders the Start state.
func (u *UI) StartMessage() (string, *tele.ReplyMarkup) {
	text := tgui.JoinH("\n",
		tgui.Esc("Hi! I am a chess puzzle bot 🤖♟"),
		tgui.Esc("Press the button to get your first puzzle:"),
	)
	return text.String(), startKeyboard()
}

// Transition applies a callback action and returns the next message
// rendering. known is false for actions this controller does not own.
func (u *UI) Transition(action string) (text string, rm *tele.ReplyMarkup, known bool) {
	switch {
	case action == actionNewPuzzle:
		text, rm = u.puzzleMessage()
		return text, rm, true
	case strings.HasPrefix(action, actionSolutionPrefix):
		text, rm = u.solutionMessage(strings.TrimPrefix(action, actionSolutionPrefix))
		return text, rm, true
	default:
		return "", nil, false
	}
}

func (u *UI) puzzleMessage() (string, *tele.ReplyMarkup) {
	index, p, err := u.sel.PickRandom()
	if err != nil {
		// Empty catalog: stay in the Start state with a retry hint.
		return tgui.Esc("⚠️ Could not load puzzles. Try again later.").String(), startKeyboard()
	}
	return puzzleText(p).String(), puzzleKeyboard(index)
}

func (u *UI) solutionMessage(rawIndex string) (string, *tele.ReplyMarkup) {
	index, convErr := strconv.Atoi(rawIndex)
	var p puzzle.Puzzle
	var err error
	if convErr != nil {
		err = puzzle.ErrInvalidIndex
	} else {
		p, err = u.sel.SolutionFor(index)
	}
	if err != nil {
		if !errors.Is(err, puzzle.ErrInvalidIndex) {
			u.log.Warn("solution lookup failed", logx.Err(err))
		}
		// Stale token (restart or shrunk list): ask for a fresh puzzle.
		return tgui.Esc("⚠️ Could not find that puzzle. Please request a new one.").String(), startKeyboard()
	}

	solution := p.Solution
	if strings.TrimSpace(solution) == "" {
		solution = "Solution not found."
	}
	text := tgui.JoinH("\n\n",
		puzzleText(p),
		tgui.JoinH(" ", tgui.B("💡 Solution:"), tgui.Esc(solution)),
	)
	return text.String(), startKeyboard()
}

// DailyPuzzleMessage renders the scheduled/manual puzzle push sent
// directly to the configured chat (no keyboard, no session).
func (u *UI) DailyPuzzleMessage() (string, error) {
	_, p, err := u.sel.PickRandom()
	if err != nil {
		return "", err
	}
	text := tgui.JoinH("\n\n",
		tgui.B("♟️ Daily puzzle"),
		puzzleText(p),
	)
	return text.String(), nil
}

func puzzleText(p puzzle.Puzzle) tgui.H {
	title := p.Title
	if strings.TrimSpace(title) == "" {
		title = "Puzzle"
	}
	parts := []tgui.H{tgui.JoinH(" ", tgui.Esc("♟️"), tgui.B(title))}
	if strings.TrimSpace(p.URL) != "" {
		parts = append(parts, tgui.Esc(p.URL))
	}
	return tgui.JoinH("\n", parts...)
}
