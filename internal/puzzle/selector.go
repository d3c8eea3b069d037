package puzzle

import (
	"errors"
	"math/rand"
	"sync"
)

var (
	// ErrEmptyCatalog means no puzzles were loaded; callers present a
	// "try later" state instead of failing hard.
	ErrEmptyCatalog = errors.New("puzzle catalog is empty")

	// ErrInvalidIndex means a stale or out-of-range selection token
	// (e.g. from before a restart); callers ask for a fresh puzzle.
	ErrInvalidIndex = errors.New("puzzle index out of range")
)

// Selector holds the immutable in-memory puzzle list and picks uniformly
// at random. The selection index doubles as the opaque token embedded in
// "show solution" callbacks; it is valid only for this process lifetime.
type Selector struct {
	puzzles []Puzzle

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSelector builds a selector over puzzles using the given random
// source. Tests inject a deterministic source.
func NewSelector(puzzles []Puzzle, src rand.Source) *Selector {
	return &Selector{
		puzzles: puzzles,
		rnd:     rand.New(src),
	}
}

// Len reports the catalog size.
func (s *Selector) Len() int { return len(s.puzzles) }

// PickRandom returns a uniformly random (index, puzzle) pair.
func (s *Selector) PickRandom() (int, Puzzle, error) {
	if len(s.puzzles) == 0 {
		return 0, Puzzle{}, ErrEmptyCatalog
	}
	s.mu.Lock()
	i := s.rnd.Intn(len(s.puzzles))
	s.mu.Unlock()
	return i, s.puzzles[i], nil
}

// SolutionFor resolves a previously issued selection token.
func (s *Selector) SolutionFor(index int) (Puzzle, error) {
	if index < 0 || index >= len(s.puzzles) {
		return Puzzle{}, ErrInvalidIndex
	}
	return s.puzzles[index], nil
}
