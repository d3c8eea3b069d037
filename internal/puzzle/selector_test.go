package puzzle

import (
	"errors"
	"math/rand"
	"testing"
)

func TestPickRandomBoundsAndMatch(t *testing.T) {
	t.Parallel()
	puzzles := []Puzzle{
		{Title: "A", Solution: "1. e4"},
		{Title: "B", Solution: "1. d4"},
		{Title: "C", Solution: "1. c4"},
	}
	sel := NewSelector(puzzles, rand.NewSource(1))

	for i := 0; i < 100; i++ {
		idx, p, err := sel.PickRandom()
		if err != nil {
			t.Fatalf("PickRandom error: %v", err)
		}
		if idx < 0 || idx >= len(puzzles) {
			t.Fatalf("index %d out of [0, %d)", idx, len(puzzles))
		}
		if p.Title != puzzles[idx].Title {
			t.Fatalf("returned puzzle %q does not match index %d (%q)", p.Title, idx, puzzles[idx].Title)
		}
	}
}

func TestPickRandomDeterministicWithSeed(t *testing.T) {
	t.Parallel()
	puzzles := []Puzzle{{Title: "A"}, {Title: "B"}}

	a := NewSelector(puzzles, rand.NewSource(42))
	b := NewSelector(puzzles, rand.NewSource(42))
	for i := 0; i < 10; i++ {
		ia, _, _ := a.PickRandom()
		ib, _, _ := b.PickRandom()
		if ia != ib {
			t.Fatalf("draw %d differs: %d vs %d for same seed", i, ia, ib)
		}
	}
}

func TestPickRandomEmptyCatalog(t *testing.T) {
	t.Parallel()
	sel := NewSelector(nil, rand.NewSource(1))
	if _, _, err := sel.PickRandom(); !errors.Is(err, ErrEmptyCatalog) {
		t.Fatalf("err = %v, want ErrEmptyCatalog", err)
	}
}

func TestSolutionFor(t *testing.T) {
	t.Parallel()
	puzzles := []Puzzle{
		{Title: "A", Solution: "Qxf7#"},
		{Title: "B", Solution: "Rxh7+"},
	}
	sel := NewSelector(puzzles, rand.NewSource(1))

	tests := []struct {
		name    string
		index   int
		want    string
		wantErr error
	}{
		{name: "first", index: 0, want: "Qxf7#"},
		{name: "second", index: 1, want: "Rxh7+"},
		{name: "negative", index: -1, wantErr: ErrInvalidIndex},
		{name: "past end", index: 5, wantErr: ErrInvalidIndex},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			p, err := sel.SolutionFor(tt.index)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("SolutionFor(%d) error: %v", tt.index, err)
			}
			if p.Solution != tt.want {
				t.Fatalf("solution = %q, want %q", p.Solution, tt.want)
			}
		})
	}
}
