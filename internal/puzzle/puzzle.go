// Package puzzle loads the remote puzzle list and performs session-free
// random selection over it.
package puzzle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"chessbot/pkg/logx"
)

// Puzzle is one entry of the remote puzzle list. All fields are optional;
// rendering falls back to placeholders for blank ones.
type Puzzle struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	Solution string `json:"solution"`
}

// Fetch downloads and decodes the puzzle list.
//
// The list is loaded once at startup and is immutable for the process
// lifetime. Callers degrade to an empty catalog on error rather than
// aborting startup.
func Fetch(ctx context.Context, client *http.Client, url string, log logx.Logger) ([]Puzzle, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch puzzles: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("fetch puzzles: http %d", resp.StatusCode)
	}

	var list []Puzzle
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("decode puzzles: %w", err)
	}
	log.Info("puzzles loaded", logx.Int("count", len(list)))
	return list, nil
}
