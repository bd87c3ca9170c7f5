package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"multigame/game"

	"github.com/rs/zerolog/log"
)

const (
	DefaultTablebaseURL = "http://tablebase.lichess.ovh"
	// Lichess serves positions with up to seven pieces.
	DefaultMaxPieces = 7
)

type TablebaseOption func(*Tablebase)

func WithBaseURL(base string) TablebaseOption {
	return func(t *Tablebase) {
		t.baseURL = strings.TrimRight(base, "/")
	}
}

func WithTimeout(timeout time.Duration) TablebaseOption {
	return func(t *Tablebase) {
		if timeout > 0 {
			t.timeout = timeout
		}
	}
}

func WithHTTPClient(client *http.Client) TablebaseOption {
	return func(t *Tablebase) {
		if client != nil {
			t.client = client
		}
	}
}

// WithMaxPieces skips positions with more pieces on the board.
func WithMaxPieces(pieces int) TablebaseOption {
	return func(t *Tablebase) {
		t.maxPieces = pieces
	}
}

// Tablebase asks a lichess compatible endgame tablebase server for the best
// move of a chess position.
type Tablebase struct {
	baseURL   string
	timeout   time.Duration
	maxPieces int
	client    *http.Client
}

func NewTablebase(options ...TablebaseOption) *Tablebase {
	t := &Tablebase{
		baseURL:   DefaultTablebaseURL,
		timeout:   2 * time.Second,
		maxPieces: DefaultMaxPieces,
		client:    http.DefaultClient,
	}
	for _, option := range options {
		option(t)
	}
	return t
}

type tablebaseResponse struct {
	Moves []struct {
		UCI string `json:"uci"`
	} `json:"moves"`
}

// BestMove returns the first move of the server's ranking. Any failure is
// logged and reported as no recommendation.
func (t *Tablebase) BestMove(g game.Game) (string, bool) {
	state := g.State()
	if pieces := countPieces(state); t.maxPieces > 0 && pieces > t.maxPieces {
		return "", false
	}

	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()

	move, err := t.Query(ctx, state)
	if err != nil {
		log.Warn().Msgf("tablebase lookup failed: %v", err)
		return "", false
	}
	if move == "" {
		return "", false
	}
	log.Debug().Msgf("tablebase move %s for %s", move, state)
	return move, true
}

// Query returns the best move for the FEN, or "" if the server knows none.
func (t *Tablebase) Query(ctx context.Context, fen string) (string, error) {
	endpoint := t.baseURL + "/standard?fen=" + url.QueryEscape(fen)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to query tablebase: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("tablebase returned status %d", resp.StatusCode)
	}

	var body tablebaseResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode tablebase response: %w", err)
	}
	if len(body.Moves) == 0 {
		return "", nil
	}
	return body.Moves[0].UCI, nil
}

// countPieces counts the pieces in the board field of a FEN.
func countPieces(fen string) int {
	board, _, _ := strings.Cut(fen, " ")
	count := 0
	for _, r := range board {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			count++
		}
	}
	return count
}
