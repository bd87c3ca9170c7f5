// Package server exposes game sessions over a JSON HTTP api. Every session
// owns an engine with its own game, a session serves one request at a time.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"multigame/game"
	"multigame/searcher"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	defaultThinking = time.Second
	maxThinking     = time.Minute
)

// EngineFactory creates the engine, including its game, for a game name.
type EngineFactory func(name string) (searcher.Engine, error)

type session struct {
	// busy while a request works on the engine
	mu      sync.Mutex
	id      string
	name    string
	engine  searcher.Engine
	created time.Time
}

// GameResponse describes the state of a session.
type GameResponse struct {
	ID         string   `json:"id"`
	Game       string   `json:"game"`
	State      string   `json:"state"`
	Diagram    string   `json:"diagram"`
	SideToMove string   `json:"sideToMove"`
	ValidMoves []string `json:"validMoves"`
	Finished   bool     `json:"finished"`
	Winner     string   `json:"winner,omitempty"`
}

type NewGameRequest struct {
	Game  string `json:"game"`
	State string `json:"state,omitempty"`
}

type MoveRequest struct {
	Move string `json:"move"`
}

type BestMoveRequest struct {
	Millis int  `json:"millis"`
	Apply  bool `json:"apply"`
}

type BestMoveResponse struct {
	Move string       `json:"move"`
	Game GameResponse `json:"game"`
}

// Server keeps the sessions in memory.
type Server struct {
	mu       sync.RWMutex
	sessions map[string]*session
	factory  EngineFactory
}

func New(factory EngineFactory) *Server {
	return &Server{sessions: make(map[string]*session), factory: factory}
}

// Handler returns the routes of the api.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/games", s.handleNewGame)
	mux.HandleFunc("GET /api/games", s.handleList)
	mux.HandleFunc("GET /api/games/{id}", s.withSession(s.handleGet))
	mux.HandleFunc("DELETE /api/games/{id}", s.handleDelete)
	mux.HandleFunc("POST /api/games/{id}/move", s.withSession(s.handleMove))
	mux.HandleFunc("POST /api/games/{id}/bestmove", s.withSession(s.handleBestMove))
	return mux
}

// ListenAndServe serves the api on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}
	errs := make(chan error, 1)
	go func() {
		log.Info().Msgf("listening on %s", addr)
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdown)
	}
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req NewGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	engine, err := s.factory(req.Game)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.State != "" {
		if err := engine.Game().SetState(req.State); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	sess := &session{id: uuid.NewString(), name: req.Game, engine: engine, created: time.Now()}
	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	log.Info().Msgf("created %s session %s", sess.name, sess.id)
	writeJSON(w, http.StatusCreated, sess.response())
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	sessions := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.RUnlock()

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].created.Before(sessions[j].created)
	})
	list := make([]GameResponse, 0, len(sessions))
	for _, sess := range sessions {
		if !sess.mu.TryLock() {
			list = append(list, GameResponse{ID: sess.id, Game: sess.name})
			continue
		}
		list = append(list, sess.response())
		sess.mu.Unlock()
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// withSession resolves the session of the path and holds it for the
// duration of the handler.
func (s *Server) withSession(handler func(http.ResponseWriter, *http.Request, *session)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.RLock()
		sess, ok := s.sessions[r.PathValue("id")]
		s.mu.RUnlock()
		if !ok {
			http.Error(w, "game not found", http.StatusNotFound)
			return
		}
		if !sess.mu.TryLock() {
			http.Error(w, "game is busy", http.StatusConflict)
			return
		}
		defer sess.mu.Unlock()
		handler(w, r, sess)
	}
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request, sess *session) {
	writeJSON(w, http.StatusOK, sess.response())
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request, sess *session) {
	var req MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	g := sess.engine.Game()
	if !game.Contains(g.ValidMoves(), req.Move) {
		http.Error(w, fmt.Sprintf("%v: %q", game.ErrInvalidMove, req.Move), http.StatusBadRequest)
		return
	}
	g.Move(req.Move)
	writeJSON(w, http.StatusOK, sess.response())
}

func (s *Server) handleBestMove(w http.ResponseWriter, r *http.Request, sess *session) {
	req := BestMoveRequest{Apply: true}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
	}

	g := sess.engine.Game()
	if g.IsFinished() {
		http.Error(w, "game is finished", http.StatusUnprocessableEntity)
		return
	}

	move, err := search(r.Context(), sess.engine, thinkingTime(req.Millis))
	if err != nil {
		log.Error().Msgf("search of session %s failed: %v", sess.id, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if req.Apply && move != "" {
		g.Move(move)
	}
	writeJSON(w, http.StatusOK, BestMoveResponse{Move: move, Game: sess.response()})
}

// search runs a timed search that is stopped early when ctx is done.
func search(ctx context.Context, engine searcher.Engine, budget time.Duration) (move string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("search failed: %v", r)
		}
	}()

	calc := engine.BestMoveWithin(budget)
	stop := context.AfterFunc(ctx, calc.Stop)
	defer stop()

	move = calc.Get()
	if move != "" && !game.Contains(engine.Game().ValidMoves(), move) {
		return "", errors.New("engine returned an invalid move")
	}
	return move, nil
}

func thinkingTime(millis int) time.Duration {
	if millis <= 0 {
		return defaultThinking
	}
	return min(time.Duration(millis)*time.Millisecond, maxThinking)
}

func (sess *session) response() GameResponse {
	g := sess.engine.Game()
	res := GameResponse{
		ID:         sess.id,
		Game:       sess.name,
		State:      g.State(),
		Diagram:    g.Diagram(),
		SideToMove: g.SideToMove().String(),
		ValidMoves: game.Moves(g.ValidMoves()),
		Finished:   g.IsFinished(),
	}
	if res.Finished {
		res.Winner = g.Winner().String()
	}
	return res
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Msgf("writeJSON error: %v", err)
	}
}
