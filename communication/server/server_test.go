package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"multigame/agent"
	"multigame/searcher"

	"github.com/stretchr/testify/require"
)

func testFactory(name string) (searcher.Engine, error) {
	g, err := agent.NewGame(name)
	if err != nil {
		return nil, err
	}
	return agent.NewEngine(name, g, agent.Config{Kind: agent.MinMax, Depth: 2, Seed: 1})
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(&v))
	return v
}

func newGame(t *testing.T, h http.Handler, body string) GameResponse {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/games", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[GameResponse](t, rec)
}

func TestServer(t *testing.T) {
	t.Run("create and get", func(t *testing.T) {
		s := New(testFactory)
		h := s.Handler()

		created := newGame(t, h, `{"game":"tictactoe"}`)
		require.NotEmpty(t, created.ID)
		require.Equal(t, agent.TicTacToe, created.Game)
		require.Equal(t, "White", created.SideToMove)
		require.Len(t, created.ValidMoves, 9)
		require.False(t, created.Finished)
		require.Empty(t, created.Winner)

		rec := do(t, h, http.MethodGet, "/api/games/"+created.ID, "")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, created, decode[GameResponse](t, rec))
	})

	t.Run("create from state", func(t *testing.T) {
		h := New(testFactory).Handler()
		created := newGame(t, h, `{"game":"tictactoe","state":"b2/1w1/3 w"}`)
		require.Equal(t, "b2/1w1/3 w", created.State)
		require.Len(t, created.ValidMoves, 7)
	})

	t.Run("create failures", func(t *testing.T) {
		h := New(testFactory).Handler()
		require.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/api/games", `{"game":"mill"}`).Code)
		require.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/api/games", `{"game":"tictactoe","state":"x/y"}`).Code)
		require.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/api/games", `{`).Code)
	})

	t.Run("moves", func(t *testing.T) {
		h := New(testFactory).Handler()
		created := newGame(t, h, `{"game":"tictactoe"}`)
		path := "/api/games/" + created.ID + "/move"

		rec := do(t, h, http.MethodPost, path, `{"move":"bb"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		played := decode[GameResponse](t, rec)
		require.Equal(t, "Black", played.SideToMove)
		require.NotContains(t, played.ValidMoves, "bb")

		rec = do(t, h, http.MethodPost, path, `{"move":"bb"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Contains(t, rec.Body.String(), "invalid move")
	})

	t.Run("best move", func(t *testing.T) {
		h := New(testFactory).Handler()
		created := newGame(t, h, `{"game":"tictactoe","state":"ww1/bb1/3 w"}`)

		rec := do(t, h, http.MethodPost, "/api/games/"+created.ID+"/bestmove", `{"millis":200,"apply":true}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		res := decode[BestMoveResponse](t, rec)
		require.Equal(t, "ca", res.Move)
		require.True(t, res.Game.Finished)
		require.Equal(t, "White", res.Game.Winner)

		rec = do(t, h, http.MethodPost, "/api/games/"+created.ID+"/bestmove", "")
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("best move without apply", func(t *testing.T) {
		h := New(testFactory).Handler()
		created := newGame(t, h, `{"game":"tictactoe","state":"ww1/bb1/3 w"}`)

		rec := do(t, h, http.MethodPost, "/api/games/"+created.ID+"/bestmove", `{"millis":100,"apply":false}`)
		require.Equal(t, http.StatusOK, rec.Code)
		res := decode[BestMoveResponse](t, rec)
		require.Equal(t, "ca", res.Move)
		require.Equal(t, created.State, res.Game.State)
	})

	t.Run("busy session", func(t *testing.T) {
		s := New(testFactory)
		h := s.Handler()
		created := newGame(t, h, `{"game":"tictactoe"}`)

		sess := s.sessions[created.ID]
		sess.mu.Lock()
		rec := do(t, h, http.MethodPost, "/api/games/"+created.ID+"/move", `{"move":"bb"}`)
		require.Equal(t, http.StatusConflict, rec.Code)

		rec = do(t, h, http.MethodGet, "/api/games", "")
		require.Equal(t, http.StatusOK, rec.Code)
		list := decode[[]GameResponse](t, rec)
		require.Len(t, list, 1)
		require.Empty(t, list[0].State)
		sess.mu.Unlock()

		require.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/games/"+created.ID, "").Code)
	})

	t.Run("list and delete", func(t *testing.T) {
		h := New(testFactory).Handler()
		first := newGame(t, h, `{"game":"tictactoe"}`)
		time.Sleep(time.Millisecond)
		second := newGame(t, h, `{"game":"connectfour"}`)

		list := decode[[]GameResponse](t, do(t, h, http.MethodGet, "/api/games", ""))
		require.Len(t, list, 2)
		require.Equal(t, first.ID, list[0].ID)
		require.Equal(t, second.ID, list[1].ID)

		require.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, "/api/games/"+first.ID, "").Code)
		require.Equal(t, http.StatusNotFound, do(t, h, http.MethodDelete, "/api/games/"+first.ID, "").Code)
		require.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/games/"+first.ID, "").Code)
		require.Equal(t, http.StatusNotFound, do(t, h, http.MethodPost, "/api/games/"+first.ID+"/move", `{"move":"aa"}`).Code)
		require.Len(t, decode[[]GameResponse](t, do(t, h, http.MethodGet, "/api/games", "")), 1)
	})

	t.Run("thinking time", func(t *testing.T) {
		require.Equal(t, defaultThinking, thinkingTime(0))
		require.Equal(t, 500*time.Millisecond, thinkingTime(500))
		require.Equal(t, maxThinking, thinkingTime(600000))
	})
}
