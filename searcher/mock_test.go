package searcher

import (
	"strings"

	"multigame/game"
)

// mockNode is a state of a hand-built game tree. Moves without a child lead
// to a finished draw.
type mockNode struct {
	side     game.Side
	moves    []game.MoveValue
	invalid  map[string]bool
	children map[string]*mockNode
	score    float64
	finished bool
	winner   game.Side
}

type mockGame struct {
	root   *mockNode
	node   *mockNode
	played []string
}

func newMockGame(root *mockNode) *mockGame {
	return &mockGame{root: root, node: root}
}

func (m *mockGame) SetStartPosition() {
	m.node = m.root
	m.played = nil
}

func (m *mockGame) SetState(state string) error {
	m.SetStartPosition()
	for _, move := range strings.Fields(state) {
		m.Move(move)
	}
	return nil
}

func (m *mockGame) State() string {
	return strings.Join(m.played, " ")
}

func (m *mockGame) PositionState() string {
	return m.State()
}

func (m *mockGame) Diagram() string {
	return m.State()
}

func (m *mockGame) SideToMove() game.Side {
	return m.node.side
}

func (m *mockGame) Score() float64 {
	return m.node.score
}

func (m *mockGame) Move(move string) {
	child, ok := m.node.children[move]
	if !ok {
		child = &mockNode{finished: true}
	}
	m.node = child
	m.played = append(m.played, move)
}

func (m *mockGame) AllMoves() []game.MoveValue {
	if m.node.finished {
		return nil
	}
	return append([]game.MoveValue(nil), m.node.moves...)
}

func (m *mockGame) IsValid(move string) bool {
	return !m.node.invalid[move]
}

func (m *mockGame) ValidMoves() []game.MoveValue {
	return game.FilterValid(m)
}

func (m *mockGame) ValidMovesWithScore() []game.MoveValue {
	return game.ScoreValid(m)
}

func (m *mockGame) IsFinished() bool {
	return m.node.finished || len(m.ValidMoves()) == 0
}

func (m *mockGame) Winner() game.Side {
	return m.node.winner
}

func (m *mockGame) Clone() game.Game {
	return &mockGame{
		root:   m.root,
		node:   m.node,
		played: append([]string(nil), m.played...),
	}
}

func leaf(score float64) *mockNode {
	return &mockNode{finished: true, score: score}
}

func won(side game.Side) *mockNode {
	return &mockNode{finished: true, winner: side}
}

// coin is a node where side picks between a win for White and a win for
// Black, weighted white:black.
func coin(side game.Side, white, black float64) *mockNode {
	return &mockNode{
		side:  side,
		moves: []game.MoveValue{{Move: "w", Value: white}, {Move: "b", Value: black}},
		children: map[string]*mockNode{
			"w": won(game.White),
			"b": won(game.Black),
		},
	}
}

// scoredMoves builds a node whose children are leaves with the given scores.
func scoredMoves(side game.Side, moves ...game.MoveValue) *mockNode {
	node := &mockNode{side: side, children: map[string]*mockNode{}}
	for _, mv := range moves {
		node.moves = append(node.moves, game.MoveValue{Move: mv.Move, Value: 1})
		node.children[mv.Move] = leaf(mv.Value)
	}
	return node
}

type mockTable struct {
	move  string
	calls int
}

func (m *mockTable) BestMove(g game.Game) (string, bool) {
	m.calls++
	return m.move, m.move != ""
}
