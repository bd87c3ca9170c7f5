package game

import (
	"math"
	"sort"

	"golang.org/x/exp/rand"
)

// FilterValid is the default implementation of Game.ValidMoves.
func FilterValid(g Game) []MoveValue {
	all := g.AllMoves()
	valid := make([]MoveValue, 0, len(all))
	for _, mv := range all {
		if g.IsValid(mv.Move) {
			valid = append(valid, mv)
		}
	}
	return valid
}

// ScoreValid is the default implementation of Game.ValidMovesWithScore.
func ScoreValid(g Game) []MoveValue {
	valid := g.ValidMoves()
	scored := make([]MoveValue, len(valid))
	for i, mv := range valid {
		scored[i] = MoveValue{Move: mv.Move, Value: ScoreAfter(g, mv.Move)}
	}
	return scored
}

// ScoreAfter returns the score of g after executing move on a clone.
// g itself is not modified.
func ScoreAfter(g Game, move string) float64 {
	local := g.Clone()
	local.Move(move)
	return local.Score()
}

func Contains(moves []MoveValue, move string) bool {
	for _, mv := range moves {
		if mv.Move == move {
			return true
		}
	}
	return false
}

// Moves returns only the move strings.
func Moves(moves []MoveValue) []string {
	result := make([]string, len(moves))
	for i, mv := range moves {
		result[i] = mv.Move
	}
	return result
}

// Sort orders moves by value, highest first if descending. The sort is
// stable so equal values keep their generation order.
func Sort(moves []MoveValue, descending bool) {
	sort.SliceStable(moves, func(i, j int) bool {
		if descending {
			return moves[i].Value > moves[j].Value
		}
		return moves[i].Value < moves[j].Value
	})
}

// PickWeighted draws a move with probability proportional to its value.
// Values are shifted so that the smallest weight is zero, a +Inf value is
// returned immediately and -Inf values are never picked.
// Returns false if there is no move to pick.
func PickWeighted(r *rand.Rand, moves []MoveValue) (string, bool) {
	if len(moves) == 0 {
		return "", false
	}

	total := 0.0
	minValue := 0.0
	finite := 0
	for _, mv := range moves {
		if math.IsInf(mv.Value, 1) {
			return mv.Move, true
		}
		if math.IsInf(mv.Value, -1) {
			continue
		}
		total += mv.Value
		minValue = math.Min(minValue, mv.Value)
		finite++
	}

	if finite == 0 {
		return "", false
	}

	offset := -minValue
	total += offset * float64(finite)
	if total <= 0 {
		// All remaining weights are equal
		nth := r.Intn(finite)
		for _, mv := range moves {
			if math.IsInf(mv.Value, -1) {
				continue
			}
			if nth == 0 {
				return mv.Move, true
			}
			nth--
		}
		return moves[0].Move, true
	}

	sampled := r.Float64() * total
	cumulative := 0.0
	for _, mv := range moves {
		if math.IsInf(mv.Value, -1) {
			continue
		}
		cumulative += mv.Value + offset
		if sampled <= cumulative {
			return mv.Move, true
		}
	}
	return moves[0].Move, true // Fallback in case of rounding errors
}

// PickBest returns one of the moves with the highest value, chosen uniformly
// at random among ties.
func PickBest(r *rand.Rand, moves []MoveValue) (string, bool) {
	if len(moves) == 0 {
		return "", false
	}

	maxValue := math.Inf(-1)
	var best []string
	for _, mv := range moves {
		if mv.Value > maxValue {
			maxValue = mv.Value
			best = best[:0]
		}
		if mv.Value == maxValue {
			best = append(best, mv.Move)
		}
	}
	if len(best) == 0 {
		return moves[r.Intn(len(moves))].Move, true
	}
	return best[r.Intn(len(best))], true
}
