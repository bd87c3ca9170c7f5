// Package uci implements a line based control protocol in the style of the
// universal chess interface, extended for other games.
package uci

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"multigame/calculation"
	"multigame/game"
	"multigame/meta"
	"multigame/searcher"

	"github.com/rs/zerolog/log"
)

// EngineFactory creates the engine, including its game, for a game name.
type EngineFactory func(name string) (searcher.Engine, error)

// Protocol reads commands from in and writes the answers to out.
// A "go" search runs in the background and reports "bestmove" when done;
// every command that reads or changes the game stops it first.
type Protocol struct {
	in      io.Reader
	out     io.Writer
	outMu   sync.Mutex
	factory EngineFactory
	engine  searcher.Engine

	search calculation.Calculation[string]
	done   chan struct{}
}

func New(in io.Reader, out io.Writer, factory EngineFactory, name string) (*Protocol, error) {
	engine, err := factory(name)
	if err != nil {
		return nil, err
	}
	return &Protocol{in: in, out: out, factory: factory, engine: engine}, nil
}

// Run executes commands until "quit", the end of the input or ctx is done.
func (p *Protocol) Run(ctx context.Context) error {
	defer p.stopSearch()

	scanner := bufio.NewScanner(p.in)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		args := strings.Fields(scanner.Text())
		if len(args) == 0 {
			continue
		}
		if args[0] == "quit" {
			return nil
		}
		p.execute(args)
	}
	return scanner.Err()
}

func (p *Protocol) execute(args []string) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Msgf("command %v failed: %v", args, r)
			p.println("info string error %v", r)
		}
	}()

	switch args[0] {
	case "uci":
		p.println("id name multigame")
		p.println("id author multigame authors")
		p.println("uciok")
	case "isready":
		p.println("readyok")
	case "stop":
		p.stopSearch()
	case "ucinewgame":
		p.stopSearch()
		p.engine.Game().SetStartPosition()
	case "game":
		p.executeGame(args)
	case "position":
		p.executePosition(args)
	case "go":
		p.executeGo(args)
	case "move":
		p.executeMove(args)
	case "validmoves":
		p.stopSearch()
		p.println("validmoves %s", strings.Join(game.Moves(p.engine.Game().ValidMoves()), " "))
	case "finished":
		p.stopSearch()
		p.println("finished %t", p.engine.Game().IsFinished())
	case "winner":
		p.stopSearch()
		p.println("winner %s", p.engine.Game().Winner())
	case "d", "diagram":
		p.stopSearch()
		p.println("%s", p.engine.Game().Diagram())
		p.println("FEN %s", p.engine.Game().State())
	default:
		p.println("Unknown command: %s", strings.Join(args, " "))
	}
}

func (p *Protocol) println(format string, args ...any) {
	p.outMu.Lock()
	defer p.outMu.Unlock()
	fmt.Fprintf(p.out, format+"\n", args...)
}

func (p *Protocol) executeGame(args []string) {
	if len(args) < 2 {
		p.println("info string missing game name")
		return
	}
	engine, err := p.factory(args[1])
	if err != nil {
		p.println("info string %v", err)
		return
	}
	p.stopSearch()
	p.engine = engine
}

// executePosition handles "position startpos|fen <state...> [moves ...]".
// The state is validated on a clone before it replaces the current game.
func (p *Protocol) executePosition(args []string) {
	p.stopSearch()
	g := p.engine.Game().Clone()

	i := 1
	for i < len(args) {
		switch args[i] {
		case "startpos":
			g.SetStartPosition()
			i++
		case "fen":
			j := i + 1
			for j < len(args) && args[j] != "moves" {
				j++
			}
			if err := g.SetState(strings.Join(args[i+1:j], " ")); err != nil {
				p.println("info string %v", err)
				return
			}
			i = j
		case "moves":
			for _, move := range args[i+1:] {
				if !game.Contains(g.ValidMoves(), move) {
					p.println("info string invalid move %s", move)
					return
				}
				g.Move(move)
			}
			i = len(args)
		default:
			p.println("Unknown position option: %s", args[i])
			i++
		}
	}

	if err := p.engine.Game().SetState(g.State()); err != nil {
		p.println("info string %v", err)
	}
}

func (p *Protocol) executeMove(args []string) {
	p.stopSearch()
	if len(args) < 2 {
		p.println("info string missing move")
		return
	}
	g := p.engine.Game()
	if !game.Contains(g.ValidMoves(), args[1]) {
		p.println("info string invalid move %s", args[1])
		return
	}
	g.Move(args[1])
}

func (p *Protocol) executeGo(args []string) {
	p.stopSearch()
	g := p.engine.Game()
	if g.IsFinished() {
		p.println("bestmove (none)")
		return
	}

	thinking := ThinkingTime(args[1:], g.SideToMove())
	log.Debug().Msgf("thinking %v", thinking)
	search := p.engine.BestMoveWithin(thinking)
	done := make(chan struct{})
	p.search = search
	p.done = done

	go func() {
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				log.Error().Msgf("search failed: %v", r)
				p.println("bestmove (none)")
			}
		}()

		move := search.Get()
		if move == "" || !game.Contains(g.ValidMoves(), move) {
			p.println("bestmove (none)")
			return
		}
		g.Move(move)
		p.println("bestmove %s", move)
	}()
}

// stopSearch stops a running search and waits until its best move has been
// reported and played.
func (p *Protocol) stopSearch() {
	if p.search == nil {
		return
	}
	p.search.Stop()
	<-p.done
	p.search = nil
	p.done = nil
}

// Wait blocks until a running search is done without stopping it.
func (p *Protocol) Wait() {
	if p.done != nil {
		<-p.done
	}
}

// ThinkingTime computes the search budget of a "go" command. An explicit
// movetime keeps a reserve, depth allows 100ms per ply and a clock is split
// over the remaining moves.
func ThinkingTime(args []string, side game.Side) time.Duration {
	whiteTime, blackTime, moveTime := -1, -1, -1
	movesToGo := -1

	next := func(i *int) int {
		*i++
		if *i >= len(args) {
			return -1
		}
		value, err := strconv.Atoi(args[*i])
		if err != nil {
			return -1
		}
		return value
	}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "wtime":
			whiteTime = next(&i)
		case "btime":
			blackTime = next(&i)
		case "movestogo":
			movesToGo = next(&i)
		case "movetime":
			if ms := next(&i); ms >= 0 {
				moveTime = max(0, ms-int(meta.MOVE_TIME_RESERVE.Milliseconds()))
			}
		case "depth":
			if depth := next(&i); depth >= 0 {
				moveTime = depth * 100
			}
		case "infinite", "infinity":
			moveTime = math.MaxInt32
		}
	}

	if moveTime >= 0 {
		return time.Duration(moveTime) * time.Millisecond
	}

	if whiteTime >= 0 && blackTime >= 0 {
		clock := blackTime
		if side == game.White {
			clock = whiteTime
		}
		if movesToGo <= 0 {
			movesToGo = meta.MOVES_TO_GO
		}
		ms := (float64(clock) / 2) / (float64(movesToGo) / 4)
		return time.Duration(ms) * time.Millisecond
	}
	return meta.MOVE_TIME
}
