package engine

import (
	"fmt"
	"io"

	"multigame/game"

	"github.com/muesli/termenv"
)

// Console prints the progress of a game. A nil Console prints nothing.
type Console struct {
	out *termenv.Output
}

// NewConsole detects the color support of w.
func NewConsole(w io.Writer) *Console {
	return &Console{out: termenv.NewOutput(w)}
}

// NewPlainConsole never prints colors.
func NewPlainConsole(w io.Writer) *Console {
	return &Console{out: termenv.NewOutput(w, termenv.WithProfile(termenv.Ascii))}
}

func (c *Console) sideColor(side game.Side, s string) string {
	style := c.out.String(s).Bold()
	switch side {
	case game.White:
		style = style.Foreground(c.out.Color("15"))
	case game.Black:
		style = style.Foreground(c.out.Color("9"))
	}
	return style.String()
}

func (c *Console) Start(name string, g game.Game) {
	if c == nil {
		return
	}
	fmt.Fprintf(c.out, "%s\n%s\n", c.out.String(name).Underline().String(), g.Diagram())
}

func (c *Console) Move(turn int, side game.Side, move string, g game.Game) {
	if c == nil {
		return
	}
	fmt.Fprintf(c.out, "%d. %s %s\n%s\n", turn, c.sideColor(side, side.String()), move, g.Diagram())
}

func (c *Console) Result(g game.Game) {
	if c == nil {
		return
	}
	if !g.IsFinished() {
		fmt.Fprintln(c.out, c.out.String("No result").Faint().String())
		return
	}
	winner := g.Winner()
	if winner == game.None {
		fmt.Fprintln(c.out, c.out.String("Draw").Bold().String())
		return
	}
	fmt.Fprintf(c.out, "%s wins\n", c.sideColor(winner, winner.String()))
}
