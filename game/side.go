package game

// Side is the owner of a piece or the side to move.
type Side int

const (
	None Side = iota
	White
	Black
)

// Other returns the opponent side; None stays None.
func (s Side) Other() Side {
	switch s {
	case White:
		return Black
	case Black:
		return White
	default:
		return None
	}
}

func (s Side) String() string {
	switch s {
	case White:
		return "White"
	case Black:
		return "Black"
	default:
		return "None"
	}
}
