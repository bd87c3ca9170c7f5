package chess

import "strings"

// Diagram draws the board with White at the bottom, rank numbers on the
// right and file letters below.
func (c *Chess) Diagram() string {
	var sb strings.Builder
	separator := strings.Repeat("+---", 8) + "+\n"
	for y := 7; y >= 0; y-- {
		sb.WriteString(separator)
		for x := 0; x < 8; x++ {
			sb.WriteString("| ")
			if p, ok := c.PositionAt(x, y); ok {
				sb.WriteByte(p.Char())
			} else {
				sb.WriteByte(' ')
			}
			sb.WriteByte(' ')
		}
		sb.WriteString("| ")
		sb.WriteByte(byte('1' + y))
		sb.WriteByte('\n')
	}
	sb.WriteString(separator)
	for x := 0; x < 8; x++ {
		sb.WriteString("  ")
		sb.WriteByte(letters[x])
		sb.WriteByte(' ')
	}
	sb.WriteByte('\n')
	return sb.String()
}
