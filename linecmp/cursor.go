package linecmp

// cursor is a forward-only position in a line.
type cursor struct {
	line []byte
	pos  int
}

func (c *cursor) atLineEnd() bool {
	return c.pos >= len(c.line)
}

func (c *cursor) atFieldEnd() bool {
	return c.pos >= len(c.line) || c.line[c.pos] == tab
}

func (c *cursor) at(b byte) bool {
	return c.pos < len(c.line) && c.line[c.pos] == b
}

func (c *cursor) skip(b byte) {
	for c.at(b) {
		c.pos++
	}
}

// digits counts the ASCII digits starting at the cursor without moving it.
func (c *cursor) digits() int {
	n := 0
	for c.pos+n < len(c.line) && isDigit(c.line[c.pos+n]) {
		n++
	}
	return n
}

func isDigit(b byte) bool {
	return '0' <= b && b <= '9'
}
