package parser

import "strconv"

// cursor walks a line left to right. Every method either consumes input and
// reports true, or leaves the position untouched and reports false.
type cursor struct {
	src string
	pos int
}

func (c *cursor) eof() bool { return c.pos >= len(c.src) }

func (c *cursor) rest() string { return c.src[c.pos:] }

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// byteLit consumes exactly b.
func (c *cursor) byteLit(b byte) bool {
	if c.eof() || c.src[c.pos] != b {
		return false
	}
	c.pos++
	return true
}

// spaces consumes one or more whitespace bytes.
func (c *cursor) spaces() bool {
	start := c.pos
	for !c.eof() && isSpace(c.src[c.pos]) {
		c.pos++
	}
	return c.pos > start
}

// digits consumes a run of decimal digits. n > 0 demands exactly n digits.
func (c *cursor) digits(n int) (string, bool) {
	start := c.pos
	end := start
	for end < len(c.src) && isDigit(c.src[end]) {
		if n > 0 && end-start == n {
			break
		}
		end++
	}
	if end == start || (n > 0 && end-start != n) {
		return "", false
	}
	c.pos = end
	return c.src[start:end], true
}

// fixed consumes exactly n digits and returns their value.
func (c *cursor) fixed(n int) (int, bool) {
	start := c.pos
	s, ok := c.digits(n)
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		c.pos = start
		return 0, false
	}
	return v, true
}

// uint consumes an unsigned decimal that fits in bits.
func (c *cursor) uint(bits int) (uint64, bool) {
	start := c.pos
	s, ok := c.digits(0)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseUint(s, 10, bits)
	if err != nil {
		c.pos = start
		return 0, false
	}
	return v, true
}

// token consumes a non-empty run of non-whitespace bytes.
func (c *cursor) token() (string, bool) {
	start := c.pos
	for !c.eof() && !isSpace(c.src[c.pos]) {
		c.pos++
	}
	if c.pos == start {
		return "", false
	}
	return c.src[start:c.pos], true
}
