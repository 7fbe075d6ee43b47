package html

import (
	"github.com/smarsching/rspamd/css"
)

// Color is a 32-bit RGBA value with a validity flag; blocks whose color was
// never set stay invalid until propagation fills them in.
type Color struct {
	R, G, B, A uint8
	Valid      bool
}

// RGBA packs the color as 0xRRGGBBAA.
func (c Color) RGBA() uint32 {
	return uint32(c.R)<<24 | uint32(c.G)<<16 | uint32(c.B)<<8 | uint32(c.A)
}

func fromHexDigit(b byte) (uint8, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	}
	return 0, false
}

// parseColor fills cl from an attribute or CSS value: #rgb and #rrggbb hex,
// rgb()/rgba() with integer components, then named colors via the CSS
// collaborator. Invalid input leaves cl zeroed and not valid.
func parseColor(line []byte, cl *Color) {
	*cl = Color{}

	p := 0
	end := len(line)
	for p < end && isSpace(line[p]) {
		p++
	}
	for end > p && isSpace(line[end-1]) {
		end--
	}
	if p >= end {
		return
	}
	s := line[p:end]

	if s[0] == '#' {
		var digits []uint8
		for i := 1; i < len(s) && len(digits) < 6; i++ {
			d, ok := fromHexDigit(s[i])
			if !ok {
				break
			}
			digits = append(digits, d)
		}
		switch len(digits) {
		case 3:
			cl.R = digits[0]<<4 | digits[0]
			cl.G = digits[1]<<4 | digits[1]
			cl.B = digits[2]<<4 | digits[2]
		case 6:
			cl.R = digits[0]<<4 | digits[1]
			cl.G = digits[2]<<4 | digits[3]
			cl.B = digits[4]<<4 | digits[5]
		default:
			// short hex runs collapse into the numeric value, matching the
			// permissive strtoul behavior of legacy clients
			var v uint32
			for _, d := range digits {
				v = v<<4 | uint32(d)
			}
			cl.R = uint8(v >> 16)
			cl.G = uint8(v >> 8)
			cl.B = uint8(v)
		}
		cl.A = 255
		cl.Valid = true
		return
	}

	if len(s) > 4 && asciiCaseEqual(s[:3], "rgb") {
		parseRGBFunctional(s[3:], cl)
		return
	}

	if c, ok := css.MaybeColorFromString(string(s)); ok {
		cl.R, cl.G, cl.B = c.R, c.G, c.B
		cl.A = 255
		cl.Valid = true
	}
}

// parseRGBFunctional consumes the remainder of an rgb(/rgba( expression
// using the same forgiving state machine as the attribute lexer: integer
// components, whitespace tolerated before and after the opening parenthesis
// and after each comma. Whitespace before a comma or the closing parenthesis
// ends the scan.
func parseRGBFunctional(s []byte, cl *Color) {
	const (
		obrace = iota
		num1
		num2
		num3
		num4
		skipSpaces
	)
	state, nextState := skipSpaces, obrace
	var r, g, b uint64
	opacity := uint64(255)
	valid := false

	p := 0
	if p < len(s) && (s[p] == 'a' || s[p] == 'A') {
		p++
	}
	c := p

loop:
	for p < len(s) {
		t := s[p]
		switch state {
		case obrace:
			if t == '(' {
				p++
				state = skipSpaces
				nextState = num1
			} else if isSpace(t) {
				state = skipSpaces
				nextState = obrace
			} else {
				break loop
			}
		case num1:
			if t == ',' {
				v, ok := strtoulPrefix(s[c:p])
				if !ok {
					break loop
				}
				r = v
				p++
				state = skipSpaces
				nextState = num2
			} else if !isDigit(t) {
				break loop
			} else {
				p++
			}
		case num2:
			if t == ',' {
				v, ok := strtoulPrefix(s[c:p])
				if !ok {
					break loop
				}
				g = v
				p++
				state = skipSpaces
				nextState = num3
			} else if !isDigit(t) {
				break loop
			} else {
				p++
			}
		case num3:
			if t == ',' || t == ')' {
				v, ok := strtoulPrefix(s[c:p])
				if !ok {
					break loop
				}
				b = v
				valid = true
				if t == ')' {
					break loop
				}
				p++
				state = skipSpaces
				nextState = num4
			} else if !isDigit(t) {
				break loop
			} else {
				p++
			}
		case num4:
			if t == ',' || t == ')' {
				v, ok := strtoulPrefix(s[c:p])
				if !ok {
					break loop
				}
				opacity = v
				valid = true
				break loop
			} else if !isDigit(t) {
				break loop
			} else {
				p++
			}
		case skipSpaces:
			if !isSpace(t) {
				c = p
				state = nextState
			} else {
				p++
			}
		}
	}

	if valid {
		cl.R = uint8(r)
		cl.G = uint8(g)
		cl.B = uint8(b)
		cl.A = uint8(opacity)
		cl.Valid = true
	}
}
