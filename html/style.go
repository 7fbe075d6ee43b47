package html

import (
	"github.com/rs/zerolog/log"
)

// Inline style="" values are a sequence of `key : value ;` pairs with
// whitespace tolerated anywhere. Only the handful of properties that affect
// spam visibility are interpreted; the rest is skipped.

func (hc *Content) processStyle(bl *Block, style []byte) {
	const (
		readKey = iota
		readColon
		readValue
		skipSpaces
	)
	state, nextState := skipSpaces, readKey

	var key []byte
	p, c := 0, 0
	end := len(style)

	for p <= end {
		var t byte
		if p < end {
			t = style[p]
		}
		switch state {
		case readKey:
			if p == end || t == ':' {
				key = style[c:p]
				state = skipSpaces
				nextState = readValue
			} else if isSpace(t) {
				key = style[c:p]
				state = skipSpaces
				nextState = readColon
			}
			p++

		case readColon:
			if p == end || t == ':' {
				state = skipSpaces
				nextState = readValue
			}
			p++

		case readValue:
			if p == end || t == ';' {
				if len(key) > 0 && p > c {
					hc.applyStyleProperty(bl, key, style[c:p])
				}
				key = nil
				state = skipSpaces
				nextState = readKey
			}
			p++

		case skipSpaces:
			if p < end && !isSpace(t) {
				c = p
				state = nextState
			} else {
				p++
			}
		}
	}
}

func (hc *Content) applyStyleProperty(bl *Block, key, val []byte) {
	switch {
	case asciiCaseEqual(key, "color") || asciiCaseEqual(key, "font-color"):
		parseColor(val, &bl.FontColor)
		log.Debug().Uint32("color", bl.FontColor.RGBA()).Msg("html: got color")

	case asciiCaseEqual(key, "background-color") || asciiCaseEqual(key, "background"):
		parseColor(val, &bl.BackgroundColor)
		log.Debug().Uint32("bgcolor", bl.BackgroundColor.RGBA()).Msg("html: got bgcolor")
		if bl.Tag != nil && bl.Tag.ID == tagBody {
			hc.BGColor = bl.BackgroundColor
		}

	case asciiCaseEqual(key, "display"):
		if indexCaseless(val, "none") != -1 {
			bl.Visible = false
			log.Debug().Msg("html: tag is not visible")
		}

	case asciiCaseEqual(key, "font-size"):
		processFontSize(val, &bl.FontSize, true)
		log.Debug().Uint8("size", bl.FontSize).Msg("html: got font size")

	case asciiCaseEqual(key, "opacity"):
		op, _ := parseFloatPrefix(trimASCIISpace(val))
		if op > 1 {
			op = 1
		} else if op < 0 {
			op = 0
		}
		// applies to whatever font color is current at this point of the
		// pair scan; a later color declaration resets alpha to 255
		bl.FontColor.A = uint8(op * 255.0)

	case asciiCaseEqual(key, "visibility"):
		if indexCaseless(val, "hidden") != -1 {
			bl.Visible = false
			log.Debug().Msg("html: tag is not visible")
		}
	}
}

func trimASCIISpace(b []byte) []byte {
	start := 0
	for start < len(b) && isSpace(b[start]) {
		start++
	}
	end := len(b)
	for end > start && isSpace(b[end-1]) {
		end--
	}
	return b[start:end]
}

// parseFloatPrefix reads a leading decimal number (digits with an optional
// fraction) and returns the value and the number of bytes consumed.
func parseFloatPrefix(b []byte) (float64, int) {
	i := 0
	var intPart float64
	for i < len(b) && isDigit(b[i]) {
		intPart = intPart*10 + float64(b[i]-'0')
		i++
	}
	if i < len(b) && b[i] == '.' {
		j := i + 1
		frac, scale := 0.0, 1.0
		for j < len(b) && isDigit(b[j]) {
			frac = frac*10 + float64(b[j]-'0')
			scale *= 10
			j++
		}
		if j > i+1 {
			return intPart + frac/scale, j
		}
	}
	return intPart, i
}

// applyCSSSize converts a size suffix into pixels, truncating the way the
// scoring pipeline always has: em/rem are 16px, ex 8px, vw/vmax 8px per
// percent, vh/vmin 6px per percent.
func applyCSSSize(suffix []byte, sz *float64) bool {
	trunc := func(v float64) float64 { return float64(uint32(v)) }
	if len(suffix) >= 2 {
		switch {
		case hasASCIIPrefix(suffix, "px"):
			*sz = trunc(*sz)
		case hasASCIIPrefix(suffix, "rem"), hasASCIIPrefix(suffix, "em"):
			*sz = trunc(*sz * 16.0)
		case hasASCIIPrefix(suffix, "ex"):
			*sz = trunc(*sz * 8.0)
		case hasASCIIPrefix(suffix, "vmax"), hasASCIIPrefix(suffix, "vw"):
			*sz = trunc(*sz * 8.0)
		case hasASCIIPrefix(suffix, "vmin"), hasASCIIPrefix(suffix, "vh"):
			*sz = trunc(*sz * 6.0)
		case hasASCIIPrefix(suffix, "pt"):
			*sz = trunc(*sz * 96.0 / 72.0)
		case hasASCIIPrefix(suffix, "cm"):
			*sz = trunc(*sz * 96.0 / 2.54)
		case hasASCIIPrefix(suffix, "mm"):
			*sz = trunc(*sz * 9.6 / 2.54)
		case hasASCIIPrefix(suffix, "in"):
			*sz = trunc(*sz * 96.0)
		case hasASCIIPrefix(suffix, "pc"):
			*sz = trunc(*sz * 96.0 / 6.0)
		default:
			return false
		}
		return true
	}
	if suffix[0] == '%' {
		*sz = trunc(*sz / 100.0 * 16.0)
		return true
	}
	return false
}

func hasASCIIPrefix(b []byte, lit string) bool {
	if len(b) < len(lit) {
		return false
	}
	return asciiCaseEqual(b[:len(lit)], lit)
}

// processFontSize parses a font-size value into pixels, clamped to 32. In
// CSS mode unconvertible values collapse to 0 (below one) or the browser
// default of 16; legacy size= attributes scale naked numbers by 16.
func processFontSize(line []byte, fs *uint8, isCSS bool) {
	p := 0
	for p < len(line) && isSpace(line[p]) {
		p++
	}
	rest := line[p:]

	var sz float64
	failsafe := false
	var suffix []byte

	if len(rest) > 0 && isDigit(rest[0]) {
		v, n := parseFloatPrefix(rest)
		sz = v
		suffix = trimASCIISpace(rest[n:])
	} else {
		failsafe = true
		if isCSS {
			sz = 16
		} else {
			sz = 1
		}
	}

	if len(suffix) > 0 {
		if !applyCSSSize(suffix, &sz) {
			failsafe = true
		}
	} else if !failsafe {
		// a naked number
		failsafe = true
	}

	if failsafe {
		if isCSS {
			if sz < 1 {
				sz = 0
			} else {
				sz = 16
			}
		} else {
			if sz >= 1 {
				sz = sz * 16
			} else {
				sz = 16
			}
		}
	}

	if sz > 32 {
		sz = 32
	}
	*fs = uint8(sz)
}
