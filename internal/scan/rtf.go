package scan

import (
	"strconv"
	"strings"
)

// rtfToText converts an RTF fragment to plain text: control words are
// dropped (with \par and friends mapped to newlines), groups that only
// carry metadata (fonts, colors, stylesheets, info) are skipped entirely,
// and escaped characters are decoded. Good enough for title extraction;
// this is not a general RTF reader.
func rtfToText(rtf string) string {
	var b strings.Builder
	skipGroupDepth := 0 // depth at which a destination group started, 0 = none
	depth := 0

	i := 0
	for i < len(rtf) {
		c := rtf[i]
		switch c {
		case '{':
			depth++
			i++
			// Destination groups: {\*\...} and known metadata groups.
			if rest := rtf[i:]; skipGroupDepth == 0 && isDestinationGroup(rest) {
				skipGroupDepth = depth
			}
		case '}':
			if skipGroupDepth == depth {
				skipGroupDepth = 0
			}
			depth--
			i++
		case '\\':
			word, arg, consumed := readControl(rtf[i:])
			i += consumed
			if skipGroupDepth != 0 {
				continue
			}
			switch word {
			case "par", "line", "row":
				b.WriteByte('\n')
			case "tab", "cell":
				b.WriteByte('|')
			case "'": // \'hh escaped byte, treated as latin-1
				if v, err := strconv.ParseUint(arg, 16, 8); err == nil {
					b.WriteRune(rune(v))
				}
			case "u": // \uN unicode escape, N is a signed decimal
				if v, err := strconv.Atoi(arg); err == nil {
					if v < 0 {
						v += 65536
					}
					b.WriteRune(rune(v))
					// A substitution character may follow; drop it.
					if i < len(rtf) && rtf[i] != '\\' && rtf[i] != '{' && rtf[i] != '}' {
						i++
					}
				}
			case "\\", "{", "}":
				b.WriteString(word)
			}
		default:
			if skipGroupDepth == 0 && c != '\r' && c != '\n' {
				b.WriteByte(c)
			}
			i++
		}
	}
	return b.String()
}

// isDestinationGroup reports whether the group starting after '{' carries
// only metadata and should be skipped wholesale.
func isDestinationGroup(rest string) bool {
	if strings.HasPrefix(rest, `\*`) {
		return true
	}
	for _, dest := range []string{`\fonttbl`, `\colortbl`, `\stylesheet`, `\info`, `\pict`, `\header`, `\footer`} {
		if strings.HasPrefix(rest, dest) {
			return true
		}
	}
	return false
}

// readControl parses a control word or symbol starting at s[0] == '\\'.
// It returns the word, its argument (hex digits for \' or a decimal
// parameter) and the number of bytes consumed.
func readControl(s string) (word, arg string, consumed int) {
	if len(s) < 2 {
		return "", "", len(s)
	}
	c := s[1]

	// Control symbols.
	if !isAlpha(c) {
		if c == '\'' && len(s) >= 4 {
			return "'", s[2:4], 4
		}
		return string(c), "", 2
	}

	// Control word: letters, then an optional signed decimal parameter,
	// then an optional single space delimiter.
	i := 1
	for i < len(s) && isAlpha(s[i]) {
		i++
	}
	word = s[1:i]
	start := i
	if i < len(s) && (s[i] == '-' || isDigit(s[i])) {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
		}
		arg = s[start:i]
	}
	if i < len(s) && s[i] == ' ' {
		i++
	}
	return word, arg, i
}

func isAlpha(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }
