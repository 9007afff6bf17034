package mapper

import (
	"regexp"
	"strings"
)

var andSeparator = regexp.MustCompile(`\s+and\s+`)

// splitNames splits a joined list such as "Fe and Co, Ni" on commas and the
// word "and", trimming each element and dropping empty ones.
func splitNames(s string) []string {
	s = andSeparator.ReplaceAllString(s, ",")
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseListLiteral parses a bracketed list literal with single or double
// quoted elements, e.g. ['Cu', "Zn"]. Unquoted elements are kept as written
// unless they are None or null. ok is false for anything that is not a
// well-formed list literal.
func parseListLiteral(s string) (items []string, ok bool) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return nil, false
	}

	p := &literalScanner{src: s[1 : len(s)-1]}
	items = []string{}
	p.skipSpace()
	if p.done() {
		return items, true
	}
	for {
		p.skipSpace()
		item, quoted, ok := p.element()
		if !ok {
			return nil, false
		}
		if quoted || (item != "None" && item != "null") {
			items = append(items, item)
		}
		p.skipSpace()
		if p.done() {
			return items, true
		}
		if p.src[p.pos] != ',' {
			return nil, false
		}
		p.pos++
		p.skipSpace()
		if p.done() {
			// trailing comma
			return items, true
		}
	}
}

type literalScanner struct {
	src string
	pos int
}

func (p *literalScanner) done() bool { return p.pos >= len(p.src) }

func (p *literalScanner) skipSpace() {
	for !p.done() && strings.ContainsRune(" \t\r\n", rune(p.src[p.pos])) {
		p.pos++
	}
}

func (p *literalScanner) element() (string, bool, bool) {
	if p.done() {
		return "", false, false
	}
	switch q := p.src[p.pos]; q {
	case '\'', '"':
		p.pos++
		var b strings.Builder
		for !p.done() {
			c := p.src[p.pos]
			switch {
			case c == '\\' && p.pos+1 < len(p.src):
				b.WriteByte(p.src[p.pos+1])
				p.pos += 2
			case c == q:
				p.pos++
				return b.String(), true, true
			default:
				b.WriteByte(c)
				p.pos++
			}
		}
		return "", false, false
	case '[', ']', '{', '}', ',':
		return "", false, false
	default:
		start := p.pos
		for !p.done() && p.src[p.pos] != ',' {
			if strings.ContainsRune("[]{}'\"", rune(p.src[p.pos])) {
				return "", false, false
			}
			p.pos++
		}
		return strings.TrimSpace(p.src[start:p.pos]), false, true
	}
}
