package telegram

import (
	"strings"
	"unicode/utf8"
)

// SplitMessage breaks text at line boundaries into parts of at most limit UTF-16 code
// units, which is how Telegram measures messages. A line longer than limit is cut
// between HTML tags and entities; tags still open at a cut are closed at the end of
// the part and reopened at the start of the next.
func SplitMessage(text string, limit int) []string {
	if limit <= 0 || utf16Len(text) <= limit {
		return []string{text}
	}

	var (
		parts   []string
		current strings.Builder
		size    int
	)
	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			parts = append(parts, s)
		}
		current.Reset()
		size = 0
	}

	for _, line := range strings.Split(text, "\n") {
		n := utf16Len(line)
		if n > limit {
			flush()
			parts = append(parts, splitLine(line, limit)...)
			continue
		}
		if size+n+1 > limit {
			flush()
		}
		current.WriteString(line)
		current.WriteByte('\n')
		size += n + 1
	}
	flush()
	return parts
}

type htmlToken struct {
	text  string
	units int
	// name is set for tags; closing marks "</name>".
	name    string
	closing bool
}

type openTag struct {
	name string
	tag  string
}

func splitLine(line string, limit int) []string {
	var (
		parts []string
		cur   strings.Builder
		size  int
		base  int
		open  []openTag
	)
	closers := func() string {
		var b strings.Builder
		for i := len(open) - 1; i >= 0; i-- {
			b.WriteString("</" + open[i].name + ">")
		}
		return b.String()
	}

	for _, tok := range tokenize(line) {
		if !tok.closing {
			reserve := utf16Len(closers())
			if tok.name != "" {
				reserve += len(tok.name) + 3
			}
			if size > base && size+tok.units+reserve > limit {
				parts = append(parts, cur.String()+closers())
				cur.Reset()
				size = 0
				for _, o := range open {
					cur.WriteString(o.tag)
					size += utf16Len(o.tag)
				}
				base = size
			}
		}

		cur.WriteString(tok.text)
		size += tok.units

		switch {
		case tok.name == "":
		case tok.closing:
			for i := len(open) - 1; i >= 0; i-- {
				if open[i].name == tok.name {
					open = append(open[:i], open[i+1:]...)
					break
				}
			}
		default:
			open = append(open, openTag{name: tok.name, tag: tok.text})
		}
	}
	if size > base {
		parts = append(parts, cur.String()+closers())
	}
	return parts
}

// tokenize splits s into tags, entities and single characters.
func tokenize(s string) []htmlToken {
	var tokens []htmlToken
	for i := 0; i < len(s); {
		switch s[i] {
		case '<':
			if j := strings.IndexByte(s[i:], '>'); j > 0 {
				tok := htmlToken{text: s[i : i+j+1]}
				tok.units = utf16Len(tok.text)
				tok.name, tok.closing = tagName(tok.text)
				tokens = append(tokens, tok)
				i += j + 1
				continue
			}
		case '&':
			if j := strings.IndexByte(s[i:], ';'); j > 1 && j <= 10 && !strings.ContainsAny(s[i+1:i+j], " &<") {
				tokens = append(tokens, htmlToken{text: s[i : i+j+1], units: j + 1})
				i += j + 1
				continue
			}
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		tokens = append(tokens, htmlToken{text: s[i : i+size], units: runeUnits(r)})
		i += size
	}
	return tokens
}

// tagName returns the lower-case element name of tag. Self-closing tags have no name.
func tagName(tag string) (string, bool) {
	if strings.HasSuffix(tag, "/>") {
		return "", false
	}
	inner := strings.TrimSuffix(strings.TrimPrefix(tag, "<"), ">")
	closing := strings.HasPrefix(inner, "/")
	inner = strings.TrimPrefix(inner, "/")
	if i := strings.IndexAny(inner, " \t"); i >= 0 {
		inner = inner[:i]
	}
	return strings.ToLower(inner), closing
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += runeUnits(r)
	}
	return n
}

func runeUnits(r rune) int {
	if r >= 0x10000 {
		return 2
	}
	return 1
}
