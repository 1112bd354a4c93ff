package htmllabel

import (
	"fmt"
	"strconv"
	"strings"
)

type tokKind int

const (
	tokEOF tokKind = iota
	tokText
	tokOpen
	tokClose
	tokError
)

type tag struct {
	kind      tokKind
	name      string
	text      string
	attrs     map[string]string // keys upper-cased
	selfClose bool
}

func (t tag) String() string {
	switch t.kind {
	case tokEOF:
		return "end of label"
	case tokText:
		return fmt.Sprintf("text %q", t.text)
	case tokClose:
		return fmt.Sprintf("</%s>", t.name)
	default:
		return fmt.Sprintf("<%s>", t.name)
	}
}

// lexer splits a label body into character data and tags, resolving
// character entities in data and in attribute values.
type lexer struct {
	src    string
	pos    int
	line   int
	peeked *tag
}

func newLexer(src string) *lexer {
	return &lexer{src: src, line: 1}
}

func (lx *lexer) peek() tag {
	if lx.peeked == nil {
		t := lx.next()
		lx.peeked = &t
	}
	return *lx.peeked
}

func (lx *lexer) next() tag {
	if lx.peeked != nil {
		t := *lx.peeked
		lx.peeked = nil
		return t
	}
	if lx.pos >= len(lx.src) {
		return tag{kind: tokEOF}
	}
	if lx.src[lx.pos] == '<' {
		return lx.lexTag()
	}
	return lx.lexText()
}

func (lx *lexer) lexText() tag {
	start := lx.pos
	for lx.pos < len(lx.src) && lx.src[lx.pos] != '<' {
		if lx.src[lx.pos] == '\n' {
			lx.line++
		}
		lx.pos++
	}
	raw := lx.src[start:lx.pos]
	text, err := Unescape(raw)
	if err != nil {
		return tag{kind: tokError, text: err.Error()}
	}
	// collapse layout whitespace the way HTML does
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return lx.next()
	}
	return tag{kind: tokText, text: text}
}

func (lx *lexer) lexTag() tag {
	lx.pos++ // consume '<'
	closing := false
	if lx.pos < len(lx.src) && lx.src[lx.pos] == '/' {
		closing = true
		lx.pos++
	}

	nameStart := lx.pos
	for lx.pos < len(lx.src) && isNameRune(rune(lx.src[lx.pos])) {
		lx.pos++
	}
	name := lx.src[nameStart:lx.pos]
	if name == "" {
		return tag{kind: tokError, text: "empty tag name"}
	}

	t := tag{kind: tokOpen, name: name, attrs: map[string]string{}}
	if closing {
		t.kind = tokClose
	}

	for {
		lx.skipSpace()
		if lx.pos >= len(lx.src) {
			return tag{kind: tokError, text: fmt.Sprintf("unterminated tag <%s", name)}
		}
		switch lx.src[lx.pos] {
		case '>':
			lx.pos++
			return t
		case '/':
			lx.pos++
			if lx.pos < len(lx.src) && lx.src[lx.pos] == '>' {
				lx.pos++
				t.selfClose = true
				return t
			}
			return tag{kind: tokError, text: fmt.Sprintf("stray '/' in tag <%s", name)}
		default:
			if closing {
				return tag{kind: tokError, text: fmt.Sprintf("closing tag </%s> takes no attributes", name)}
			}
			key, val, err := lx.lexAttr()
			if err != nil {
				return tag{kind: tokError, text: err.Error()}
			}
			t.attrs[strings.ToUpper(key)] = val
		}
	}
}

func (lx *lexer) lexAttr() (string, string, error) {
	keyStart := lx.pos
	for lx.pos < len(lx.src) && isNameRune(rune(lx.src[lx.pos])) {
		lx.pos++
	}
	key := lx.src[keyStart:lx.pos]
	if key == "" {
		return "", "", fmt.Errorf("malformed attribute near %q", lx.src[keyStart:min(keyStart+8, len(lx.src))])
	}
	lx.skipSpace()
	if lx.pos >= len(lx.src) || lx.src[lx.pos] != '=' {
		return "", "", fmt.Errorf("attribute %s is missing '='", key)
	}
	lx.pos++
	lx.skipSpace()
	if lx.pos >= len(lx.src) || lx.src[lx.pos] != '"' {
		return "", "", fmt.Errorf("attribute %s value must be double-quoted", key)
	}
	lx.pos++
	valStart := lx.pos
	for lx.pos < len(lx.src) && lx.src[lx.pos] != '"' {
		if lx.src[lx.pos] == '\n' {
			lx.line++
		}
		lx.pos++
	}
	if lx.pos >= len(lx.src) {
		return "", "", fmt.Errorf("attribute %s value is missing a closing quote", key)
	}
	raw := lx.src[valStart:lx.pos]
	lx.pos++
	val, err := Unescape(raw)
	if err != nil {
		return "", "", err
	}
	return key, val, nil
}

func (lx *lexer) skipSpace() {
	for lx.pos < len(lx.src) {
		switch lx.src[lx.pos] {
		case '\n':
			lx.line++
			fallthrough
		case ' ', '\t', '\r':
			lx.pos++
		default:
			return
		}
	}
}

// Unescape resolves the recognized character entities: &amp;, &lt;, &gt;,
// &quot;, &#N; and &#xH;. An unterminated or unknown entity is an error.
func Unescape(s string) (string, error) {
	if !strings.ContainsRune(s, '&') {
		return s, nil
	}
	var sb strings.Builder
	for i := 0; i < len(s); {
		if s[i] != '&' {
			sb.WriteByte(s[i])
			i++
			continue
		}
		end := strings.IndexByte(s[i:], ';')
		if end < 0 {
			return "", fmt.Errorf("unterminated character entity near %q", s[i:min(i+8, len(s))])
		}
		entity := s[i+1 : i+end]
		switch {
		case entity == "amp":
			sb.WriteByte('&')
		case entity == "lt":
			sb.WriteByte('<')
		case entity == "gt":
			sb.WriteByte('>')
		case entity == "quot":
			sb.WriteByte('"')
		case strings.HasPrefix(entity, "#x") || strings.HasPrefix(entity, "#X"):
			n, err := strconv.ParseInt(entity[2:], 16, 32)
			if err != nil {
				return "", fmt.Errorf("invalid numeric character entity &%s;", entity)
			}
			sb.WriteRune(rune(n))
		case strings.HasPrefix(entity, "#"):
			n, err := strconv.ParseInt(entity[1:], 10, 32)
			if err != nil {
				return "", fmt.Errorf("invalid numeric character entity &%s;", entity)
			}
			sb.WriteRune(rune(n))
		default:
			return "", fmt.Errorf("unknown character entity &%s;", entity)
		}
		i += end + 1
	}
	return sb.String(), nil
}

// Escape replaces the characters with entity significance by their named
// entities, the inverse of [Unescape] for the named set.
func Escape(s string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
	)
	return r.Replace(s)
}
