package gviz

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/hverr/gviz/token"
)

// Scanner tokenizes graph-definition source code into a stream of tokens.
type Scanner struct {
	r         *bufio.Reader
	cur       rune
	curLine   int
	curColumn int
	next      rune
	eof       bool
	err       error
}

// NewScanner creates a new scanner that reads source code from r. Returns an error if the
// scanner cannot be initialized.
func NewScanner(r io.Reader) (*Scanner, error) {
	scanner := Scanner{
		r:       bufio.NewReader(r),
		curLine: 1,
	}

	// initialize current and next runes
	err := scanner.readRune()
	if err != nil {
		return nil, err
	}
	err = scanner.readRune()
	if err != nil {
		return nil, err
	}
	// 2 readRune calls are needed to fill the cur and next runes
	scanner.curColumn = 1

	return &scanner, nil
}

const (
	maxQuotedStringLen     = 16347
	unquotedStringStartErr = "unquoted identifiers must start with a letter or underscore, and can only contain letters, digits, and underscores"
	unquotedStringErr      = "unquoted identifiers can only contain letters, digits, and underscores"
)

// Next advances the scanner's position by one token and returns it. Illegal input produces a
// token of type [token.ERROR] carrying the reason; the returned error is non-nil only for
// terminal I/O failures. A token of type [token.EOF] is returned once the underlying reader is
// exhausted.
func (sc *Scanner) Next() (token.Token, error) {
	sc.skipWhitespace()
	if sc.err != nil {
		return token.Token{}, sc.err
	}
	if sc.isEOF() {
		return token.Token{Type: token.EOF}, nil
	}

	var tok token.Token
	switch sc.cur {
	case '{':
		tok = sc.tokenizeRuneAs(token.LeftBrace)
	case '}':
		tok = sc.tokenizeRuneAs(token.RightBrace)
	case '[':
		tok = sc.tokenizeRuneAs(token.LeftBracket)
	case ']':
		tok = sc.tokenizeRuneAs(token.RightBracket)
	case ':':
		tok = sc.tokenizeRuneAs(token.Colon)
	case ',':
		tok = sc.tokenizeRuneAs(token.Comma)
	case ';':
		tok = sc.tokenizeRuneAs(token.Semicolon)
	case '=':
		tok = sc.tokenizeRuneAs(token.Equal)
	case '#', '/':
		return sc.tokenizeComment()
	case '<':
		return sc.tokenizeHTMLString()
	default:
		if isEdgeOperator(sc.cur, sc.next) {
			return sc.tokenizeEdgeOperator()
		}
		if isStartofIdentifier(sc.cur) {
			// identifier tokenizers advance past their last rune themselves
			return sc.tokenizeIdentifier()
		}
		return sc.errorToken(unquotedStringStartErr), nil
	}

	err := sc.readRune()
	if err != nil {
		return tok, err
	}
	return tok, nil
}

// readRune reads one rune and advances the scanner's position markers depending on the read rune.
func (sc *Scanner) readRune() error {
	if sc.isDone() {
		return sc.err
	}

	r, _, err := sc.r.ReadRune()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			sc.err = fmt.Errorf("failed to read rune due to: %v", err)
			return sc.err
		}

		sc.eof = true
	}

	if sc.cur == '\n' {
		sc.curLine++
		sc.curColumn = 1
	} else {
		sc.curColumn++
	}
	sc.cur = sc.next
	sc.next = r
	return nil
}

func (sc *Scanner) skipWhitespace() {
	for isWhitespace(sc.cur) {
		err := sc.readRune()
		if err != nil {
			return
		}
	}
}

// isWhitespace determines if the rune is considered whitespace. It does not include non-breaking
// whitespace \240 which is considered whitespace by [unicode.IsSpace].
func isWhitespace(r rune) bool {
	switch r {
	case ' ', '\t', '\r', '\n':
		return true
	}
	return false
}

func (sc *Scanner) hasNext() bool {
	return !sc.eof || sc.cur != 0
}

func (sc *Scanner) isDone() bool {
	return sc.isEOF() || sc.err != nil
}

func (sc *Scanner) isEOF() bool {
	return !sc.hasNext()
}

func (sc *Scanner) pos() token.Position {
	return token.Position{Line: sc.curLine, Column: sc.curColumn}
}

func (sc *Scanner) tokenizeRuneAs(tokenType token.Kind) token.Token {
	pos := sc.pos()
	return token.Token{Type: tokenType, Literal: string(sc.cur), Start: pos, End: pos}
}

// errorToken wraps the current rune into an ERROR token and consumes it.
func (sc *Scanner) errorToken(reason string) token.Token {
	pos := sc.pos()
	tok := token.Token{
		Type:    token.ERROR,
		Literal: string(sc.cur),
		Error:   reason,
		Start:   pos,
		End:     pos,
	}
	_ = sc.readRune()
	return tok
}

// tokenizeComment scans '//…', '/*…*/' and C-preprocessor '#…' lines, which are all ignored by
// the parser.
func (sc *Scanner) tokenizeComment() (token.Token, error) {
	var comment []rune
	var hasClosingMarker bool

	if sc.cur == '/' && sc.hasNext() && sc.next != '/' && sc.next != '*' {
		return sc.errorToken("missing '/' for single-line or a '*' for a multi-line comment"), nil
	}

	start := sc.pos()
	var end token.Position
	var err error
	isMultiLine := sc.cur == '/' && sc.hasNext() && sc.next == '*'
	for ; sc.hasNext() && err == nil && (isMultiLine || sc.cur != '\n'); err = sc.readRune() {
		end = sc.pos()
		comment = append(comment, sc.cur)

		if isMultiLine && sc.cur == '*' && sc.hasNext() && sc.next == '/' {
			hasClosingMarker = true
			comment = append(comment, sc.next)
			err = sc.readRune() // move onto the last rune '/' of the closing marker
			end = sc.pos()
			if err == nil {
				err = sc.readRune() // consume it
			}
			break
		}
	}

	if isMultiLine && !hasClosingMarker {
		return sc.errorToken("missing closing marker '*/' for multi-line comment"), err
	}
	if err != nil {
		return token.Token{}, err
	}

	return token.Token{
		Type:    token.Comment,
		Literal: string(comment),
		Start:   start,
		End:     end,
	}, nil
}

func isEdgeOperator(first, second rune) bool {
	return first == '-' && (second == '>' || second == '-')
}

func (sc *Scanner) tokenizeEdgeOperator() (token.Token, error) {
	start := sc.pos()
	err := sc.readRune()
	if err != nil {
		return token.Token{}, err
	}

	end := sc.pos()
	kind := token.DirectedEdge
	if sc.cur == '-' {
		kind = token.UndirectedEdge
	}
	err = sc.readRune()
	if err != nil {
		return token.Token{}, err
	}
	return token.Token{
		Type:    kind,
		Literal: kind.String(),
		Start:   start,
		End:     end,
	}, nil
}

func isStartofIdentifier(r rune) bool {
	return isStartOfUnquotedString(r) ||
		isStartOfNumeral(r) ||
		r == '"'
}

func isStartOfUnquotedString(r rune) bool {
	return r == '_' || isAlphabetic(r)
}

// isAlphabetic determines if the rune is part of the allowed alphabetic characters of an
// unquoted identifier. Any rune with the high bit set (>= 0x80) is accepted, which in practice
// admits all non-ASCII UTF-8 characters.
func isAlphabetic(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '\200')
}

func isStartOfNumeral(r rune) bool {
	return r == '-' || r == '.' || unicode.IsDigit(r)
}

func (sc *Scanner) tokenizeIdentifier() (token.Token, error) {
	if isStartOfUnquotedString(sc.cur) {
		return sc.tokenizeUnquotedString()
	} else if isStartOfNumeral(sc.cur) {
		return sc.tokenizeNumeral()
	}
	return sc.tokenizeQuotedString()
}

// tokenizeUnquotedString considers the current rune(s) as an identifier that might be a
// keyword. Keywords are only recognized outside of quotes.
func (sc *Scanner) tokenizeUnquotedString() (token.Token, error) {
	var id []rune
	start := sc.pos()
	var end token.Position

	var err error
	for ; sc.hasNext() && err == nil && !isUnquotedStringSeparator(sc.cur); err = sc.readRune() {
		end = sc.pos()
		if !isLegalInUnquotedString(sc.cur) {
			if sc.cur == 0 {
				return sc.errorToken("illegal character NUL: " + unquotedStringErr), nil
			}
			return sc.errorToken(unquotedStringErr), nil
		}

		id = append(id, sc.cur)
	}

	if err != nil {
		return token.Token{}, err
	}

	literal := string(id)
	return token.Token{
		Type:    token.Lookup(literal),
		Literal: literal,
		Start:   start,
		End:     end,
	}, nil
}

// isUnquotedStringSeparator determines if the rune separates tokens.
func isUnquotedStringSeparator(r rune) bool {
	// - potential edge operator
	// / potential single- or multi-line comment
	// # potential line comment
	// " potential quoted identifier
	// < potential HTML string
	return isTerminal(r) || isWhitespace(r) || r == '-' || r == '/' || r == '#' || r == '"' || r == '<'
}

// isTerminal determines if the rune is a single-rune terminal token. Edge operators are not
// considered.
func isTerminal(r rune) bool {
	switch r {
	case '{', '}', '[', ']', ':', ';', '=', ',':
		return true
	}
	return false
}

func isLegalInUnquotedString(r rune) bool {
	return isStartOfUnquotedString(r) || unicode.IsDigit(r)
}

func (sc *Scanner) tokenizeNumeral() (token.Token, error) {
	var id []rune
	var hasDigit bool
	start := sc.pos()
	var end token.Position

	var err error
	for pos, hasDot := 0, false; sc.hasNext() && err == nil && !sc.isNumeralSeparator(); err, pos = sc.readRune(), pos+1 {
		end = sc.pos()
		if sc.cur == '-' && pos != 0 {
			return sc.errorToken("a numeral can only be prefixed with a `-`"), nil
		}

		if sc.cur == '.' && hasDot {
			return sc.errorToken("a numeral can only have one `.` that is at least preceded or followed by digits"), nil
		}

		if sc.cur != '-' && sc.cur != '.' && !unicode.IsDigit(sc.cur) { // otherwise only digits are allowed
			return sc.errorToken("a numeral can optionally lead with a `-`, has to have at least one digit before or after a `.` which must only be followed by digits"), nil
		}

		if sc.cur == '.' {
			hasDot = true
		} else if unicode.IsDigit(sc.cur) {
			hasDigit = true
		}

		id = append(id, sc.cur)
	}

	if !hasDigit {
		return sc.errorToken("a numeral must have at least one digit"), err
	}
	if err != nil {
		return token.Token{}, err
	}

	return token.Token{
		Type:    token.ID,
		Literal: string(id),
		Start:   start,
		End:     end,
	}, nil
}

func (sc *Scanner) isNumeralSeparator() bool {
	return isTerminal(sc.cur) || isWhitespace(sc.cur) || isEdgeOperator(sc.cur, sc.next)
}

// tokenizeQuotedString scans a double-quoted identifier. The literal holds the string content
// with escaped quotes resolved and without the surrounding quotes. Consecutive quoted strings
// joined by '+' concatenate into one token.
func (sc *Scanner) tokenizeQuotedString() (token.Token, error) {
	start := sc.pos()
	var sb strings.Builder
	end, ok, err := sc.scanQuotedStringPart(&sb)
	if err != nil || !ok {
		return sc.errorToken("missing closing quote"), err
	}

	// "a" + "b" concatenates to one value
	for {
		sc.skipWhitespace()
		if sc.cur != '+' {
			break
		}
		err = sc.readRune()
		if err != nil {
			return token.Token{}, err
		}
		sc.skipWhitespace()
		if sc.cur != '"' {
			return sc.errorToken("expected quoted string after '+' concatenation operator"), nil
		}
		end, ok, err = sc.scanQuotedStringPart(&sb)
		if err != nil || !ok {
			return sc.errorToken("missing closing quote"), err
		}
	}

	return token.Token{
		Type:    token.ID,
		Literal: sb.String(),
		Start:   start,
		End:     end,
	}, nil
}

// scanQuotedStringPart consumes one '"…"' unit, appending the unescaped content to sb. It
// reports whether a closing quote was found and returns the position of that quote.
func (sc *Scanner) scanQuotedStringPart(sb *strings.Builder) (token.Position, bool, error) {
	var end token.Position
	err := sc.readRune() // consume opening quote
	if err != nil {
		return end, false, err
	}

	for count := 0; sc.hasNext(); count++ {
		end = sc.pos()
		if sc.cur == '"' {
			err = sc.readRune() // consume closing quote
			return end, true, err
		}
		if count > maxQuotedStringLen {
			return end, false, nil
		}
		if sc.cur == '\\' && (sc.next == '"' || sc.next == '\\' || sc.next == '\n') {
			// an escaped quote or backslash keeps the literal rune, a
			// backslash-newline joins the lines
			if sc.next != '\n' {
				sb.WriteRune(sc.next)
			}
			err = sc.readRune()
			if err != nil {
				return end, false, err
			}
		} else {
			sb.WriteRune(sc.cur)
		}
		err = sc.readRune()
		if err != nil {
			return end, false, err
		}
	}
	return end, false, nil
}

// tokenizeHTMLString scans '<…>' with balanced angle brackets. The literal holds the content
// between the outermost brackets; the token is marked HTML so the parser can route attribute
// values to the label parser.
func (sc *Scanner) tokenizeHTMLString() (token.Token, error) {
	start := sc.pos()
	var sb strings.Builder

	depth := 0
	for sc.hasNext() {
		switch sc.cur {
		case '<':
			depth++
			if depth > 1 {
				sb.WriteRune(sc.cur)
			}
		case '>':
			depth--
			if depth == 0 {
				err := sc.readRune() // consume closing '>'
				return token.Token{
					Type:    token.ID,
					Literal: sb.String(),
					HTML:    true,
					Start:   start,
					End:     sc.pos(),
				}, err
			}
			sb.WriteRune(sc.cur)
		default:
			sb.WriteRune(sc.cur)
		}
		err := sc.readRune()
		if err != nil {
			return token.Token{}, err
		}
	}
	return sc.errorToken("missing closing '>' for HTML string"), nil
}
