package vmf

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokString
	tokOpen
	tokClose
)

type token struct {
	kind tokenKind
	text string
	line int
}

type lexer struct {
	src  []byte
	pos  int
	line int
}

func (lx *lexer) next() (token, error) {
	lx.skipSpace()
	if lx.pos >= len(lx.src) {
		return token{kind: tokEOF, line: lx.line}, nil
	}

	c := lx.src[lx.pos]
	switch c {
	case '{':
		lx.pos++
		return token{kind: tokOpen, line: lx.line}, nil
	case '}':
		lx.pos++
		return token{kind: tokClose, line: lx.line}, nil
	case '"':
		return lx.quoted()
	}

	start := lx.pos
	for lx.pos < len(lx.src) && !isSpace(lx.src[lx.pos]) && !isDelim(lx.src[lx.pos]) {
		lx.pos++
	}
	return token{kind: tokString, text: string(lx.src[start:lx.pos]), line: lx.line}, nil
}

func (lx *lexer) quoted() (token, error) {
	line := lx.line
	lx.pos++ // opening quote
	start := lx.pos
	for lx.pos < len(lx.src) {
		switch lx.src[lx.pos] {
		case '"':
			text := string(lx.src[start:lx.pos])
			lx.pos++
			return token{kind: tokString, text: text, line: line}, nil
		case '\n':
			return token{}, &SyntaxError{Line: line, Msg: "unterminated string"}
		}
		lx.pos++
	}
	return token{}, &SyntaxError{Line: line, Msg: "unterminated string"}
}

// skipSpace skips whitespace and // comments.
func (lx *lexer) skipSpace() {
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		switch {
		case c == '\n':
			lx.line++
			lx.pos++
		case isSpace(c):
			lx.pos++
		case c == '/' && lx.pos+1 < len(lx.src) && lx.src[lx.pos+1] == '/':
			for lx.pos < len(lx.src) && lx.src[lx.pos] != '\n' {
				lx.pos++
			}
		default:
			return
		}
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

func isDelim(c byte) bool {
	return c == '{' || c == '}' || c == '"'
}
