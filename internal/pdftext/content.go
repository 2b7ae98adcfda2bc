package pdftext

import (
	"bytes"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// wordGap is the TJ displacement (thousandths of an em) treated as a space.
const wordGap = -250

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokString
	tokName
	tokArrayStart
	tokArrayEnd
	tokDictStart
	tokDictEnd
	tokOperator
)

type token struct {
	kind tokenKind
	text string
	num  float64
}

type lexer struct {
	data []byte
	pos  int
}

func isWhitespace(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\f', 0:
		return true
	}
	return false
}

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		if isWhitespace(c) {
			l.pos++
			continue
		}
		if c == '%' {
			for l.pos < len(l.data) && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
				l.pos++
			}
			continue
		}
		return
	}
}

func (l *lexer) next() token {
	for {
		l.skipSpace()
		if l.pos >= len(l.data) {
			return token{kind: tokEOF}
		}

		c := l.data[l.pos]
		switch {
		case c == '(':
			l.pos++
			return token{kind: tokString, text: l.readLiteral()}
		case c == '<':
			if l.pos+1 < len(l.data) && l.data[l.pos+1] == '<' {
				l.pos += 2
				return token{kind: tokDictStart}
			}
			l.pos++
			return token{kind: tokString, text: l.readHex()}
		case c == '>':
			if l.pos+1 < len(l.data) && l.data[l.pos+1] == '>' {
				l.pos += 2
				return token{kind: tokDictEnd}
			}
			l.pos++
		case c == '[':
			l.pos++
			return token{kind: tokArrayStart}
		case c == ']':
			l.pos++
			return token{kind: tokArrayEnd}
		case c == '{' || c == '}' || c == ')':
			l.pos++
		case c == '/':
			l.pos++
			return token{kind: tokName, text: l.readRegular()}
		case c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9'):
			word := l.readRegular()
			if n, err := strconv.ParseFloat(word, 64); err == nil {
				return token{kind: tokNumber, num: n, text: word}
			}
			return token{kind: tokOperator, text: word}
		default:
			return token{kind: tokOperator, text: l.readRegular()}
		}
	}
}

func (l *lexer) readRegular() string {
	start := l.pos
	for l.pos < len(l.data) && !isWhitespace(l.data[l.pos]) && !isDelimiter(l.data[l.pos]) {
		l.pos++
	}
	if l.pos == start && l.pos < len(l.data) {
		// lone unexpected byte
		l.pos++
	}
	return string(l.data[start:l.pos])
}

// readLiteral reads a (...) string body; the opening paren is consumed. The
// bytes are returned undecoded.
func (l *lexer) readLiteral() string {
	var buf []byte
	depth := 1
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		l.pos++
		switch c {
		case '(':
			depth++
			buf = append(buf, c)
		case ')':
			depth--
			if depth == 0 {
				return string(buf)
			}
			buf = append(buf, c)
		case '\\':
			if l.pos >= len(l.data) {
				break
			}
			e := l.data[l.pos]
			l.pos++
			switch e {
			case 'n':
				buf = append(buf, '\n')
			case 'r':
				buf = append(buf, '\r')
			case 't':
				buf = append(buf, '\t')
			case 'b':
				buf = append(buf, '\b')
			case 'f':
				buf = append(buf, '\f')
			case '\r':
				if l.pos < len(l.data) && l.data[l.pos] == '\n' {
					l.pos++
				}
			case '\n':
				// line continuation
			default:
				if e >= '0' && e <= '7' {
					val := int(e - '0')
					for i := 0; i < 2 && l.pos < len(l.data); i++ {
						d := l.data[l.pos]
						if d < '0' || d > '7' {
							break
						}
						val = val*8 + int(d-'0')
						l.pos++
					}
					buf = append(buf, byte(val))
				} else {
					buf = append(buf, e)
				}
			}
		default:
			buf = append(buf, c)
		}
	}
	return string(buf)
}

// readHex reads a <...> string body; the opening bracket is consumed.
func (l *lexer) readHex() string {
	var digits []byte
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		l.pos++
		if c == '>' {
			break
		}
		if v, ok := hexValue(c); ok {
			digits = append(digits, v)
		}
	}
	if len(digits)%2 == 1 {
		digits = append(digits, 0)
	}
	buf := make([]byte, 0, len(digits)/2)
	for i := 0; i < len(digits); i += 2 {
		buf = append(buf, digits[i]<<4|digits[i+1])
	}
	return string(buf)
}

func hexValue(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// skipInlineImage moves past inline image data up to and including EI.
func (l *lexer) skipInlineImage() {
	idx := bytes.Index(l.data[l.pos:], []byte("EI"))
	for idx >= 0 {
		at := l.pos + idx
		before := at == 0 || isWhitespace(l.data[at-1])
		after := at+2 >= len(l.data) || isWhitespace(l.data[at+2])
		if before && after {
			l.pos = at + 2
			return
		}
		next := bytes.Index(l.data[at+2:], []byte("EI"))
		if next < 0 {
			break
		}
		idx = at + 2 + next - l.pos
	}
	l.pos = len(l.data)
}

// decodeText converts string bytes shown without a usable font encoding to
// UTF-8. UTF-16BE strings carry a BOM; everything else is read as Latin-1.
func decodeText(b []byte) string {
	if len(b) >= 2 && b[0] == 0xFE && b[1] == 0xFF {
		units := make([]uint16, 0, (len(b)-2)/2)
		for i := 2; i+1 < len(b); i += 2 {
			units = append(units, uint16(b[i])<<8|uint16(b[i+1]))
		}
		return string(utf16.Decode(units))
	}
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}
	return string(runes)
}

type operand struct {
	token
	items []operand
}

// textWriter accumulates page text line by line.
type textWriter struct {
	b        strings.Builder
	lineUsed bool
}

func (w *textWriter) show(s string) {
	if s == "" {
		return
	}
	w.b.WriteString(s)
	w.lineUsed = true
}

func (w *textWriter) space() {
	if !w.lineUsed {
		return
	}
	str := w.b.String()
	if strings.HasSuffix(str, " ") {
		return
	}
	w.b.WriteByte(' ')
}

func (w *textWriter) newline() {
	if !w.lineUsed {
		return
	}
	w.b.WriteByte('\n')
	w.lineUsed = false
}

// decoder converts the raw bytes of a shown string to text.
type decoder func(raw string) string

// resources resolves the named fonts and Form XObjects of a content stream.
type resources interface {
	decoder(fontName string) decoder
	form(name string) ([]byte, resources, bool)
}

var ligatures = strings.NewReplacer(
	"\ufb00", "ff",
	"\ufb01", "fi",
	"\ufb02", "fl",
	"\ufb03", "ffi",
	"\ufb04", "ffl",
	"\ufb05", "st",
	"\ufb06", "st",
)

// textState is the part of the graphics state that affects decoding.
type textState struct {
	dec decoder
}

func (st textState) decode(raw string) string {
	var s string
	if st.dec != nil {
		s = st.dec(raw)
	}
	if st.dec == nil || !utf8.ValidString(s) {
		s = decodeText([]byte(raw))
	}
	return ligatures.Replace(s)
}

// PageText interprets a decoded content stream that references no fonts and
// returns its text, one line per text line, each terminated by "\n".
func PageText(content []byte) string {
	w := &textWriter{}
	interpret(content, nil, w, 0)
	w.newline()
	return w.b.String()
}

// interpret writes the text shown by content to w. Fonts selected with Tf are
// looked up in res, and Form XObjects painted with Do are interpreted in turn.
func interpret(content []byte, res resources, w *textWriter, depth int) {
	l := &lexer{data: content}
	var operands []operand
	var state textState
	var saved []textState
	var lastY float64
	haveY := false

	for {
		tok := l.next()
		switch tok.kind {
		case tokEOF:
			return
		case tokArrayStart:
			operands = append(operands, readArray(l))
			continue
		case tokDictStart:
			skipDict(l)
			operands = append(operands, operand{token: token{kind: tokDictStart}})
			continue
		case tokArrayEnd, tokDictEnd:
			continue
		case tokOperator:
		default:
			operands = append(operands, operand{token: tok})
			continue
		}

		switch tok.text {
		case "q":
			saved = append(saved, state)
		case "Q":
			if n := len(saved); n > 0 {
				state = saved[n-1]
				saved = saved[:n-1]
			}
		case "BT":
			haveY = false
		case "ET":
			w.newline()
		case "Tf":
			if len(operands) >= 2 && operands[len(operands)-2].kind == tokName {
				state.dec = nil
				if res != nil {
					state.dec = res.decoder(operands[len(operands)-2].text)
				}
			}
		case "Tj":
			if s, ok := lastString(operands); ok {
				w.show(state.decode(s))
			}
		case "'", "\"":
			w.newline()
			if s, ok := lastString(operands); ok {
				w.show(state.decode(s))
			}
		case "TJ":
			if len(operands) > 0 {
				showArray(w, state, operands[len(operands)-1])
			}
		case "T*":
			w.newline()
		case "Td", "TD":
			if len(operands) >= 2 {
				if operands[len(operands)-1].num != 0 {
					w.newline()
				} else if operands[len(operands)-2].num != 0 {
					w.space()
				}
			}
		case "Tm":
			if len(operands) >= 6 {
				y := operands[len(operands)-1].num
				if haveY && y != lastY {
					w.newline()
				}
				lastY, haveY = y, true
			}
		case "Do":
			if res != nil && depth < maxFormDepth && len(operands) > 0 && operands[len(operands)-1].kind == tokName {
				if data, formRes, ok := res.form(operands[len(operands)-1].text); ok {
					interpret(data, formRes, w, depth+1)
				}
			}
		case "ID":
			if l.pos < len(l.data) {
				l.pos++
			}
			l.skipInlineImage()
		}
		operands = operands[:0]
	}
}

func readArray(l *lexer) operand {
	arr := operand{token: token{kind: tokArrayStart}}
	for {
		tok := l.next()
		switch tok.kind {
		case tokEOF, tokArrayEnd:
			return arr
		case tokArrayStart:
			arr.items = append(arr.items, readArray(l))
		case tokDictStart:
			skipDict(l)
		default:
			arr.items = append(arr.items, operand{token: tok})
		}
	}
}

func skipDict(l *lexer) {
	depth := 1
	for depth > 0 {
		tok := l.next()
		switch tok.kind {
		case tokEOF:
			return
		case tokDictStart:
			depth++
		case tokDictEnd:
			depth--
		}
	}
}

func lastString(operands []operand) (string, bool) {
	if len(operands) == 0 {
		return "", false
	}
	op := operands[len(operands)-1]
	if op.kind != tokString {
		return "", false
	}
	return op.text, true
}

func showArray(w *textWriter, state textState, arr operand) {
	for _, item := range arr.items {
		switch item.kind {
		case tokString:
			w.show(state.decode(item.text))
		case tokNumber:
			if item.num <= wordGap {
				w.space()
			}
		}
	}
}
