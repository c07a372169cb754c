package literal

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf8"
)

const maxDepth = 256

// SyntaxError describes malformed input.
type SyntaxError struct {
	Offset int // byte offset of the error
	msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("literal: %s at offset %d", e.msg, e.Offset)
}

// Parse parses a single literal. Dicts, lists, tuples and sets, strings in
// any quote style with prefixes r, u and b, integers, floats, True, False
// and None are accepted, as are JSON's true, false and null. Trailing
// commas, # comments and adjacent string concatenation follow Python.
func Parse(s string) (Value, error) {
	p := &parser{src: s}
	p.skipSpace()
	v, err := p.value(0)
	if err != nil {
		return Value{}, err
	}
	p.skipSpace()
	if p.pos < len(p.src) {
		return Value{}, p.errorf("unexpected %q after value", p.peekRune())
	}
	return v, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{Offset: p.pos, msg: fmt.Sprintf(format, args...)}
}

func (p *parser) peekRune() rune {
	r, _ := utf8.DecodeRuneInString(p.src[p.pos:])
	return r
}

func (p *parser) eof() bool {
	return p.pos >= len(p.src)
}

// skipSpace skips whitespace, line continuations and comments.
func (p *parser) skipSpace() {
	for p.pos < len(p.src) {
		switch c := p.src[p.pos]; {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v':
			p.pos++
		case c == '\\' && p.pos+1 < len(p.src) && p.src[p.pos+1] == '\n':
			p.pos += 2
		case c == '#':
			for p.pos < len(p.src) && p.src[p.pos] != '\n' {
				p.pos++
			}
		default:
			return
		}
	}
}

func (p *parser) value(depth int) (Value, error) {
	if depth > maxDepth {
		return Value{}, p.errorf("nesting too deep")
	}
	if p.eof() {
		return Value{}, p.errorf("unexpected end of input")
	}

	switch c := p.src[p.pos]; {
	case c == '{':
		return p.dict(depth)
	case c == '[':
		return p.sequence(depth, '[', ']')
	case c == '(':
		return p.sequence(depth, '(', ')')
	case c == '\'' || c == '"':
		return p.stringLit()
	case c == '-' || c == '+' || c == '.' || isDigit(c):
		return p.number()
	case isIdentStart(c):
		start := p.pos
		word := p.ident()
		if p.pos < len(p.src) && (p.src[p.pos] == '\'' || p.src[p.pos] == '"') && isStringPrefix(word) {
			p.pos = start
			return p.stringLit()
		}
		switch word {
		case "True", "true":
			return Value{Kind: Bool, b: true}, nil
		case "False", "false":
			return Value{Kind: Bool}, nil
		case "None", "null":
			return Value{Kind: Null}, nil
		}
		p.pos = start
		return Value{}, p.errorf("unknown name %q", word)
	default:
		return Value{}, p.errorf("unexpected %q", p.peekRune())
	}
}

func (p *parser) dict(depth int) (Value, error) {
	p.pos++ // {
	p.skipSpace()
	if p.consume('}') {
		return Value{Kind: Dict}, nil
	}

	first, err := p.value(depth + 1)
	if err != nil {
		return Value{}, err
	}
	p.skipSpace()
	if !p.consume(':') {
		// A set literal.
		return p.rest(depth, List, []Value{first}, '}')
	}

	v := Value{Kind: Dict}
	key := first
	for {
		if err := checkKey(key); err != nil {
			return Value{}, p.errorf("%v", err)
		}
		p.skipSpace()
		val, err := p.value(depth + 1)
		if err != nil {
			return Value{}, err
		}
		v.keys = append(v.keys, key)
		v.items = append(v.items, val)

		p.skipSpace()
		if p.consume('}') {
			return v, nil
		}
		if !p.consume(',') {
			return Value{}, p.errorf("expected ',' or '}' in dict")
		}
		p.skipSpace()
		if p.consume('}') {
			return v, nil
		}

		if key, err = p.value(depth + 1); err != nil {
			return Value{}, err
		}
		p.skipSpace()
		if !p.consume(':') {
			return Value{}, p.errorf("expected ':' after dict key")
		}
	}
}

// checkKey rejects unhashable keys the way Python does.
func checkKey(k Value) error {
	if k.Kind == List || k.Kind == Dict {
		return fmt.Errorf("unhashable %s used as dict key", k.Kind)
	}
	return nil
}

func (p *parser) sequence(depth int, open, close byte) (Value, error) {
	p.pos++ // open
	p.skipSpace()
	if p.consume(close) {
		return Value{Kind: List}, nil
	}

	first, err := p.value(depth + 1)
	if err != nil {
		return Value{}, err
	}
	p.skipSpace()
	if open == '(' && p.consume(')') {
		// Parenthesized expression, not a tuple.
		return first, nil
	}
	return p.rest(depth, List, []Value{first}, close)
}

// rest parses the remaining comma separated elements of a list, tuple or
// set whose first element has been read.
func (p *parser) rest(depth int, kind Kind, items []Value, close byte) (Value, error) {
	for {
		p.skipSpace()
		if p.consume(close) {
			return Value{Kind: kind, items: items}, nil
		}
		if !p.consume(',') {
			return Value{}, p.errorf("expected ',' or %q", close)
		}
		p.skipSpace()
		if p.consume(close) {
			return Value{Kind: kind, items: items}, nil
		}
		item, err := p.value(depth + 1)
		if err != nil {
			return Value{}, err
		}
		items = append(items, item)
	}
}

func (p *parser) consume(c byte) bool {
	if p.pos < len(p.src) && p.src[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func (p *parser) ident() string {
	start := p.pos
	for p.pos < len(p.src) && (isIdentStart(p.src[p.pos]) || isDigit(p.src[p.pos])) {
		p.pos++
	}
	return p.src[start:p.pos]
}

// stringLit parses one string literal and any literals adjacent to it.
func (p *parser) stringLit() (Value, error) {
	var sb strings.Builder
	for {
		s, err := p.str()
		if err != nil {
			return Value{}, err
		}
		sb.WriteString(s)

		save := p.pos
		p.skipSpace()
		if !p.startsString() {
			p.pos = save
			return Value{Kind: String, text: sb.String()}, nil
		}
	}
}

func (p *parser) startsString() bool {
	i := p.pos
	for i < len(p.src) && i-p.pos < 2 && isIdentStart(p.src[i]) {
		i++
	}
	if i >= len(p.src) || (p.src[i] != '\'' && p.src[i] != '"') {
		return false
	}
	return isStringPrefix(p.src[p.pos:i])
}

func isStringPrefix(s string) bool {
	switch strings.ToLower(s) {
	case "", "r", "u", "b", "br", "rb":
		return true
	}
	return false
}

func (p *parser) str() (string, error) {
	raw := false
	for p.pos < len(p.src) && isIdentStart(p.src[p.pos]) {
		if p.src[p.pos] == 'r' || p.src[p.pos] == 'R' {
			raw = true
		}
		p.pos++
	}

	start := p.pos
	quote := p.src[p.pos]
	triple := strings.HasPrefix(p.src[p.pos:], strings.Repeat(string(quote), 3))
	if triple {
		p.pos += 3
	} else {
		p.pos++
	}

	var sb strings.Builder
	for {
		if p.eof() {
			p.pos = start
			return "", p.errorf("unterminated string")
		}
		c := p.src[p.pos]
		switch {
		case c == quote && !triple:
			p.pos++
			return sb.String(), nil
		case c == quote && strings.HasPrefix(p.src[p.pos:], strings.Repeat(string(quote), 3)):
			p.pos += 3
			return sb.String(), nil
		case c == '\n' && !triple:
			return "", p.errorf("newline in string")
		case c == '\\':
			if err := p.escape(&sb, raw); err != nil {
				return "", err
			}
		default:
			sb.WriteByte(c)
			p.pos++
		}
	}
}

var simpleEscapes = map[byte]string{
	'\\': "\\", '\'': "'", '"': "\"",
	'a': "\a", 'b': "\b", 'f': "\f", 'n': "\n", 'r': "\r", 't': "\t", 'v': "\v",
	'/': "/",
}

// escape decodes the escape sequence at p.pos into sb.
func (p *parser) escape(sb *strings.Builder, raw bool) error {
	if p.pos+1 >= len(p.src) {
		return p.errorf("unterminated string")
	}
	next := p.src[p.pos+1]
	if raw {
		// Raw strings keep the backslash but it still protects a quote.
		sb.WriteByte('\\')
		sb.WriteByte(next)
		p.pos += 2
		return nil
	}

	if next == '\n' {
		p.pos += 2
		return nil
	}
	if s, ok := simpleEscapes[next]; ok {
		sb.WriteString(s)
		p.pos += 2
		return nil
	}

	switch next {
	case 'x', 'u', 'U':
		n := map[byte]int{'x': 2, 'u': 4, 'U': 8}[next]
		if p.pos+2+n > len(p.src) {
			return p.errorf("truncated \\%c escape", next)
		}
		code, err := strconv.ParseUint(p.src[p.pos+2:p.pos+2+n], 16, 32)
		if err != nil || code > utf8.MaxRune {
			return p.errorf("invalid \\%c escape", next)
		}
		if next == 'u' && code >= 0xD800 && code < 0xDC00 {
			if r, ok := p.lowSurrogate(p.pos+2+n, rune(code)); ok {
				sb.WriteRune(r)
				p.pos += 2 + n + 6
				return nil
			}
		}
		sb.WriteRune(rune(code))
		p.pos += 2 + n
		return nil
	}

	if next >= '0' && next <= '7' {
		end := p.pos + 1
		for end < len(p.src) && end < p.pos+4 && p.src[end] >= '0' && p.src[end] <= '7' {
			end++
		}
		code, _ := strconv.ParseUint(p.src[p.pos+1:end], 8, 32)
		sb.WriteRune(rune(code))
		p.pos = end
		return nil
	}

	// Unknown escapes are kept verbatim.
	sb.WriteByte('\\')
	p.pos++
	return nil
}

// lowSurrogate combines a JSON style surrogate pair such as \ud83d\ude00.
func (p *parser) lowSurrogate(at int, high rune) (rune, bool) {
	if !strings.HasPrefix(p.src[at:], `\u`) || at+6 > len(p.src) {
		return 0, false
	}
	low, err := strconv.ParseUint(p.src[at+2:at+6], 16, 32)
	if err != nil || low < 0xDC00 || low > 0xDFFF {
		return 0, false
	}
	return (high-0xD800)<<10 + (rune(low) - 0xDC00) + 0x10000, true
}

func (p *parser) number() (Value, error) {
	start := p.pos
	neg := false
	if c := p.src[p.pos]; c == '-' || c == '+' {
		neg = c == '-'
		p.pos++
		p.skipSpace()
	}

	numStart := p.pos
	var prev byte
	for p.pos < len(p.src) && isNumberByte(p.src[p.pos], prev) {
		prev = p.src[p.pos]
		p.pos++
	}
	text := strings.ReplaceAll(p.src[numStart:p.pos], "_", "")
	if text == "" {
		p.pos = start
		return Value{}, p.errorf("invalid number")
	}

	lower := strings.ToLower(text)
	isFloat := !strings.HasPrefix(lower, "0x") && strings.ContainsAny(lower, ".e")
	if !isFloat {
		n, ok := new(big.Int).SetString(text, 0)
		if !ok {
			p.pos = start
			return Value{}, p.errorf("invalid integer %q", text)
		}
		if neg {
			n.Neg(n)
		}
		return Value{Kind: Int, text: n.String()}, nil
	}

	if _, err := strconv.ParseFloat(text, 64); err != nil {
		p.pos = start
		return Value{}, p.errorf("invalid float %q", text)
	}
	if strings.HasPrefix(text, ".") {
		text = "0" + text
	}
	text = strings.Replace(text, ".e", ".0e", 1)
	text = strings.Replace(text, ".E", ".0E", 1)
	if strings.HasSuffix(text, ".") {
		text += "0"
	}
	if neg {
		text = "-" + text
	}
	return Value{Kind: Float, text: text}, nil
}

// isNumberByte reports whether c continues a numeric literal; prev is the
// byte before it, needed for exponent signs.
func isNumberByte(c, prev byte) bool {
	switch {
	case isDigit(c), c == '.', c == '_':
		return true
	case c == 'x' || c == 'X' || c == 'o' || c == 'O' || c == 'b' || c == 'B':
		return true
	case c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		return true
	case (c == '+' || c == '-') && (prev == 'e' || prev == 'E'):
		return true
	}
	return false
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
