package ifc

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// SyntaxError reports malformed STEP input.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// record is one parsed instance before schema resolution.
type record struct {
	id   int
	name string
	args []Value
	raw  string
}

type parser struct {
	src  []byte
	pos  int
	line int
}

func newParser(src []byte) *parser {
	return &parser{src: src, line: 1}
}

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{Line: p.line, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) skipSpace() {
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == '\n':
			p.line++
			p.pos++
		case c == ' ' || c == '\t' || c == '\r':
			p.pos++
		case c == '/' && p.pos+1 < len(p.src) && p.src[p.pos+1] == '*':
			end := bytes.Index(p.src[p.pos+2:], []byte("*/"))
			if end < 0 {
				p.pos = len(p.src)
				return
			}
			p.line += bytes.Count(p.src[p.pos:p.pos+2+end], []byte("\n"))
			p.pos += end + 4
		default:
			return
		}
	}
}

func (p *parser) peek() byte {
	p.skipSpace()
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) expect(c byte) error {
	if got := p.peek(); got != c {
		if got == 0 {
			return p.errorf("expected %q, got end of input", c)
		}
		return p.errorf("expected %q, got %q", c, got)
	}
	p.pos++
	return nil
}

func isKeywordByte(c byte) bool {
	return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '_' || c == '-'
}

func (p *parser) keyword() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) && isKeywordByte(p.src[p.pos]) {
		p.pos++
	}
	return strings.ToUpper(string(p.src[start:p.pos]))
}

// document parses the exchange structure into header entries and data records.
func (p *parser) document() (map[string][]Value, []record, error) {
	if kw := p.keyword(); kw != "ISO-10303-21" {
		return nil, nil, p.errorf("missing ISO-10303-21 preamble")
	}
	if err := p.expect(';'); err != nil {
		return nil, nil, err
	}
	header := make(map[string][]Value)
	var records []record
	sawData := false
	for {
		kw := p.keyword()
		switch kw {
		case "HEADER":
			if err := p.expect(';'); err != nil {
				return nil, nil, err
			}
			if err := p.headerSection(header); err != nil {
				return nil, nil, err
			}
		case "DATA":
			// DATA may carry a parameter list in later editions of the format.
			if p.peek() == '(' {
				if _, _, err := p.params(); err != nil {
					return nil, nil, err
				}
			}
			if err := p.expect(';'); err != nil {
				return nil, nil, err
			}
			recs, err := p.dataSection()
			if err != nil {
				return nil, nil, err
			}
			records = append(records, recs...)
			sawData = true
		case "END-ISO-10303-21":
			if !sawData {
				return nil, nil, p.errorf("missing DATA section")
			}
			return header, records, nil
		case "":
			if p.eof() {
				if !sawData {
					return nil, nil, p.errorf("missing DATA section")
				}
				return nil, nil, p.errorf("missing END-ISO-10303-21 trailer")
			}
			return nil, nil, p.errorf("unexpected %q", p.src[p.pos])
		default:
			return nil, nil, p.errorf("unexpected section %s", kw)
		}
	}
}

func (p *parser) headerSection(header map[string][]Value) error {
	for {
		kw := p.keyword()
		if kw == "ENDSEC" {
			return p.expect(';')
		}
		if kw == "" {
			return p.errorf("unterminated HEADER section")
		}
		args, _, err := p.params()
		if err != nil {
			return err
		}
		if err := p.expect(';'); err != nil {
			return err
		}
		header[kw] = args
	}
}

func (p *parser) dataSection() ([]record, error) {
	var out []record
	for {
		switch p.peek() {
		case '#':
			rec, err := p.instance()
			if err != nil {
				return nil, err
			}
			out = append(out, rec)
		default:
			if kw := p.keyword(); kw == "ENDSEC" {
				return out, p.expect(';')
			}
			return nil, p.errorf("unterminated DATA section")
		}
	}
}

func (p *parser) instance() (record, error) {
	p.pos++ // '#'
	id, err := p.digits()
	if err != nil {
		return record{}, err
	}
	if err := p.expect('='); err != nil {
		return record{}, err
	}
	var rec record
	rec.id = id
	if p.peek() == '(' {
		// Complex instance: keep the first partial entity.
		p.pos++
		first := true
		for p.peek() != ')' {
			name := p.keyword()
			if name == "" {
				return record{}, p.errorf("bad complex instance #%d", id)
			}
			args, raw, err := p.params()
			if err != nil {
				return record{}, err
			}
			if first {
				rec.name, rec.args, rec.raw = name, args, raw
				first = false
			}
		}
		p.pos++
	} else {
		rec.name = p.keyword()
		if rec.name == "" {
			return record{}, p.errorf("missing entity name for #%d", id)
		}
		args, raw, err := p.params()
		if err != nil {
			return record{}, err
		}
		rec.args, rec.raw = args, raw
	}
	if err := p.expect(';'); err != nil {
		return record{}, err
	}
	return rec, nil
}

func (p *parser) digits() (int, error) {
	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
	}
	if start == p.pos {
		return 0, p.errorf("expected instance number")
	}
	return strconv.Atoi(string(p.src[start:p.pos]))
}

// params parses a parenthesised parameter list and returns its raw text.
func (p *parser) params() ([]Value, string, error) {
	if err := p.expect('('); err != nil {
		return nil, "", err
	}
	start := p.pos
	var out []Value
	if p.peek() == ')' {
		p.pos++
		return out, "", nil
	}
	for {
		v, err := p.value()
		if err != nil {
			return nil, "", err
		}
		out = append(out, v)
		switch p.peek() {
		case ',':
			p.pos++
		case ')':
			raw := string(p.src[start:p.pos])
			p.pos++
			return out, raw, nil
		default:
			return nil, "", p.errorf("expected ',' or ')' in parameter list")
		}
	}
}

func (p *parser) value() (Value, error) {
	c := p.peek()
	switch {
	case c == '$':
		p.pos++
		return Value{Kind: KindNull}, nil
	case c == '*':
		p.pos++
		return Value{Kind: KindDerived}, nil
	case c == '#':
		p.pos++
		id, err := p.digits()
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindRef, Ref: id}, nil
	case c == '\'':
		s, err := p.stringLit()
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindString, Str: s}, nil
	case c == '"':
		end := bytes.IndexByte(p.src[p.pos+1:], '"')
		if end < 0 {
			return Value{}, p.errorf("unterminated binary literal")
		}
		lit := string(p.src[p.pos+1 : p.pos+1+end])
		p.pos += end + 2
		return Value{Kind: KindBinary, Str: lit}, nil
	case c == '.':
		end := bytes.IndexByte(p.src[p.pos+1:], '.')
		if end < 0 {
			return Value{}, p.errorf("unterminated enumeration")
		}
		lit := strings.ToUpper(string(p.src[p.pos+1 : p.pos+1+end]))
		p.pos += end + 2
		return Value{Kind: KindEnum, Str: lit}, nil
	case c == '(':
		list, _, err := p.params()
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindList, List: list}, nil
	case c == '-' || c == '+' || c >= '0' && c <= '9':
		return p.number()
	case c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z':
		name := p.keyword()
		args, _, err := p.params()
		if err != nil {
			return Value{}, err
		}
		v := Value{Kind: KindTyped, Str: name}
		if len(args) > 0 {
			inner := args[0]
			v.Inner = &inner
		}
		return v, nil
	case c == 0:
		return Value{}, p.errorf("unexpected end of input")
	}
	return Value{}, p.errorf("unexpected %q", c)
}

func (p *parser) number() (Value, error) {
	start := p.pos
	p.pos++
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c >= '0' && c <= '9' || c == '.' || c == 'E' || c == 'e' || c == '+' || c == '-' {
			p.pos++
			continue
		}
		break
	}
	lit := string(p.src[start:p.pos])
	if strings.ContainsAny(lit, ".Ee") {
		f, err := strconv.ParseFloat(strings.TrimSuffix(lit, "."), 64)
		if err != nil {
			return Value{}, p.errorf("bad real %q", lit)
		}
		return Value{Kind: KindReal, Real: f}, nil
	}
	n, err := strconv.ParseInt(lit, 10, 64)
	if err != nil {
		return Value{}, p.errorf("bad integer %q", lit)
	}
	return Value{Kind: KindInteger, Int: n}, nil
}

func (p *parser) stringLit() (string, error) {
	p.pos++ // opening quote
	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '\'' {
			if p.pos+1 < len(p.src) && p.src[p.pos+1] == '\'' {
				b.WriteByte('\'')
				p.pos += 2
				continue
			}
			p.pos++
			return decodeString(b.String()), nil
		}
		if c == '\n' {
			p.line++
		}
		b.WriteByte(c)
		p.pos++
	}
	return "", p.errorf("unterminated string")
}
