// Package typeexpr parses field type expressions such as
// "list[Address]", "dict[str, int]", "Optional[User]", "int | None" and
// "Literal['a', 'b']" into a small syntax tree. It does not interpret names;
// that is the generator's job.
package typeexpr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the syntactic form of an expression node.
type Kind int

// Expression node kinds.
const (
	KindName     Kind = iota // identifier, optionally subscripted: list[int]
	KindUnion                // a | b | c
	KindNone                 // None
	KindLiteral              // 'x', 42, 1.5, True
	KindEllipsis             // ... (as in tuple[int, ...])
)

// Expr is a parsed type expression.
type Expr struct {
	Kind  Kind
	Name  string  // KindName
	Args  []*Expr // subscript arguments (KindName) or alternatives (KindUnion)
	Value any     // KindLiteral: string, int64, float64 or bool
}

// ErrSyntax is wrapped by every parse error.
var ErrSyntax = errors.New("invalid type expression")

// Parse parses a type expression.
func Parse(s string) (*Expr, error) {
	p := &parser{src: s}
	if err := p.lex(); err != nil {
		return nil, err
	}
	if len(p.toks) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrSyntax)
	}
	e, err := p.union()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.toks) {
		return nil, p.errorf("unexpected %q", p.toks[p.pos].text)
	}
	return e, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// package-level tables.
func MustParse(s string) *Expr {
	e, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return e
}

// String renders the expression in canonical form.
func (e *Expr) String() string {
	var b strings.Builder
	e.write(&b)
	return b.String()
}

func (e *Expr) write(b *strings.Builder) {
	switch e.Kind {
	case KindNone:
		b.WriteString("None")
	case KindEllipsis:
		b.WriteString("...")
	case KindLiteral:
		switch v := e.Value.(type) {
		case string:
			b.WriteString(strconv.Quote(v))
		case bool:
			if v {
				b.WriteString("True")
			} else {
				b.WriteString("False")
			}
		default:
			fmt.Fprint(b, v)
		}
	case KindUnion:
		for i, a := range e.Args {
			if i > 0 {
				b.WriteString(" | ")
			}
			a.write(b)
		}
	default:
		b.WriteString(e.Name)
		if len(e.Args) > 0 {
			b.WriteByte('[')
			for i, a := range e.Args {
				if i > 0 {
					b.WriteString(", ")
				}
				a.write(b)
			}
			b.WriteByte(']')
		}
	}
}

type tokKind int

const (
	tokIdent tokKind = iota
	tokString
	tokNumber
	tokPunct
)

type token struct {
	kind tokKind
	text string
	off  int
}

type parser struct {
	src  string
	toks []token
	pos  int
}

func (p *parser) errorf(format string, args ...any) error {
	off := len(p.src)
	if p.pos < len(p.toks) {
		off = p.toks[p.pos].off
	}
	return fmt.Errorf("%w %q at offset %d: %s", ErrSyntax, p.src, off, fmt.Sprintf(format, args...))
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || c == '.' || (c >= '0' && c <= '9')
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func (p *parser) lex() error {
	s := p.src
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case strings.HasPrefix(s[i:], "..."):
			p.toks = append(p.toks, token{tokPunct, "...", i})
			i += 3
		case c == '[' || c == ']' || c == ',' || c == '|':
			p.toks = append(p.toks, token{tokPunct, string(c), i})
			i++
		case c == '\'' || c == '"':
			j := i + 1
			for j < len(s) && s[j] != c {
				if s[j] == '\\' {
					j++
				}
				j++
			}
			if j >= len(s) {
				return fmt.Errorf("%w %q: unterminated string at offset %d", ErrSyntax, s, i)
			}
			p.toks = append(p.toks, token{tokString, s[i+1 : j], i})
			i = j + 1
		case isDigit(c) || (c == '-' && i+1 < len(s) && isDigit(s[i+1])):
			j := i + 1
			for j < len(s) && (isDigit(s[j]) || s[j] == '.' || s[j] == 'e' || s[j] == 'E') {
				j++
			}
			p.toks = append(p.toks, token{tokNumber, s[i:j], i})
			i = j
		case isIdentStart(c):
			j := i + 1
			for j < len(s) && isIdentPart(s[j]) {
				j++
			}
			p.toks = append(p.toks, token{tokIdent, s[i:j], i})
			i = j
		default:
			return fmt.Errorf("%w %q: unexpected character %q at offset %d", ErrSyntax, s, c, i)
		}
	}
	return nil
}

func (p *parser) peek(text string) bool {
	return p.pos < len(p.toks) && p.toks[p.pos].kind == tokPunct && p.toks[p.pos].text == text
}

func (p *parser) union() (*Expr, error) {
	first, err := p.term()
	if err != nil {
		return nil, err
	}
	if !p.peek("|") {
		return first, nil
	}
	u := &Expr{Kind: KindUnion, Args: []*Expr{first}}
	for p.peek("|") {
		p.pos++
		t, err := p.term()
		if err != nil {
			return nil, err
		}
		u.Args = append(u.Args, t)
	}
	return u, nil
}

func (p *parser) term() (*Expr, error) {
	if p.pos >= len(p.toks) {
		return nil, p.errorf("unexpected end of expression")
	}
	tok := p.toks[p.pos]
	p.pos++

	switch tok.kind {
	case tokString:
		return &Expr{Kind: KindLiteral, Value: unescape(tok.text)}, nil
	case tokNumber:
		if n, err := strconv.ParseInt(tok.text, 10, 64); err == nil {
			return &Expr{Kind: KindLiteral, Value: n}, nil
		}
		f, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			p.pos--
			return nil, p.errorf("bad number %q", tok.text)
		}
		return &Expr{Kind: KindLiteral, Value: f}, nil
	case tokPunct:
		if tok.text == "..." {
			return &Expr{Kind: KindEllipsis}, nil
		}
		p.pos--
		return nil, p.errorf("unexpected %q", tok.text)
	}

	switch tok.text {
	case "None", "NoneType":
		return &Expr{Kind: KindNone}, nil
	case "True":
		return &Expr{Kind: KindLiteral, Value: true}, nil
	case "False":
		return &Expr{Kind: KindLiteral, Value: false}, nil
	}

	e := &Expr{Kind: KindName, Name: tok.text}
	if !p.peek("[") {
		return e, nil
	}
	p.pos++
	if p.peek("]") {
		return nil, p.errorf("empty subscript on %s", tok.text)
	}
	for {
		a, err := p.union()
		if err != nil {
			return nil, err
		}
		e.Args = append(e.Args, a)
		if p.peek(",") {
			p.pos++
			continue
		}
		if p.peek("]") {
			p.pos++
			return e, nil
		}
		return nil, p.errorf("expected ',' or ']'")
	}
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
