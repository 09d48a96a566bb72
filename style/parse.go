package style

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ardnew/nestvars/log"
)

var (
	errUnclosedBlock   = errors.New("unclosed block")
	errUnexpectedClose = errors.New("unexpected }")
	errUnknownWord     = errors.New("unknown word")
	errUnclosedComment = errors.New("unclosed comment")
	errUnclosedString  = errors.New("unclosed string")
	errAtRuleName      = errors.New("at-rule without name")
)

// Option configures parsing.
type Option func(*parser)

// WithSourceName attributes the parsed document, and any error found in it,
// to the named source (typically a file path).
func WithSourceName(name string) Option {
	return func(p *parser) { p.source = name }
}

// WithLogger sets the logger used to trace parsing.
func WithLogger(logger log.Logger) Option {
	return func(p *parser) { p.logger = logger }
}

// ParseReader parses a style sheet from an io.Reader.
func ParseReader(
	ctx context.Context,
	r io.Reader,
	opts ...Option,
) (*Root, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, ErrReadInput.Wrap(err)
	}

	return Parse(ctx, string(data), opts...)
}

// Parse parses a style sheet from a string.
//
// Every byte of the input is retained in the [Raws] of the resulting nodes,
// so String on an unmodified tree returns s.
func Parse(ctx context.Context, s string, opts ...Option) (*Root, error) {
	p := &parser{
		input: []byte(s),
		pos:   0,
		line:  1,
		col:   1,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}

	root, err := p.parseRoot()
	if err != nil {
		var pe *Error
		if errors.As(err, &pe) && p.source != "" {
			return nil, pe.WithSource(p.source)
		}

		return nil, err
	}

	p.logger.TraceContext(ctx, "parse complete",
		slog.String("source", p.source),
		slog.Int("node_count", countNodes(root)))

	return root, nil
}

func countNodes(c Container) int {
	n := 0
	for range Walk(c) {
		n++
	}

	return n
}

// parser holds the parser state.
type parser struct {
	input  []byte
	pos    int
	line   int
	col    int
	source string
	logger log.Logger
}

// mark is a resumable parser state.
type mark struct {
	pos, line, col int
}

func (p *parser) parseRoot() (*Root, error) {
	root := new(Root)
	root.pos = p.position()
	root.Source = p.source

	if err := p.parseBody(root, false); err != nil {
		return nil, err
	}

	return root, nil
}

// parseBody parses the children of c. A nested body ends at its closing
// brace, which is consumed; the root body ends at end of input.
func (p *parser) parseBody(c Container, nested bool) error {
	for {
		before := p.skipSeparators()

		if p.eof() {
			if nested {
				return ErrParse.WithPosition(c.Pos()).Wrap(errUnclosedBlock)
			}

			c.Raw().After = before

			return nil
		}

		var (
			n   Node
			err error
		)

		switch {
		case p.peek() == '}':
			if !nested {
				return ErrParse.WithPosition(p.position()).Wrap(errUnexpectedClose)
			}

			c.Raw().After = before
			p.advance()

			return nil

		case p.peekN(2) == "/*":
			n, err = p.parseComment()

		case p.peek() == '@':
			n, err = p.parseAtRule(c)

		default:
			n, err = p.parseStatement(c)
		}

		if err != nil {
			return err
		}

		n.Raw().Before = before
		c.Append(n)
	}
}

// parseStatement parses a rule (text terminated by '{') or a declaration.
func (p *parser) parseStatement(c Container) (Node, error) {
	pos := p.position()

	text, trailing, term, err := p.scanPrelude()
	if err != nil {
		return nil, err
	}

	if term == '{' {
		p.advance()

		rule := &Rule{Selector: text}
		rule.pos = pos
		rule.raws.Between = trailing

		if err := p.parseBody(rule, true); err != nil {
			return nil, err
		}

		return rule, nil
	}

	decl, err := makeDecl(text, pos)
	if err != nil {
		return nil, err
	}

	decl.raws.After = trailing
	p.terminate(c, term)

	return decl, nil
}

func makeDecl(text string, pos Position) (*Decl, error) {
	colon := strings.IndexByte(text, ':')
	if colon < 0 {
		return nil, ErrParse.WithPosition(pos).Wrap(errUnknownWord).
			With(slog.String("word", firstWord(text)))
	}

	prop := strings.TrimRightFunc(text[:colon], unicode.IsSpace)
	if prop == "" {
		return nil, ErrParse.WithPosition(pos).Wrap(errUnknownWord).
			With(slog.String("word", ":"))
	}

	value := strings.TrimLeftFunc(text[colon+1:], unicode.IsSpace)

	decl := &Decl{Prop: prop, Value: value}
	decl.pos = pos
	decl.raws.Between = text[len(prop) : len(text)-len(value)]

	return decl, nil
}

// parseAtRule parses "@name params" followed by ';', a block, or the end of
// the enclosing container.
func (p *parser) parseAtRule(c Container) (Node, error) {
	pos := p.position()
	p.advance() // skip '@'

	start := p.pos
	for !p.eof() && isNameRune(p.peek()) {
		p.advance()
	}

	if p.pos == start {
		return nil, ErrParse.WithPosition(pos).Wrap(errAtRuleName)
	}

	at := &AtRule{Name: string(p.input[start:p.pos])}
	at.pos = pos

	m := p.mark()
	afterName := p.skipWhitespace()

	params, trailing, term, err := p.scanPrelude()
	if err != nil {
		return nil, err
	}

	if params == "" && (term == '}' || term == 0) {
		p.reset(m)
		afterName = ""
	}

	at.Params = params
	at.raws.AfterName = afterName
	at.raws.Between = trailing

	if term == '{' {
		p.advance()

		at.HasBody = true
		if err := p.parseBody(at, true); err != nil {
			return nil, err
		}

		return at, nil
	}

	p.terminate(c, term)

	return at, nil
}

func (p *parser) parseComment() (Node, error) {
	pos := p.position()

	start := p.pos + 2
	if err := p.skipComment(); err != nil {
		return nil, err
	}

	com := &Comment{Text: string(p.input[start : p.pos-2])}
	com.pos = pos

	return com, nil
}

// terminate consumes the ';' ending a statement of c, if present, and
// records it in c's raws.
func (p *parser) terminate(c Container, term rune) {
	if term == ';' {
		p.advance()
	}

	c.Raw().Semicolon = term == ';'
}

// scanPrelude consumes text up to the first top-level '{', ';' or '}', or
// to the end of input. It returns the text without trailing whitespace, the
// trailing whitespace, and the terminator (0 at end of input). The
// terminator itself is not consumed. At '}' and end of input the trailing
// whitespace is also left unconsumed so that it belongs to the container.
func (p *parser) scanPrelude() (text, trailing string, term rune, err error) {
	start := p.pos
	end := p.mark()
	depth := 0

	for !p.eof() {
		ch := p.peek()

		switch {
		case ch == '"' || ch == '\'':
			if err := p.skipString(ch); err != nil {
				return "", "", 0, err
			}

			end = p.mark()

			continue

		case ch == '/' && p.peekN(2) == "/*":
			if err := p.skipComment(); err != nil {
				return "", "", 0, err
			}

			end = p.mark()

			continue

		case ch == '(' || ch == '[':
			depth++

		case (ch == ')' || ch == ']') && depth > 0:
			depth--

		case depth == 0 && (ch == '{' || ch == ';' || ch == '}'):
			text = string(p.input[start:end.pos])

			if ch == '}' {
				p.reset(end)

				return text, "", ch, nil
			}

			return text, string(p.input[end.pos:p.pos]), ch, nil
		}

		p.advance()

		if !unicode.IsSpace(ch) {
			end = p.mark()
		}
	}

	text = string(p.input[start:end.pos])
	p.reset(end)

	return text, "", 0, nil
}

// Helper methods

func (p *parser) peek() rune {
	if p.eof() {
		return 0
	}

	r, _ := utf8.DecodeRune(p.input[p.pos:])

	return r
}

func (p *parser) peekN(n int) string {
	if p.pos+n > len(p.input) {
		return string(p.input[p.pos:])
	}

	return string(p.input[p.pos : p.pos+n])
}

func (p *parser) advance() {
	if p.eof() {
		return
	}

	r, size := utf8.DecodeRune(p.input[p.pos:])

	p.pos += size
	if r == '\n' {
		p.line++
		p.col = 1
	} else {
		p.col++
	}
}

func (p *parser) eof() bool {
	return p.pos >= len(p.input)
}

func (p *parser) position() Position {
	return Position{
		Offset: p.pos,
		Line:   p.line,
		Column: p.col,
	}
}

func (p *parser) mark() mark {
	return mark{pos: p.pos, line: p.line, col: p.col}
}

func (p *parser) reset(m mark) {
	p.pos, p.line, p.col = m.pos, m.line, m.col
}

func (p *parser) skipWhitespace() string {
	start := p.pos
	for !p.eof() && unicode.IsSpace(p.peek()) {
		p.advance()
	}

	return string(p.input[start:p.pos])
}

// skipSeparators skips whitespace and empty statements.
func (p *parser) skipSeparators() string {
	start := p.pos
	for !p.eof() && (unicode.IsSpace(p.peek()) || p.peek() == ';') {
		p.advance()
	}

	return string(p.input[start:p.pos])
}

func (p *parser) skipComment() error {
	pos := p.position()

	p.advance() // skip '/'
	p.advance() // skip '*'

	for !p.eof() {
		if p.peek() == '*' && p.peekN(2) == "*/" {
			p.advance() // skip '*'
			p.advance() // skip '/'

			return nil
		}

		p.advance()
	}

	return ErrParse.WithPosition(pos).Wrap(errUnclosedComment)
}

func (p *parser) skipString(quote rune) error {
	pos := p.position()

	p.advance() // skip opening quote

	for !p.eof() {
		ch := p.peek()
		if ch == '\\' {
			p.advance() // skip backslash

			if !p.eof() {
				p.advance() // skip escaped char
			}

			continue
		}

		if ch == quote {
			p.advance() // skip closing quote

			return nil
		}

		if ch == '\n' {
			break
		}

		p.advance()
	}

	return ErrParse.WithPosition(pos).Wrap(errUnclosedString)
}

// Character classification

func isNameRune(r rune) bool {
	if unicode.IsSpace(r) {
		return false
	}

	return !strings.ContainsRune(`{};()"'/\`, r)
}

func firstWord(s string) string {
	if i := strings.IndexFunc(s, unicode.IsSpace); i >= 0 {
		return s[:i]
	}

	return s
}
