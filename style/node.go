package style

import (
	"iter"
	"slices"
	"strconv"
)

// Kind discriminates the node variants of a style sheet tree.
type Kind int

const (
	// KindRoot is the document container.
	KindRoot Kind = iota

	// KindRule is a container addressed by a selector, e.g. "a { ... }".
	KindRule

	// KindAtRule is an at-rule with a prelude, e.g. "@media screen { ... }".
	KindAtRule

	// KindDecl is a flat "property: value" declaration.
	KindDecl

	// KindComment is a "/* ... */" comment.
	KindComment
)

// String returns a lowercase name of the node kind.
func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindRule:
		return "rule"
	case KindAtRule:
		return "atrule"
	case KindDecl:
		return "decl"
	case KindComment:
		return "comment"
	default:
		return "unknown"
	}
}

// Position identifies a location in the source text.
// Line and Column are 1-based; Offset is a 0-based byte offset.
type Position struct {
	Offset int
	Line   int
	Column int
}

// IsValid reports whether the position refers to a source location.
func (p Position) IsValid() bool { return p.Line > 0 }

// String returns "line:column", or "-" for an invalid position.
func (p Position) String() string {
	if !p.IsValid() {
		return "-"
	}

	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// Raws holds the formatting captured around a node so that printing an
// unmodified tree reproduces its source exactly.
type Raws struct {
	// Before is the text preceding the node inside its parent: whitespace
	// and stray semicolons.
	Before string
	// Between separates a declaration's property from its value (including
	// the colon), or a selector/prelude from its opening brace.
	Between string
	// After is the whitespace before a container's closing brace (or the end
	// of input for a root), or before a declaration's terminating semicolon.
	After string
	// AfterName separates an at-rule name from its prelude.
	AfterName string
	// Semicolon records whether the last statement of a container was
	// terminated with a semicolon.
	Semicolon bool
}

// Node is one of [*Root], [*Rule], [*AtRule], [*Decl] or [*Comment].
// The set of implementations is closed.
type Node interface {
	Kind() Kind
	Pos() Position
	Parent() Container
	Raw() *Raws

	setParent(Container)
}

// Container is a node that owns an ordered sequence of children.
type Container interface {
	Node

	// Nodes returns the children in document order. The returned slice is
	// owned by the container; callers that mutate the tree while iterating
	// should clone it first.
	Nodes() []Node
	// Append adds nodes to the end of the container, detaching each from
	// its previous parent.
	Append(nodes ...Node)
	// Index returns the position of n among the children, or -1.
	Index(n Node) int
	// Remove detaches n from the container and reports whether it was a
	// child.
	Remove(n Node) bool
}

// base is embedded by every node type.
type base struct {
	parent Container
	pos    Position
	raws   Raws
}

func (b *base) Pos() Position         { return b.pos }
func (b *base) Parent() Container     { return b.parent }
func (b *base) Raw() *Raws            { return &b.raws }
func (b *base) setParent(c Container) { b.parent = c }

// body is embedded by every container type.
type body struct {
	nodes []Node
}

func (b *body) Nodes() []Node { return b.nodes }

func (b *body) Index(n Node) int {
	return slices.IndexFunc(b.nodes, func(m Node) bool { return m == n })
}

func (b *body) append(self Container, nodes ...Node) {
	for _, n := range nodes {
		if n == nil {
			continue
		}

		if p := n.Parent(); p != nil {
			p.Remove(n)
		}

		n.setParent(self)
		b.nodes = append(b.nodes, n)
	}
}

func (b *body) remove(n Node) (int, bool) {
	i := b.Index(n)
	if i < 0 {
		return -1, false
	}

	b.nodes = slices.Delete(b.nodes, i, i+1)
	n.setParent(nil)

	return i, true
}

// Root is the top of a parsed document.
type Root struct {
	base
	body

	// Source names where the document was read from, if known.
	Source string
}

// NewRoot returns an empty document.
func NewRoot(nodes ...Node) *Root {
	r := new(Root)
	r.Append(nodes...)

	return r
}

func (*Root) Kind() Kind { return KindRoot }

func (r *Root) Append(nodes ...Node) { r.append(r, nodes...) }

// Remove detaches n from the document. When the first child is removed its
// leading raw text is handed to the new first child, so removing a leading
// statement does not leave the following node's separator at the top.
func (r *Root) Remove(n Node) bool {
	before := n.Raw().Before

	i, ok := r.remove(n)
	if ok && i == 0 && len(r.nodes) > 0 {
		r.nodes[0].Raw().Before = before
	}

	return ok
}

// Rule is a container addressed by a selector.
type Rule struct {
	base
	body

	Selector string
}

// NewRule returns a rule with the given selector and children.
func NewRule(selector string, nodes ...Node) *Rule {
	r := &Rule{Selector: selector}
	r.raws.Between = " "
	r.Append(nodes...)

	return r
}

func (*Rule) Kind() Kind { return KindRule }

func (r *Rule) Append(nodes ...Node) { r.append(r, nodes...) }

func (r *Rule) Remove(n Node) bool {
	_, ok := r.remove(n)

	return ok
}

// AtRule is an "@name params" statement, optionally followed by a block.
// Params is the at-rule prelude.
type AtRule struct {
	base
	body

	Name   string
	Params string
	// HasBody reports whether the at-rule is followed by a "{ ... }" block.
	// Bodiless at-rules are terminated by a semicolon like declarations.
	HasBody bool
}

// NewAtRule returns an at-rule with a block containing the given children.
func NewAtRule(name, params string, nodes ...Node) *AtRule {
	a := &AtRule{Name: name, Params: params, HasBody: true}
	if params != "" {
		a.raws.AfterName = " "
	}

	a.raws.Between = " "
	a.Append(nodes...)

	return a
}

func (*AtRule) Kind() Kind { return KindAtRule }

func (a *AtRule) Append(nodes ...Node) {
	if len(nodes) > 0 {
		a.HasBody = true
	}

	a.append(a, nodes...)
}

func (a *AtRule) Remove(n Node) bool {
	_, ok := a.remove(n)

	return ok
}

// Decl is a "prop: value" declaration.
type Decl struct {
	base

	Prop  string
	Value string
}

// NewDecl returns a declaration.
func NewDecl(prop, value string) *Decl {
	d := &Decl{Prop: prop, Value: value}
	d.raws.Between = ": "

	return d
}

func (*Decl) Kind() Kind { return KindDecl }

// Comment is a "/* Text */" comment. Text is kept verbatim.
type Comment struct {
	base

	Text string
}

// NewComment returns a comment.
func NewComment(text string) *Comment {
	return &Comment{Text: text}
}

func (*Comment) Kind() Kind { return KindComment }

// Walk returns a pre-order iterator over all descendants of c, not including
// c itself. The tree must not be modified during iteration.
func Walk(c Container) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		walk(c, yield)
	}
}

func walk(c Container, yield func(Node) bool) bool {
	for _, n := range c.Nodes() {
		if !yield(n) {
			return false
		}

		if sub, ok := n.(Container); ok {
			if !walk(sub, yield) {
				return false
			}
		}
	}

	return true
}

// Depth returns the number of containers between n and the root of its
// tree. A root has depth 0.
func Depth(n Node) int {
	d := 0

	for p := n.Parent(); p != nil; p = p.Parent() {
		d++
	}

	return d
}
