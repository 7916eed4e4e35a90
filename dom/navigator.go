package dom

import (
	"strings"

	"github.com/wilkmaciej/xpath"
)

// Navigator implements xpath.NodeNavigator over a Cursor, so a caller
// holding their own compiled *xpath.Expr can evaluate it against a
// dom.Document without this module implementing expression parsing or
// evaluation itself (spec section 1 keeps the XPath compiler/evaluator out
// of scope but keeps "the DOM traversal primitives it depends on" in
// scope). It is adapted field-for-field from the teacher's
// elementNavigator in navigator.go, walking arena-backed Cursor values
// instead of *XMLElement pointers, and dropping the attribute-index-aware
// bookkeeping that pointer type needed in favor of Cursor's own attribute
// slice.
type Navigator struct {
	root, cur Cursor
	attrIndex int // -1 unless positioned on an attribute
}

// NewNavigator returns a Navigator over doc, initially positioned on the
// synthetic document root (so "/" in an XPath expression behaves the way
// xpath.NodeNavigator implementations expect it to).
func NewNavigator(doc *Document) *Navigator {
	root := doc.Root()
	return &Navigator{root: root, cur: root, attrIndex: -1}
}

func (n *Navigator) NodeType() xpath.NodeType {
	if n.attrIndex != -1 {
		return xpath.AttributeNode
	}
	switch n.cur.Kind() {
	case KindText:
		return xpath.TextNode
	case KindDocument:
		return xpath.RootNode
	default:
		return xpath.ElementNode
	}
}

func (n *Navigator) LocalName() string {
	if n.attrIndex != -1 {
		name := n.cur.Attributes()[n.attrIndex].Name
		if i := strings.IndexByte(name, ':'); i != -1 {
			return name[i+1:]
		}
		return name
	}
	if name := n.cur.Name(); name != "" {
		if i := strings.IndexByte(name, ':'); i != -1 {
			return name[i+1:]
		}
		return name
	}
	return ""
}

// Prefix returns the syntactic namespace prefix of the current node's name,
// if any. Spec section 9 leaves namespace URI resolution as an open
// question at the DOM layer; this navigator stays at the syntactic layer
// the SAX tokenizer already operates at, matching that choice.
func (n *Navigator) Prefix() string {
	name := n.cur.Name()
	if n.attrIndex != -1 {
		name = n.cur.Attributes()[n.attrIndex].Name
	}
	if i := strings.IndexByte(name, ':'); i != -1 {
		return name[:i]
	}
	return ""
}

// NamespaceURL is not resolved by this module (see Prefix); it always
// reports "".
func (n *Navigator) NamespaceURL() string {
	return ""
}

func (n *Navigator) Value() string {
	if n.attrIndex != -1 {
		return n.cur.Attributes()[n.attrIndex].Value
	}
	return n.cur.TextContent()
}

func (n *Navigator) Copy() xpath.NodeNavigator {
	cp := *n
	return &cp
}

func (n *Navigator) MoveToRoot() {
	n.cur = n.root
	n.attrIndex = -1
}

func (n *Navigator) MoveToParent() bool {
	if n.attrIndex != -1 {
		n.attrIndex = -1
		return true
	}
	p := n.cur.Parent()
	if p.IsNull() {
		return false
	}
	n.cur = p
	return true
}

func (n *Navigator) MoveToNextAttribute() bool {
	if n.cur.Kind() != KindElement {
		return false
	}
	if n.attrIndex+1 >= len(n.cur.Attributes()) {
		return false
	}
	n.attrIndex++
	return true
}

func (n *Navigator) MoveToChild() bool {
	if n.attrIndex != -1 {
		return false
	}
	c := n.cur.FirstChild()
	if c.IsNull() {
		return false
	}
	n.cur = c
	return true
}

func (n *Navigator) MoveToFirst() bool {
	if n.attrIndex != -1 {
		return false
	}
	p := n.cur.Parent()
	if p.IsNull() {
		return false
	}
	first := p.FirstChild()
	if first.Equal(n.cur) {
		return false
	}
	n.cur = first
	return true
}

func (n *Navigator) MoveToNext() bool {
	if n.attrIndex != -1 {
		return false
	}
	next := n.cur.NextSibling()
	if next.IsNull() {
		return false
	}
	n.cur = next
	return true
}

func (n *Navigator) MoveToPrevious() bool {
	if n.attrIndex != -1 {
		return false
	}
	prev := n.cur.PreviousSibling()
	if prev.IsNull() {
		return false
	}
	n.cur = prev
	return true
}

func (n *Navigator) MoveTo(other xpath.NodeNavigator) bool {
	o, ok := other.(*Navigator)
	if !ok || !o.root.Equal(n.root) {
		return false
	}
	n.cur = o.cur
	n.attrIndex = o.attrIndex
	return true
}

func (n *Navigator) String() string {
	return n.Value()
}

// Evaluate evaluates a compiled XPath expression against doc, with context
// positioned at the synthetic document root, and returns a result shaped the
// way the teacher's XMLElement.Evaluate did: node-set results become []any
// of Cursor and *Attr values, and scalar results (string/float64/bool) pass
// through unchanged.
func Evaluate(doc *Document, expr *xpath.Expr) any {
	return doc.Root().Evaluate(expr)
}

// Evaluate evaluates a compiled XPath expression with context positioned at
// c, the Cursor counterpart to the teacher's XMLElement.Evaluate.
func (c Cursor) Evaluate(expr *xpath.Expr) any {
	nav := &Navigator{root: c.doc.Root(), cur: c, attrIndex: -1}
	result := expr.Evaluate(nav)
	iter, ok := result.(*xpath.NodeIterator)
	if !ok {
		return result
	}
	nodes := make([]any, 0, 1)
	for iter.MoveNext() {
		cn, ok := iter.Current().(*Navigator)
		if !ok {
			continue
		}
		if cn.attrIndex != -1 {
			a := cn.cur.Attributes()[cn.attrIndex]
			nodes = append(nodes, &a)
		} else {
			nodes = append(nodes, cn.cur)
		}
	}
	return nodes
}
