package dom

import "iter"

// Ancestors yields this node's ancestors, nearest first, stopping before
// the document root (spec section 4.6). It is lazy and safe to restart as
// long as the Document isn't mutated between iterations.
func (c Cursor) Ancestors() iter.Seq[Cursor] {
	return func(yield func(Cursor) bool) {
		for p := c.Parent(); !p.IsNull() && p.rec().kind != KindDocument; p = p.Parent() {
			if !yield(p) {
				return
			}
		}
	}
}

// Descendants yields every descendant of c in document order (pre-order
// depth-first), not including c itself.
func (c Cursor) Descendants() iter.Seq[Cursor] {
	return func(yield func(Cursor) bool) {
		walkDescendants(c, yield)
	}
}

// DescendantOrSelf yields c followed by every descendant of c in document
// order.
func (c Cursor) DescendantOrSelf() iter.Seq[Cursor] {
	return func(yield func(Cursor) bool) {
		if c.IsNull() {
			return
		}
		if !yield(c) {
			return
		}
		walkDescendants(c, yield)
	}
}

func walkDescendants(c Cursor, yield func(Cursor) bool) bool {
	for ch := c.FirstChild(); !ch.IsNull(); ch = ch.NextSibling() {
		if !yield(ch) {
			return false
		}
		if !walkDescendants(ch, yield) {
			return false
		}
	}
	return true
}

// FollowingSiblings yields this node's siblings after it, in document order.
func (c Cursor) FollowingSiblings() iter.Seq[Cursor] {
	return func(yield func(Cursor) bool) {
		for s := c.NextSibling(); !s.IsNull(); s = s.NextSibling() {
			if !yield(s) {
				return
			}
		}
	}
}

// PrecedingSiblings yields this node's siblings before it, in reverse
// document order (nearest first), per spec section 4.6.
func (c Cursor) PrecedingSiblings() iter.Seq[Cursor] {
	return func(yield func(Cursor) bool) {
		for s := c.PreviousSibling(); !s.IsNull(); s = s.PreviousSibling() {
			if !yield(s) {
				return
			}
		}
	}
}
