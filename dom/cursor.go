package dom

import "github.com/wilkmaciej/ikslite/utf8scan"

// Cursor is a borrowing navigation and editing handle into a Document (spec
// section 4.6). The zero Cursor and any Cursor whose node has been
// tombstoned are both "null": every navigation method on them falls through
// to another null Cursor and every read returns an empty value, so chained
// navigation like c.FirstChild().NextSibling().FirstChild() never needs a
// nil check between steps. Editing methods, which must surface failure,
// return an *EditError instead.
//
// A Cursor does not hold a lock; callers sharing a Document across
// goroutines should use SyncCursor instead.
type Cursor struct {
	doc *Document
	id  NodeID
}

// IsNull reports whether this Cursor denotes no node: either the zero
// Cursor, or one whose node has since been tombstoned.
func (c Cursor) IsNull() bool {
	return c.doc == nil || !c.doc.arena.valid(c.id)
}

func (c Cursor) rec() *node {
	return c.doc.arena.at(c.id)
}

// Kind returns the node kind, or KindText's zero value's sibling KindDocument
// is never returned for a null cursor: callers should check IsNull first if
// the distinction matters. A null cursor reports KindText (the most inert
// "empty" kind) so that Name/TextContent reads naturally return "".
func (c Cursor) Kind() Kind {
	if c.IsNull() {
		return KindText
	}
	return c.rec().kind
}

// Name returns the element name, or "" for a text node, the document root,
// or a null cursor.
func (c Cursor) Name() string {
	if c.IsNull() || c.rec().kind != KindElement {
		return ""
	}
	return c.rec().name
}

// Attribute returns the value of the named attribute and whether it was
// present. A null cursor or a non-element node reports "", false.
func (c Cursor) Attribute(name string) (string, bool) {
	if c.IsNull() || c.rec().kind != KindElement {
		return "", false
	}
	for _, a := range c.rec().attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Attributes returns the element's attributes in insertion order. The
// returned slice must not be mutated; callers that need to keep it past the
// next edit on this Document should copy it.
func (c Cursor) Attributes() []Attr {
	if c.IsNull() || c.rec().kind != KindElement {
		return nil
	}
	return c.rec().attrs
}

// TextContent returns this node's own text (for a text node) or the
// concatenation of all descendant text nodes in document order (for an
// element), matching the teacher's XMLElement.InnerText semantics.
func (c Cursor) TextContent() string {
	if c.IsNull() {
		return ""
	}
	switch c.rec().kind {
	case KindText:
		return c.rec().text
	case KindElement:
		var out []byte
		c.collectText(&out)
		return string(out)
	default:
		return ""
	}
}

func (c Cursor) collectText(out *[]byte) {
	for ch := c.FirstChild(); !ch.IsNull(); ch = ch.NextSibling() {
		switch ch.rec().kind {
		case KindText:
			*out = append(*out, ch.rec().text...)
		case KindElement:
			ch.collectText(out)
		}
	}
}

// --- navigation: infallible, null-absorbing ---

// Parent returns the parent Cursor, or a null Cursor at the document root
// or for a null Cursor.
func (c Cursor) Parent() Cursor {
	if c.IsNull() {
		return Cursor{}
	}
	return Cursor{c.doc, c.rec().parent}
}

// FirstChild returns the first child Cursor, or null if there is none.
func (c Cursor) FirstChild() Cursor {
	if c.IsNull() {
		return Cursor{}
	}
	return Cursor{c.doc, c.rec().firstChild}
}

// LastChild returns the last child Cursor, or null if there is none.
func (c Cursor) LastChild() Cursor {
	if c.IsNull() {
		return Cursor{}
	}
	return Cursor{c.doc, c.rec().lastChild}
}

// NextSibling returns the following sibling Cursor, or null if this is the
// last child of its parent.
func (c Cursor) NextSibling() Cursor {
	if c.IsNull() {
		return Cursor{}
	}
	return Cursor{c.doc, c.rec().nextSibling}
}

// PreviousSibling returns the preceding sibling Cursor, or null if this is
// the first child of its parent.
func (c Cursor) PreviousSibling() Cursor {
	if c.IsNull() {
		return Cursor{}
	}
	return Cursor{c.doc, c.rec().prevSibling}
}

// Root returns a Cursor on the owning Document's root element, independent
// of where c is currently positioned. A null Cursor's Root is also null,
// since it has no Document to anchor to.
func (c Cursor) Root() Cursor {
	if c.doc == nil {
		return Cursor{}
	}
	return c.doc.RootElement()
}

// Equal reports whether two cursors name the same node of the same Document.
func (c Cursor) Equal(other Cursor) bool {
	return c.doc == other.doc && c.id == other.id
}

// --- editing: fallible, returns *EditError ---

// SetName renames this element. It fails with EditInvalidName if name is not
// a well-formed XML Name, or EditDetached if the cursor is null/tombstoned.
func (c Cursor) SetName(name string) *EditError {
	if c.IsNull() {
		return editErr(EditDetached, "cannot set name on a null or tombstoned cursor")
	}
	if c.rec().kind != KindElement {
		return editErr(EditInvalidName, "only elements have a name")
	}
	if !validXMLName(name) {
		return editErr(EditInvalidName, "%q is not a well-formed XML Name", name)
	}
	c.rec().name = name
	return nil
}

// SetAttribute sets the named attribute to value, or removes it if value is
// nil. Existing attributes keep their insertion-order position when their
// value changes; a newly added attribute is appended.
func (c Cursor) SetAttribute(name string, value *string) *EditError {
	if c.IsNull() {
		return editErr(EditDetached, "cannot set attribute on a null or tombstoned cursor")
	}
	if c.rec().kind != KindElement {
		return editErr(EditInvalidName, "only elements have attributes")
	}
	if !validXMLName(name) {
		return editErr(EditInvalidName, "%q is not a well-formed XML Name", name)
	}
	rec := c.rec()
	for i := range rec.attrs {
		if rec.attrs[i].Name == name {
			if value == nil {
				rec.attrs = append(rec.attrs[:i], rec.attrs[i+1:]...)
			} else {
				rec.attrs[i].Value = *value
			}
			return nil
		}
	}
	if value != nil {
		rec.attrs = append(rec.attrs, Attr{Name: name, Value: *value})
	}
	return nil
}

// SetText replaces this node's text. On a text node it replaces the
// payload directly; on an element it removes all children and replaces them
// with a single new text child.
func (c Cursor) SetText(text string) *EditError {
	if c.IsNull() {
		return editErr(EditDetached, "cannot set text on a null or tombstoned cursor")
	}
	switch c.rec().kind {
	case KindText:
		c.rec().text = text
		return nil
	case KindElement:
		for ch := c.rec().firstChild; ch != NoNode; {
			next := c.doc.arena.at(ch).nextSibling
			c.doc.arena.tombstoneSubtree(ch)
			ch = next
		}
		c.rec().firstChild, c.rec().lastChild = NoNode, NoNode
		tid := c.doc.arena.alloc(KindText)
		c.doc.arena.at(tid).text = text
		c.doc.arena.appendChild(c.id, tid)
		return nil
	default:
		return editErr(EditInvalidName, "cannot set text on the document root")
	}
}

// AppendChildElement creates a new element named name as this node's last
// child and returns a Cursor on it. Appending an element directly under the
// document root is rejected with EditMultipleRoots once the root already has
// an element child (spec invariant 7: exactly one element child under the
// root).
func (c Cursor) AppendChildElement(name string) (Cursor, *EditError) {
	if c.IsNull() {
		return Cursor{}, editErr(EditDetached, "cannot append a child to a null or tombstoned cursor")
	}
	if !validXMLName(name) {
		return Cursor{}, editErr(EditInvalidName, "%q is not a well-formed XML Name", name)
	}
	if c.rec().kind == KindDocument && c.rec().firstChild != NoNode {
		return Cursor{}, editErr(EditMultipleRoots, "the document already has a root element")
	}
	id := c.doc.arena.alloc(KindElement)
	c.doc.arena.at(id).name = name
	c.doc.arena.appendChild(c.id, id)
	return Cursor{c.doc, id}, nil
}

// InsertBefore creates a new element named name immediately before this
// node, as a sibling under the same parent, and returns a Cursor on it.
// It fails with EditDetached if this cursor has no parent (the document
// root, or an already-detached subtree), and with EditMultipleRoots if this
// node is itself the document's root element (spec invariant 7: a sibling
// there would give the document a second element child).
func (c Cursor) InsertBefore(name string) (Cursor, *EditError) {
	if c.IsNull() || c.rec().parent == NoNode {
		return Cursor{}, editErr(EditDetached, "cannot insert a sibling before a node with no parent")
	}
	if c.doc.arena.at(c.rec().parent).kind == KindDocument {
		return Cursor{}, editErr(EditMultipleRoots, "cannot insert a sibling of the document's root element")
	}
	if !validXMLName(name) {
		return Cursor{}, editErr(EditInvalidName, "%q is not a well-formed XML Name", name)
	}
	id := c.doc.arena.alloc(KindElement)
	c.doc.arena.at(id).name = name
	c.doc.arena.insertBeforeNode(c.id, id)
	return Cursor{c.doc, id}, nil
}

// InsertAfter creates a new element named name immediately after this node,
// as a sibling under the same parent, and returns a Cursor on it. Cycle and
// single-root rules match InsertBefore.
func (c Cursor) InsertAfter(name string) (Cursor, *EditError) {
	if c.IsNull() || c.rec().parent == NoNode {
		return Cursor{}, editErr(EditDetached, "cannot insert a sibling after a node with no parent")
	}
	if c.doc.arena.at(c.rec().parent).kind == KindDocument {
		return Cursor{}, editErr(EditMultipleRoots, "cannot insert a sibling of the document's root element")
	}
	if !validXMLName(name) {
		return Cursor{}, editErr(EditInvalidName, "%q is not a well-formed XML Name", name)
	}
	id := c.doc.arena.alloc(KindElement)
	c.doc.arena.at(id).name = name
	c.doc.arena.insertAfterNode(c.id, id)
	return Cursor{c.doc, id}, nil
}

// Detach removes this node from its parent's child list. The subtree stays
// alive and indexable (its cursor and any cursor on its descendants remain
// usable) but is no longer reachable from the document; it may later be
// moved back into a tree with Reattach/ReattachBefore/ReattachAfter, or
// discarded with Drop.
func (c Cursor) Detach() *EditError {
	if c.IsNull() {
		return editErr(EditDetached, "cannot detach a null or tombstoned cursor")
	}
	if c.rec().parent == NoNode {
		return editErr(EditDetached, "cannot detach the document root")
	}
	c.doc.arena.unlink(c.id)
	return nil
}

// Drop permanently tombstones this node and its entire subtree. Outstanding
// cursors that named any node in the subtree become null (IsNull reports
// true) rather than dangling.
func (c Cursor) Drop() *EditError {
	if c.IsNull() {
		return editErr(EditDetached, "cannot drop a null or tombstoned cursor")
	}
	if c.rec().parent != NoNode {
		c.doc.arena.unlink(c.id)
	}
	c.doc.arena.tombstoneSubtree(c.id)
	return nil
}

// Reattach moves this (typically detached) node's subtree so it becomes the
// last child of parent. It fails with EditTreeCycle if parent is this node
// or one of its own descendants, EditDetached if either cursor is null,
// tombstoned, or belongs to a different Document, and EditMultipleRoots if
// parent is the document root and already has an element child other than c
// itself (spec invariant 7).
func (c Cursor) Reattach(parent Cursor) *EditError {
	if c.IsNull() || parent.IsNull() || c.doc != parent.doc {
		return editErr(EditDetached, "cannot reattach a null, tombstoned, or foreign cursor")
	}
	if c.isAncestorOfOrSelf(parent.id) {
		return editErr(EditTreeCycle, "cannot make a node a descendant of itself")
	}
	if parent.rec().kind == KindDocument && parent.rec().firstChild != NoNode && parent.rec().firstChild != c.id {
		return editErr(EditMultipleRoots, "the document already has a root element")
	}
	if c.rec().parent != NoNode {
		c.doc.arena.unlink(c.id)
	}
	c.doc.arena.appendChild(parent.id, c.id)
	return nil
}

// ReattachBefore moves this (typically detached) node's subtree so it
// becomes the immediate previous sibling of ref. Cycle and ownership rules
// match Reattach; it also fails with EditMultipleRoots if ref is itself the
// document's root element, since any sibling there would be a second root.
func (c Cursor) ReattachBefore(ref Cursor) *EditError {
	if c.IsNull() || ref.IsNull() || c.doc != ref.doc || ref.rec().parent == NoNode {
		return editErr(EditDetached, "cannot reattach before a null, tombstoned, foreign, or parentless cursor")
	}
	if c.doc.arena.at(ref.rec().parent).kind == KindDocument {
		return editErr(EditMultipleRoots, "cannot reattach a sibling of the document's root element")
	}
	if c.isAncestorOfOrSelf(ref.id) {
		return editErr(EditTreeCycle, "cannot make a node an ancestor of itself")
	}
	if c.rec().parent != NoNode {
		c.doc.arena.unlink(c.id)
	}
	c.doc.arena.insertBeforeNode(ref.id, c.id)
	return nil
}

// ReattachAfter moves this (typically detached) node's subtree so it
// becomes the immediate next sibling of ref. Cycle, ownership, and
// single-root rules match ReattachBefore.
func (c Cursor) ReattachAfter(ref Cursor) *EditError {
	if c.IsNull() || ref.IsNull() || c.doc != ref.doc || ref.rec().parent == NoNode {
		return editErr(EditDetached, "cannot reattach after a null, tombstoned, foreign, or parentless cursor")
	}
	if c.doc.arena.at(ref.rec().parent).kind == KindDocument {
		return editErr(EditMultipleRoots, "cannot reattach a sibling of the document's root element")
	}
	if c.isAncestorOfOrSelf(ref.id) {
		return editErr(EditTreeCycle, "cannot make a node an ancestor of itself")
	}
	if c.rec().parent != NoNode {
		c.doc.arena.unlink(c.id)
	}
	c.doc.arena.insertAfterNode(ref.id, c.id)
	return nil
}

// isAncestorOfOrSelf reports whether c is cand's ancestor (or cand itself),
// walking up from cand. Used to reject edits that would create a cycle.
func (c Cursor) isAncestorOfOrSelf(cand NodeID) bool {
	for n := cand; n != NoNode; n = c.doc.arena.at(n).parent {
		if n == c.id {
			return true
		}
	}
	return false
}

func validXMLName(name string) bool {
	if name == "" {
		return false
	}
	r, size, status := utf8scan.DecodeRune([]byte(name))
	if status != utf8scan.OK || !utf8scan.IsNameStartChar(r) {
		return false
	}
	b := []byte(name)
	i := size
	for i < len(b) {
		r, size, status = utf8scan.DecodeRune(b[i:])
		if status != utf8scan.OK || !utf8scan.IsNameChar(r) {
			return false
		}
		i += size
	}
	return true
}
