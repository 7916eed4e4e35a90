package dom

import (
	"io"
	"sync"

	"github.com/orisano/gosax"
)

// Document owns an Arena exclusively (spec section 3, Ownership). Its root
// is a synthetic KindDocument node holding exactly one KindElement child
// once parsing completes; leading/trailing whitespace around that element is
// discarded per spec section 3.
//
// A Document is not safe for concurrent use by multiple goroutines unless
// accessed exclusively through SyncCursor, which adds its own locking.
type Document struct {
	arena *Arena
	root  NodeID

	// mu and refs back SyncCursor's reference-counted, lock-guarded view of
	// this Document (spec section 4.6, SyncCursor; section 5, Concurrency).
	// A plain Cursor never touches them.
	mu   sync.RWMutex
	refs int32
}

// NewDocument returns an empty Document: a root node with no element child
// yet. Document parser and Stream parser use this to build up a tree from
// SAX events; most callers should use Parse or ParseReader instead.
func NewDocument() *Document {
	a := newArena()
	d := &Document{arena: a, root: 1}
	// index 1 is guaranteed fresh because newArena leaves len(nodes) == 1.
	id := a.alloc(KindDocument)
	if id != 1 {
		panic("dom: root allocation invariant violated")
	}
	root := a.at(d.root)
	root.parent, root.firstChild, root.lastChild = NoNode, NoNode, NoNode
	return d
}

// Root returns a Cursor positioned on the synthetic document root. Its only
// useful navigation is FirstChild, which reaches the single root element.
func (d *Document) Root() Cursor {
	return Cursor{doc: d, id: d.root}
}

// RootElement returns a Cursor on the document's single element child, or a
// null Cursor if parsing has not produced one yet.
func (d *Document) RootElement() Cursor {
	return d.Root().FirstChild()
}

// Parse parses a complete, in-memory byte slice into a new Document. It is a
// convenience wrapper around DocumentParser for callers who already have the
// whole document in hand.
func Parse(data []byte) (*Document, error) {
	p := NewDocumentParser()
	p.Feed(data)
	return p.Finish()
}

// ParseReader reads all of r and parses it into a new Document in one pass,
// the same shape as the teacher's Parser.parse loop: a gosax.Reader (whose
// NewReaderSize grows its own buffer with extend() as needed, so bufSize
// only bounds the first allocation) drives a stack of open elements, built
// here directly against the arena instead of against *XMLElement. This is
// the one place gosax is wired into this module: a caller with a blocking
// io.Reader gets the same one-call convenience the teacher's Stream method
// offered, while DocumentParser/StreamParser (the spec's actual SAX
// tokenizer contract) remain built on the hand-rolled sax package.
func ParseReader(r io.Reader, bufSize int) (*Document, error) {
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}
	doc := NewDocument()
	gr := gosax.NewReaderSize(r, bufSize)
	stack := []NodeID{doc.root}

	for {
		e, err := gr.Event()
		if err != nil && err != io.EOF {
			return nil, err
		}
		switch e.Type() {
		case gosax.EventStart:
			name, attrs := gosax.Name(e.Bytes)
			selfClosing := len(e.Bytes) >= 2 && e.Bytes[len(e.Bytes)-2] == '/'
			if selfClosing {
				// gosax.Name only strips the tag's final '>'; the '/' of a
				// self-closing tag is still attached to whatever came last,
				// name or attrs.
				switch {
				case len(attrs) > 0 && attrs[len(attrs)-1] == '/':
					attrs = attrs[:len(attrs)-1]
				case len(attrs) == 0 && len(name) > 0 && name[len(name)-1] == '/':
					name = name[:len(name)-1]
				}
			}
			id := doc.arena.alloc(KindElement)
			doc.arena.at(id).name = string(name)
			if err := appendGosaxAttrs(doc.arena, id, attrs); err != nil {
				return nil, err
			}
			doc.arena.appendChild(stack[len(stack)-1], id)
			if !selfClosing {
				stack = append(stack, id)
			}
		case gosax.EventEnd:
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		case gosax.EventText:
			if len(stack) > 0 && len(e.Bytes) > 0 {
				text, uerr := gosax.Unescape(append([]byte(nil), e.Bytes...))
				if uerr != nil {
					return nil, uerr
				}
				appendTextToArena(doc.arena, stack[len(stack)-1], string(text))
			}
		case gosax.EventCData:
			// e.Bytes is the whole "<![CDATA[...]]>" section; strip the
			// wrapper and skip Unescape, since CDATA content is literal
			// (spec section 4.3).
			if len(stack) > 0 && len(e.Bytes) > len("<![CDATA[]]>") {
				content := e.Bytes[len("<![CDATA[") : len(e.Bytes)-len("]]>")]
				appendTextToArena(doc.arena, stack[len(stack)-1], string(content))
			}
		}
		if e.Type() == gosax.EventEOF {
			break
		}
		if err == io.EOF {
			break
		}
	}
	return doc, nil
}

// appendGosaxAttrs parses a gosax start-tag's trailing attribute bytes into
// arena attrs, unescaping each value the way gosax.xmlb does.
func appendGosaxAttrs(a *Arena, id NodeID, attrs []byte) error {
	for len(attrs) > 0 {
		var attr gosax.Attribute
		var err error
		attr, attrs, err = gosax.NextAttribute(attrs)
		if err != nil {
			return err
		}
		if len(attr.Key) == 0 {
			break
		}
		val := attr.Value
		if len(val) >= 2 {
			val = val[1 : len(val)-1] // strip surrounding quotes
		}
		unescaped, err := gosax.Unescape(append([]byte(nil), val...))
		if err != nil {
			return err
		}
		a.at(id).attrs = append(a.at(id).attrs, Attr{Name: string(attr.Key), Value: string(unescaped)})
	}
	return nil
}

// --- internal tree surgery shared by the Document parser and Cursor edits ---

// appendChild links child as the new last child of parent, maintaining the
// doubly linked sibling list invariant (spec invariant 3).
func (a *Arena) appendChild(parent, child NodeID) {
	p := a.at(parent)
	c := a.at(child)
	c.parent = parent
	c.prevSibling = p.lastChild
	c.nextSibling = NoNode
	if p.lastChild != NoNode {
		a.at(p.lastChild).nextSibling = child
	} else {
		p.firstChild = child
	}
	p.lastChild = child
}

// unlink removes child from its parent's sibling list without altering
// child's own subtree or tombstoning it; used by Detach, Drop, and the
// move-style edits (Reattach/ReattachBefore/ReattachAfter relocating an
// existing node).
func (a *Arena) unlink(child NodeID) {
	c := a.at(child)
	parent := c.parent
	if parent == NoNode {
		return
	}
	p := a.at(parent)
	if c.prevSibling != NoNode {
		a.at(c.prevSibling).nextSibling = c.nextSibling
	} else {
		p.firstChild = c.nextSibling
	}
	if c.nextSibling != NoNode {
		a.at(c.nextSibling).prevSibling = c.prevSibling
	} else {
		p.lastChild = c.prevSibling
	}
	c.parent, c.prevSibling, c.nextSibling = NoNode, NoNode, NoNode
}

// insertBeforeNode links newNode immediately before ref under ref's parent.
func (a *Arena) insertBeforeNode(ref, newNode NodeID) {
	r := a.at(ref)
	parent := r.parent
	p := a.at(parent)
	n := a.at(newNode)
	n.parent = parent
	n.nextSibling = ref
	n.prevSibling = r.prevSibling
	if r.prevSibling != NoNode {
		a.at(r.prevSibling).nextSibling = newNode
	} else {
		p.firstChild = newNode
	}
	r.prevSibling = newNode
}

// insertAfterNode links newNode immediately after ref under ref's parent.
func (a *Arena) insertAfterNode(ref, newNode NodeID) {
	r := a.at(ref)
	parent := r.parent
	p := a.at(parent)
	n := a.at(newNode)
	n.parent = parent
	n.prevSibling = ref
	n.nextSibling = r.nextSibling
	if r.nextSibling != NoNode {
		a.at(r.nextSibling).prevSibling = newNode
	} else {
		p.lastChild = newNode
	}
	r.nextSibling = newNode
}

// tombstoneSubtree marks id and its entire subtree as gone, per spec section 4.4:
// the ids remain indexable (so a cursor still holding one becomes a no-op
// handle rather than dangling) but the nodes are no longer reachable from
// any live tree.
func (a *Arena) tombstoneSubtree(id NodeID) {
	stack := []NodeID{id}
	for len(stack) > 0 {
		n := len(stack) - 1
		cur := stack[n]
		stack = stack[:n]
		rec := a.at(cur)
		rec.tombstoned = true
		for c := rec.firstChild; c != NoNode; c = a.at(c).nextSibling {
			stack = append(stack, c)
		}
	}
}
