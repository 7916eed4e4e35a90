package dom

import "iter"

// SyncCursor is a reference-counted, thread-safe handle over a Document
// (spec section 4.6). Multiple SyncCursors may jointly own the same
// Document; it is dropped (its Arena discarded) when the last one is
// released. Navigation and reads take the Document's shared lock; any
// editing operation takes the exclusive lock for the duration of that one
// call. The axis iterators are the one exception to holding a lock only
// inside a single call: they keep the shared lock while the caller's loop
// body runs, so an editing call on the same Document made from inside such
// a loop blocks forever. No other method holds a lock across caller code.
//
// This mirrors the locking shape of mellium.im/xmpp's Session, which guards
// its session state with a plain sync.RWMutex (session.go's slock field)
// rather than anything fancier: one lock, acquired for the shortest span
// that correctness requires.
type SyncCursor struct {
	doc *Document
	id  NodeID
}

// NewSyncCursor wraps doc in a SyncCursor positioned on its root element,
// retaining one reference. Call Release when done with it.
func NewSyncCursor(doc *Document) *SyncCursor {
	doc.refs++
	return &SyncCursor{doc: doc, id: doc.RootElement().id}
}

// Retain returns a new SyncCursor sharing this one's Document and node
// position, bumping the shared reference count.
func (s *SyncCursor) Retain() *SyncCursor {
	s.doc.mu.Lock()
	s.doc.refs++
	s.doc.mu.Unlock()
	return &SyncCursor{doc: s.doc, id: s.id}
}

// Release drops this SyncCursor's reference. Once the last reference is
// released, the Document's Arena is discarded and any remaining cursor on
// it reports IsNull.
func (s *SyncCursor) Release() {
	s.doc.mu.Lock()
	s.doc.refs--
	drop := s.doc.refs <= 0
	s.doc.mu.Unlock()
	if drop {
		s.doc.arena.nodes = nil
	}
}

func (s *SyncCursor) cursor() Cursor {
	return Cursor{doc: s.doc, id: s.id}
}

func (s *SyncCursor) withPosition(c Cursor) *SyncCursor {
	return &SyncCursor{doc: s.doc, id: c.id}
}

// Equal reports whether two SyncCursors name the same node of the same
// Document.
func (s *SyncCursor) Equal(other *SyncCursor) bool {
	return s.cursor().Equal(other.cursor())
}

// IsNull reports whether this cursor denotes no node.
func (s *SyncCursor) IsNull() bool {
	s.doc.mu.RLock()
	defer s.doc.mu.RUnlock()
	return s.cursor().IsNull()
}

// Name returns the element name under a shared lock.
func (s *SyncCursor) Name() string {
	s.doc.mu.RLock()
	defer s.doc.mu.RUnlock()
	return s.cursor().Name()
}

// Attribute returns the named attribute's value under a shared lock.
func (s *SyncCursor) Attribute(name string) (string, bool) {
	s.doc.mu.RLock()
	defer s.doc.mu.RUnlock()
	return s.cursor().Attribute(name)
}

// TextContent returns the node's text under a shared lock.
func (s *SyncCursor) TextContent() string {
	s.doc.mu.RLock()
	defer s.doc.mu.RUnlock()
	return s.cursor().TextContent()
}

// Parent returns a SyncCursor on the parent node, sharing this one's
// Document reference (it does not itself Retain — the caller already holds
// a reference via s).
func (s *SyncCursor) Parent() *SyncCursor {
	s.doc.mu.RLock()
	defer s.doc.mu.RUnlock()
	return s.withPosition(s.cursor().Parent())
}

// FirstChild returns a SyncCursor on the first child.
func (s *SyncCursor) FirstChild() *SyncCursor {
	s.doc.mu.RLock()
	defer s.doc.mu.RUnlock()
	return s.withPosition(s.cursor().FirstChild())
}

// NextSibling returns a SyncCursor on the following sibling.
func (s *SyncCursor) NextSibling() *SyncCursor {
	s.doc.mu.RLock()
	defer s.doc.mu.RUnlock()
	return s.withPosition(s.cursor().NextSibling())
}

// PreviousSibling returns a SyncCursor on the preceding sibling.
func (s *SyncCursor) PreviousSibling() *SyncCursor {
	s.doc.mu.RLock()
	defer s.doc.mu.RUnlock()
	return s.withPosition(s.cursor().PreviousSibling())
}

// LastChild returns a SyncCursor on the last child.
func (s *SyncCursor) LastChild() *SyncCursor {
	s.doc.mu.RLock()
	defer s.doc.mu.RUnlock()
	return s.withPosition(s.cursor().LastChild())
}

// Root returns a SyncCursor on the owning Document's root element,
// independent of where s is currently positioned.
func (s *SyncCursor) Root() *SyncCursor {
	s.doc.mu.RLock()
	defer s.doc.mu.RUnlock()
	return s.withPosition(s.cursor().Root())
}

// SetAttribute sets or removes (value == nil) an attribute under the
// exclusive lock, held only for this call.
func (s *SyncCursor) SetAttribute(name string, value *string) *EditError {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()
	return s.cursor().SetAttribute(name, value)
}

// SetName renames this element under the exclusive lock.
func (s *SyncCursor) SetName(name string) *EditError {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()
	return s.cursor().SetName(name)
}

// SetText replaces this node's text under the exclusive lock.
func (s *SyncCursor) SetText(text string) *EditError {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()
	return s.cursor().SetText(text)
}

// AppendChildElement appends a child element under the exclusive lock and
// returns a SyncCursor on it.
func (s *SyncCursor) AppendChildElement(name string) (*SyncCursor, *EditError) {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()
	c, err := s.cursor().AppendChildElement(name)
	if err != nil {
		return nil, err
	}
	return s.withPosition(c), nil
}

// InsertBefore creates a new element named name immediately before this
// node under the exclusive lock and returns a SyncCursor on it.
func (s *SyncCursor) InsertBefore(name string) (*SyncCursor, *EditError) {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()
	c, err := s.cursor().InsertBefore(name)
	if err != nil {
		return nil, err
	}
	return s.withPosition(c), nil
}

// InsertAfter creates a new element named name immediately after this node
// under the exclusive lock and returns a SyncCursor on it.
func (s *SyncCursor) InsertAfter(name string) (*SyncCursor, *EditError) {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()
	c, err := s.cursor().InsertAfter(name)
	if err != nil {
		return nil, err
	}
	return s.withPosition(c), nil
}

// Detach removes this node from its parent under the exclusive lock.
func (s *SyncCursor) Detach() *EditError {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()
	return s.cursor().Detach()
}

// Drop permanently tombstones this node and its subtree under the exclusive
// lock.
func (s *SyncCursor) Drop() *EditError {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()
	return s.cursor().Drop()
}

// Reattach moves this node's subtree so it becomes the last child of
// parent, under the exclusive lock. parent must be a SyncCursor sharing the
// same Document.
func (s *SyncCursor) Reattach(parent *SyncCursor) *EditError {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()
	return s.cursor().Reattach(parent.cursor())
}

// ReattachBefore moves this node's subtree so it becomes the immediate
// previous sibling of ref, under the exclusive lock.
func (s *SyncCursor) ReattachBefore(ref *SyncCursor) *EditError {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()
	return s.cursor().ReattachBefore(ref.cursor())
}

// ReattachAfter moves this node's subtree so it becomes the immediate next
// sibling of ref, under the exclusive lock.
func (s *SyncCursor) ReattachAfter(ref *SyncCursor) *EditError {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()
	return s.cursor().ReattachAfter(ref.cursor())
}

// Descendants yields this node's descendants in document order. The
// returned iterator holds the Document's shared lock for its entire
// traversal, so an editing call against any SyncCursor on the same Document
// blocks until iteration completes or the caller stops early (spec section
// 5: "the editing call blocks until the iterator is dropped").
func (s *SyncCursor) Descendants() iter.Seq[*SyncCursor] {
	return func(yield func(*SyncCursor) bool) {
		s.doc.mu.RLock()
		defer s.doc.mu.RUnlock()
		for c := range s.cursor().Descendants() {
			if !yield(s.withPosition(c)) {
				return
			}
		}
	}
}

// Ancestors yields this node's ancestors, nearest first, under the shared
// lock held for the whole traversal (same locking discipline as
// Descendants).
func (s *SyncCursor) Ancestors() iter.Seq[*SyncCursor] {
	return func(yield func(*SyncCursor) bool) {
		s.doc.mu.RLock()
		defer s.doc.mu.RUnlock()
		for c := range s.cursor().Ancestors() {
			if !yield(s.withPosition(c)) {
				return
			}
		}
	}
}

// DescendantOrSelf yields this node followed by its descendants in document
// order, under the shared lock held for the whole traversal.
func (s *SyncCursor) DescendantOrSelf() iter.Seq[*SyncCursor] {
	return func(yield func(*SyncCursor) bool) {
		s.doc.mu.RLock()
		defer s.doc.mu.RUnlock()
		for c := range s.cursor().DescendantOrSelf() {
			if !yield(s.withPosition(c)) {
				return
			}
		}
	}
}

// FollowingSiblings yields this node's siblings after it, in document order,
// under the shared lock held for the whole traversal.
func (s *SyncCursor) FollowingSiblings() iter.Seq[*SyncCursor] {
	return func(yield func(*SyncCursor) bool) {
		s.doc.mu.RLock()
		defer s.doc.mu.RUnlock()
		for c := range s.cursor().FollowingSiblings() {
			if !yield(s.withPosition(c)) {
				return
			}
		}
	}
}

// PrecedingSiblings yields this node's siblings before it, in reverse
// document order, under the shared lock held for the whole traversal.
func (s *SyncCursor) PrecedingSiblings() iter.Seq[*SyncCursor] {
	return func(yield func(*SyncCursor) bool) {
		s.doc.mu.RLock()
		defer s.doc.mu.RUnlock()
		for c := range s.cursor().PrecedingSiblings() {
			if !yield(s.withPosition(c)) {
				return
			}
		}
	}
}
