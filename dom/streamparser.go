package dom

import (
	"io"

	"github.com/wilkmaciej/ikslite/sax"
)

// StreamEventType identifies the variant of a StreamEvent.
type StreamEventType int

const (
	// StreamOpen is the single event reporting the outer stream element's
	// start tag together with its full attribute set.
	StreamOpen StreamEventType = iota
	// Stanza is one complete Document whose root is a direct child of the
	// outer stream element.
	Stanza
	// StreamClose reports the outer element's end tag.
	StreamClose
	// StreamError is terminal; every subsequent Next call returns the same
	// event.
	StreamError
)

// StreamEvent is one output of StreamParser.Next.
type StreamEvent struct {
	Type  StreamEventType
	Name  string // set for StreamOpen
	Attrs []Attr // set for StreamOpen
	Doc   *Document // set for Stanza
	Err   *sax.ParseError
}

// StreamParser cuts a never-ending XMPP-style byte stream into a stream-open
// header followed by a sequence of top-level stanza documents (spec section
// 4.7). It reuses the sax.Tokenizer exactly as the Document parser does, but
// never expects the outermost element to close except at true stream end.
type StreamParser struct {
	tok *sax.Tokenizer
	err *sax.ParseError

	outerOpen     bool
	outerName     string
	outerAttrs    []Attr
	outerEmitted  bool
	closed        bool
	closePending  bool // outer element was empty: close without ever delivering a child event

	// stanza-in-progress state; depth counts open elements since the outer
	// element's StartTagContent, so depth == 1 means "inside exactly the
	// current stanza root", matching spec 4.7's "virtual depth starts at 1".
	depth      int
	stanzaDoc  *Document
	stanzaOpen []string
	stanzaCur  []NodeID
}

// NewStreamParser returns a StreamParser ready to accept Feed calls.
func NewStreamParser() *StreamParser {
	return &StreamParser{tok: sax.New()}
}

// Feed accepts zero or more bytes of input.
func (p *StreamParser) Feed(b []byte) {
	if p.err != nil {
		return
	}
	p.tok.Feed(b)
}

// Next pulls the next StreamEvent. ok is false when there isn't enough
// buffered input to produce another event yet.
func (p *StreamParser) Next() (StreamEvent, bool) {
	if p.err != nil {
		return StreamEvent{Type: StreamError, Err: p.err}, true
	}
	if p.closePending {
		p.closePending = false
		return StreamEvent{Type: StreamClose}, true
	}
	for {
		e, ok := p.tok.Next()
		if !ok {
			return StreamEvent{}, false
		}
		if se, done := p.apply(e); done {
			return se, true
		}
	}
}

// Finish signals end of input; StreamClose should already have been
// observed via Next in any well-formed stream, so this mainly surfaces an
// UnexpectedEof for a connection that was cut mid-stanza or before the
// outer element ever closed.
func (p *StreamParser) Finish() *sax.ParseError {
	if p.err != nil {
		return p.err
	}
	if tokErr := p.tok.Finish(); tokErr != nil {
		p.err = tokErr
		return tokErr
	}
	if !p.closed {
		err := &sax.ParseError{Kind: sax.ErrUnexpectedEOF, Message: "stream ended before the outer element closed"}
		p.err = err
		return err
	}
	return nil
}

// apply folds one SaxEvent into the framer's state machine. It returns a
// StreamEvent to deliver to the caller, or done == false if the event was
// absorbed without producing one yet (e.g. an attribute, or a non-closing
// child element start).
func (p *StreamParser) apply(e sax.SaxEvent) (StreamEvent, bool) {
	if e.Type == sax.EventError {
		p.err = e.Err
		return StreamEvent{Type: StreamError, Err: e.Err}, true
	}

	if !p.outerOpen {
		return p.applyBeforeOuterOpen(e)
	}
	if p.depth == 0 {
		return p.applyAtOuterLevel(e)
	}
	return p.applyInsideStanza(e)
}

func (p *StreamParser) applyBeforeOuterOpen(e sax.SaxEvent) (StreamEvent, bool) {
	switch e.Type {
	case sax.EventStartTagOpen:
		p.outerName = e.Name
	case sax.EventAttribute:
		p.outerAttrs = append(p.outerAttrs, Attr{Name: e.Name, Value: e.Value})
	case sax.EventStartTagContent:
		p.outerOpen = true
		p.outerEmitted = true
		return StreamEvent{Type: StreamOpen, Name: p.outerName, Attrs: p.outerAttrs}, true
	case sax.EventStartTagEmpty:
		// An empty outer element is a stream that opens and closes with no
		// stanzas; report both in one logical pass by emitting the open now
		// and delivering StreamClose on the very next Next call.
		p.outerOpen = true
		p.outerEmitted = true
		p.closed = true
		p.closePending = true
		return StreamEvent{Type: StreamOpen, Name: p.outerName, Attrs: p.outerAttrs}, true
	}
	return StreamEvent{}, false
}

func (p *StreamParser) applyAtOuterLevel(e sax.SaxEvent) (StreamEvent, bool) {
	switch e.Type {
	case sax.EventEndTag:
		if e.Name != p.outerName {
			err := &sax.ParseError{Kind: sax.ErrTagMismatch, Message: "stream close tag </" + e.Name + "> does not match the open element"}
			p.err = err
			return StreamEvent{Type: StreamError, Err: err}, true
		}
		p.closed = true
		return StreamEvent{Type: StreamClose}, true
	case sax.EventStartTagOpen:
		p.beginStanza(e.Name)
	case sax.EventCData:
		// Character data between stanzas is discarded; it is not checked
		// for being whitespace.
	}
	return StreamEvent{}, false
}

func (p *StreamParser) beginStanza(rootName string) {
	p.stanzaDoc = NewDocument()
	id := p.stanzaDoc.arena.alloc(KindElement)
	p.stanzaDoc.arena.at(id).name = rootName
	p.stanzaDoc.arena.appendChild(p.stanzaDoc.root, id)
	p.stanzaOpen = []string{rootName}
	p.stanzaCur = []NodeID{id}
	p.depth = 1
}

func (p *StreamParser) applyInsideStanza(e sax.SaxEvent) (StreamEvent, bool) {
	switch e.Type {
	case sax.EventStartTagOpen:
		id := p.stanzaDoc.arena.alloc(KindElement)
		p.stanzaDoc.arena.at(id).name = e.Name
		p.stanzaDoc.arena.appendChild(p.stanzaCur[len(p.stanzaCur)-1], id)
		p.stanzaOpen = append(p.stanzaOpen, e.Name)
		p.stanzaCur = append(p.stanzaCur, id)
		p.depth++
	case sax.EventAttribute:
		id := p.stanzaCur[len(p.stanzaCur)-1]
		a := p.stanzaDoc.arena
		a.at(id).attrs = append(a.at(id).attrs, Attr{Name: e.Name, Value: e.Value})
	case sax.EventStartTagEmpty:
		p.stanzaOpen = p.stanzaOpen[:len(p.stanzaOpen)-1]
		p.stanzaCur = p.stanzaCur[:len(p.stanzaCur)-1]
		p.depth--
		return p.maybeCompleteStanza()
	case sax.EventEndTag:
		top := p.stanzaOpen[len(p.stanzaOpen)-1]
		if top != e.Name {
			err := &sax.ParseError{Kind: sax.ErrTagMismatch, Message: "end tag </" + e.Name + "> does not match the innermost open element"}
			p.err = err
			return StreamEvent{Type: StreamError, Err: err}, true
		}
		p.stanzaOpen = p.stanzaOpen[:len(p.stanzaOpen)-1]
		p.stanzaCur = p.stanzaCur[:len(p.stanzaCur)-1]
		p.depth--
		return p.maybeCompleteStanza()
	case sax.EventCData:
		id := p.stanzaCur[len(p.stanzaCur)-1]
		appendTextToArena(p.stanzaDoc.arena, id, e.Value)
	}
	return StreamEvent{}, false
}

func (p *StreamParser) maybeCompleteStanza() (StreamEvent, bool) {
	if p.depth != 0 {
		return StreamEvent{}, false
	}
	doc := p.stanzaDoc
	p.stanzaDoc = nil
	p.stanzaOpen = nil
	p.stanzaCur = nil
	return StreamEvent{Type: Stanza, Doc: doc}, true
}

// StreamReader adapts a blocking io.Reader onto a StreamParser, the stream
// framer's counterpart to ParseReader: a caller with a live connection
// instead of discrete Feed chunks can pull StreamEvents one at a time,
// the same convenience shape as the teacher's Parser wrapping an io.Reader
// in parser.go, re-pointed at the sans-IO StreamParser instead of building
// an *XMLElement tree directly.
type StreamReader struct {
	r   io.Reader
	sp  *StreamParser
	buf []byte
}

// NewStreamReader returns a StreamReader pulling from r with a 64KiB read
// buffer.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{r: r, sp: NewStreamParser(), buf: make([]byte, 64*1024)}
}

// Next blocks on Read calls against the underlying reader until another
// StreamEvent is available, the reader reaches EOF (returned as io.EOF), or
// a ParseError occurs.
func (sr *StreamReader) Next() (StreamEvent, error) {
	for {
		if ev, ok := sr.sp.Next(); ok {
			if ev.Type == StreamError {
				return ev, ev.Err
			}
			return ev, nil
		}
		n, err := sr.r.Read(sr.buf)
		if n > 0 {
			sr.sp.Feed(sr.buf[:n])
		}
		if err != nil {
			if err == io.EOF {
				if ferr := sr.sp.Finish(); ferr != nil {
					return StreamEvent{}, ferr
				}
				return StreamEvent{}, io.EOF
			}
			return StreamEvent{}, err
		}
	}
}

// appendTextToArena is the stream parser's copy of DocumentParser's text
// coalescing rule (spec invariant 6), kept free-standing because the stream
// parser builds stanza documents directly rather than through a
// DocumentParser value.
func appendTextToArena(a *Arena, parent NodeID, text string) {
	if text == "" {
		return
	}
	last := a.at(parent).lastChild
	if last != NoNode && a.at(last).kind == KindText {
		a.at(last).text += text
		return
	}
	id := a.alloc(KindText)
	a.at(id).text = text
	a.appendChild(parent, id)
}
