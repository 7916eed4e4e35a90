package dom

import "github.com/wilkmaciej/ikslite/sax"

// DocumentParser drives a sax.Tokenizer to build a single Document (spec
// section 4.5). The zero value is not usable; use NewDocumentParser.
//
// A DocumentParser is a one-shot accumulator: Feed may be called any number
// of times with arbitrarily sliced input, but once Finish is called (or an
// error occurs) the parser is done.
type DocumentParser struct {
	tok  *sax.Tokenizer
	doc  *Document
	open []string // stack of open element names, for TagMismatch checking
	cur  []NodeID // stack of open element node ids, parallel to open

	sawRoot  bool
	rootDone bool
	err      error
}

// NewDocumentParser returns a DocumentParser ready to accept Feed calls.
func NewDocumentParser() *DocumentParser {
	return &DocumentParser{tok: sax.New(), doc: NewDocument()}
}

// Feed accepts zero or more bytes of input, same contract as sax.Tokenizer.Feed.
func (p *DocumentParser) Feed(b []byte) {
	if p.err != nil {
		return
	}
	p.tok.Feed(b)
	p.drain()
}

// Finish signals end of input, runs any final structural checks, and
// returns the completed Document. If any error occurred — from the
// tokenizer or from this layer's own nesting/root-count checks — it is
// returned here (or from whichever earlier Feed call first produced it).
func (p *DocumentParser) Finish() (*Document, error) {
	if p.err == nil {
		if tokErr := p.tok.Finish(); tokErr != nil {
			p.err = tokErr
		} else {
			// Finish may have completed a trailing text run; apply it.
			p.drain()
		}
	}
	if p.err == nil {
		if len(p.open) > 0 {
			p.err = &sax.ParseError{Kind: sax.ErrUnexpectedEOF, Message: "end of input with unclosed elements"}
		} else if !p.sawRoot {
			p.err = &sax.ParseError{Kind: sax.ErrNoRoot, Message: "no root element"}
		}
	}
	return p.doc, p.err
}

func (p *DocumentParser) drain() {
	for {
		e, ok := p.tok.Next()
		if !ok {
			return
		}
		if e.Type == sax.EventError {
			p.err = e.Err
			return
		}
		if p.handle(e) {
			return
		}
	}
}

// handle applies one SaxEvent to the growing tree. It returns true if a
// structural error terminated parsing.
func (p *DocumentParser) handle(e sax.SaxEvent) bool {
	switch e.Type {
	case sax.EventStartTagOpen:
		if err := p.checkNewRoot(); err != nil {
			p.err = err
			return true
		}
		id := p.doc.arena.alloc(KindElement)
		p.doc.arena.at(id).name = e.Name
		parent := p.doc.root
		if len(p.cur) > 0 {
			parent = p.cur[len(p.cur)-1]
		}
		p.doc.arena.appendChild(parent, id)
		p.open = append(p.open, e.Name)
		p.cur = append(p.cur, id)
	case sax.EventAttribute:
		id := p.cur[len(p.cur)-1]
		p.doc.arena.at(id).attrs = append(p.doc.arena.at(id).attrs, Attr{Name: e.Name, Value: e.Value})
	case sax.EventStartTagContent:
		// children, if any, follow; nothing to do here.
	case sax.EventStartTagEmpty:
		return p.closeCurrent()
	case sax.EventEndTag:
		if len(p.open) == 0 || p.open[len(p.open)-1] != e.Name {
			p.err = &sax.ParseError{Kind: sax.ErrTagMismatch, Message: "end tag </" + e.Name + "> does not match the innermost open element"}
			return true
		}
		return p.closeCurrent()
	case sax.EventCData:
		if len(p.cur) == 0 {
			if err := p.checkTextOutsideRoot(e.Value); err != nil {
				p.err = err
				return true
			}
			return false
		}
		p.appendText(p.cur[len(p.cur)-1], e.Value)
	}
	return false
}

func (p *DocumentParser) closeCurrent() bool {
	p.open = p.open[:len(p.open)-1]
	p.cur = p.cur[:len(p.cur)-1]
	if len(p.cur) == 0 {
		p.sawRoot = true
		p.rootDone = true
	}
	return false
}

func (p *DocumentParser) checkNewRoot() *sax.ParseError {
	if len(p.cur) == 0 && p.rootDone {
		return &sax.ParseError{Kind: sax.ErrJunkAfterRoot, Message: "content after the root element has closed"}
	}
	return nil
}

func (p *DocumentParser) checkTextOutsideRoot(text string) *sax.ParseError {
	for _, r := range text {
		if r != ' ' && r != '\t' && r != '\r' && r != '\n' {
			if p.rootDone {
				return &sax.ParseError{Kind: sax.ErrJunkAfterRoot, Message: "non-whitespace content after the root element"}
			}
			return &sax.ParseError{Kind: sax.ErrJunkAfterRoot, Message: "non-whitespace content before the root element"}
		}
	}
	return nil
}

// appendText coalesces adjacent text (spec invariant 6): if parent's last
// child is already a text node, the new text is concatenated into it rather
// than starting a new sibling.
func (p *DocumentParser) appendText(parent NodeID, text string) {
	if text == "" {
		return
	}
	a := p.doc.arena
	last := a.at(parent).lastChild
	if last != NoNode && a.at(last).kind == KindText {
		a.at(last).text += text
		return
	}
	id := a.alloc(KindText)
	a.at(id).text = text
	a.appendChild(parent, id)
}
