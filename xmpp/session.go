// Package xmpp names the sans-IO XMPP protocol state machine's interface to
// the stream framer (spec section 4.8). The protocol state machine itself —
// SASL, STARTTLS negotiation, stanza routing — is a peer core acknowledged
// but out of scope for this module (spec section 1); what's specified here
// is the seam: how a Session receives bytes, yields events, and produces
// bytes to send, all without performing any I/O of its own.
//
// The shape is grounded on mellium.im/xmpp's Session/SessionState in
// session.go: a bitmask session state, a Negotiator function type threading
// state through a sequence of negotiation steps, and a single lock guarding
// mutable session state (slock, an RWMutex, there; mu, a plain Mutex, here). SASL negotiation
// (mellium.im/sasl) and the stream-rewriting helpers in mellium.im/xmlstream
// are not imported: nothing in this module's scope ever transmits bytes or
// authenticates a connection (spec section 1 puts blocking I/O and TLS
// setup out of scope), so there is no component here for either package to
// serve.
package xmpp

import (
	"bytes"
	"sync"
	"time"

	"github.com/wilkmaciej/ikslite/dom"
	"github.com/wilkmaciej/ikslite/sax"
)

// State is a bitmask describing a Session's negotiation progress, mirrored
// on mellium.im/xmpp's SessionState.
type State uint8

const (
	// Negotiating is set for a Session that hasn't yet seen a StreamOpen.
	Negotiating State = 1 << iota
	// Open is set once the stream's outer element has been observed and
	// not yet closed.
	Open
	// Closed is set once StreamClose or a stream error has been observed.
	Closed
)

// EventType identifies the variant of an Event yielded by PollEvent.
type EventType int

const (
	// StreamOpened reports the peer's stream-open header.
	StreamOpened EventType = iota
	// StanzaReceived carries one complete top-level stanza document.
	StanzaReceived
	// StreamClosed reports the peer's stream-close tag.
	StreamClosed
	// SessionError is terminal; every subsequent PollEvent call returns the
	// same event.
	SessionError
)

// Event is one output of Session.PollEvent.
type Event struct {
	Type   EventType
	Name   string        // set for StreamOpened
	Attrs  []dom.Attr    // set for StreamOpened
	Stanza *dom.Document // set for StanzaReceived
	Err    *sax.ParseError
}

// Negotiator is a single step of stream negotiation (version exchange,
// feature advertisement, SASL, STARTTLS, resource binding — whichever a
// concrete protocol implementation built on this interface chooses to
// plug in). It receives the current state and the just-parsed StreamOpen
// attributes and returns the state to transition to. A Session built on top
// of this package runs zero Negotiators by default; wiring a real XMPP
// negotiation sequence is the "peer core" spec section 1 and section 4.8
// explicitly leave unimplemented here.
type Negotiator func(current State, attrs []dom.Attr) State

// Session is the sans-IO interface spec section 4.8 fixes as the stream
// framer's contract: RecvBytes feeds the wire into the Stream parser,
// PollEvent drains whatever that produced, SendStanza renders a Document
// back to bytes for the caller to transmit, and Tick drives any
// time-based behavior (retransmit, keepalive, timeout) without the Session
// ever blocking or performing I/O itself.
type Session interface {
	RecvBytes(b []byte)
	PollEvent() (Event, bool)
	SendStanza(doc *dom.Document) ([]byte, error)
	Tick(now time.Time)
	State() State
}

// session is a minimal Session built directly on dom.StreamParser. It
// implements the interface above without any negotiation logic: Negotiators
// registered via Use run after each StreamOpened event, in order, letting a
// caller layer protocol-specific behavior on without this package needing
// to know what that behavior is.
type session struct {
	mu    sync.Mutex
	state State
	sp    *dom.StreamParser
	negs  []Negotiator

	lastOpenAttrs []dom.Attr
}

// NewSession returns a Session ready to receive bytes, with zero
// Negotiators registered.
func NewSession() Session {
	return &session{state: Negotiating, sp: dom.NewStreamParser()}
}

// Use registers a Negotiator to run after each StreamOpened event is
// observed, in registration order.
func Use(s Session, n Negotiator) {
	if impl, ok := s.(*session); ok {
		impl.mu.Lock()
		impl.negs = append(impl.negs, n)
		impl.mu.Unlock()
	}
}

func (s *session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *session) RecvBytes(b []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sp.Feed(b)
}

func (s *session) PollEvent() (Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	se, ok := s.sp.Next()
	if !ok {
		return Event{}, false
	}
	switch se.Type {
	case dom.StreamOpen:
		s.state = Open
		attrs := make([]dom.Attr, len(se.Attrs))
		copy(attrs, se.Attrs)
		s.lastOpenAttrs = attrs
		for _, n := range s.negs {
			s.state = n(s.state, attrs)
		}
		return Event{Type: StreamOpened, Name: se.Name, Attrs: attrs}, true
	case dom.Stanza:
		return Event{Type: StanzaReceived, Stanza: se.Doc}, true
	case dom.StreamClose:
		s.state = Closed
		return Event{Type: StreamClosed}, true
	default: // dom.StreamError
		s.state = Closed
		return Event{Type: SessionError, Err: se.Err}, true
	}
}

// SendStanza renders doc to its wire bytes via dom.Write. It performs no
// I/O; the caller is responsible for actually writing the returned bytes to
// a transport, per spec section 1's exclusion of the blocking-IO transport
// from this module's scope.
func (s *session) SendStanza(doc *dom.Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := dom.Write(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Tick exists to fix the interface shape spec section 4.8 names
// ("tick(now) for time-driven retransmit/timeout"); this minimal Session has
// no time-driven behavior of its own; a concrete protocol built on it would
// check registered timers here.
func (s *session) Tick(now time.Time) {}
