package sax

// EventType identifies the variant of a SaxEvent.
type EventType int

const (
	// EventNone is the zero value; never produced by Next.
	EventNone EventType = iota
	// EventStartTagOpen is "<name" seen; Name is set.
	EventStartTagOpen
	// EventAttribute is one attribute within a start tag; Name and Value
	// are set. Always appears between EventStartTagOpen and either
	// EventStartTagContent or EventStartTagEmpty for the same element.
	EventAttribute
	// EventStartTagContent is ">" closing a non-empty start tag; Name is
	// set (repeating the element name for convenience).
	EventStartTagContent
	// EventStartTagEmpty is "/>" closing an empty element; Name is set.
	EventStartTagEmpty
	// EventEndTag is "</name>"; Name is set.
	EventEndTag
	// EventCData is a run of character data; Value is set. Adjacent text
	// runs produced by the tokenizer (across CDATA sections, references,
	// and feed boundaries) are merged into one event when uninterrupted
	// by markup.
	EventCData
	// EventError is terminal; Err is set and every subsequent call
	// returns the same event.
	EventError
)

func (t EventType) String() string {
	switch t {
	case EventStartTagOpen:
		return "StartTagOpen"
	case EventAttribute:
		return "Attribute"
	case EventStartTagContent:
		return "StartTagContent"
	case EventStartTagEmpty:
		return "StartTagEmpty"
	case EventEndTag:
		return "EndTag"
	case EventCData:
		return "CData"
	case EventError:
		return "Error"
	default:
		return "None"
	}
}

// SaxEvent is a single tokenizer output. Name and Value are strings copied
// out of the Tokenizer's buffer, so they stay valid after later calls to
// Feed or Next.
type SaxEvent struct {
	Type  EventType
	Name  string
	Value string
	Err   *ParseError
}
