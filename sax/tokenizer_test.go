package sax

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func drain(t *testing.T, tok *Tokenizer) []SaxEvent {
	t.Helper()
	var events []SaxEvent
	for {
		e, ok := tok.Next()
		if !ok {
			break
		}
		events = append(events, e)
		if e.Type == EventError {
			break
		}
	}
	return events
}

func names(events []SaxEvent) []EventType {
	out := make([]EventType, len(events))
	for i, e := range events {
		out[i] = e.Type
	}
	return out
}

// Scenario 2: input fed in chunks "<d", "oc><x/", "></doc>".
func TestChunkedFeedAcrossTagBoundaries(t *testing.T) {
	tok := New()
	tok.Feed([]byte("<d"))
	tok.Feed([]byte("oc><x/"))
	tok.Feed([]byte("></doc>"))
	require.NoError(t, tok.Finish())

	events := drain(t, tok)
	require.Equal(t, []EventType{
		EventStartTagOpen, EventStartTagContent,
		EventStartTagOpen, EventStartTagEmpty,
		EventEndTag,
	}, names(events))
	require.Equal(t, "doc", events[0].Name)
	require.Equal(t, "x", events[2].Name)
	require.Equal(t, "doc", events[4].Name)
}

// Scenario 3: attribute value entity expansion.
func TestAttributeEntityExpansion(t *testing.T) {
	tok := New()
	tok.Feed([]byte(`<a x='1&amp;2'/>`))
	require.NoError(t, tok.Finish())

	events := drain(t, tok)
	require.Equal(t, []EventType{EventStartTagOpen, EventAttribute, EventStartTagEmpty}, names(events))
	require.Equal(t, "x", events[1].Name)
	require.Equal(t, "1&2", events[1].Value)
}

func TestUndefinedNamedEntityIsBadEntity(t *testing.T) {
	tok := New()
	tok.Feed([]byte("<a>&unknown;</a>"))
	events := drain(t, tok)
	last := events[len(events)-1]
	require.Equal(t, EventError, last.Type)
	require.Equal(t, ErrBadEntity, last.Err.Kind)
}

func TestCharacterReferenceToNewline(t *testing.T) {
	tok := New()
	tok.Feed([]byte(`<a x="&#10;"/>`))
	require.NoError(t, tok.Finish())
	events := drain(t, tok)
	require.Equal(t, "\n", events[1].Value)
}

func TestFiveByteUTF8SequenceRejected(t *testing.T) {
	tok := New()
	// 0xF8 is a lead byte implying a 5-byte sequence, never valid UTF-8.
	tok.Feed([]byte("<a>"))
	tok.Feed([]byte{0xF8, 0x88, 0x80, 0x80, 0x80})
	events := drain(t, tok)
	last := events[len(events)-1]
	require.Equal(t, EventError, last.Type)
	require.Equal(t, ErrBadUtf8, last.Err.Kind)
}

func TestFourByteUTF8SplitAcrossThreeFeeds(t *testing.T) {
	tok := New()
	seq := []byte{0xF0, 0x9F, 0x98, 0x80} // U+1F600, a 4-byte sequence
	tok.Feed([]byte("<a>"))
	tok.Feed(seq[:1])
	tok.Feed(seq[1:3])
	tok.Feed(seq[3:])
	tok.Feed([]byte("</a>"))
	require.NoError(t, tok.Finish())

	events := drain(t, tok)
	require.Equal(t, []EventType{EventStartTagOpen, EventStartTagContent, EventCData, EventEndTag}, names(events))
	require.Equal(t, string(seq), events[2].Value)
}

func TestDoctypeWithInternalSubsetIsSkipped(t *testing.T) {
	tok := New()
	tok.Feed([]byte("<!DOCTYPE a [ <!ENTITY e 'x'> ]><a>&e;</a>"))
	events := drain(t, tok)
	last := events[len(events)-1]
	require.Equal(t, EventError, last.Type)
	require.Equal(t, ErrBadEntity, last.Err.Kind)
}

func TestCommentWithDoubleDashRejected(t *testing.T) {
	tok := New()
	tok.Feed([]byte("<a><!-- oops -- --></a>"))
	events := drain(t, tok)
	last := events[len(events)-1]
	require.Equal(t, EventError, last.Type)
	require.Equal(t, ErrBadSyntax, last.Err.Kind)
}

func TestCDataSectionNoReferenceExpansion(t *testing.T) {
	tok := New()
	tok.Feed([]byte("<a><![CDATA[1 & 2 < 3]]></a>"))
	require.NoError(t, tok.Finish())
	events := drain(t, tok)
	var cdata string
	for _, e := range events {
		if e.Type == EventCData {
			cdata = e.Value
		}
	}
	require.Equal(t, "1 & 2 < 3", cdata)
}

func TestDuplicateAttributeRejected(t *testing.T) {
	tok := New()
	tok.Feed([]byte(`<a x="1" x="2"/>`))
	events := drain(t, tok)
	last := events[len(events)-1]
	require.Equal(t, EventError, last.Type)
	require.Equal(t, ErrDuplicateAttribute, last.Err.Kind)
}

func TestUnsupportedEncodingRejected(t *testing.T) {
	tok := New()
	tok.Feed([]byte(`<?xml version="1.0" encoding="latin1"?><a/>`))
	events := drain(t, tok)
	last := events[len(events)-1]
	require.Equal(t, EventError, last.Type)
	require.Equal(t, ErrUnsupportedEncoding, last.Err.Kind)
}

func TestUnexpectedEOFInsideOpenTag(t *testing.T) {
	tok := New()
	tok.Feed([]byte(`<a x="1"`))
	err := tok.Finish()
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, ErrUnexpectedEOF, pe.Kind)
}

// Property 2 (spec section 8): identical SAX event stream for every byte
// chunking of the same valid input.
func TestChunkingIndependence(t *testing.T) {
	input := []byte(`<doc a="1"><x>hello</x><y/></doc>`)
	partitions := [][]int{
		{len(input)},
		{1, len(input) - 1},
		{5, 5, len(input) - 10},
	}
	var want []EventType
	for i, cuts := range partitions {
		tok := New()
		off := 0
		for _, n := range cuts {
			tok.Feed(input[off : off+n])
			off += n
		}
		require.NoError(t, tok.Finish())
		events := drain(t, tok)
		got := names(events)
		if i == 0 {
			want = got
		} else {
			require.Equal(t, want, got, "partition %v produced a different event stream", cuts)
		}
	}
}
