package dom

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Scenario 5: stream open, a sequence of stanzas, then stream close, fed in
// arbitrary chunks.
func TestStreamOpenStanzasClose(t *testing.T) {
	sp := NewStreamParser()
	sp.Feed([]byte(`<stream:s xmlns:stream="ns" to="example.com">`))
	sp.Feed([]byte(`<msg id="1">hi</msg>`))
	sp.Feed([]byte(`<msg id="2"/>`))
	sp.Feed([]byte(`</stream:s>`))

	ev, ok := sp.Next()
	require.True(t, ok)
	require.Equal(t, StreamOpen, ev.Type)
	require.Equal(t, "stream:s", ev.Name)

	ev, ok = sp.Next()
	require.True(t, ok)
	require.Equal(t, Stanza, ev.Type)
	require.Equal(t, "msg", ev.Doc.RootElement().Name())
	id, _ := ev.Doc.RootElement().Attribute("id")
	require.Equal(t, "1", id)
	require.Equal(t, "hi", ev.Doc.RootElement().TextContent())

	ev, ok = sp.Next()
	require.True(t, ok)
	require.Equal(t, Stanza, ev.Type)
	id2, _ := ev.Doc.RootElement().Attribute("id")
	require.Equal(t, "2", id2)

	ev, ok = sp.Next()
	require.True(t, ok)
	require.Equal(t, StreamClose, ev.Type)

	require.NoError(t, sp.Finish())
}

// A self-closing outer stream element must yield StreamOpen immediately
// followed by StreamClose, with no stanzas in between.
func TestEmptyStreamOpensAndClosesImmediately(t *testing.T) {
	sp := NewStreamParser()
	sp.Feed([]byte(`<stream:s xmlns:stream="ns"/>`))

	ev, ok := sp.Next()
	require.True(t, ok)
	require.Equal(t, StreamOpen, ev.Type)

	ev, ok = sp.Next()
	require.True(t, ok)
	require.Equal(t, StreamClose, ev.Type)

	require.NoError(t, sp.Finish())
}

// A stanza with nested child elements exercises the depth counter beyond 1.
func TestStanzaWithNestedChildren(t *testing.T) {
	sp := NewStreamParser()
	sp.Feed([]byte(`<s>`))
	sp.Feed([]byte(`<iq type="get"><query xmlns="ns"><item/></query></iq>`))
	sp.Feed([]byte(`</s>`))

	ev, ok := sp.Next()
	require.True(t, ok)
	require.Equal(t, StreamOpen, ev.Type)

	ev, ok = sp.Next()
	require.True(t, ok)
	require.Equal(t, Stanza, ev.Type)
	root := ev.Doc.RootElement()
	require.Equal(t, "iq", root.Name())
	query := root.FirstChild()
	require.Equal(t, "query", query.Name())
	item := query.FirstChild()
	require.Equal(t, "item", item.Name())

	ev, ok = sp.Next()
	require.True(t, ok)
	require.Equal(t, StreamClose, ev.Type)
}

func TestStreamReaderPullsEventsFromABlockingReader(t *testing.T) {
	r := strings.NewReader(`<s><msg id="1"/><msg id="2"/></s>`)
	sr := NewStreamReader(r)

	ev, err := sr.Next()
	require.NoError(t, err)
	require.Equal(t, StreamOpen, ev.Type)

	ev, err = sr.Next()
	require.NoError(t, err)
	require.Equal(t, Stanza, ev.Type)
	id, _ := ev.Doc.RootElement().Attribute("id")
	require.Equal(t, "1", id)

	ev, err = sr.Next()
	require.NoError(t, err)
	require.Equal(t, Stanza, ev.Type)

	ev, err = sr.Next()
	require.NoError(t, err)
	require.Equal(t, StreamClose, ev.Type)

	_, err = sr.Next()
	require.Equal(t, io.EOF, err)
}

func TestStreamEndsBeforeOuterCloseIsUnexpectedEOF(t *testing.T) {
	sp := NewStreamParser()
	sp.Feed([]byte(`<s><msg/>`))
	for {
		_, ok := sp.Next()
		if !ok {
			break
		}
	}
	err := sp.Finish()
	require.Error(t, err)
}
