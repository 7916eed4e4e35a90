package xmpp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wilkmaciej/ikslite/dom"
)

func TestSessionReportsStreamOpenThenStanza(t *testing.T) {
	s := NewSession()
	require.Equal(t, Negotiating, s.State())

	s.RecvBytes([]byte(`<stream:s xmlns:stream="ns" to="example.com">`))
	ev, ok := s.PollEvent()
	require.True(t, ok)
	require.Equal(t, StreamOpened, ev.Type)
	require.Equal(t, "stream:s", ev.Name)
	require.Equal(t, Open, s.State())

	s.RecvBytes([]byte(`<msg id="1">hi</msg>`))
	ev, ok = s.PollEvent()
	require.True(t, ok)
	require.Equal(t, StanzaReceived, ev.Type)
	require.NotNil(t, ev.Stanza)
	require.Equal(t, "msg", ev.Stanza.RootElement().Name())

	s.RecvBytes([]byte(`</stream:s>`))
	ev, ok = s.PollEvent()
	require.True(t, ok)
	require.Equal(t, StreamClosed, ev.Type)
	require.Equal(t, Closed, s.State())
}

func TestSessionPollEventFalseWhenNoCompleteEventBuffered(t *testing.T) {
	s := NewSession()
	s.RecvBytes([]byte(`<stream:s`))
	_, ok := s.PollEvent()
	require.False(t, ok)
}

// A registered Negotiator observes the stream-open attributes and can steer
// session state; this is the hook a real protocol implementation plugs SASL
// or resource-binding sequencing into.
func TestNegotiatorRunsAfterStreamOpened(t *testing.T) {
	s := NewSession()
	var ran bool
	Use(s, func(current State, attrs []dom.Attr) State {
		ran = true
		return current
	})

	s.RecvBytes([]byte(`<s a="1">`))
	ev, ok := s.PollEvent()
	require.True(t, ok)
	require.Equal(t, StreamOpened, ev.Type)
	require.Len(t, ev.Attrs, 1)
	require.Equal(t, "a", ev.Attrs[0].Name)
	require.Equal(t, "1", ev.Attrs[0].Value)
	require.True(t, ran)
}

func TestSendStanzaSerializesWithoutPerformingIO(t *testing.T) {
	s := NewSession()
	s.RecvBytes([]byte(`<s><msg id="1">hi</msg></s>`))
	_, _ = s.PollEvent() // StreamOpened
	ev, ok := s.PollEvent()
	require.True(t, ok)
	require.Equal(t, StanzaReceived, ev.Type)

	b, err := s.SendStanza(ev.Stanza)
	require.NoError(t, err)
	require.Equal(t, `<msg id="1">hi</msg>`, string(b))
}

func TestTickIsANoOpHookForTimeDrivenBehavior(t *testing.T) {
	s := NewSession()
	s.Tick(time.Now())
}
