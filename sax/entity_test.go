package sax

import (
	"testing"

	"github.com/orisano/gosax"
	"github.com/stretchr/testify/require"
)

// Differential test against gosax.Unescape (spec section 4.3's five
// predefined entities and numeric character references), grounded on
// orisano-gosax/gosax.go's Unescape: both this module's expandText and
// gosax's Unescape must agree on every input that uses only the predefined
// entity set and numeric references, since that's the subset of entity
// syntax spec section 1 actually commits to supporting.
func TestEntityExpansionMatchesGosax(t *testing.T) {
	cases := []string{
		"plain text",
		"a &amp; b",
		"&lt;tag&gt;",
		"&apos;&quot;",
		"&#65;&#x42;",
		"mixed &amp; &#67; text",
	}
	for _, in := range cases {
		got, err := expandText([]byte(in), Position{Line: 1, Column: 1})
		require.Nil(t, err)
		wantBytes, gerr := gosax.Unescape([]byte(in))
		require.NoError(t, gerr)
		require.Equal(t, string(wantBytes), got, "input %q", in)
	}
}
