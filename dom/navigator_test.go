package dom

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wilkmaciej/xpath"
)

// Conformance test for Navigator as an xpath.NodeNavigator implementation,
// the supplemented feature promised alongside the rest of the dom package:
// a caller's own compiled *xpath.Expr must evaluate correctly against a
// Document through this module's traversal primitives alone.
func TestNavigatorChildAxis(t *testing.T) {
	doc, err := Parse([]byte(`<root><parent><child>text</child></parent></root>`))
	require.NoError(t, err)

	parent := doc.RootElement().FirstChild()
	expr := xpath.MustCompile("child")
	result := parent.Evaluate(expr)
	nodes, ok := result.([]any)
	require.True(t, ok)
	require.Len(t, nodes, 1)
	child, ok := nodes[0].(Cursor)
	require.True(t, ok)
	require.Equal(t, "child", child.Name())
}

func TestNavigatorAttributeAxis(t *testing.T) {
	doc, err := Parse([]byte(`<root><item id="123" name="test">content</item></root>`))
	require.NoError(t, err)

	expr := xpath.MustCompile("item/@*")
	result := doc.RootElement().Evaluate(expr)
	nodes, ok := result.([]any)
	require.True(t, ok)
	require.Len(t, nodes, 2)
	for _, n := range nodes {
		_, ok := n.(*Attr)
		require.True(t, ok)
	}
}

func TestNavigatorTextAndStringFunctions(t *testing.T) {
	doc, err := Parse([]byte(`<root><a>hello</a></root>`))
	require.NoError(t, err)

	expr := xpath.MustCompile("a/string()")
	result := doc.RootElement().Evaluate(expr)
	require.Equal(t, "hello", ElementString(result))
}

func TestNavigatorFollowingAndPrecedingSiblingAxes(t *testing.T) {
	doc, err := Parse([]byte(`<root><a/><b/><c/></root>`))
	require.NoError(t, err)

	expr := xpath.MustCompile("b/following-sibling::*")
	result := doc.RootElement().Evaluate(expr)
	nodes := result.([]any)
	require.Len(t, nodes, 1)
	require.Equal(t, "c", nodes[0].(Cursor).Name())

	expr2 := xpath.MustCompile("b/preceding-sibling::*")
	result2 := doc.RootElement().Evaluate(expr2)
	nodes2 := result2.([]any)
	require.Len(t, nodes2, 1)
	require.Equal(t, "a", nodes2[0].(Cursor).Name())
}

func TestNavigatorParentAxis(t *testing.T) {
	doc, err := Parse([]byte(`<root><inner><target/></inner></root>`))
	require.NoError(t, err)

	expr := xpath.MustCompile("inner/target/parent::*")
	result := doc.RootElement().Evaluate(expr)
	nodes := result.([]any)
	require.Len(t, nodes, 1)
	require.Equal(t, "inner", nodes[0].(Cursor).Name())
}

// The package-level Evaluate function is the document-rooted convenience
// form; "/" from the document root must reach the single root element.
func TestPackageLevelEvaluateIsDocumentRooted(t *testing.T) {
	doc, err := Parse([]byte(`<root><a/></root>`))
	require.NoError(t, err)

	expr := xpath.MustCompile("/root/a")
	result := Evaluate(doc, expr)
	nodes := result.([]any)
	require.Len(t, nodes, 1)
	require.Equal(t, "a", nodes[0].(Cursor).Name())
}
