package dom

import (
	"strings"
	"testing"

	"github.com/wilkmaciej/xpath"
)

// syntheticFeed builds an in-memory document shaped like the teacher's
// perf_test fixture (a flat list of "item" elements, each carrying a few
// child fields) without depending on an external gzip file, the way
// go-spew's own benchmark fixtures are generated in-process rather than
// read from disk.
func syntheticFeed(n int) []byte {
	var b strings.Builder
	b.WriteString(`<feed xmlns:g="http://base.google.com/ns/1.0">`)
	for i := 0; i < n; i++ {
		b.WriteString(`<item><g:id>`)
		b.WriteString(strings.Repeat("x", 1)) // keep ids short but present
		b.WriteString(`</g:id><g:title>Product</g:title><g:price>9.99</g:price></item>`)
	}
	b.WriteString(`</feed>`)
	return []byte(b.String())
}

func BenchmarkParse(b *testing.B) {
	data := syntheticFeed(2000)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Parse(data); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkParseReader(b *testing.B) {
	data := syntheticFeed(2000)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ParseReader(strings.NewReader(string(data)), 0); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkXPathOverItems(b *testing.B) {
	data := syntheticFeed(2000)
	doc, err := Parse(data)
	if err != nil {
		b.Fatal(err)
	}
	exprTitle := xpath.MustCompile("g:title")
	exprPrice := xpath.MustCompile("g:price")

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var count int
		for item := range doc.RootElement().Descendants() {
			if item.Name() != "item" {
				continue
			}
			_ = ElementString(item.Evaluate(exprTitle))
			_ = ElementString(item.Evaluate(exprPrice))
			count++
		}
		if count != 2000 {
			b.Fatalf("expected 2000 items, got %d", count)
		}
	}
}

func BenchmarkSerialize(b *testing.B) {
	doc, err := Parse(syntheticFeed(2000))
	if err != nil {
		b.Fatal(err)
	}
	root := doc.RootElement()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Serialize(root)
	}
}
