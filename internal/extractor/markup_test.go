package extractor

import "testing"

func TestFlattenXML(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"tags become spaces", "<a:t>one</a:t><a:t>two</a:t>", "one two"},
		{"named entities", "a &amp; b &lt;c&gt; &quot;d&quot; &apos;e&apos;", `a & b <c> "d" 'e'`},
		{"decimal entity", "dash &#8212; here", "dash — here"},
		{"hex entity", "&#x41;&#x42;", "AB"},
		{"unknown entity passes through", "&bogus; stays", "&bogus; stays"},
		{"lone ampersand", "salt & pepper", "salt & pepper"},
		{"whitespace collapse", "  a \n\t b  ", "a b"},
		{"attributes are invisible", `<w:t xml:space="preserve">kept</w:t>`, "kept"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := flattenXML(tc.in); got != tc.want {
				t.Fatalf("flattenXML(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
