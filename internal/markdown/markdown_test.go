package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToHTML(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		contains []string
	}{
		{"paragraph", "Hello world.", []string{"<p>Hello world.</p>"}},
		{"heading id", "## Our Partners", []string{`<h2 id="our-partners">Our Partners</h2>`}},
		{"raw html kept", "<figure class=\"x\"></figure>\n\ntext", []string{`<figure class="x"></figure>`}},
		{"shortcode untouched", "[partners]", []string{"<p>[partners]</p>"}},
		{"shortcode attributes", `[partners title="Our friends" url="https://example.com/a--b"]`,
			[]string{`title=&quot;Our friends&quot;`, `url=&quot;https://example.com/a--b&quot;]`}},
		{"strikethrough", "~~gone~~", []string{"<del>gone</del>"}},
		{"table", "| a | b |\n|---|---|\n| 1 | 2 |", []string{"<table>", "<td>1</td>"}},
		{"code block", "```go\nfunc main() {}\n```", []string{"<pre", "func"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ToHTML(tt.in)
			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
		})
	}
}
