package partner

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// parseGrid parses RenderGrid output and returns the container and its
// column elements.
func parseGrid(t *testing.T, out string) (*html.Node, []*html.Node) {
	t.Helper()
	nodes, err := html.ParseFragment(strings.NewReader(out), &html.Node{
		Type: html.ElementNode, DataAtom: atom.Body, Data: "body",
	})
	require.NoError(t, err)
	require.Len(t, nodes, 1)

	container := nodes[0]
	require.Equal(t, "div", container.Data)
	require.Equal(t, "wp-block-columns is-style-borders", attr(container, "class"))

	var columns []*html.Node
	for c := container.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			require.Equal(t, "wp-block-column", attr(c, "class"))
			columns = append(columns, c)
		}
	}
	return container, columns
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func findAll(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// names returns the partner names in a column, in order.
func names(col *html.Node) []string {
	var out []string
	for _, p := range findAll(col, "p") {
		out = append(out, text(p))
	}
	return out
}

func TestRenderGridRoundRobin(t *testing.T) {
	for n := 0; n <= 10; n++ {
		s := newMemStore()
		var want [3][]string
		for i := 0; i < n; i++ {
			name := string(rune('A' + i))
			s.addPartner(name, "", "")
			want[i%3] = append(want[i%3], name)
		}

		_, columns := parseGrid(t, RenderGrid(context.Background(), s, fakeAssets{}))
		require.Len(t, columns, 3, "n=%d", n)
		for c := 0; c < 3; c++ {
			assert.Equal(t, want[c], names(columns[c]), "n=%d column %d", n, c)
		}
	}
}

func TestRenderGridEmpty(t *testing.T) {
	out := RenderGrid(context.Background(), newMemStore(), fakeAssets{})
	assert.Equal(t,
		`<div class="wp-block-columns is-style-borders">`+
			`<div class="wp-block-column"></div><div class="wp-block-column"></div><div class="wp-block-column"></div>`+
			`</div>`, out)
}

func TestRenderGridListError(t *testing.T) {
	s := newMemStore()
	s.addPartner("A", "", "")
	s.failList = true

	_, columns := parseGrid(t, RenderGrid(context.Background(), s, fakeAssets{}))
	require.Len(t, columns, 3)
	for _, c := range columns {
		assert.Nil(t, c.FirstChild)
	}
}

func TestRenderGridLinkMatrix(t *testing.T) {
	assets := fakeAssets{known: map[int64]string{5: "https://cdn.test/logo.png"}}

	tests := []struct {
		name        string
		logo, url   string
		wantImg     bool
		wantLinks   int
		wantNameURL string
	}{
		{"logo and url", "5", "https://partner.example", true, 2, "https://partner.example"},
		{"logo only", "5", "", true, 0, ""},
		{"url only", "", "https://partner.example", false, 1, "https://partner.example"},
		{"neither", "", "", false, 0, ""},
		{"unresolvable logo", "404", "https://partner.example", false, 1, "https://partner.example"},
		{"non numeric logo", "abc", "", false, 0, ""},
		{"unsafe stored url", "5", "javascript:alert(1)", true, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newMemStore()
			s.addPartner("Partner", tt.logo, tt.url)

			_, columns := parseGrid(t, RenderGrid(context.Background(), s, assets))
			col := columns[0]

			imgs := findAll(col, "img")
			if tt.wantImg {
				require.Len(t, imgs, 1)
				assert.Equal(t, "https://cdn.test/logo.png", attr(imgs[0], "src"))
				assert.Equal(t, "aligncenter", attr(imgs[0], "class"))
				require.Len(t, findAll(col, "figure"), 1)
				assert.Equal(t, "wp-block-image", attr(findAll(col, "figure")[0], "class"))
			} else {
				assert.Empty(t, imgs)
				assert.Empty(t, findAll(col, "figure"))
			}

			links := findAll(col, "a")
			require.Len(t, links, tt.wantLinks)
			for _, a := range links {
				assert.Equal(t, tt.url, attr(a, "href"))
			}
			if tt.wantImg && tt.wantLinks == 2 {
				assert.NotEmpty(t, findAll(links[0], "img"), "logo should sit inside the first link")
			}

			p := findAll(col, "p")
			require.Len(t, p, 1)
			assert.Equal(t, "has-text-align-center", attr(p[0], "class"))
			assert.Equal(t, "Partner", text(p[0]))
			nameLinks := findAll(p[0], "a")
			if tt.wantNameURL != "" {
				require.Len(t, nameLinks, 1)
				assert.Equal(t, tt.wantNameURL, attr(nameLinks[0], "href"))
			} else {
				assert.Empty(t, nameLinks)
			}

			hr := findAll(col, "hr")
			require.Len(t, hr, 1)
			assert.Equal(t, "wp-block-separator is-style-wide", attr(hr[0], "class"))
		})
	}
}

// Four partners A, B, C, D where D has neither logo nor URL.
func TestRenderGridSample(t *testing.T) {
	s := newMemStore()
	s.addPartner("A", "1", "https://a.example")
	s.addPartner("B", "2", "https://b.example")
	s.addPartner("C", "3", "https://c.example")
	s.addPartner("D <&> Co", "", "")
	assets := fakeAssets{known: map[int64]string{
		1: "https://cdn.test/a.png", 2: "https://cdn.test/b.png", 3: "https://cdn.test/c.png",
	}}

	out := RenderGrid(context.Background(), s, assets)
	_, columns := parseGrid(t, out)

	assert.Equal(t, []string{"A", "D <&> Co"}, names(columns[0]))
	assert.Equal(t, []string{"B"}, names(columns[1]))
	assert.Equal(t, []string{"C"}, names(columns[2]))

	// D's block is just its escaped name and a separator.
	assert.Contains(t, out, `<p class="has-text-align-center">D &lt;&amp;&gt; Co</p><hr class="wp-block-separator is-style-wide">`)
	assert.Len(t, findAll(columns[0], "img"), 1)
	assert.Len(t, findAll(columns[0], "hr"), 2)
}

func TestRenderGridSanitizesColumns(t *testing.T) {
	s := newMemStore()
	s.addPartner("Evil", "1", "https://evil.example/\"onmouseover=\"alert(1)")
	assets := fakeAssets{known: map[int64]string{1: `https://cdn.test/x.png" onerror="alert(1)`}}

	out := RenderGrid(context.Background(), s, assets)
	assert.NotContains(t, out, `onerror="`)
	assert.NotContains(t, out, `onmouseover="`)

	_, columns := parseGrid(t, out)
	for _, n := range findAll(columns[0], "img") {
		for _, a := range n.Attr {
			assert.Contains(t, []string{"src", "class"}, a.Key)
		}
	}
}

func TestRenderGridQuotedHomepage(t *testing.T) {
	s := newMemStore()
	s.addPartner("KQED", "", "https://kqed.org/?q=&#34;news&#34;")
	s.addPartner("WHYY", "", `https://whyy.org/it's`)

	out := RenderGrid(context.Background(), s, fakeAssets{})

	assert.Contains(t, out, `<a href="https://kqed.org/?q=%22news%22"`)
	assert.Contains(t, out, `<a href="https://whyy.org/it%27s"`)
	assert.NotContains(t, out, "&amp;#34;")
	assert.NotContains(t, out, "&amp;#39;")
}
