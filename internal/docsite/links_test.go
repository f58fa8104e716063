package docsite

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractMarkdownLinks(t *testing.T) {
	body := []byte(`# Solvers

See [Bishop](bishop.md) and the [reference][ref].

![cross section](img/section.png)

<https://example.com/docs>

[ref]: reference.md
`)
	links, err := ExtractMarkdownLinks(body)
	require.NoError(t, err)

	dests := make(map[string]LinkKind, len(links))
	for _, l := range links {
		dests[l.Destination] = l.Kind
	}
	assert.Equal(t, LinkKindInline, dests["bishop.md"])
	assert.Equal(t, LinkKindInline, dests["reference.md"])
	assert.Equal(t, LinkKindImage, dests["img/section.png"])
	assert.Equal(t, LinkKindAuto, dests["https://example.com/docs"])
}

func TestExtractHTMLLinks(t *testing.T) {
	page := `<html><head>
<link rel="stylesheet" href="css/extra.css">
<script src="js/katex.js"></script>
</head><body>
<a href="api/solve/">Solve</a>
<img src="img/section.png" alt="section">
</body></html>`

	links, err := ExtractHTMLLinks(strings.NewReader(page))
	require.NoError(t, err)
	require.Len(t, links, 4)

	byDest := make(map[string]Link, len(links))
	for _, l := range links {
		byDest[l.Destination] = l
	}
	assert.Equal(t, "Solve", byDest["api/solve/"].Text)
	assert.Contains(t, byDest, "css/extra.css")
	assert.Contains(t, byDest, "js/katex.js")
	assert.Contains(t, byDest, "img/section.png")
}
