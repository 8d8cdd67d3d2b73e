package markup

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func elementNames(first Node) []string {
	var names []string
	for n := first; n != nil; n = n.NextSibling() {
		if n.IsElement() {
			names = append(names, n.Name())
		}
	}
	return names
}

func TestParseBuildsTree(t *testing.T) {
	doc := `<?xml version="1.0"?>
<!-- leading comment -->
<rss version="2.0" xmlns:itunes="http://www.itunes.com/dtds/podcast-1.0.dtd">
  <channel>
    <title>Show</title>
    <item><title>One</title></item>
    <itunes:author>Host</itunes:author>
    <item><title>Two</title><enclosure url="https://example.com/2.mp3" length="1" type="audio/mpeg"/></item>
  </channel>
</rss>`

	root, err := NewParser().Parse(strings.NewReader(doc))
	require.NoError(t, err)
	require.NotNil(t, root)

	assert.Equal(t, "rss", root.Name())
	assert.Nil(t, root.Parent())
	version, ok := root.Attr("version")
	assert.True(t, ok)
	assert.Equal(t, "2.0", version)

	var channel Node
	for c := root.FirstChild(); c != nil; c = c.NextSibling() {
		if c.IsElement() && c.Name() == "channel" {
			channel = c
		}
	}
	require.NotNil(t, channel)
	assert.Equal(t, root, channel.Parent())

	assert.Equal(t, []string{"title", "item", "author", "item"}, elementNames(channel.FirstChild()))

	// Walk backward from the end, skipping whitespace text nodes.
	var backward []string
	for n := channel.LastChild(); n != nil; n = n.PrevSibling() {
		if n.IsElement() {
			backward = append(backward, n.Name())
		}
	}
	assert.Equal(t, []string{"item", "author", "item", "title"}, backward)
}

func TestNamespaceIsKept(t *testing.T) {
	doc := `<rss xmlns:itunes="http://www.itunes.com/dtds/podcast-1.0.dtd"><channel><itunes:title>x</itunes:title><title>y</title></channel></rss>`

	root, err := NewParser().Parse(strings.NewReader(doc))
	require.NoError(t, err)

	channel := root.FirstChild()
	first := channel.FirstChild()
	assert.Equal(t, "title", first.Name())
	assert.NotEmpty(t, first.Space())

	second := first.NextSibling()
	assert.Equal(t, "title", second.Name())
	assert.Empty(t, second.Space())
	assert.Equal(t, first, second.PrevSibling())
}

func TestTextConcatenatesDescendants(t *testing.T) {
	doc := `<a>one <b>two</b><![CDATA[ <three> ]]>&amp;</a>`

	root, err := NewParser().Parse(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, "one two <three> &", root.Text())
}

func TestAttrMissing(t *testing.T) {
	root, err := NewParser().Parse(strings.NewReader(`<enclosure type="audio/mpeg"/>`))
	require.NoError(t, err)

	_, ok := root.Attr("url")
	assert.False(t, ok)
	assert.Nil(t, root.FirstChild())
	assert.Nil(t, root.LastChild())
	assert.Nil(t, root.PrevSibling())
	assert.Nil(t, root.NextSibling())
}

func TestParseEmptyDocument(t *testing.T) {
	root, err := NewParser().Parse(strings.NewReader(`<?xml version="1.0"?>`))
	require.NoError(t, err)
	assert.Nil(t, root)
}

func TestParseMalformed(t *testing.T) {
	_, err := NewParser().Parse(strings.NewReader(`<rss><channel>`))
	assert.Error(t, err)
}

func TestParseLegacyCharset(t *testing.T) {
	var doc bytes.Buffer
	doc.WriteString(`<?xml version="1.0" encoding="ISO-8859-1"?><title>caf`)
	doc.WriteByte(0xe9)
	doc.WriteString(`</title>`)

	root, err := NewParser().Parse(&doc)
	require.NoError(t, err)
	assert.Equal(t, "café", root.Text())
}
