package parser

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestXMLParser_Parse_Success(t *testing.T) {
	xmlData := `
	<rss xmlns:media="http://search.yahoo.com/mrss/" xmlns:content="http://purl.org/rss/1.0/modules/content/">
	<channel>
	<title>Test Feed</title>
	<link>https://example.com</link>
	<description>Test Description</description>
	<item>
	<title>Item 1</title>
	<link>https://example.com/item1</link>
	<description>Item 1 Description</description>
	<pubDate>Mon, 02 Jan 2006 15:04:05 MST</pubDate>
	<media:content url="https://cdn.example.com/1.jpg" medium="image"/>
	</item>
	<item>
	<title>Item 2</title>
	<link>https://example.com/item2</link>
	<description>Item 2 Description</description>
	<content:encoded><![CDATA[<p>Full <b>body</b></p>]]></content:encoded>
	<pubDate>Tue, 03 Jan 2006 12:00:00 GMT</pubDate>
	<enclosure url="https://cdn.example.com/2.png" type="image/png" length="1"/>
	</item>
	</channel>
	</rss>`

	feed, err := NewXMLParser(testLogger()).Parse(context.Background(), strings.NewReader(xmlData))

	require.NoError(t, err)
	require.NotNil(t, feed)
	assert.Equal(t, "Test Feed", feed.Title)
	assert.Equal(t, "https://example.com", feed.Link)
	require.Len(t, feed.Items, 2)

	first := feed.Items[0]
	assert.Equal(t, "Item 1", first.Title)
	assert.Equal(t, "https://example.com/item1", first.Link)
	assert.Equal(t, "https://cdn.example.com/1.jpg", first.Image)
	require.NotNil(t, first.PubDate)
	assert.WithinDuration(t, time.Date(2006, 1, 2, 15, 4, 5, 0, time.UTC), *first.PubDate, time.Second)

	second := feed.Items[1]
	assert.Equal(t, "<p>Full <b>body</b></p>", second.Content)
	assert.Equal(t, "https://cdn.example.com/2.png", second.Image)
	require.NotNil(t, second.PubDate)
	assert.WithinDuration(t, time.Date(2006, 1, 3, 12, 0, 0, 0, time.UTC), *second.PubDate, time.Second)
}

func TestXMLParser_Parse_ImageFromDescription(t *testing.T) {
	xmlData := `<rss><channel><title>T</title>
	<item>
	<title>With inline image</title>
	<link>https://example.com/a</link>
	<description>&lt;img class="x" src="https://cdn.example.com/inline.webp"&gt; Text&nbsp;here</description>
	</item>
	</channel></rss>`

	feed, err := NewXMLParser(testLogger()).Parse(context.Background(), strings.NewReader(xmlData))

	require.NoError(t, err)
	require.Len(t, feed.Items, 1)
	assert.Equal(t, "https://cdn.example.com/inline.webp", feed.Items[0].Image)
}

func TestXMLParser_Parse_KeepsItemsWithBadDates(t *testing.T) {
	xmlData := `<rss><channel><title>T</title>
	<item><title>Undated</title><link>https://example.com/u</link><pubDate>sometime</pubDate></item>
	</channel></rss>`

	feed, err := NewXMLParser(testLogger()).Parse(context.Background(), strings.NewReader(xmlData))

	require.NoError(t, err)
	require.Len(t, feed.Items, 1)
	assert.Nil(t, feed.Items[0].PubDate)
}

func TestXMLParser_Parse_InvalidXML(t *testing.T) {
	invalidXML := `
	<rss>
	<channel>
	<title>Test Feed</title>
	<invalid-tag>
	</channel>
	</rss>`

	feed, err := NewXMLParser(testLogger()).Parse(context.Background(), strings.NewReader(invalidXML))

	assert.Nil(t, feed)
	assert.ErrorContains(t, err, "failed to decode XML")
}

func TestXMLParser_Parse_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	feed, err := NewXMLParser(testLogger()).Parse(ctx, strings.NewReader(`<rss><channel></channel></rss>`))

	assert.True(t, errors.Is(err, context.Canceled))
	assert.Nil(t, feed)
}

func TestXMLParser_Parse_EmptyFeed(t *testing.T) {
	xmlData := `
	<rss>
	<channel>
	<title>Empty Feed</title>
	<link>https://example.com</link>
	<description>Empty Description</description>
	</channel>
	</rss>`

	var logs bytes.Buffer
	log := slog.New(slog.NewTextHandler(&logs, nil))

	feed, err := NewXMLParser(log).Parse(context.Background(), strings.NewReader(xmlData))

	require.NoError(t, err)
	require.NotNil(t, feed)
	assert.Equal(t, "Empty Feed", feed.Title)
	assert.Empty(t, feed.Items)
	assert.Contains(t, logs.String(), "Feed has no items")
}

func TestXMLParser_Parse_Atom(t *testing.T) {
	xmlData := `<?xml version="1.0" encoding="utf-8"?>
	<feed xmlns="http://www.w3.org/2005/Atom" xmlns:media="http://search.yahoo.com/mrss/">
	<title>Atom Games</title>
	<subtitle>Daily news</subtitle>
	<link rel="self" href="https://example.com/atom.xml"/>
	<link rel="alternate" href="https://example.com/"/>
	<entry>
	<title type="html">Patch &amp;amp; notes</title>
	<link rel="alternate" href="https://example.com/patch"/>
	<link rel="enclosure" type="image/jpeg" href="https://cdn.example.com/patch.jpg"/>
	<published>2026-10-01T09:00:00Z</published>
	<summary type="html">&lt;p&gt;Fixes&lt;/p&gt;</summary>
	<content type="xhtml"><div xmlns="http://www.w3.org/1999/xhtml"><p>Full body</p></div></content>
	</entry>
	<entry>
	<title>Update only</title>
	<link href="https://example.com/update"/>
	<updated>2026-10-02T10:30:00Z</updated>
	<media:thumbnail url="https://cdn.example.com/update.png"/>
	</entry>
	</feed>`

	feed, err := NewXMLParser(testLogger()).Parse(context.Background(), strings.NewReader(xmlData))

	require.NoError(t, err)
	assert.Equal(t, "Atom Games", feed.Title)
	assert.Equal(t, "https://example.com/", feed.Link)
	assert.Equal(t, "Daily news", feed.Description)
	require.Len(t, feed.Items, 2)

	first := feed.Items[0]
	assert.Equal(t, "Patch &amp; notes", first.Title)
	assert.Equal(t, "https://example.com/patch", first.Link)
	assert.Equal(t, "<p>Fixes</p>", first.Description)
	assert.Contains(t, first.Content, "Full body")
	assert.Equal(t, "https://cdn.example.com/patch.jpg", first.Image)
	require.NotNil(t, first.PubDate)
	assert.Equal(t, time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC), first.PubDate.UTC())

	second := feed.Items[1]
	assert.Equal(t, "https://example.com/update", second.Link)
	assert.Equal(t, "https://cdn.example.com/update.png", second.Image)
	require.NotNil(t, second.PubDate)
	assert.Equal(t, time.Date(2026, 10, 2, 10, 30, 0, 0, time.UTC), second.PubDate.UTC())
}

func TestXMLParser_Parse_RDF(t *testing.T) {
	xmlData := `<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#" xmlns="http://purl.org/rss/1.0/">
	<channel><title>RDF Feed</title><link>https://example.com</link></channel>
	<item><title>One</title><link>https://example.com/1</link></item>
	<item><title>Two</title><link>https://example.com/2</link></item>
	</rdf:RDF>`

	feed, err := NewXMLParser(testLogger()).Parse(context.Background(), strings.NewReader(xmlData))

	require.NoError(t, err)
	assert.Equal(t, "RDF Feed", feed.Title)
	require.Len(t, feed.Items, 2)
	assert.Equal(t, "https://example.com/2", feed.Items[1].Link)
}

func TestParsePubDate(t *testing.T) {
	ts, err := parsePubDate("2024-05-01T10:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, 2024, ts.Year())

	_, err = parsePubDate("yesterday")
	assert.Error(t, err)
}
