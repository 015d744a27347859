package parser

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"gamepulse/internal/domain"
)

var imgSrcRe = regexp.MustCompile(`(?i)<img[^>]+src=["']([^"']+)["']`)

// documentXML покрывает корневые элементы RSS 2.0 (<rss><channel>),
// RSS 1.0 (<rdf:RDF>, записи лежат рядом с channel) и Atom (<feed><entry>).
type documentXML struct {
	XMLName xml.Name
	Channel channelXML `xml:"channel"`
	Items   []itemXML  `xml:"item"`

	Title    string     `xml:"title"`
	Subtitle string     `xml:"subtitle"`
	Links    []atomLink `xml:"link"`
	Entries  []entryXML `xml:"entry"`
}
type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}
type atomText struct {
	Type  string `xml:"type,attr"`
	Text  string `xml:",chardata"`
	Inner string `xml:",innerxml"`
}

// String возвращает HTML-содержимое: для type="xhtml" разметка лежит внутри элемента.
func (t atomText) String() string {
	if t.Type == "xhtml" {
		return strings.TrimSpace(t.Inner)
	}
	return t.Text
}

type entryXML struct {
	Title          atomText   `xml:"title"`
	Links          []atomLink `xml:"link"`
	Summary        atomText   `xml:"summary"`
	Content        atomText   `xml:"content"`
	Published      string     `xml:"published"`
	Updated        string     `xml:"updated"`
	MediaContent   []mediaXML `xml:"http://search.yahoo.com/mrss/ content"`
	MediaThumbnail []mediaXML `xml:"http://search.yahoo.com/mrss/ thumbnail"`
}
type channelXML struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []itemXML `xml:"item"`
}
type mediaXML struct {
	URL string `xml:"url,attr"`
}
type enclosureXML struct {
	URL  string `xml:"url,attr"`
	Type string `xml:"type,attr"`
}
type itemXML struct {
	Title          string         `xml:"title"`
	Link           string         `xml:"link"`
	Description    string         `xml:"description"`
	Encoded        string         `xml:"http://purl.org/rss/1.0/modules/content/ encoded"`
	PubDate        string         `xml:"pubDate"`
	Updated        string         `xml:"updated"`
	MediaContent   []mediaXML     `xml:"http://search.yahoo.com/mrss/ content"`
	MediaThumbnail []mediaXML     `xml:"http://search.yahoo.com/mrss/ thumbnail"`
	Enclosures     []enclosureXML `xml:"enclosure"`
}

// XMLParser разбирает RSS 2.0, RSS 1.0 и Atom, включая расширения media: и content:.
type XMLParser struct {
	log *slog.Logger
}

func NewXMLParser(log *slog.Logger) *XMLParser {
	return &XMLParser{
		log: log,
	}
}

// Parse реализует метод интерфейса FeedParser.
// Записи с неразборчивой датой сохраняются без даты.
func (p *XMLParser) Parse(ctx context.Context, reader io.Reader) (*domain.Feed, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var doc documentXML
	decoder := xml.NewDecoder(reader)
	decoder.Entity = xml.HTMLEntity
	if err := decoder.Decode(&doc); err != nil {
		p.log.Error("Error decoding XML", slog.Any("error", err))
		return nil, fmt.Errorf("failed to decode XML: %w", err)
	}

	var feed domain.Feed
	var items []itemXML
	if doc.XMLName.Local == "feed" {
		feed = domain.Feed{
			Title:       strings.TrimSpace(doc.Title),
			Link:        alternateLink(doc.Links),
			Description: strings.TrimSpace(doc.Subtitle),
		}
		items = make([]itemXML, 0, len(doc.Entries))
		for _, e := range doc.Entries {
			items = append(items, e.toItem())
		}
	} else {
		feed = domain.Feed{
			Title:       strings.TrimSpace(doc.Channel.Title),
			Link:        strings.TrimSpace(doc.Channel.Link),
			Description: strings.TrimSpace(doc.Channel.Description),
		}
		items = append(doc.Channel.Items, doc.Items...)
	}

	feed.Items = make([]domain.Item, 0, len(items))
	for _, dto := range items {
		item := domain.Item{
			Title:       strings.TrimSpace(dto.Title),
			Link:        strings.TrimSpace(dto.Link),
			Description: dto.Description,
			Content:     dto.Encoded,
			Image:       extractImage(dto),
		}
		for _, raw := range []string{dto.PubDate, dto.Updated} {
			if raw == "" {
				continue
			}
			if t, err := parsePubDate(raw); err == nil {
				item.PubDate = &t
				break
			}
			p.log.Debug("Could not parse item date",
				slog.String("date", raw),
				slog.String("item_title", item.Title),
			)
		}
		feed.Items = append(feed.Items, item)
	}
	if len(feed.Items) == 0 {
		p.log.Warn("Feed has no items",
			slog.String("root", doc.XMLName.Local),
			slog.String("feed_title", feed.Title),
		)
	}
	return &feed, nil
}

// toItem приводит запись Atom к виду записи RSS.
func (e entryXML) toItem() itemXML {
	item := itemXML{
		Title:          e.Title.String(),
		Link:           alternateLink(e.Links),
		Description:    e.Summary.String(),
		Encoded:        e.Content.String(),
		PubDate:        e.Published,
		Updated:        e.Updated,
		MediaContent:   e.MediaContent,
		MediaThumbnail: e.MediaThumbnail,
	}
	for _, l := range e.Links {
		if l.Rel == "enclosure" {
			item.Enclosures = append(item.Enclosures, enclosureXML{URL: l.Href, Type: l.Type})
		}
	}
	return item
}

// alternateLink возвращает ссылку rel="alternate" (или без rel), иначе первую попавшуюся.
func alternateLink(links []atomLink) string {
	for _, l := range links {
		if l.Rel == "" || l.Rel == "alternate" {
			return strings.TrimSpace(l.Href)
		}
	}
	if len(links) > 0 {
		return strings.TrimSpace(links[0].Href)
	}
	return ""
}

// extractImage ищет картинку записи: media:content, media:thumbnail,
// enclosure с типом image/*, затем первый <img> в описании или содержимом.
func extractImage(dto itemXML) string {
	for _, group := range [][]mediaXML{dto.MediaContent, dto.MediaThumbnail} {
		for _, m := range group {
			if m.URL != "" {
				return m.URL
			}
		}
	}
	for _, e := range dto.Enclosures {
		if e.URL != "" && strings.HasPrefix(e.Type, "image") {
			return e.URL
		}
	}
	if m := imgSrcRe.FindStringSubmatch(dto.Description + dto.Encoded); m != nil {
		return m[1]
	}
	return ""
}

// parsePubDate разбирает дату в одном из распространённых форматов RSS и Atom.
func parsePubDate(dateStr string) (time.Time, error) {
	formats := []string{
		time.RFC1123Z,
		time.RFC1123,
		time.RFC822Z,
		time.RFC822,
		time.RFC3339,
		"Mon, 2 Jan 2006 15:04:05 -0700",
		"Mon, 2 Jan 2006 15:04:05 MST",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, strings.TrimSpace(dateStr)); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("could not parse date in any known format: %q", dateStr)
}
