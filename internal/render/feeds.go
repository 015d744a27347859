package render

import (
	"encoding/json"
	"fmt"
	"strconv"

	"gamepulse/internal/domain"
)

// NewTrending создает Renderer карточек игр для ленты трендов.
func NewTrending() *Renderer[domain.GameSummary] {
	r, err := New("trending", "trending", decodeGameSummary)
	if err != nil {
		panic(err)
	}
	return r
}

// NewNews создает Renderer карточек новостей.
func NewNews() *Renderer[domain.NewsItem] {
	r, err := New("news", "news", decodeNewsItem)
	if err != nil {
		panic(err)
	}
	return r
}

func decodeGameSummary(record map[string]any) (domain.GameSummary, error) {
	var g domain.GameSummary
	var err error
	if g.Name, err = requiredString(record, "name"); err != nil {
		return g, err
	}
	if g.Cover, err = requiredString(record, "cover"); err != nil {
		return g, err
	}
	switch v := record["rating"].(type) {
	case nil:
	case json.Number:
		g.Rating = &v
	case float64:
		n := json.Number(strconv.FormatFloat(v, 'f', -1, 64))
		g.Rating = &n
	case string:
		n := json.Number(v)
		g.Rating = &n
	default:
		return g, fmt.Errorf("field %q: unsupported type %T", "rating", v)
	}
	return g, nil
}

func decodeNewsItem(record map[string]any) (domain.NewsItem, error) {
	var n domain.NewsItem
	var err error
	if n.Title, err = requiredString(record, "title"); err != nil {
		return n, err
	}
	if n.Image, err = requiredString(record, "image"); err != nil {
		return n, err
	}
	if n.URL, err = requiredString(record, "url"); err != nil {
		return n, err
	}
	if n.Excerpt, err = optionalString(record, "excerpt"); err != nil {
		return n, err
	}
	return n, nil
}
