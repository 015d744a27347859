// Package sanitize очищает HTML, пришедший из RSS-источников.
package sanitize

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// MaxContentLength - предел длины очищенного содержимого статьи в символах.
const MaxContentLength = 4000

var (
	strict  = bluemonday.StrictPolicy()
	content = newContentPolicy()
)

func newContentPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "ul", "ol", "li", "br", "strong", "em", "blockquote", "code", "pre")
	p.AllowAttrs("href", "title", "target", "rel").OnElements("a")
	p.AllowStandardURLs()
	p.RequireNoFollowOnLinks(true)
	return p
}

// Text удаляет всю разметку и возвращает обычный текст со схлопнутыми пробелами.
// Сущности раскодируются: экранирование выполняется при выводе.
func Text(s string) string {
	return strings.Join(strings.Fields(html.UnescapeString(strict.Sanitize(s))), " ")
}

// Content оставляет безопасное подмножество разметки и обрезает результат до MaxContentLength символов.
func Content(s string) string {
	return truncate(content.Sanitize(s), MaxContentLength)
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}
