package domain

import "time"

// Item представляет отдельную запись RSS-ленты в том виде, в котором её отдал источник.
// PubDate равен nil, если дату публикации не удалось разобрать.
type Item struct {
	Title       string
	Link        string
	Description string
	Content     string
	Image       string
	PubDate     *time.Time
}

// Feed представляет полную RSS-ленту с метаданными и списком записей.
type Feed struct {
	Title       string
	Link        string
	Description string
	Items       []Item
}
