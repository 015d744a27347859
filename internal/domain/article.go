package domain

import "time"

// Article представляет новость, сохранённую сервисом лент.
// ID вычисляется из ссылки, поэтому повторная загрузка ленты не создаёт дубликатов.
type Article struct {
	ID          string
	Title       string
	Link        string
	Source      string
	Image       string
	Excerpt     string
	ContentHTML string
	PubDate     *time.Time
}
