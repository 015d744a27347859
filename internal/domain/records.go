package domain

import "encoding/json"

// RatingPlaceholder выводится вместо рейтинга, если источник его не передал.
const RatingPlaceholder = "—"

// GameSummary описывает игру из ленты трендов.
// Rating хранится как json.Number, чтобы значение выводилось ровно в том виде,
// в котором его прислал сервис.
type GameSummary struct {
	Name   string       `json:"name"`
	Cover  string       `json:"cover"`
	Rating *json.Number `json:"rating,omitempty"`
}

// RatingText возвращает рейтинг для отображения или RatingPlaceholder.
func (g GameSummary) RatingText() string {
	if g.Rating == nil {
		return RatingPlaceholder
	}
	return g.Rating.String()
}

// NewsItem описывает новость из ленты новостей. Excerpt необязателен.
type NewsItem struct {
	Title   string `json:"title"`
	Image   string `json:"image"`
	URL     string `json:"url"`
	Excerpt string `json:"excerpt,omitempty"`
}

// TrendingEntry - игра в таблице трендов вместе с весом, по которому строится выдача.
type TrendingEntry struct {
	GameSummary
	Score int
}
