package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

var itemTemplates = template.Must(template.New("items").ParseFS(templatesFS, "templates/*.tmpl"))

// RenderError сообщает, что ответ сервиса не удалось превратить в разметку:
// значение не является массивом, элемент не объект или не хватает обязательного поля.
// Index равен -1, если ошибка относится ко всему значению.
type RenderError struct {
	Feed  string
	Index int
	Err   error
}

func (e *RenderError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("render %s: %v", e.Feed, e.Err)
	}
	return fmt.Sprintf("render %s: record %d: %v", e.Feed, e.Index, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// DecodeFunc превращает JSON-объект одной записи в доменную запись.
type DecodeFunc[T any] func(record map[string]any) (T, error)

// Renderer отображает записи одного типа в HTML-фрагменты по шаблону.
// Все поля проходят контекстное экранирование html/template.
type Renderer[T any] struct {
	feed   string
	tmpl   *template.Template
	decode DecodeFunc[T]
}

// New создает Renderer для ленты feed. itemTemplate - имя шаблона из templates/.
func New[T any](feed, itemTemplate string, decode DecodeFunc[T]) (*Renderer[T], error) {
	tmpl := itemTemplates.Lookup(itemTemplate)
	if tmpl == nil {
		return nil, fmt.Errorf("template %q is not defined", itemTemplate)
	}
	return &Renderer[T]{feed: feed, tmpl: tmpl, decode: decode}, nil
}

// Feed возвращает имя ленты, для которой создан Renderer.
func (r *Renderer[T]) Feed() string { return r.feed }

// Decode превращает JSON-значение в список записей. nil даёт пустой список.
func (r *Renderer[T]) Decode(value any) ([]T, error) {
	if value == nil {
		return nil, nil
	}
	list, ok := value.([]any)
	if !ok {
		return nil, &RenderError{Feed: r.feed, Index: -1, Err: fmt.Errorf("expected JSON array, got %T", value)}
	}
	records := make([]T, 0, len(list))
	for i, raw := range list {
		obj, ok := raw.(map[string]any)
		if !ok {
			return nil, &RenderError{Feed: r.feed, Index: i, Err: fmt.Errorf("expected JSON object, got %T", raw)}
		}
		rec, err := r.decode(obj)
		if err != nil {
			return nil, &RenderError{Feed: r.feed, Index: i, Err: err}
		}
		records = append(records, rec)
	}
	return records, nil
}

// Render возвращает конкатенацию фрагментов для всех записей в исходном порядке.
func (r *Renderer[T]) Render(records []T) (string, error) {
	var buf bytes.Buffer
	for i, rec := range records {
		if err := r.tmpl.Execute(&buf, rec); err != nil {
			return "", &RenderError{Feed: r.feed, Index: i, Err: err}
		}
	}
	return buf.String(), nil
}

// RenderValue объединяет Decode и Render.
func (r *Renderer[T]) RenderValue(value any) (string, error) {
	records, err := r.Decode(value)
	if err != nil {
		return "", err
	}
	return r.Render(records)
}

func requiredString(record map[string]any, key string) (string, error) {
	v, ok := record[key]
	if !ok || v == nil {
		return "", fmt.Errorf("missing required field %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %q: expected string, got %T", key, v)
	}
	return s, nil
}

func optionalString(record map[string]any, key string) (string, error) {
	v, ok := record[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %q: expected string, got %T", key, v)
	}
	return s, nil
}
