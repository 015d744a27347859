package feedclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// HTTPStatusError возвращается, если сервис ответил статусом вне диапазона 2xx.
type HTTPStatusError struct {
	Path       string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("request to %s failed with status %d", e.Path, e.StatusCode)
}

// TransportError возвращается, если запрос не удалось выполнить
// или тело ответа не является корректным JSON.
type TransportError struct {
	Path string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Client запрашивает JSON-ресурсы у удалённого сервиса лент.
// Базовый адрес фиксируется при создании; повторов и собственных таймаутов нет,
// время жизни запроса определяется только контекстом вызывающего.
type Client struct {
	baseURL string
	client  *http.Client
	log     *slog.Logger
}

// Option настраивает Client.
type Option func(*Client)

// WithHTTPClient подменяет HTTP-клиент, например в тестах.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// New создает клиента для сервиса по адресу baseURL. Завершающий слэш отбрасывается.
func New(baseURL string, log *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  http.DefaultClient,
		log:     log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL возвращает нормализованный базовый адрес сервиса.
func (c *Client) BaseURL() string { return c.baseURL }

// FetchResource выполняет GET {base}{path} и декодирует тело ответа в произвольное JSON-значение.
// Числа сохраняются как json.Number. Возвращает *HTTPStatusError или *TransportError.
func (c *Client) FetchResource(ctx context.Context, path string) (any, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	log := c.log.With(
		slog.String("component", "feedclient"),
		slog.String("path", path),
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, &TransportError{Path: path, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	log.Debug("Fetching resource")
	resp, err := c.client.Do(req)
	if err != nil {
		log.Warn("Request failed", slog.Any("error", err))
		return nil, &TransportError{Path: path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn("Unexpected status code", slog.Int("status_code", resp.StatusCode))
		return nil, &HTTPStatusError{Path: path, StatusCode: resp.StatusCode}
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		log.Warn("Failed to decode JSON body", slog.Any("error", err))
		return nil, &TransportError{Path: path, Err: fmt.Errorf("decode body: %w", err)}
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		log.Warn("Unexpected data after JSON body")
		return nil, &TransportError{Path: path, Err: fmt.Errorf("decode body: trailing data")}
	}
	log.Debug("Resource fetched", slog.Int("status_code", resp.StatusCode))
	return value, nil
}
