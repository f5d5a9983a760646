// Package api реализует Remote Gateway: HTTP клиент к PostgREST-совместимому
// бэкенду.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iudanet/jobtrail/pkg/api"
)

// DefaultTimeout таймаут HTTP запросов по умолчанию
const DefaultTimeout = 30 * time.Second

// Client представляет HTTP клиент для взаимодействия с бэкендом
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string
	apiKey     string
	token      string
}

// Option настраивает Client
type Option func(*Client)

// WithAPIKey задает публичный ключ проекта (заголовок apikey)
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithToken задает bearer токен пользователя
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithTimeout задает таймаут HTTP запросов
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient заменяет HTTP клиент целиком
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger задает logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient создает новый API клиент
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			// Настройка обработки редиректов
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Ограничиваем количество редиректов
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Копируем заголовки авторизации при редиректе
				for _, h := range []string{api.HeaderAuthorization, api.HeaderAPIKey} {
					if len(via) > 0 && via[0].Header.Get(h) != "" {
						req.Header.Set(h, via[0].Header.Get(h))
					}
				}
				return nil
			},
		},
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ping checks that the backend answers. Any HTTP response below 500 counts
// as reachable.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.doRequest(ctx, request{method: http.MethodGet, path: api.RestPrefix})
	if err == nil {
		return nil
	}
	if apiErr, ok := AsError(err); ok && apiErr.Status < http.StatusInternalServerError {
		return nil
	}
	return err
}

// request описывает один вызов REST API
type request struct {
	body   any
	header http.Header
	query  url.Values
	method string
	path   string
}

// response результат успешного вызова
type response struct {
	header http.Header
	body   []byte
	status int
}

// doRequest выполняет HTTP запрос
func (c *Client) doRequest(ctx context.Context, r request) (*response, error) {
	u := c.baseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}

	var bodyReader io.Reader
	if r.body != nil {
		jsonData, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set(api.HeaderAPIKey, c.apiKey)
	}
	if c.token != "" {
		req.Header.Set(api.HeaderAuthorization, "Bearer "+c.token)
	}
	for k, vs := range r.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.DebugContext(ctx, "gateway request failed",
			slog.String("method", r.method),
			slog.String("path", r.path),
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// Читаем тело ответа
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %w", ErrUnreachable, err)
	}

	c.logger.DebugContext(ctx, "gateway request",
		slog.String("method", r.method),
		slog.String("path", r.path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	// Проверяем статус код
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newError(resp.StatusCode, respBody)
	}

	return &response{header: resp.Header, body: respBody, status: resp.StatusCode}, nil
}
