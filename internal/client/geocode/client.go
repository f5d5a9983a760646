// Package geocode resolves addresses to coordinates through a
// Nominatim-compatible endpoint, with caching and strict rate limiting.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/iudanet/jobtrail/internal/models"
)

const (
	// DefaultBaseURL публичный Nominatim
	DefaultBaseURL = "https://nominatim.openstreetmap.org"
	// DefaultUserAgent обязателен по правилам Nominatim
	DefaultUserAgent = "jobtrail/1.0"
)

// Geocoder resolves an address. Ordinary failures are reported through the
// result status, never as an error.
type Geocoder interface {
	Geocode(ctx context.Context, address string) models.GeocodeResult
}

// Client is a Geocoder backed by an HTTP endpoint
type Client struct {
	httpClient *http.Client
	limiter    *Limiter
	cache      *Cache
	logger     *slog.Logger
	flights    map[string]*flight
	group      singleflight.Group
	baseURL    string
	userAgent  string
	mu         sync.Mutex
}

// flight общий контекст запроса по одному ключу. Отменяется, когда его
// перестал ждать последний вызывающий.
type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

var _ Geocoder = (*Client)(nil)

// ClientOption настраивает Client
type ClientOption func(*Client)

// WithUserAgent задает User-Agent
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithHTTPClient заменяет HTTP клиент
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a geocoding client. limiter and cache are owned by the
// caller so that several clients may share them.
func NewClient(baseURL string, limiter *Limiter, cache *Cache, logger *slog.Logger, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    limiter,
		cache:      cache,
		logger:     logger,
		flights:    make(map[string]*flight),
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Geocode implements Geocoder
func (c *Client) Geocode(ctx context.Context, address string) models.GeocodeResult {
	key := NormalizeKey(address)
	if key == "" {
		return models.GeocodeResult{Status: models.GeocodeInvalidAddress, Message: "address is empty"}
	}

	if res, ok := c.cache.Get(ctx, key); ok {
		c.logger.DebugContext(ctx, "Geocode cache hit", slog.String("key", key))
		return res
	}

	f, ch := c.join(ctx, key, address)
	defer c.leave(key, f)

	select {
	case r := <-ch:
		return r.Val.(models.GeocodeResult)
	case <-ctx.Done():
		return models.GeocodeResult{Status: models.GeocodeNetworkError, Message: ctx.Err().Error()}
	}
}

// join присоединяет вызов к запросу по ключу или начинает новый
func (c *Client) join(ctx context.Context, key, address string) (*flight, <-chan singleflight.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, ok := c.flights[key]
	if !ok {
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		f = &flight{ctx: fctx, cancel: cancel}
		c.flights[key] = f
	}
	f.waiters++

	ch := c.group.DoChan(key, func() (any, error) {
		// Другой вызов мог заполнить кэш, пока мы ждали
		if res, ok := c.cache.Get(f.ctx, key); ok {
			return res, nil
		}

		var res models.GeocodeResult
		if err := c.limiter.Do(f.ctx, func() { res = c.fetch(context.WithoutCancel(f.ctx), address) }); err != nil {
			return models.GeocodeResult{Status: models.GeocodeNetworkError, Message: err.Error()}, nil
		}

		c.cache.Put(f.ctx, key, res)
		return res, nil
	})
	return f, ch
}

// leave снимает вызов с запроса. Без ожидающих запрос отменяется и
// забывается, следующий вызов начнет новый.
func (c *Client) leave(key string, f *flight) {
	c.mu.Lock()
	defer c.mu.Unlock()

	f.waiters--
	if f.waiters > 0 {
		return
	}
	f.cancel()
	if c.flights[key] == f {
		delete(c.flights, key)
		c.group.Forget(key)
	}
}

type place struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// fetch выполняет один запрос к геокодеру
func (c *Client) fetch(ctx context.Context, address string) models.GeocodeResult {
	q := url.Values{}
	q.Set("q", address)
	q.Set("format", "json")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return models.GeocodeResult{Status: models.GeocodeFailed, Message: err.Error()}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "Geocode request failed", slog.Any("error", err))
		return models.GeocodeResult{Status: models.GeocodeNetworkError, Message: err.Error()}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return models.GeocodeResult{
			Status:     models.GeocodeRateLimited,
			HTTPStatus: resp.StatusCode,
			Message:    "geocoding service is rate limiting requests, try again later",
		}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return models.GeocodeResult{
			Status:     models.GeocodeFailed,
			HTTPStatus: resp.StatusCode,
			Message:    fmt.Sprintf("geocoding failed with status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.GeocodeResult{Status: models.GeocodeNetworkError, Message: err.Error()}
	}

	var places []place
	if err := json.Unmarshal(body, &places); err != nil {
		return models.GeocodeResult{Status: models.GeocodeFailed, HTTPStatus: resp.StatusCode, Message: "invalid geocoding response"}
	}
	if len(places) == 0 {
		return models.GeocodeResult{Status: models.GeocodeNoResults, Message: "no results found for address"}
	}

	lat, errLat := strconv.ParseFloat(places[0].Lat, 64)
	lon, errLon := strconv.ParseFloat(places[0].Lon, 64)
	if errLat != nil || errLon != nil {
		return models.GeocodeResult{Status: models.GeocodeFailed, HTTPStatus: resp.StatusCode, Message: "invalid coordinates in geocoding response"}
	}

	return models.GeocodeResult{
		Status:      models.GeocodeOK,
		Latitude:    lat,
		Longitude:   lon,
		DisplayName: places[0].DisplayName,
		HTTPStatus:  resp.StatusCode,
	}
}
