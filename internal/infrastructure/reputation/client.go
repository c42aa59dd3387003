// Package reputation проверяет контрагентов по внешнему списку недобросовестных
// аккаунтов.
package reputation

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/patrickmn/go-cache"

	"trade_exchange/internal/config"
	"trade_exchange/pkg/httpx"
	"trade_exchange/pkg/logx"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals

type verdict struct {
	BadActor bool `json:"badActor"`
}

type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	cache      *cache.Cache
}

func NewClient(cfg config.Reputation) (*Client, error) {
	baseURL, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse reputation url: %w", err)
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Transport: httpx.NewLoggingRoundTripper(http.DefaultTransport, httpx.WithLogLevel(slog.LevelDebug)),
		},
		cache: cache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
	}, nil
}

// IsKnownBadActor отвечает из кэша, иначе спрашивает сервис. Неудачные
// ответы не кэшируются.
func (c *Client) IsKnownBadActor(ctx context.Context, counterpartyID uint64) (bool, error) {
	key := strconv.FormatUint(counterpartyID, 10)

	if cached, ok := c.cache.Get(key); ok {
		return cached.(bool), nil //nolint:forcetypeassert
	}

	bad, err := c.lookup(ctx, key)
	if err != nil {
		return false, err
	}

	c.cache.SetDefault(key, bad)

	if bad {
		logger(ctx).Info("counterparty is a known bad actor", slog.String(logx.FieldCounterpartyID, key))
	}

	return bad, nil
}

func (c *Client) lookup(ctx context.Context, steamID string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL.JoinPath("users", steamID).String(), http.NoBody)
	if err != nil {
		return false, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	started := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("reputation lookup: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		// сервис ничего не знает об аккаунте
		return false, nil
	default:
		return false, fmt.Errorf("reputation lookup: status %d after %s", resp.StatusCode, time.Since(started).Round(time.Millisecond))
	}

	var v verdict
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return false, fmt.Errorf("decode reputation: %w", err)
	}

	return v.BadActor, nil
}

// Forget убирает контрагента из кэша.
func (c *Client) Forget(counterpartyID uint64) {
	c.cache.Delete(strconv.FormatUint(counterpartyID, 10))
}
