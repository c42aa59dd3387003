// Package gateway ходит в сервис, который держит сессии ботов на торговой
// площадке, и отдаёт их офферы, инвентарь и действия над ними.
package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	jsoniter "github.com/json-iterator/go"

	"trade_exchange/internal/config"
	"trade_exchange/internal/domain"
	"trade_exchange/pkg/errcodes"
	"trade_exchange/pkg/httpx"
	"trade_exchange/pkg/logx"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals

const maxErrorBody = 512

type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

func NewClient(cfg config.Gateway) (*Client, error) {
	baseURL, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse gateway url: %w", err)
	}

	var transport http.RoundTripper = httpx.NewLoggingRoundTripper(
		http.DefaultTransport,
		httpx.WithSensitiveDataMasker(logx.NewSensitiveDataMasker()),
		httpx.WithLogFieldMaxLen(4096),
		httpx.WithLogLevel(slog.LevelDebug),
	)

	if cfg.Token != "" {
		transport = httpx.NewAuthBearerRoundTripper(transport, httpx.StaticToken(cfg.Token))
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
	}, nil
}

// WithHTTPClient подменяет HTTP-клиент (в тестах).
func (c *Client) WithHTTPClient(client *http.Client) *Client {
	c.httpClient = client
	return c
}

// Bot возвращает сессию конкретного бота.
func (c *Client) Bot(name string) *BotSession {
	return &BotSession{client: c, name: name}
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	return u.String()
}

// do отправляет запрос и декодирует JSON-ответ в dest, если он не nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, dest any) error {
	var reader io.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}

		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.WrapError(err, errcodes.GatewayUnavailable, fmt.Sprintf("%s %s", method, path))
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

		return domain.NewError(
			errcodes.GatewayBadResponse,
			fmt.Sprintf("%s %s: status %d after %s: %s", method, path, resp.StatusCode, time.Since(started).Round(time.Millisecond), bytes.TrimSpace(snippet)),
		)
	}

	if dest == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.NewError(errcodes.GatewayBadResponse, fmt.Sprintf("%s %s: empty body", method, path))
		}

		return domain.WrapError(err, errcodes.GatewayBadResponse, fmt.Sprintf("%s %s: decode", method, path))
	}

	return nil
}
