package broker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"ticker_audit/internal/domain"
	"ticker_audit/internal/infra"

	"github.com/shopspring/decimal"
)

// Client is the broker REST API client (boundary layer). It implements
// domain.OrderRepository: each Orders call is one point-in-time fetch
// of the active conditional orders.
type Client struct {
	baseURL    string
	httpClient *http.Client
	signer     *Signer
	logger     *slog.Logger
}

// NewClient creates a new broker API client.
func NewClient(cfg *infra.Config) *Client {
	return &Client{
		baseURL: cfg.Broker.RestURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:    10,
				IdleConnTimeout: 30 * time.Second,
			},
		},
		signer: NewSigner(cfg.Broker.AccessKey, cfg.Broker.SecretKey),
		logger: slog.Default().With("module", "broker_client"),
	}
}

// Orders fetches the active conditional orders.
func (c *Client) Orders(ctx context.Context) ([]domain.Order, error) {
	resp, err := c.doRequest(ctx, "GET", "/api/v1/gtt/orders", "", nil)
	if err != nil {
		return nil, domain.NewNetworkError("fetch orders", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewNetworkError("read orders", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, domain.NewNetworkError("fetch orders",
			fmt.Errorf("status=%d body=%s", resp.StatusCode, string(bodyBytes)))
	}

	var apiResp ordersResponse
	if err := json.Unmarshal(bodyBytes, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to parse order response: %w", err)
	}
	if apiResp.Status != "ok" {
		return nil, domain.NewFatalNetworkError("fetch orders",
			fmt.Errorf("broker error: status=%s msg=%s", apiResp.Status, apiResp.Msg))
	}

	orders := make([]domain.Order, 0, len(apiResp.Data))
	for _, payload := range apiResp.Data {
		order, err := parseOrder(payload)
		if err != nil {
			c.logger.Warn("skipping malformed order", slog.String("id", payload.ID), slog.Any("error", err))
			continue
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func parseOrder(payload orderPayload) (domain.Order, error) {
	qty, err := decimal.NewFromString(payload.Qty)
	if err != nil {
		return domain.Order{}, fmt.Errorf("qty %q: %w", payload.Qty, err)
	}
	entry, err := decimal.NewFromString(payload.Entry)
	if err != nil {
		return domain.Order{}, fmt.Errorf("entry %q: %w", payload.Entry, err)
	}
	stop, err := decimal.NewFromString(payload.Stop)
	if err != nil {
		return domain.Order{}, fmt.Errorf("stop %q: %w", payload.Stop, err)
	}
	return domain.Order{
		ID:     payload.ID,
		Ticker: payload.Ticker,
		Qty:    qty,
		Entry:  entry,
		Stop:   stop,
	}, nil
}

// doRequest handles auth headers and serialization
func (c *Client) doRequest(ctx context.Context, method, path, query string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	var bodyStr string

	if body != nil {
		jsonBytes, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyStr = string(jsonBytes)
		bodyReader = bytes.NewBuffer(jsonBytes)
	}

	reqURL := c.baseURL + path
	if query != "" {
		reqURL += "?" + query
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return nil, err
	}

	headers := c.signer.GenerateHeaders(method, path, query, bodyStr)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return c.httpClient.Do(req)
}
