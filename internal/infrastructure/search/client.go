// Package search queries the adverse-media search provider for counterparty
// risk signals. Queries carry the entity name only; document content never
// reaches this provider.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/petrolex/contract-engine/internal/core/domain"
)

const riskQualifier = "sanctions OR bankruptcy OR fraud OR lawsuit"

type Client struct {
	baseURL    string
	apiKey     string
	maxResults int
	httpClient *http.Client
}

func New(baseURL, apiKey string, maxResults int, timeout time.Duration) *Client {
	if maxResults <= 0 {
		maxResults = 10
	}
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		maxResults: maxResults,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type searchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

func (c *Client) Lookup(ctx context.Context, entityName string) (domain.RiskSignal, error) {
	query := url.Values{}
	query.Set("q", fmt.Sprintf("%q %s", entityName, riskQualifier))
	query.Set("count", strconv.Itoa(c.maxResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return domain.RiskSignal{}, fmt.Errorf("create search request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.RiskSignal{}, domain.WrapError(domain.ErrLookupFailed, "entity search", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return domain.RiskSignal{}, domain.WrapError(domain.ErrLookupFailed, "entity search",
			fmt.Errorf("provider status %s", resp.Status))
	}

	var payload struct {
		Results []searchResult `json:"results"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(&payload); err != nil {
		return domain.RiskSignal{}, domain.WrapError(domain.ErrLookupFailed, "entity search",
			fmt.Errorf("decode provider response: %w", err))
	}

	return aggregateSignal(payload.Results), nil
}
