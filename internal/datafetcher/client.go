/*

This file implements the HTTP client for reading the staking contract's
tables from the chain API. All table reads go through getTableRows, which
handles pagination and strict response validation.

*/

package datafetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/stakewatch/stakewatch/internal/logger"
)

var clientLogger = logger.GetForComponent("chain_client")

var (
	ErrChainUnavailable = errors.New("chain API unavailable")
	ErrBadTableResponse = errors.New("malformed table response")
)

// Client reads staking contract tables over the chain's HTTP API.
type Client struct {
	baseURL         string
	contractAccount string
	httpClient      *http.Client
}

// NewClient creates a chain API client. baseURL and contractAccount are
// required; timeout bounds every individual table-read request.
func NewClient(baseURL, contractAccount string, timeout time.Duration) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("chain API base URL cannot be empty")
	}
	if contractAccount == "" {
		return nil, errors.New("contract account cannot be empty")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL:         baseURL,
		contractAccount: contractAccount,
		httpClient:      &http.Client{Timeout: timeout},
	}, nil
}

// tableRowsRequest is the request body for the chain's get_table_rows endpoint.
type tableRowsRequest struct {
	Code       string `json:"code"`
	Scope      string `json:"scope"`
	Table      string `json:"table"`
	JSON       bool   `json:"json"`
	Limit      int    `json:"limit"`
	LowerBound string `json:"lower_bound,omitempty"`
}

// tableRowsResponse is the raw response; rows stay as json.RawMessage so
// each table can decode into its own row struct.
type tableRowsResponse struct {
	Rows    []json.RawMessage `json:"rows"`
	More    bool              `json:"more"`
	NextKey string            `json:"next_key"`
}

const tableRowsPageLimit = 500

// getTableRows fetches every row of one contract table, following
// pagination until the chain reports no more rows.
func (c *Client) getTableRows(ctx context.Context, table string) ([]json.RawMessage, error) {
	var allRows []json.RawMessage
	lowerBound := ""

	for {
		reqBody := tableRowsRequest{
			Code:       c.contractAccount,
			Scope:      c.contractAccount,
			Table:      table,
			JSON:       true,
			Limit:      tableRowsPageLimit,
			LowerBound: lowerBound,
		}

		page, err := c.postTableRows(ctx, reqBody)
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", table, err)
		}

		allRows = append(allRows, page.Rows...)

		if !page.More {
			break
		}
		if page.NextKey == "" || page.NextKey == lowerBound {
			// More=true with no advancing cursor would loop forever.
			return nil, fmt.Errorf("table %s: %w: pagination cursor did not advance", table, ErrBadTableResponse)
		}
		lowerBound = page.NextKey
	}

	clientLogger.Debug().Str("table", table).Int("rowCount", len(allRows)).Msg("Fetched table rows")
	return allRows, nil
}

func (c *Client) postTableRows(ctx context.Context, reqBody tableRowsRequest) (*tableRowsResponse, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal table request: %w", err)
	}

	url := c.baseURL + "/v1/chain/get_table_rows"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build table request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrChainUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read table response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: chain API returned status %d", ErrChainUnavailable, resp.StatusCode)
	}

	var decoded tableRowsResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadTableResponse, err)
	}

	return &decoded, nil
}
