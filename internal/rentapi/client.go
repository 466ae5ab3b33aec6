package rentapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// AccountRecord is the raw account shape returned by the rental API.
// Optional fields stay pointers (or any, for fields the server is known to
// send with inconsistent types) so the normalizer can coerce them defensively.
type AccountRecord struct {
	ID            int64   `json:"id"`
	WorkspaceID   string  `json:"workspace_id"`
	Platform      string  `json:"platform"`
	Name          *string `json:"name"`
	Login         *string `json:"login"`
	Password      *string `json:"password"`
	SteamID       *string `json:"steam_id"`
	MMR           any     `json:"mmr"`
	RenterID      *string `json:"renter_id"`
	RentalStart   *string `json:"rental_start"`
	RentalMinutes *int    `json:"rental_duration_minutes"`
	Frozen        any     `json:"frozen"`
	Deprioritized any     `json:"deprioritized"`
}

// RentalRecord is the raw active-rental shape returned by the rental API.
type RentalRecord struct {
	AccountID   int64   `json:"account_id"`
	WorkspaceID string  `json:"workspace_id"`
	AccountName *string `json:"account_name"`
	Buyer       *string `json:"buyer"`
	StartedAt   *string `json:"started_at"`
	TimeLeft    *string `json:"time_left"`
	MatchTime   *string `json:"match_time"`
}

type accountListResponse struct {
	Items []AccountRecord `json:"items"`
}

type rentalListResponse struct {
	Items []RentalRecord `json:"items"`
}

type Client struct {
	baseURL      string
	token        string
	client       *http.Client
	apiCallCount int64
	apiCallMutex sync.Mutex
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// IncrementAPICall safely increments the API call counter
func (c *Client) IncrementAPICall() {
	c.apiCallMutex.Lock()
	c.apiCallCount++
	c.apiCallMutex.Unlock()
}

// GetAPICallCount returns the current API call count
func (c *Client) GetAPICallCount() int64 {
	c.apiCallMutex.Lock()
	defer c.apiCallMutex.Unlock()
	return c.apiCallCount
}

// ResetAPICallCount resets the API call counter to zero
func (c *Client) ResetAPICallCount() {
	c.apiCallMutex.Lock()
	c.apiCallCount = 0
	c.apiCallMutex.Unlock()
}

// ListAccounts fetches the full account inventory.
func (c *Client) ListAccounts(ctx context.Context) ([]AccountRecord, error) {
	var result accountListResponse
	if err := c.getJSON(ctx, "/accounts", nil, &result); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return result.Items, nil
}

// ListActiveRentals fetches active rentals, optionally narrowed to one workspace.
func (c *Client) ListActiveRentals(ctx context.Context, workspaceID string) ([]RentalRecord, error) {
	var query url.Values
	if workspaceID != "" {
		query = url.Values{"workspace_id": []string{workspaceID}}
	}

	var result rentalListResponse
	if err := c.getJSON(ctx, "/rentals/active", query, &result); err != nil {
		return nil, fmt.Errorf("list active rentals: %w", err)
	}
	return result.Items, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, target any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.IncrementAPICall()

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
