// Package nomod is a client for the Nomod payment links API.
package nomod

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const DefaultBaseURL = "https://api.nomod.com"

// LineItem is one billed line. Nomod expects the amount as a string.
type LineItem struct {
	Name     string `json:"name"`
	Amount   string `json:"amount"`
	Quantity int    `json:"quantity"`
}

// LinkRequest is the body of POST /v1/links.
type LinkRequest struct {
	Currency                string     `json:"currency"`
	Title                   string     `json:"title"`
	Note                    string     `json:"note,omitempty"`
	Items                   []LineItem `json:"items"`
	SuccessURL              string     `json:"success_url"`
	FailureURL              string     `json:"failure_url"`
	ShippingAddressRequired bool       `json:"shipping_address_required"`
}

// Link is a payment link as returned by the API. Older responses carry
// link_id and checkout_url instead of id and url.
type Link struct {
	ID          string `json:"id,omitempty"`
	LinkID      string `json:"link_id,omitempty"`
	URL         string `json:"url,omitempty"`
	CheckoutURL string `json:"checkout_url,omitempty"`
	Status      string `json:"status,omitempty"`
}

// PaymentID returns the identifier the provider reports in callbacks.
func (l *Link) PaymentID() string {
	if l.ID != "" {
		return l.ID
	}
	return l.LinkID
}

// PaymentURL returns the checkout URL to send the customer to.
func (l *Link) PaymentURL() string {
	if l.URL != "" {
		return l.URL
	}
	return l.CheckoutURL
}

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("nomod: unexpected status %d: %s", e.StatusCode, e.Body)
}

// Client talks to the Nomod REST API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a Client whose requests are bounded by timeout.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// CreateLink creates a payment link.
func (c *Client) CreateLink(ctx context.Context, req LinkRequest) (*Link, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("nomod: failed to encode request: %w", err)
	}
	var link Link
	if err := c.do(ctx, http.MethodPost, "/v1/links", bytes.NewReader(body), &link); err != nil {
		return nil, err
	}
	if link.PaymentID() == "" {
		return nil, fmt.Errorf("nomod: response carries no link id")
	}
	return &link, nil
}

// GetLink fetches a payment link and its current status.
func (c *Client) GetLink(ctx context.Context, id string) (*Link, error) {
	var link Link
	if err := c.do(ctx, http.MethodGet, "/v1/links/"+url.PathEscape(id), nil, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("nomod: failed to build request: %w", err)
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("nomod: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("nomod: failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("nomod: failed to decode response: %w", err)
	}
	return nil
}
