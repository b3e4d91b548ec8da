package kavenegar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://api.kavenegar.com"

type lookupResponse struct {
	Return struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"return"`
}

// Client sends OTP codes through the Kavenegar verify/lookup template API.
type Client struct {
	apiKey   string
	template string
	baseURL  string
	http     *http.Client
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func New(apiKey, template string, opts ...Option) *Client {
	c := &Client{
		apiKey:   apiKey,
		template: template,
		baseURL:  defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) SendOTP(ctx context.Context, phone, code string) error {
	q := url.Values{}
	q.Set("receptor", phone)
	q.Set("token", code)
	q.Set("template", c.template)
	q.Set("type", "sms")

	endpoint := fmt.Sprintf("%s/v1/%s/verify/lookup.json?%s", c.baseURL, url.PathEscape(c.apiKey), q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	// non-2xx: prefer the provider's message when the body is JSON
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e lookupResponse
		if json.Unmarshal(body, &e) == nil && e.Return.Message != "" {
			return fmt.Errorf("kavenegar error (%d): %s", resp.StatusCode, e.Return.Message)
		}
		return fmt.Errorf("kavenegar http error (%d): %s", resp.StatusCode, string(body))
	}

	var out lookupResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return fmt.Errorf("decode kavenegar response: %w", err)
	}
	if out.Return.Status != http.StatusOK {
		return fmt.Errorf("kavenegar rejected request (%d): %s", out.Return.Status, out.Return.Message)
	}
	return nil
}
