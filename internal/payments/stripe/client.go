// Package stripe is a minimal client for the three Stripe endpoints the
// checkout flow needs. It speaks the form-encoded v1 API directly rather
// than pulling in the full vendor SDK.
package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultAPIURL is the public Stripe API base.
const DefaultAPIURL = "https://api.stripe.com"

// Client calls the Stripe HTTP API.
type Client struct {
	apiURL     string
	secretKey  string
	httpClient *http.Client
}

// NewClient constructs a Client. An empty apiURL falls back to the public
// API; tests point it at a local server.
func NewClient(apiURL, secretKey string) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &Client{
		apiURL:     strings.TrimSuffix(apiURL, "/"),
		secretKey:  secretKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Product mirrors the fields of a Stripe product we consume.
type Product struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Price mirrors the fields of a Stripe price we consume.
type Price struct {
	ID         string `json:"id"`
	Product    string `json:"product"`
	UnitAmount int64  `json:"unit_amount"`
	Currency   string `json:"currency"`
}

// CheckoutSession mirrors the fields of a Stripe checkout session we consume.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// CreateProduct registers a product named after the course.
func (c *Client) CreateProduct(ctx context.Context, name string) (*Product, error) {
	form := url.Values{}
	form.Set("name", name)

	var product Product
	if err := c.post(ctx, "/v1/products", form, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// CreatePrice attaches a one-time price to a product. Amount is in the
// currency's smallest unit.
func (c *Client) CreatePrice(ctx context.Context, productID string, amount int64, currency string) (*Price, error) {
	form := url.Values{}
	form.Set("product", productID)
	form.Set("unit_amount", strconv.FormatInt(amount, 10))
	form.Set("currency", currency)

	var price Price
	if err := c.post(ctx, "/v1/prices", form, &price); err != nil {
		return nil, err
	}
	return &price, nil
}

// CreateCheckoutSession opens a hosted payment page for the price.
func (c *Client) CreateCheckoutSession(ctx context.Context, priceID, successURL, cancelURL string) (*CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("line_items[0][price]", priceID)
	form.Set("line_items[0][quantity]", "1")
	form.Set("success_url", successURL)
	form.Set("cancel_url", cancelURL)

	var session CheckoutSession
	if err := c.post(ctx, "/v1/checkout/sessions", form, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *Client) post(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+path,
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("stripe %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("stripe %s: read response: %w", path, err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("stripe %s: %s (%s)", path, apiErr.Error.Message, resp.Status)
		}
		return fmt.Errorf("stripe %s: unexpected status %s", path, resp.Status)
	}
	return json.Unmarshal(body, out)
}
