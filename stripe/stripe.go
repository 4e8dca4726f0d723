package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Intent is a processor-side authorized, not-yet-captured charge.
type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	Status       string `json:"status"`
}

// IntentCreator is the processor surface the checkout flow depends on.
type IntentCreator interface {
	CreatePaymentIntent(ctx context.Context, amount int64, currency string, methodTypes []string) (Intent, error)
}

// Client talks to the Stripe payment-intents REST endpoint.
type Client struct {
	Key        string
	BaseURL    string
	HTTPClient *http.Client
}

func New(key string) *Client {
	return &Client{
		Key:        key,
		BaseURL:    "https://api.stripe.com",
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// CreatePaymentIntent requests an intent for amount minor units.
func (c *Client) CreatePaymentIntent(ctx context.Context, amount int64, currency string, methodTypes []string) (Intent, error) {
	if amount <= 0 {
		return Intent{}, errors.New("amount must be positive")
	}

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amount, 10))
	form.Set("currency", currency)
	for _, m := range methodTypes {
		form.Add("payment_method_types[]", m)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.BaseURL+"/v1/payment_intents", strings.NewReader(form.Encode()))
	if err != nil {
		return Intent{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.Key, "")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return Intent{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Intent{}, err
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return Intent{}, fmt.Errorf("stripe: %s", apiErr.Error.Message)
		}
		return Intent{}, fmt.Errorf("stripe: unexpected status %d", resp.StatusCode)
	}

	var intent Intent
	if err := json.Unmarshal(body, &intent); err != nil {
		return Intent{}, err
	}
	if intent.ClientSecret == "" {
		return Intent{}, errors.New("stripe: response missing client_secret")
	}
	return intent, nil
}
