// Package registry talks to the billing API's webhook endpoints: create,
// paginated list, and delete.
package registry

import (
	"bytes"
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

	"github.com/rs/zerolog/log"
)

const (
	jsonAPIMediaType = "application/vnd.api+json"

	// Transport-level retry policy shared by all registry calls.
	maxAttempts = 3
	retryDelay  = 250 * time.Millisecond
)

var (
	// ErrRegistrationFailed means the API rejected webhook creation.
	ErrRegistrationFailed = errors.New("webhook registration failed")

	// ErrDeletionFailed means the API rejected webhook deletion.
	ErrDeletionFailed = errors.New("webhook deletion failed")
)

// Client is a billing API client scoped to one store.
type Client struct {
	baseURL    string
	apiKey     string
	storeID    string
	httpClient *http.Client
}

// NewClient creates a Client. baseURL is the API root without a trailing
// slash, e.g. "https://api.lemonsqueezy.com/v1".
func NewClient(baseURL, apiKey, storeID string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		storeID: storeID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// CreateWebhook registers callbackURL as a webhook for the client's store,
// subscribed to the fixed event set, and returns the assigned webhook id.
// secret is used as the signing secret; pass GenerateSecret() when none is
// configured.
func (c *Client) CreateWebhook(ctx context.Context, callbackURL, secret string) (string, error) {
	payload := createRequest{
		Data: createData{
			Type: "webhooks",
			Attributes: createAttributes{
				URL:    callbackURL,
				Events: WebhookEvents,
				Secret: secret,
			},
			Relationships: createRelationships{
				Store: relationship{
					Data: relationshipData{
						Type: "stores",
						ID:   c.storeID,
					},
				},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshaling webhook payload: %w", err)
	}

	status, respBody, err := c.do(ctx, http.MethodPost, c.baseURL+"/webhooks", body)
	if err != nil {
		return "", err
	}

	if status != http.StatusCreated {
		return "", fmt.Errorf("%w: HTTP %d", ErrRegistrationFailed, status)
	}

	var resp createResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("decoding create response: %w", err)
	}

	log.Debug().
		Str("id", resp.Data.ID).
		Str("url", callbackURL).
		Msg("Webhook registered")

	return resp.Data.ID, nil
}

// ListWebhooks returns every webhook registered for the client's store as an
// id-to-url mapping, walking the paginated listing one page at a time until
// the API reports the last page.
func (c *Client) ListWebhooks(ctx context.Context) (map[string]string, error) {
	webhooks := make(map[string]string)

	page := 0
	for {
		page++

		u := fmt.Sprintf("%s/webhooks?%s", c.baseURL, url.Values{
			"filter[store_id]": {c.storeID},
			"page[number]":     {strconv.Itoa(page)},
		}.Encode())

		status, body, err := c.do(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf("listing webhooks: HTTP %d", status)
		}

		var resp listResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("decoding list response: %w", err)
		}

		for _, wh := range resp.Data {
			webhooks[wh.ID] = wh.Attributes.URL
		}

		if resp.Meta.Page.CurrentPage >= resp.Meta.Page.LastPage {
			break
		}
	}

	return webhooks, nil
}

// DeleteWebhook removes the webhook with the given id. A non-204 response is
// ErrDeletionFailed; callers decide whether that is fatal.
func (c *Client) DeleteWebhook(ctx context.Context, id string) error {
	status, _, err := c.do(ctx, http.MethodDelete, c.baseURL+"/webhooks/"+id, nil)
	if err != nil {
		return err
	}

	if status != http.StatusNoContent {
		return fmt.Errorf("%w: HTTP %d", ErrDeletionFailed, status)
	}

	log.Debug().Str("id", id).Msg("Webhook deleted")
	return nil
}

// do issues one API request, retrying transport failures up to maxAttempts
// with a fixed delay. HTTP status codes are returned to the caller untouched.
func (c *Client) do(ctx context.Context, method, url string, body []byte) (int, []byte, error) {
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return 0, nil, ctx.Err()
			case <-time.After(retryDelay):
			}
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return 0, nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Accept", jsonAPIMediaType)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		if body != nil {
			req.Header.Set("Content-Type", jsonAPIMediaType)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			log.Debug().
				Err(err).
				Str("method", method).
				Int("attempt", attempt).
				Msg("Billing API request failed")
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		return resp.StatusCode, respBody, nil
	}

	return 0, nil, fmt.Errorf("billing API unreachable after %d attempts: %w", maxAttempts, lastErr)
}
