package tunnel

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// The agent API needs a moment after the ngrok binary starts before the
	// tunnels endpoint answers.
	discoveryAttempts = 5
	discoveryDelay    = time.Second
)

// AgentClient talks to the ngrok agent's local inspection API.
type AgentClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAgentClient creates an AgentClient for the inspection API rooted at
// baseURL (e.g. "http://127.0.0.1:4040/api").
func NewAgentClient(baseURL string) *AgentClient {
	return &AgentClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

type tunnelsResponse struct {
	Tunnels []struct {
		PublicURL string `json:"public_url"`
	} `json:"tunnels"`
}

// PublicURL asks the agent for its active tunnels and returns the first
// tunnel's public URL. Each call retries up to discoveryAttempts times with a
// fixed delay to tolerate agent startup lag; "" with a nil error means the
// agent answered but has no usable tunnel yet.
func (c *AgentClient) PublicURL(ctx context.Context) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= discoveryAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(discoveryDelay):
			}
		}

		var resp tunnelsResponse
		if err := c.get(ctx, "/tunnels", &resp); err != nil {
			lastErr = err
			log.Debug().
				Err(err).
				Int("attempt", attempt).
				Msg("Agent API not answering yet")
			continue
		}

		if len(resp.Tunnels) == 0 {
			return "", nil
		}

		u := resp.Tunnels[0].PublicURL
		if strings.HasPrefix(u, "https://") || strings.HasPrefix(u, "http://") {
			return u, nil
		}
		return "", nil
	}

	return "", fmt.Errorf("agent API unreachable after %d attempts: %w", discoveryAttempts, lastErr)
}

// RequestLogEntry is one forwarded HTTP request reported by the agent.
type RequestLogEntry struct {
	ID         string
	Method     string
	URI        string
	StatusCode int
	Time       time.Time
}

type requestsResponse struct {
	Requests []struct {
		ID      string `json:"id"`
		Request struct {
			Method string `json:"method"`
			URI    string `json:"uri"`
		} `json:"request"`
		Response struct {
			StatusCode int         `json:"status_code"`
			Headers    http.Header `json:"headers"`
		} `json:"response"`
	} `json:"requests"`
}

// RecentRequests returns the most recent forwarded requests, newest first as
// reported by the agent, bounded by limit.
func (c *AgentClient) RecentRequests(ctx context.Context, limit int) ([]RequestLogEntry, error) {
	var resp requestsResponse
	if err := c.get(ctx, fmt.Sprintf("/requests/http?limit=%d", limit), &resp); err != nil {
		return nil, err
	}

	entries := make([]RequestLogEntry, 0, len(resp.Requests))
	for _, r := range resp.Requests {
		entry := RequestLogEntry{
			ID:         r.ID,
			Method:     r.Request.Method,
			URI:        r.Request.URI,
			StatusCode: r.Response.StatusCode,
		}
		if date := r.Response.Headers.Get("Date"); date != "" {
			if t, err := http.ParseTime(date); err == nil {
				entry.Time = t
			}
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func (c *AgentClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("agent API returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}
