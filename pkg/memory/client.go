package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ashevelev/chatweb/pkg/domain"
)

const defaultBaseURL = "https://api.mem0.ai/v1"

// Client talks to the long-term memory service. Every method degrades
// gracefully: callers treat a failure as "no memories", never as a
// fatal condition.
type Client struct {
	apiKey  string
	baseURL string
	hc      *http.Client
}

func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		hc:      &http.Client{},
	}
}

// Add stores a user utterance as a long-term memory.
func (c *Client) Add(ctx context.Context, userID, text string) error {
	body := map[string]any{
		"user_id": userID,
		"messages": []map[string]string{
			{"role": "user", "content": text},
		},
	}

	return c.post(ctx, "/memories", body, nil)
}

// Search returns memories relevant to the query for the given user.
func (c *Client) Search(ctx context.Context, userID, query string) ([]domain.Memory, error) {
	body := map[string]any{
		"user_id": userID,
		"query":   query,
	}

	var memories []domain.Memory
	if err := c.post(ctx, "/memories/search", body, &memories); err != nil {
		return nil, err
	}
	return memories, nil
}

// List returns all memories stored for the user.
func (c *Client) List(ctx context.Context, userID string) ([]domain.Memory, error) {
	u := fmt.Sprintf("%s/memories?user_id=%s", c.baseURL, url.QueryEscape(userID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching memories: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("memory service status %d: %w", resp.StatusCode, domain.ErrUpstream)
	}

	var memories []domain.Memory
	if err := json.NewDecoder(resp.Body).Decode(&memories); err != nil {
		return nil, fmt.Errorf("decoding memories: %w", err)
	}
	return memories, nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("calling memory service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("memory service status %d: %w", resp.StatusCode, domain.ErrUpstream)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
