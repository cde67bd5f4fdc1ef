package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"google.golang.org/api/idtoken"
)

// ResultsPath is where finished scans are delivered on the CRM side.
const ResultsPath = "/scan-results"

const maxErrorBody = 4 << 10

// Poster posts JSON payloads to the CRM callback.
type Poster interface {
	PostJSON(ctx context.Context, path string, payload any, requestID string) (map[string]any, error)
}

// Client delivers scan results to a CRM endpoint.
type Client struct {
	client  *http.Client
	baseURL string
}

// NewClient builds a webhook client. With a nil http client it tries an ID token
// client for baseURL first and falls back to a plain client with a short timeout.
func NewClient(client *http.Client, baseURL string) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, eris.New("webhook base url must not be empty")
	}
	if client == nil {
		idc, err := idtoken.NewClient(context.Background(), baseURL)
		if err != nil {
			client = &http.Client{Timeout: 10 * time.Second}
		} else {
			client = idc
		}
	}
	return &Client{client: client, baseURL: baseURL}, nil
}

// PostJSON posts payload to path and returns the "data" object of the reply.
func (c *Client) PostJSON(ctx context.Context, path string, payload any, requestID string) (map[string]any, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, eris.Wrap(err, "marshal webhook payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "create webhook request")
	}
	req.Header.Set("Content-Type", "application/json")
	if requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "webhook request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, eris.Errorf("webhook returned %d: %s", resp.StatusCode, errorMessage(resp.Body))
	}

	var reply struct {
		Data  map[string]any `json:"data"`
		Error string         `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil && err != io.EOF {
		return nil, eris.Wrap(err, "decode webhook response")
	}
	if reply.Error != "" {
		return nil, eris.Errorf("webhook error: %s", reply.Error)
	}
	return reply.Data, nil
}

func errorMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return "no response body"
	}

	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return strings.TrimSpace(string(data))
}

var _ Poster = (*Client)(nil)
