package osm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// maxErrorBody bounds how much of an error response is kept for messages.
const maxErrorBody = 512

// OverpassClient runs queries against an Overpass interpreter endpoint.
type OverpassClient struct {
	baseURL string
	client  *Client
}

// NewOverpassClient creates a client for the interpreter at baseURL.
func NewOverpassClient(baseURL string, client *Client) *OverpassClient {
	if baseURL == "" {
		baseURL = OverpassBaseURL
	}
	return &OverpassClient{baseURL: baseURL, client: client}
}

// Query POSTs query as the form field "data" and returns the raw elements.
func (o *OverpassClient) Query(ctx context.Context, query string) ([]Element, error) {
	form := url.Values{"data": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create overpass request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := o.client.Do(ctx, req, "query")
	if err != nil {
		return nil, NewAPIError("Overpass", 0, err.Error(), "")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, overpassStatusError(resp)
	}

	var out OverpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, NewAPIError("Overpass", resp.StatusCode,
			fmt.Sprintf("failed to decode response: %v", err), GuidanceDataError)
	}

	// the interpreter reports timeouts and memory exhaustion with a 200
	// status and a remark instead of elements
	if strings.HasPrefix(out.Remark, "runtime error") {
		return nil, NewAPIError("Overpass", resp.StatusCode, out.Remark, GuidanceOverpassRuntime)
	}

	return out.Elements, nil
}

func overpassStatusError(resp *http.Response) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = resp.Status
	}

	var guidance string
	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		guidance = GuidanceOverpassRateLimit
	case http.StatusGatewayTimeout:
		guidance = GuidanceOverpassTimeout
	case http.StatusBadRequest:
		guidance = GuidanceOverpassSyntax
	}
	return NewAPIError("Overpass", resp.StatusCode, msg, guidance)
}

// StatusURL derives the server status endpoint from the interpreter URL.
func (o *OverpassClient) StatusURL() string {
	return strings.TrimSuffix(strings.TrimSuffix(o.baseURL, "/"), "/interpreter") + "/status"
}

// Status checks that the Overpass server answers its status page. It is
// used as a health probe and does not count against query slots.
func (o *OverpassClient) Status(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.StatusURL(), nil)
	if err != nil {
		return fmt.Errorf("create status request: %w", err)
	}

	resp, err := o.client.Do(ctx, req, "status")
	if err != nil {
		return NewAPIError("Overpass", 0, err.Error(), "")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return overpassStatusError(resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
