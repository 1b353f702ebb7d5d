package osm

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// NotesClient publishes notes through the OSM API 0.6 notes endpoint.
type NotesClient struct {
	baseURL string
	client  *Client
}

// NewNotesClient creates a client posting to baseURL.
func NewNotesClient(baseURL string, client *Client) *NotesClient {
	if baseURL == "" {
		baseURL = NotesBaseURL
	}
	return &NotesClient{baseURL: baseURL, client: client}
}

// CreateNote posts note as form-encoded lat, lon and text. Any status of
// 300 or above is reported as an *APIError.
func (n *NotesClient) CreateNote(ctx context.Context, note Note) error {
	if err := ValidateCoords(note.Lat, note.Lon); err != nil {
		return err
	}
	if strings.TrimSpace(note.Text) == "" {
		return fmt.Errorf("note text is empty")
	}

	form := url.Values{
		"lat":  {strconv.FormatFloat(note.Lat, 'f', -1, 64)},
		"lon":  {strconv.FormatFloat(note.Lon, 'f', -1, 64)},
		"text": {note.Text},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create note request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(ctx, req, "create_note")
	if err != nil {
		return NewAPIError("Notes", 0, err.Error(), "")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = resp.Status
		}

		var guidance string
		switch resp.StatusCode {
		case http.StatusTooManyRequests:
			guidance = GuidanceNotesRateLimit
		case http.StatusBadRequest:
			guidance = GuidanceNotesRejected
		}
		return NewAPIError("Notes", resp.StatusCode, msg, guidance)
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
