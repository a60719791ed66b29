// File: waymate/client/client.go
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"waymate/models"
)

// APIError is a non-2xx envelope returned by the coordination API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// IsConflict reports whether the server refused the write because the record
// state no longer allows it (duplicate assignment, resolved emergency).
func (e *APIError) IsConflict() bool {
	return e.StatusCode == http.StatusConflict
}

// Client is a thin typed wrapper over the coordination API. All responses
// arrive in the shared envelope; Data is unwrapped before decoding.
type Client struct {
	BaseURL    string
	HTTP       *http.Client
	Token      string
	DeviceID   string
	DeviceName string
}

// New creates a Client with sane timeouts for mobile networks.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var buf *bytes.Buffer
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: failed to encode request body: %w", err)
		}
		buf = bytes.NewBuffer(b)
	} else {
		buf = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, buf)
	if err != nil {
		return fmt.Errorf("client: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	if c.DeviceID != "" {
		req.Header.Set("X-Device-ID", c.DeviceID)
	}
	if c.DeviceName != "" {
		req.Header.Set("X-Device-Name", c.DeviceName)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("client: request failed: %w", err)
	}
	defer resp.Body.Close()

	var env struct {
		Status  int             `json:"status"`
		Data    json.RawMessage `json:"data,omitempty"`
		Message string          `json:"message,omitempty"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("client: failed to decode response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}
	if out != nil && env.Data != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("client: failed to decode payload: %w", err)
		}
	}
	return nil
}

// GetTraveller fetches one emergency record.
func (c *Client) GetTraveller(ctx context.Context, id string) (*models.Traveller, error) {
	var t models.Traveller
	if err := c.do(ctx, http.MethodGet, "/api/travellers/id/"+url.PathEscape(id), nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Activate raises an SOS for the traveler at the given position.
func (c *Client) Activate(ctx context.Context, id string, lat, lng float64) (*models.Traveller, error) {
	body := map[string]float64{"latitude": lat, "longitude": lng}
	var t models.Traveller
	if err := c.do(ctx, http.MethodPost, "/api/travellers/id/"+url.PathEscape(id)+"/activate", body, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Resolve retires the traveler's SOS.
func (c *Client) Resolve(ctx context.Context, id string) (*models.Traveller, error) {
	var t models.Traveller
	if err := c.do(ctx, http.MethodPost, "/api/travellers/id/"+url.PathEscape(id)+"/resolve", nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// AssignContact adds a supporter to the traveler's emergency. The server
// refuses duplicates with a conflict; callers treat that as already done.
func (c *Client) AssignContact(ctx context.Context, id, supporterID string) (*models.Traveller, error) {
	body := map[string]string{"supporter_id": supporterID}
	var t models.Traveller
	if err := c.do(ctx, http.MethodPost, "/api/travellers/id/"+url.PathEscape(id)+"/contacts", body, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// RemoveContact takes a supporter off the traveler's emergency.
func (c *Client) RemoveContact(ctx context.Context, id, supporterID string) (*models.Traveller, error) {
	var t models.Traveller
	path := "/api/travellers/id/" + url.PathEscape(id) + "/contacts/" + url.PathEscape(supporterID)
	if err := c.do(ctx, http.MethodDelete, path, nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// SupporterFeed fetches the emergencies the supporter can act on.
func (c *Client) SupporterFeed(ctx context.Context, supporterID string) ([]models.SOSRecord, error) {
	var records []models.SOSRecord
	if err := c.do(ctx, http.MethodGet, "/api/travellers/sos/supporter/"+url.PathEscape(supporterID), nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// AllSOS fetches every active-or-recent emergency (console only).
func (c *Client) AllSOS(ctx context.Context) ([]models.SOSRecord, error) {
	var records []models.SOSRecord
	if err := c.do(ctx, http.MethodGet, "/api/admin/sos", nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// AdminResolve retires an emergency from the console.
func (c *Client) AdminResolve(ctx context.Context, id string) (*models.Traveller, error) {
	var t models.Traveller
	if err := c.do(ctx, http.MethodPost, "/api/admin/sos/"+url.PathEscape(id)+"/resolve", nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// AdminAssign assigns a supporter to an emergency from the console.
func (c *Client) AdminAssign(ctx context.Context, id, supporterID string) (*models.Traveller, error) {
	body := map[string]string{"supporter_id": supporterID}
	var t models.Traveller
	if err := c.do(ctx, http.MethodPost, "/api/admin/sos/"+url.PathEscape(id)+"/contacts", body, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// AdminRemoveContact takes a supporter off an emergency from the console.
func (c *Client) AdminRemoveContact(ctx context.Context, id, supporterID string) (*models.Traveller, error) {
	var t models.Traveller
	path := "/api/admin/sos/" + url.PathEscape(id) + "/contacts/" + url.PathEscape(supporterID)
	if err := c.do(ctx, http.MethodDelete, path, nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Supporters fetches the roster joined with display fields.
func (c *Client) Supporters(ctx context.Context) ([]models.SupporterInfo, error) {
	var roster []models.SupporterInfo
	if err := c.do(ctx, http.MethodGet, "/api/admin/supporters", nil, &roster); err != nil {
		return nil, err
	}
	return roster, nil
}

// SetAvailability toggles whether the supporter receives SOS fan-out.
func (c *Client) SetAvailability(ctx context.Context, supporterID string, available bool) error {
	body := map[string]bool{"is_available": available}
	return c.do(ctx, http.MethodPatch, "/api/supporters/"+url.PathEscape(supporterID)+"/availability", body, nil)
}
