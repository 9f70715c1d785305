// Package device is the HTTP client for the hydro controller's JSON status
// endpoint. Timestamps are returned exactly as the device reports them; clock
// correction is the caller's concern.
package device

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrBadPayload marks a response that decoded wrong or is missing required
// fields. Callers must not retry it; the device will keep sending the same
// document until its next sensor cycle.
var ErrBadPayload = errors.New("bad device payload")

// PulseEvent is one dosing-pump activation as the device reports it.
// Type doubles as the pump id (1 = pH down, 2 = pH up).
type PulseEvent struct {
	Time      int64   `json:"time"`
	Type      int     `json:"type"`
	Len       float64 `json:"len"`
	Interrupt bool    `json:"interrupt"`
}

// Snapshot is one status document from the controller. Time is epoch seconds
// on the device's own (skewed) clock.
type Snapshot struct {
	Time        int64        `json:"time"`
	PH          float64      `json:"ph"`
	PulseEvents []PulseEvent `json:"pulse_events,omitempty"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client for http://<addr><path>. addr comes from the
// collector command line, path from config (default /json/mailbox.json).
func NewClient(addr string, path string, timeout time.Duration) *Client {
	return &Client{
		baseURL: "http://" + addr + path,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Fetch performs one GET against the status endpoint. Transport errors and
// non-2xx statuses are returned as-is (retryable); decode failures and
// missing required fields wrap ErrBadPayload.
func (c *Client) Fetch(ctx context.Context) (Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return Snapshot{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Snapshot{}, fmt.Errorf("fetch %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Snapshot{}, fmt.Errorf("fetch %s: unexpected status %d", c.baseURL, resp.StatusCode)
	}

	// Decode through pointers so a missing field is distinguishable from a
	// zero value.
	var raw struct {
		Time        *int64       `json:"time"`
		PH          *float64     `json:"ph"`
		PulseEvents []PulseEvent `json:"pulse_events"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return Snapshot{}, fmt.Errorf("%w: decode: %v", ErrBadPayload, err)
	}
	if raw.Time == nil {
		return Snapshot{}, fmt.Errorf("%w: missing field %q", ErrBadPayload, "time")
	}
	if raw.PH == nil {
		return Snapshot{}, fmt.Errorf("%w: missing field %q", ErrBadPayload, "ph")
	}

	return Snapshot{
		Time:        *raw.Time,
		PH:          *raw.PH,
		PulseEvents: raw.PulseEvents,
	}, nil
}
