// Package opensky fetches aircraft state snapshots from the OpenSky Network
// REST API.
package opensky

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"opensky_ingest/internal/states"
)

// DefaultURL is the public OpenSky endpoint returning all current state
// vectors.
const DefaultURL = "https://opensky-network.org/api/states/all"

// DefaultTimeout bounds one snapshot request end to end.
const DefaultTimeout = 30 * time.Second

// FetchError reports a failed snapshot request: transport error, non-2xx
// response or an unparsable body. Fetches are not retried within a cycle.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Snapshot is one fetch result: the reported snapshot time plus the raw state
// arrays. Time is nil when the response carried no time field; States may be
// empty. Neither is an error.
type Snapshot struct {
	Time   *int64             `json:"time"`
	States []states.RawRecord `json:"states"`
}

// Client fetches snapshots from a fixed OpenSky endpoint.
type Client struct {
	url  string
	http *http.Client
	log  *logrus.Logger
}

// NewClient creates a client for the given endpoint. An empty url selects
// DefaultURL; a zero timeout selects DefaultTimeout; a nil logger selects the
// logrus standard logger.
func NewClient(url string, timeout time.Duration, log *logrus.Logger) *Client {
	if url == "" {
		url = DefaultURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Client{
		url:  url,
		http: &http.Client{Timeout: timeout},
		log:  log,
	}
}

// Fetch performs one snapshot request. Network failures, non-2xx responses
// and unparsable bodies all return a FetchError. A response missing the time
// field or carrying an empty state list is logged as a warning and returned
// as-is; the caller decides how to handle it.
func (c *Client) Fetch(ctx context.Context) (*Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, &FetchError{URL: c.url, Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchError{URL: c.url, Err: err}
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: c.url, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	var snap Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, &FetchError{URL: c.url, Err: fmt.Errorf("decode response: %w", err)}
	}

	if snap.Time == nil {
		c.log.Warn("opensky response has no time field")
	}
	if len(snap.States) == 0 {
		c.log.Warn("opensky returned an empty states list")
	}

	c.log.WithFields(logrus.Fields{
		"states": len(snap.States),
		"time":   timeValue(snap.Time),
	}).Info("fetched opensky snapshot")

	return &snap, nil
}

func timeValue(t *int64) any {
	if t == nil {
		return nil
	}
	return *t
}
