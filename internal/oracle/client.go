// Package oracle is the HTTP client for the external roughness scoring
// service. The service wraps an ONNX regression model behind a single
// /predict endpoint: feature columns go in as single-element arrays, the
// score comes back as the first element of a predictions array.
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/banshee-data/roughness.report/internal/httputil"
	"github.com/banshee-data/roughness.report/internal/trip"
)

// ErrUnavailable wraps every failed oracle call: transport errors,
// non-success statuses, and malformed response bodies. Callers that only
// care whether the oracle answered can match with errors.Is.
var ErrUnavailable = errors.New("oracle unavailable")

// predictRequest mirrors the scoring service's input schema. Field names and
// the single-element array shape are part of the service contract.
type predictRequest struct {
	AccelerationY []float64 `json:"accelerationY"`
	AccelerationZ []float64 `json:"accelerationZ"`
	SpeedV        []float64 `json:"speedv"`
	UnixTimestamp []int64   `json:"unixTimestamp"`
	Latitude      []float64 `json:"latitude"`
	Longitude     []float64 `json:"longitude"`
}

type predictResponse struct {
	Predictions []float64 `json:"predictions"`
}

// Client calls the scoring service. It implements profile.Scorer.
type Client struct {
	url  string
	http httputil.HTTPClient
}

// NewClient returns a client for the /predict endpoint at baseURL. A nil
// HTTPClient selects the default standard client.
func NewClient(baseURL string, hc httputil.HTTPClient) *Client {
	if hc == nil {
		hc = httputil.NewStandardClient(nil)
	}
	return &Client{url: baseURL + "/predict", http: hc}
}

// Score submits one segment's feature tuple and returns the scalar roughness
// score (meters of roughness per kilometer).
func (c *Client) Score(ctx context.Context, seg trip.Segment) (float64, error) {
	body, err := json.Marshal(predictRequest{
		AccelerationY: []float64{seg.AvgAccelY},
		AccelerationZ: []float64{seg.AvgAccelZ},
		SpeedV:        []float64{seg.AvgSpeed},
		UnixTimestamp: []int64{seg.UnixTimestamp},
		Latitude:      []float64{seg.Latitude},
		Longitude:     []float64{seg.Longitude},
	})
	if err != nil {
		return 0, fmt.Errorf("%w: encode request: %v", ErrUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// read a little of the body so the error names the service's detail
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, detail)
	}

	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	if len(out.Predictions) == 0 {
		return 0, fmt.Errorf("%w: empty predictions array", ErrUnavailable)
	}

	return out.Predictions[0], nil
}
