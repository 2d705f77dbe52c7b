package video

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const maxVendorBody = 1 << 20

type vendorResponse struct {
	StatusCode int
	Body       []byte
}

func (r *vendorResponse) ok() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (r *vendorResponse) decode(v interface{}) error {
	if len(r.Body) == 0 {
		return nil
	}
	return json.Unmarshal(r.Body, v)
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// doJSON sends one request with a bearer key. Transport failures are returned
// as errors; non-2xx statuses are left for the caller to interpret.
func doJSON(ctx context.Context, client *http.Client, method, url, apiKey string, payload interface{}) (*vendorResponse, error) {
	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxVendorBody))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return &vendorResponse{StatusCode: resp.StatusCode, Body: raw}, nil
}
