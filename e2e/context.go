package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// TestContext holds state between steps of one scenario.
type TestContext struct {
	BaseURL          string
	HTTPClient       *http.Client
	LastResponse     *http.Response
	LastResponseBody []byte
	SessionID        string
	AdminToken       string
	FaceEncoding     string
	// ForwardedFor, when set, is sent as X-Forwarded-For.
	ForwardedFor string

	// Scanner, when set, controls which voter the fake fingerprint reader matches.
	Scanner FingerprintScanner
}

// FingerprintScanner lets scenarios decide what the next reading returns.
type FingerprintScanner interface {
	Present(voterID uint64)
	Reject()
}

// NewTestContext targets BASE_URL, or baseURL when BASE_URL is unset.
func NewTestContext(baseURL string, scanner FingerprintScanner) *TestContext {
	if env := os.Getenv("BASE_URL"); env != "" {
		baseURL = env
		scanner = nil
	}
	return &TestContext{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		Scanner:    scanner,
	}
}

// POST sends body as JSON. A nil body sends no payload.
func (tc *TestContext) POST(path string, body any) error {
	if body == nil {
		return tc.do(http.MethodPost, path, "", nil, nil)
	}
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}
	return tc.do(http.MethodPost, path, "application/json", bytes.NewReader(data), nil)
}

// POSTRaw sends an opaque payload such as a camera frame.
func (tc *TestContext) POSTRaw(path, contentType string, payload []byte) error {
	return tc.do(http.MethodPost, path, contentType, bytes.NewReader(payload), nil)
}

// GET sends a request with optional headers.
func (tc *TestContext) GET(path string, headers map[string]string) error {
	return tc.do(http.MethodGet, path, "", nil, headers)
}

func (tc *TestContext) DELETE(path string, headers map[string]string) error {
	return tc.do(http.MethodDelete, path, "", nil, headers)
}

// AdminPOST sends JSON with the stored admin bearer token.
func (tc *TestContext) AdminPOST(path string, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}
	return tc.do(http.MethodPost, path, "application/json", bytes.NewReader(data), tc.adminHeaders())
}

func (tc *TestContext) adminHeaders() map[string]string {
	if tc.AdminToken == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + tc.AdminToken}
}

func (tc *TestContext) do(method, path, contentType string, body io.Reader, headers map[string]string) error {
	req, err := http.NewRequestWithContext(context.Background(), method, tc.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("User-Agent", "votegate-e2e/1.0")
	if tc.ForwardedFor != "" {
		req.Header.Set("X-Forwarded-For", tc.ForwardedFor)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := tc.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	tc.LastResponse = resp
	tc.LastResponseBody, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	return nil
}

// GetResponseField extracts a field from the JSON response. Dotted paths
// descend into nested objects, e.g. "selected_candidate.name".
func (tc *TestContext) GetResponseField(path string) (any, error) {
	var value any
	if err := json.Unmarshal(tc.LastResponseBody, &value); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	for _, key := range strings.Split(path, ".") {
		obj, ok := value.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("field %s not found in response", path)
		}
		if value, ok = obj[key]; !ok {
			return nil, fmt.Errorf("field %s not found in response", path)
		}
	}
	return value, nil
}

func (tc *TestContext) GetLastResponseStatus() int {
	if tc.LastResponse == nil {
		return 0
	}
	return tc.LastResponse.StatusCode
}
