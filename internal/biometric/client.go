// Package biometric is the client side of the face and fingerprint service.
package biometric

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	models "votegate/contracts/biometric"
)

// Client is everything votegate asks of the biometric service.
type Client interface {
	EncodeFace(ctx context.Context, image []byte) (models.Descriptor, error)
	CompareFaces(ctx context.Context, stored, captured models.Descriptor, threshold float64) (bool, error)
	InitFingerprintScanner(ctx context.Context, port string) error
	VerifyFingerprint(ctx context.Context) (models.FingerprintMatch, error)
	RegisterFingerprint(ctx context.Context, voterID uint64, name string) (string, error)
	DeleteFingerprint(ctx context.Context, voterID uint64) error
}

const (
	endpointEncodeFace          = "/api/encode_face"
	endpointCompareFaces        = "/api/face/compare"
	endpointFingerprintInit     = "/api/fingerprint/init"
	endpointFingerprintVerify   = "/api/fingerprint/verify"
	endpointFingerprintRegister = "/api/fingerprint/register"
	endpointFingerprintDelete   = "/api/fingerprint/delete/"

	faceUploadField    = "file"
	faceUploadFilename = "face-capture.jpg"
	maxResponseBytes   = 1 << 20
)

// HTTPClient talks to the biometric REST service.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

var _ Client = (*HTTPClient)(nil)

// HTTPClientOption configures the HTTPClient.
type HTTPClientOption func(*HTTPClient)

// WithHTTPClient sets a custom HTTP client (for testing).
func WithHTTPClient(client *http.Client) HTTPClientOption {
	return func(c *HTTPClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewHTTPClient creates a client for the service at baseURL.
func NewHTTPClient(baseURL string, timeout time.Duration, opts ...HTTPClientOption) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope is the response wrapper every endpoint uses.
type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type encodeFaceData struct {
	Encoding []float64 `json:"encoding"`
}

type compareFacesRequest struct {
	Encoding1 []float64 `json:"encoding1"`
	Encoding2 []float64 `json:"encoding2"`
	Threshold float64   `json:"threshold"`
}

type compareFacesData struct {
	IsMatch *bool `json:"is_match"`
}

type fingerprintInitRequest struct {
	Port string `json:"port"`
}

type fingerprintVerifyData struct {
	IsMatch bool            `json:"is_match"`
	VoterID json.RawMessage `json:"voter_id"`
}

type fingerprintRegisterRequest struct {
	VoterID   string `json:"voter_id"`
	VoterName string `json:"voter_name"`
}

type fingerprintRegisterData struct {
	FingerprintEncoding string `json:"fingerprint_encoding"`
}

// EncodeFace uploads a captured image and returns its descriptor.
func (c *HTTPClient) EncodeFace(ctx context.Context, image []byte) (models.Descriptor, error) {
	if len(image) == 0 {
		return nil, newError(CategoryBadData, endpointEncodeFace, "image is empty", nil)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, faceUploadField, faceUploadFilename))
	header.Set("Content-Type", "image/jpeg")
	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, newError(CategoryInternal, endpointEncodeFace, "failed to build upload", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, newError(CategoryInternal, endpointEncodeFace, "failed to build upload", err)
	}
	if err := mw.Close(); err != nil {
		return nil, newError(CategoryInternal, endpointEncodeFace, "failed to build upload", err)
	}

	var data encodeFaceData
	if err := c.do(ctx, http.MethodPost, endpointEncodeFace, mw.FormDataContentType(), &body, &data); err != nil {
		return nil, err
	}
	if len(data.Encoding) == 0 {
		return nil, newError(CategoryContractMismatch, endpointEncodeFace, "response has no encoding", nil)
	}
	return models.Descriptor(data.Encoding), nil
}

// CompareFaces asks whether two descriptors belong to the same face.
func (c *HTTPClient) CompareFaces(ctx context.Context, stored, captured models.Descriptor, threshold float64) (bool, error) {
	if len(stored) == 0 || len(captured) == 0 {
		return false, newError(CategoryBadData, endpointCompareFaces, "descriptor is empty", nil)
	}
	var data compareFacesData
	err := c.doJSON(ctx, http.MethodPost, endpointCompareFaces, compareFacesRequest{
		Encoding1: stored,
		Encoding2: captured,
		Threshold: threshold,
	}, &data)
	if err != nil {
		return false, err
	}
	if data.IsMatch == nil {
		return false, newError(CategoryContractMismatch, endpointCompareFaces, "response has no is_match", nil)
	}
	return *data.IsMatch, nil
}

// InitFingerprintScanner opens the reader on the given serial port.
func (c *HTTPClient) InitFingerprintScanner(ctx context.Context, port string) error {
	return c.doJSON(ctx, http.MethodPost, endpointFingerprintInit, fingerprintInitRequest{Port: port}, nil)
}

// VerifyFingerprint takes a reading and returns whose template it matched.
func (c *HTTPClient) VerifyFingerprint(ctx context.Context) (models.FingerprintMatch, error) {
	var data fingerprintVerifyData
	if err := c.do(ctx, http.MethodPost, endpointFingerprintVerify, "", nil, &data); err != nil {
		return models.FingerprintMatch{}, err
	}
	match := models.FingerprintMatch{IsMatch: data.IsMatch}
	if !data.IsMatch {
		return match, nil
	}
	id, err := parseVoterID(data.VoterID)
	if err != nil {
		return models.FingerprintMatch{}, newError(CategoryContractMismatch, endpointFingerprintVerify, "voter_id is not a voter id", err)
	}
	match.VoterID = id
	return match, nil
}

// parseVoterID accepts the id as a JSON number or a decimal string.
func parseVoterID(raw json.RawMessage) (uint64, error) {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if s == "" || s == "null" {
		return 0, errors.New("missing voter_id")
	}
	return strconv.ParseUint(s, 10, 64)
}

// RegisterFingerprint enrolls a template for the voter and returns its encoding.
func (c *HTTPClient) RegisterFingerprint(ctx context.Context, voterID uint64, name string) (string, error) {
	var data fingerprintRegisterData
	err := c.doJSON(ctx, http.MethodPost, endpointFingerprintRegister, fingerprintRegisterRequest{
		VoterID:   strconv.FormatUint(voterID, 10),
		VoterName: name,
	}, &data)
	if err != nil {
		return "", err
	}
	if data.FingerprintEncoding == "" {
		return "", newError(CategoryContractMismatch, endpointFingerprintRegister, "response has no fingerprint_encoding", nil)
	}
	return data.FingerprintEncoding, nil
}

// DeleteFingerprint removes the voter's enrolled template.
func (c *HTTPClient) DeleteFingerprint(ctx context.Context, voterID uint64) error {
	return c.do(ctx, http.MethodDelete, endpointFingerprintDelete+strconv.FormatUint(voterID, 10), "", nil, nil)
}

func (c *HTTPClient) doJSON(ctx context.Context, method, endpoint string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return newError(CategoryBadData, endpoint, "failed to marshal request", err)
	}
	return c.do(ctx, method, endpoint, "application/json", bytes.NewReader(payload), out)
}

// do executes one call and unwraps the envelope into out. A false success
// flag, or a 4xx/500 answer with a readable envelope, is a rejection.
func (c *HTTPClient) do(ctx context.Context, method, endpoint, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return newError(CategoryInternal, endpoint, "failed to create request", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return newError(CategoryTimeout, endpoint, "request timeout", err)
		}
		return newError(CategoryOutage, endpoint, "failed to execute request", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return newError(CategoryOutage, endpoint, "failed to read response body", err)
	}

	switch resp.StatusCode {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return newError(CategoryOutage, endpoint, fmt.Sprintf("service unavailable: %d", resp.StatusCode), nil)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Success == nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return newError(CategoryInternal, endpoint, fmt.Sprintf("unexpected status code: %d", resp.StatusCode), nil)
		}
		return newError(CategoryContractMismatch, endpoint, "failed to parse response", err)
	}

	if !*env.Success || resp.StatusCode >= http.StatusBadRequest {
		msg := env.Message
		if msg == "" {
			msg = fmt.Sprintf("request rejected: %d", resp.StatusCode)
		}
		return newError(CategoryRejected, endpoint, msg, nil)
	}

	if out == nil {
		return nil
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return newError(CategoryContractMismatch, endpoint, "response has no data", nil)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return newError(CategoryContractMismatch, endpoint, "failed to parse response data", err)
	}
	return nil
}

func isTimeout(err error) bool {
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}
