package biometric

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	models "votegate/contracts/biometric"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHTTPClient(srv.URL, time.Second)
}

func writeEnvelope(w http.ResponseWriter, status int, success bool, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": success,
		"message": message,
		"data":    data,
	})
}

func TestEncodeFace(t *testing.T) {
	t.Run("uploads the image as multipart file", func(t *testing.T) {
		client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/encode_face", r.URL.Path)
			file, header, err := r.FormFile("file")
			require.NoError(t, err)
			defer file.Close()
			body, _ := io.ReadAll(file)
			assert.Equal(t, "face-capture.jpg", header.Filename)
			assert.Equal(t, "jpeg-bytes", string(body))
			writeEnvelope(w, http.StatusOK, true, "", map[string]any{"encoding": []float64{0.1, 0.2}})
		})

		d, err := client.EncodeFace(context.Background(), []byte("jpeg-bytes"))
		require.NoError(t, err)
		assert.Equal(t, models.Descriptor{0.1, 0.2}, d)
	})

	t.Run("no face detected is a rejection with the service message", func(t *testing.T) {
		client := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
			writeEnvelope(w, http.StatusBadRequest, false, "No face detected in image", nil)
		})

		_, err := client.EncodeFace(context.Background(), []byte("x"))
		require.Error(t, err)
		assert.Equal(t, CategoryRejected, CategoryOf(err))
		var be *Error
		require.ErrorAs(t, err, &be)
		assert.Equal(t, "No face detected in image", be.Reason())
		assert.False(t, be.Unreachable())
	})

	t.Run("empty image never leaves the process", func(t *testing.T) {
		client := NewHTTPClient("http://127.0.0.1:1", time.Second)
		_, err := client.EncodeFace(context.Background(), nil)
		assert.Equal(t, CategoryBadData, CategoryOf(err))
	})

	t.Run("missing encoding is a contract mismatch", func(t *testing.T) {
		client := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
			writeEnvelope(w, http.StatusOK, true, "", map[string]any{})
		})
		_, err := client.EncodeFace(context.Background(), []byte("x"))
		assert.Equal(t, CategoryContractMismatch, CategoryOf(err))
	})
}

func TestCompareFaces(t *testing.T) {
	t.Run("sends both encodings and the threshold", func(t *testing.T) {
		client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/face/compare", r.URL.Path)
			var req compareFacesRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, []float64{1, 2}, req.Encoding1)
			assert.Equal(t, []float64{3, 4}, req.Encoding2)
			assert.Equal(t, 0.6, req.Threshold)
			writeEnvelope(w, http.StatusOK, true, "", map[string]any{"is_match": true, "distance": 0.31})
		})

		ok, err := client.CompareFaces(context.Background(), models.Descriptor{1, 2}, models.Descriptor{3, 4}, 0.6)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("a non-match is an answer, not an error", func(t *testing.T) {
		client := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
			writeEnvelope(w, http.StatusOK, true, "", map[string]any{"is_match": false})
		})
		ok, err := client.CompareFaces(context.Background(), models.Descriptor{1}, models.Descriptor{2}, 0.6)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("missing is_match is a contract mismatch", func(t *testing.T) {
		client := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
			writeEnvelope(w, http.StatusOK, true, "", map[string]any{"distance": 0.2})
		})
		_, err := client.CompareFaces(context.Background(), models.Descriptor{1}, models.Descriptor{2}, 0.6)
		assert.Equal(t, CategoryContractMismatch, CategoryOf(err))
	})
}

func TestFingerprint(t *testing.T) {
	t.Run("init sends the port", func(t *testing.T) {
		client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/fingerprint/init", r.URL.Path)
			var req fingerprintInitRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "COM11", req.Port)
			writeEnvelope(w, http.StatusOK, true, "Scanner initialized", nil)
		})
		require.NoError(t, client.InitFingerprintScanner(context.Background(), "COM11"))
	})

	t.Run("init failure is a rejection", func(t *testing.T) {
		client := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
			writeEnvelope(w, http.StatusOK, false, "Could not open COM11", nil)
		})
		err := client.InitFingerprintScanner(context.Background(), "COM11")
		assert.Equal(t, CategoryRejected, CategoryOf(err))
	})

	t.Run("verify accepts numeric and string voter ids", func(t *testing.T) {
		for _, id := range []any{7, "7"} {
			client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/fingerprint/verify", r.URL.Path)
				writeEnvelope(w, http.StatusOK, true, "", map[string]any{"is_match": true, "voter_id": id})
			})
			match, err := client.VerifyFingerprint(context.Background())
			require.NoError(t, err)
			assert.Equal(t, models.FingerprintMatch{IsMatch: true, VoterID: 7}, match)
		}
	})

	t.Run("verify without a match ignores the voter id", func(t *testing.T) {
		client := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
			writeEnvelope(w, http.StatusOK, true, "", map[string]any{"is_match": false, "voter_id": nil})
		})
		match, err := client.VerifyFingerprint(context.Background())
		require.NoError(t, err)
		assert.False(t, match.IsMatch)
	})

	t.Run("verify with a garbled voter id is a contract mismatch", func(t *testing.T) {
		client := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
			writeEnvelope(w, http.StatusOK, true, "", map[string]any{"is_match": true, "voter_id": "seven"})
		})
		_, err := client.VerifyFingerprint(context.Background())
		assert.Equal(t, CategoryContractMismatch, CategoryOf(err))
	})

	t.Run("register returns the template encoding", func(t *testing.T) {
		client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			var req fingerprintRegisterRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, fingerprintRegisterRequest{VoterID: "12", VoterName: "Erin"}, req)
			writeEnvelope(w, http.StatusOK, true, "", map[string]any{"fingerprint_encoding": "tmpl-12"})
		})
		enc, err := client.RegisterFingerprint(context.Background(), 12, "Erin")
		require.NoError(t, err)
		assert.Equal(t, "tmpl-12", enc)
	})

	t.Run("delete addresses the voter id", func(t *testing.T) {
		client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodDelete, r.Method)
			assert.Equal(t, "/api/fingerprint/delete/12", r.URL.Path)
			writeEnvelope(w, http.StatusOK, true, "deleted", nil)
		})
		require.NoError(t, client.DeleteFingerprint(context.Background(), 12))
	})
}

func TestTransportClassification(t *testing.T) {
	t.Run("connection refused is an outage", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		err := NewHTTPClient(url, time.Second).InitFingerprintScanner(context.Background(), "COM11")
		assert.Equal(t, CategoryOutage, CategoryOf(err))
		assert.True(t, IsUnreachable(err))
	})

	t.Run("slow service is a timeout", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			<-release
		}))
		t.Cleanup(srv.Close)
		t.Cleanup(func() { close(release) })

		err := NewHTTPClient(srv.URL, 50*time.Millisecond).InitFingerprintScanner(context.Background(), "COM11")
		assert.Equal(t, CategoryTimeout, CategoryOf(err))
		assert.True(t, IsUnreachable(err))
	})

	t.Run("503 is an outage", func(t *testing.T) {
		client := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
		err := client.InitFingerprintScanner(context.Background(), "COM11")
		assert.Equal(t, CategoryOutage, CategoryOf(err))
	})

	t.Run("500 without an envelope is internal", func(t *testing.T) {
		client := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("Traceback (most recent call last)"))
		})
		err := client.InitFingerprintScanner(context.Background(), "COM11")
		assert.Equal(t, CategoryInternal, CategoryOf(err))
		assert.False(t, IsUnreachable(err))
	})

	t.Run("html on 200 is a contract mismatch", func(t *testing.T) {
		client := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("<html></html>"))
		})
		err := client.InitFingerprintScanner(context.Background(), "COM11")
		assert.Equal(t, CategoryContractMismatch, CategoryOf(err))
	})
}
