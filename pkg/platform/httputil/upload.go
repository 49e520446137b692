package httputil

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	dErrors "votegate/pkg/domain-errors"
)

// DefaultMaxUpload bounds an uploaded capture image.
const DefaultMaxUpload int64 = 5 << 20

// ReadUpload returns the uploaded file bytes. A multipart/form-data request
// is read from the named field; any other content type is taken as the raw
// image body. An empty upload is returned as an empty slice, not an error.
func ReadUpload(r *http.Request, field string, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUpload
	}
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return readMultipart(r, field, maxBytes)
	}
	return readLimited(r.Body, maxBytes)
}

func readMultipart(r *http.Request, field string, maxBytes int64) ([]byte, error) {
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid multipart upload")
	}
	file, _, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("missing %q file field", field))
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid multipart upload")
	}
	defer file.Close()
	return readLimited(file, maxBytes)
}

func readLimited(r io.Reader, maxBytes int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "failed to read upload")
	}
	if int64(len(data)) > maxBytes {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "upload too large")
	}
	return data, nil
}
