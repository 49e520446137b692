package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	dErrors "votegate/pkg/domain-errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// DecodeJSON decodes a JSON request body into the target type.
// On failure it writes an invalid_input response and returns nil, false.
func DecodeJSON[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (*T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "failed to decode request body",
			"error", err,
			"request_id", requestID,
		)
		WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return nil, false
	}
	return &req, true
}

// Normalizable is implemented by request types that trim or canonicalise input.
type Normalizable interface {
	Normalize()
}

// Validatable is implemented by request types with rules beyond struct tags.
type Validatable interface {
	Validate() error
}

// PrepareRequest normalizes a request, checks its `validate` struct tags and
// then runs its Validate method, in that order.
func PrepareRequest(req any) error {
	if n, ok := req.(Normalizable); ok {
		n.Normalize()
	}
	if err := validate.Struct(req); err != nil {
		var invalid *validator.InvalidValidationError
		if !errors.As(err, &invalid) {
			return dErrors.New(dErrors.CodeInvalidInput, describeValidation(err))
		}
	}
	if v, ok := req.(Validatable); ok {
		return v.Validate()
	}
	return nil
}

// DecodeAndPrepare combines JSON decoding with request preparation.
func DecodeAndPrepare[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (*T, bool) {
	req, ok := DecodeJSON[T](w, r, logger, ctx, requestID)
	if !ok {
		return nil, false
	}

	if err := PrepareRequest(req); err != nil {
		logger.WarnContext(ctx, "invalid request",
			"error", err,
			"request_id", requestID,
		)
		var domainErr *dErrors.Error
		if errors.As(err, &domainErr) {
			WriteError(w, err)
		} else {
			WriteError(w, dErrors.New(dErrors.CodeInvalidInput, err.Error()))
		}
		return nil, false
	}

	return req, true
}

func describeValidation(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
