package errutil

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cybergard/ebiosgard/pkg/domain/types"
	"github.com/cybergard/ebiosgard/pkg/utils/logging"
	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
)

// Handle logs the error with its goerr context and forwards it to
// Sentry when the hub is initialized. The error is returned unchanged
// so callers can keep their flow.
func Handle(ctx context.Context, err error, msg string) error {
	if err == nil {
		return nil
	}

	logger := logging.From(ctx)

	var ge *goerr.Error
	if errors.As(err, &ge) {
		logger.Error(msg,
			"error", err.Error(),
			"values", ge.Values(),
			"stack", ge.Stacks(),
		)
	} else {
		logger.Error(msg, "error", err.Error())
	}

	capture(ctx, err)

	return err
}

// httpError is the JSON error body of the API
type httpError struct {
	Error    string         `json:"error"`
	Taxonomy string         `json:"taxonomy,omitempty"`
	Details  map[string]any `json:"details,omitempty"`
}

// HandleHTTP logs the error and writes the JSON error response. The
// status code is derived from the failure taxonomy unless the caller
// forces one with statusCode > 0.
func HandleHTTP(ctx context.Context, w http.ResponseWriter, err error, statusCode int) {
	if err == nil {
		return
	}

	logger := logging.From(ctx)

	if statusCode <= 0 {
		statusCode = StatusOf(err)
	}

	body := httpError{Error: err.Error()}
	if tax := types.Taxonomy(err); tax != "" {
		body.Taxonomy = tax
	}

	var ge *goerr.Error
	if errors.As(err, &ge) {
		logger.Error("HTTP error",
			"status", statusCode,
			"error", err.Error(),
			"values", ge.Values(),
			"stack", ge.Stacks(),
		)
		details := map[string]any{}
		for k, v := range ge.Values() {
			details[k] = v
		}
		if len(details) > 0 {
			body.Details = details
		}
	} else {
		logger.Error("HTTP error",
			"status", statusCode,
			"error", err.Error(),
		)
	}

	if statusCode >= http.StatusInternalServerError {
		capture(ctx, err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if encErr := json.NewEncoder(w).Encode(body); encErr != nil {
		logger.Error("failed to encode error response", "error", encErr)
	}
}

// StatusOf maps the failure taxonomy onto HTTP status codes. Rejected
// content is the client's problem (422), generation failures are a bad
// upstream (502), invariant breaches are ours (500).
func StatusOf(err error) int {
	switch {
	case errors.Is(err, types.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrFrozen):
		return http.StatusConflict
	case errors.Is(err, types.ErrSchemaViolation),
		errors.Is(err, types.ErrReferentialIntegrity),
		errors.Is(err, types.ErrPolicyViolation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, types.ErrGeneration):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// capture reports to Sentry if a hub is bound to the context or the
// global hub was initialized. A no-op otherwise.
func capture(ctx context.Context, err error) {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	if hub.Client() == nil {
		return
	}
	hub.CaptureException(err)
}
