package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Llorsque/monitor-dashboard-CO/internal/datanorm"
	"github.com/Llorsque/monitor-dashboard-CO/internal/pkg/httputil"
	"github.com/Llorsque/monitor-dashboard-CO/internal/pkg/logger"
	"github.com/Llorsque/monitor-dashboard-CO/internal/service/dashboard"
	"github.com/Llorsque/monitor-dashboard-CO/internal/session"
)

// =============================================================================
// ERROR SANITIZER
// Internal errors (database details, file paths, bucket names) never reach
// API consumers. 5xx responses carry a generic message while the full error
// is logged server-side.
// =============================================================================

// respondSafeError logs the internal error and sends a sanitized JSON error.
func respondSafeError(w http.ResponseWriter, code int, internalErr error) {
	msg := safeErrorMessage(code, internalErr)
	if internalErr != nil && code >= 500 {
		logger.Error("request failed", "status", code, "public", msg, "error", internalErr)
	}
	httputil.Error(w, code, msg)
}

// respondServiceError maps dashboard service errors to HTTP responses.
func respondServiceError(w http.ResponseWriter, err error) {
	var loadErr *datanorm.LoadError
	switch {
	case errors.As(err, &loadErr):
		details := make(map[string]string, len(loadErr.Attempts))
		for decoder, e := range loadErr.Attempts {
			details[decoder] = e.Error()
		}
		httputil.ErrorWithCode(w, http.StatusUnprocessableEntity, "load_failed", loadErr.Error(), details)
	case errors.Is(err, dashboard.ErrNoDataset):
		httputil.ErrorWithCode(w, http.StatusConflict, "no_dataset", err.Error(), nil)
	case errors.Is(err, dashboard.ErrClubNotFound):
		httputil.NotFound(w, err.Error())
	case errors.Is(err, session.ErrInvalidSlot),
		errors.Is(err, dashboard.ErrInvalidQuery),
		errors.Is(err, dashboard.ErrEmptyUpload):
		httputil.BadRequest(w, err.Error())
	case errors.Is(err, dashboard.ErrPublishInProgress):
		httputil.Conflict(w, err.Error())
	case errors.Is(err, dashboard.ErrPublishingDisabled):
		httputil.Error(w, http.StatusServiceUnavailable, err.Error())
	default:
		respondSafeError(w, http.StatusInternalServerError, err)
	}
}

// safeErrorMessage maps common internal error patterns to public-safe messages.
// 4xx errors are about user input and are returned as-is.
func safeErrorMessage(code int, internalErr error) string {
	if code < 500 {
		if internalErr != nil {
			return internalErr.Error()
		}
		return "Bad request"
	}

	if internalErr == nil {
		return "An internal error occurred"
	}

	errStr := strings.ToLower(internalErr.Error())

	switch {
	case strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "dial tcp"):
		return "Service temporarily unavailable"

	case strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded") ||
		strings.Contains(errStr, "context canceled"):
		return "Request timed out"

	case strings.Contains(errStr, "sql") ||
		strings.Contains(errStr, "pq:") ||
		strings.Contains(errStr, "database"):
		return "A database error occurred"

	case strings.Contains(errStr, "redis") ||
		strings.Contains(errStr, "session"):
		return "Session storage unavailable"

	case strings.Contains(errStr, "s3") ||
		strings.Contains(errStr, "dynamodb") ||
		strings.Contains(errStr, "bucket"):
		return "Export storage unavailable"

	case strings.Contains(errStr, "permission") ||
		strings.Contains(errStr, "access denied"):
		return "Access denied"

	default:
		return "An internal error occurred"
	}
}
