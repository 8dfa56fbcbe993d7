package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/georgeGeorgakakos/optimusddc/pkg/apperrors"
)

// writeServiceError translates service-layer errors into HTTP responses.
// Caller-contract violations map to 400, backend outages to 503, and
// everything else to 500.
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var status int
	var code string
	switch {
	case errors.Is(err, apperrors.ErrUnsafeArgument):
		status, code = http.StatusBadRequest, "unsafe_argument"
	case errors.Is(err, apperrors.ErrInvalidURI):
		status, code = http.StatusBadRequest, "invalid_uri"
	case errors.Is(err, apperrors.ErrMissingParameter):
		status, code = http.StatusBadRequest, "missing_parameter"
	case errors.Is(err, apperrors.ErrUnavailable):
		status, code = http.StatusServiceUnavailable, "backend_unavailable"
	default:
		status, code = http.StatusInternalServerError, "internal_error"
	}
	if werr := ErrorResponse(w, status, code, err.Error()); werr != nil {
		logger.Error("Failed to write error response", zap.Error(werr))
	}
}
