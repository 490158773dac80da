package httpclient

import (
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/Es-saiydy/webService/pkg/errors"
)

// ParseResponseError reads the body of a non-2xx HTTP response from an
// upstream API and translates it into an appropriate AppError. The response
// body is fully consumed and closed.
//
// The caller should only invoke this when resp.StatusCode indicates an error
// (i.e., not 2xx).
func ParseResponseError(resp *http.Response, serviceName string) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB limit
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", serviceName, resp.StatusCode, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return &apperrors.AppError{
			Code:    "NOT_FOUND",
			Message: fmt.Sprintf("%s: resource not found", serviceName),
			Status:  http.StatusNotFound,
			Err:     apperrors.ErrNotFound,
		}
	case resp.StatusCode == http.StatusBadRequest:
		return apperrors.InvalidInput(fmt.Sprintf("%s rejected the request: %s", serviceName, string(bodyBytes)))
	case resp.StatusCode == http.StatusTooManyRequests:
		return apperrors.ServiceUnavailable(fmt.Sprintf("%s rate limited the request", serviceName))
	case resp.StatusCode >= 500:
		return apperrors.ServiceUnavailable(fmt.Sprintf("%s is unavailable (status %d)", serviceName, resp.StatusCode))
	default:
		return fmt.Errorf("%s returned status %d: %s", serviceName, resp.StatusCode, string(bodyBytes))
	}
}

// IsClientError returns true if the HTTP status code is a 4xx client error.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
