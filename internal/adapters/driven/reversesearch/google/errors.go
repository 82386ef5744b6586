package google

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/artid/internal/core/domain"
)

// Common Vision API errors.
var (
	// ErrUnauthorized indicates an invalid API key or expired token.
	ErrUnauthorized = errors.New("vision: unauthorised (invalid credentials)")

	// ErrForbidden indicates the API is disabled or the key is restricted.
	ErrForbidden = errors.New("vision: forbidden (API disabled or key restricted)")

	// ErrRateLimited indicates the API rate limit or quota was exceeded.
	ErrRateLimited = fmt.Errorf("vision: %w", domain.ErrRateLimited)

	// ErrBadImage indicates the API rejected the image payload.
	ErrBadImage = errors.New("vision: image rejected")
)

// IsUnauthorized returns true if the error indicates invalid credentials.
func IsUnauthorized(err error) bool {
	if errors.Is(err, ErrUnauthorized) {
		return true
	}
	return hasCode(err, http.StatusUnauthorized)
}

// IsForbidden returns true if the error indicates insufficient permissions.
func IsForbidden(err error) bool {
	if errors.Is(err, ErrForbidden) {
		return true
	}
	return hasCode(err, http.StatusForbidden)
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	if errors.Is(err, domain.ErrRateLimited) {
		return true
	}
	return hasCode(err, http.StatusTooManyRequests)
}

func hasCode(err error, code int) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == code
	}
	return false
}

// WrapError converts a Google API error to a more specific error.
// Every returned error also matches domain.ErrReverseSearchUnavailable,
// except rate limiting, which matches domain.ErrRateLimited.
func WrapError(err error) error {
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return fmt.Errorf("%w: %w", domain.ErrReverseSearchUnavailable, err)
	}

	switch gerr.Code {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %w", domain.ErrReverseSearchUnavailable, ErrUnauthorized)
	case http.StatusForbidden:
		return fmt.Errorf("%w: %w", domain.ErrReverseSearchUnavailable, ErrForbidden)
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %w: %s", domain.ErrReverseSearchUnavailable, ErrBadImage, gerr.Message)
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return fmt.Errorf("%w: %w", domain.ErrReverseSearchUnavailable, err)
	}
}
