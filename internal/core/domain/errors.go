package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrQuotaExceeded indicates the caller has used up their recognition quota.
	ErrQuotaExceeded = errors.New("recognition quota exceeded")

	// ErrAuthRequired indicates a request arrived without a user identity.
	ErrAuthRequired = errors.New("authentication required")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Vision and text evidence sources are disabled.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrReverseSearchUnavailable indicates no reverse-image search is configured.
	// The pipeline then relies on vision evidence only.
	ErrReverseSearchUnavailable = errors.New("reverse image search unavailable")

	// ErrRendererUnavailable indicates the headless browser could not start.
	ErrRendererUnavailable = errors.New("headless renderer unavailable")

	// ErrRateLimited indicates an upstream API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrUnsupportedType indicates an unknown provider or backend name.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrEmptyReply indicates a model returned no parseable content.
	ErrEmptyReply = errors.New("empty model reply")
)
