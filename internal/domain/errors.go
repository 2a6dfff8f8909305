package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidProfile signals a profile that cannot be stored (e.g. no email).
	ErrInvalidProfile = errors.New("invalid profile")
	// ErrStoreUnavailable signals that the document store could not be reached.
	ErrStoreUnavailable = errors.New("document store unavailable")
	// ErrExtractionFailed signals a failed, timed out or malformed model extraction.
	ErrExtractionFailed = errors.New("intent extraction failed")
	// ErrModelUnavailable signals a language-model provider failure.
	ErrModelUnavailable = errors.New("language model unavailable")
	// ErrNoPreviousSearch signals a continuation request without a live overflow batch.
	ErrNoPreviousSearch = errors.New("no previous search")
	// ErrInvalidQuery signals a message that cannot be searched (empty or oversized).
	ErrInvalidQuery = errors.New("invalid query")
	// ErrCacheUnavailable signals a session/overflow cache failure.
	ErrCacheUnavailable = errors.New("session cache unavailable")
)

// KeyPrefix is the default key prefix for everything stored by alumnidex.
const KeyPrefix = "alumnidex:"
