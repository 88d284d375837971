package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat marks a declared media type outside the closed
	// extractor table. The one extraction failure callers treat as their own
	// mistake rather than a system fault.
	ErrUnsupportedFormat = errors.New("unsupported media type")

	// ErrUnsupportedCombination marks an (artifact kind, target format) pair
	// outside the closed serializer table.
	ErrUnsupportedCombination = errors.New("unsupported kind/format combination")

	// ErrFetchFailed marks an unavailable storage collaborator.
	ErrFetchFailed = errors.New("source fetch failed")

	// ErrCorruptArchive marks a container that cannot be opened at all.
	ErrCorruptArchive = errors.New("corrupt archive")

	// ErrExtractionFailed marks input bytes that do not conform to the
	// declared format (encrypted or malformed payloads included).
	ErrExtractionFailed = errors.New("extraction failed")

	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
