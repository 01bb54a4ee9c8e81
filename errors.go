package diffview

import (
	"errors"
	"fmt"
)

// Error kinds surfaced to callers. Match with errors.Is.
var (
	// ErrInvalidConfig reports configuration the engine refuses to guess
	// around: an unknown compat version, mismatched markup lengths, or an
	// out-of-range chunk index. Never silently defaulted.
	ErrInvalidConfig = errors.New("diffview: invalid configuration")

	// ErrInputTooLarge reports input exceeding the configured line or byte
	// ceiling. Raised before large working arrays are allocated.
	ErrInputTooLarge = errors.New("diffview: input too large")

	// ErrEncoding reports non-decodable byte content. The engine does not
	// replace invalid bytes unless lossy decoding was requested explicitly.
	ErrEncoding = errors.New("diffview: content is not valid UTF-8")
)

func errUnknownCompatVersion(v int) error {
	return fmt.Errorf("%w: unknown compat version %d", ErrInvalidConfig, v)
}

func errChunkIndex(index, count int) error {
	return fmt.Errorf("%w: chunk index %d out of range [0,%d)", ErrInvalidConfig, index, count)
}
