package postprocess

import "github.com/pkg/errors"

var (
	// ErrShapeMismatch is returned when the tensor length does not match the
	// declared grid shape. No partial result is produced.
	ErrShapeMismatch = errors.New("tensor shape mismatch")
	// ErrOutOfRange is raised (via panic) when a tensor lookup is outside the
	// declared shape. It always indicates a bug in the caller.
	ErrOutOfRange = errors.New("tensor index out of range")
	// ErrInvalidConfig is returned when a decoder configuration is unusable.
	ErrInvalidConfig = errors.New("invalid decoder config")
)
