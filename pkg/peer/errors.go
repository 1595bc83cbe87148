package peer

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyFrame indicates a frame without any payload.
	ErrEmptyFrame = errors.New("empty frame")
	// ErrMalformed indicates the payload doesn't match the shape of its tag.
	ErrMalformed = errors.New("malformed message")
	// ErrFrameTooLong indicates a frame exceeds MaxFrameLen.
	ErrFrameTooLong = errors.New("frame too long")
)

// TagError reports an unrecognized first byte.
type TagError struct {
	Tag byte
}

// Error implements error.
func (e *TagError) Error() string {
	return fmt.Sprintf("unknown tag %q", e.Tag)
}
