package faces

import (
	"errors"
	"fmt"
)

// ErrUnsupportedSource is returned for image sources that cannot be loaded, such as
// relative paths or remote URLs without a fetcher
var ErrUnsupportedSource = errors.New("unsupported image source")

// LoadError represents a failure to load the detector
type LoadError struct {
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("face detector load error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("face detector load error: %s", e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// ImageError represents an image that could not be decoded
type ImageError struct {
	Message string
	Cause   error
}

func (e *ImageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("image error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("image error: %s", e.Message)
}

func (e *ImageError) Unwrap() error {
	return e.Cause
}

// DetectionError represents a failed detection call
type DetectionError struct {
	Message string
	Cause   error
}

func (e *DetectionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("face detection error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("face detection error: %s", e.Message)
}

func (e *DetectionError) Unwrap() error {
	return e.Cause
}
