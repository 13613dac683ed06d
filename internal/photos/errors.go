package photos

import (
	"errors"
	"fmt"
)

var (
	ErrValidation        = errors.New("upload rejected")
	ErrTooLarge          = fmt.Errorf("%w: file too large", ErrValidation)
	ErrUnsupportedFormat = fmt.Errorf("%w: unsupported file format", ErrValidation)
)

var (
	ErrNormalization = errors.New("normalization failed")
	ErrCorruptImage  = fmt.Errorf("%w: unsupported or corrupted image", ErrNormalization)
	ErrStorage       = fmt.Errorf("%w: storage error", ErrNormalization)
)

var (
	ErrResolution   = errors.New("image not resolvable")
	ErrTraversal    = fmt.Errorf("%w: path traversal", ErrResolution)
	ErrNotFound     = fmt.Errorf("%w: no such image", ErrResolution)
	ErrInconsistent = fmt.Errorf("%w: image row without file", ErrResolution)
)

var (
	ErrUnknownUser = errors.New("unknown user")
	ErrForbidden   = errors.New("image belongs to another user")
)

// Message returns the text shown to clients for a pipeline error. Anything
// that is not a validation, corruption or resolution failure gets a generic
// message so storage details never leak.
func Message(err error, maxBytes int64) string {
	switch {
	case errors.Is(err, ErrTooLarge):
		return fmt.Sprintf("File too large. Max size is %d MB.", maxBytes/(1<<20))
	case errors.Is(err, ErrUnsupportedFormat):
		return "Unsupported file format. Only JPEG, PNG, and TIFF images are allowed."
	case errors.Is(err, ErrCorruptImage):
		return "Error processing image. Unsupported or corrupted file."
	case errors.Is(err, ErrResolution):
		return "Image not found"
	case errors.Is(err, ErrForbidden):
		return "You can only delete your own images"
	default:
		return "An error occurred while processing the image."
	}
}
