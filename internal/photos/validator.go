package photos

import (
	"fmt"
	"mime"
	"strings"
)

// DefaultAllowedTypes is the media type allow-list used when none is configured.
var DefaultAllowedTypes = []string{"image/jpeg", "image/jpg", "image/png", "image/tiff"}

// decoderFormats maps declared media types to the format name reported by image.Decode.
var decoderFormats = map[string]string{
	"image/jpeg": "jpeg",
	"image/jpg":  "jpeg",
	"image/png":  "png",
	"image/tiff": "tiff",
}

// Validator applies the cheap checks that run before any decoding.
type Validator struct {
	maxBytes int64
	allowed  map[string]struct{}
}

func NewValidator(maxBytes int64, allowedTypes []string) *Validator {
	if len(allowedTypes) == 0 {
		allowedTypes = DefaultAllowedTypes
	}
	allowed := make(map[string]struct{}, len(allowedTypes))
	for _, t := range allowedTypes {
		allowed[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}
	return &Validator{maxBytes: maxBytes, allowed: allowed}
}

func (v *Validator) MaxBytes() int64 {
	return v.maxBytes
}

// Validate checks size first, then the declared media type. The bytes are never decoded here.
func (v *Validator) Validate(data []byte, contentType string) error {
	if int64(len(data)) > v.maxBytes {
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrTooLarge, len(data), v.maxBytes)
	}

	mediaType := normalizeMediaType(contentType)
	if _, ok := v.allowed[mediaType]; !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, mediaType)
	}

	return nil
}

// normalizeMediaType lowercases the type and strips parameters such as charset.
func normalizeMediaType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType, _, _ = strings.Cut(contentType, ";")
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}
