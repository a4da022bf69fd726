package errors

import (
	"math"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// MaxDimension bounds host widths and heights accepted from users.
const MaxDimension = 100_000

// ValidateName validates a surface name used in layout sources, registries and
// rendered output.
//
// The rules are intentionally conservative:
//   - No empty names
//   - No control characters or whitespace
//   - No quotes or angle brackets (names end up in SVG and DOT output)
//   - Maximum length of 128 characters
func ValidateName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidInput, "name too long (max 128 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "name %q contains whitespace or control characters", name)
		}
	}

	if strings.ContainsAny(name, `"'<>&\`) {
		return New(ErrCodeInvalidInput, "name %q contains reserved characters", name)
	}

	return nil
}

// ValidateSize validates host dimensions.
func ValidateSize(width, height float64) error {
	for _, d := range []struct {
		name string
		v    float64
	}{{"width", width}, {"height", height}} {
		if math.IsNaN(d.v) || math.IsInf(d.v, 0) {
			return New(ErrCodeInvalidInput, "%s must be finite", d.name)
		}
		if d.v <= 0 {
			return New(ErrCodeInvalidInput, "%s must be positive, got %g", d.name, d.v)
		}
		if d.v > MaxDimension {
			return New(ErrCodeInvalidInput, "%s too large (max %d)", d.name, MaxDimension)
		}
	}
	return nil
}

// ValidateLayoutID validates a stored layout identifier.
func ValidateLayoutID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "layout id cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid layout id %q", id)
	}
	return nil
}

// ValidateURL validates a connection URL for one of the allowed schemes.
// With no schemes given, http and https are allowed.
func ValidateURL(rawURL string, schemes ...string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	if len(schemes) == 0 {
		schemes = []string{"http", "https"}
	}

	// Simple scheme validation without full URL parsing
	for _, s := range schemes {
		if strings.HasPrefix(rawURL, s+"://") {
			return nil
		}
	}
	return New(ErrCodeInvalidInput, "URL must use one of the schemes: %s", strings.Join(schemes, ", "))
}
