package errors

import (
	"strings"
	"unicode"
)

// MaxLabelLength is the longest node label accepted from edit scripts.
const MaxLabelLength = 256

// ValidateLabel validates a node label read from an edit script.
// Labels identify nodes within a script, so they must be printable and
// fit on a single diagram line.
//
// The validation rules:
//   - No empty labels
//   - No control characters (including newlines and tabs)
//   - No leading or trailing whitespace
//   - Maximum length of MaxLabelLength bytes
func ValidateLabel(label string) error {
	if label == "" {
		return New(ErrCodeInvalidLabel, "label cannot be empty")
	}

	if len(label) > MaxLabelLength {
		return New(ErrCodeInvalidLabel, "label too long (max %d characters)", MaxLabelLength)
	}

	for _, r := range label {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidLabel, "label contains invalid control characters")
		}
	}

	if strings.TrimSpace(label) != label {
		return New(ErrCodeInvalidLabel, "label %q has leading or trailing whitespace", label)
	}

	return nil
}

// ValidateIndex checks that index lies in [0, upper]. The name is used in
// the error message (e.g. "child index").
func ValidateIndex(name string, index, upper int) error {
	if index < 0 || index > upper {
		return New(ErrCodeInvalidArgument, "%s %d out of range [0, %d]", name, index, upper)
	}
	return nil
}
