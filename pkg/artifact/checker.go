package artifact

import (
	"mime"
	"path/filepath"
	"strings"
)

// MaxSizeBytes is the upper bound for a payment proof, inclusive.
const MaxSizeBytes = 5 * 1024 * 1024

var allowedMediaTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"application/pdf": true,
}

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".pdf":  true,
}

type Constraint string

const (
	ConstraintType Constraint = "type"
	ConstraintSize Constraint = "size"
)

// ConstraintError names the rule a candidate file broke.
type ConstraintError struct {
	Constraint Constraint
	Message    string
}

func (e *ConstraintError) Error() string {
	return "payment proof rejected (" + string(e.Constraint) + "): " + e.Message
}

var (
	errUnsupportedType = &ConstraintError{
		Constraint: ConstraintType,
		Message:    "Format file harus JPG, PNG, WEBP, atau PDF",
	}
	errTooLarge = &ConstraintError{
		Constraint: ConstraintSize,
		Message:    "Ukuran file maksimal 5MB",
	}
)

// Check accepts a declared media type and size, or returns a *ConstraintError.
// The type is checked first.
func Check(mediaType string, size int64) error {
	if !allowedMediaTypes[normalizeMediaType(mediaType)] {
		return errUnsupportedType
	}
	if size < 0 || size > MaxSizeBytes {
		return errTooLarge
	}
	return nil
}

// CheckFile applies Check plus the extension filter of the file input.
func CheckFile(f File) error {
	if !allowedExtensions[strings.ToLower(filepath.Ext(f.Name))] {
		return errUnsupportedType
	}
	return Check(f.MediaType, f.Size)
}

func normalizeMediaType(mediaType string) string {
	parsed, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(mediaType))
	}
	return parsed
}
