package storage

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"kinbrio/internal/pkg/errs"
)

const (
	// MaxUploadSizeMB is the maximum accepted file size in megabytes.
	MaxUploadSizeMB = 25

	// MaxUploadSize is the maximum accepted file size in bytes.
	MaxUploadSize = MaxUploadSizeMB * 1024 * 1024
)

var (
	errEmptyUpload = errors.New("file is empty")
	errBadFileName = errors.New("file name must be a plain name")
)

// ValidateUpload checks an uploaded object before it is stored. name becomes the object
// key, so it may not contain path separators.
func ValidateUpload(name string, size int64) error {
	if size <= 0 {
		return errs.WithKind(errs.KindValidation, errEmptyUpload)
	}
	if size > MaxUploadSize {
		return errs.NewError(errs.ErrRequestEntityTooLarge)
	}
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return errs.WithKind(errs.KindValidation, fmt.Errorf("%w: %q", errBadFileName, name))
	}
	return nil
}

// FormatOf returns format, or the extension of name when format is empty.
func FormatOf(name, format string) string {
	if format != "" {
		return strings.ToLower(format)
	}
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}
