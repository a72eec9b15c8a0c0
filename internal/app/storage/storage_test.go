package storage

import (
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"

	"kinbrio/internal/pkg/errs"
)

func TestBucketName(t *testing.T) {
	assert.Equal(t, "task-0b6f3e0e-58f4-4bc8-9a55-4ac3d3b8b3a1-fs",
		BucketName("Task", "0B6F3E0E-58F4-4BC8-9A55-4AC3D3B8B3A1"))
	assert.Equal(t, "organization-abc-fs", BucketName("Organization", "abc"))
}

func TestContentType(t *testing.T) {
	cases := map[string]string{
		"jpg":  "image/jpeg",
		"jpeg": "image/jpeg",
		"PNG":  "image/png",
		"svg":  "image/svg+xml",
		"ico":  "image/x-icon",
		"pdf":  "application/octet-stream",
		"":     "application/octet-stream",
	}
	for format, want := range cases {
		assert.Equal(t, want, ContentType(format), format)
	}
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(&types.NoSuchKey{}))
	assert.True(t, isNotFound(&types.NotFound{}))
	assert.True(t, isNotFound(&smithy.GenericAPIError{Code: "NoSuchBucket"}))
	assert.False(t, isNotFound(&smithy.GenericAPIError{Code: "AccessDenied"}))
	assert.False(t, isNotFound(errors.New("timeout")))
}

func TestValidateUpload(t *testing.T) {
	assert.NoError(t, ValidateUpload("logo.png", 1024))

	err := ValidateUpload("logo.png", 0)
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))

	err = ValidateUpload("big.bin", MaxUploadSize+1)
	assert.Equal(t, errs.ErrRequestEntityTooLarge, errs.From(err).Code)

	for _, name := range []string{"", "..", "a/b.png", `a\b.png`} {
		assert.Equal(t, errs.KindValidation, errs.KindOf(ValidateUpload(name, 10)), name)
	}
}

func TestFormatOf(t *testing.T) {
	assert.Equal(t, "png", FormatOf("logo.PNG", ""))
	assert.Equal(t, "svg", FormatOf("logo.png", "SVG"))
	assert.Equal(t, "", FormatOf("README", ""))
}
