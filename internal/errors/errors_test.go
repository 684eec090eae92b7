package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorBuilder(t *testing.T) {
	err := Newf("annotate failed: %s", "quota exceeded").
		Component("vision").
		Category(CategoryRateLimit).
		Context("identifier", "img_001.jpg").
		Build()

	assert.Equal(t, "annotate failed: quota exceeded", err.Error())
	assert.Equal(t, "vision", err.Component)
	assert.Equal(t, CategoryRateLimit, err.Category)
	assert.Equal(t, "img_001.jpg", err.GetContext()["identifier"])
	assert.False(t, err.Timestamp.IsZero())
}

func TestCategoryDetection(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		want ErrorCategory
	}{
		{"timeout", "context deadline exceeded", CategoryTimeout},
		{"network", "connection refused", CategoryNetwork},
		{"conflict", "UNIQUE constraint failed: image_records.filename", CategoryConflict},
		{"not found", "record not found", CategoryNotFound},
		{"generic", "something odd happened", CategoryGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(NewStd(tt.msg)).Build()
			assert.Equal(t, tt.want, err.Category)
		})
	}
}

func TestIsTransient(t *testing.T) {
	transient := New(NewStd("boom")).Category(CategoryNetwork).Build()
	permanent := New(NewStd("boom")).Category(CategoryVisionAPI).Build()

	assert.True(t, IsTransient(transient))
	assert.False(t, IsTransient(permanent))
	assert.True(t, IsTransient(New(NewStd("x")).Category(CategoryTimeout).Build()))
	assert.True(t, IsTransient(New(NewStd("x")).Category(CategoryRateLimit).Build()))
}

func TestUnwrapPreservesOriginal(t *testing.T) {
	base := NewStd("original")
	wrapped := New(base).Category(CategoryDatabase).Build()

	require.ErrorIs(t, wrapped, base)
	assert.Equal(t, base, Unwrap(wrapped))
}
