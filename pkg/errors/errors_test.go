package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestError_Basics tests construction, formatting and unwrapping.
func TestError_Basics(t *testing.T) {
	t.Run("new", func(t *testing.T) {
		err := New(ErrorTypeConfig, "bad value")
		assert.Equal(t, ErrorTypeConfig, err.Type)
		assert.Contains(t, err.Error(), "bad value")
		assert.Nil(t, err.Unwrap())
		assert.NotEmpty(t, err.Stack)
	})

	t.Run("newf", func(t *testing.T) {
		err := Newf(ErrorTypeSchema, "value %d out of range", 42)
		assert.Contains(t, err.Error(), "value 42 out of range")
	})

	t.Run("wrap", func(t *testing.T) {
		cause := fmt.Errorf("underlying")
		err := Wrap(cause, ErrorTypeFile, "failed to read")
		assert.Equal(t, cause, err.Unwrap())
		assert.Contains(t, err.Error(), "failed to read")
		assert.Contains(t, err.Error(), "underlying")
	})
}

// TestError_Details tests the detail map accessors.
func TestError_Details(t *testing.T) {
	err := New(ErrorTypeConfig, "bad value").
		WithDetail("path", "service/port").
		WithDetail("got", 70000)

	assert.Equal(t, "service/port", err.Detail("path"))
	assert.Equal(t, 70000, err.Detail("got"))
	assert.Nil(t, err.Detail("absent"))

	// WithDetail overwrites.
	err.WithDetail("path", "network/service/port")
	assert.Equal(t, "network/service/port", err.Detail("path"))
}

// TestError_TypeChecks tests IsType and As across wrapping.
func TestError_TypeChecks(t *testing.T) {
	err := New(ErrorTypeIngestion, "parse failed")

	assert.True(t, IsType(err, ErrorTypeIngestion))
	assert.False(t, IsType(err, ErrorTypeConfig))
	assert.False(t, IsType(fmt.Errorf("plain"), ErrorTypeIngestion))
	assert.False(t, IsType(nil, ErrorTypeIngestion))

	t.Run("as", func(t *testing.T) {
		require.NotNil(t, As(err))
		assert.Equal(t, ErrorTypeIngestion, As(err).Type)
		assert.Nil(t, As(fmt.Errorf("plain")))
		assert.Nil(t, As(nil))
	})

	t.Run("through wrapping", func(t *testing.T) {
		outer := fmt.Errorf("outer: %w", err)
		assert.True(t, IsType(outer, ErrorTypeIngestion))
		require.NotNil(t, As(outer))
	})
}
