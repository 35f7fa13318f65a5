package models

import (
	"errors"
	"fmt"
	"image"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetectionResultRect(t *testing.T) {
	res := DetectionResult{Label: "face", Box: []float32{0.25, 0.5, 0.75, 1}}

	r, ok := res.Rect(200, 100)
	require.True(t, ok)
	require.Equal(t, image.Rect(100, 25, 200, 75), r)

	_, ok = DetectionResult{Box: []float32{0.1, 0.2}}.Rect(200, 100)
	require.False(t, ok)
}

func TestGenderString(t *testing.T) {
	require.Equal(t, "Male", Male.String())
	require.Equal(t, "Female", Female.String())
	require.Equal(t, "Unknown", Gender(7).String())
}

func TestVisionErrorIs(t *testing.T) {
	err := fmt.Errorf("startup: %w", ErrModelLoad.WithError(errors.New("no such file")))

	require.ErrorIs(t, err, ErrModelLoad)
	require.NotErrorIs(t, err, ErrCameraOpen)
	require.Equal(t, "startup: failed to load model: no such file", err.Error())
}
