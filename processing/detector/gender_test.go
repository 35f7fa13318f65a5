package processing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"facedetect/internal/models"
)

func TestLabelFor(t *testing.T) {
	tests := []struct {
		name   string
		scores []float32
		want   models.Gender
	}{
		{name: "favours index 0", scores: []float32{0.8, 0.2}, want: models.Male},
		{name: "favours index 1", scores: []float32{0.2, 0.8}, want: models.Female},
		{name: "uncertain still labels", scores: []float32{0.49, 0.51}, want: models.Female},
		{name: "tie picks first", scores: []float32{0.5, 0.5}, want: models.Male},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LabelFor(tt.scores)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestLabelForRejectsWrongLength(t *testing.T) {
	_, err := LabelFor([]float32{1})
	require.ErrorIs(t, err, models.ErrInference)

	_, err = LabelFor(nil)
	require.ErrorIs(t, err, models.ErrInference)
}
