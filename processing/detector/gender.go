package processing

import (
	"fmt"

	"facedetect/internal/models"
)

// LabelFor maps a classifier score vector to the label at its arg-max. The
// first index wins a tie; no confidence threshold is applied.
func LabelFor(scores []float32) (models.Gender, error) {
	if len(scores) != len(models.GenderLabels) {
		return 0, models.ErrInference.WithError(
			fmt.Errorf("expected %d scores, got %d", len(models.GenderLabels), len(scores)))
	}

	best := 0
	for i, s := range scores {
		if s > scores[best] {
			best = i
		}
	}

	return models.Gender(best), nil
}
