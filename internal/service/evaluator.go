package service

import (
	"math"

	"github.com/edutrack-mx/sira-api/internal/models"
)

// Evaluator computes the final grade and outcome status for a subject
// enrollment. A missing unit grade counts as zero in the mean; the result is
// rounded to two decimals. Classification happens once, at submission time.
type Evaluator struct {
	PassThreshold float64
}

// NewEvaluator builds an Evaluator with the configured pass cutoff.
func NewEvaluator(passThreshold float64) Evaluator {
	if passThreshold <= 0 {
		passThreshold = 70
	}
	return Evaluator{PassThreshold: passThreshold}
}

// ComputeFinalGrade returns the arithmetic mean of the three unit grades,
// treating absent units as zero, rounded to two decimal places.
func (e Evaluator) ComputeFinalGrade(unit1, unit2, unit3 *float64) float64 {
	sum := unitOrZero(unit1) + unitOrZero(unit2) + unitOrZero(unit3)
	return roundTwoDecimals(sum / 3)
}

// Classify maps a final grade to approved or failed. The cutoff is inclusive.
func (e Evaluator) Classify(finalGrade float64) models.RecordStatus {
	if finalGrade >= e.PassThreshold {
		return models.RecordStatusApproved
	}
	return models.RecordStatusFailed
}

func unitOrZero(grade *float64) float64 {
	if grade == nil {
		return 0
	}
	return *grade
}

func roundTwoDecimals(v float64) float64 {
	return math.Round(v*100) / 100
}
