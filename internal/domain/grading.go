package domain

import "math"

// Average returns the arithmetic mean of scores, or nil when there are none.
func Average(scores []float64) *float64 {
	if len(scores) == 0 {
		return nil
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	avg := sum / float64(len(scores))
	return &avg
}

// WeightedScore is one numeric grade with the evaluation it belongs to.
type WeightedScore struct {
	Score    float64
	MaxValue float64
	Weight   float64
}

// WeightedAverage scales every score to the 0..10 range and averages them
// by evaluation weight. It returns nil when there is nothing to average.
func WeightedAverage(items []WeightedScore) *float64 {
	var sum, weights float64
	for _, it := range items {
		if it.MaxValue <= 0 || it.Weight <= 0 {
			continue
		}
		sum += it.Score / it.MaxValue * 10 * it.Weight
		weights += it.Weight
	}
	if weights == 0 {
		return nil
	}
	avg := round2(sum / weights)
	return &avg
}

// AttendancePercentage returns (lectures - absences) / lectures * 100
// rounded to two decimals. No lectures yields 0.
func AttendancePercentage(lectures, absences int) float64 {
	if lectures <= 0 {
		return 0
	}
	return round2(float64(lectures-absences) / float64(lectures) * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
