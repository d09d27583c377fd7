package experiment

import (
	"math/rand/v2"

	"simlab/domain/core"
	"simlab/internal/estimate"
	"simlab/internal/sampling"
)

// CoverageResult reports how often an interval procedure captured the true
// parameter across repeated simulated trials.
type CoverageResult struct {
	Trials   int     `json:"trials"`
	Covered  int     `json:"covered"`
	Rate     float64 `json:"rate"`
	Level    float64 `json:"level"`
	MeanProp float64 `json:"mean_prop"`
}

// WilsonCoverage repeats a Bernoulli(p, n) experiment trials times and counts
// how often the Wilson interval at level contains p.
func WilsonCoverage(src rand.Source, p float64, n, trials int, level float64) (CoverageResult, error) {
	if trials <= 0 {
		return CoverageResult{}, core.NewInvalidInputError("trials", "must be positive")
	}

	res := CoverageResult{Trials: trials, Level: level}
	var propSum float64
	for i := 0; i < trials; i++ {
		s, err := sampling.Bernoulli(src, p, n)
		if err != nil {
			return CoverageResult{}, err
		}
		summary, err := estimate.Proportion(s.Values(), level)
		if err != nil {
			return CoverageResult{}, err
		}
		if summary.Interval.Contains(p) {
			res.Covered++
		}
		propSum += summary.Estimate
	}
	res.Rate = float64(res.Covered) / float64(trials)
	res.MeanProp = propSum / float64(trials)
	return res, nil
}
