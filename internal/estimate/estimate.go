// Package estimate computes point and interval estimates over samples:
// mean and unbiased standard deviation, descriptive summaries, proportions
// with Wilson score intervals, and Student-t intervals for means.
package estimate

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"simlab/domain/core"
	"simlab/domain/sample"
)

// DefaultLevel is the confidence level used when callers do not pick one.
const DefaultLevel = 0.95

// Estimator reduces one group of values to a summary. The returned summary's
// Key is left for the caller to fill in.
type Estimator func(values []float64) (sample.Summary, error)

// MeanSD returns the sample mean and the standard deviation with the
// unbiased (n-1) divisor.
func MeanSD(values []float64) (mean, sd float64, err error) {
	if len(values) == 0 {
		return 0, 0, core.NewInvalidInputError("values", "must not be empty")
	}
	if len(values) < 2 {
		return 0, 0, core.NewInsufficientSamplesError(2, len(values))
	}
	mean, sd = stat.MeanStdDev(values, nil)
	return mean, sd, nil
}

// Describe computes n, mean, median, sd, min and max.
func Describe(values []float64) (sample.Descriptive, error) {
	mean, sd, err := MeanSD(values)
	if err != nil {
		return sample.Descriptive{}, err
	}

	median, err := stats.Median(values)
	if err != nil {
		return sample.Descriptive{}, fmt.Errorf("median: %w", err)
	}
	min, err := stats.Min(values)
	if err != nil {
		return sample.Descriptive{}, fmt.Errorf("min: %w", err)
	}
	max, err := stats.Max(values)
	if err != nil {
		return sample.Descriptive{}, fmt.Errorf("max: %w", err)
	}

	return sample.Descriptive{
		N:      len(values),
		Mean:   mean,
		Median: median,
		SD:     sd,
		Min:    min,
		Max:    max,
	}, nil
}

// Proportion estimates the success rate of a {0,1} sample and pairs it with
// a Wilson score interval at level.
func Proportion(values []float64, level float64) (sample.Summary, error) {
	if len(values) == 0 {
		return sample.Summary{}, core.NewInvalidInputError("values", "proportion of an empty sample is undefined")
	}
	successes := 0
	for i, v := range values {
		switch v {
		case 1:
			successes++
		case 0:
		default:
			return sample.Summary{}, core.NewInvalidInputError("values", fmt.Sprintf("observation %d is %v, want 0 or 1", i, v))
		}
	}

	iv, err := Wilson(successes, len(values), level)
	if err != nil {
		return sample.Summary{}, err
	}
	return sample.Summary{
		Estimate: float64(successes) / float64(len(values)),
		Interval: &iv,
		N:        len(values),
	}, nil
}

// Wilson returns the Wilson score interval for successes out of n trials.
// The bounds always lie within [0, 1] and bracket successes/n.
func Wilson(successes, n int, level float64) (sample.Interval, error) {
	if n <= 0 {
		return sample.Interval{}, core.NewInvalidInputError("n", "must be positive")
	}
	if successes < 0 || successes > n {
		return sample.Interval{}, core.NewInvalidInputError("successes", fmt.Sprintf("%d is outside [0, %d]", successes, n))
	}
	z, err := zCritical(level)
	if err != nil {
		return sample.Interval{}, err
	}

	nf := float64(n)
	phat := float64(successes) / nf
	z2 := z * z
	denom := 1 + z2/nf
	center := (phat + z2/(2*nf)) / denom
	half := z * math.Sqrt(phat*(1-phat)/nf+z2/(4*nf*nf)) / denom

	// Rounding can push a bound a hair past phat or outside [0,1].
	lower := math.Max(0, math.Min(center-half, phat))
	upper := math.Min(1, math.Max(center+half, phat))
	return sample.Interval{Lower: lower, Upper: upper, Level: level}, nil
}

// MeanCI returns the mean of values with a Student-t interval using n-1
// degrees of freedom and the standard error of the mean. It is typically
// applied to per-unit means, one per participant.
func MeanCI(values []float64, level float64) (sample.Summary, error) {
	mean, sd, err := MeanSD(values)
	if err != nil {
		return sample.Summary{}, err
	}
	n := float64(len(values))
	t, err := tCritical(level, n-1)
	if err != nil {
		return sample.Summary{}, err
	}

	half := t * sd / math.Sqrt(n)
	return sample.Summary{
		Estimate: mean,
		Interval: &sample.Interval{Lower: mean - half, Upper: mean + half, Level: level},
		N:        len(values),
	}, nil
}

// Mean is an Estimator reporting the plain sample mean.
func Mean(values []float64) (sample.Summary, error) {
	if len(values) == 0 {
		return sample.Summary{}, core.NewInvalidInputError("values", "mean of an empty sample is undefined")
	}
	return sample.Summary{Estimate: stat.Mean(values, nil), N: len(values)}, nil
}

// Median is an Estimator reporting the sample median.
func Median(values []float64) (sample.Summary, error) {
	if len(values) == 0 {
		return sample.Summary{}, core.NewInvalidInputError("values", "median of an empty sample is undefined")
	}
	m, err := stats.Median(values)
	if err != nil {
		return sample.Summary{}, fmt.Errorf("median: %w", err)
	}
	return sample.Summary{Estimate: m, N: len(values)}, nil
}

// ProportionAt binds Proportion to a confidence level.
func ProportionAt(level float64) Estimator {
	return func(values []float64) (sample.Summary, error) {
		return Proportion(values, level)
	}
}

// MeanCIAt binds MeanCI to a confidence level.
func MeanCIAt(level float64) Estimator {
	return func(values []float64) (sample.Summary, error) {
		return MeanCI(values, level)
	}
}

func checkLevel(level float64) error {
	if math.IsNaN(level) || level <= 0 || level >= 1 {
		return core.NewInvalidInputError("confidence level", fmt.Sprintf("%v is outside (0, 1)", level))
	}
	return nil
}

// zCritical returns the two-sided standard normal critical value.
func zCritical(level float64) (float64, error) {
	if err := checkLevel(level); err != nil {
		return 0, err
	}
	return distuv.UnitNormal.Quantile(1 - (1-level)/2), nil
}

// tCritical returns the two-sided Student-t critical value for df degrees
// of freedom.
func tCritical(level, df float64) (float64, error) {
	if err := checkLevel(level); err != nil {
		return 0, err
	}
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return dist.Quantile(1 - (1-level)/2), nil
}
