// Package sampling draws fixed-size samples from parametric distributions
// using gonum's distuv types over one explicitly threaded random source.
package sampling

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"simlab/domain/core"
	"simlab/domain/sample"
)

// Spec describes a configuration-driven draw.
type Spec struct {
	Family sample.Family `json:"family" yaml:"family"`
	Params sample.Params `json:"params" yaml:"params"`
	Count  int           `json:"count" yaml:"count"`
}

// Draw dispatches on spec.Family.
func Draw(src rand.Source, spec Spec) (sample.Sample, error) {
	if !spec.Family.Valid() {
		return sample.Sample{}, core.NewInvalidInputError("family", "unknown: "+string(spec.Family))
	}
	p := spec.Params
	switch spec.Family {
	case sample.FamilyNormal:
		return Normal(src, p.Mean, p.SD, spec.Count)
	case sample.FamilyBernoulli:
		return Bernoulli(src, p.P, spec.Count)
	default:
		return ShiftedLognormal(src, p.Shift, p.LogMean, p.LogSD, spec.Count)
	}
}

// Normal draws count values from Normal(mean, sd).
func Normal(src rand.Source, mean, sd float64, count int) (sample.Sample, error) {
	if err := checkCount(count); err != nil {
		return sample.Sample{}, err
	}
	if !finite(mean) {
		return sample.Sample{}, core.NewParameterError(string(sample.FamilyNormal), "mean", mean)
	}
	if !finite(sd) || sd < 0 {
		return sample.Sample{}, core.NewParameterError(string(sample.FamilyNormal), "sd", sd)
	}

	dist := distuv.Normal{Mu: mean, Sigma: sd, Src: src}
	values := make([]float64, count)
	for i := range values {
		values[i] = dist.Rand()
	}
	return sample.New(sample.FamilyNormal, sample.Params{Mean: mean, SD: sd}, values), nil
}

// Bernoulli draws count values in {0, 1} with success probability p.
func Bernoulli(src rand.Source, p float64, count int) (sample.Sample, error) {
	if err := checkCount(count); err != nil {
		return sample.Sample{}, err
	}
	if math.IsNaN(p) || p < 0 || p > 1 {
		return sample.Sample{}, core.NewInvalidInputError("p", "must be within [0, 1]")
	}

	dist := distuv.Bernoulli{P: p, Src: src}
	values := make([]float64, count)
	for i := range values {
		values[i] = dist.Rand()
	}
	return sample.New(sample.FamilyBernoulli, sample.Params{P: p}, values), nil
}

// ShiftedLognormal draws shift + LogNormal(logMean, logSD). Both logMean and
// logSD are on the log scale; see LogScale for converting original-scale
// parameters. Every value is >= shift.
func ShiftedLognormal(src rand.Source, shift, logMean, logSD float64, count int) (sample.Sample, error) {
	if err := checkCount(count); err != nil {
		return sample.Sample{}, err
	}
	family := string(sample.FamilyShiftedLognormal)
	if !finite(shift) {
		return sample.Sample{}, core.NewParameterError(family, "shift", shift)
	}
	if !finite(logMean) {
		return sample.Sample{}, core.NewParameterError(family, "log_mean", logMean)
	}
	if !finite(logSD) || logSD < 0 {
		return sample.Sample{}, core.NewParameterError(family, "log_sd", logSD)
	}

	dist := distuv.LogNormal{Mu: logMean, Sigma: logSD, Src: src}
	values := make([]float64, count)
	for i := range values {
		values[i] = shift + dist.Rand()
	}
	params := sample.Params{Shift: shift, LogMean: logMean, LogSD: logSD}
	return sample.New(sample.FamilyShiftedLognormal, params, values), nil
}

// LogScale converts original-scale lognormal parameters to log space by
// taking log() of each. Both must be positive.
func LogScale(mean, sd float64) (logMean, logSD float64, err error) {
	family := string(sample.FamilyShiftedLognormal)
	if !finite(mean) || mean <= 0 {
		return 0, 0, core.NewParameterError(family, "mean", mean)
	}
	if !finite(sd) || sd <= 0 {
		return 0, 0, core.NewParameterError(family, "sd", sd)
	}
	return math.Log(mean), math.Log(sd), nil
}

func checkCount(count int) error {
	if count <= 0 {
		return core.NewInvalidInputError("count", "must be positive")
	}
	return nil
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
