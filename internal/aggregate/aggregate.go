// Package aggregate partitions labeled tables into groups, applies an
// estimator to each group and reshapes the resulting summary tables between
// long and wide form.
package aggregate

import (
	"fmt"

	"simlab/domain/core"
	"simlab/domain/sample"
	"simlab/internal/estimate"
)

// GroupBy partitions rows by key, preserving the order in which distinct
// keys first appear, and returns one summary per group.
func GroupBy[R any](rows []R, key func(R) sample.GroupKey, value func(R) float64, est estimate.Estimator) ([]sample.Summary, error) {
	if est == nil {
		return nil, core.NewInvalidInputError("estimator", "must not be nil")
	}

	index := make(map[sample.GroupKey]int)
	var keys []sample.GroupKey
	var groups [][]float64
	for _, r := range rows {
		k := key(r)
		i, ok := index[k]
		if !ok {
			i = len(keys)
			index[k] = i
			keys = append(keys, k)
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], value(r))
	}

	out := make([]sample.Summary, len(keys))
	for i, k := range keys {
		s, err := est(groups[i])
		if err != nil {
			return nil, fmt.Errorf("group %s: %w", describeKey(k), err)
		}
		s.Key = k
		s.N = len(groups[i])
		out[i] = s
	}
	return out, nil
}

// Overall applies est to the whole sample under an empty key.
func Overall(s sample.Sample, est estimate.Estimator) (sample.Summary, error) {
	out, err := GroupBy(s.Values(), func(float64) sample.GroupKey { return sample.GroupKey{} }, identity, est)
	if err != nil {
		return sample.Summary{}, err
	}
	if len(out) == 0 {
		return sample.Summary{}, core.NewInvalidInputError("sample", "must not be empty")
	}
	return out[0], nil
}

// ByCondition groups single-level observations by condition label.
func ByCondition(rows []sample.Observation, est estimate.Estimator) ([]sample.Summary, error) {
	return GroupBy(rows,
		func(o sample.Observation) sample.GroupKey { return sample.GroupKey{Condition: o.Condition} },
		func(o sample.Observation) float64 { return o.Value },
		est)
}

// ByParticipant groups trials by participant, pooling conditions.
func ByParticipant(rows []sample.Trial, est estimate.Estimator) ([]sample.Summary, error) {
	return GroupBy(rows,
		func(t sample.Trial) sample.GroupKey { return sample.GroupKey{Participant: t.Participant} },
		func(t sample.Trial) float64 { return t.RT },
		est)
}

// ByTrialCondition groups trials by condition, pooling participants.
func ByTrialCondition(rows []sample.Trial, est estimate.Estimator) ([]sample.Summary, error) {
	return GroupBy(rows,
		func(t sample.Trial) sample.GroupKey { return sample.GroupKey{Condition: t.Condition} },
		func(t sample.Trial) float64 { return t.RT },
		est)
}

// ByParticipantCondition groups trials by participant, then condition.
func ByParticipantCondition(rows []sample.Trial, est estimate.Estimator) ([]sample.Summary, error) {
	return GroupBy(rows,
		func(t sample.Trial) sample.GroupKey {
			return sample.GroupKey{Participant: t.Participant, Condition: t.Condition}
		},
		func(t sample.Trial) float64 { return t.RT },
		est)
}

// Estimates collects the estimates of every summary labeled condition, in
// table order. It is how per-participant means of one condition are pulled
// out before computing an interval across participants.
func Estimates(summaries []sample.Summary, condition string) []float64 {
	var out []float64
	for _, s := range summaries {
		if s.Key.Condition == condition {
			out = append(out, s.Estimate)
		}
	}
	return out
}

// Select returns the summaries labeled condition, in table order.
func Select(summaries []sample.Summary, condition string) []sample.Summary {
	var out []sample.Summary
	for _, s := range summaries {
		if s.Key.Condition == condition {
			out = append(out, s)
		}
	}
	return out
}

// Find returns the first summary labeled condition.
func Find(summaries []sample.Summary, condition string) (sample.Summary, bool) {
	for _, s := range summaries {
		if s.Key.Condition == condition {
			return s, true
		}
	}
	return sample.Summary{}, false
}

func identity(v float64) float64 { return v }

func describeKey(k sample.GroupKey) string {
	switch {
	case k.Participant != 0 && k.Condition != "":
		return fmt.Sprintf("participant=%d condition=%q", k.Participant, k.Condition)
	case k.Participant != 0:
		return fmt.Sprintf("participant=%d", k.Participant)
	case k.Condition != "":
		return fmt.Sprintf("condition=%q", k.Condition)
	}
	return "overall"
}
