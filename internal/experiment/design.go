// Package experiment composes the samplers into multi-participant
// reaction-time experiments and repeated-trial simulation studies.
package experiment

import (
	"fmt"
	"math"

	"simlab/domain/core"
)

// Baseline is the between-participant distribution of the RT shift.
type Baseline struct {
	Mean float64 `json:"mean" yaml:"mean"`
	SD   float64 `json:"sd" yaml:"sd"`
}

// ConditionSpec describes one within-participant condition. ShiftOffset is
// added to the participant's baseline; LogMean and LogSD are on the log scale.
type ConditionSpec struct {
	Name        string  `json:"name" yaml:"name"`
	ShiftOffset float64 `json:"shift_offset" yaml:"shift_offset"`
	LogMean     float64 `json:"log_mean" yaml:"log_mean"`
	LogSD       float64 `json:"log_sd" yaml:"log_sd"`
}

// Design fully determines an experiment given a random source.
type Design struct {
	Participants       int             `json:"participants" yaml:"participants"`
	TrialsPerCondition int             `json:"trials_per_condition" yaml:"trials_per_condition"`
	Baseline           Baseline        `json:"baseline" yaml:"baseline"`
	Conditions         []ConditionSpec `json:"conditions" yaml:"conditions"`
}

// CueingDesign is the 40-participant valid/invalid cueing experiment: a
// 300 ms baseline varying by 30 ms across participants, with invalid cues
// 20 ms slower in shift and drawn around a larger log-mean.
func CueingDesign() Design {
	return Design{
		Participants:       40,
		TrialsPerCondition: 150,
		Baseline:           Baseline{Mean: 300, SD: 30},
		Conditions: []ConditionSpec{
			{Name: "valid", ShiftOffset: 0, LogMean: math.Log(250), LogSD: math.Log(20)},
			{Name: "invalid", ShiftOffset: 20, LogMean: math.Log(260), LogSD: math.Log(20)},
		},
	}
}

// ConditionNames returns the condition vocabulary in design order.
func (d Design) ConditionNames() []string {
	names := make([]string, len(d.Conditions))
	for i, c := range d.Conditions {
		names[i] = c.Name
	}
	return names
}

// Rows is the number of trials Generate will produce.
func (d Design) Rows() int {
	return d.Participants * len(d.Conditions) * d.TrialsPerCondition
}

// Validate checks the design before any draw is made.
func (d Design) Validate() error {
	if d.Participants <= 0 {
		return core.NewInvalidInputError("participants", "must be positive")
	}
	if d.TrialsPerCondition <= 0 {
		return core.NewInvalidInputError("trials_per_condition", "must be positive")
	}
	if len(d.Conditions) == 0 {
		return core.NewInvalidInputError("conditions", "must not be empty")
	}
	if math.IsNaN(d.Baseline.SD) || d.Baseline.SD < 0 {
		return core.NewParameterError("baseline", "sd", d.Baseline.SD)
	}

	seen := make(map[string]bool, len(d.Conditions))
	for _, c := range d.Conditions {
		if c.Name == "" {
			return core.NewInvalidInputError("condition name", "must not be empty")
		}
		if seen[c.Name] {
			return core.NewInvalidInputError("condition name", fmt.Sprintf("%q is repeated", c.Name))
		}
		seen[c.Name] = true
		if math.IsNaN(c.LogSD) || c.LogSD < 0 {
			return core.NewParameterError(c.Name, "log_sd", c.LogSD)
		}
	}
	return nil
}
