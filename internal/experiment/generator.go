package experiment

import (
	"fmt"
	"math/rand/v2"

	"simlab/domain/sample"
	"simlab/internal/sampling"
)

// Experiment is the long trial table together with the per-participant
// baselines it was generated from. The trial table alone is enough to
// recover participant, condition and grand statistics.
type Experiment struct {
	Design    Design                       `json:"design"`
	Trials    []sample.Trial               `json:"trials"`
	Baselines []sample.ParticipantBaseline `json:"baselines"`
}

// Generate draws one baseline shift per participant from
// Normal(Baseline.Mean, Baseline.SD), then for each condition draws
// TrialsPerCondition shifted-lognormal RTs with shift = baseline +
// ShiftOffset. Participants are numbered from 1. All draws come from src in
// participant-major, condition-minor order.
func Generate(src rand.Source, d Design) (Experiment, error) {
	if err := d.Validate(); err != nil {
		return Experiment{}, err
	}

	exp := Experiment{
		Design:    d,
		Trials:    make([]sample.Trial, 0, d.Rows()),
		Baselines: make([]sample.ParticipantBaseline, 0, d.Participants),
	}

	for pid := 1; pid <= d.Participants; pid++ {
		base, err := sampling.Normal(src, d.Baseline.Mean, d.Baseline.SD, 1)
		if err != nil {
			return Experiment{}, fmt.Errorf("participant %d baseline: %w", pid, err)
		}
		shift := base.At(0)
		exp.Baselines = append(exp.Baselines, sample.ParticipantBaseline{Participant: pid, Shift: shift})

		for _, c := range d.Conditions {
			rts, err := sampling.ShiftedLognormal(src, shift+c.ShiftOffset, c.LogMean, c.LogSD, d.TrialsPerCondition)
			if err != nil {
				return Experiment{}, fmt.Errorf("participant %d condition %q: %w", pid, c.Name, err)
			}
			for i := 0; i < rts.Len(); i++ {
				exp.Trials = append(exp.Trials, sample.Trial{Participant: pid, Condition: c.Name, RT: rts.At(i)})
			}
		}
	}
	return exp, nil
}

// Baseline returns the shift drawn for participant pid.
func (e Experiment) Baseline(pid int) (float64, bool) {
	for _, b := range e.Baselines {
		if b.Participant == pid {
			return b.Shift, true
		}
	}
	return 0, false
}
