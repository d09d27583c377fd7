// Package sample defines the record and table shapes exchanged by the
// simulation pipeline: drawn samples, labeled observations, experiment
// trials and the summary records derived from them.
package sample

// Family names a parametric distribution.
type Family string

const (
	FamilyNormal           Family = "normal"
	FamilyBernoulli        Family = "bernoulli"
	FamilyShiftedLognormal Family = "shifted_lognormal"
)

// Valid reports whether f is a known family.
func (f Family) Valid() bool {
	switch f {
	case FamilyNormal, FamilyBernoulli, FamilyShiftedLognormal:
		return true
	}
	return false
}

// Params holds the fixed parameters of a draw. Only the fields relevant to
// the family are meaningful:
//   - normal: Mean, SD
//   - bernoulli: P
//   - shifted_lognormal: Shift, LogMean, LogSD (log space)
type Params struct {
	Mean    float64 `json:"mean,omitempty" yaml:"mean,omitempty"`
	SD      float64 `json:"sd,omitempty" yaml:"sd,omitempty"`
	P       float64 `json:"p,omitempty" yaml:"p,omitempty"`
	Shift   float64 `json:"shift,omitempty" yaml:"shift,omitempty"`
	LogMean float64 `json:"log_mean,omitempty" yaml:"log_mean,omitempty"`
	LogSD   float64 `json:"log_sd,omitempty" yaml:"log_sd,omitempty"`
}

// Sample is an ordered, immutable sequence of draws from one distribution.
type Sample struct {
	family Family
	params Params
	values []float64
}

// New copies values into a Sample.
func New(family Family, params Params, values []float64) Sample {
	owned := make([]float64, len(values))
	copy(owned, values)
	return Sample{family: family, params: params, values: owned}
}

func (s Sample) Family() Family   { return s.family }
func (s Sample) Params() Params   { return s.params }
func (s Sample) Len() int         { return len(s.values) }
func (s Sample) At(i int) float64 { return s.values[i] }

// Values returns a copy of the observations.
func (s Sample) Values() []float64 {
	out := make([]float64, len(s.values))
	copy(out, s.values)
	return out
}

// Observation is one row of a single-level labeled table.
type Observation struct {
	Condition string  `json:"condition"`
	Value     float64 `json:"value"`
}

// Label tags every value of s with condition, preserving order.
func Label(condition string, s Sample) []Observation {
	rows := make([]Observation, s.Len())
	for i := range rows {
		rows[i] = Observation{Condition: condition, Value: s.values[i]}
	}
	return rows
}

// Trial is one reaction-time observation of a multi-participant experiment.
type Trial struct {
	Participant int     `json:"participant"`
	Condition   string  `json:"condition"`
	RT          float64 `json:"rt"`
}

// ParticipantBaseline records the random shift drawn for one participant.
type ParticipantBaseline struct {
	Participant int     `json:"participant"`
	Shift       float64 `json:"shift"`
}
