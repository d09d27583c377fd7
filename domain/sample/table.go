package sample

import (
	"math"
	"strconv"
)

// Table is the tabular hand-off to persistence collaborators. The pipeline
// fixes column names and cell formatting; where the rows end up is up to the
// caller.
type Table interface {
	Name() string
	Columns() []string
	Records() [][]string
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ValueColumn returns the column a family's draws are stored under.
func ValueColumn(f Family) string {
	switch f {
	case FamilyNormal:
		return "sim_values"
	case FamilyBernoulli:
		return "acc"
	case FamilyShiftedLognormal:
		return "rt"
	}
	return "value"
}

// SampleTable exposes a single sample as a one-column table.
type SampleTable struct {
	TableName string
	Sample    Sample
}

func (t SampleTable) Name() string      { return t.TableName }
func (t SampleTable) Columns() []string { return []string{ValueColumn(t.Sample.Family())} }

func (t SampleTable) Records() [][]string {
	out := make([][]string, t.Sample.Len())
	for i := range out {
		out[i] = []string{formatFloat(t.Sample.At(i))}
	}
	return out
}

// LogTable pairs each value with its natural log (rt, log_rt).
type LogTable struct {
	TableName string
	Sample    Sample
}

func (t LogTable) Name() string { return t.TableName }

func (t LogTable) Columns() []string {
	col := ValueColumn(t.Sample.Family())
	return []string{col, "log_" + col}
}

func (t LogTable) Records() [][]string {
	out := make([][]string, t.Sample.Len())
	for i := range out {
		v := t.Sample.At(i)
		out[i] = []string{formatFloat(v), formatFloat(math.Log(v))}
	}
	return out
}

// ObservationTable is a long table of (condition, value) rows.
type ObservationTable struct {
	TableName       string
	ConditionColumn string
	ValueColumn     string
	Rows            []Observation
}

func (t ObservationTable) Name() string { return t.TableName }

func (t ObservationTable) Columns() []string {
	return []string{t.ConditionColumn, t.ValueColumn}
}

func (t ObservationTable) Records() [][]string {
	out := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = []string{r.Condition, formatFloat(r.Value)}
	}
	return out
}

// TrialTable is the long experiment table.
type TrialTable struct {
	TableName string
	Rows      []Trial
}

func (t TrialTable) Name() string      { return t.TableName }
func (t TrialTable) Columns() []string { return []string{"participant", "condition", "rt"} }

func (t TrialTable) Records() [][]string {
	out := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = []string{strconv.Itoa(r.Participant), r.Condition, formatFloat(r.RT)}
	}
	return out
}

// SummaryTable renders summary records. Key and interval columns appear only
// when at least one row uses them.
type SummaryTable struct {
	TableName      string
	EstimateColumn string
	Rows           []Summary
}

func (t SummaryTable) Name() string { return t.TableName }

func (t SummaryTable) shape() (participant, condition, interval bool) {
	for _, r := range t.Rows {
		participant = participant || r.Key.Participant != 0
		condition = condition || r.Key.Condition != ""
		interval = interval || r.Interval != nil
	}
	return participant, condition, interval
}

func (t SummaryTable) Columns() []string {
	participant, condition, interval := t.shape()
	var cols []string
	if participant {
		cols = append(cols, "participant")
	}
	if condition {
		cols = append(cols, "condition")
	}
	cols = append(cols, t.EstimateColumn, "n")
	if interval {
		cols = append(cols, "ci_lower", "ci_upper")
	}
	return cols
}

func (t SummaryTable) Records() [][]string {
	participant, condition, interval := t.shape()
	out := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		var rec []string
		if participant {
			rec = append(rec, strconv.Itoa(r.Key.Participant))
		}
		if condition {
			rec = append(rec, r.Key.Condition)
		}
		rec = append(rec, formatFloat(r.Estimate), strconv.Itoa(r.N))
		if interval {
			if r.Interval != nil {
				rec = append(rec, formatFloat(r.Interval.Lower), formatFloat(r.Interval.Upper))
			} else {
				rec = append(rec, "", "")
			}
		}
		out[i] = rec
	}
	return out
}
