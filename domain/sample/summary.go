package sample

// GroupKey identifies the group a summary was computed over.
// Participant is 0 and Condition is empty when that level is not grouped.
type GroupKey struct {
	Participant int    `json:"participant,omitempty"`
	Condition   string `json:"condition,omitempty"`
}

// Interval is a two-sided confidence interval.
type Interval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Level float64 `json:"level"`
}

// Contains reports whether x lies within [Lower, Upper].
func (iv Interval) Contains(x float64) bool {
	return iv.Lower <= x && x <= iv.Upper
}

// Width is Upper - Lower.
func (iv Interval) Width() float64 {
	return iv.Upper - iv.Lower
}

// Summary is a read-only aggregate over one group.
type Summary struct {
	Key      GroupKey  `json:"key"`
	Estimate float64   `json:"estimate"`
	Interval *Interval `json:"interval,omitempty"`
	N        int       `json:"n"`
}

// Descriptive holds the usual one-variable summary.
type Descriptive struct {
	N      int     `json:"n"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	SD     float64 `json:"sd"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// WideTable is the one-column-per-condition form of a summary table.
type WideTable struct {
	Conditions []string  `json:"conditions"`
	Rows       []WideRow `json:"rows"`
}

// WideRow holds one participant's cells, aligned with WideTable.Conditions.
type WideRow struct {
	Participant int        `json:"participant,omitempty"`
	Cells       []WideCell `json:"cells"`
}

// WideCell carries everything a long-format summary holds besides its key.
type WideCell struct {
	Present  bool      `json:"present"`
	Estimate float64   `json:"estimate,omitempty"`
	Interval *Interval `json:"interval,omitempty"`
	N        int       `json:"n,omitempty"`
}

// Long flattens the table back to one summary per present cell, row by row
// and condition by condition.
func (w WideTable) Long() []Summary {
	var out []Summary
	for _, row := range w.Rows {
		for j, cell := range row.Cells {
			if !cell.Present {
				continue
			}
			out = append(out, Summary{
				Key:      GroupKey{Participant: row.Participant, Condition: w.Conditions[j]},
				Estimate: cell.Estimate,
				Interval: cell.Interval,
				N:        cell.N,
			})
		}
	}
	return out
}

// Value returns the estimate for a condition in row i.
func (w WideTable) Value(i int, condition string) (float64, bool) {
	for j, c := range w.Conditions {
		if c == condition {
			cell := w.Rows[i].Cells[j]
			return cell.Estimate, cell.Present
		}
	}
	return 0, false
}
