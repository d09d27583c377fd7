package aggregate

import (
	"simlab/domain/core"
	"simlab/domain/sample"
)

// Pivot reshapes a long summary table into one column per condition and one
// row per participant (a single row when summaries are not keyed by
// participant). Columns and rows follow first appearance. Each (participant,
// condition) pair must occur at most once; otherwise the reshape would have
// to drop or combine values and ErrAmbiguousPivot is returned.
func Pivot(summaries []sample.Summary) (sample.WideTable, error) {
	var wide sample.WideTable

	colIndex := make(map[string]int)
	rowIndex := make(map[int]int)
	seen := make(map[sample.GroupKey]bool)

	for _, s := range summaries {
		if seen[s.Key] {
			return sample.WideTable{}, core.NewAmbiguousPivotError(s.Key.Participant, s.Key.Condition)
		}
		seen[s.Key] = true

		if _, ok := colIndex[s.Key.Condition]; !ok {
			colIndex[s.Key.Condition] = len(wide.Conditions)
			wide.Conditions = append(wide.Conditions, s.Key.Condition)
		}
		if _, ok := rowIndex[s.Key.Participant]; !ok {
			rowIndex[s.Key.Participant] = len(wide.Rows)
			wide.Rows = append(wide.Rows, sample.WideRow{Participant: s.Key.Participant})
		}
	}

	for i := range wide.Rows {
		wide.Rows[i].Cells = make([]sample.WideCell, len(wide.Conditions))
	}
	for _, s := range summaries {
		row := &wide.Rows[rowIndex[s.Key.Participant]]
		row.Cells[colIndex[s.Key.Condition]] = sample.WideCell{
			Present:  true,
			Estimate: s.Estimate,
			Interval: s.Interval,
			N:        s.N,
		}
	}
	return wide, nil
}
