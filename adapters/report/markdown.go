// Package report renders a finished lab run as markdown tables, or as an
// HTML page converted from that markdown.
package report

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"simlab/domain/run"
	"simlab/domain/sample"
)

// MarkdownRenderer writes one section per lab part
type MarkdownRenderer struct {
	Title string
}

// NewMarkdownRenderer creates a renderer with the default title
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{Title: "Distributions lab"}
}

// errWriter stops writing after the first error
type errWriter struct {
	w   *bufio.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) table(header []string, rows [][]string) {
	ew.printf("| %s |\n", strings.Join(header, " | "))
	ew.printf("|%s\n", strings.Repeat("---|", len(header)))
	for _, r := range rows {
		ew.printf("| %s |\n", strings.Join(r, " | "))
	}
	ew.printf("\n")
}

// Render writes the report as markdown
func (m *MarkdownRenderer) Render(w io.Writer, r *run.Report) error {
	ew := &errWriter{w: bufio.NewWriter(w)}
	level := r.Manifest.ConfidenceLevel

	ew.printf("# %s\n\n", m.Title)
	ew.printf("- Run: `%s`\n", r.Manifest.RunID)
	ew.printf("- Seed: %d\n", r.Manifest.Seed)
	ew.printf("- Confidence level: %s%%\n\n", strconv.FormatFloat(level*100, 'g', 4, 64))

	ew.printf("## A. Normal distribution\n\n")
	ew.table(descriptiveHeader(""), [][]string{descriptiveRow("", r.Normal.Summary, 3)})

	ew.printf("## B1. Overall accuracy\n\n")
	ew.table([]string{"prop_correct", "n", "ci_lower", "ci_upper"},
		[][]string{summaryRow(r.Accuracy.Summary, 3)})

	ew.printf("## B2. Accuracy by condition\n\n")
	rows := make([][]string, len(r.ByCondition.Summaries))
	for i, s := range r.ByCondition.Summaries {
		rows[i] = append([]string{s.Key.Condition}, summaryRow(s, 3)...)
	}
	ew.table([]string{"condition", "prop_correct", "n", "ci_lower", "ci_upper"}, rows)
	if r.ByCondition.Sentence != "" {
		ew.printf("%s\n\n", r.ByCondition.Sentence)
	}

	ew.printf("## C1. Reaction times\n\n")
	ew.table(descriptiveHeader("scale"), [][]string{
		descriptiveRow("rt", r.RT.Summary, 2),
		descriptiveRow("log_rt", r.RT.LogSummary, 3),
	})

	ew.printf("## C2. Cueing experiment\n\n")
	rows = make([][]string, len(r.Experiment.ConditionMeans))
	for i, s := range r.Experiment.ConditionMeans {
		rows[i] = append([]string{s.Key.Condition}, summaryRow(s, 1)...)
	}
	ew.table([]string{"condition", "mean_rt", "n", "ci_lower", "ci_upper"}, rows)

	if wide := r.Experiment.Wide; len(wide.Rows) > 0 {
		ew.printf("Participant mean RTs:\n\n")
		ew.table(append([]string{"participant"}, wide.Conditions...), wideRows(wide, 1))
	}

	if ew.err != nil {
		return ew.err
	}
	return ew.w.Flush()
}

func fixed(v float64, decimals int) string {
	return strconv.FormatFloat(v, 'f', decimals, 64)
}

func descriptiveHeader(label string) []string {
	h := []string{"n", "mean", "median", "sd", "min", "max"}
	if label != "" {
		h = append([]string{label}, h...)
	}
	return h
}

func descriptiveRow(label string, d sample.Descriptive, decimals int) []string {
	row := []string{
		strconv.Itoa(d.N),
		fixed(d.Mean, decimals),
		fixed(d.Median, decimals),
		fixed(d.SD, decimals),
		fixed(d.Min, decimals),
		fixed(d.Max, decimals),
	}
	if label != "" {
		row = append([]string{label}, row...)
	}
	return row
}

func summaryRow(s sample.Summary, decimals int) []string {
	lower, upper := "", ""
	if s.Interval != nil {
		lower, upper = fixed(s.Interval.Lower, decimals), fixed(s.Interval.Upper, decimals)
	}
	return []string{fixed(s.Estimate, decimals), strconv.Itoa(s.N), lower, upper}
}

func wideRows(w sample.WideTable, decimals int) [][]string {
	out := make([][]string, len(w.Rows))
	for i, row := range w.Rows {
		rec := []string{strconv.Itoa(row.Participant)}
		for _, c := range row.Cells {
			if c.Present {
				rec = append(rec, fixed(c.Estimate, decimals))
			} else {
				rec = append(rec, "")
			}
		}
		out[i] = rec
	}
	return out
}
