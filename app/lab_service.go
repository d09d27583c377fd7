package app

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"simlab/domain/core"
	"simlab/domain/run"
	"simlab/domain/sample"
	"simlab/internal"
	"simlab/internal/aggregate"
	"simlab/internal/config"
	"simlab/internal/errors"
	"simlab/internal/estimate"
	"simlab/internal/experiment"
	"simlab/internal/sampling"
	"simlab/ports"
)

// LabService runs the distributions lab end to end: Normal summary, overall
// and per-condition accuracy, a single RT sample and the cueing experiment,
// all from one seeded source.
type LabService struct {
	cfg       config.SimulationConfig
	logger    *internal.Logger
	repo      ports.RunRepository   // optional
	exporters []ports.TableExporter // optional
	renderer  ports.ReportRenderer  // optional
}

// LabOption configures optional collaborators
type LabOption func(*LabService)

// WithRepository persists runs and summaries after each Run
func WithRepository(repo ports.RunRepository) LabOption {
	return func(s *LabService) { s.repo = repo }
}

// WithExporters sets the formats Export writes
func WithExporters(exporters ...ports.TableExporter) LabOption {
	return func(s *LabService) { s.exporters = exporters }
}

// WithRenderer sets the report renderer used by Export
func WithRenderer(r ports.ReportRenderer) LabOption {
	return func(s *LabService) { s.renderer = r }
}

// NewLabService creates a lab service. A nil logger discards output.
func NewLabService(cfg config.SimulationConfig, logger *internal.Logger, opts ...LabOption) *LabService {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	s := &LabService{cfg: cfg, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes every lab section with the configured seed and, when a
// repository is configured, persists the result.
func (s *LabService) Run(ctx context.Context) (*run.Report, error) {
	report, err := s.run(ctx, core.NewRunID(), s.cfg.Seed)
	if err != nil {
		return nil, err
	}
	if s.repo != nil {
		if err := s.Persist(ctx, report); err != nil {
			return nil, err
		}
	}
	return report, nil
}

// Replay re-runs a stored run with its recorded seed and checks that the
// output is bit-for-bit identical.
func (s *LabService) Replay(ctx context.Context, id core.RunID) (*run.Report, error) {
	if s.repo == nil {
		return nil, errors.ConfigInvalid("replay requires a run repository")
	}
	recorded, err := s.repo.GetRun(ctx, id)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load run %s", id)
	}

	report, err := s.run(ctx, core.NewRunID(), recorded.Seed)
	if err != nil {
		return nil, err
	}
	if err := recorded.Verify(report.Manifest); err != nil {
		s.logger.Warn("Replay of run %s diverged: %v", id, err)
		return report, errors.Wrapf(err, "replay of run %s", id)
	}
	s.logger.Info("Replay of run %s matched (%d draws)", id, report.Manifest.Draws)
	return report, nil
}

func (s *LabService) run(ctx context.Context, runID core.RunID, seed uint64) (*run.Report, error) {
	start := time.Now()
	level := s.cfg.ConfidenceLevel
	if level == 0 {
		level = estimate.DefaultLevel
	}
	log := s.logger.With("run_id", runID.String(), "seed", seed)
	src := sampling.NewSource(seed)
	report := &run.Report{}

	sections := []struct {
		name string
		fn   func() error
	}{
		{"normal", func() error { return s.normalSection(src, report) }},
		{"accuracy", func() error { return s.accuracySection(src, level, report) }},
		{"accuracy_by_condition", func() error { return s.conditionSection(src, level, report) }},
		{"rt", func() error { return s.rtSection(src, report) }},
		{"experiment", func() error { return s.experimentSection(src, level, report) }},
	}
	for _, sec := range sections {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := sec.fn(); err != nil {
			log.Error("Section %s failed: %v", sec.name, err)
			return nil, errors.Wrapf(err, "section %s", sec.name)
		}
		log.Debug("Section %s done (%d draws so far)", sec.name, src.Draws())
	}

	designHash, err := s.designHash(level)
	if err != nil {
		return nil, err
	}
	report.Manifest = run.NewManifest(runID, seed, level, designHash, outputHash(report), src.Draws())

	log.Info("Lab run finished in %s: %s", time.Since(start).Round(time.Millisecond), report.ByCondition.Sentence)
	return report, nil
}

func (s *LabService) normalSection(src *sampling.Source, r *run.Report) error {
	nc := s.cfg.Normal
	smp, err := sampling.Normal(src, nc.Mean, nc.SD, nc.N)
	if err != nil {
		return err
	}
	desc, err := estimate.Describe(smp.Values())
	if err != nil {
		return err
	}
	r.Normal = run.NormalSection{Sample: smp, Summary: desc}
	s.logger.Debug("Normal: mean=%.3f sd=%.3f", desc.Mean, desc.SD)
	return nil
}

func (s *LabService) accuracySection(src *sampling.Source, level float64, r *run.Report) error {
	ac := s.cfg.Accuracy
	smp, err := sampling.Bernoulli(src, ac.P, ac.N)
	if err != nil {
		return err
	}
	sum, err := aggregate.Overall(smp, estimate.ProportionAt(level))
	if err != nil {
		return err
	}
	r.Accuracy = run.AccuracySection{Sample: smp, Summary: sum}
	return nil
}

func (s *LabService) conditionSection(src *sampling.Source, level float64, r *run.Report) error {
	ac := s.cfg.Accuracy
	var obs []sample.Observation
	for _, c := range ac.Conditions {
		smp, err := sampling.Bernoulli(src, c.P, ac.TrialsPerCondition)
		if err != nil {
			return fmt.Errorf("condition %s: %w", c.Name, err)
		}
		obs = append(obs, sample.Label(c.Name, smp)...)
	}

	summaries, err := aggregate.ByCondition(obs, estimate.ProportionAt(level))
	if err != nil {
		return err
	}
	wide, err := aggregate.Pivot(summaries)
	if err != nil {
		return err
	}
	r.ByCondition = run.ConditionAccuracySection{
		Observations: obs,
		Summaries:    summaries,
		Wide:         wide,
		Sentence:     AccuracySentence(r.Accuracy.Summary.Estimate, summaries),
	}
	return nil
}

// AccuracySentence renders the inline summary, e.g.
// "Overall accuracy = 0.915. Easy = 0.950, Hard = 0.745."
func AccuracySentence(overall float64, byCondition []sample.Summary) string {
	parts := make([]string, len(byCondition))
	for i, c := range byCondition {
		parts[i] = fmt.Sprintf("%s = %.3f", c.Key.Condition, c.Estimate)
	}
	sentence := fmt.Sprintf("Overall accuracy = %.3f.", overall)
	if len(parts) > 0 {
		sentence += " " + strings.Join(parts, ", ") + "."
	}
	return sentence
}

func (s *LabService) rtSection(src *sampling.Source, r *run.Report) error {
	rc := s.cfg.RT
	logMean, logSD, err := sampling.LogScale(rc.Mean, rc.SD)
	if err != nil {
		return err
	}
	smp, err := sampling.ShiftedLognormal(src, rc.Shift, logMean, logSD, rc.N)
	if err != nil {
		return err
	}

	values := smp.Values()
	desc, err := estimate.Describe(values)
	if err != nil {
		return err
	}
	logs := make([]float64, len(values))
	for i, v := range values {
		logs[i] = math.Log(v)
	}
	logDesc, err := estimate.Describe(logs)
	if err != nil {
		return err
	}
	r.RT = run.RTSection{Sample: smp, Summary: desc, LogSummary: logDesc}
	s.logger.Debug("RT: mean=%.2f median=%.2f sd=%.2f", desc.Mean, desc.Median, desc.SD)
	return nil
}

func (s *LabService) experimentSection(src *sampling.Source, level float64, r *run.Report) error {
	exp, err := experiment.Generate(src, s.cfg.Design)
	if err != nil {
		return err
	}
	means, err := aggregate.ByParticipantCondition(exp.Trials, estimate.Mean)
	if err != nil {
		return err
	}
	wide, err := aggregate.Pivot(means)
	if err != nil {
		return err
	}

	names := s.cfg.Design.ConditionNames()
	condMeans := make([]sample.Summary, 0, len(names))
	for _, name := range names {
		sum, err := estimate.MeanCI(aggregate.Estimates(means, name), level)
		if err != nil {
			return fmt.Errorf("condition %s: %w", name, err)
		}
		sum.Key = sample.GroupKey{Condition: name}
		condMeans = append(condMeans, sum)
		s.logger.Info("%s: mean=%.1f, %.0f%% CI=(%.1f, %.1f)",
			name, sum.Estimate, level*100, sum.Interval.Lower, sum.Interval.Upper)
	}

	r.Experiment = run.ExperimentSection{
		Trials:           exp.Trials,
		Baselines:        exp.Baselines,
		ParticipantMeans: means,
		Wide:             wide,
		ConditionMeans:   condMeans,
	}
	return nil
}

// designHash fingerprints every parameter except the seed.
func (s *LabService) designHash(level float64) (core.Hash, error) {
	cfg := s.cfg
	cfg.Seed = 0
	cfg.ConfidenceLevel = level
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", errors.Wrap(err, "failed to encode design")
	}
	return core.NewHash(data), nil
}

// outputHash fingerprints every drawn value in draw order.
func outputHash(r *run.Report) core.Hash {
	var all []float64
	all = append(all, r.Normal.Sample.Values()...)
	all = append(all, r.Accuracy.Sample.Values()...)
	for _, o := range r.ByCondition.Observations {
		all = append(all, o.Value)
	}
	all = append(all, r.RT.Sample.Values()...)
	for _, b := range r.Experiment.Baselines {
		all = append(all, b.Shift)
	}
	for _, t := range r.Experiment.Trials {
		all = append(all, t.RT)
	}
	return core.HashFloats(all)
}

// Persist stores the run manifest and its summary tables
func (s *LabService) Persist(ctx context.Context, r *run.Report) error {
	if s.repo == nil {
		return errors.ConfigInvalid("no run repository configured")
	}
	if err := s.repo.SaveRun(ctx, r.Manifest); err != nil {
		return errors.Wrapf(err, "failed to save run %s", r.Manifest.RunID)
	}
	for _, name := range []string{run.TableAccuracyByCondition, run.TableRTSummary, run.TableConditionMeans} {
		rows := r.SummaryTables()[name]
		if err := s.repo.SaveSummaries(ctx, r.Manifest.RunID, name, rows); err != nil {
			return errors.Wrapf(err, "failed to save %s", name)
		}
	}
	s.logger.Info("Persisted run %s", r.Manifest.RunID)
	return nil
}

// Export writes the report's tables in every configured format, plus the
// rendered report when a renderer is set.
func (s *LabService) Export(ctx context.Context, r *run.Report, open ports.Opener) error {
	tables := r.Tables()
	for _, exp := range s.exporters {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := exp.Export(ctx, open, tables...); err != nil {
			return errors.Wrapf(err, "%s export", exp.Format())
		}
		s.logger.Debug("Exported %d tables as %s", len(tables), exp.Format())
	}

	if s.renderer != nil {
		w, err := open("report")
		if err != nil {
			return errors.ExportError("report", err)
		}
		if err := s.renderer.Render(w, r); err != nil {
			w.Close()
			return errors.ExportError("report", err)
		}
		if err := w.Close(); err != nil {
			return errors.ExportError("report", err)
		}
	}
	return nil
}
