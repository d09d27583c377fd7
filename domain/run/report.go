package run

import (
	"simlab/domain/sample"
)

// Table names shared by exporters and the summary store.
const (
	TableNormalSample        = "normal_sample"
	TableAccuracySample      = "accuracy_sample"
	TableAccuracyByCondition = "accuracy_by_condition"
	TableConditionTrials     = "accuracy_by_condition_trials"
	TableRTSample            = "rt_sample"
	TableRTSummary           = "rt_summary_by_participant"
	TableTrials              = "experiment_trials"
	TableConditionMeans      = "condition_means"
)

// NormalSection is the Normal worked example.
type NormalSection struct {
	Sample  sample.Sample      `json:"-"`
	Summary sample.Descriptive `json:"summary"`
}

// AccuracySection is the overall Bernoulli accuracy with its Wilson interval.
type AccuracySection struct {
	Sample  sample.Sample  `json:"-"`
	Summary sample.Summary `json:"summary"`
}

// ConditionAccuracySection holds accuracy split by condition.
type ConditionAccuracySection struct {
	Observations []sample.Observation `json:"-"`
	Summaries    []sample.Summary     `json:"summaries"`
	Wide         sample.WideTable     `json:"wide"`
	Sentence     string               `json:"sentence"`
}

// RTSection is the single reaction-time sample on both scales.
type RTSection struct {
	Sample     sample.Sample      `json:"-"`
	Summary    sample.Descriptive `json:"summary"`
	LogSummary sample.Descriptive `json:"log_summary"`
}

// ExperimentSection is the multi-participant cueing experiment.
type ExperimentSection struct {
	Trials           []sample.Trial               `json:"-"`
	Baselines        []sample.ParticipantBaseline `json:"baselines"`
	ParticipantMeans []sample.Summary             `json:"participant_means"`
	Wide             sample.WideTable             `json:"wide"`
	// ConditionMeans is the grand mean of participant means per condition
	// with a t interval across participants.
	ConditionMeans []sample.Summary `json:"condition_means"`
}

// Report is everything one lab run produced.
type Report struct {
	Manifest    Manifest                 `json:"manifest"`
	Normal      NormalSection            `json:"normal"`
	Accuracy    AccuracySection          `json:"accuracy"`
	ByCondition ConditionAccuracySection `json:"by_condition"`
	RT          RTSection                `json:"rt"`
	Experiment  ExperimentSection        `json:"experiment"`
}

// Tables returns the report's tables in export order.
func (r *Report) Tables() []sample.Table {
	return []sample.Table{
		sample.SampleTable{TableName: TableNormalSample, Sample: r.Normal.Sample},
		sample.SampleTable{TableName: TableAccuracySample, Sample: r.Accuracy.Sample},
		sample.ObservationTable{TableName: TableConditionTrials, ConditionColumn: "condition", ValueColumn: "acc", Rows: r.ByCondition.Observations},
		sample.SummaryTable{TableName: TableAccuracyByCondition, EstimateColumn: "prop_correct", Rows: r.ByCondition.Summaries},
		sample.LogTable{TableName: TableRTSample, Sample: r.RT.Sample},
		sample.TrialTable{TableName: TableTrials, Rows: r.Experiment.Trials},
		sample.SummaryTable{TableName: TableRTSummary, EstimateColumn: "mean_rt", Rows: r.Experiment.ParticipantMeans},
		sample.SummaryTable{TableName: TableConditionMeans, EstimateColumn: "mean_rt", Rows: r.Experiment.ConditionMeans},
	}
}

// SummaryTables returns only the derived summary tables, keyed by name.
func (r *Report) SummaryTables() map[string][]sample.Summary {
	return map[string][]sample.Summary{
		TableAccuracyByCondition: r.ByCondition.Summaries,
		TableRTSummary:           r.Experiment.ParticipantMeans,
		TableConditionMeans:      r.Experiment.ConditionMeans,
	}
}
