package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simlab/domain/core"
	"simlab/domain/sample"
	"simlab/internal/estimate"
	"simlab/internal/sampling"
)

func easyHard(t *testing.T) []sample.Observation {
	t.Helper()
	src := sampling.NewSource(2025)

	easy, err := sampling.Bernoulli(src, 0.95, 200)
	require.NoError(t, err)
	hard, err := sampling.Bernoulli(src, 0.75, 200)
	require.NoError(t, err)

	return append(sample.Label("Easy", easy), sample.Label("Hard", hard)...)
}

func TestByCondition_EasyHardAccuracy(t *testing.T) {
	rows := easyHard(t)

	summaries, err := ByCondition(rows, estimate.ProportionAt(estimate.DefaultLevel))
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, "Easy", summaries[0].Key.Condition)
	assert.Equal(t, "Hard", summaries[1].Key.Condition)
	for _, s := range summaries {
		assert.Equal(t, 200, s.N)
		assert.Equal(t, 0, s.Key.Participant)
		assert.GreaterOrEqual(t, s.Estimate, 0.0)
		assert.LessOrEqual(t, s.Estimate, 1.0)
		require.NotNil(t, s.Interval)
		assert.True(t, s.Interval.Contains(s.Estimate))
	}
	assert.Greater(t, summaries[0].Estimate, summaries[1].Estimate)
}

func TestGroupBy_FirstAppearanceOrder(t *testing.T) {
	rows := []sample.Observation{
		{Condition: "b", Value: 1},
		{Condition: "a", Value: 2},
		{Condition: "b", Value: 3},
		{Condition: "c", Value: 4},
	}

	summaries, err := ByCondition(rows, estimate.Mean)
	require.NoError(t, err)
	require.Len(t, summaries, 3)

	assert.Equal(t, []string{"b", "a", "c"}, []string{
		summaries[0].Key.Condition, summaries[1].Key.Condition, summaries[2].Key.Condition,
	})
	assert.Equal(t, 2.0, summaries[0].Estimate)
	assert.Equal(t, 2, summaries[0].N)
}

func TestByParticipantCondition_CountsMatchGroups(t *testing.T) {
	trials := []sample.Trial{
		{Participant: 1, Condition: "valid", RT: 400},
		{Participant: 1, Condition: "valid", RT: 420},
		{Participant: 1, Condition: "invalid", RT: 500},
		{Participant: 2, Condition: "valid", RT: 380},
		{Participant: 2, Condition: "invalid", RT: 450},
		{Participant: 2, Condition: "invalid", RT: 470},
		{Participant: 2, Condition: "invalid", RT: 490},
	}

	summaries, err := ByParticipantCondition(trials, estimate.Mean)
	require.NoError(t, err)
	require.Len(t, summaries, 4)

	want := []sample.Summary{
		{Key: sample.GroupKey{Participant: 1, Condition: "valid"}, Estimate: 410, N: 2},
		{Key: sample.GroupKey{Participant: 1, Condition: "invalid"}, Estimate: 500, N: 1},
		{Key: sample.GroupKey{Participant: 2, Condition: "valid"}, Estimate: 380, N: 1},
		{Key: sample.GroupKey{Participant: 2, Condition: "invalid"}, Estimate: 470, N: 3},
	}
	assert.Equal(t, want, summaries)

	total := 0
	for _, s := range summaries {
		total += s.N
	}
	assert.Equal(t, len(trials), total)

	byParticipant, err := ByParticipant(trials, estimate.Mean)
	require.NoError(t, err)
	require.Len(t, byParticipant, 2)
	assert.Equal(t, 3, byParticipant[0].N)

	byCondition, err := ByTrialCondition(trials, estimate.Mean)
	require.NoError(t, err)
	require.Len(t, byCondition, 2)
	assert.Equal(t, 3, byCondition[0].N)
	assert.Equal(t, 4, byCondition[1].N)

	assert.Equal(t, []float64{500, 470}, Estimates(summaries, "invalid"))
}

func TestGroupBy_EstimatorErrorNamesGroup(t *testing.T) {
	rows := []sample.Observation{{Condition: "Easy", Value: 1}, {Condition: "Hard", Value: 0.5}}

	_, err := ByCondition(rows, estimate.ProportionAt(estimate.DefaultLevel))
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidInput)
	assert.Contains(t, err.Error(), `condition="Hard"`)

	_, err = ByCondition(rows, nil)
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestOverall(t *testing.T) {
	s := sample.New(sample.FamilyBernoulli, sample.Params{P: 0.5}, []float64{1, 0, 1, 1})

	summary, err := Overall(s, estimate.ProportionAt(estimate.DefaultLevel))
	require.NoError(t, err)
	assert.Equal(t, sample.GroupKey{}, summary.Key)
	assert.Equal(t, 0.75, summary.Estimate)
	assert.Equal(t, 4, summary.N)

	_, err = Overall(sample.Sample{}, estimate.Mean)
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestFind(t *testing.T) {
	summaries := []sample.Summary{{Key: sample.GroupKey{Condition: "Easy"}, Estimate: 0.9}}

	s, ok := Find(summaries, "Easy")
	assert.True(t, ok)
	assert.Equal(t, 0.9, s.Estimate)

	_, ok = Find(summaries, "Hard")
	assert.False(t, ok)
}

func TestSelectAndEstimates(t *testing.T) {
	summaries := []sample.Summary{
		{Key: sample.GroupKey{Participant: 1, Condition: "valid"}, Estimate: 310},
		{Key: sample.GroupKey{Participant: 1, Condition: "invalid"}, Estimate: 335},
		{Key: sample.GroupKey{Participant: 2, Condition: "valid"}, Estimate: 290},
	}

	valid := Select(summaries, "valid")
	require.Len(t, valid, 2)
	assert.Equal(t, 1, valid[0].Key.Participant)
	assert.Equal(t, 2, valid[1].Key.Participant)
	assert.Equal(t, []float64{310, 290}, Estimates(summaries, "valid"))
	assert.Empty(t, Select(summaries, "neutral"))
}
