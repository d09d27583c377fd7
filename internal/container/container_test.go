package container

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simlab/domain/run"
	"simlab/internal"
	"simlab/internal/config"
	"simlab/internal/errors"
)

type nopCloser struct{ *bytes.Buffer }

func (nopCloser) Close() error { return nil }

func TestNew_WithoutDatabase(t *testing.T) {
	c, err := New(context.Background(), config.Default(), internal.NewNopLogger())
	require.NoError(t, err)
	defer c.Shutdown(context.Background())

	assert.Nil(t, c.DB)
	assert.Nil(t, c.RunRepo)
	require.Len(t, c.Exporters, 2)
	assert.Equal(t, "csv", c.Exporters[0].Format())
	assert.Equal(t, "xlsx", c.Exporters[1].Format())
	assert.NotNil(t, c.Lab)
}

func TestNew_NilConfig(t *testing.T) {
	_, err := New(context.Background(), nil, nil)
	assert.Error(t, err)
}

func TestNew_UnsupportedDriver(t *testing.T) {
	cfg := config.Default()
	cfg.Database = config.DatabaseConfig{Driver: "oracle", URL: "x"}

	_, err := New(context.Background(), cfg, internal.NewNopLogger())
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestContainer_RunPersistExportReplay(t *testing.T) {
	cfg := config.Default()
	cfg.Database = config.DatabaseConfig{Driver: "sqlite3", URL: ":memory:"}
	ctx := context.Background()

	c, err := New(ctx, cfg, internal.NewNopLogger())
	require.NoError(t, err)
	defer c.Shutdown(ctx)
	require.NotNil(t, c.DB)

	rep, err := c.Lab.Run(ctx)
	require.NoError(t, err)

	stored, err := c.RunRepo.ListSummaries(ctx, rep.Manifest.RunID, run.TableRTSummary)
	require.NoError(t, err)
	assert.Len(t, stored, 80)
	assert.Equal(t, rep.Experiment.ParticipantMeans[0].Estimate, stored[0].Estimate)

	files := map[string]*bytes.Buffer{}
	open := func(name string) (io.WriteCloser, error) {
		b := &bytes.Buffer{}
		files[name] = b
		return nopCloser{b}, nil
	}
	require.NoError(t, c.Lab.Export(ctx, rep, open))
	assert.Contains(t, files, "normal_sample.csv")
	assert.Equal(t, 401, strings.Count(files["accuracy_by_condition_trials.csv"].String(), "\n"))
	assert.Contains(t, files, "lab_tables.xlsx")
	assert.Contains(t, files["report"].String(), "<table>")

	replayed, err := c.Lab.Replay(ctx, rep.Manifest.RunID)
	require.NoError(t, err)
	assert.Equal(t, rep.Manifest.OutputHash, replayed.Manifest.OutputHash)
}
