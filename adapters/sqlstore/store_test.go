package sqlstore

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simlab/domain/core"
	"simlab/domain/run"
	"simlab/domain/sample"
	"simlab/internal/errors"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := Open(context.Background(), DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testManifest(seed uint64) run.Manifest {
	return run.NewManifest(core.NewRunID(), seed, 0.95, core.NewHash([]byte("design")), core.HashFloats([]float64{1, 2, 3}), 3)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "x")
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestMigrator_Idempotent(t *testing.T) {
	db := openTestDB(t)
	m := NewMigrator(db)

	applied, err := m.Applied(context.Background())
	require.NoError(t, err)
	assert.Len(t, applied, 2)
	assert.Contains(t, applied, "001")
	assert.Contains(t, applied, "002")

	again, err := m.Up(context.Background())
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestMigrator_DetectsModifiedMigration(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Exec("UPDATE schema_migrations SET checksum = 'stale' WHERE version = '001'")
	require.NoError(t, err)

	_, err = NewMigrator(db).Up(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "modified")
}

func TestSplitStatements(t *testing.T) {
	assert.Equal(t, []string{"CREATE TABLE a (x INT)", "CREATE INDEX i ON a (x)"},
		splitStatements("CREATE TABLE a (x INT);\n\nCREATE INDEX i ON a (x);\n"))
	assert.Empty(t, splitStatements("  ;\n"))
}

func TestRunRepository_SaveAndGet(t *testing.T) {
	repo := NewRunRepository(openTestDB(t))
	ctx := context.Background()

	m := testManifest(18446744073709551615) // max uint64
	require.NoError(t, repo.SaveRun(ctx, m))

	got, err := repo.GetRun(ctx, m.RunID)
	require.NoError(t, err)
	assert.Equal(t, m.RunID, got.RunID)
	assert.Equal(t, m.Seed, got.Seed)
	assert.Equal(t, m.ConfidenceLevel, got.ConfidenceLevel)
	assert.Equal(t, m.DesignHash, got.DesignHash)
	assert.Equal(t, m.OutputHash, got.OutputHash)
	assert.Equal(t, m.Draws, got.Draws)
	assert.Equal(t, m.Fingerprint, got.Fingerprint)
	assert.WithinDuration(t, m.CreatedAt, got.CreatedAt, time.Millisecond)
	require.NoError(t, got.Validate())
	require.NoError(t, m.Verify(*got))
}

func TestRunRepository_Errors(t *testing.T) {
	repo := NewRunRepository(openTestDB(t))
	ctx := context.Background()

	_, err := repo.GetRun(ctx, core.NewRunID())
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))

	invalid := testManifest(1)
	invalid.Fingerprint = "tampered"
	err = repo.SaveRun(ctx, invalid)
	assert.ErrorIs(t, err, core.ErrHashMismatch)

	m := testManifest(1)
	require.NoError(t, repo.SaveRun(ctx, m))
	err = repo.SaveRun(ctx, m)
	assert.Equal(t, errors.CodeDatabaseError, errors.GetCode(err))

	err = repo.SaveSummaries(ctx, m.RunID, "", nil)
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	// summaries must belong to a stored run
	err = repo.SaveSummaries(ctx, core.NewRunID(), "t", []sample.Summary{{Estimate: 1, N: 1}})
	assert.Equal(t, errors.CodeDatabaseError, errors.GetCode(err))
}

func TestRunRepository_ListRuns(t *testing.T) {
	repo := NewRunRepository(openTestDB(t))
	ctx := context.Background()

	var ids []core.RunID
	for i := 0; i < 3; i++ {
		m := testManifest(uint64(i))
		m.CreatedAt = time.Date(2025, 1, 1+i, 0, 0, 0, 0, time.UTC)
		require.NoError(t, repo.SaveRun(ctx, m))
		ids = append(ids, m.RunID)
	}

	all, err := repo.ListRuns(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, ids[2], all[0].RunID)
	assert.Equal(t, ids[0], all[2].RunID)

	page, err := repo.ListRuns(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, ids[1], page[0].RunID)
}

func TestRunRepository_Summaries(t *testing.T) {
	repo := NewRunRepository(openTestDB(t))
	ctx := context.Background()
	m := testManifest(2025)
	require.NoError(t, repo.SaveRun(ctx, m))

	rows := []sample.Summary{
		{Key: sample.GroupKey{Condition: "Hard"}, Estimate: 0.745, N: 200, Interval: &sample.Interval{Lower: 0.68, Upper: 0.80, Level: 0.95}},
		{Key: sample.GroupKey{Condition: "Easy"}, Estimate: 0.95, N: 200, Interval: &sample.Interval{Lower: 0.91, Upper: 0.97, Level: 0.95}},
	}
	require.NoError(t, repo.SaveSummaries(ctx, m.RunID, run.TableAccuracyByCondition, rows))

	means := []sample.Summary{{Key: sample.GroupKey{Participant: 3, Condition: "valid"}, Estimate: 551.25, N: 150}}
	require.NoError(t, repo.SaveSummaries(ctx, m.RunID, run.TableRTSummary, means))

	got, err := repo.ListSummaries(ctx, m.RunID, run.TableAccuracyByCondition)
	require.NoError(t, err)
	assert.Equal(t, rows, got)

	got, err = repo.ListSummaries(ctx, m.RunID, run.TableRTSummary)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].Interval)
	assert.Equal(t, 3, got[0].Key.Participant)

	// saving again replaces the table
	require.NoError(t, repo.SaveSummaries(ctx, m.RunID, run.TableAccuracyByCondition, rows[:1]))
	got, err = repo.ListSummaries(ctx, m.RunID, run.TableAccuracyByCondition)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	empty, err := repo.ListSummaries(ctx, m.RunID, "unknown")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
