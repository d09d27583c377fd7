package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"simlab/domain/core"
)

func TestFromDomain_ClassifiesSentinels(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{core.NewInvalidInputError("count", "must be positive"), CodeInvalidInput},
		{core.NewParameterError("normal", "sd", -1), CodeDistributionParameter},
		{core.NewInsufficientSamplesError(2, 1), CodeInsufficientSamples},
		{fmt.Errorf("group x: %w", core.NewAmbiguousPivotError(1, "a")), CodeAmbiguousPivot},
		{fmt.Errorf("%w: recorded 1, replayed 2", core.ErrSeedMismatch), CodeDeterminismMismatch},
		{stderrors.New("boom"), CodeInternalError},
	}

	for _, tt := range tests {
		appErr := FromDomain(tt.err)
		assert.Equal(t, tt.code, appErr.Code, tt.err.Error())
		assert.ErrorIs(t, appErr, tt.err)
		assert.Equal(t, tt.code, GetCode(tt.err))
	}
	assert.Nil(t, FromDomain(nil))
}

func TestWrap_KeepsCode(t *testing.T) {
	inner := Wrap(core.NewInsufficientSamplesError(2, 1), "participant means")
	outer := Wrapf(inner, "section %s", "C2")

	assert.Equal(t, CodeInsufficientSamples, GetCode(outer))
	assert.ErrorIs(t, outer, core.ErrInsufficientSamples)
	assert.Equal(t, "section C2: participant means: insufficient samples: need at least 2 observations, got 1", outer.Error())

	assert.Nil(t, Wrap(nil, "nothing"))
	assert.Nil(t, Wrapf(nil, "nothing %d", 1))
}

func TestWithCode(t *testing.T) {
	err := WithCode(CodeDatabaseError, stderrors.New("locked"))
	assert.Equal(t, CodeDatabaseError, GetCode(err))

	recoded := WithCode(CodeNotFound, ConfigInvalid("x"))
	assert.Equal(t, CodeNotFound, GetCode(recoded))
	assert.Nil(t, WithCode(CodeNotFound, nil))
}

func TestConstructors(t *testing.T) {
	assert.Equal(t, "run not found", NotFound("run").Error())
	assert.Equal(t, CodeExportError, ExportError("acc", stderrors.New("disk")).Code)
	assert.Equal(t, "export acc: disk", ExportError("acc", stderrors.New("disk")).Error())
	assert.Equal(t, CodeDatabaseError, DatabaseError("insert", nil).Code)
}
