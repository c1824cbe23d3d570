package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipelineErrorFormatting(t *testing.T) {
	withStage := New(ErrOutputRejected, "validate", "body too short")
	assert.Equal(t, "output_rejected: validate: body too short", withStage.Error())

	withoutStage := New(ErrInputRejected, "", "description too short")
	assert.Equal(t, "input_rejected: description too short", withoutStage.Error())
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(ErrGenerationUnavailable, "generate", cause)

	assert.Equal(t, ErrGenerationUnavailable, err.Code)
	assert.Equal(t, "connection refused", err.Reason)
	assert.ErrorIs(t, err, cause)
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, ErrMalformedOutput, CodeOf(New(ErrMalformedOutput, "extract", "no candidates")))

	// Wrapped deeper in a chain.
	wrapped := fmt.Errorf("stage failed: %w", New(ErrInputRejected, "input", "too long"))
	assert.Equal(t, ErrInputRejected, CodeOf(wrapped))

	// Unclassified errors default conservatively.
	assert.Equal(t, ErrGenerationUnavailable, CodeOf(stderrors.New("boom")))
}

func TestIsCode(t *testing.T) {
	err := New(ErrOutputRejected, "validate", "placeholder found")
	assert.True(t, IsCode(err, ErrOutputRejected))
	assert.False(t, IsCode(err, ErrMalformedOutput))
	assert.False(t, IsCode(stderrors.New("plain"), ErrOutputRejected))
}

func TestClassifyErrorPassesThroughTypedErrors(t *testing.T) {
	original := New(ErrOutputRejected, "validate", "hostile term")
	classified := ClassifyError(fmt.Errorf("wrapped: %w", original), "generate")

	require.NotNil(t, classified)
	assert.Equal(t, ErrOutputRejected, classified.Code)
	assert.Equal(t, "validate", classified.Stage)
}

func TestClassifyErrorByStage(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		stage string
		want  ErrorCode
	}{
		{name: "nil", err: nil, stage: "generate", want: ""},
		{name: "deadline", err: context.DeadlineExceeded, stage: "extract", want: ErrGenerationUnavailable},
		{name: "canceled", err: context.Canceled, stage: "validate", want: ErrGenerationUnavailable},
		{name: "extract stage", err: stderrors.New("boom"), stage: "extract", want: ErrMalformedOutput},
		{name: "reprompt stage", err: stderrors.New("boom"), stage: "reprompt", want: ErrMalformedOutput},
		{name: "validate stage", err: stderrors.New("boom"), stage: "validate", want: ErrOutputRejected},
		{name: "parse-shaped error", err: stderrors.New("cannot unmarshal string"), stage: "generate", want: ErrMalformedOutput},
		{name: "default", err: stderrors.New("socket hang up"), stage: "generate", want: ErrGenerationUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyError(tt.err, tt.stage)
			if tt.err == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Code)
			assert.Equal(t, tt.stage, got.Stage)
		})
	}
}

func TestRecoverability(t *testing.T) {
	assert.True(t, IsRecoverable(ErrInputRejected))
	assert.False(t, IsRecoverable(ErrGenerationUnavailable))
	assert.False(t, IsRecoverable(ErrMalformedOutput))
	assert.False(t, IsRecoverable(ErrOutputRejected))
	assert.False(t, IsRecoverable(ErrorCode("nonsense")))
}

func TestGetDescription(t *testing.T) {
	for code := range ErrorCodeRegistry {
		assert.NotEqual(t, "Unknown error", GetDescription(code))
	}
	assert.Equal(t, "Unknown error", GetDescription(ErrorCode("nonsense")))
}
