package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pferrors "github.com/otherjamesbrown/draftgen-cli/pkg/errors"
)

const cleanRecord = `{"subject": "Leave request", "greeting": "Dear Manager,", "body": "I would like to request leave.", "closing": "Best regards,"}`

func TestExtractCleanRecord(t *testing.T) {
	draft, err := Extract(cleanRecord)
	require.NoError(t, err)

	assert.Equal(t, "Leave request", draft.Subject)
	assert.Equal(t, "Dear Manager,", draft.Greeting)
	assert.Equal(t, "I would like to request leave.", draft.Body)
	assert.Equal(t, "Best regards,", draft.Closing)
}

func TestExtractRecordSurroundedByProse(t *testing.T) {
	text := "Sure! Here is the email you asked for:\n\n" + cleanRecord + "\n\nLet me know if you need changes."
	draft, err := Extract(text)
	require.NoError(t, err)
	assert.Equal(t, "Leave request", draft.Subject)
}

func TestExtractSkipsMalformedFragmentBeforeRecord(t *testing.T) {
	// An aborted fragment precedes the real record. A greedy
	// first-open-to-last-close scan would try to parse across both and fail.
	text := `{"subject": "oops, I never finished ` + "\n" + cleanRecord
	draft, err := Extract(text)
	require.NoError(t, err)
	assert.Equal(t, "Leave request", draft.Subject)
}

func TestExtractIgnoresExtraFields(t *testing.T) {
	text := `{"subject": "S", "greeting": "G", "body": "B", "closing": "C", "confidence": 0.9}`
	draft, err := Extract(text)
	require.NoError(t, err)
	assert.Equal(t, "S", draft.Subject)
	assert.Equal(t, "C", draft.Closing)
}

func TestExtractBracesInsideFieldValues(t *testing.T) {
	text := `{"subject": "Budget {draft}", "greeting": "Hello,", "body": "The {brace} figures are attached.", "closing": "Thanks,"}`
	draft, err := Extract(text)
	require.NoError(t, err)
	assert.Equal(t, "Budget {draft}", draft.Subject)
	assert.Equal(t, "The {brace} figures are attached.", draft.Body)
}

func TestExtractRejections(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "empty", text: ""},
		{name: "no braces", text: "I could not produce the email."},
		{name: "only open brace", text: `{"subject": "truncated`},
		{name: "missing field", text: `{"subject": "S", "greeting": "G", "body": "B"}`},
		{name: "non-string field", text: `{"subject": "S", "greeting": "G", "body": "B", "closing": 42}`},
		{name: "nested object field", text: `{"subject": "S", "greeting": "G", "body": {"text": "B"}, "closing": "C"}`},
		{name: "array shape", text: `[{"subject": "S"}]`},
		{name: "null fields", text: `{"subject": null, "greeting": null, "body": null, "closing": null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(tt.text)
			require.Error(t, err)
			assert.True(t, pferrors.IsCode(err, pferrors.ErrMalformedOutput))
		})
	}
}

func TestExtractPicksFirstCompleteRecord(t *testing.T) {
	second := `{"subject": "Second", "greeting": "G", "body": "B", "closing": "C"}`
	text := cleanRecord + "\n" + second

	draft, err := Extract(text)
	require.NoError(t, err)
	assert.Equal(t, "Leave request", draft.Subject)
}

func TestTrimFields(t *testing.T) {
	draft := &EmailDraft{
		Subject:  "  Leave request \n",
		Greeting: "\tDear Manager,",
		Body:     " body text ",
		Closing:  "Best regards,  ",
	}

	trimmed := draft.TrimFields()
	assert.Equal(t, "Leave request", trimmed.Subject)
	assert.Equal(t, "Dear Manager,", trimmed.Greeting)
	assert.Equal(t, "body text", trimmed.Body)
	assert.Equal(t, "Best regards,", trimmed.Closing)

	// Original is untouched.
	assert.Equal(t, "  Leave request \n", draft.Subject)
}
