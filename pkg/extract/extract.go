// Package extract recovers the structured draft record from raw generated
// text, tolerating surrounding prose and malformed fragments.
package extract

import (
	"encoding/json"
	"strings"

	pferrors "github.com/otherjamesbrown/draftgen-cli/pkg/errors"
)

// EmailDraft is the four-field structured record the generation service is
// instructed to emit. Post-validation, every field is non-empty and within
// its documented bounds.
type EmailDraft struct {
	Subject  string `json:"subject"`
	Greeting string `json:"greeting"`
	Body     string `json:"body"`
	Closing  string `json:"closing"`
}

var requiredFields = []string{"subject", "greeting", "body", "closing"}

// Extract locates and decodes a well-formed draft record within text.
//
// The generation service may prepend or append prose despite instructions,
// and may emit incomplete fragments before a complete record. A greedy
// first-open-to-last-close scan corrupts output in that case, so Extract
// enumerates every plausible brace boundary pair and accepts the first
// candidate that parses to an object carrying all four required fields as
// strings. Extra fields are ignored; non-object shapes are rejected. It
// fails with a malformed_output error only after every candidate pair has
// been exhausted.
func Extract(text string) (*EmailDraft, error) {
	opens := indexAll(text, '{')
	closes := indexAll(text, '}')
	if len(opens) == 0 || len(closes) == 0 {
		return nil, pferrors.New(pferrors.ErrMalformedOutput, "extract", "no candidate record boundaries in generated text")
	}

	// Earlier opens first, and for each open the nearest close first, so
	// the common case of one clean record embedded in prose is found on
	// the first parse that succeeds.
	for _, start := range opens {
		for _, end := range closes {
			if end <= start {
				continue
			}
			if draft, ok := tryDecode(text[start : end+1]); ok {
				return draft, nil
			}
		}
	}

	return nil, pferrors.New(pferrors.ErrMalformedOutput, "extract", "no candidate boundary pair parsed to a well-formed record")
}

// tryDecode attempts to parse one candidate slice into a complete draft.
func tryDecode(candidate string) (*EmailDraft, bool) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &raw); err != nil {
		return nil, false
	}

	fields := make(map[string]string, len(requiredFields))
	for _, name := range requiredFields {
		val, ok := raw[name]
		if !ok {
			return nil, false
		}
		// Unmarshal through a pointer so JSON null is distinguishable from
		// an empty string instead of silently decoding to one.
		var s *string
		if err := json.Unmarshal(val, &s); err != nil || s == nil {
			return nil, false
		}
		fields[name] = *s
	}

	return &EmailDraft{
		Subject:  fields["subject"],
		Greeting: fields["greeting"],
		Body:     fields["body"],
		Closing:  fields["closing"],
	}, true
}

func indexAll(s string, c byte) []int {
	var out []int
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			out = append(out, i)
		}
	}
	return out
}

// TrimFields returns a copy of the draft with surrounding whitespace
// removed from every field.
func (d *EmailDraft) TrimFields() *EmailDraft {
	return &EmailDraft{
		Subject:  strings.TrimSpace(d.Subject),
		Greeting: strings.TrimSpace(d.Greeting),
		Body:     strings.TrimSpace(d.Body),
		Closing:  strings.TrimSpace(d.Closing),
	}
}
