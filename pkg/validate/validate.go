// Package validate applies content-safety and well-formedness rules to an
// extracted draft, given the control record that drove its generation.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/otherjamesbrown/draftgen-cli/pkg/control"
	"github.com/otherjamesbrown/draftgen-cli/pkg/extract"
)

// Reason is a specific rejection reason code. Validation never produces a
// generic failure.
type Reason string

const (
	ReasonLength      Reason = "length"
	ReasonPlaceholder Reason = "placeholder"
	ReasonStructure   Reason = "structure"
	ReasonTone        Reason = "tone"
	ReasonSensitive   Reason = "sensitive_content"
	ReasonConsistency Reason = "consistency"
)

// Rejection reports why a draft was rejected. A rejected draft is discarded
// in its entirety; validation never attempts partial repair.
type Rejection struct {
	Reason Reason
	Field  string
	Detail string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("draft rejected (%s): %s: %s", r.Reason, r.Field, r.Detail)
}

// Field length bounds, in characters.
const (
	SubjectMinLen  = 3
	SubjectMaxLen  = 150
	GreetingMaxLen = 50
	BodyMinLen     = 20
	BodyMaxLen     = 1000
	ClosingMaxLen  = 50

	// HighTierBodyMinLen is the stricter body floor under high confidence
	// tier: a confident classification implies the generator had enough
	// context to produce substance.
	HighTierBodyMinLen = 60
)

// Tone thresholds.
const (
	// maxUppercaseRatio is the fraction of alphabetic characters allowed
	// to be uppercase under formal tone.
	maxUppercaseRatio = 0.30
	// minLettersForRatio avoids penalizing short fields where a few
	// capitals dominate the ratio.
	minLettersForRatio = 8
	// maxExclamations per field under formal tone.
	maxExclamations = 2
)

var (
	bracketPlaceholder = regexp.MustCompile(`\[[^\[\]]*\]`)
	bracePlaceholder   = regexp.MustCompile(`\{[^{}]*\}`)
	anglePlaceholder   = regexp.MustCompile(`<[^<>]*>`)
	underscoreRun      = regexp.MustCompile(`__+`)

	govIDPattern     = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b|\b\d{4}\s\d{4}\s\d{4}\b`)
	cardPattern      = regexp.MustCompile(`\b\d(?:[ -]?\d){12,18}\b`)
	emailAddrPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
)

// placeholderWhitelist lists bracketed slots a human recipient of a
// low-confidence draft is expected to fill by hand. Everything else rejects.
var placeholderWhitelist = map[string]bool{
	"[name]":           true,
	"[your name]":      true,
	"[recipient name]": true,
	"[date]":           true,
}

// informalMarkers reject under formal tone only.
var informalMarkers = []string{
	"hey", "lol", "omg", "btw", "gonna", "wanna", "gotta", "dude", "yep",
}

// hostileTerms reject regardless of tone.
var hostileTerms = []string{
	"or else", "final warning", "incompetent", "idiotic", "you people",
	"i demand", "sue you",
}

type fieldValue struct {
	name  string
	value string
}

func fieldsOf(d *extract.EmailDraft) []fieldValue {
	return []fieldValue{
		{"subject", d.Subject},
		{"greeting", d.Greeting},
		{"body", d.Body},
		{"closing", d.Closing},
	}
}

// Validate applies the layered checks in order and short-circuits on the
// first failure. A nil return means the draft is accepted unchanged.
func Validate(d *extract.EmailDraft, rec control.Record) *Rejection {
	d = d.TrimFields()

	if rej := checkLengths(d); rej != nil {
		return rej
	}
	if rej := checkPlaceholders(d, rec.Tier); rej != nil {
		return rej
	}
	if rej := checkStructure(d); rej != nil {
		return rej
	}
	if rej := checkTone(d, rec.Tone); rej != nil {
		return rej
	}
	if rej := checkSensitive(d); rej != nil {
		return rej
	}
	if rej := checkConsistency(d, rec); rej != nil {
		return rej
	}
	return nil
}

func checkLengths(d *extract.EmailDraft) *Rejection {
	for _, f := range fieldsOf(d) {
		if f.value == "" {
			return &Rejection{Reason: ReasonLength, Field: f.name, Detail: "empty after trimming"}
		}
	}
	// Bounds are in characters, not bytes: multibyte text must not lose
	// budget to its encoding.
	if n := utf8.RuneCountInString(d.Subject); n < SubjectMinLen || n > SubjectMaxLen {
		return &Rejection{Reason: ReasonLength, Field: "subject", Detail: fmt.Sprintf("length %d outside %d-%d", n, SubjectMinLen, SubjectMaxLen)}
	}
	if n := utf8.RuneCountInString(d.Greeting); n > GreetingMaxLen {
		return &Rejection{Reason: ReasonLength, Field: "greeting", Detail: fmt.Sprintf("length %d exceeds %d", n, GreetingMaxLen)}
	}
	if n := utf8.RuneCountInString(d.Body); n < BodyMinLen || n > BodyMaxLen {
		return &Rejection{Reason: ReasonLength, Field: "body", Detail: fmt.Sprintf("length %d outside %d-%d", n, BodyMinLen, BodyMaxLen)}
	}
	if n := utf8.RuneCountInString(d.Closing); n > ClosingMaxLen {
		return &Rejection{Reason: ReasonLength, Field: "closing", Detail: fmt.Sprintf("length %d exceeds %d", n, ClosingMaxLen)}
	}
	return nil
}

func checkPlaceholders(d *extract.EmailDraft, tier control.Tier) *Rejection {
	for _, f := range fieldsOf(d) {
		for _, m := range bracketPlaceholder.FindAllString(f.value, -1) {
			if tier == control.TierLow && placeholderWhitelist[strings.ToLower(m)] {
				continue
			}
			return &Rejection{Reason: ReasonPlaceholder, Field: f.name, Detail: "unresolved placeholder " + m}
		}
		for _, pat := range []*regexp.Regexp{bracePlaceholder, anglePlaceholder, underscoreRun} {
			if m := pat.FindString(f.value); m != "" {
				return &Rejection{Reason: ReasonPlaceholder, Field: f.name, Detail: "unresolved placeholder " + m}
			}
		}
	}
	return nil
}

func checkStructure(d *extract.EmailDraft) *Rejection {
	pairs := [][2]rune{{'(', ')'}, {'[', ']'}, {'{', '}'}}
	for _, f := range fieldsOf(d) {
		if strings.Count(f.value, `"`)%2 != 0 {
			return &Rejection{Reason: ReasonStructure, Field: f.name, Detail: "unbalanced quotation marks"}
		}
		for _, p := range pairs {
			if strings.Count(f.value, string(p[0])) != strings.Count(f.value, string(p[1])) {
				return &Rejection{Reason: ReasonStructure, Field: f.name, Detail: fmt.Sprintf("unbalanced %c%c", p[0], p[1])}
			}
		}
	}
	return nil
}

func checkTone(d *extract.EmailDraft, tone control.Tone) *Rejection {
	for _, f := range fieldsOf(d) {
		lower := strings.ToLower(f.value)
		for _, term := range hostileTerms {
			if strings.Contains(lower, term) {
				return &Rejection{Reason: ReasonTone, Field: f.name, Detail: "hostile or demanding phrasing"}
			}
		}
	}

	if tone != control.ToneFormal {
		return nil
	}

	for _, f := range fieldsOf(d) {
		lower := strings.ToLower(f.value)
		for _, marker := range informalMarkers {
			if containsWord(lower, marker) {
				return &Rejection{Reason: ReasonTone, Field: f.name, Detail: "informal marker " + marker}
			}
		}
		if strings.Count(f.value, "!") > maxExclamations {
			return &Rejection{Reason: ReasonTone, Field: f.name, Detail: "excessive exclamation density"}
		}
	}

	for _, f := range []fieldValue{{"subject", d.Subject}, {"body", d.Body}} {
		upper, letters := 0, 0
		for _, r := range f.value {
			if unicode.IsLetter(r) {
				letters++
				if unicode.IsUpper(r) {
					upper++
				}
			}
		}
		if letters >= minLettersForRatio && float64(upper) > maxUppercaseRatio*float64(letters) {
			return &Rejection{Reason: ReasonTone, Field: f.name, Detail: "excessive uppercase"}
		}
	}
	return nil
}

func checkSensitive(d *extract.EmailDraft) *Rejection {
	for _, f := range fieldsOf(d) {
		if govIDPattern.MatchString(f.value) {
			return &Rejection{Reason: ReasonSensitive, Field: f.name, Detail: "resembles a government id number"}
		}
		if cardPattern.MatchString(f.value) {
			return &Rejection{Reason: ReasonSensitive, Field: f.name, Detail: "resembles a payment card number"}
		}
		if len(emailAddrPattern.FindAllString(f.value, -1)) > 1 {
			return &Rejection{Reason: ReasonSensitive, Field: f.name, Detail: "multiple embedded contact addresses"}
		}
	}
	return nil
}

func checkConsistency(d *extract.EmailDraft, rec control.Record) *Rejection {
	if n := utf8.RuneCountInString(d.Body); rec.Tier == control.TierHigh && n < HighTierBodyMinLen {
		return &Rejection{
			Reason: ReasonConsistency,
			Field:  "body",
			Detail: fmt.Sprintf("body length %d below high-confidence minimum %d", n, HighTierBodyMinLen),
		}
	}
	return nil
}

// SuppressedPlaceholders returns the whitelisted placeholder tokens that
// were permitted in the draft under low confidence tier. Callers surface
// these as suppressed validation warnings in the outcome metadata.
func SuppressedPlaceholders(d *extract.EmailDraft, rec control.Record) []string {
	if rec.Tier != control.TierLow {
		return nil
	}
	var suppressed []string
	for _, f := range fieldsOf(d.TrimFields()) {
		for _, m := range bracketPlaceholder.FindAllString(f.value, -1) {
			if placeholderWhitelist[strings.ToLower(m)] {
				suppressed = append(suppressed, m)
			}
		}
	}
	return suppressed
}

// containsWord reports whether text contains term bounded by non-letters.
func containsWord(text, term string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], term)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(term)
		beforeOK := start == 0 || !isWordByte(text[start-1])
		afterOK := end == len(text) || !isWordByte(text[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordByte(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
