// Package control resolves a classification result into the fully
// populated generation controls consumed by prompting and validation.
package control

import (
	"github.com/otherjamesbrown/draftgen-cli/pkg/intent"
)

// Tone is the requested register of the draft.
type Tone string

const (
	ToneFormal  Tone = "formal"
	ToneNeutral Tone = "neutral"
)

// LengthTarget is the requested draft length.
type LengthTarget string

const (
	LengthShort  LengthTarget = "short"
	LengthMedium LengthTarget = "medium"
	LengthLong   LengthTarget = "long"
)

// Tier is the coarse confidence bucket used to switch prompting strategy.
type Tier string

const (
	TierHigh Tier = "high"
	TierLow  Tier = "low"
)

// ConfidenceThreshold is the classifier probability above which the
// confidence tier resolves to high. The boundary is strict: a confidence of
// exactly ConfidenceThreshold resolves to low. The value is a product
// decision rather than a derived quantity, so it stays a named tunable.
const ConfidenceThreshold = 0.6

// Record holds the resolved generation parameters for one request. Every
// field is always populated; there is no unset state, so downstream
// components never branch on fields that may be absent. Created once per
// request and immutable afterward.
type Record struct {
	Label         string       `json:"label"`
	SenderRole    string       `json:"sender_role"`
	RecipientRole string       `json:"recipient_role"`
	Tone          Tone         `json:"tone"`
	LengthTarget  LengthTarget `json:"length_target"`
	Domain        string       `json:"domain"`
	Tier          Tier         `json:"tier"`
	// Confidence is the raw classifier probability, retained for logging.
	Confidence float64 `json:"confidence"`
}

// profile is one row of the label lookup table. New labels are supported by
// adding a row here, never by special-casing in consuming components.
type profile struct {
	sender    string
	recipient string
	tone      Tone
	length    LengthTarget
	domain    string
}

var profiles = map[string]profile{
	intent.LabelHR:      {sender: "employee", recipient: "hr representative", tone: ToneFormal, length: LengthMedium, domain: "hr"},
	intent.LabelManager: {sender: "employee", recipient: "manager", tone: ToneFormal, length: LengthMedium, domain: "corporate"},
	intent.LabelClient:  {sender: "consultant", recipient: "client", tone: ToneFormal, length: LengthMedium, domain: "business"},
	intent.LabelCollege: {sender: "student", recipient: "college administration", tone: ToneFormal, length: LengthMedium, domain: "education"},
	intent.LabelGeneral: {sender: "individual", recipient: "recipient", tone: ToneNeutral, length: LengthMedium, domain: "general"},
}

// Resolve turns a classification result into a concrete control record.
// Pure function: a lookup-table row plus the tier threshold rule. Unknown
// labels resolve exactly like the general label, so the record is fully
// populated even when classification failed upstream.
func Resolve(result intent.Result) Record {
	p, ok := profiles[result.Label]
	label := result.Label
	if !ok {
		p = profiles[intent.LabelGeneral]
		label = intent.LabelGeneral
	}

	tier := TierLow
	if result.Confidence > ConfidenceThreshold {
		tier = TierHigh
	}

	return Record{
		Label:         label,
		SenderRole:    p.sender,
		RecipientRole: p.recipient,
		Tone:          p.tone,
		LengthTarget:  p.length,
		Domain:        p.domain,
		Tier:          tier,
		Confidence:    result.Confidence,
	}
}

// KnownLabels returns the labels present in the lookup table.
func KnownLabels() []string {
	labels := make([]string, 0, len(profiles))
	for label := range profiles {
		labels = append(labels, label)
	}
	return labels
}
