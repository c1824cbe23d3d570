package generation

import "encoding/json"

// fallbackDraft is the static draft shape synthesized when the generation
// service is unavailable after retries. Templates are keyed by the control
// record's domain tag and deliberately generic: they name nothing the
// description did not state.
type fallbackDraft struct {
	Subject  string `json:"subject"`
	Greeting string `json:"greeting"`
	Body     string `json:"body"`
	Closing  string `json:"closing"`
}

var fallbackTemplates = map[string]fallbackDraft{
	"hr": {
		Subject:  "Request for Assistance",
		Greeting: "Dear HR Team,",
		Body:     "I am writing to request your assistance with a matter described in my earlier note. I would appreciate your guidance on the next steps at your convenience.",
		Closing:  "Kind regards,",
	},
	"corporate": {
		Subject:  "Update on Current Work",
		Greeting: "Dear Manager,",
		Body:     "I am writing to share an update regarding my current work. Please let me know if you would like to discuss any part of it in more detail.",
		Closing:  "Best regards,",
	},
	"business": {
		Subject:  "Follow-up on Our Engagement",
		Greeting: "Dear Client,",
		Body:     "I am writing to follow up on our ongoing engagement. Please let me know a convenient time to discuss the matter further.",
		Closing:  "Best regards,",
	},
	"education": {
		Subject:  "Request to the Administration Office",
		Greeting: "Dear Sir or Madam,",
		Body:     "I am writing to request your assistance with an administrative matter. I would be grateful for your guidance on how to proceed.",
		Closing:  "Yours sincerely,",
	},
	"general": {
		Subject:  "A short note",
		Greeting: "Hello,",
		Body:     "I wanted to reach out regarding the matter I described. Please let me know if you need any further details from my side.",
		Closing:  "Best wishes,",
	},
}

// FallbackContent returns the serialized fallback record for a domain tag.
// Unknown domains use the general template. The second return is false only
// when no template could be produced at all.
func FallbackContent(domain string) (string, bool) {
	tpl, ok := fallbackTemplates[domain]
	if !ok {
		tpl, ok = fallbackTemplates["general"]
		if !ok {
			return "", false
		}
	}
	data, err := json.Marshal(tpl)
	if err != nil {
		return "", false
	}
	return string(data), true
}

// FallbackDomains lists the domains with a dedicated template.
func FallbackDomains() []string {
	domains := make([]string, 0, len(fallbackTemplates))
	for d := range fallbackTemplates {
		domains = append(domains, d)
	}
	return domains
}
