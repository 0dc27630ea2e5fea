package triage

import "strings"

// Status phrases emitted by Sonarr. Matching is literal and case-sensitive.
const (
	PhraseTBATitle               = "Episode has a TBA title and recently aired"
	PhraseNotUpgrade             = "Not an upgrade for existing episode file(s)"
	PhraseNotCustomFormatUpgrade = "Not a Custom Format upgrade for existing episode file(s)"
)

// Rule maps a status phrase onto a disposition.
type Rule struct {
	Name        string
	Pattern     string
	Disposition Disposition
}

// Matches reports whether text contains the rule's pattern.
func (r Rule) Matches(text string) bool {
	return r.Pattern != "" && strings.Contains(text, r.Pattern)
}

// DefaultRules returns the rule table applied when none is configured.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "tba_title", Pattern: PhraseTBATitle, Disposition: Monitor},
		{Name: "not_upgrade", Pattern: PhraseNotUpgrade, Disposition: Delete},
		{Name: "not_custom_format_upgrade", Pattern: PhraseNotCustomFormatUpgrade, Disposition: Delete},
	}
}

// match walks status texts in order (each entry's title, then its messages)
// and returns the first rule matching any text. Rules are tried top-to-bottom
// per text.
func match(texts func(func(int, string) bool), rules []Rule) (Rule, bool) {
	var (
		found Rule
		ok    bool
	)
	texts(func(_ int, text string) bool {
		for _, rule := range rules {
			if rule.Matches(text) {
				found, ok = rule, true
				return false
			}
		}
		return true
	})
	return found, ok
}
