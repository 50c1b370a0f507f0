package text

import "strings"

// ExclusionSet holds the per-row terms that must never surface as extracted
// content: the row's own treatment, disease, and antibody names plus a fixed
// stop-term list.  Both individual normalized tokens and joined multi-word
// forms are members, so "crohn", "disease", and "crohn disease" all match a
// row whose disease is "Crohn's Disease".
type ExclusionSet struct {
	terms map[string]struct{}
}

// NewExclusionSet normalizes every source string with n and collects the
// resulting tokens and joined forms, together with the fixed terms.  Fixed
// terms are added lowercased as given and in normalized form.  Empty sources
// contribute nothing.
func NewExclusionSet(n *Normalizer, sources []string, fixed []string) ExclusionSet {
	terms := make(map[string]struct{})
	add := func(s string) {
		if s != "" {
			terms[s] = struct{}{}
		}
	}
	for _, src := range sources {
		tokens := n.Normalize(src)
		for _, tok := range tokens {
			add(tok)
		}
		if len(tokens) > 1 {
			add(strings.Join(tokens, " "))
		}
	}
	for _, f := range fixed {
		add(strings.ToLower(strings.TrimSpace(f)))
		for _, tok := range n.Normalize(f) {
			add(tok)
		}
	}
	return ExclusionSet{terms: terms}
}

// Contains reports whether term is excluded.
func (e ExclusionSet) Contains(term string) bool {
	_, ok := e.terms[term]
	return ok
}

// Len returns the number of distinct excluded terms.
func (e ExclusionSet) Len() int { return len(e.terms) }

// FilterTokens returns the tokens that are not excluded, preserving order.
// An empty exclusion set returns a copy of the input unchanged.
func (e ExclusionSet) FilterTokens(tokens []string) []string {
	if tokens == nil {
		return nil
	}
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if !e.Contains(tok) {
			out = append(out, tok)
		}
	}
	return out
}

// FilterPhrases drops any phrase containing at least one excluded word.  A
// phrase survives only when every one of its space-separated words is clean.
func (e ExclusionSet) FilterPhrases(phrases []string) []string {
	if phrases == nil {
		return nil
	}
	out := make([]string, 0, len(phrases))
	for _, phrase := range phrases {
		if e.phraseClean(phrase) {
			out = append(out, phrase)
		}
	}
	return out
}

func (e ExclusionSet) phraseClean(phrase string) bool {
	if e.Contains(phrase) {
		return false
	}
	for _, word := range strings.Fields(phrase) {
		if e.Contains(word) {
			return false
		}
	}
	return true
}
