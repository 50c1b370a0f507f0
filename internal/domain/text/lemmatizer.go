package text

import "strings"

// Lemmatizer maps an inflected lowercase token to its dictionary form.
// Implementations must be idempotent: Lemma(Lemma(w)) == Lemma(w).
type Lemmatizer interface {
	Lemma(token string) string
}

// IdentityLemmatizer returns tokens unchanged.  It is the right choice when
// the caller wants surface forms preserved, for example when the downstream
// stage applies its own stemming.
type IdentityLemmatizer struct{}

func (IdentityLemmatizer) Lemma(token string) string { return token }

// EnglishLemmatizer reduces regular English noun plurals with a small set of
// suffix rules plus a table of frequent irregulars.  It is deliberately
// conservative: words that do not clearly carry a plural suffix pass through
// untouched.
type EnglishLemmatizer struct{}

var irregularNouns = map[string]string{
	"men":      "man",
	"women":    "woman",
	"children": "child",
	"feet":     "foot",
	"teeth":    "tooth",
	"mice":     "mouse",
	"geese":    "goose",
	"people":   "person",
	"lives":    "life",
	"wives":    "wife",
	"knives":   "knife",
	"leaves":   "leaf",
}

// cheSingulars lists words whose singular already ends in "che" or "she";
// the generic "ches"/"shes" rule would strip their final "e" ("headaches"
// must not become "headach" the way "matches" becomes "match").
var cheSingulars = map[string]string{
	"aches":        "ache",
	"headaches":    "headache",
	"backaches":    "backache",
	"stomachaches": "stomachache",
	"toothaches":   "toothache",
	"earaches":     "earache",
	"mustaches":    "mustache",
	"caches":       "cache",
	"niches":       "niche",
}

func (EnglishLemmatizer) Lemma(token string) string {
	if lemma, ok := irregularNouns[token]; ok {
		return lemma
	}
	if lemma, ok := cheSingulars[token]; ok {
		return lemma
	}
	n := len(token)
	switch {
	case strings.HasSuffix(token, "sses"):
		return token[:n-2]
	case strings.HasSuffix(token, "ies"):
		if n > 4 {
			return token[:n-3] + "y"
		}
		return token[:n-1]
	case strings.HasSuffix(token, "xes"),
		strings.HasSuffix(token, "zes"),
		strings.HasSuffix(token, "ches"),
		strings.HasSuffix(token, "shes"),
		strings.HasSuffix(token, "oes"):
		return token[:n-2]
	case strings.HasSuffix(token, "ss"),
		strings.HasSuffix(token, "us"),
		strings.HasSuffix(token, "is"):
		return token
	case strings.HasSuffix(token, "s") && n > 3:
		return token[:n-1]
	}
	return token
}
