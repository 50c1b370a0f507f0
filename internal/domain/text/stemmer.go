package text

import "strings"

// Stemmer reduces a lowercase token to its stem.
type Stemmer interface {
	Stem(token string) string
	StemAll(tokens []string) []string
}

// PorterStemmer implements the classic Porter suffix-stripping algorithm.
// Marker phrases and comment tokens are stemmed with it before matching so
// that inflection differences ("bleeding" vs "bleed") do not block a match.
type PorterStemmer struct{}

// Stem returns the Porter stem of token.  Tokens shorter than three runes
// are returned unchanged.
func (PorterStemmer) Stem(token string) string {
	if len(token) <= 2 {
		return token
	}
	w := []byte(strings.ToLower(token))
	w = step1a(w)
	w = step1b(w)
	w = step1c(w)
	w = step2(w)
	w = step3(w)
	w = step4(w)
	w = step5a(w)
	w = step5b(w)
	return string(w)
}

// StemAll stems every token in place-order and returns a new slice.
func (p PorterStemmer) StemAll(tokens []string) []string {
	if tokens == nil {
		return nil
	}
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = p.Stem(tok)
	}
	return out
}

func isConsonant(w []byte, i int) bool {
	switch w[i] {
	case 'a', 'e', 'i', 'o', 'u':
		return false
	case 'y':
		if i == 0 {
			return true
		}
		return !isConsonant(w, i-1)
	}
	return true
}

// measure counts the VC sequences in w.
func measure(w []byte) int {
	n, i, l := 0, 0, len(w)
	for {
		if i >= l {
			return n
		}
		if !isConsonant(w, i) {
			break
		}
		i++
	}
	i++
	for {
		for {
			if i >= l {
				return n
			}
			if isConsonant(w, i) {
				break
			}
			i++
		}
		n++
		i++
		for {
			if i >= l {
				return n
			}
			if !isConsonant(w, i) {
				break
			}
			i++
		}
		i++
	}
}

func hasVowel(w []byte) bool {
	for i := range w {
		if !isConsonant(w, i) {
			return true
		}
	}
	return false
}

// endsDoubleConsonant reports whether w ends with the same consonant twice.
func endsDoubleConsonant(w []byte) bool {
	l := len(w)
	return l >= 2 && w[l-1] == w[l-2] && isConsonant(w, l-1)
}

// endsCVC reports whether w ends consonant-vowel-consonant where the final
// consonant is not w, x, or y.
func endsCVC(w []byte) bool {
	l := len(w)
	if l < 3 {
		return false
	}
	if !isConsonant(w, l-3) || isConsonant(w, l-2) || !isConsonant(w, l-1) {
		return false
	}
	switch w[l-1] {
	case 'w', 'x', 'y':
		return false
	}
	return true
}

func hasSuffix(w []byte, s string) bool {
	return len(w) >= len(s) && string(w[len(w)-len(s):]) == s
}

func trimSuffix(w []byte, s string) []byte {
	return w[:len(w)-len(s)]
}

func step1a(w []byte) []byte {
	switch {
	case hasSuffix(w, "sses"):
		return trimSuffix(w, "es")
	case hasSuffix(w, "ies"):
		return trimSuffix(w, "es")
	case hasSuffix(w, "ss"):
		return w
	case hasSuffix(w, "s"):
		return trimSuffix(w, "s")
	}
	return w
}

func step1b(w []byte) []byte {
	if hasSuffix(w, "eed") {
		if measure(trimSuffix(w, "eed")) > 0 {
			return trimSuffix(w, "d")
		}
		return w
	}
	var stem []byte
	switch {
	case hasSuffix(w, "ed") && hasVowel(trimSuffix(w, "ed")):
		stem = trimSuffix(w, "ed")
	case hasSuffix(w, "ing") && hasVowel(trimSuffix(w, "ing")):
		stem = trimSuffix(w, "ing")
	default:
		return w
	}
	switch {
	case hasSuffix(stem, "at"), hasSuffix(stem, "bl"), hasSuffix(stem, "iz"):
		return append(stem, 'e')
	case endsDoubleConsonant(stem):
		switch stem[len(stem)-1] {
		case 'l', 's', 'z':
			return stem
		}
		return stem[:len(stem)-1]
	case measure(stem) == 1 && endsCVC(stem):
		return append(stem, 'e')
	}
	return stem
}

func step1c(w []byte) []byte {
	if hasSuffix(w, "y") && hasVowel(trimSuffix(w, "y")) {
		return append(trimSuffix(w, "y"), 'i')
	}
	return w
}

type rule struct{ from, to string }

var step2Rules = []rule{
	{"ational", "ate"}, {"tional", "tion"}, {"enci", "ence"},
	{"anci", "ance"}, {"izer", "ize"}, {"abli", "able"}, {"alli", "al"},
	{"entli", "ent"}, {"eli", "e"}, {"ousli", "ous"}, {"ization", "ize"},
	{"ation", "ate"}, {"ator", "ate"}, {"alism", "al"}, {"iveness", "ive"},
	{"fulness", "ful"}, {"ousness", "ous"}, {"aliti", "al"},
	{"iviti", "ive"}, {"biliti", "ble"},
}

var step3Rules = []rule{
	{"icate", "ic"}, {"ative", ""}, {"alize", "al"}, {"iciti", "ic"},
	{"ical", "ic"}, {"ful", ""}, {"ness", ""},
}

func applyRules(w []byte, rules []rule, minMeasure int) []byte {
	for _, r := range rules {
		if !hasSuffix(w, r.from) {
			continue
		}
		stem := trimSuffix(w, r.from)
		if measure(stem) > minMeasure {
			return append(stem, r.to...)
		}
		return w
	}
	return w
}

func step2(w []byte) []byte { return applyRules(w, step2Rules, 0) }
func step3(w []byte) []byte { return applyRules(w, step3Rules, 0) }

var step4Suffixes = []string{
	"al", "ance", "ence", "er", "ic", "able", "ible", "ant", "ement",
	"ment", "ent", "ion", "ou", "ism", "ate", "iti", "ous", "ive", "ize",
}

func step4(w []byte) []byte {
	for _, s := range step4Suffixes {
		if !hasSuffix(w, s) {
			continue
		}
		stem := trimSuffix(w, s)
		if measure(stem) <= 1 {
			return w
		}
		if s == "ion" {
			l := len(stem)
			if l == 0 || (stem[l-1] != 's' && stem[l-1] != 't') {
				return w
			}
		}
		return stem
	}
	return w
}

func step5a(w []byte) []byte {
	if !hasSuffix(w, "e") {
		return w
	}
	stem := trimSuffix(w, "e")
	m := measure(stem)
	if m > 1 || (m == 1 && !endsCVC(stem)) {
		return stem
	}
	return w
}

func step5b(w []byte) []byte {
	if measure(w) > 1 && endsDoubleConsonant(w) && w[len(w)-1] == 'l' {
		return trimSuffix(w, "l")
	}
	return w
}
