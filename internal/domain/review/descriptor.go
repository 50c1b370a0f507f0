package review

import (
	"regexp"
	"strings"
)

// Medication-label field extraction.  Each field is derived by an independent
// rule over the raw label; the rules are not a mutually exclusive greedy
// parse, so a malformed label degrades to partial extraction instead of
// failing.  ParseMedication is total: it never fails for any input, including
// the empty string and labels with unmatched parentheses.

var (
	// treatmentRe captures the prefix before the first parenthesis or the
	// word "for".  "for" is matched case-insensitively and as a whole word so
	// names like "Metformin" survive intact.
	treatmentRe = regexp.MustCompile(`(?i)^(.*?)(?:\(|\bfor\b)`)

	// diseaseRe captures the text after the first "for " up to a comma or
	// the end of the label.  Case-insensitive: observed inputs carry both
	// "for" and "For".
	diseaseRe = regexp.MustCompile(`(?i)\bfor\s+(.*?)(?:,|$)`)

	// antibodyRe captures the content of the first matched parentheses.
	// An unmatched "(" simply produces no antibody.
	antibodyRe = regexp.MustCompile(`\(([^)]+)\)`)

	// treatmentTypeRe captures a trailing ", Maintenance" or ", Acute"
	// segment.  The labels are exact-case.
	treatmentTypeRe = regexp.MustCompile(`,\s*(Maintenance|Acute)\s*$`)
)

// ParseMedication splits a raw medication label into its typed fields.
//
//	"Humira (adalimumab) for Crohn's Disease, Maintenance"
//	  → Treatment "Humira", Antibody "adalimumab",
//	    Disease "Crohn's Disease", TreatmentType Maintenance
//
// A label with no "for" and no parentheses yields the whole trimmed label as
// the treatment and empty values for the other fields.  An empty label
// yields the zero Descriptor.
func ParseMedication(label string) Descriptor {
	var d Descriptor
	if strings.TrimSpace(label) == "" {
		return d
	}

	if m := treatmentRe.FindStringSubmatch(label); m != nil {
		d.Treatment = strings.TrimSpace(m[1])
	} else {
		d.Treatment = strings.TrimSpace(label)
	}

	if m := diseaseRe.FindStringSubmatch(label); m != nil {
		d.Disease = strings.TrimSpace(m[1])
	}

	if m := antibodyRe.FindStringSubmatch(label); m != nil {
		d.Antibody = strings.TrimSpace(m[1])
	}

	if m := treatmentTypeRe.FindStringSubmatch(label); m != nil {
		d.TreatmentType = TreatmentType(m[1])
	}

	return d
}
