package preprocess

import (
	"github.com/medlens/reviewsignal/internal/domain/review"
)

// Filter decides whether a parsed row belongs to the working cohort.
type Filter func(d review.Descriptor) bool

// DiseaseAllowList keeps rows whose disease is in allowed.  An empty list
// means no constraint on this dimension.
func DiseaseAllowList(allowed []string) Filter {
	return memberOf(allowed, func(d review.Descriptor) string { return d.Disease })
}

// AntibodyAllowList keeps rows whose antibody is in allowed.
func AntibodyAllowList(allowed []string) Filter {
	return memberOf(allowed, func(d review.Descriptor) string { return d.Antibody })
}

// TreatmentAllowList keeps rows whose treatment is in allowed.
func TreatmentAllowList(allowed []string) Filter {
	return memberOf(allowed, func(d review.Descriptor) string { return d.Treatment })
}

// memberOf builds an exact-match membership predicate over a derived field.
// Matching is case-sensitive: allow-lists are expected to carry values
// exactly as the descriptor parser emits them.
func memberOf(allowed []string, field func(review.Descriptor) string) Filter {
	if len(allowed) == 0 {
		return func(review.Descriptor) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, v := range allowed {
		set[v] = struct{}{}
	}
	return func(d review.Descriptor) bool {
		_, ok := set[field(d)]
		return ok
	}
}

// Compose returns the logical AND of the given filters.  The filters are
// independent predicates, so composition order never changes the result.
func Compose(filters ...Filter) Filter {
	return func(d review.Descriptor) bool {
		for _, f := range filters {
			if !f(d) {
				return false
			}
		}
		return true
	}
}

// CohortFilter builds the standard disease, antibody, treatment allow-list
// composition from configuration lists.
func CohortFilter(diseases, antibodies, treatments []string) Filter {
	return Compose(
		DiseaseAllowList(diseases),
		AntibodyAllowList(antibodies),
		TreatmentAllowList(treatments),
	)
}
