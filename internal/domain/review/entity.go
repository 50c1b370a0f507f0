// Package review defines the core domain model of the platform: the patient
// review record, the typed medication descriptor derived from its raw label,
// and the event types produced by the marker and treatment-change analytics.
package review

import (
	"time"

	"github.com/medlens/reviewsignal/pkg/types/common"
)

// TreatmentType classifies the administration context that optionally
// terminates a medication label (", Maintenance" or ", Acute").
type TreatmentType string

const (
	// TreatmentTypeUnspecified marks labels without a trailing type segment.
	TreatmentTypeUnspecified TreatmentType = ""
	TreatmentTypeMaintenance TreatmentType = "Maintenance"
	TreatmentTypeAcute       TreatmentType = "Acute"
)

func (t TreatmentType) String() string {
	if t == TreatmentTypeUnspecified {
		return "Unspecified"
	}
	return string(t)
}

// IsValid reports whether t is one of the known treatment types.
func (t TreatmentType) IsValid() bool {
	switch t {
	case TreatmentTypeUnspecified, TreatmentTypeMaintenance, TreatmentTypeAcute:
		return true
	default:
		return false
	}
}

// Review is one immutable input row: a patient's free-text comment about a
// medication.  The pipeline never mutates a Review; every derived value lives
// on Annotated.  Empty strings stand in for missing raw fields: a missing
// comment or medication never drops the row, it only degrades the derived
// fields to their empty values.
type Review struct {
	// TextIndex is the stable unique identifier assigned upstream.
	TextIndex common.TextIndex `json:"text_index"`

	// Medication is the raw semi-structured label, e.g.
	// "Humira (adalimumab) for Crohn's Disease, Maintenance".
	Medication string `json:"medication"`

	// Comment is the raw free text of the patient review.
	Comment string `json:"comment"`

	// Rate is the 1-10 satisfaction score.
	Rate common.Rating `json:"rate"`
}

// Descriptor holds the typed fields parsed from a medication label.  Each
// field is extracted independently; empty string means the field could not be
// derived.  Treatment, Disease, and Antibody never overlap by construction.
type Descriptor struct {
	// Treatment is the prefix of the label before the first parenthesis or
	// the word "for".  Required for fuzzy/treatment-based analytics; rows
	// without it are excluded from those analytics only.
	Treatment string `json:"treatment"`

	// Disease is the text after the first "for " up to a comma or the end
	// of the label.
	Disease string `json:"disease"`

	// Antibody is the text inside the first matched parentheses.
	Antibody string `json:"antibody"`

	// TreatmentType is the trailing ", Maintenance"/", Acute" label, if any.
	TreatmentType TreatmentType `json:"treatment_type"`
}

// HasTreatment reports whether the descriptor carries an extractable
// treatment name.
func (d Descriptor) HasTreatment() bool { return d.Treatment != "" }

// Annotated is a review plus everything the deterministic core derived from
// it.  It is produced once per run and persisted; re-running the pipeline
// recomputes it from scratch.
type Annotated struct {
	Review
	Descriptor

	// Tokens is the normalized comment with the row's own treatment,
	// disease, antibody, and the fixed stop terms removed.  Order-preserving,
	// duplicates retained.
	Tokens []string `json:"tokens"`

	// Keywords is the post-exclusion list of extracted keyword phrases in
	// normalized joined form.
	Keywords []string `json:"keywords"`

	// RunID identifies the pipeline execution that produced this annotation.
	RunID common.RunID `json:"run_id"`
}

// MarkerEvent is one positive marker detection: marker found in the comment
// identified by TextIndex, under the given topic.  Only positive detections
// are represented; absence of an event means "not detected", never "unknown".
type MarkerEvent struct {
	ID        string           `json:"id"`
	TextIndex common.TextIndex `json:"text_index"`
	Marker    string           `json:"marker"`
	Topic     string           `json:"topic"`
	Disease   string           `json:"disease"`
	RunID     common.RunID     `json:"run_id"`
	CreatedAt time.Time        `json:"created_at"`
}

// TreatmentChangeEvent is one element of a row's treatment delta: a treatment
// the patient mentions but is not currently recorded as taking, with the
// ordinal change-direction score derived from the row's rating.  Events exist
// only for rows with a non-empty delta, so Score is always present.
type TreatmentChangeEvent struct {
	ID                string           `json:"id"`
	TextIndex         common.TextIndex `json:"text_index"`
	PreviousTreatment string           `json:"previous_treatment"`
	Score             int              `json:"score"`
	RunID             common.RunID     `json:"run_id"`
	CreatedAt         time.Time        `json:"created_at"`
}
