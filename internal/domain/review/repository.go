package review

import (
	"context"

	"github.com/medlens/reviewsignal/pkg/types/common"
)

// MarkerEventFilter narrows ListMarkerEvents.  Zero values mean "no
// constraint".
type MarkerEventFilter struct {
	Topic   string
	Disease string
	RunID   common.RunID
}

// ChangeEventFilter narrows ListChangeEvents.  MinScore/MaxScore are
// inclusive; nil means unbounded.
type ChangeEventFilter struct {
	MinScore *int
	MaxScore *int
	RunID    common.RunID
}

// Repository persists annotated reviews.  Implementations live under
// internal/infrastructure; the domain depends only on this contract.
type Repository interface {
	// SaveAnnotated upserts a batch of annotated reviews keyed by
	// (text_index, run_id).
	SaveAnnotated(ctx context.Context, reviews []Annotated) error

	// FindByTextIndex returns the most recently annotated version of a
	// review, or a CodeReviewNotFound error.
	FindByTextIndex(ctx context.Context, idx common.TextIndex) (*Annotated, error)
}

// MarkerEventRepository persists marker detections.
type MarkerEventRepository interface {
	InsertMarkerEvents(ctx context.Context, events []MarkerEvent) error
	ListMarkerEvents(ctx context.Context, f MarkerEventFilter, p common.Pagination) ([]MarkerEvent, error)
}

// ChangeEventRepository persists treatment-change detections.
type ChangeEventRepository interface {
	InsertChangeEvents(ctx context.Context, events []TreatmentChangeEvent) error
	ListChangeEvents(ctx context.Context, f ChangeEventFilter, p common.Pagination) ([]TreatmentChangeEvent, error)
}

// RunRepository records pipeline executions.
type RunRepository interface {
	CreateRun(ctx context.Context, run *common.Run) error
	FinishRun(ctx context.Context, id common.RunID, status common.RunStatus, rowCount int, errMsg string) error
	GetRun(ctx context.Context, id common.RunID) (*common.Run, error)
}
