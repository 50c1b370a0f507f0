// Package common holds primitive shared types used across all layers of the
// review-signal platform.  It must not import any other platform package.
package common

import (
	"time"

	"github.com/google/uuid"
)

// RunID identifies a single pipeline execution.  All derived tables carry the
// RunID of the execution that produced them so that re-runs never overwrite
// each other.
type RunID string

// NewRunID returns a fresh UUIDv4-backed RunID.
func NewRunID() RunID {
	return RunID(uuid.NewString())
}

func (r RunID) String() string { return string(r) }

// TextIndex is the stable unique identifier of a review row.  It is assigned
// by the upstream collection system and never changes across pipeline stages.
type TextIndex string

func (t TextIndex) String() string { return string(t) }

// Rating is the 1-10 patient satisfaction score attached to a review.
type Rating int

// IsValid reports whether the rating is within the 1-10 scale.
func (r Rating) IsValid() bool { return r >= 1 && r <= 10 }

// RunStatus is the lifecycle state of a pipeline run.
type RunStatus string

const (
	RunStatusPending  RunStatus = "pending"
	RunStatusRunning  RunStatus = "running"
	RunStatusFinished RunStatus = "finished"
	RunStatusFailed   RunStatus = "failed"
)

// Run records one pipeline execution for auditing.
type Run struct {
	ID         RunID      `json:"id"`
	Source     string     `json:"source"`
	RowCount   int        `json:"row_count"`
	Status     RunStatus  `json:"status"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// Pagination carries limit/offset parameters for list queries.
type Pagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// Normalize clamps the pagination to sane bounds: limit in [1, maxLimit]
// (defaulting to defaultLimit when unset) and a non-negative offset.
func (p Pagination) Normalize(defaultLimit, maxLimit int) Pagination {
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// ErrorDetail provides structured error information for API responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}
