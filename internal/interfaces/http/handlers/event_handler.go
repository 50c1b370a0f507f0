package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medlens/reviewsignal/internal/domain/review"
	"github.com/medlens/reviewsignal/internal/infrastructure/monitoring/logging"
	"github.com/medlens/reviewsignal/pkg/errors"
	"github.com/medlens/reviewsignal/pkg/types/common"
)

// EventHandler serves the detection event listings.
type EventHandler struct {
	markerEvents review.MarkerEventRepository
	changeEvents review.ChangeEventRepository
	logger       logging.Logger
}

// NewEventHandler builds the handler.
func NewEventHandler(markerEvents review.MarkerEventRepository, changeEvents review.ChangeEventRepository, logger logging.Logger) *EventHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &EventHandler{markerEvents: markerEvents, changeEvents: changeEvents, logger: logger}
}

// ListMarkers returns marker detections, optionally filtered.
//
//	GET /api/v1/markers?topic=&disease=&run_id=&limit=&offset=
func (h *EventHandler) ListMarkers(c *gin.Context) {
	filter := review.MarkerEventFilter{
		Topic:   c.Query("topic"),
		Disease: c.Query("disease"),
		RunID:   common.RunID(c.Query("run_id")),
	}

	events, err := h.markerEvents.ListMarkerEvents(c.Request.Context(), filter, parsePagination(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events, "count": len(events)})
}

// ListChanges returns treatment-change detections, optionally filtered by an
// inclusive score window.
//
//	GET /api/v1/treatment-changes?min_score=&max_score=&run_id=&limit=&offset=
func (h *EventHandler) ListChanges(c *gin.Context) {
	minScore, err := parseIntQuery(c, "min_score")
	if err != nil {
		respondError(c, err)
		return
	}
	maxScore, err := parseIntQuery(c, "max_score")
	if err != nil {
		respondError(c, err)
		return
	}
	for _, s := range []*int{minScore, maxScore} {
		if s != nil && (*s < -2 || *s > 2) {
			respondError(c, errors.InvalidParam("score bounds must be within [-2, 2]"))
			return
		}
	}

	filter := review.ChangeEventFilter{
		MinScore: minScore,
		MaxScore: maxScore,
		RunID:    common.RunID(c.Query("run_id")),
	}

	events, err := h.changeEvents.ListChangeEvents(c.Request.Context(), filter, parsePagination(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events, "count": len(events)})
}
