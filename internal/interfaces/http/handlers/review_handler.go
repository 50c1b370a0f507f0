package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medlens/reviewsignal/internal/domain/review"
	"github.com/medlens/reviewsignal/internal/infrastructure/monitoring/logging"
	"github.com/medlens/reviewsignal/pkg/errors"
	"github.com/medlens/reviewsignal/pkg/types/common"
)

// ReviewHandler serves annotated reviews.
type ReviewHandler struct {
	reviews review.Repository
	logger  logging.Logger
}

// NewReviewHandler builds the handler.
func NewReviewHandler(reviews review.Repository, logger logging.Logger) *ReviewHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &ReviewHandler{reviews: reviews, logger: logger}
}

// Get returns the most recent annotation of a review by text index.
//
//	GET /api/v1/reviews/:text_index
func (h *ReviewHandler) Get(c *gin.Context) {
	idx := c.Param("text_index")
	if idx == "" {
		respondError(c, errors.InvalidParam("text_index is required"))
		return
	}

	annotated, err := h.reviews.FindByTextIndex(c.Request.Context(), common.TextIndex(idx))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, annotated)
}
