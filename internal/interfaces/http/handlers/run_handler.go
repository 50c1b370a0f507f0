package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medlens/reviewsignal/internal/domain/review"
	"github.com/medlens/reviewsignal/internal/infrastructure/monitoring/logging"
	"github.com/medlens/reviewsignal/pkg/errors"
	"github.com/medlens/reviewsignal/pkg/types/common"
)

// RunRequester hands a run request to the worker; the kafka producer wrapped
// by the apiserver satisfies it.
type RunRequester interface {
	RequestRun(ctx context.Context, source string) error
}

// RunHandler triggers pipeline runs and serves run records.
type RunHandler struct {
	requester RunRequester
	runs      review.RunRepository
	logger    logging.Logger
}

// NewRunHandler builds the handler.
func NewRunHandler(requester RunRequester, runs review.RunRepository, logger logging.Logger) *RunHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &RunHandler{requester: requester, runs: runs, logger: logger}
}

type createRunRequest struct {
	Source string `json:"source" binding:"required"`
}

// Create asks the worker to run the pipeline over a server-side CSV path.
// The request is asynchronous: acceptance means the request was queued, not
// that the run succeeded.
//
//	POST /api/v1/runs
func (h *RunHandler) Create(c *gin.Context) {
	var req createRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.InvalidParam("body must carry a non-empty source path"))
		return
	}
	if h.requester == nil {
		respondError(c, errors.New(errors.CodeServiceUnavailable, "run triggering is not configured"))
		return
	}

	if err := h.requester.RequestRun(c.Request.Context(), req.Source); err != nil {
		respondError(c, err)
		return
	}

	h.logger.Info("run requested", logging.String("source", req.Source))
	c.JSON(http.StatusAccepted, gin.H{"source": req.Source, "status": "accepted"})
}

// Get returns a run record by ID.
//
//	GET /api/v1/runs/:id
func (h *RunHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		respondError(c, errors.InvalidParam("run id is required"))
		return
	}

	run, err := h.runs.GetRun(c.Request.Context(), common.RunID(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}
