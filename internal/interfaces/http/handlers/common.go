// Package handlers implements the apiserver's HTTP endpoints over the domain
// repositories and the run orchestrator.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/medlens/reviewsignal/pkg/errors"
	"github.com/medlens/reviewsignal/pkg/types/common"
)

// errorResponse is the uniform error body.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusFor maps platform error codes to HTTP statuses.  Unknown codes are
// internal errors; the taxonomy is closed, so an unmapped code is a bug.
func statusFor(code errors.ErrorCode) int {
	switch code {
	case errors.CodeNotFound, errors.CodeReviewNotFound:
		return http.StatusNotFound
	case errors.CodeInvalidParam, errors.CodeValidation,
		errors.CodeMissingField, errors.CodeMalformedDescriptor:
		return http.StatusBadRequest
	case errors.CodeConflict:
		return http.StatusConflict
	case errors.CodeTimeout:
		return http.StatusGatewayTimeout
	case errors.CodeExternalService, errors.CodeServingUnhealthy, errors.CodeServiceUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	c.JSON(statusFor(code), errorResponse{
		Code:    string(code),
		Message: errors.GetMessage(err),
	})
}

// parsePagination reads limit/offset query parameters.  Absent or
// unparsable values fall back to zero; the repository layer applies its own
// bounds.
func parsePagination(c *gin.Context) common.Pagination {
	var p common.Pagination
	if v, err := strconv.Atoi(c.Query("limit")); err == nil {
		p.Limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil {
		p.Offset = v
	}
	return p
}

// parseIntQuery returns a pointer for optional integer query parameters.
func parseIntQuery(c *gin.Context, name string) (*int, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, errors.Newf(errors.CodeInvalidParam, "query parameter %q must be an integer", name)
	}
	return &v, nil
}
