package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	err := New(CodeReviewNotFound, "review not found")
	assert.Equal(t, "[REV_003] review not found", err.Error())

	withDetail := err.WithDetail("text_index=42")
	assert.Equal(t, "[REV_003] review not found: text_index=42", withDetail.Error())
	// The original is not mutated.
	assert.Empty(t, err.Detail)
}

func TestAppError_NilReceivers(t *testing.T) {
	var e *AppError
	assert.Nil(t, e.WithDetail("x"))
	assert.Nil(t, e.WithCause(stderrors.New("boom")))
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, CodeDatabaseError, "should be nil"))

	cause := stderrors.New("connection refused")
	err := Wrap(cause, CodeDatabaseError, "insert failed")
	require.NotNil(t, err)
	assert.Equal(t, CodeDatabaseError, err.Code)
	assert.True(t, stderrors.Is(err, cause))
}

func TestWrap_PreservesCodeForUnknown(t *testing.T) {
	inner := New(CodeTopicUnbound, "topic has no disease")
	outer := Wrap(inner, CodeUnknown, "loading marker config")
	assert.Equal(t, CodeTopicUnbound, outer.Code)
}

func TestWrapf(t *testing.T) {
	cause := stderrors.New("boom")
	err := Wrapf(cause, CodeCacheError, "set key %q", "vocab:run-1")
	require.NotNil(t, err)
	assert.Contains(t, err.Message, `"vocab:run-1"`)
	assert.Nil(t, Wrapf(nil, CodeCacheError, "x"))
}

func TestIsCode(t *testing.T) {
	inner := New(CodeMissingField, "comment is null")
	wrapped := fmt.Errorf("row 7: %w", inner)

	assert.True(t, IsCode(wrapped, CodeMissingField))
	assert.False(t, IsCode(wrapped, CodeDatabaseError))
	assert.False(t, IsCode(nil, CodeMissingField))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(NotFound("gone")))
	assert.True(t, IsNotFound(New(CodeReviewNotFound, "gone")))
	assert.False(t, IsNotFound(Internal("boom")))
}

func TestIsConfiguration(t *testing.T) {
	assert.True(t, IsConfiguration(Configuration("bad config")))
	assert.True(t, IsConfiguration(New(CodeTopicUnbound, "unbound")))
	assert.True(t, IsConfiguration(New(CodeThresholdOutOfRange, "150")))
	assert.False(t, IsConfiguration(New(CodeExternalService, "down")))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, CodeOK, GetCode(nil))
	assert.Equal(t, CodeUnknown, GetCode(stderrors.New("plain")))
	assert.Equal(t, CodeValidation, GetCode(New(CodeValidation, "bad")))

	wrapped := fmt.Errorf("outer: %w", New(CodeDatasetError, "bad csv"))
	assert.Equal(t, CodeDatasetError, GetCode(wrapped))
}

func TestErrorCode_HTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, CodeReviewNotFound.HTTPStatus())
	assert.Equal(t, http.StatusBadGateway, CodeExternalService.HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, ErrorCode("NOPE").HTTPStatus())
}

func TestExternalService(t *testing.T) {
	cause := stderrors.New("503 from classifier")
	err := ExternalService(cause, "classification failed")
	assert.Equal(t, CodeExternalService, err.Code)
	assert.True(t, Is(err, cause))
}
