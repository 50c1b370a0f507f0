package errors

import "net/http"

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes shared across all layers.
const (
	CodeUnknown            ErrorCode = "COMMON_000"
	CodeInternal           ErrorCode = "COMMON_001"
	CodeInvalidParam       ErrorCode = "COMMON_002"
	CodeNotFound           ErrorCode = "COMMON_003"
	CodeConflict           ErrorCode = "COMMON_004"
	CodeTimeout            ErrorCode = "COMMON_005"
	CodeValidation         ErrorCode = "COMMON_006"
	CodeSerialization      ErrorCode = "COMMON_007"
	CodeServiceUnavailable ErrorCode = "COMMON_008"

	// CodeOK is the sentinel returned by GetCode for a nil error.
	CodeOK ErrorCode = "OK"
)

// Review-domain error codes.
const (
	// CodeMissingField marks a required raw field (comment, medication)
	// that is absent on an input row.  Rows with missing fields are not
	// dropped; components degrade to empty/null derived values.
	CodeMissingField ErrorCode = "REV_001"

	// CodeMalformedDescriptor marks a medication label that does not match
	// the expected "Treatment (antibody) for Disease, Type" shape.  Parsing
	// degrades to partial extraction and never fails the row.
	CodeMalformedDescriptor ErrorCode = "REV_002"

	// CodeReviewNotFound marks a lookup for a text index that does not exist.
	CodeReviewNotFound ErrorCode = "REV_003"

	// CodeEmptyVocabulary marks a fuzzy-detection request against a run whose
	// filtered dataset produced no treatment vocabulary.
	CodeEmptyVocabulary ErrorCode = "REV_004"
)

// Configuration error codes.  Configuration problems are fatal and must be
// surfaced before any row processing starts.
const (
	CodeConfiguration       ErrorCode = "CFG_001"
	CodeTopicUnbound        ErrorCode = "CFG_002" // marker topic without a disease binding
	CodeThresholdOutOfRange ErrorCode = "CFG_003"
)

// External NLP service error codes.
const (
	CodeExternalService   ErrorCode = "SVC_001"
	CodeServiceBadPayload ErrorCode = "SVC_002"
	CodeServingUnhealthy  ErrorCode = "SVC_003"
)

// Infrastructure error codes.
const (
	CodeDatabaseError     ErrorCode = "INFRA_001"
	CodeCacheError        ErrorCode = "INFRA_002"
	CodeMessageQueueError ErrorCode = "INFRA_003"
	CodeMigrationError    ErrorCode = "INFRA_004"
	CodeDatasetError      ErrorCode = "INFRA_005" // CSV source unreadable or malformed
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes for the REST layer.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	CodeUnknown:            http.StatusInternalServerError,
	CodeInternal:           http.StatusInternalServerError,
	CodeInvalidParam:       http.StatusBadRequest,
	CodeNotFound:           http.StatusNotFound,
	CodeConflict:           http.StatusConflict,
	CodeTimeout:            http.StatusGatewayTimeout,
	CodeValidation:         http.StatusUnprocessableEntity,
	CodeSerialization:      http.StatusInternalServerError,
	CodeServiceUnavailable: http.StatusServiceUnavailable,

	CodeMissingField:        http.StatusUnprocessableEntity,
	CodeMalformedDescriptor: http.StatusUnprocessableEntity,
	CodeReviewNotFound:      http.StatusNotFound,
	CodeEmptyVocabulary:     http.StatusUnprocessableEntity,

	CodeConfiguration:       http.StatusInternalServerError,
	CodeTopicUnbound:        http.StatusInternalServerError,
	CodeThresholdOutOfRange: http.StatusInternalServerError,

	CodeExternalService:   http.StatusBadGateway,
	CodeServiceBadPayload: http.StatusBadGateway,
	CodeServingUnhealthy:  http.StatusServiceUnavailable,

	CodeDatabaseError:     http.StatusInternalServerError,
	CodeCacheError:        http.StatusInternalServerError,
	CodeMessageQueueError: http.StatusInternalServerError,
	CodeMigrationError:    http.StatusInternalServerError,
	CodeDatasetError:      http.StatusInternalServerError,
}

// HTTPStatus returns the HTTP status for a code, defaulting to 500 for codes
// with no explicit mapping.
func (c ErrorCode) HTTPStatus() int {
	if s, ok := ErrorCodeHTTPStatus[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}
