package errors

import "net/http"

// ErrorCode identifies a failure category.  Codes are MODULE_NNN strings and
// travel unchanged in API error bodies.
type ErrorCode string

func (c ErrorCode) String() string { return string(c) }

const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeUnauthorized       ErrorCode = "COMMON_003"
	ErrCodeForbidden          ErrorCode = "COMMON_004"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_007"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeDatabaseError      ErrorCode = "COMMON_012"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
	ErrCodeFeatureDisabled    ErrorCode = "COMMON_015"
	ErrCodeNotImplemented     ErrorCode = "COMMON_016"
)

const (
	ErrCodeRuleNotFound       ErrorCode = "PRC_001"
	ErrCodeRuleInvalid        ErrorCode = "PRC_002"
	ErrCodeRuleDuplicate      ErrorCode = "PRC_003"
	ErrCodeSelectionInvalid   ErrorCode = "PRC_004"
	ErrCodeServiceUnknown     ErrorCode = "PRC_005"
	ErrCodeSnapshotFailed     ErrorCode = "PRC_006"
	ErrCodeRuleSchemaMismatch ErrorCode = "PRC_007"
	ErrCodeEventPublishFailed ErrorCode = "PRC_008"
)

// Short aliases used at call sites.  CodeOK and CodeUnknown are never sent
// to clients.
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeUnauthorized = ErrCodeUnauthorized
	CodeNotFound     = ErrCodeNotFound
	CodeConflict     = ErrCodeConflict
	CodeOK           = ErrorCode("OK")
	CodeUnknown      = ErrorCode("UNKNOWN")
)

// ErrInvalidConfig is returned by constructors given an unusable configuration.
var ErrInvalidConfig = New(ErrCodeBadRequest, "invalid configuration")

type codeInfo struct {
	status  int
	message string
}

var registry = map[ErrorCode]codeInfo{
	ErrCodeInternal:           {http.StatusInternalServerError, "internal server error"},
	ErrCodeBadRequest:         {http.StatusBadRequest, "bad request"},
	ErrCodeUnauthorized:       {http.StatusUnauthorized, "unauthorized"},
	ErrCodeForbidden:          {http.StatusForbidden, "forbidden"},
	ErrCodeNotFound:           {http.StatusNotFound, "resource not found"},
	ErrCodeConflict:           {http.StatusConflict, "resource conflict"},
	ErrCodeTooManyRequests:    {http.StatusTooManyRequests, "too many requests"},
	ErrCodeServiceUnavailable: {http.StatusServiceUnavailable, "service unavailable"},
	ErrCodeTimeout:            {http.StatusGatewayTimeout, "request timeout"},
	ErrCodeValidation:         {http.StatusUnprocessableEntity, "validation failed"},
	ErrCodeSerialization:      {http.StatusBadRequest, "malformed payload"},
	ErrCodeDatabaseError:      {http.StatusInternalServerError, "rule store error"},
	ErrCodeCacheError:         {http.StatusInternalServerError, "cache error"},
	ErrCodeExternalService:    {http.StatusBadGateway, "upstream service error"},
	ErrCodeFeatureDisabled:    {http.StatusForbidden, "feature disabled"},
	ErrCodeNotImplemented:     {http.StatusNotImplemented, "not implemented"},

	ErrCodeRuleNotFound:       {http.StatusNotFound, "pricing rules not found"},
	ErrCodeRuleInvalid:        {http.StatusBadRequest, "invalid pricing rule"},
	ErrCodeRuleDuplicate:      {http.StatusConflict, "duplicate pricing rule"},
	ErrCodeSelectionInvalid:   {http.StatusBadRequest, "invalid selection"},
	ErrCodeServiceUnknown:     {http.StatusNotFound, "unknown service"},
	ErrCodeSnapshotFailed:     {http.StatusInternalServerError, "quote snapshot failed"},
	ErrCodeRuleSchemaMismatch: {http.StatusUnprocessableEntity, "rule document does not match schema"},
	ErrCodeEventPublishFailed: {http.StatusInternalServerError, "event publish failed"},
}

// HTTPStatusForCode maps code onto a response status; unregistered codes are
// treated as internal failures.
func HTTPStatusForCode(code ErrorCode) int {
	if info, ok := registry[code]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode is the client-safe message sent when the error's own
// message must not leak.
func DefaultMessageForCode(code ErrorCode) string {
	if info, ok := registry[code]; ok {
		return info.message
	}
	return "unknown error"
}

//Personal.AI order the ending
