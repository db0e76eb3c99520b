// Package apperror defines the expected, caller-facing failures of the catalog.
// Anything that is not an *Error is treated as an internal failure.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"sort"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type Code string

const (
	CodeNotFound            Code = "NOT_FOUND"
	CodeNotLeafCategory     Code = "NOT_LEAF_CATEGORY"
	CodeSchemaNotConfigured Code = "SCHEMA_NOT_CONFIGURED"
	CodeValidation          Code = "VALIDATION_ERROR"
	CodeInvalidRange        Code = "INVALID_RANGE"
	CodeInvalidEnum         Code = "INVALID_ENUM"
	CodeInvalidCategory     Code = "INVALID_CATEGORY_CODE"
	CodeInvalidLimit        Code = "INVALID_LIMIT"
	CodeInvalidOffset       Code = "INVALID_OFFSET"
	CodeInvalidArgument     Code = "INVALID_ARGUMENT"
	CodeMaxDepthExceeded    Code = "MAX_DEPTH_EXCEEDED"
	CodeConflict            Code = "CONFLICT"
	CodeUnauthorized        Code = "UNAUTHORIZED"
	CodeForbidden           Code = "FORBIDDEN"
	CodeInternal            Code = "INTERNAL"
)

type Error struct {
	Code    Code
	Message string
	// Fields holds per-field messages for VALIDATION_ERROR.
	Fields map[string]string
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s (%d field errors)", e.Code, e.Message, len(e.Fields))
}

func New(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) *Error {
	return New(CodeNotFound, format, args...)
}

func NotLeafCategory(code string) *Error {
	return New(CodeNotLeafCategory, "category %s has subcategories, select a more specific category", code)
}

func SchemaNotConfigured(code string) *Error {
	return New(CodeSchemaNotConfigured, "no form schema configured for category %s", code)
}

func Validation(fields map[string]string) *Error {
	return &Error{Code: CodeValidation, Message: "validation failed", Fields: fields}
}

func InvalidArgument(format string, args ...interface{}) *Error {
	return New(CodeInvalidArgument, format, args...)
}

func Internal() *Error {
	return New(CodeInternal, "internal server error")
}

// As returns the *Error in err's chain, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func IsCode(err error, code Code) bool {
	e, ok := As(err)
	return ok && e.Code == code
}

func HTTPStatus(code Code) int {
	switch code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeConflict:
		return http.StatusConflict
	case CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

func GRPCCode(code Code) codes.Code {
	switch code {
	case CodeNotFound:
		return codes.NotFound
	case CodeNotLeafCategory, CodeSchemaNotConfigured, CodeMaxDepthExceeded:
		return codes.FailedPrecondition
	case CodeConflict:
		return codes.AlreadyExists
	case CodeUnauthorized:
		return codes.Unauthenticated
	case CodeForbidden:
		return codes.PermissionDenied
	case CodeInternal:
		return codes.Internal
	default:
		return codes.InvalidArgument
	}
}

// ToGRPC converts err to a gRPC status error. Non-domain errors become a bare
// Internal status so storage details never reach the caller.
func ToGRPC(err error) error {
	e, ok := As(err)
	if !ok {
		return status.Error(codes.Internal, "internal server error")
	}

	st := status.New(GRPCCode(e.Code), e.Message)
	if len(e.Fields) == 0 {
		return st.Err()
	}

	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	br := &errdetails.BadRequest{}
	for _, name := range names {
		br.FieldViolations = append(br.FieldViolations, &errdetails.BadRequest_FieldViolation{
			Field:       name,
			Description: e.Fields[name],
		})
	}
	withDetails, derr := st.WithDetails(br)
	if derr != nil {
		return st.Err()
	}
	return withDetails.Err()
}
