package core

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ErrorBadInput        = "LOCALPAY_BAD_INPUT"
	ErrorConflict        = "LOCALPAY_CONFLICT"
	ErrorProtocol        = "LOCALPAY_PROTOCOL"
	ErrorExternalFailure = "LOCALPAY_EXTERNAL_FAILURE"
	ErrorInternal        = "LOCALPAY_INTERNAL_ERROR"
)

// Public error types, mirroring what the hosted API reports.
const (
	APIErrorTypeConnection     = "api_connection_error"
	APIErrorTypeInvalidRequest = "invalid_request_error"
	APIErrorTypeCard           = "card_error"
	APIErrorTypeAPI            = "api_error"
)

// NewUsageError reports a caller programming mistake (bad mount target, double
// create, ...). These are returned directly, never through Result.
func NewUsageError(message string, category goerrors.Category) *goerrors.Error {
	return newLocalpayError(message, category, TextCodeFor(category))
}

func newProtocolError(message string, metadata map[string]any) *goerrors.Error {
	err := newLocalpayError(message, goerrors.CategoryBadInput, ErrorProtocol)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func newLocalpayError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func localpayErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureErrorEnvelope(richErr)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "client secret"), strings.Contains(msg, "has status"):
		return newLocalpayError(err.Error(), goerrors.CategoryBadInput, ErrorProtocol)
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"), strings.Contains(msg, "must"):
		return newLocalpayError(err.Error(), goerrors.CategoryBadInput, ErrorBadInput)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureErrorEnvelope(mapped)
}

func ensureErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = httpStatusFor(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = TextCodeFor(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func TextCodeFor(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return ErrorBadInput
	case goerrors.CategoryConflict:
		return ErrorConflict
	case goerrors.CategoryExternal:
		return ErrorExternalFailure
	default:
		return ErrorInternal
	}
}

func httpStatusFor(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ToAPIError flattens any error into the public error object. Backend errors
// carried in metadata are returned untouched.
func ToAPIError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if goerrors.As(err, &apiErr) && apiErr != nil {
		return apiErr
	}

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		rich = localpayErrorMapper(err)
	}
	if carried, ok := rich.Metadata["api_error"].(*APIError); ok && carried != nil {
		return carried
	}

	message := strings.TrimSpace(rich.Message)
	if message == "" {
		message = err.Error()
	}
	if rich.TextCode == ErrorProtocol {
		return &APIError{Message: message}
	}
	out := &APIError{Message: message, Type: apiErrorType(rich)}
	if rich.TextCode != "" {
		out.Code = strings.ToLower(rich.TextCode)
	}
	return out
}

func apiErrorType(err *goerrors.Error) string {
	if err == nil {
		return APIErrorTypeAPI
	}
	switch {
	case err.Category == goerrors.CategoryExternal:
		return APIErrorTypeConnection
	case err.Category == goerrors.CategoryBadInput, err.Category == goerrors.CategoryValidation:
		return APIErrorTypeInvalidRequest
	default:
		return APIErrorTypeAPI
	}
}
