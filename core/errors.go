package core

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ResponderErrorBadInput            = "RESPONDER_BAD_INPUT"
	ResponderErrorPayloadUnparseable  = "RESPONDER_PAYLOAD_UNPARSEABLE"
	ResponderErrorUpstreamFailed      = "RESPONDER_UPSTREAM_FAILED"
	ResponderErrorMissingPrecondition = "RESPONDER_MISSING_PRECONDITION"
	ResponderErrorNotConfigured       = "RESPONDER_NOT_CONFIGURED"
	ResponderErrorSuppressed          = "RESPONDER_SUPPRESSED"
	ResponderErrorInternal            = "RESPONDER_INTERNAL_ERROR"
)

func responderErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureResponderErrorEnvelope(richErr)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "access token"), strings.Contains(msg, "not configured"):
		return newResponderError(err.Error(), goerrors.CategoryInternal, ResponderErrorNotConfigured)
	case strings.Contains(msg, "parse"), strings.Contains(msg, "unmarshal"), strings.Contains(msg, "decode"):
		return newResponderError(err.Error(), goerrors.CategoryBadInput, ResponderErrorPayloadUnparseable)
	case strings.Contains(msg, "status"), strings.Contains(msg, "upstream"):
		return newResponderError(err.Error(), goerrors.CategoryExternal, ResponderErrorUpstreamFailed)
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"):
		return newResponderError(err.Error(), goerrors.CategoryBadInput, ResponderErrorBadInput)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureResponderErrorEnvelope(mapped)
}

func newResponderError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureResponderErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func ensureResponderErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = responderHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultResponderTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultResponderTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return ResponderErrorBadInput
	case goerrors.CategoryExternal:
		return ResponderErrorUpstreamFailed
	case goerrors.CategoryOperation:
		return ResponderErrorMissingPrecondition
	case goerrors.CategoryConflict:
		return ResponderErrorSuppressed
	default:
		return ResponderErrorInternal
	}
}

func responderHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryRateLimit:
		return http.StatusTooManyRequests
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
