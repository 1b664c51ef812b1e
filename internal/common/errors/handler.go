// internal/common/errors/handler.go
package errors

import (
	stderrors "errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler turns errors returned by HTTP handlers into JSON responses with a
// status derived from the error code. It is installed as fiber's ErrorHandler.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle writes err to c. Routing errors raised by fiber keep their status.
func (h *ErrorHandler) Handle(c *fiber.Ctx, err error) error {
	stdErr, status := h.normalizeError(err)
	h.logError(c, stdErr, status)
	return c.Status(status).JSON(stdErr)
}

// normalizeError ensures we always have a StandardError and its HTTP status.
func (h *ErrorHandler) normalizeError(err error) (*StandardError, int) {
	var fiberErr *fiber.Error
	if stderrors.As(err, &fiberErr) {
		var stdErr *StandardError
		if !stderrors.As(err, &stdErr) {
			stdErr = newError(ErrCodeInvalidPayload, fiberErr.Message, "", false, nil)
			if fiberErr.Code >= http.StatusInternalServerError {
				stdErr.Code = ErrCodeInternal
			}
		}
		return stdErr, fiberErr.Code
	}

	stdErr := AsStandardError(err)
	return stdErr, HTTPStatus(stdErr.Code)
}

func (h *ErrorHandler) logError(c *fiber.Ctx, stdErr *StandardError, status int) {
	fields := map[string]interface{}{
		"method":        c.Method(),
		"path":          c.Path(),
		"status":        status,
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"errorCategory": GetErrorCategory(stdErr.Code),
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", fields)
		return
	}
	h.logger.Warn("Request rejected", fields)
}

// HTTPStatus maps an error code onto the status returned to the caller.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeInvalidPayload:
		return http.StatusBadRequest
	case ErrCodeSignatureInvalid:
		return http.StatusUnauthorized
	case ErrCodeIntentNotFound:
		return http.StatusNotFound
	case ErrCodeIntentTableInvalid:
		return http.StatusUnprocessableEntity
	case ErrCodeStoreLookupFailed, ErrCodeMessageSendFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
