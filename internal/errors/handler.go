package errors

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"ledgercli/internal/infrastructure"
)

// ErrorHandler provides centralized error handling for the HTTP surface.
// It maps engine errors (AppError, MappingError) onto API responses so
// handlers never build status codes by hand.
type ErrorHandler struct {
	logger *slog.Logger
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *slog.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger.With(slog.String("component", "error_handler")),
	}
}

// HandleError converts any error to an API error response and renders it
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	reqID := infrastructure.GetTraceID(r.Context())

	h.logger.ErrorContext(r.Context(), "request failed",
		slog.String("error", err.Error()),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	render.Render(w, r, NewErrorResponse(h.toAPIError(err)))
}

// toAPIError maps an engine error onto the API error taxonomy
func (h *ErrorHandler) toAPIError(err error) *APIError {
	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(err, context.Canceled) {
		return New(http.StatusGatewayTimeout, "TIMEOUT", "The request took too long to process")
	}

	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr
	}

	var mappingErr *MappingError
	if stderrors.As(err, &mappingErr) {
		return MappingInvalidError(mappingErr)
	}

	var appErr *AppError
	if stderrors.As(err, &appErr) {
		switch appErr.Type {
		case ErrTypeValidation:
			return NewWithDetails(http.StatusBadRequest, "VALIDATION_FAILED", appErr.Message, nil)
		case ErrTypeParsing:
			return NewWithDetails(http.StatusUnprocessableEntity, "PARSING_FAILED", appErr.Message, nil)
		case ErrTypeExport:
			return NewWithDetails(http.StatusUnprocessableEntity, "EXPORT_FAILED", appErr.Message, nil)
		case ErrTypeNotFound:
			return NewWithDetails(http.StatusNotFound, "NOT_FOUND", appErr.Message, nil)
		case ErrTypeStorage:
			return NewWithDetails(http.StatusInternalServerError, "FILESYSTEM_ERROR", appErr.Message, nil)
		}
	}

	return ErrInternalServer
}
