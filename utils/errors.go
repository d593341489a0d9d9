package utils

import (
	"errors"
	"net/http"

	"docuchat-backend/services"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the standard error envelope every handler returns.
type ErrorResponse struct {
	ErrorCode string      `json:"error_code"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}

// RespondWithError sends a standardized error response
func RespondWithError(c *gin.Context, statusCode int, errorCode, message string, details interface{}) {
	c.JSON(statusCode, ErrorResponse{
		ErrorCode: errorCode,
		Message:   message,
		Details:   details,
	})
}

// RespondWithBadRequest sends a 400 Bad Request error
func RespondWithBadRequest(c *gin.Context, message string, details interface{}) {
	RespondWithError(c, http.StatusBadRequest, "bad_request", message, details)
}

// RespondWithNotFound sends a 404 Not Found error
func RespondWithNotFound(c *gin.Context, message string) {
	RespondWithError(c, http.StatusNotFound, "not_found", message, nil)
}

// RespondWithInternalError sends a 500 Internal Server Error
func RespondWithInternalError(c *gin.Context, message string, details interface{}) {
	RespondWithError(c, http.StatusInternalServerError, "internal_error", message, details)
}

// RespondWithPipelineError maps the pipeline's error taxonomy onto
// distinct, actionable responses. Anything unrecognized falls through
// as an internal error.
func RespondWithPipelineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUnsupportedFormat):
		RespondWithError(c, http.StatusBadRequest, "unsupported_format",
			"Only PDF, DOCX, TXT and MD files are supported", gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrDecode):
		RespondWithError(c, http.StatusBadRequest, "decode_failed",
			"Could not extract text from the uploaded file", gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrEmptyDocument):
		RespondWithError(c, http.StatusBadRequest, "empty_document",
			"Document has no readable text", nil)
	case errors.Is(err, services.ErrSessionNotFound):
		RespondWithError(c, http.StatusNotFound, "session_not_found",
			"Session does not exist; create one first or pick a valid session", nil)
	case errors.Is(err, services.ErrNoDocument):
		RespondWithError(c, http.StatusBadRequest, "no_document",
			"No document uploaded for this session; upload one or switch mode", nil)
	case errors.Is(err, services.ErrEmptyQuestion):
		RespondWithBadRequest(c, "Empty question not allowed", nil)
	case errors.Is(err, services.ErrGeneration):
		RespondWithError(c, http.StatusBadGateway, "generation_failed",
			"Failed to generate a response; please retry", gin.H{"error": err.Error()})
	default:
		RespondWithInternalError(c, "Unexpected error", gin.H{"error": err.Error()})
	}
}
