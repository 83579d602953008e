package util

import (
	"net/http"

	"github.com/flixsy/backend/internal/errors"
	"github.com/flixsy/backend/internal/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RespondSuccess sends the standard success envelope, merging any
// operation-specific fields into the body.
func RespondSuccess(c *gin.Context, message string, fields gin.H) {
	body := gin.H{"status": "success"}
	if message != "" {
		body["message"] = message
	}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

// RespondCreated is RespondSuccess with a 201 status.
func RespondCreated(c *gin.Context, message string, fields gin.H) {
	body := gin.H{"status": "success"}
	if message != "" {
		body["message"] = message
	}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(http.StatusCreated, body)
}

// RespondWithAPIError sends a structured error envelope. Server-side failures
// are logged at error level, client mistakes at warn.
func RespondWithAPIError(c *gin.Context, apiErr *errors.APIError) {
	if apiErr.Status >= http.StatusInternalServerError {
		logger.Log.Error("API error",
			zap.String("code", string(apiErr.Code)),
			zap.String("message", apiErr.Message),
			zap.Int("status", apiErr.Status),
		)
	} else if apiErr.Status >= http.StatusBadRequest {
		logger.Log.Warn("API error",
			zap.String("code", string(apiErr.Code)),
			zap.String("message", apiErr.Message),
			zap.String("field", apiErr.Field),
		)
	}

	body := gin.H{
		"status":  "error",
		"code":    apiErr.Code,
		"message": apiErr.Message,
	}
	if apiErr.Field != "" {
		body["field"] = apiErr.Field
	}
	c.JSON(apiErr.Status, body)
}

// RespondError routes any error: APIErrors keep their status and code,
// everything else becomes an opaque 500 with the cause logged.
func RespondError(c *gin.Context, err error) {
	if apiErr, ok := errors.IsAPIError(err); ok {
		RespondWithAPIError(c, apiErr)
		return
	}
	logger.Error("unexpected error", err)
	RespondWithAPIError(c, errors.InternalError("an error occurred, please try again"))
}

// RespondUnauthorized sends a 401 Unauthorized response
func RespondUnauthorized(c *gin.Context, message ...string) {
	msg := "authentication required"
	if len(message) > 0 && message[0] != "" {
		msg = message[0]
	}
	RespondWithAPIError(c, errors.Unauthorized(msg))
}

// RespondNotFound sends a 404 Not Found response
func RespondNotFound(c *gin.Context, resource string) {
	RespondWithAPIError(c, errors.NotFound(resource))
}

// RespondBadRequest sends a 400 Bad Request response
func RespondBadRequest(c *gin.Context, message string) {
	RespondWithAPIError(c, errors.BadRequest(message))
}

// RespondForbidden sends a 403 Forbidden response
func RespondForbidden(c *gin.Context, message ...string) {
	msg := "forbidden"
	if len(message) > 0 && message[0] != "" {
		msg = message[0]
	}
	RespondWithAPIError(c, errors.Forbidden(msg))
}
