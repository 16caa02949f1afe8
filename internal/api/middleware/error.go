package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/martijn/clientbook/internal/api/dto"
	"github.com/martijn/clientbook/internal/core/repository"
	"github.com/martijn/clientbook/internal/core/service"
	"github.com/martijn/clientbook/internal/core/validator"
)

const (
	MessageNotFound       = "Not Found"
	MessageClientNotFound = "Client Not Found"
	MessageServerError    = "Server Error"
)

// ErrorHandlerMiddleware handles panics and errors attached by handlers with
// c.Error. Server faults are logged and answered with an opaque message.
func ErrorHandlerMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic while handling request",
					slog.String("method", c.Request.Method),
					slog.String("path", c.Request.URL.Path),
					slog.Any("panic", r),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{Message: MessageServerError})
			}
		}()

		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status, body := errorResponse(err)
		if status == http.StatusInternalServerError {
			logger.Error("request failed",
				slog.String("method", c.Request.Method),
				slog.String("path", c.Request.URL.Path),
				slog.Any("error", err),
			)
		}
		c.JSON(status, body)
	}
}

func errorResponse(err error) (int, any) {
	var validationErr *validator.ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusUnprocessableEntity, dto.ValidationErrorResponse{Errors: validationErr.Errors}
	}

	if errors.Is(err, repository.ErrNotFound) {
		return http.StatusNotFound, dto.ErrorResponse{Message: MessageClientNotFound}
	}

	var serviceErr *service.ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr.Code, dto.ErrorResponse{Message: serviceErr.Message}
	}

	return http.StatusInternalServerError, dto.ErrorResponse{Message: MessageServerError}
}

// NotFoundHandler answers unknown routes
func NotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, dto.ErrorResponse{Message: MessageNotFound})
}

