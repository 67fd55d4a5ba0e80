// Package api holds one gin handler per route. Handlers decode requests,
// call the services and render their results or errors as JSON.
package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/validation"
)

func detail(message string) gin.H {
	return gin.H{"detail": []string{message}}
}

// statusFor maps a service error kind onto an HTTP status.
func statusFor(kind error) int {
	switch {
	case errors.Is(kind, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(kind, service.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(kind, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(kind, service.ErrConflict), errors.Is(kind, service.ErrRelationAbsent):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// renderError writes err as a JSON error response. Unexpected errors are
// logged and hidden from the client.
func renderError(c *gin.Context, err error) {
	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		c.JSON(http.StatusBadRequest, fieldErrs)
		return
	}

	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		status := statusFor(svcErr.Kind)
		if status != http.StatusInternalServerError {
			c.JSON(status, detail(svcErr.Message))
			return
		}
	}

	logging.Ctx(c.Request.Context()).Error().Err(err).
		Str("method", c.Request.Method).
		Str("route", c.FullPath()).
		Msg("request failed")
	c.JSON(http.StatusInternalServerError, detail("internal server error"))
}

// bindJSON decodes the request body into req. An empty body leaves req at
// its zero value so that validation reports the missing fields.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, validation.Errors{
			validation.NonFieldErrors: {"Invalid JSON payload: " + err.Error()},
		})
		return false
	}
	return true
}

// pathID parses a uuid path parameter. Malformed ids cannot match any row,
// so they are reported as not found.
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusNotFound, detail("Not found."))
		return uuid.Nil, false
	}
	return id, true
}

func requestScheme(c *gin.Context) string {
	if c.Request.TLS != nil {
		return "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto == "https" || proto == "http" {
		return proto
	}
	return "http"
}

// absoluteURL renders path against the scheme and host of the request.
func absoluteURL(c *gin.Context, path string) string {
	return requestScheme(c) + "://" + c.Request.Host + path
}
