package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"journal-backend/internal/domain"
)

func writeError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// fail maps a service error to a status code. Unexpected errors are hidden
// from the caller and recorded on the context for the request logger.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrStopEqualsEntry):
		writeError(c, http.StatusBadRequest, "Stop loss cannot be the same as entry price")
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(c, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrConflict):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(c, http.StatusUnauthorized, err.Error())
	default:
		_ = c.Error(err)
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}
