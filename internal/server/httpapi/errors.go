package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/fitmacro/internal/common"
)

// fail writes err as a JSON error with the status its kind maps to.
// Unexpected errors are logged and hidden behind a generic message.
func (s *HTTPServer) fail(c *gin.Context, err error) {
	var (
		verr *common.ValidationError
		uerr *common.UnsupportedUnitError
		ierr *common.ImportError
	)

	// Import errors may wrap a validation error of the fetched product.
	switch {
	case errors.As(err, &ierr):
		s.logger.Warn(c.Request.Context(), "import failed", "source", ierr.Source, "ref", ierr.Ref, "error", ierr.Err)
		c.JSON(http.StatusBadGateway, gin.H{"error": ierr.Error(), "retryable": true})
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "field": verr.Field})
	case errors.As(err, &uerr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": uerr.Error(), "unit": uerr.Unit})
	case errors.Is(err, common.ErrorNotFound), errors.Is(err, common.ErrNoGoalDefined):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, common.ErrorForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrRefreshTokenExpired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, common.ErrorAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		s.logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func badRequest(c *gin.Context, field, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg, "field": field})
}
