package httpapi

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/fitmacro/internal/common"
	"github.com/dmitrijs2005/fitmacro/internal/timex"
)

// dateQuery reads a YYYY-MM-DD query parameter, defaulting to today.
func (s *HTTPServer) dateQuery(c *gin.Context, name string) (time.Time, error) {
	v := c.Query(name)
	if v == "" {
		return timex.Day(s.now()), nil
	}
	d, err := timex.ParseDate(v)
	if err != nil {
		return time.Time{}, common.NewValidationError(name, "must be YYYY-MM-DD")
	}
	return d, nil
}

// intQuery reads an optional integer query parameter.
func intQuery(c *gin.Context, name string, def int) (int, error) {
	v := c.Query(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, common.NewValidationError(name, "must be an integer")
	}
	return n, nil
}
