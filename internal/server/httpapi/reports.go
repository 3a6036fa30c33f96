package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/fitmacro/internal/common"
	"github.com/dmitrijs2005/fitmacro/internal/server/services"
	"github.com/dmitrijs2005/fitmacro/internal/timex"
)

// totals answers ?date= with one DailyTotal and ?from=&to= with a range.
func (s *HTTPServer) totals(c *gin.Context) {
	ctx := c.Request.Context()

	if c.Query("from") == "" && c.Query("to") == "" {
		day, err := s.dateQuery(c, "date")
		if err != nil {
			s.fail(c, err)
			return
		}
		t, err := s.svc.Aggregator.DailyTotal(ctx, currentUser(c), day)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, t)
		return
	}

	from, err := s.dateQuery(c, "from")
	if err != nil {
		s.fail(c, err)
		return
	}
	to, err := s.dateQuery(c, "to")
	if err != nil {
		s.fail(c, err)
		return
	}
	days, err := s.svc.Aggregator.RangeTotals(ctx, currentUser(c), from, to)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"from": timex.FormatDate(from), "to": timex.FormatDate(to), "days": days})
}

// currentGoal returns the comparison for the day. A user without a goal
// gets an empty state rather than an error.
func (s *HTTPServer) currentGoal(c *gin.Context) {
	day, err := s.dateQuery(c, "date")
	if err != nil {
		s.fail(c, err)
		return
	}

	cmp, err := s.svc.Goals.Compare(c.Request.Context(), currentUser(c), day)
	if errors.Is(err, common.ErrNoGoalDefined) {
		c.JSON(http.StatusOK, gin.H{"goal": nil, "date": timex.FormatDate(day)})
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cmp)
}

func (s *HTTPServer) setGoal(c *gin.Context) {
	var body services.GoalInput
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "body", err.Error())
		return
	}
	if body.StartDate == "" {
		body.StartDate = timex.FormatDate(s.now())
	}

	g, err := s.svc.Goals.SetGoal(c.Request.Context(), currentUser(c), body)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, g)
}

func (s *HTTPServer) trend(c *gin.Context) {
	day, err := s.dateQuery(c, "date")
	if err != nil {
		s.fail(c, err)
		return
	}
	days, err := intQuery(c, "days", 0)
	if err != nil {
		s.fail(c, err)
		return
	}

	p, err := s.svc.Goals.Trend(c.Request.Context(), currentUser(c), day, days, c.Query("method"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *HTTPServer) dashboard(c *gin.Context) {
	days, err := intQuery(c, "days", 0)
	if err != nil {
		s.fail(c, err)
		return
	}

	d, err := s.svc.Dashboard.Dashboard(c.Request.Context(), currentUser(c), s.now(), days)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (s *HTTPServer) logWeight(c *gin.Context) {
	var body struct {
		Date     string  `json:"date"`
		WeightKg float64 `json:"weight_kg"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "body", err.Error())
		return
	}
	if body.Date == "" {
		body.Date = timex.FormatDate(s.now())
	}

	w, err := s.svc.Weights.Log(c.Request.Context(), currentUser(c), body.Date, body.WeightKg)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, w)
}

func (s *HTTPServer) export(c *gin.Context) {
	from, err := s.dateQuery(c, "from")
	if err != nil {
		s.fail(c, err)
		return
	}
	to, err := s.dateQuery(c, "to")
	if err != nil {
		s.fail(c, err)
		return
	}

	res, err := s.svc.Export.Export(c.Request.Context(), currentUser(c), from, to)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}
