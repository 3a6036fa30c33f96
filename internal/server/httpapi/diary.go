package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/fitmacro/internal/server/models"
	"github.com/dmitrijs2005/fitmacro/internal/server/services"
	"github.com/dmitrijs2005/fitmacro/internal/timex"
)

func (s *HTTPServer) dayDiary(c *gin.Context) {
	day, err := s.dateQuery(c, "date")
	if err != nil {
		s.fail(c, err)
		return
	}

	d, err := s.svc.Diary.Day(c.Request.Context(), currentUser(c), day)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (s *HTTPServer) logEntry(c *gin.Context) {
	var body services.NewEntry
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "body", err.Error())
		return
	}
	if body.Date == "" {
		body.Date = timex.FormatDate(s.now())
	}

	e, err := s.svc.Diary.Log(c.Request.Context(), currentUser(c), body)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

func (s *HTTPServer) updateEntry(c *gin.Context) {
	var body struct {
		Quantity *float64         `json:"quantity"`
		Unit     *string          `json:"unit"`
		Meal     *models.MealType `json:"meal"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "body", err.Error())
		return
	}

	e, err := s.svc.Diary.Update(c.Request.Context(), currentUser(c), c.Param("id"), models.EntryPatch{
		Quantity: body.Quantity,
		Unit:     body.Unit,
		Meal:     body.Meal,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (s *HTTPServer) deleteEntry(c *gin.Context) {
	if err := s.svc.Diary.Delete(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
