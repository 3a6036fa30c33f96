package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/fitmacro/internal/server/models"
	"github.com/dmitrijs2005/fitmacro/internal/server/services"
)

func (s *HTTPServer) searchFoods(c *gin.Context) {
	limit, err := intQuery(c, "limit", 0)
	if err != nil {
		s.fail(c, err)
		return
	}
	offset, err := intQuery(c, "offset", 0)
	if err != nil {
		s.fail(c, err)
		return
	}

	items, err := s.svc.Catalog.Search(c.Request.Context(), models.FoodSearch{Query: c.Query("q"), Limit: limit, Offset: offset})
	if err != nil {
		s.fail(c, err)
		return
	}
	if items == nil {
		items = []*models.FoodItem{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (s *HTTPServer) createFood(c *gin.Context) {
	var body services.FoodInput
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "body", err.Error())
		return
	}

	item, err := s.svc.Catalog.CreateManual(c.Request.Context(), currentUser(c), body)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (s *HTTPServer) getFood(c *gin.Context) {
	item, err := s.svc.Catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (s *HTTPServer) updateFood(c *gin.Context) {
	var body services.FoodInput
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "body", err.Error())
		return
	}

	item, err := s.svc.Catalog.Update(c.Request.Context(), currentUser(c), c.Param("id"), body)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (s *HTTPServer) searchExternal(c *gin.Context) {
	limit, err := intQuery(c, "limit", 10)
	if err != nil {
		s.fail(c, err)
		return
	}

	products, err := s.svc.Catalog.SearchExternal(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// importFood imports by {"code": ...} or, failing that, by {"query": ...}.
func (s *HTTPServer) importFood(c *gin.Context) {
	var body struct {
		Code  string `json:"code"`
		Query string `json:"query"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "body", err.Error())
		return
	}

	var (
		item    *models.FoodItem
		created bool
		err     error
	)
	switch {
	case body.Code != "":
		item, created, err = s.svc.Catalog.Import(c.Request.Context(), body.Code)
	case body.Query != "":
		item, created, err = s.svc.Catalog.ImportByQuery(c.Request.Context(), body.Query)
	default:
		badRequest(c, "code", "code or query is required")
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"item": item, "created": created})
}
