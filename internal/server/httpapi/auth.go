package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type credentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *HTTPServer) register(c *gin.Context) {
	var body credentials
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "body", err.Error())
		return
	}

	user, err := s.svc.Users.Register(c.Request.Context(), body.Username, body.Password)
	if err != nil {
		s.fail(c, err)
		return
	}

	s.logger.Info(c.Request.Context(), "Registered", "username", user.UserName)
	c.JSON(http.StatusCreated, gin.H{"id": user.ID, "username": user.UserName})
}

func (s *HTTPServer) login(c *gin.Context) {
	var body credentials
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "body", err.Error())
		return
	}

	tokens, err := s.svc.Users.Login(c.Request.Context(), body.Username, body.Password)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tokens)
}

func (s *HTTPServer) refresh(c *gin.Context) {
	var body struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "refresh_token", err.Error())
		return
	}

	tokens, err := s.svc.Users.RefreshToken(c.Request.Context(), body.RefreshToken)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tokens)
}
