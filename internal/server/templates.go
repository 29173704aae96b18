package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	templatedomain "github.com/copyadhq/copyad/internal/template/domain"
)

func (s *Server) ListTemplates(c *gin.Context) {
	templates, err := s.templSvc.List(c.Request.Context(), templatedomain.ListFilter{
		Platform: c.Query("platform"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"templates": templates})
}

func (s *Server) GetTemplate(c *gin.Context) {
	tmpl, err := s.templSvc.Get(c.Request.Context(), c.Param("ref"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, tmpl)
}

func (s *Server) CreateTemplate(c *gin.Context) {
	var req templatedomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	tmpl, err := s.templSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, tmpl)
}

func (s *Server) DeleteTemplate(c *gin.Context) {
	if err := s.templSvc.Delete(c.Request.Context(), c.Param("ref")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
