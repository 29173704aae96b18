package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	addomain "github.com/copyadhq/copyad/internal/ad/domain"
)

func (s *Server) GenerateAd(c *gin.Context) {
	identity := currentIdentity(c)
	if identity == nil {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req addomain.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	ad, err := s.adSvc.Generate(c.Request.Context(), identity.UserID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ad)
}

func (s *Server) ListAds(c *gin.Context) {
	identity := currentIdentity(c)
	if identity == nil {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	ads, err := s.adSvc.List(c.Request.Context(), identity.UserID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ads": ads})
}

func (s *Server) GetAdByID(c *gin.Context) {
	identity := currentIdentity(c)
	if identity == nil {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	ad, err := s.adSvc.Get(c.Request.Context(), identity.UserID, c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, ad)
}

func (s *Server) DeleteAd(c *gin.Context) {
	identity := currentIdentity(c)
	if identity == nil {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	if err := s.adSvc.Delete(c.Request.Context(), identity.UserID, c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
