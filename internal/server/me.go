package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	profiledomain "github.com/copyadhq/copyad/internal/profile/domain"
)

func (s *Server) Me(c *gin.Context) {
	identity := currentIdentity(c)
	if identity == nil {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	ctx := c.Request.Context()

	email := identity.Email
	role := profiledomain.RoleUser
	if profile, err := s.profileSvc.Get(ctx, identity.UserID); err == nil {
		if profile.Email != "" {
			email = profile.Email
		}
		role = profile.Role
	} else if err != profiledomain.ErrNotFound {
		AbortWithError(c, err)
		return
	}

	decision, err := s.gate.Inspect(ctx, identity.UserID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id": identity.UserID,
		"email":   email,
		"role":    role,
		"plan":    decision.Plan,
		"usage":   decision,
	})
}
