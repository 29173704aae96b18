package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	billingdomain "github.com/copyadhq/copyad/internal/billing/domain"
	"github.com/copyadhq/copyad/internal/plan"
)

type checkoutRequest struct {
	Plan     string `json:"plan"`
	Interval string `json:"interval"`
}

func (s *Server) CreateCheckout(c *gin.Context) {
	identity := currentIdentity(c)
	if identity == nil {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	session, err := s.billingSvc.CreateCheckoutSession(c.Request.Context(), billingdomain.CheckoutRequest{
		UserID:   identity.UserID,
		Email:    identity.Email,
		Plan:     plan.Plan(req.Plan),
		Interval: plan.Interval(req.Interval),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// HandleStripeWebhook acknowledges every verified delivery with 200,
// including ones resolved as no-ops. Only a failed signature check maps
// to 400 and only a store failure maps to 5xx, so the provider retries
// exactly the deliveries that might still apply.
func (s *Server) HandleStripeWebhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	result, err := s.billingSvc.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"received": true,
		"outcome":  result.Outcome,
	})
}

func (s *Server) ListBillingEvents(c *gin.Context) {
	limit := parseIntQuery(c, "limit", 50)
	events, err := s.billingSvc.ListEvents(c.Request.Context(), limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}
