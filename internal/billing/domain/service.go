package domain

import "context"

type Service interface {
	// HandleWebhook verifies, classifies and resolves one provider
	// delivery. It returns ErrVerificationFailed for signature problems
	// and a store error only when persistence itself failed; every other
	// path acknowledges the event.
	HandleWebhook(ctx context.Context, payload []byte, signatureHeader string) (*WebhookResult, error)
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	ListEvents(ctx context.Context, limit int) ([]BillingEvent, error)
}
