package domain

import "context"

type Service interface {
	// Generate runs the quota gate, calls the copy provider and persists
	// the result. Nothing is written when generation fails.
	Generate(ctx context.Context, userID string, req GenerateRequest) (*GeneratedAd, error)
	List(ctx context.Context, userID string) ([]GeneratedAd, error)
	Get(ctx context.Context, userID, id string) (*GeneratedAd, error)
	Delete(ctx context.Context, userID, id string) error
}
