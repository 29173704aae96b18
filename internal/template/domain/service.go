package domain

import "context"

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Template, error)
	List(ctx context.Context, filter ListFilter) ([]Template, error)
	// Get resolves a template by slug first, then by numeric ID.
	Get(ctx context.Context, ref string) (*Template, error)
	Delete(ctx context.Context, ref string) error
}
