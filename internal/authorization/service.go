package authorization

import (
	"context"
	"errors"
)

var (
	ErrForbidden     = errors.New("forbidden")
	ErrInvalidActor  = errors.New("invalid actor")
	ErrInvalidObject = errors.New("invalid object")
	ErrInvalidAction = errors.New("invalid action")
)

const (
	ObjectAd       = "ad"
	ObjectTemplate = "template"
	ObjectBilling  = "billing"
	ObjectUser     = "user"
	ObjectSummary  = "summary"
)

const (
	ActionView   = "view"
	ActionCreate = "create"
	ActionDelete = "delete"
	ActionManage = "manage"
)

// Service answers "may this user do this". Roles come from the profile
// store, never from client-supplied claims.
type Service interface {
	Authorize(ctx context.Context, userID, object, action string) error
}
