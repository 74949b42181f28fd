package services

import (
	"context"
	"errors"
)

var ErrForbidden = errors.New("forbidden")

type AdminChecker interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// Access decides whether an authenticated caller may read another user's data.
type Access struct {
	admins AdminChecker
}

func NewAccess(admins AdminChecker) *Access { return &Access{admins: admins} }

// Authorize allows callers to act on themselves; anyone else must be an admin.
func (a *Access) Authorize(ctx context.Context, targetUserID, actingUserID string) error {
	if actingUserID == "" {
		return ErrForbidden
	}
	if targetUserID == actingUserID {
		return nil
	}
	ok, err := a.admins.IsAdmin(ctx, actingUserID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}
