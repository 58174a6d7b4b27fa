// Package access decides whether an identity may mutate a game record.
//
// The policy is author identity: only the user who created a record may
// update or delete it. The admin flag on a user does not widen this.
package access

import (
	"errors"

	"sport_bet/internal/models"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

func CanModify(user *models.User, game *models.Game) bool {
	if user == nil || game == nil {
		return false
	}
	return user.ID != 0 && user.ID == game.AuthorID
}

func Check(user *models.User, game *models.Game) error {
	if user == nil {
		return ErrUnauthenticated
	}
	if !CanModify(user, game) {
		return ErrForbidden
	}
	return nil
}
