// Package access содержит правила авторизации: кто может изменять товар
// и кого можно удалить.
package access

import (
	"github.com/magabrotheeeer/catalog/internal/lib/apperr"
	"github.com/magabrotheeeer/catalog/internal/models"
)

// IsAdmin сообщает, является ли пользователь администратором.
func IsAdmin(actor models.User) bool {
	return actor.IsAdmin
}

// CanMutate сообщает, может ли actor изменять или удалять ресурс,
// созданный пользователем ownerID. Владелец и администратор могут.
func CanMutate(actor models.User, ownerID string) bool {
	if actor.IsAdmin {
		return true
	}
	return actor.ID != "" && actor.ID == ownerID
}

// CheckUserDeletion проверяет, может ли actor удалить target.
// Удалять пользователей может только администратор, а администраторов
// не может удалить никто.
func CheckUserDeletion(actor, target models.User) error {
	if !actor.IsAdmin {
		return apperr.New(apperr.ErrForbidden, "Not authorized as an admin")
	}
	if target.IsAdmin {
		return apperr.New(apperr.ErrValidation, "Cannot delete admin user")
	}
	return nil
}
