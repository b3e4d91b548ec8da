package services

import (
	"fmt"

	"github.com/SundayYogurt/logistics_service/internal/domain"
)

// Identity is the authenticated caller of a service operation.
type Identity struct {
	UserID      uint
	Role        string
	Verified    bool
	Permissions []string
}

func (i Identity) IsAdmin() bool {
	return i.Role == domain.RoleAdmin || i.Role == domain.RoleOwner
}

// Can reports whether the caller holds permission. Owners hold every permission.
func (i Identity) Can(permission string) bool {
	if i.Role == domain.RoleOwner {
		return true
	}
	for _, p := range i.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

func requireAdmin(actor Identity) error {
	if !actor.IsAdmin() {
		return domain.ErrAdminOnly
	}
	return nil
}

func requirePermission(actor Identity, permission string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if !actor.Can(permission) {
		return fmt.Errorf("%w: missing permission %s", domain.ErrPermission, permission)
	}
	return nil
}
