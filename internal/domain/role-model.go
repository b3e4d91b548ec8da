package domain

const (
	RoleOwner = "owner"
	RoleAdmin = "admin"
	RoleUser  = "user"
)

const (
	PermissionCreateTask       = "create_task"
	PermissionReviewKYC        = "review_kyc"
	PermissionManageWallets    = "manage_wallets"
	PermissionManageBusinesses = "manage_businesses"
)

// DefaultPermissions are seeded on startup and granted to the admin role.
var DefaultPermissions = []string{
	PermissionCreateTask,
	PermissionReviewKYC,
	PermissionManageWallets,
	PermissionManageBusinesses,
}

type Role struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	Permissions []Permission `gorm:"many2many:role_permissions" json:"permissions,omitempty"`
}

type Permission struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
}

func (r *Role) PermissionNames() []string {
	names := make([]string, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		names = append(names, p.Name)
	}
	return names
}
