package repository

import (
	"github.com/SundayYogurt/logistics_service/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RoleRepository interface {
	FindByName(name string) (*domain.Role, error)
	FindByID(roleID uint) (*domain.Role, error)
	List(limit, offset int) ([]domain.Role, error)
	Create(role *domain.Role) error

	FindPermission(name string) (*domain.Permission, error)
	ListPermissions() ([]domain.Permission, error)
	CreatePermission(perm *domain.Permission) error
	Grant(roleID, permissionID uint) error

	// EnsureDefaults seeds the built-in roles and permissions. Safe to rerun.
	EnsureDefaults() error
}

type roleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) FindByName(name string) (*domain.Role, error) {
	var role domain.Role
	if err := r.db.Preload("Permissions").Where("name = ?", name).First(&role).Error; err != nil {
		return nil, notFound(err, domain.ErrRoleNotFound)
	}
	return &role, nil
}

func (r *roleRepository) FindByID(roleID uint) (*domain.Role, error) {
	var role domain.Role
	if err := r.db.Preload("Permissions").First(&role, roleID).Error; err != nil {
		return nil, notFound(err, domain.ErrRoleNotFound)
	}
	return &role, nil
}

func (r *roleRepository) List(limit, offset int) ([]domain.Role, error) {
	var roles []domain.Role
	if err := paginate(r.db.Preload("Permissions").Order("id ASC"), limit, offset).Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *roleRepository) Create(role *domain.Role) error {
	err := r.db.Omit(clause.Associations).Create(role).Error
	if IsUniqueViolation(err) {
		return domain.ErrDuplicateValue
	}
	return err
}

func (r *roleRepository) FindPermission(name string) (*domain.Permission, error) {
	var perm domain.Permission
	if err := r.db.Where("name = ?", name).First(&perm).Error; err != nil {
		return nil, notFound(err, domain.ErrPermissionNotFound)
	}
	return &perm, nil
}

func (r *roleRepository) ListPermissions() ([]domain.Permission, error) {
	var perms []domain.Permission
	if err := r.db.Order("id ASC").Find(&perms).Error; err != nil {
		return nil, err
	}
	return perms, nil
}

func (r *roleRepository) CreatePermission(perm *domain.Permission) error {
	err := r.db.Create(perm).Error
	if IsUniqueViolation(err) {
		return domain.ErrDuplicateValue
	}
	return err
}

func (r *roleRepository) Grant(roleID, permissionID uint) error {
	return r.db.Table("role_permissions").
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(map[string]any{"role_id": roleID, "permission_id": permissionID}).Error
}

func (r *roleRepository) EnsureDefaults() error {
	perms := make([]domain.Permission, 0, len(domain.DefaultPermissions))
	for _, name := range domain.DefaultPermissions {
		perm := domain.Permission{Name: name}
		if err := r.db.Where("name = ?", name).FirstOrCreate(&perm).Error; err != nil {
			return err
		}
		perms = append(perms, perm)
	}

	for _, name := range []string{domain.RoleOwner, domain.RoleAdmin, domain.RoleUser} {
		role := domain.Role{Name: name}
		if err := r.db.Omit(clause.Associations).Where("name = ?", name).FirstOrCreate(&role).Error; err != nil {
			return err
		}
		if name != domain.RoleAdmin {
			continue
		}
		for _, p := range perms {
			if err := r.Grant(role.ID, p.ID); err != nil {
				return err
			}
		}
	}
	return nil
}
