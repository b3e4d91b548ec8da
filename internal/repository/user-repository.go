package repository

import (
	"github.com/SundayYogurt/logistics_service/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	// FindOrCreateByPhone returns the user for phone, creating an unverified
	// one when none exists. created reports which happened.
	FindOrCreateByPhone(phone string) (user *domain.User, created bool, err error)
	FindByID(userID uint) (*domain.User, error)
	FindByIDForUpdate(userID uint) (*domain.User, error)
	FindByPhone(phone string) (*domain.User, error)
	List(limit, offset int) ([]domain.User, error)
	ListByIDs(ids []uint) ([]domain.User, error)
	Save(user *domain.User) error
	// IsTaken reports whether another user already holds value in column.
	IsTaken(column, value string, excludeID uint) (bool, error)
	SetRole(userID uint, roleID *uint) error
}

var uniqueUserColumns = map[string]bool{
	"national_id":  true,
	"shaba_number": true,
	"phone_number": true,
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindOrCreateByPhone(phone string) (*domain.User, bool, error) {
	user := &domain.User{
		PhoneNumber:        phone,
		VerificationStatus: domain.VerificationUnverified,
	}

	res := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "phone_number"}},
		DoNothing: true,
	}).Create(user)
	if res.Error != nil && !IsUniqueViolation(res.Error) {
		return nil, false, res.Error
	}
	if res.Error == nil && res.RowsAffected == 1 {
		return user, true, nil
	}

	existing, err := r.FindByPhone(phone)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *userRepository) FindByID(userID uint) (*domain.User, error) {
	var user domain.User
	if err := r.db.First(&user, userID).Error; err != nil {
		return nil, notFound(err, domain.ErrUserNotFound)
	}
	return &user, nil
}

func (r *userRepository) FindByIDForUpdate(userID uint) (*domain.User, error) {
	var user domain.User
	if err := forUpdate(r.db).First(&user, userID).Error; err != nil {
		return nil, notFound(err, domain.ErrUserNotFound)
	}
	return &user, nil
}

func (r *userRepository) FindByPhone(phone string) (*domain.User, error) {
	var user domain.User
	if err := r.db.Where("phone_number = ?", phone).First(&user).Error; err != nil {
		return nil, notFound(err, domain.ErrUserNotFound)
	}
	return &user, nil
}

func (r *userRepository) List(limit, offset int) ([]domain.User, error) {
	var users []domain.User
	if err := paginate(r.db.Order("id ASC"), limit, offset).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) ListByIDs(ids []uint) ([]domain.User, error) {
	var users []domain.User
	if len(ids) == 0 {
		return users, nil
	}
	if err := r.db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) Save(user *domain.User) error {
	err := r.db.Save(user).Error
	if IsUniqueViolation(err) {
		return domain.ErrDuplicateValue
	}
	return err
}

func (r *userRepository) IsTaken(column, value string, excludeID uint) (bool, error) {
	if !uniqueUserColumns[column] {
		return false, domain.Validationf("unsupported unique column %q", column)
	}
	var count int64
	err := r.db.Model(&domain.User{}).
		Where(column+" = ? AND id <> ?", value, excludeID).
		Count(&count).Error
	return count > 0, err
}

func (r *userRepository) SetRole(userID uint, roleID *uint) error {
	res := r.db.Model(&domain.User{}).Where("id = ?", userID).Update("role_id", roleID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
