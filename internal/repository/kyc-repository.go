package repository

import (
	"github.com/SundayYogurt/logistics_service/internal/domain"
	"gorm.io/gorm"
)

type KYCRepository interface {
	CreateAttempt(attempt *domain.KYCAttempt) error
	SaveAttempt(attempt *domain.KYCAttempt) error
	FindByID(attemptID uint) (*domain.KYCAttempt, error)
	ListByUserID(userID uint) ([]domain.KYCAttempt, error)
	CountByUserID(userID uint) (int64, error)
	ListPending(limit, offset int) ([]domain.KYCAttempt, error)
}

type kycRepository struct {
	db *gorm.DB
}

func NewKYCRepository(db *gorm.DB) KYCRepository {
	return &kycRepository{db: db}
}

func (k *kycRepository) CreateAttempt(attempt *domain.KYCAttempt) error {
	return k.db.Create(attempt).Error
}

func (k *kycRepository) SaveAttempt(attempt *domain.KYCAttempt) error {
	return k.db.Save(attempt).Error
}

func (k *kycRepository) FindByID(attemptID uint) (*domain.KYCAttempt, error) {
	var attempt domain.KYCAttempt
	if err := k.db.First(&attempt, attemptID).Error; err != nil {
		return nil, notFound(err, domain.ErrAttemptNotFound)
	}
	return &attempt, nil
}

// ListByUserID returns the user's attempts, newest first.
func (k *kycRepository) ListByUserID(userID uint) ([]domain.KYCAttempt, error) {
	var attempts []domain.KYCAttempt
	err := k.db.Where("user_id = ?", userID).Order("id DESC").Find(&attempts).Error
	if err != nil {
		return nil, err
	}
	return attempts, nil
}

func (k *kycRepository) CountByUserID(userID uint) (int64, error) {
	var count int64
	err := k.db.Model(&domain.KYCAttempt{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// ListPending returns pending attempts oldest submission first.
func (k *kycRepository) ListPending(limit, offset int) ([]domain.KYCAttempt, error) {
	var attempts []domain.KYCAttempt
	err := paginate(k.db.Where("status = ?", domain.VerificationPending).Order("submitted_at ASC, id ASC"), limit, offset).
		Find(&attempts).Error
	if err != nil {
		return nil, err
	}
	return attempts, nil
}
