package repository

import (
	"github.com/SundayYogurt/logistics_service/internal/domain"
	"gorm.io/gorm"
)

type OTPRepository interface {
	Create(otp *domain.OTP) error
	// FindUnused returns unused codes for phone, latest expiry first. An
	// empty code matches any code.
	FindUnused(phone, code string) ([]domain.OTP, error)
	// MarkUsed flips used to true. It reports false if another caller won.
	MarkUsed(otpID uint) (bool, error)
}

type otpRepository struct {
	db *gorm.DB
}

func NewOTPRepository(db *gorm.DB) OTPRepository {
	return &otpRepository{db: db}
}

func (o *otpRepository) Create(otp *domain.OTP) error {
	return o.db.Create(otp).Error
}

func (o *otpRepository) FindUnused(phone, code string) ([]domain.OTP, error) {
	q := o.db.Where("phone_number = ? AND used = ?", phone, false)
	if code != "" {
		q = q.Where("otp_code = ?", code)
	}

	var otps []domain.OTP
	if err := q.Order("expires_at DESC, id DESC").Find(&otps).Error; err != nil {
		return nil, err
	}
	return otps, nil
}

func (o *otpRepository) MarkUsed(otpID uint) (bool, error) {
	res := o.db.Model(&domain.OTP{}).
		Where("id = ? AND used = ?", otpID, false).
		Update("used", true)
	return res.RowsAffected == 1, res.Error
}
