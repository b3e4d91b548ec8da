package repository

import (
	"github.com/SundayYogurt/logistics_service/internal/domain"
	"gorm.io/gorm"
)

type BusinessRepository interface {
	Create(b *domain.Business) error
	FindByID(businessID uint) (*domain.Business, error)
	List(activeOnly bool, limit, offset int) ([]domain.Business, error)
	Save(b *domain.Business) error
}

type businessRepository struct {
	db *gorm.DB
}

func NewBusinessRepository(db *gorm.DB) BusinessRepository {
	return &businessRepository{db: db}
}

func (r *businessRepository) Create(b *domain.Business) error {
	return r.db.Create(b).Error
}

func (r *businessRepository) FindByID(businessID uint) (*domain.Business, error) {
	var b domain.Business
	if err := r.db.First(&b, businessID).Error; err != nil {
		return nil, notFound(err, domain.ErrBusinessNotFound)
	}
	return &b, nil
}

func (r *businessRepository) List(activeOnly bool, limit, offset int) ([]domain.Business, error) {
	q := r.db.Order("id ASC")
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	var list []domain.Business
	if err := paginate(q, limit, offset).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *businessRepository) Save(b *domain.Business) error {
	return r.db.Save(b).Error
}
