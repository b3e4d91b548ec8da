package repository

import (
	"github.com/SundayYogurt/logistics_service/internal/domain"
	"gorm.io/gorm"
)

type MediaRepository interface {
	Create(media *domain.MediaFile) error
	DeactivateActive(ownerID uint, mediaType domain.MediaType) error
	FindActive(ownerID uint, mediaType domain.MediaType) (*domain.MediaFile, error)
	FindByID(mediaID uint) (*domain.MediaFile, error)
	ListByOwner(ownerID uint) ([]domain.MediaFile, error)
}

type mediaRepository struct {
	db *gorm.DB
}

func NewMediaRepository(db *gorm.DB) MediaRepository {
	return &mediaRepository{db: db}
}

func (m *mediaRepository) Create(media *domain.MediaFile) error {
	return m.db.Create(media).Error
}

func (m *mediaRepository) DeactivateActive(ownerID uint, mediaType domain.MediaType) error {
	return m.db.Model(&domain.MediaFile{}).
		Where("owner_user_id = ? AND type = ? AND is_active = ?", ownerID, mediaType, true).
		Update("is_active", false).Error
}

func (m *mediaRepository) FindActive(ownerID uint, mediaType domain.MediaType) (*domain.MediaFile, error) {
	var media domain.MediaFile
	err := m.db.
		Where("owner_user_id = ? AND type = ? AND is_active = ?", ownerID, mediaType, true).
		Order("id DESC").
		First(&media).Error
	if err != nil {
		return nil, notFound(err, domain.ErrMediaNotFound)
	}
	return &media, nil
}

func (m *mediaRepository) FindByID(mediaID uint) (*domain.MediaFile, error) {
	var media domain.MediaFile
	if err := m.db.First(&media, mediaID).Error; err != nil {
		return nil, notFound(err, domain.ErrMediaNotFound)
	}
	return &media, nil
}

func (m *mediaRepository) ListByOwner(ownerID uint) ([]domain.MediaFile, error) {
	var files []domain.MediaFile
	if err := m.db.Where("owner_user_id = ?", ownerID).Order("id DESC").Find(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}
