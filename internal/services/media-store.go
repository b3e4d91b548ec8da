package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/SundayYogurt/logistics_service/internal/domain"
	"github.com/SundayYogurt/logistics_service/internal/dto"
	"github.com/SundayYogurt/logistics_service/internal/helper"
	"github.com/SundayYogurt/logistics_service/internal/interfaces"
	"github.com/SundayYogurt/logistics_service/internal/repository"
	"github.com/SundayYogurt/logistics_service/pkg/clock"
	"github.com/SundayYogurt/logistics_service/pkg/imageutil"
	"github.com/google/uuid"
)

const MaxMediaBytes = 20 << 20

var extByMime = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
	"image/heic": ".heic",
}

type MediaUpload struct {
	OwnerID      uint
	Type         domain.MediaType
	File         dto.UploadFile
	KYCAttemptID *uint
}

// MediaStore validates uploads, writes the bytes to a blob store and records
// them, deactivating the owner's previous file of the same type.
type MediaStore struct {
	blobs    interfaces.BlobStore
	baseURL  string
	clock    clock.Clock
	maxWidth int
}

func NewMediaStore(blobs interfaces.BlobStore, baseURL string, clk clock.Clock) *MediaStore {
	if clk == nil {
		clk = clock.Real()
	}
	return &MediaStore{
		blobs:   blobs,
		baseURL: strings.TrimRight(baseURL, "/"),
		clock:   clk,
	}
}

// WithNormalization re-encodes decodable uploads as upright JPEGs no wider
// than maxWidth. Formats that cannot be decoded are stored as sent.
func (m *MediaStore) WithNormalization(maxWidth int) *MediaStore {
	m.maxWidth = maxWidth
	return m
}

// Save must run inside the caller's transaction; r carries it.
func (m *MediaStore) Save(ctx context.Context, r *repository.Repositories, in MediaUpload) (*domain.MediaFile, error) {
	data := in.File.Data
	if len(data) == 0 {
		return nil, domain.Validationf("file is empty")
	}
	if len(data) > MaxMediaBytes {
		return nil, domain.Validationf("file exceeds the %d MB limit", MaxMediaBytes>>20)
	}

	mimeType := contentType(in.File.ContentType, data)
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, domain.Validationf("only image uploads are allowed, got %q", mimeType)
	}

	folder, err := mediaFolder(in.OwnerID, in.Type)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(in.File.Filename))
	if ext == "" {
		ext = extByMime[mimeType]
	}
	if m.maxWidth > 0 {
		if out, err := imageutil.Normalize(data, m.maxWidth, 0); err == nil {
			data, mimeType, ext = out, "image/jpeg", ".jpg"
		}
	}
	path := folder + "/" + uuid.NewString() + ext

	sum := sha256.Sum256(data)

	if err := m.blobs.Put(ctx, path, mimeType, data); err != nil {
		return nil, fmt.Errorf("store media: %w", err)
	}

	if err := r.Media.DeactivateActive(in.OwnerID, in.Type); err != nil {
		return nil, err
	}

	media := &domain.MediaFile{
		OwnerUserID:  in.OwnerID,
		Type:         in.Type,
		FilePath:     path,
		MimeType:     mimeType,
		SizeBytes:    int64(len(data)),
		Checksum:     hex.EncodeToString(sum[:]),
		IsActive:     true,
		KYCAttemptID: in.KYCAttemptID,
		CreatedAt:    m.clock.Now(),
	}
	if err := r.Media.Create(media); err != nil {
		return nil, err
	}
	media.URL = m.URL(path)
	return media, nil
}

func (m *MediaStore) URL(path string) string {
	return m.baseURL + "/" + path
}

func (m *MediaStore) URLPtr(media *domain.MediaFile) *string {
	if media == nil {
		return nil
	}
	u := m.URL(media.FilePath)
	return &u
}

func (m *MediaStore) Response(media *domain.MediaFile) dto.MediaResponse {
	return dto.MediaResponse{
		ID:        media.ID,
		Type:      string(media.Type),
		URL:       m.URL(media.FilePath),
		MimeType:  media.MimeType,
		SizeBytes: media.SizeBytes,
		Checksum:  media.Checksum,
		CreatedAt: helper.FormatTime(media.CreatedAt),
	}
}

func mediaFolder(ownerID uint, t domain.MediaType) (string, error) {
	switch t {
	case domain.MediaTypeAvatar:
		return fmt.Sprintf("users/%d/avatar", ownerID), nil
	case domain.MediaTypeIDCard:
		return fmt.Sprintf("users/%d/kyc/id-card", ownerID), nil
	case domain.MediaTypeSelfie:
		return fmt.Sprintf("users/%d/kyc/selfie", ownerID), nil
	}
	return "", domain.Validationf("unsupported media type %q", t)
}

// contentType prefers the declared type and sniffs when none was sent.
func contentType(declared string, data []byte) string {
	declared = strings.ToLower(strings.TrimSpace(declared))
	if i := strings.IndexByte(declared, ';'); i >= 0 {
		declared = strings.TrimSpace(declared[:i])
	}
	if declared == "" || declared == "application/octet-stream" {
		return http.DetectContentType(data)
	}
	return declared
}
