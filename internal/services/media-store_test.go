package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	goimage "image"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/SundayYogurt/logistics_service/internal/domain"
	"github.com/SundayYogurt/logistics_service/internal/dto"
	"github.com/SundayYogurt/logistics_service/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMediaStoreSave(t *testing.T) {
	e := newEnv(t)
	u := e.user(t, "+989120000000", domain.VerificationUnverified)
	ctx := context.Background()

	var first, second *domain.MediaFile
	require.NoError(t, e.store.Atomic(ctx, func(r *repository.Repositories) error {
		var err error
		first, err = e.media.Save(ctx, r, MediaUpload{OwnerID: u.ID, Type: domain.MediaTypeSelfie, File: image("me.PNG")})
		return err
	}))

	sum := sha256.Sum256(pngBytes)
	assert.Equal(t, hex.EncodeToString(sum[:]), first.Checksum)
	assert.Equal(t, int64(len(pngBytes)), first.SizeBytes)
	assert.True(t, strings.HasPrefix(first.FilePath, "users/"), first.FilePath)
	assert.Contains(t, first.FilePath, "/kyc/selfie/")
	assert.True(t, strings.HasSuffix(first.FilePath, ".png"))
	assert.Equal(t, "https://cdn.test/media/"+first.FilePath, first.URL)
	assert.Contains(t, e.blobs.files, first.FilePath)

	require.NoError(t, e.store.Atomic(ctx, func(r *repository.Repositories) error {
		var err error
		second, err = e.media.Save(ctx, r, MediaUpload{OwnerID: u.ID, Type: domain.MediaTypeSelfie, File: image("again.png")})
		return err
	}))

	active, err := e.store.Repos(ctx).Media.FindActive(u.ID, domain.MediaTypeSelfie)
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID, "only the newest upload stays active")

	old, err := e.store.Repos(ctx).Media.FindByID(first.ID)
	require.NoError(t, err)
	assert.False(t, old.IsActive)
}

func TestMediaStoreRejectsBadUploads(t *testing.T) {
	e := newEnv(t)
	u := e.user(t, "+989120000000", domain.VerificationUnverified)
	ctx := context.Background()

	cases := map[string]MediaUpload{
		"empty":     {OwnerID: u.ID, Type: domain.MediaTypeAvatar, File: dto.UploadFile{Filename: "a.png", ContentType: "image/png"}},
		"too large": {OwnerID: u.ID, Type: domain.MediaTypeAvatar, File: dto.UploadFile{Filename: "a.png", ContentType: "image/png", Data: make([]byte, MaxMediaBytes+1)}},
		"not image": {OwnerID: u.ID, Type: domain.MediaTypeAvatar, File: dto.UploadFile{Filename: "a.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.4")}},
		"sniffed":   {OwnerID: u.ID, Type: domain.MediaTypeAvatar, File: dto.UploadFile{Filename: "a.txt", Data: []byte("plain text")}},
		"bad type":  {OwnerID: u.ID, Type: domain.MediaType("passport"), File: image("a.png")},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			err := e.store.Atomic(ctx, func(r *repository.Repositories) error {
				_, err := e.media.Save(ctx, r, in)
				return err
			})
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
	assert.Empty(t, e.blobs.files)
}

func TestMediaStoreBlobFailureKeepsPreviousActive(t *testing.T) {
	e := newEnv(t)
	u := e.user(t, "+989120000000", domain.VerificationUnverified)
	ctx := context.Background()

	var first *domain.MediaFile
	require.NoError(t, e.store.Atomic(ctx, func(r *repository.Repositories) error {
		var err error
		first, err = e.media.Save(ctx, r, MediaUpload{OwnerID: u.ID, Type: domain.MediaTypeAvatar, File: image("a.png")})
		return err
	}))

	e.blobs.err = errors.New("disk full")
	err := e.store.Atomic(ctx, func(r *repository.Repositories) error {
		_, err := e.media.Save(ctx, r, MediaUpload{OwnerID: u.ID, Type: domain.MediaTypeAvatar, File: image("b.png")})
		return err
	})
	require.Error(t, err)

	active, err := e.store.Repos(ctx).Media.FindActive(u.ID, domain.MediaTypeAvatar)
	require.NoError(t, err)
	assert.Equal(t, first.ID, active.ID)
}

func TestMediaStoreSniffsOctetStream(t *testing.T) {
	assert.Equal(t, "image/png", contentType("application/octet-stream", pngBytes))
	assert.Equal(t, "image/jpeg", contentType("IMAGE/JPEG; charset=binary", nil))
}

func TestMediaStoreNormalizesDecodableImages(t *testing.T) {
	e := newEnv(t)
	u := e.user(t, "+989120000000", domain.VerificationUnverified)
	ctx := context.Background()
	media := NewMediaStore(e.blobs, "https://cdn.test/media", e.clock).WithNormalization(64)

	src := goimage.NewRGBA(goimage.Rect(0, 0, 256, 128))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	var saved *domain.MediaFile
	require.NoError(t, e.store.Atomic(ctx, func(r *repository.Repositories) error {
		var err error
		saved, err = media.Save(ctx, r, MediaUpload{
			OwnerID: u.ID,
			Type:    domain.MediaTypeAvatar,
			File:    dto.UploadFile{Filename: "big.png", ContentType: "image/png", Data: buf.Bytes()},
		})
		return err
	}))

	assert.Equal(t, "image/jpeg", saved.MimeType)
	assert.True(t, strings.HasSuffix(saved.FilePath, ".jpg"), saved.FilePath)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(e.blobs.files[saved.FilePath]))
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Width)
	assert.Equal(t, 32, cfg.Height)

	// undecodable images are kept as sent
	require.NoError(t, e.store.Atomic(ctx, func(r *repository.Repositories) error {
		var err error
		saved, err = media.Save(ctx, r, MediaUpload{OwnerID: u.ID, Type: domain.MediaTypeAvatar, File: image("raw.png")})
		return err
	}))
	assert.Equal(t, "image/png", saved.MimeType)
	assert.Equal(t, int64(len(pngBytes)), saved.SizeBytes)
}
