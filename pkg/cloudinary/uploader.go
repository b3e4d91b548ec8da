package cloudinary

import (
	"bytes"
	"context"
	"path"
	"strings"

	cld "github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// BlobStore stores media in Cloudinary, using the media path minus its
// extension as the public id so that base URL + path resolves to the asset.
type BlobStore struct {
	cld *cld.Cloudinary
}

func NewBlobStore(cloud *cld.Cloudinary) *BlobStore {
	return &BlobStore{cld: cloud}
}

func (s *BlobStore) Put(ctx context.Context, filePath string, _ string, b []byte) error {
	publicID := strings.TrimSuffix(filePath, path.Ext(filePath))

	_, err := s.cld.Upload.Upload(ctx, bytes.NewReader(b), uploader.UploadParams{
		PublicID:     publicID,
		ResourceType: "image",
		Overwrite:    boolPtr(false),
	})
	return err
}

func boolPtr(b bool) *bool {
	return &b
}
