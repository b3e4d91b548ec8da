package handlers

import (
	"errors"

	"github.com/SundayYogurt/logistics_service/internal/domain"
	"github.com/SundayYogurt/logistics_service/internal/dto"
	"github.com/SundayYogurt/logistics_service/internal/services"
	"github.com/SundayYogurt/logistics_service/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

// readUpload loads the multipart "file" field into memory. Size and type
// checks belong to the media store so every entry point applies them.
func readUpload(ctx *fiber.Ctx) (dto.UploadFile, error) {
	file, err := ctx.FormFile("file")
	if err != nil {
		return dto.UploadFile{}, domain.Validationf("file is required")
	}
	if file.Size > services.MaxMediaBytes {
		return dto.UploadFile{}, domain.Validationf("file too large (max %d bytes)", services.MaxMediaBytes)
	}

	f, err := file.Open()
	if err != nil {
		return dto.UploadFile{}, domain.Validationf("cannot open uploaded file")
	}
	defer f.Close()

	data, err := utils.ReadAllLimit(f, services.MaxMediaBytes)
	if errors.Is(err, utils.ErrTooLarge) {
		return dto.UploadFile{}, domain.Validationf("file too large (max %d bytes)", services.MaxMediaBytes)
	}
	if err != nil {
		return dto.UploadFile{}, domain.Validationf("cannot read uploaded file")
	}

	return dto.UploadFile{
		Filename:    file.Filename,
		ContentType: file.Header.Get(fiber.HeaderContentType),
		Data:        data,
	}, nil
}
