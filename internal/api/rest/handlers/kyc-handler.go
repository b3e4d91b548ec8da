package handlers

import (
	"github.com/SundayYogurt/logistics_service/internal/domain"
	"github.com/SundayYogurt/logistics_service/internal/dto"
	"github.com/SundayYogurt/logistics_service/internal/helper/utils"
	"github.com/SundayYogurt/logistics_service/internal/services"
	"github.com/gofiber/fiber/v2"
)

type KYCHandler struct {
	svc services.KYCService
}

func NewKYCHandler(svc services.KYCService) *KYCHandler {
	return &KYCHandler{svc: svc}
}

func (h *KYCHandler) SetupRoutes(api, admin fiber.Router) {
	kyc := api.Group("/kyc")
	kyc.Get("/status", h.Status)
	kyc.Post("/documents/:type", h.Upload)

	admin.Get("/kyc/pending", h.ListPending)
	admin.Get("/kyc/:userID", h.Summary)
	admin.Get("/kyc/:userID/attempts", h.History)
	admin.Post("/kyc/:userID/decision", h.Decide)
}

func (h *KYCHandler) Status(ctx *fiber.Ctx) error {
	status, err := h.svc.Status(ctx.UserContext(), identity(ctx).UserID)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, status)
}

// Upload accepts form-data file=<image> for type id_card or selfie.
func (h *KYCHandler) Upload(ctx *fiber.Ctx) error {
	docType := domain.MediaType(ctx.Params("type"))
	if !docType.IsKYCDocument() {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "document type must be id_card or selfie")
	}
	file, err := readUpload(ctx)
	if err != nil {
		return respondError(ctx, err)
	}

	resp, err := h.svc.UploadDocument(ctx.UserContext(), identity(ctx).UserID, docType, file)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusCreated, resp)
}

func (h *KYCHandler) ListPending(ctx *fiber.Ctx) error {
	limit, offset := pagination(ctx)
	pending, err := h.svc.ListPending(ctx.UserContext(), identity(ctx), limit, offset)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, pending)
}

func (h *KYCHandler) Summary(ctx *fiber.Ctx) error {
	userID, err := paramID(ctx, "userID")
	if err != nil {
		return respondError(ctx, err)
	}
	summary, err := h.svc.AdminSummary(ctx.UserContext(), identity(ctx), userID)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, summary)
}

func (h *KYCHandler) History(ctx *fiber.Ctx) error {
	userID, err := paramID(ctx, "userID")
	if err != nil {
		return respondError(ctx, err)
	}
	attempts, err := h.svc.History(ctx.UserContext(), identity(ctx), userID)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, attempts)
}

func (h *KYCHandler) Decide(ctx *fiber.Ctx) error {
	userID, err := paramID(ctx, "userID")
	if err != nil {
		return respondError(ctx, err)
	}
	var req dto.KYCDecisionRequest
	if err := parseBody(ctx, &req); err != nil {
		return respondError(ctx, err)
	}

	summary, err := h.svc.Decide(ctx.UserContext(), identity(ctx), userID, req)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, summary)
}
