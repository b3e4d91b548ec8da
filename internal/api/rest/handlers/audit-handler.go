package handlers

import (
	"github.com/SundayYogurt/logistics_service/internal/helper/utils"
	"github.com/SundayYogurt/logistics_service/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AuditHandler struct {
	svc services.AuditService
}

func NewAuditHandler(svc services.AuditService) *AuditHandler {
	return &AuditHandler{svc: svc}
}

func (h *AuditHandler) SetupRoutes(admin fiber.Router) {
	admin.Get("/audit/:entity/:entityID", h.List)
}

// List returns recorded events for one entity, newest first.
func (h *AuditHandler) List(ctx *fiber.Ctx) error {
	entityID, err := paramID(ctx, "entityID")
	if err != nil {
		return respondError(ctx, err)
	}
	limit, _ := pagination(ctx)
	logs, err := h.svc.List(ctx.UserContext(), identity(ctx), ctx.Params("entity"), entityID, limit)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, logs)
}
