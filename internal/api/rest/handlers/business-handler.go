package handlers

import (
	"github.com/SundayYogurt/logistics_service/internal/dto"
	"github.com/SundayYogurt/logistics_service/internal/helper/utils"
	"github.com/SundayYogurt/logistics_service/internal/services"
	"github.com/gofiber/fiber/v2"
)

type BusinessHandler struct {
	svc services.BusinessService
}

func NewBusinessHandler(svc services.BusinessService) *BusinessHandler {
	return &BusinessHandler{svc: svc}
}

func (h *BusinessHandler) SetupRoutes(admin fiber.Router) {
	admin.Get("/businesses", h.List)
	admin.Post("/businesses", h.Create)
	admin.Get("/businesses/:businessID", h.Get)
	admin.Put("/businesses/:businessID", h.Update)
}

func (h *BusinessHandler) List(ctx *fiber.Ctx) error {
	limit, offset := pagination(ctx)
	list, err := h.svc.List(ctx.UserContext(), identity(ctx), ctx.QueryBool("active", false), limit, offset)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, list)
}

func (h *BusinessHandler) Create(ctx *fiber.Ctx) error {
	var req dto.BusinessRequest
	if err := parseBody(ctx, &req); err != nil {
		return respondError(ctx, err)
	}
	b, err := h.svc.Create(ctx.UserContext(), identity(ctx), req)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusCreated, b)
}

func (h *BusinessHandler) Get(ctx *fiber.Ctx) error {
	businessID, err := paramID(ctx, "businessID")
	if err != nil {
		return respondError(ctx, err)
	}
	b, err := h.svc.Get(ctx.UserContext(), identity(ctx), businessID)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, b)
}

func (h *BusinessHandler) Update(ctx *fiber.Ctx) error {
	businessID, err := paramID(ctx, "businessID")
	if err != nil {
		return respondError(ctx, err)
	}
	var req dto.BusinessRequest
	if err := parseBody(ctx, &req); err != nil {
		return respondError(ctx, err)
	}
	b, err := h.svc.Update(ctx.UserContext(), identity(ctx), businessID, req)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, b)
}
