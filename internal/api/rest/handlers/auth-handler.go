package handlers

import (
	"errors"
	"strings"

	"github.com/SundayYogurt/logistics_service/internal/domain"
	"github.com/SundayYogurt/logistics_service/internal/dto"
	"github.com/SundayYogurt/logistics_service/internal/helper"
	"github.com/SundayYogurt/logistics_service/internal/helper/utils"
	"github.com/SundayYogurt/logistics_service/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	svc services.AuthService
	otp services.OTPService
}

func NewAuthHandler(svc services.AuthService, otp services.OTPService) *AuthHandler {
	return &AuthHandler{svc: svc, otp: otp}
}

// SetupRoutes registers the public login routes. They must be registered
// before any authenticating middleware on the same prefix.
func (h *AuthHandler) SetupRoutes(public fiber.Router) {
	auth := public.Group("/auth")
	auth.Post("/otp", h.RequestOTP)
	auth.Post("/login", h.Login)
}

func (h *AuthHandler) SetupAdminRoutes(admin fiber.Router) {
	admin.Get("/otp/:phone", h.PeekOTP)
}

func (h *AuthHandler) RequestOTP(ctx *fiber.Ctx) error {
	var req dto.OTPRequest
	if err := parseBody(ctx, &req); err != nil {
		return respondError(ctx, err)
	}
	if strings.TrimSpace(req.PhoneNumber) == "" {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "phone_number is required")
	}

	if err := h.svc.RequestOTP(ctx.UserContext(), req.PhoneNumber); err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, "OTP sent")
}

func (h *AuthHandler) Login(ctx *fiber.Ctx) error {
	var req dto.OTPVerifyRequest
	if err := parseBody(ctx, &req); err != nil {
		return respondError(ctx, err)
	}
	if strings.TrimSpace(req.PhoneNumber) == "" || strings.TrimSpace(req.Code) == "" {
		return utils.ResponseError(ctx, fiber.StatusBadRequest, "phone_number and otp_code are required")
	}

	resp, err := h.svc.Login(ctx.UserContext(), req.PhoneNumber, req.Code)
	if err != nil {
		if errors.Is(err, domain.ErrPermission) {
			return utils.ResponseError(ctx, fiber.StatusUnauthorized, "invalid or expired otp")
		}
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, resp)
}

func (h *AuthHandler) PeekOTP(ctx *fiber.Ctx) error {
	otp, err := h.otp.Peek(ctx.UserContext(), identity(ctx), ctx.Params("phone"))
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, dto.OTPPeekResponse{
		PhoneNumber: otp.PhoneNumber,
		Code:        otp.Code,
		ExpiresAt:   helper.FormatTime(otp.ExpiresAt),
	})
}

