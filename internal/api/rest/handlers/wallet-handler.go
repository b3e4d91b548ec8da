package handlers

import (
	"github.com/SundayYogurt/logistics_service/internal/dto"
	"github.com/SundayYogurt/logistics_service/internal/helper/utils"
	"github.com/SundayYogurt/logistics_service/internal/services"
	"github.com/gofiber/fiber/v2"
)

type WalletHandler struct {
	svc services.WalletService
}

func NewWalletHandler(svc services.WalletService) *WalletHandler {
	return &WalletHandler{svc: svc}
}

func (h *WalletHandler) SetupRoutes(api, admin fiber.Router) {
	wallet := api.Group("/wallet")
	wallet.Get("/", h.Get)
	wallet.Get("/transactions", h.Transactions)
	wallet.Post("/payouts", h.RequestPayout)

	admin.Get("/payouts", h.ListPayouts)
	admin.Post("/payouts/:txnID/approve", h.ApprovePayout)
	admin.Post("/payouts/:txnID/complete", h.CompletePayout)
	admin.Post("/payouts/:txnID/deny", h.DenyPayout)

	admin.Get("/wallets/:userID", h.AdminSummary)
	admin.Post("/wallets/:userID/adjustments", h.Adjust)
	admin.Post("/wallets/:userID/recompute", h.Recompute)
}

func (h *WalletHandler) Get(ctx *fiber.Ctx) error {
	wallet, err := h.svc.GetWallet(ctx.UserContext(), identity(ctx).UserID)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, wallet)
}

func (h *WalletHandler) Transactions(ctx *fiber.Ctx) error {
	limit, offset := pagination(ctx)
	txns, err := h.svc.Transactions(ctx.UserContext(), identity(ctx).UserID, limit, offset)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, txns)
}

func (h *WalletHandler) RequestPayout(ctx *fiber.Ctx) error {
	var req dto.PayoutRequest
	if err := parseBody(ctx, &req); err != nil {
		return respondError(ctx, err)
	}
	txn, err := h.svc.RequestPayout(ctx.UserContext(), identity(ctx).UserID, req)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusCreated, txn)
}

func (h *WalletHandler) ListPayouts(ctx *fiber.Ctx) error {
	limit, offset := pagination(ctx)
	payouts, err := h.svc.ListPayouts(ctx.UserContext(), identity(ctx), ctx.Query("status"), limit, offset)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, payouts)
}

func (h *WalletHandler) ApprovePayout(ctx *fiber.Ctx) error {
	txnID, err := paramID(ctx, "txnID")
	if err != nil {
		return respondError(ctx, err)
	}
	txn, err := h.svc.ApprovePayout(ctx.UserContext(), identity(ctx), txnID)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, txn)
}

func (h *WalletHandler) CompletePayout(ctx *fiber.Ctx) error {
	txnID, err := paramID(ctx, "txnID")
	if err != nil {
		return respondError(ctx, err)
	}
	txn, err := h.svc.CompletePayout(ctx.UserContext(), identity(ctx), txnID)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, txn)
}

func (h *WalletHandler) DenyPayout(ctx *fiber.Ctx) error {
	txnID, err := paramID(ctx, "txnID")
	if err != nil {
		return respondError(ctx, err)
	}
	txn, err := h.svc.DenyPayout(ctx.UserContext(), identity(ctx), txnID)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, txn)
}

func (h *WalletHandler) AdminSummary(ctx *fiber.Ctx) error {
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

func (h *WalletHandler) Adjust(ctx *fiber.Ctx) error {
	userID, err := paramID(ctx, "userID")
	if err != nil {
		return respondError(ctx, err)
	}
	var req dto.AdjustmentRequest
	if err := parseBody(ctx, &req); err != nil {
		return respondError(ctx, err)
	}
	txn, err := h.svc.Adjust(ctx.UserContext(), identity(ctx), userID, req)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusCreated, txn)
}

func (h *WalletHandler) Recompute(ctx *fiber.Ctx) error {
	userID, err := paramID(ctx, "userID")
	if err != nil {
		return respondError(ctx, err)
	}
	wallet, err := h.svc.Recompute(ctx.UserContext(), identity(ctx), userID)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, wallet)
}
