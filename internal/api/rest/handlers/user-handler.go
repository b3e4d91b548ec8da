package handlers

import (
	"github.com/SundayYogurt/logistics_service/internal/dto"
	"github.com/SundayYogurt/logistics_service/internal/helper/utils"
	"github.com/SundayYogurt/logistics_service/internal/services"
	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	svc services.UserService
}

func NewUserHandler(svc services.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

func (h *UserHandler) SetupRoutes(api, admin fiber.Router) {
	// =========================
	// USER
	// =========================
	user := api.Group("/users")
	user.Get("/me", h.Me)
	user.Put("/me", h.UpdateProfile)
	user.Post("/me/avatar", h.UploadAvatar)

	// =========================
	// ADMIN
	// =========================
	admin.Get("/users", h.ListUsers)
	admin.Get("/users/:userID", h.GetUser)
	admin.Put("/users/:userID/role", h.AssignRole)

	admin.Get("/roles", h.ListRoles)
	admin.Post("/roles", h.CreateRole)
	admin.Post("/roles/:role/permissions", h.GrantPermission)
	admin.Get("/permissions", h.ListPermissions)
	admin.Post("/permissions", h.CreatePermission)
}

func (h *UserHandler) Me(ctx *fiber.Ctx) error {
	profile, err := h.svc.GetProfile(ctx.UserContext(), identity(ctx).UserID)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, profile)
}

func (h *UserHandler) UpdateProfile(ctx *fiber.Ctx) error {
	var req dto.UpdateUserProfile
	if err := parseBody(ctx, &req); err != nil {
		return respondError(ctx, err)
	}

	profile, err := h.svc.UpdateProfile(ctx.UserContext(), identity(ctx).UserID, req)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, profile)
}

func (h *UserHandler) UploadAvatar(ctx *fiber.Ctx) error {
	file, err := readUpload(ctx)
	if err != nil {
		return respondError(ctx, err)
	}

	media, err := h.svc.UploadAvatar(ctx.UserContext(), identity(ctx).UserID, file)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusCreated, media)
}

func (h *UserHandler) ListUsers(ctx *fiber.Ctx) error {
	limit, offset := pagination(ctx)
	users, err := h.svc.ListUsers(ctx.UserContext(), identity(ctx), limit, offset)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, users)
}

func (h *UserHandler) GetUser(ctx *fiber.Ctx) error {
	userID, err := paramID(ctx, "userID")
	if err != nil {
		return respondError(ctx, err)
	}
	profile, err := h.svc.GetProfile(ctx.UserContext(), userID)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, profile)
}

func (h *UserHandler) AssignRole(ctx *fiber.Ctx) error {
	userID, err := paramID(ctx, "userID")
	if err != nil {
		return respondError(ctx, err)
	}
	var req dto.AssignRoleRequest
	if err := parseBody(ctx, &req); err != nil {
		return respondError(ctx, err)
	}

	if err := h.svc.AssignRole(ctx.UserContext(), identity(ctx), userID, req.Role); err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, "role assigned")
}

func (h *UserHandler) ListRoles(ctx *fiber.Ctx) error {
	roles, err := h.svc.ListRoles(ctx.UserContext(), identity(ctx))
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, roles)
}

func (h *UserHandler) CreateRole(ctx *fiber.Ctx) error {
	var req dto.CreateRoleRequest
	if err := parseBody(ctx, &req); err != nil {
		return respondError(ctx, err)
	}
	role, err := h.svc.CreateRole(ctx.UserContext(), identity(ctx), req.Name)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusCreated, role)
}

func (h *UserHandler) ListPermissions(ctx *fiber.Ctx) error {
	perms, err := h.svc.ListPermissions(ctx.UserContext(), identity(ctx))
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, perms)
}

func (h *UserHandler) CreatePermission(ctx *fiber.Ctx) error {
	var req dto.CreatePermissionRequest
	if err := parseBody(ctx, &req); err != nil {
		return respondError(ctx, err)
	}
	perm, err := h.svc.CreatePermission(ctx.UserContext(), identity(ctx), req.Name)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusCreated, perm)
}

func (h *UserHandler) GrantPermission(ctx *fiber.Ctx) error {
	var req dto.GrantPermissionRequest
	if err := parseBody(ctx, &req); err != nil {
		return respondError(ctx, err)
	}
	if err := h.svc.GrantPermission(ctx.UserContext(), identity(ctx), ctx.Params("role"), req.Permission); err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, "permission granted")
}
