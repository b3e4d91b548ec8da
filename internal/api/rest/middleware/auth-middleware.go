package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/SundayYogurt/logistics_service/internal/domain"
	"github.com/SundayYogurt/logistics_service/internal/helper"
	"github.com/SundayYogurt/logistics_service/internal/helper/utils"
	"github.com/SundayYogurt/logistics_service/internal/services"
	"github.com/gofiber/fiber/v2"
)

const identityKey = "identity"

// IdentityResolver loads the caller's current role and permissions.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, userID uint) (services.Identity, error)
}

func AuthMiddleware(auth helper.Auth, users IdentityResolver) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		// 1) try cookie first
		tokenStr := strings.TrimSpace(ctx.Cookies("access_token"))

		// 2) fallback to Authorization header
		if tokenStr == "" {
			tokenStr = strings.TrimSpace(ctx.Get("Authorization"))
		}

		claims, err := auth.VerifyToken(tokenStr)
		if err != nil {
			return utils.ResponseError(ctx, fiber.StatusUnauthorized, err.Error())
		}

		// Role and verification are read fresh so revocations apply immediately.
		identity, err := users.ResolveIdentity(ctx.UserContext(), claims.UserID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return utils.ResponseError(ctx, fiber.StatusUnauthorized, "unknown user")
			}
			return utils.ResponseError(ctx, fiber.StatusInternalServerError, err.Error())
		}

		ctx.Locals("userID", claims.UserID)
		ctx.Locals("user", claims)
		ctx.Locals(identityKey, identity)
		return ctx.Next()
	}
}

// CurrentIdentity returns the identity stored by AuthMiddleware.
func CurrentIdentity(ctx *fiber.Ctx) (services.Identity, bool) {
	identity, ok := ctx.Locals(identityKey).(services.Identity)
	return identity, ok && identity.UserID != 0
}

func AdminOnly() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		identity, ok := CurrentIdentity(ctx)
		if !ok {
			return utils.ResponseError(ctx, fiber.StatusUnauthorized, "unauthorized")
		}
		if !identity.IsAdmin() {
			return utils.ResponseError(ctx, fiber.StatusForbidden, "admin only")
		}
		return ctx.Next()
	}
}

func RequirePermission(permission string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		identity, ok := CurrentIdentity(ctx)
		if !ok {
			return utils.ResponseError(ctx, fiber.StatusUnauthorized, "unauthorized")
		}
		if !identity.Can(permission) {
			return utils.ResponseError(ctx, fiber.StatusForbidden, "missing permission "+permission)
		}
		return ctx.Next()
	}
}
