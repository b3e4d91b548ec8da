package handlers

import (
	"errors"
	"strconv"

	"github.com/SundayYogurt/logistics_service/internal/api/rest/middleware"
	"github.com/SundayYogurt/logistics_service/internal/domain"
	"github.com/SundayYogurt/logistics_service/internal/helper/utils"
	"github.com/SundayYogurt/logistics_service/internal/services"
	"github.com/gofiber/fiber/v2"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// respondError maps a service error onto its HTTP status.
func respondError(ctx *fiber.Ctx, err error) error {
	var rateErr *domain.RateLimitError
	var stepsErr *domain.IncompleteStepsError

	switch {
	case errors.As(err, &rateErr):
		ctx.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(rateErr.RetryAfter.Seconds()+0.5)))
		return utils.ResponseErrorDetails(ctx, fiber.StatusTooManyRequests, err.Error(), fiber.Map{
			"retry_after_seconds": int(rateErr.RetryAfter.Seconds() + 0.5),
		})
	case errors.As(err, &stepsErr):
		return utils.ResponseErrorDetails(ctx, fiber.StatusBadRequest, err.Error(), fiber.Map{
			"incomplete_step_ids": stepsErr.StepIDs,
		})
	case errors.Is(err, domain.ErrValidation):
		return utils.ResponseError(ctx, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return utils.ResponseError(ctx, fiber.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		return utils.ResponseError(ctx, fiber.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrPermission):
		return utils.ResponseError(ctx, fiber.StatusForbidden, err.Error())
	default:
		return utils.ResponseError(ctx, fiber.StatusInternalServerError, "internal error")
	}
}

func identity(ctx *fiber.Ctx) services.Identity {
	id, _ := middleware.CurrentIdentity(ctx)
	return id
}

func paramID(ctx *fiber.Ctx, name string) (uint, error) {
	v, err := ctx.ParamsInt(name)
	if err != nil || v <= 0 {
		return 0, domain.Validationf("%s must be a positive integer", name)
	}
	return uint(v), nil
}

func pagination(ctx *fiber.Ctx) (int, int) {
	limit := ctx.QueryInt("limit", defaultLimit)
	if limit <= 0 || limit > maxLimit {
		limit = defaultLimit
	}
	offset := ctx.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func parseBody(ctx *fiber.Ctx, out any) error {
	if err := ctx.BodyParser(out); err != nil {
		return domain.Validationf("please provide valid inputs")
	}
	return nil
}
