package utils

import "github.com/gofiber/fiber/v2"

func ResponseError(ctx *fiber.Ctx, status int, msg string) error {
	return ctx.Status(status).JSON(fiber.Map{
		"error": msg,
	})
}

// ResponseErrorDetails adds machine readable context next to the message.
func ResponseErrorDetails(ctx *fiber.Ctx, status int, msg string, details fiber.Map) error {
	return ctx.Status(status).JSON(fiber.Map{
		"error":   msg,
		"details": details,
	})
}

// create a generic response function for success
func ResponseSuccess(ctx *fiber.Ctx, status int, data interface{}) error {
	return ctx.Status(status).JSON(fiber.Map{"data": data})
}
