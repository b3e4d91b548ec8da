package handlers

import (
	"github.com/SundayYogurt/logistics_service/internal/domain"
	"github.com/SundayYogurt/logistics_service/internal/dto"
	"github.com/SundayYogurt/logistics_service/internal/helper/utils"
	"github.com/SundayYogurt/logistics_service/internal/repository"
	"github.com/SundayYogurt/logistics_service/internal/services"
	"github.com/gofiber/fiber/v2"
)

type TaskHandler struct {
	svc services.TaskService
}

func NewTaskHandler(svc services.TaskService) *TaskHandler {
	return &TaskHandler{svc: svc}
}

func (h *TaskHandler) SetupRoutes(api, admin fiber.Router) {
	tasks := api.Group("/tasks")
	tasks.Get("/", h.List)
	tasks.Get("/mine", h.Mine)
	tasks.Get("/:taskID", h.Get)
	tasks.Post("/:taskID/accept", h.Accept)
	tasks.Patch("/:taskID/steps/:stepID", h.UpdateStep)
	tasks.Post("/:taskID/complete", h.Complete)

	admin.Post("/tasks", h.Create)
	admin.Put("/tasks/:taskID", h.Update)
	admin.Post("/tasks/:taskID/approve", h.Approve)
}

// List shows open tasks to workers; admins may filter by any status.
func (h *TaskHandler) List(ctx *fiber.Ctx) error {
	limit, offset := pagination(ctx)
	issued := domain.TaskStatusIssued
	filter := repository.TaskFilter{Status: &issued}
	if identity(ctx).IsAdmin() {
		filter.Status = statusQuery(ctx)
		if v := ctx.QueryInt("business_id", 0); v > 0 {
			businessID := uint(v)
			filter.BusinessID = &businessID
		}
	}

	tasks, err := h.svc.List(ctx.UserContext(), filter, limit, offset)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, tasks)
}

func (h *TaskHandler) Mine(ctx *fiber.Ctx) error {
	limit, offset := pagination(ctx)
	userID := identity(ctx).UserID
	filter := repository.TaskFilter{
		Status:         statusQuery(ctx),
		AssignedUserID: &userID,
	}
	tasks, err := h.svc.List(ctx.UserContext(), filter, limit, offset)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, tasks)
}

func statusQuery(ctx *fiber.Ctx) *domain.TaskStatus {
	v := ctx.Query("status")
	if v == "" {
		return nil
	}
	status := domain.TaskStatus(v)
	return &status
}

func (h *TaskHandler) Get(ctx *fiber.Ctx) error {
	taskID, err := paramID(ctx, "taskID")
	if err != nil {
		return respondError(ctx, err)
	}
	task, err := h.svc.Get(ctx.UserContext(), taskID)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, task)
}

func (h *TaskHandler) Accept(ctx *fiber.Ctx) error {
	taskID, err := paramID(ctx, "taskID")
	if err != nil {
		return respondError(ctx, err)
	}
	task, err := h.svc.Accept(ctx.UserContext(), identity(ctx), taskID)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, task)
}

func (h *TaskHandler) UpdateStep(ctx *fiber.Ctx) error {
	taskID, err := paramID(ctx, "taskID")
	if err != nil {
		return respondError(ctx, err)
	}
	stepID, err := paramID(ctx, "stepID")
	if err != nil {
		return respondError(ctx, err)
	}
	var req dto.TaskStepUpdateRequest
	if err := parseBody(ctx, &req); err != nil {
		return respondError(ctx, err)
	}

	task, err := h.svc.UpdateStep(ctx.UserContext(), identity(ctx), taskID, stepID, req)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, task)
}

func (h *TaskHandler) Complete(ctx *fiber.Ctx) error {
	taskID, err := paramID(ctx, "taskID")
	if err != nil {
		return respondError(ctx, err)
	}
	task, err := h.svc.Complete(ctx.UserContext(), identity(ctx), taskID)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, task)
}

func (h *TaskHandler) Create(ctx *fiber.Ctx) error {
	var req dto.TaskCreateRequest
	if err := parseBody(ctx, &req); err != nil {
		return respondError(ctx, err)
	}
	task, err := h.svc.Create(ctx.UserContext(), identity(ctx), req)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusCreated, task)
}

func (h *TaskHandler) Update(ctx *fiber.Ctx) error {
	taskID, err := paramID(ctx, "taskID")
	if err != nil {
		return respondError(ctx, err)
	}
	var req dto.TaskUpdateRequest
	if err := parseBody(ctx, &req); err != nil {
		return respondError(ctx, err)
	}
	task, err := h.svc.Update(ctx.UserContext(), identity(ctx), taskID, req)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, task)
}

func (h *TaskHandler) Approve(ctx *fiber.Ctx) error {
	taskID, err := paramID(ctx, "taskID")
	if err != nil {
		return respondError(ctx, err)
	}
	resp, err := h.svc.Approve(ctx.UserContext(), identity(ctx), taskID)
	if err != nil {
		return respondError(ctx, err)
	}
	return utils.ResponseSuccess(ctx, fiber.StatusOK, resp)
}
