package services

import (
	"context"
	"strings"

	"github.com/SundayYogurt/logistics_service/internal/domain"
	"github.com/SundayYogurt/logistics_service/internal/dto"
	"github.com/SundayYogurt/logistics_service/internal/helper"
	"github.com/SundayYogurt/logistics_service/internal/repository"
	"github.com/shopspring/decimal"
)

// adminSettableStatuses are the terminal states an admin may set by editing a
// task. The lifecycle states go through Accept, Complete and Approve.
var adminSettableStatuses = map[domain.TaskStatus]bool{
	domain.TaskStatusCanceled: true,
	domain.TaskStatusFailed:   true,
	domain.TaskStatusRejected: true,
}

type TaskService interface {
	Create(ctx context.Context, actor Identity, input dto.TaskCreateRequest) (*domain.Task, error)
	Update(ctx context.Context, actor Identity, taskID uint, input dto.TaskUpdateRequest) (*domain.Task, error)
	List(ctx context.Context, filter repository.TaskFilter, limit, offset int) ([]domain.Task, error)
	Get(ctx context.Context, taskID uint) (*domain.Task, error)

	// Accept assigns an issued task to a verified worker. Exactly one of
	// several concurrent callers succeeds.
	Accept(ctx context.Context, actor Identity, taskID uint) (*domain.Task, error)
	UpdateStep(ctx context.Context, actor Identity, taskID, stepID uint, input dto.TaskStepUpdateRequest) (*domain.Task, error)
	Complete(ctx context.Context, actor Identity, taskID uint) (*domain.Task, error)
	// Approve marks a done task approved and credits the worker's wallet in
	// the same transaction.
	Approve(ctx context.Context, actor Identity, taskID uint) (*dto.TaskApprovalResponse, error)
}

type taskService struct {
	base
}

func NewTaskService(d Deps) TaskService {
	return &taskService{base: newBase(d, "task")}
}

func (s *taskService) Create(ctx context.Context, actor Identity, input dto.TaskCreateRequest) (*domain.Task, error) {
	if err := requirePermission(actor, domain.PermissionCreateTask); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	switch {
	case title == "":
		return nil, domain.Validationf("title is required")
	case input.BusinessID == 0:
		return nil, domain.Validationf("business_id is required")
	case input.EstimatedTime < 0:
		return nil, domain.Validationf("estimated_time cannot be negative")
	case input.StartDatetime.IsZero():
		return nil, domain.Validationf("start_datetime is required")
	}

	if err := validPrice(input.Price); err != nil {
		return nil, err
	}

	steps := make([]domain.TaskStep, 0, len(input.Steps))
	for i, st := range input.Steps {
		stTitle := strings.TrimSpace(st.Title)
		addr := strings.TrimSpace(st.Address)
		if stTitle == "" || addr == "" {
			return nil, domain.Validationf("step %d needs a title and an address", i+1)
		}
		order := st.Order
		if order == 0 {
			order = i + 1
		}
		steps = append(steps, domain.TaskStep{
			Title:       stTitle,
			Description: helper.TrimPtr(st.Description),
			Address:     addr,
			Order:       order,
			Status:      domain.StepStatusPending,
		})
	}

	var task *domain.Task
	err := s.store.Atomic(ctx, func(r *repository.Repositories) error {
		business, err := r.Businesses.FindByID(input.BusinessID)
		if err != nil {
			return err
		}
		if !business.Active {
			return domain.Validationf("business %d is inactive", business.ID)
		}

		t := &domain.Task{
			Title:            title,
			Description:      helper.TrimPtr(input.Description),
			BusinessID:       business.ID,
			CreatedByAdminID: actorRef(actor.UserID),
			Price:            input.Price,
			EstimatedTime:    input.EstimatedTime,
			StartDatetime:    input.StartDatetime.UTC(),
			Address:          helper.TrimPtr(input.Address),
			Status:           domain.TaskStatusIssued,
			Steps:            steps,
		}
		if err := r.Tasks.Create(t); err != nil {
			return err
		}
		task, err = r.Tasks.FindByID(t.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.taskTransition(string(domain.TaskStatusIssued))
	s.events.publish(Event{Type: EventTaskCreated, ActorID: actorRef(actor.UserID), Entity: "task", EntityID: task.ID, OccurredAt: s.clock.Now()})
	return task, nil
}

func (s *taskService) Update(ctx context.Context, actor Identity, taskID uint, input dto.TaskUpdateRequest) (*domain.Task, error) {
	if err := requirePermission(actor, domain.PermissionCreateTask); err != nil {
		return nil, err
	}

	var task *domain.Task
	err := s.store.Atomic(ctx, func(r *repository.Repositories) error {
		t, err := r.Tasks.FindByID(taskID)
		if err != nil {
			return err
		}
		if t.Status == domain.TaskStatusApproved {
			return domain.Conflictf("approved tasks cannot be edited")
		}

		if input.Title != nil {
			title := strings.TrimSpace(*input.Title)
			if title == "" {
				return domain.Validationf("title cannot be empty")
			}
			t.Title = title
		}
		if input.Description != nil {
			t.Description = helper.TrimPtr(input.Description)
		}
		if input.Address != nil {
			t.Address = helper.TrimPtr(input.Address)
		}
		if input.BusinessID != nil && *input.BusinessID != t.BusinessID {
			if _, err := r.Businesses.FindByID(*input.BusinessID); err != nil {
				return err
			}
			t.BusinessID = *input.BusinessID
		}
		if input.Price != nil {
			if err := validPrice(*input.Price); err != nil {
				return err
			}
			t.Price = *input.Price
		}
		if input.EstimatedTime != nil {
			if *input.EstimatedTime < 0 {
				return domain.Validationf("estimated_time cannot be negative")
			}
			t.EstimatedTime = *input.EstimatedTime
		}
		if input.StartDatetime != nil {
			t.StartDatetime = input.StartDatetime.UTC()
		}
		if input.Status != nil {
			status := domain.TaskStatus(strings.TrimSpace(*input.Status))
			if !adminSettableStatuses[status] {
				return domain.Validationf("status %q can only be reached through the task lifecycle", status)
			}
			t.Status = status
		}

		if err := r.Tasks.Save(t); err != nil {
			return err
		}
		task, err = r.Tasks.FindByID(t.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.events.publish(Event{Type: EventTaskUpdated, ActorID: actorRef(actor.UserID), Entity: "task", EntityID: task.ID, Note: string(task.Status), OccurredAt: s.clock.Now()})
	return task, nil
}

func (s *taskService) List(ctx context.Context, filter repository.TaskFilter, limit, offset int) ([]domain.Task, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, domain.Validationf("invalid task status %q", *filter.Status)
	}
	return s.store.Repos(ctx).Tasks.List(filter, limit, offset)
}

func (s *taskService) Get(ctx context.Context, taskID uint) (*domain.Task, error) {
	return s.store.Repos(ctx).Tasks.FindByID(taskID)
}

func (s *taskService) Accept(ctx context.Context, actor Identity, taskID uint) (*domain.Task, error) {
	var task *domain.Task
	err := s.store.Atomic(ctx, func(r *repository.Repositories) error {
		user, err := r.Users.FindByID(actor.UserID)
		if err != nil {
			return err
		}
		if !user.IsVerified() {
			return domain.ErrNotVerified
		}

		ok, err := r.Tasks.MarkAccepted(taskID, user.ID, s.clock.Now())
		if err != nil {
			return err
		}
		if !ok {
			if _, err := r.Tasks.FindByID(taskID); err != nil {
				return err
			}
			return domain.ErrTaskNotAcceptable
		}

		task, err = r.Tasks.FindByID(taskID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.taskTransition(string(domain.TaskStatusInProgress))
	s.events.publish(Event{Type: EventTaskAccepted, ActorID: actorRef(actor.UserID), Entity: "task", EntityID: task.ID, OccurredAt: s.clock.Now()})
	return task, nil
}

func (s *taskService) UpdateStep(ctx context.Context, actor Identity, taskID, stepID uint, input dto.TaskStepUpdateRequest) (*domain.Task, error) {
	var task *domain.Task
	err := s.store.Atomic(ctx, func(r *repository.Repositories) error {
		t, err := r.Tasks.FindByID(taskID)
		if err != nil {
			return err
		}
		if !actor.IsAdmin() {
			if t.AssignedUserID == nil || *t.AssignedUserID != actor.UserID {
				return domain.ErrNotAssigned
			}
			if t.Status != domain.TaskStatusInProgress {
				return domain.ErrTaskNotInProgress
			}
		}
		// a done task has passed the completion gate; reopening a step would
		// let it be approved with unfinished work
		if t.Status == domain.TaskStatusDone || t.Status == domain.TaskStatusApproved {
			return domain.ErrTaskStepsLocked
		}

		step, err := r.Tasks.FindStep(taskID, stepID)
		if err != nil {
			return err
		}
		if err := applyStep(step, input); err != nil {
			return err
		}
		if step.Status == domain.StepStatusDone && step.DoneAt == nil {
			now := s.clock.Now()
			step.DoneAt = &now
		}
		if err := r.Tasks.SaveStep(step); err != nil {
			return err
		}

		task, err = r.Tasks.FindByID(taskID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) Complete(ctx context.Context, actor Identity, taskID uint) (*domain.Task, error) {
	var task *domain.Task
	err := s.store.Atomic(ctx, func(r *repository.Repositories) error {
		t, err := r.Tasks.FindByID(taskID)
		if err != nil {
			return err
		}
		if t.AssignedUserID == nil || *t.AssignedUserID != actor.UserID {
			return domain.ErrNotAssigned
		}
		if t.Status != domain.TaskStatusInProgress {
			return domain.ErrTaskNotInProgress
		}
		if ids := t.IncompleteStepIDs(); len(ids) > 0 {
			return &domain.IncompleteStepsError{StepIDs: ids}
		}

		ok, err := r.Tasks.MarkDone(t.ID, actor.UserID, s.clock.Now())
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrTaskNotInProgress
		}

		task, err = r.Tasks.FindByID(taskID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.taskTransition(string(domain.TaskStatusDone))
	s.events.publish(Event{Type: EventTaskCompleted, ActorID: actorRef(actor.UserID), Entity: "task", EntityID: task.ID, OccurredAt: s.clock.Now()})
	return task, nil
}

func (s *taskService) Approve(ctx context.Context, actor Identity, taskID uint) (*dto.TaskApprovalResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	var out dto.TaskApprovalResponse
	err := s.store.Atomic(ctx, func(r *repository.Repositories) error {
		t, err := r.Tasks.FindByID(taskID)
		if err != nil {
			return err
		}
		if t.Status != domain.TaskStatusDone {
			return domain.ErrTaskNotApprovable
		}
		if t.AssignedUserID == nil {
			return domain.Validationf("task %d has no assigned worker", t.ID)
		}
		if ids := t.IncompleteStepIDs(); len(ids) > 0 {
			return &domain.IncompleteStepsError{StepIDs: ids}
		}

		now := s.clock.Now()
		ok, err := r.Tasks.MarkApproved(t.ID, now)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrTaskNotApprovable
		}

		earning, err := creditTaskEarning(r, t)
		if err != nil {
			return err
		}

		out.Earning = earning
		out.Task, err = r.Tasks.FindByID(t.ID)
		return err
	})
	s.metrics.ledgerOp("earning", err)
	if err != nil {
		return nil, err
	}

	s.metrics.taskTransition(string(domain.TaskStatusApproved))
	s.events.publish(Event{Type: EventTaskApproved, ActorID: actorRef(actor.UserID), Entity: "task", EntityID: out.Task.ID, OccurredAt: s.clock.Now()})
	return &out, nil
}

func applyStep(step *domain.TaskStep, in dto.TaskStepUpdateRequest) error {
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return domain.Validationf("step title cannot be blank")
		}
		step.Title = title
	}
	if in.Description != nil {
		step.Description = helper.TrimPtr(in.Description)
	}
	if in.Address != nil {
		addr := strings.TrimSpace(*in.Address)
		if addr == "" {
			return domain.Validationf("step address cannot be blank")
		}
		step.Address = addr
	}
	if in.Status != nil {
		status := domain.StepStatus(strings.TrimSpace(*in.Status))
		if !status.Valid() {
			return domain.Validationf("invalid step status %q", *in.Status)
		}
		step.Status = status
	}
	if in.Order != nil {
		if *in.Order < 0 {
			return domain.Validationf("step order cannot be negative")
		}
		step.Order = *in.Order
	}
	return nil
}

// validPrice applies the ledger's amount rules, since the price becomes the earning.
func validPrice(price decimal.Decimal) error {
	if err := validAmount(price); err != nil {
		return domain.Validationf("price must be positive with at most two decimal places")
	}
	return nil
}
