package repository

import (
	"time"

	"github.com/SundayYogurt/logistics_service/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TaskFilter struct {
	Status         *domain.TaskStatus
	AssignedUserID *uint
	BusinessID     *uint
}

type TaskRepository interface {
	Create(task *domain.Task) error
	FindByID(taskID uint) (*domain.Task, error)
	List(filter TaskFilter, limit, offset int) ([]domain.Task, error)
	Save(task *domain.Task) error

	// MarkAccepted assigns an issued, unassigned task to userID. It reports
	// false when the task was not in that state.
	MarkAccepted(taskID, userID uint, at time.Time) (bool, error)
	MarkDone(taskID, userID uint, at time.Time) (bool, error)
	MarkApproved(taskID uint, at time.Time) (bool, error)

	FindStep(taskID, stepID uint) (*domain.TaskStep, error)
	SaveStep(step *domain.TaskStep) error
}

type taskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func orderedSteps(db *gorm.DB) *gorm.DB {
	return db.Order("step_order ASC, id ASC")
}

func (t *taskRepository) Create(task *domain.Task) error {
	return t.db.Create(task).Error
}

func (t *taskRepository) FindByID(taskID uint) (*domain.Task, error) {
	var task domain.Task
	if err := t.db.Preload("Steps", orderedSteps).First(&task, taskID).Error; err != nil {
		return nil, notFound(err, domain.ErrTaskNotFound)
	}
	return &task, nil
}

func (t *taskRepository) List(filter TaskFilter, limit, offset int) ([]domain.Task, error) {
	q := t.db.Preload("Steps", orderedSteps).Order("start_datetime ASC, id ASC")
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.AssignedUserID != nil {
		q = q.Where("assigned_user_id = ?", *filter.AssignedUserID)
	}
	if filter.BusinessID != nil {
		q = q.Where("business_id = ?", *filter.BusinessID)
	}

	var tasks []domain.Task
	if err := paginate(q, limit, offset).Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (t *taskRepository) Save(task *domain.Task) error {
	return t.db.Omit(clause.Associations).Save(task).Error
}

func (t *taskRepository) MarkAccepted(taskID, userID uint, at time.Time) (bool, error) {
	res := t.db.Model(&domain.Task{}).
		Where("id = ? AND status = ? AND assigned_user_id IS NULL", taskID, domain.TaskStatusIssued).
		Updates(map[string]any{
			"assigned_user_id": userID,
			"status":           domain.TaskStatusInProgress,
			"accepted_at":      at,
		})
	return res.RowsAffected == 1, res.Error
}

func (t *taskRepository) MarkDone(taskID, userID uint, at time.Time) (bool, error) {
	res := t.db.Model(&domain.Task{}).
		Where("id = ? AND status = ? AND assigned_user_id = ?", taskID, domain.TaskStatusInProgress, userID).
		Updates(map[string]any{
			"status":  domain.TaskStatusDone,
			"done_at": at,
		})
	return res.RowsAffected == 1, res.Error
}

func (t *taskRepository) MarkApproved(taskID uint, at time.Time) (bool, error) {
	res := t.db.Model(&domain.Task{}).
		Where("id = ? AND status = ?", taskID, domain.TaskStatusDone).
		Updates(map[string]any{
			"status":      domain.TaskStatusApproved,
			"approved_at": at,
		})
	return res.RowsAffected == 1, res.Error
}

func (t *taskRepository) FindStep(taskID, stepID uint) (*domain.TaskStep, error) {
	var step domain.TaskStep
	if err := t.db.Where("id = ? AND task_id = ?", stepID, taskID).First(&step).Error; err != nil {
		return nil, notFound(err, domain.ErrStepNotFound)
	}
	return &step, nil
}

func (t *taskRepository) SaveStep(step *domain.TaskStep) error {
	return t.db.Save(step).Error
}
