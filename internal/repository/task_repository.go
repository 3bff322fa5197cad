package repository

import (
	"github.com/hxkterminal/taskboard-api/internal/models"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// List retrieves tasks newest-created-first with filtering and pagination
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	query := r.db.Model(&models.Task{})

	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.AcceptedByUserID != nil {
		acceptanceSubQuery := r.db.Model(&models.TaskAcceptance{}).
			Select("1").
			Where("task_acceptances.task_id = tasks.id").
			Where("task_acceptances.user_id = ?", *filter.AcceptedByUserID)
		query = query.Where("EXISTS (?)", acceptanceSubQuery)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("tasks.created_at DESC")

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		listQuery = listQuery.Offset(offset).Limit(filter.PageSize)
	}

	if err := listQuery.Preload("Publisher").Preload("Acceptances").Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Update updates a task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

// Delete deletes a task and all of its acceptances in one transaction
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.TaskAcceptance{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Task{}, id).Error
	})
}

// CreateAcceptance records a user accepting a task
func (r *GormTaskRepository) CreateAcceptance(acceptance *models.TaskAcceptance) error {
	return r.db.Create(acceptance).Error
}

// FindAcceptance finds the acceptance for a (task, user) pair
func (r *GormTaskRepository) FindAcceptance(taskID, userID uint64) (*models.TaskAcceptance, error) {
	var acceptance models.TaskAcceptance
	if err := r.db.Where("task_id = ? AND user_id = ?", taskID, userID).
		First(&acceptance).Error; err != nil {
		return nil, err
	}
	return &acceptance, nil
}

// CountAcceptances counts the acceptances on a task
func (r *GormTaskRepository) CountAcceptances(taskID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.TaskAcceptance{}).
		Where("task_id = ?", taskID).
		Count(&count).Error
	return count, err
}

// CountOpenAcceptances counts acceptances on a task not yet completed
func (r *GormTaskRepository) CountOpenAcceptances(taskID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.TaskAcceptance{}).
		Where("task_id = ? AND status <> ?", taskID, models.AcceptanceStatusCompleted).
		Count(&count).Error
	return count, err
}

// UpdateAcceptance persists changes to an acceptance
func (r *GormTaskRepository) UpdateAcceptance(acceptance *models.TaskAcceptance) error {
	return r.db.Save(acceptance).Error
}

// DeleteAcceptance hard-deletes the acceptance for a (task, user) pair
func (r *GormTaskRepository) DeleteAcceptance(taskID, userID uint64) error {
	return r.db.Where("task_id = ? AND user_id = ?", taskID, userID).
		Delete(&models.TaskAcceptance{}).Error
}
