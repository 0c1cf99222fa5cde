package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/helixml/compset/domain/query"
	"github.com/helixml/compset/domain/task"
	"github.com/helixml/compset/internal/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TaskStore implements task.TaskStore using GORM.
type TaskStore struct {
	db     database.Database
	mapper TaskMapper
}

// NewTaskStore creates a new TaskStore.
func NewTaskStore(db database.Database) TaskStore {
	return TaskStore{
		db:     db,
		mapper: TaskMapper{},
	}
}

// Get retrieves a task by ID.
func (s TaskStore) Get(ctx context.Context, id int64) (task.Task, error) {
	var model TaskModel
	result := s.db.Session(ctx).Where("id = ?", id).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return task.Task{}, fmt.Errorf("%w: task id %d", database.ErrNotFound, id)
		}
		return task.Task{}, fmt.Errorf("get task: %w", result.Error)
	}
	return s.mapper.ToDomain(model)
}

// FindPending retrieves pending tasks ordered by priority.
func (s TaskStore) FindPending(ctx context.Context, options ...query.Option) ([]task.Task, error) {
	var models []TaskModel
	db := s.db.Session(ctx).Order("priority DESC, created_at ASC")
	db = database.ApplyOptions(db, options...)
	if result := db.Find(&models); result.Error != nil {
		return nil, fmt.Errorf("find pending tasks: %w", result.Error)
	}

	tasks := make([]task.Task, 0, len(models))
	for _, model := range models {
		t, err := s.mapper.ToDomain(model)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// Save creates a new task or, when the dedup key exists, raises its priority.
func (s TaskStore) Save(ctx context.Context, t task.Task) (task.Task, error) {
	model, err := s.mapper.ToModel(t)
	if err != nil {
		return task.Task{}, err
	}

	result := s.db.Session(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "dedup_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"priority", "updated_at"}),
	}).Create(&model)
	if result.Error != nil {
		return task.Task{}, fmt.Errorf("save task: %w", result.Error)
	}

	var saved TaskModel
	if err := s.db.Session(ctx).Where("dedup_key = ?", model.DedupKey).First(&saved).Error; err != nil {
		return task.Task{}, fmt.Errorf("reload task: %w", err)
	}
	return s.mapper.ToDomain(saved)
}

// Delete removes a task.
func (s TaskStore) Delete(ctx context.Context, t task.Task) error {
	if result := s.db.Session(ctx).Delete(&TaskModel{}, t.ID()); result.Error != nil {
		return fmt.Errorf("delete task: %w", result.Error)
	}
	return nil
}

// CountPending returns the number of pending tasks.
func (s TaskStore) CountPending(ctx context.Context, options ...query.Option) (int64, error) {
	var count int64
	db := database.ApplyConditions(s.db.Session(ctx).Model(&TaskModel{}), options...)
	if result := db.Count(&count); result.Error != nil {
		return 0, fmt.Errorf("count pending tasks: %w", result.Error)
	}
	return count, nil
}

// Dequeue retrieves and removes the highest priority task.
func (s TaskStore) Dequeue(ctx context.Context) (task.Task, bool, error) {
	var model TaskModel

	err := database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		result := tx.Order("priority DESC, created_at ASC, id ASC").First(&model)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return nil
			}
			return result.Error
		}
		return tx.Delete(&model).Error
	})
	if err != nil {
		return task.Task{}, false, fmt.Errorf("dequeue task: %w", err)
	}
	if model.ID == 0 {
		return task.Task{}, false, nil
	}

	t, err := s.mapper.ToDomain(model)
	if err != nil {
		return task.Task{}, false, err
	}
	return t, true, nil
}

// JobStatusStore implements task.StatusStore using GORM.
type JobStatusStore struct {
	db     database.Database
	mapper JobStatusMapper
}

// NewJobStatusStore creates a new JobStatusStore.
func NewJobStatusStore(db database.Database) JobStatusStore {
	return JobStatusStore{db: db, mapper: JobStatusMapper{}}
}

// Save writes the status, replacing the previous run of the same job.
func (s JobStatusStore) Save(ctx context.Context, st task.Status) error {
	model := s.mapper.ToModel(st)
	result := s.db.Session(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "operation"}},
		UpdateAll: true,
	}).Create(&model)
	if result.Error != nil {
		return fmt.Errorf("save job status: %w", result.Error)
	}
	return nil
}

// Get returns the latest run of the job.
func (s JobStatusStore) Get(ctx context.Context, operation task.Operation) (task.Status, error) {
	var model JobStatusModel
	result := s.db.Session(ctx).Where("operation = ?", operation.String()).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return task.Status{}, fmt.Errorf("%w: job status %s", database.ErrNotFound, operation)
		}
		return task.Status{}, fmt.Errorf("get job status: %w", result.Error)
	}
	return s.mapper.ToDomain(model), nil
}

// FindAll returns the latest run of every job that has run.
func (s JobStatusStore) FindAll(ctx context.Context) ([]task.Status, error) {
	var models []JobStatusModel
	if result := s.db.Session(ctx).Order("operation ASC").Find(&models); result.Error != nil {
		return nil, fmt.Errorf("find job status: %w", result.Error)
	}
	statuses := make([]task.Status, len(models))
	for i, m := range models {
		statuses[i] = s.mapper.ToDomain(m)
	}
	return statuses, nil
}
