package repo

import (
	"context"
	"time"

	"feedhub/internal/apperr"
	"feedhub/internal/models"
	"feedhub/internal/scheduling"

	"gorm.io/gorm"
)

type TaskStore struct {
	db *gorm.DB
}

func NewTaskStore(db *gorm.DB) *TaskStore {
	return &TaskStore{db: db}
}

const entTask = "task_list"

func (s *TaskStore) checkRefs(tx *gorm.DB, t *models.TaskList) error {
	if err := requireRef(tx, &models.Device{}, entTask, "device_id", "id", t.DeviceID); err != nil {
		return err
	}
	if t.RegularTimeID != nil {
		return requireRef(tx, &models.RegularSchedule{}, entTask, "regular_time_id", "id", *t.RegularTimeID)
	}
	return nil
}

func (s *TaskStore) Create(ctx context.Context, t *models.TaskList) error {
	if err := t.Validate(); err != nil {
		return err
	}
	return transact(ctx, s.db, entTask, func(tx *gorm.DB) error {
		if err := s.checkRefs(tx, t); err != nil {
			return err
		}
		return tx.Create(t).Error
	})
}

func (s *TaskStore) Get(ctx context.Context, id string) (*models.TaskList, error) {
	return get[models.TaskList](ctx, s.db, entTask, "id", id)
}

func (s *TaskStore) List(ctx context.Context) ([]models.TaskList, error) {
	return list[models.TaskList](ctx, s.db, entTask, "timing, id", "")
}

// ListByDevice — задания устройства по времени запуска.
func (s *TaskStore) ListByDevice(ctx context.Context, deviceID string) ([]models.TaskList, error) {
	if _, err := get[models.Device](ctx, s.db, entDevice, "id", deviceID); err != nil {
		return nil, err
	}
	return list[models.TaskList](ctx, s.db, entTask, "timing, id", "device_id = ?", deviceID)
}

func (s *TaskStore) Update(ctx context.Context, id string, u models.TaskListUpdate) (*models.TaskList, error) {
	var out *models.TaskList
	err := transact(ctx, s.db, entTask, func(tx *gorm.DB) error {
		t, err := fetch[models.TaskList](tx, entTask, "id", id)
		if err != nil {
			return err
		}
		u.Apply(t)
		if err := t.Validate(); err != nil {
			return err
		}
		if err := s.checkRefs(tx, t); err != nil {
			return err
		}
		out = t
		return tx.Save(t).Error
	})
	return out, err
}

// SetStatus меняет только статус; переходы не ограничиваются.
func (s *TaskStore) SetStatus(ctx context.Context, id string, status scheduling.Status) (*models.TaskList, error) {
	if _, err := scheduling.ParseStatus(string(status)); err != nil {
		return nil, apperr.Data(entTask, "status", err.Error())
	}
	return s.Update(ctx, id, models.TaskListUpdate{Status: &status})
}

func (s *TaskStore) Delete(ctx context.Context, id string) error {
	return transact(ctx, s.db, entTask, func(tx *gorm.DB) error {
		if _, err := fetch[models.TaskList](tx, entTask, "id", id); err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.TaskList{}).Error
	})
}

// NextRun — ближайший запуск задания после after; ok=false, если запусков больше нет.
func (s *TaskStore) NextRun(ctx context.Context, id string, after time.Time) (next time.Time, ok bool, err error) {
	err = transact(ctx, s.db, entTask, func(tx *gorm.DB) error {
		t, err := fetch[models.TaskList](tx, entTask, "id", id)
		if err != nil {
			return err
		}
		var rule *scheduling.Rule
		if t.IsRegular && t.RegularTimeID != nil {
			r, err := fetch[models.RegularSchedule](tx, entSchedule, "id", *t.RegularTimeID)
			if err != nil {
				return err
			}
			rr := r.Rule()
			rule = &rr
		}
		next, ok, err = scheduling.NextRun(t.Schedule(), rule, after)
		if err != nil {
			return ruleToData(entTask, err)
		}
		return nil
	})
	return next, ok, err
}
