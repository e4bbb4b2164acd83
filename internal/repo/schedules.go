package repo

import (
	"context"
	"errors"
	"time"

	"feedhub/internal/apperr"
	"feedhub/internal/models"
	"feedhub/internal/scheduling"

	"gorm.io/gorm"
)

type ScheduleStore struct {
	db     *gorm.DB
	policy DeletePolicy
}

func NewScheduleStore(db *gorm.DB, policy DeletePolicy) *ScheduleStore {
	return &ScheduleStore{db: db, policy: policy}
}

const entSchedule = "regular_time"

func (s *ScheduleStore) Create(ctx context.Context, r *models.RegularSchedule) error {
	if err := r.Validate(); err != nil {
		return err
	}
	return transact(ctx, s.db, entSchedule, func(tx *gorm.DB) error {
		return tx.Create(r).Error
	})
}

func (s *ScheduleStore) Get(ctx context.Context, id uint) (*models.RegularSchedule, error) {
	return get[models.RegularSchedule](ctx, s.db, entSchedule, "id", id)
}

func (s *ScheduleStore) List(ctx context.Context) ([]models.RegularSchedule, error) {
	return list[models.RegularSchedule](ctx, s.db, entSchedule, "id", "")
}

func (s *ScheduleStore) Update(ctx context.Context, id uint, u models.RegularScheduleUpdate) (*models.RegularSchedule, error) {
	var out *models.RegularSchedule
	err := transact(ctx, s.db, entSchedule, func(tx *gorm.DB) error {
		r, err := fetch[models.RegularSchedule](tx, entSchedule, "id", id)
		if err != nil {
			return err
		}
		u.Apply(r)
		if err := r.Validate(); err != nil {
			return err
		}
		out = r
		return tx.Save(r).Error
	})
	return out, err
}

// Delete удаляет расписание; судьба ссылающихся заданий зависит от политики:
// cascade — удаляются, orphan — становятся разовыми, restrict — удаление запрещено.
func (s *ScheduleStore) Delete(ctx context.Context, id uint) error {
	return transact(ctx, s.db, entSchedule, func(tx *gorm.DB) error {
		if _, err := fetch[models.RegularSchedule](tx, entSchedule, "id", id); err != nil {
			return err
		}
		switch s.policy {
		case Restrict:
			n, err := count(tx, &models.TaskList{}, "regular_time_id = ?", id)
			if err != nil {
				return err
			}
			if n > 0 {
				return apperr.ReferenceInUse(entSchedule, id, "task_lists", n)
			}
		case Orphan:
			if err := tx.Model(&models.TaskList{}).Where("regular_time_id = ?", id).
				Updates(map[string]any{"regular_time_id": nil, "is_regular": false}).Error; err != nil {
				return err
			}
		default:
			if err := cascadeTasks(tx, "regular_time_id = ?", id); err != nil {
				return err
			}
		}
		return tx.Where("id = ?", id).Delete(&models.RegularSchedule{}).Error
	})
}

// NextOccurrences — до n ближайших срабатываний расписания после after.
func (s *ScheduleStore) NextOccurrences(ctx context.Context, id uint, after time.Time, n int) ([]time.Time, error) {
	if n < 1 {
		n = 1
	}
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	out, err := scheduling.Occurrences(r.Rule(), after, n)
	if err != nil {
		return nil, ruleToData(entSchedule, err)
	}
	return out, nil
}

func ruleToData(entity string, err error) error {
	var re *scheduling.RuleError
	if errors.As(err, &re) {
		return apperr.Data(entity, re.Field, re.Error())
	}
	return apperr.Data(entity, "", err.Error())
}
