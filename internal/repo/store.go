package repo

import (
	"context"
	"errors"
	"fmt"

	"feedhub/internal/apperr"
	"feedhub/internal/models"

	"gorm.io/gorm"
)

// DeletePolicy — что делать с заданиями, когда удаляется их владелец.
type DeletePolicy string

const (
	Cascade  DeletePolicy = "cascade"  // удалить зависимые записи в той же транзакции
	Orphan   DeletePolicy = "orphan"   // отвязать задания от расписания
	Restrict DeletePolicy = "restrict" // отказать, пока есть зависимые
)

func ParseDeletePolicy(s string) (DeletePolicy, error) {
	switch p := DeletePolicy(s); p {
	case Cascade, Orphan, Restrict:
		return p, nil
	case "":
		return Cascade, nil
	}
	return "", fmt.Errorf("unknown delete policy %q", s)
}

type Policies struct {
	Schedule DeletePolicy
	Device   DeletePolicy
}

// Stores — все хранилища сущностей поверх одного *gorm.DB.
type Stores struct {
	Enterprises  *EnterpriseStore
	Branches     *BranchStore
	DeviceModels *DeviceModelStore
	Devices      *DeviceStore
	Schedules    *ScheduleStore
	Tasks        *TaskStore
}

func New(db *gorm.DB, p Policies) *Stores {
	if p.Schedule == "" {
		p.Schedule = Cascade
	}
	if p.Device == "" || p.Device == Orphan {
		p.Device = Cascade
	}
	return &Stores{
		Enterprises:  NewEnterpriseStore(db),
		Branches:     NewBranchStore(db),
		DeviceModels: NewDeviceModelStore(db),
		Devices:      NewDeviceStore(db, p.Device),
		Schedules:    NewScheduleStore(db, p.Schedule),
		Tasks:        NewTaskStore(db),
	}
}

// transact выполняет fn в одной транзакции; любая ошибка откатывает всё
// и возвращается уже типизированной.
func transact(ctx context.Context, db *gorm.DB, entity string, fn func(tx *gorm.DB) error) error {
	err := db.WithContext(ctx).Transaction(fn)
	if err == nil {
		return nil
	}
	err = apperr.Translate(err)
	var ae *apperr.Error
	if errors.As(err, &ae) && ae.Entity == "" {
		ae.Entity = entity
	}
	return err
}

func fetch[T any](tx *gorm.DB, entity, col string, id any) (*T, error) {
	var m T
	err := tx.Where(col+" = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound(entity, id)
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func get[T any](ctx context.Context, db *gorm.DB, entity, col string, id any) (*T, error) {
	var out *T
	err := transact(ctx, db, entity, func(tx *gorm.DB) error {
		m, err := fetch[T](tx, entity, col, id)
		out = m
		return err
	})
	return out, err
}

func list[T any](ctx context.Context, db *gorm.DB, entity, order string, query string, args ...any) ([]T, error) {
	out := []T{}
	q := db.WithContext(ctx).Order(order)
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, transactErr(entity, err)
	}
	return out, nil
}

func transactErr(entity string, err error) error {
	err = apperr.Translate(err)
	var ae *apperr.Error
	if errors.As(err, &ae) && ae.Entity == "" {
		ae.Entity = entity
	}
	return err
}

// requireRef — ReferentialError, если строки с таким ключом нет.
func requireRef(tx *gorm.DB, model any, entity, field, col string, id any) error {
	var n int64
	if err := tx.Model(model).Where(col+" = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return apperr.Referential(entity, field, id)
	}
	return nil
}

func count(tx *gorm.DB, model any, query string, args ...any) (int64, error) {
	var n int64
	err := tx.Model(model).Where(query, args...).Count(&n).Error
	return n, err
}

// ── Cascades ────────────────────────────────────────────────
// Удаление идёт снизу вверх, поэтому результат не зависит от того,
// включены ли ON DELETE CASCADE на стороне СУБД.

func cascadeTasks(tx *gorm.DB, query string, args ...any) error {
	return tx.Where(query, args...).Delete(&models.TaskList{}).Error
}

func cascadeDevices(tx *gorm.DB, query string, args ...any) error {
	ids := tx.Model(&models.Device{}).Select("id").Where(query, args...)
	if err := cascadeTasks(tx, "device_id IN (?)", ids); err != nil {
		return err
	}
	return tx.Where(query, args...).Delete(&models.Device{}).Error
}

func cascadeBranches(tx *gorm.DB, query string, args ...any) error {
	ids := tx.Model(&models.Branch{}).Select("id").Where(query, args...)
	if err := cascadeDevices(tx, "filial_id IN (?)", ids); err != nil {
		return err
	}
	return tx.Where(query, args...).Delete(&models.Branch{}).Error
}
