package repo

import (
	"context"

	"feedhub/internal/apperr"
	"feedhub/internal/models"

	"gorm.io/gorm"
)

type DeviceModelStore struct {
	db *gorm.DB
}

func NewDeviceModelStore(db *gorm.DB) *DeviceModelStore {
	return &DeviceModelStore{db: db}
}

const entDeviceModel = "device_model"

func (s *DeviceModelStore) Create(ctx context.Context, m *models.DeviceModel) error {
	if err := m.Validate(); err != nil {
		return err
	}
	return transact(ctx, s.db, entDeviceModel, func(tx *gorm.DB) error {
		return tx.Create(m).Error
	})
}

func (s *DeviceModelStore) Get(ctx context.Context, id uint) (*models.DeviceModel, error) {
	return get[models.DeviceModel](ctx, s.db, entDeviceModel, "id", id)
}

func (s *DeviceModelStore) List(ctx context.Context) ([]models.DeviceModel, error) {
	return list[models.DeviceModel](ctx, s.db, entDeviceModel, "id", "")
}

func (s *DeviceModelStore) Update(ctx context.Context, id uint, u models.DeviceModelUpdate) (*models.DeviceModel, error) {
	var out *models.DeviceModel
	err := transact(ctx, s.db, entDeviceModel, func(tx *gorm.DB) error {
		m, err := fetch[models.DeviceModel](tx, entDeviceModel, "id", id)
		if err != nil {
			return err
		}
		u.Apply(m)
		if err := m.Validate(); err != nil {
			return err
		}
		out = m
		return tx.Save(m).Error
	})
	return out, err
}

// Delete удаляет модель и все устройства этой модели с их заданиями.
func (s *DeviceModelStore) Delete(ctx context.Context, id uint) error {
	return transact(ctx, s.db, entDeviceModel, func(tx *gorm.DB) error {
		if _, err := fetch[models.DeviceModel](tx, entDeviceModel, "id", id); err != nil {
			return err
		}
		if err := cascadeDevices(tx, "model_id = ?", id); err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.DeviceModel{}).Error
	})
}

// ── Devices ─────────────────────────────────────────────────

type DeviceStore struct {
	db     *gorm.DB
	policy DeletePolicy
}

func NewDeviceStore(db *gorm.DB, policy DeletePolicy) *DeviceStore {
	return &DeviceStore{db: db, policy: policy}
}

const entDevice = "device"

func (s *DeviceStore) checkRefs(tx *gorm.DB, d *models.Device) error {
	if err := requireRef(tx, &models.DeviceModel{}, entDevice, "model_id", "id", d.ModelID); err != nil {
		return err
	}
	return requireRef(tx, &models.Branch{}, entDevice, "filial_id", "id", d.FilialID)
}

func (s *DeviceStore) Create(ctx context.Context, d *models.Device) error {
	if err := d.Validate(); err != nil {
		return err
	}
	return transact(ctx, s.db, entDevice, func(tx *gorm.DB) error {
		if err := s.checkRefs(tx, d); err != nil {
			return err
		}
		return tx.Create(d).Error
	})
}

func (s *DeviceStore) Get(ctx context.Context, id string) (*models.Device, error) {
	return get[models.Device](ctx, s.db, entDevice, "id", id)
}

func (s *DeviceStore) List(ctx context.Context) ([]models.Device, error) {
	return list[models.Device](ctx, s.db, entDevice, "serial_number", "")
}

func (s *DeviceStore) ListByBranch(ctx context.Context, filialID uint) ([]models.Device, error) {
	if _, err := get[models.Branch](ctx, s.db, entBranch, "id", filialID); err != nil {
		return nil, err
	}
	return list[models.Device](ctx, s.db, entDevice, "serial_number", "filial_id = ?", filialID)
}

func (s *DeviceStore) Update(ctx context.Context, id string, u models.DeviceUpdate) (*models.Device, error) {
	var out *models.Device
	err := transact(ctx, s.db, entDevice, func(tx *gorm.DB) error {
		d, err := fetch[models.Device](tx, entDevice, "id", id)
		if err != nil {
			return err
		}
		u.Apply(d)
		if err := d.Validate(); err != nil {
			return err
		}
		if err := s.checkRefs(tx, d); err != nil {
			return err
		}
		out = d
		return tx.Save(d).Error
	})
	return out, err
}

// Delete удаляет устройство. При политике restrict устройство с заданиями
// не удаляется.
func (s *DeviceStore) Delete(ctx context.Context, id string) error {
	return transact(ctx, s.db, entDevice, func(tx *gorm.DB) error {
		if _, err := fetch[models.Device](tx, entDevice, "id", id); err != nil {
			return err
		}
		if s.policy == Restrict {
			n, err := count(tx, &models.TaskList{}, "device_id = ?", id)
			if err != nil {
				return err
			}
			if n > 0 {
				return apperr.ReferenceInUse(entDevice, id, "task_lists", n)
			}
		}
		return cascadeDevices(tx, "id = ?", id)
	})
}
