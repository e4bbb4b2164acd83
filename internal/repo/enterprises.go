package repo

import (
	"context"

	"feedhub/internal/models"

	"gorm.io/gorm"
)

type EnterpriseStore struct {
	db *gorm.DB
}

func NewEnterpriseStore(db *gorm.DB) *EnterpriseStore {
	return &EnterpriseStore{db: db}
}

const entEnterprise = "enterprise"

func (s *EnterpriseStore) Create(ctx context.Context, e *models.Enterprise) error {
	if err := e.Validate(); err != nil {
		return err
	}
	return transact(ctx, s.db, entEnterprise, func(tx *gorm.DB) error {
		return tx.Create(e).Error
	})
}

func (s *EnterpriseStore) Get(ctx context.Context, inn string) (*models.Enterprise, error) {
	return get[models.Enterprise](ctx, s.db, entEnterprise, "inn", inn)
}

func (s *EnterpriseStore) List(ctx context.Context) ([]models.Enterprise, error) {
	return list[models.Enterprise](ctx, s.db, entEnterprise, "inn", "")
}

// Update меняет поля предприятия. Смена ИНН переносится на филиалы
// в той же транзакции.
func (s *EnterpriseStore) Update(ctx context.Context, inn string, u models.EnterpriseUpdate) (*models.Enterprise, error) {
	var out *models.Enterprise
	err := transact(ctx, s.db, entEnterprise, func(tx *gorm.DB) error {
		e, err := fetch[models.Enterprise](tx, entEnterprise, "inn", inn)
		if err != nil {
			return err
		}
		u.Apply(e)
		if err := e.Validate(); err != nil {
			return err
		}
		if err := tx.Model(&models.Enterprise{}).Where("inn = ?", inn).Updates(map[string]any{
			"inn": e.INN, "ogrn": e.OGRN, "kpp": e.KPP, "name": e.Name, "address": e.Address,
		}).Error; err != nil {
			return err
		}
		if e.INN != inn {
			if err := tx.Model(&models.Branch{}).Where("inn = ?", inn).Update("inn", e.INN).Error; err != nil {
				return err
			}
		}
		out = e
		return nil
	})
	return out, err
}

// Delete удаляет предприятие вместе с филиалами, их устройствами и заданиями.
func (s *EnterpriseStore) Delete(ctx context.Context, inn string) error {
	return transact(ctx, s.db, entEnterprise, func(tx *gorm.DB) error {
		if _, err := fetch[models.Enterprise](tx, entEnterprise, "inn", inn); err != nil {
			return err
		}
		if err := cascadeBranches(tx, "inn = ?", inn); err != nil {
			return err
		}
		return tx.Where("inn = ?", inn).Delete(&models.Enterprise{}).Error
	})
}

// ── Branches ────────────────────────────────────────────────

type BranchStore struct {
	db *gorm.DB
}

func NewBranchStore(db *gorm.DB) *BranchStore {
	return &BranchStore{db: db}
}

const entBranch = "filial_enterprise"

func (s *BranchStore) Create(ctx context.Context, b *models.Branch) error {
	if err := b.Validate(); err != nil {
		return err
	}
	return transact(ctx, s.db, entBranch, func(tx *gorm.DB) error {
		if err := requireRef(tx, &models.Enterprise{}, entBranch, "inn", "inn", b.INN); err != nil {
			return err
		}
		return tx.Create(b).Error
	})
}

func (s *BranchStore) Get(ctx context.Context, id uint) (*models.Branch, error) {
	return get[models.Branch](ctx, s.db, entBranch, "id", id)
}

func (s *BranchStore) List(ctx context.Context) ([]models.Branch, error) {
	return list[models.Branch](ctx, s.db, entBranch, "id", "")
}

func (s *BranchStore) ListByEnterprise(ctx context.Context, inn string) ([]models.Branch, error) {
	if _, err := get[models.Enterprise](ctx, s.db, entEnterprise, "inn", inn); err != nil {
		return nil, err
	}
	return list[models.Branch](ctx, s.db, entBranch, "id", "inn = ?", inn)
}

func (s *BranchStore) Update(ctx context.Context, id uint, u models.BranchUpdate) (*models.Branch, error) {
	var out *models.Branch
	err := transact(ctx, s.db, entBranch, func(tx *gorm.DB) error {
		b, err := fetch[models.Branch](tx, entBranch, "id", id)
		if err != nil {
			return err
		}
		u.Apply(b)
		if err := b.Validate(); err != nil {
			return err
		}
		if u.INN != nil {
			if err := requireRef(tx, &models.Enterprise{}, entBranch, "inn", "inn", b.INN); err != nil {
				return err
			}
		}
		out = b
		return tx.Save(b).Error
	})
	return out, err
}

func (s *BranchStore) Delete(ctx context.Context, id uint) error {
	return transact(ctx, s.db, entBranch, func(tx *gorm.DB) error {
		if _, err := fetch[models.Branch](tx, entBranch, "id", id); err != nil {
			return err
		}
		return cascadeBranches(tx, "id = ?", id)
	})
}
