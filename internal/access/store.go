package access

import (
	"context"
	"encoding/json"
	"errors"

	"feedhub/internal/apperr"
	"feedhub/internal/configsvc"
	"feedhub/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LegacyPrefix — префикс настроек, которые по-прежнему читает старый клиент.
const LegacyPrefix = "system.roles."

type Store struct {
	db       *gorm.DB
	settings *configsvc.Repo
}

func NewStore(db *gorm.DB, settings *configsvc.Repo) *Store {
	return &Store{db: db, settings: settings}
}

const entRole = "role_category"

// Categories разрешает роли по обоим источникам.
func (s *Store) Categories(ctx context.Context, roles []string) ([]string, error) {
	rows, err := s.rows(ctx)
	if err != nil {
		return nil, err
	}
	legacy, err := s.settings.FindByNameLike(ctx, "roles")
	if err != nil {
		return nil, err
	}
	return combine(Resolve(roles, FromRows(rows)), UserCategory(roles, legacy)), nil
}

// Mapping — полное отображение категорий: таблица плюс настройки-списки.
func (s *Store) Mapping(ctx context.Context) (Mapping, error) {
	rows, err := s.rows(ctx)
	if err != nil {
		return nil, err
	}
	legacy, err := s.settings.FindByNameLike(ctx, "roles")
	if err != nil {
		return nil, err
	}
	m := FromRows(rows)
	m.Merge(FromConfigs(legacy))
	return m, nil
}

// Bind привязывает роли к категории: пишет в таблицу и объединяет
// с настройкой system.roles.<category>, чтобы её видели старые клиенты.
func (s *Store) Bind(ctx context.Context, category string, roles []string) error {
	if len(roles) == 0 {
		return apperr.Data(entRole, "roles", "roles: at least one role is required")
	}
	pairs := make([]models.RoleCategory, 0, len(roles))
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		rc := models.RoleCategory{Category: category, Role: r}
		if err := rc.Validate(); err != nil {
			return err
		}
		pairs = append(pairs, rc)
		names = append(names, rc.Role)
	}
	value, err := json.Marshal(names)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&pairs).Error; err != nil {
			return err
		}
		_, err := s.settings.Within(tx).MergeSetting(ctx, LegacyPrefix+pairs[0].Category, value, true)
		return err
	})
	return translate(err)
}

// Unbind снимает роль с категории в обоих источниках.
func (s *Store) Unbind(ctx context.Context, category, role string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("category = ? AND role = ?", category, role).Delete(&models.RoleCategory{})
		if res.Error != nil {
			return res.Error
		}
		removed := res.RowsAffected > 0

		settings := s.settings.Within(tx)
		legacy, err := settings.GetSettingByName(ctx, LegacyPrefix+category)
		switch {
		case errors.Is(err, apperr.ErrNotFound):
		case err != nil:
			return err
		default:
			var roles []string
			if json.Unmarshal(legacy.Value, &roles) == nil {
				kept := roles[:0]
				for _, r := range roles {
					if r != role {
						kept = append(kept, r)
					}
				}
				if len(kept) != len(roles) {
					removed = true
					value, err := json.Marshal(kept)
					if err != nil {
						return err
					}
					if _, err := settings.ReplaceSetting(ctx, legacy.Name, value, false); err != nil {
						return err
					}
				}
			}
		}
		if !removed {
			return apperr.NotFound(entRole, category+"/"+role)
		}
		return nil
	})
	return translate(err)
}

func (s *Store) rows(ctx context.Context) ([]models.RoleCategory, error) {
	var rows []models.RoleCategory
	if err := s.db.WithContext(ctx).Order("category, role").Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	return rows, nil
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	err = apperr.Translate(err)
	var ae *apperr.Error
	if errors.As(err, &ae) && ae.Entity == "" {
		ae.Entity = entRole
	}
	return err
}
