package configsvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"feedhub/internal/apperr"
	"feedhub/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Mode — как запись ложится на существующее значение.
type Mode string

const (
	Merge   Mode = "merge"   // объединение множеств
	Replace Mode = "replace" // перезапись
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", Merge:
		return Merge, nil
	case Replace:
		return Replace, nil
	}
	return "", fmt.Errorf("unknown mode %q (merge | replace)", s)
}

// Setting — настройка в виде простой записи.
type Setting struct {
	ID    uint            `json:"id"`
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
}

func toSetting(c models.Config) Setting {
	v := json.RawMessage(c.Value)
	if len(v) == 0 {
		v = json.RawMessage("null")
	}
	return Setting{ID: c.ID, Name: c.Name, Value: v}
}

type Repo struct{ db *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{db: db} }

// Within возвращает Repo, работающий внутри чужой транзакции.
func (r *Repo) Within(tx *gorm.DB) *Repo { return &Repo{db: tx} }

const entConfig = "config"

// SetSettingValue записывает значение. Существующая строка объединяется
// (Merge) или перезаписывается (Replace); отсутствующая создаётся только
// при force, иначе ConfigNotFound.
func (r *Repo) SetSettingValue(ctx context.Context, name string, value json.RawMessage, force bool, mode Mode) (*Setting, error) {
	if !json.Valid(value) {
		return nil, apperr.Data(entConfig, "value", "value: invalid JSON")
	}
	probe := models.Config{Name: name}
	if err := probe.Validate(); err != nil {
		return nil, err
	}
	name = probe.Name

	var out Setting
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Config
		err := tx.Where("name = ?", name).First(&c).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if !force {
				return apperr.ConfigNotFound(name)
			}
			c = models.Config{Name: name, Value: datatypes.JSON(value)}
			if err := tx.Create(&c).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			next := value
			if mode != Replace {
				merged, err := Union(json.RawMessage(c.Value), value)
				if err != nil {
					return apperr.Data(entConfig, "value", "value: "+err.Error())
				}
				next = merged
			}
			if err := tx.Model(&c).Update("value", datatypes.JSON(next)).Error; err != nil {
				return err
			}
			c.Value = datatypes.JSON(next)
		}
		out = toSetting(c)
		return nil
	})
	if err != nil {
		return nil, withEntity(err)
	}
	return &out, nil
}

func (r *Repo) MergeSetting(ctx context.Context, name string, value json.RawMessage, force bool) (*Setting, error) {
	return r.SetSettingValue(ctx, name, value, force, Merge)
}

func (r *Repo) ReplaceSetting(ctx context.Context, name string, value json.RawMessage, force bool) (*Setting, error) {
	return r.SetSettingValue(ctx, name, value, force, Replace)
}

func (r *Repo) GetSettingByName(ctx context.Context, name string) (*Setting, error) {
	var c models.Config
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound(entConfig, name)
	}
	if err != nil {
		return nil, withEntity(err)
	}
	s := toSetting(c)
	return &s, nil
}

func (r *Repo) GetAllSettings(ctx context.Context) ([]Setting, error) {
	var list []models.Config
	if err := r.db.WithContext(ctx).Order("id").Find(&list).Error; err != nil {
		return nil, withEntity(err)
	}
	out := make([]Setting, 0, len(list))
	for _, c := range list {
		out = append(out, toSetting(c))
	}
	return out, nil
}

// FindByNameLike — настройки, имя которых содержит part (без учёта регистра).
func (r *Repo) FindByNameLike(ctx context.Context, part string) ([]Setting, error) {
	var list []models.Config
	if err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE ?", "%"+strings.ToLower(part)+"%").
		Order("id").
		Find(&list).Error; err != nil {
		return nil, withEntity(err)
	}
	out := make([]Setting, 0, len(list))
	for _, c := range list {
		out = append(out, toSetting(c))
	}
	return out, nil
}

func (r *Repo) DeleteSetting(ctx context.Context, name string) error {
	res := r.db.WithContext(ctx).Where("name = ?", name).Delete(&models.Config{})
	if res.Error != nil {
		return withEntity(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound(entConfig, name)
	}
	return nil
}

func withEntity(err error) error {
	err = apperr.Translate(err)
	var ae *apperr.Error
	if errors.As(err, &ae) && ae.Entity == "" {
		ae.Entity = entConfig
	}
	return err
}
