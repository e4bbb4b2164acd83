package models

import (
	"feedhub/internal/fieldschema"

	"gorm.io/datatypes"
)

// Config — именованная настройка; name — путь через точку (system.roles.user).
type Config struct {
	ID    uint           `gorm:"primaryKey" json:"id"`
	Name  string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Value datatypes.JSON `json:"value"`
}

func (Config) TableName() string { return "configs" }

func (c *Config) Validate() error {
	v, err := fieldschema.Check(fieldschema.Config, map[string]string{"name": c.Name})
	if err != nil {
		return dataErr("config", err)
	}
	c.Name = v["name"]
	return nil
}

// RoleCategory — явное соответствие «категория доступа → внешняя роль».
type RoleCategory struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Category string `gorm:"type:varchar(64);not null;uniqueIndex:ux_role_category,priority:1" json:"category"`
	Role     string `gorm:"type:varchar(255);not null;uniqueIndex:ux_role_category,priority:2" json:"role"`
}

func (RoleCategory) TableName() string { return "role_categories" }

func (rc *RoleCategory) Validate() error {
	v, err := fieldschema.Check(fieldschema.RoleCategory, map[string]string{"category": rc.Category, "role": rc.Role})
	if err != nil {
		return dataErr("role_category", err)
	}
	rc.Category, rc.Role = v["category"], v["role"]
	return nil
}

// All — порядок важен для AutoMigrate: владельцы раньше зависимых.
func All() []any {
	return []any{
		&Enterprise{},
		&Branch{},
		&DeviceModel{},
		&Device{},
		&RegularSchedule{},
		&TaskList{},
		&Config{},
		&RoleCategory{},
	}
}
