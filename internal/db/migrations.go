// internal/db/migrations.go
package db

import (
	"fmt"

	"feedhub/internal/logs"
	"feedhub/internal/models"
	"feedhub/internal/scheduling"

	"gorm.io/gorm"
)

// MigrateLegacyEnumValues переводит русские значения status/period прежней схемы
// в канонические английские. Повторный запуск ничего не меняет.
func MigrateLegacyEnumValues(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if tx.Migrator().HasTable(&models.TaskList{}) {
			for old, status := range scheduling.LegacyStatuses {
				res := tx.Model(&models.TaskList{}).Where("status = ?", old).Update("status", string(status))
				if res.Error != nil {
					return fmt.Errorf("task_lists.status %q: %w", old, res.Error)
				}
				if res.RowsAffected > 0 {
					logs.With("db").Infof("task_lists: %d rows %q -> %q", res.RowsAffected, old, status)
				}
			}
		}
		if tx.Migrator().HasTable(&models.RegularSchedule{}) {
			for old, period := range scheduling.LegacyPeriods {
				res := tx.Model(&models.RegularSchedule{}).Where("period = ?", old).Update("period", string(period))
				if res.Error != nil {
					return fmt.Errorf("regular_times.period %q: %w", old, res.Error)
				}
				if res.RowsAffected > 0 {
					logs.With("db").Infof("regular_times: %d rows %q -> %q", res.RowsAffected, old, period)
				}
			}
		}
		return nil
	})
}
