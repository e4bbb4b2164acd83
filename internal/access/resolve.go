// Package access resolves external identity-provider roles into internal
// access categories (administrator, moderator, user, ...).
//
// Two sources feed the resolution: the typed role_categories table and the
// older convention of config rows named "<prefix>.roles.<category>" whose
// value lists role names. Both are read as snapshots and resolved by pure
// functions, so the rules can be tested without a database.
package access

import (
	"encoding/json"
	"slices"
	"strings"

	"feedhub/internal/configsvc"
	"feedhub/internal/models"
)

// Unknown — категория пользователя, ни одна роль которого не сопоставлена.
const Unknown = "unknown"

// Mapping — категория → множество внешних ролей.
type Mapping map[string][]string

func (m Mapping) Add(category string, roles ...string) {
	for _, r := range roles {
		if !slices.Contains(m[category], r) {
			m[category] = append(m[category], r)
		}
	}
	slices.Sort(m[category])
}

// Merge добавляет в m все пары из other.
func (m Mapping) Merge(other Mapping) {
	for c, roles := range other {
		m.Add(c, roles...)
	}
}

func FromRows(rows []models.RoleCategory) Mapping {
	m := Mapping{}
	for _, r := range rows {
		m.Add(r.Category, r.Role)
	}
	return m
}

// FromConfigs собирает отображение из настроек-списков вида system.roles.<category>.
// Значения, которые не являются списком строк, пропускаются: для них работает
// только UserCategory.
func FromConfigs(settings []configsvc.Setting) Mapping {
	m := Mapping{}
	for _, s := range settings {
		cat, ok := CategoryOf(s.Name)
		if !ok {
			continue
		}
		var roles []string
		if err := json.Unmarshal(s.Value, &roles); err != nil {
			continue
		}
		m.Add(cat, roles...)
	}
	return m
}

// CategoryOf — третий сегмент имени настройки, если имя относится к ролям.
func CategoryOf(name string) (string, bool) {
	if !strings.Contains(strings.ToLower(name), "roles") {
		return "", false
	}
	parts := strings.Split(name, ".")
	if len(parts) < 3 || parts[2] == "" {
		return "", false
	}
	return parts[2], true
}

// Resolve — категории, в которых встречается хотя бы одна из ролей.
func Resolve(roles []string, m Mapping) []string {
	var out []string
	for cat, members := range m {
		for _, r := range roles {
			if slices.Contains(members, r) {
				out = append(out, cat)
				break
			}
		}
	}
	return finish(out)
}

// UserCategory — разрешение по настройкам: для каждой роли просматриваются
// настройки, в имени которых есть "roles"; если значение содержит роль,
// категорией считается третий сегмент имени.
func UserCategory(roles []string, settings []configsvc.Setting) []string {
	var out []string
	for _, role := range roles {
		for _, s := range settings {
			cat, ok := CategoryOf(s.Name)
			if !ok {
				continue
			}
			if configsvc.Contains(s.Value, role) {
				out = append(out, cat)
			}
		}
	}
	return finish(out)
}

// finish сортирует и убирает повторы; пустой результат — ["unknown"].
func finish(cats []string) []string {
	if len(cats) == 0 {
		return []string{Unknown}
	}
	slices.Sort(cats)
	return slices.Compact(cats)
}

// combine объединяет результаты нескольких источников.
func combine(results ...[]string) []string {
	var out []string
	for _, r := range results {
		for _, c := range r {
			if c != Unknown {
				out = append(out, c)
			}
		}
	}
	return finish(out)
}
