// internal/fieldschema/schema.go
package fieldschema

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

type FieldDef struct {
	Key      string
	Validate func(string) (string, error) // нормализация/проверка одного значения
	Required bool
}

/* ——— validators ——— */

var reDotted = regexp.MustCompile(`^[A-Za-z0-9_\-]+(?:\.[A-Za-z0-9_\-]+)*$`)

// Length проверяет длину в символах (не байтах): varchar(n) в MySQL считает символы.
func Length(min, max int) func(string) (string, error) {
	return func(v string) (string, error) {
		s := strings.TrimSpace(v)
		n := utf8.RuneCountInString(s)
		switch {
		case min == max && n != min:
			return "", fmt.Errorf("must be exactly %d characters", min)
		case n < min:
			return "", fmt.Errorf("must be at least %d characters", min)
		case max > 0 && n > max:
			return "", fmt.Errorf("must be at most %d characters", max)
		}
		return s, nil
	}
}

func NotBlank(max int) func(string) (string, error) {
	check := Length(1, max)
	return func(v string) (string, error) {
		if strings.TrimSpace(v) == "" {
			return "", errors.New("must not be empty")
		}
		return check(v)
	}
}

func DottedName(v string) (string, error) {
	s := strings.TrimSpace(v)
	if s == "" || utf8.RuneCountInString(s) > 255 || !reDotted.MatchString(s) {
		return "", errors.New("must be a dotted name like system.roles.user")
	}
	return s, nil
}

/* ——— catalogs ——— */

var (
	Enterprise = []FieldDef{
		{Key: "inn", Validate: Length(10, 12), Required: true},
		{Key: "ogrn", Validate: Length(13, 15), Required: true},
		{Key: "kpp", Validate: Length(9, 9), Required: true},
		{Key: "name", Validate: NotBlank(255), Required: true},
		{Key: "address", Validate: NotBlank(500), Required: true},
	}
	Branch = []FieldDef{
		{Key: "inn", Validate: Length(10, 12), Required: true},
		{Key: "address", Validate: NotBlank(500), Required: true},
	}
	DeviceModel = []FieldDef{
		{Key: "name", Validate: NotBlank(500), Required: true},
	}
	Device = []FieldDef{
		{Key: "serial_number", Validate: NotBlank(50), Required: true},
	}
	TaskList = []FieldDef{
		{Key: "cmd", Validate: NotBlank(255), Required: true},
	}
	Config = []FieldDef{
		{Key: "name", Validate: DottedName, Required: true},
	}
	RoleCategory = []FieldDef{
		{Key: "category", Validate: NotBlank(64), Required: true},
		{Key: "role", Validate: NotBlank(255), Required: true},
	}
)

// FieldError — ошибка конкретного поля; вызывающий код превращает её в DataError.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string { return fmt.Sprintf("%s: %v", e.Field, e.Err) }
func (e *FieldError) Unwrap() error { return e.Err }

// Check прогоняет значения через каталог и возвращает нормализованные значения.
// Ключи, которых нет в каталоге, не проверяются.
func Check(defs []FieldDef, values map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(values))
	for k, v := range values {
		out[k] = v
	}
	for _, d := range defs {
		v, ok := values[d.Key]
		if !ok || strings.TrimSpace(v) == "" {
			if d.Required {
				return nil, &FieldError{Field: d.Key, Err: errors.New("is required")}
			}
			continue
		}
		norm, err := d.Validate(v)
		if err != nil {
			return nil, &FieldError{Field: d.Key, Err: err}
		}
		out[d.Key] = norm
	}
	return out, nil
}
