package scheduling

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

type Period string

const (
	Weekly Period = "Weekly"
	Daily  Period = "Daily"
)

// Значения, которые хранила старая версия системы.
var periodAliases = map[string]Period{
	"weekly":      Weekly,
	"daily":       Daily,
	"еженедельно": Weekly,
	"ежедневно":   Daily,
}

func ParsePeriod(s string) (Period, error) {
	if p, ok := periodAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return p, nil
	}
	return "", fmt.Errorf("unknown period %q (want Weekly or Daily)", s)
}

func (p *Period) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := ParsePeriod(s)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

func (p *Period) Scan(src any) error {
	s, err := scanString(src)
	if err != nil {
		return err
	}
	if s == "" {
		*p = ""
		return nil
	}
	v, err := ParsePeriod(s)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

func (p Period) Value() (driver.Value, error) { return string(p), nil }

// Status — состояние задания на устройстве.
type Status string

const (
	StatusPending            Status = "Pending"
	StatusRunning            Status = "Running"
	StatusSucceeded          Status = "Succeeded"
	StatusFailed             Status = "Failed"
	StatusRegisteredOnDevice Status = "RegisteredOnDevice"
)

var statusAliases = map[string]Status{
	"pending":                        StatusPending,
	"running":                        StatusRunning,
	"succeeded":                      StatusSucceeded,
	"failed":                         StatusFailed,
	"registeredondevice":             StatusRegisteredOnDevice,
	"ожидает":                        StatusPending,
	"выполняется":                    StatusRunning,
	"успешно":                        StatusSucceeded,
	"ошибка":                         StatusFailed,
	"зарегистрировано на устройстве": StatusRegisteredOnDevice,
}

// LegacyStatuses и LegacyPeriods нужны миграции старых строк в БД.
var LegacyStatuses = map[string]Status{
	"Ожидает":                        StatusPending,
	"Выполняется":                    StatusRunning,
	"Успешно":                        StatusSucceeded,
	"Ошибка":                         StatusFailed,
	"Зарегистрировано на устройстве": StatusRegisteredOnDevice,
}

var LegacyPeriods = map[string]Period{
	"Еженедельно": Weekly,
	"Ежедневно":   Daily,
}

func ParseStatus(s string) (Status, error) {
	if v, ok := statusAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return v, nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

func (s Status) Terminal() bool { return s == StatusSucceeded || s == StatusFailed }

func (s *Status) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	v, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func (s *Status) Scan(src any) error {
	raw, err := scanString(src)
	if err != nil {
		return err
	}
	if raw == "" {
		*s = ""
		return nil
	}
	v, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func (s Status) Value() (driver.Value, error) { return string(s), nil }

func scanString(src any) (string, error) {
	switch v := src.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", fmt.Errorf("unsupported scan type %T", src)
	}
}
