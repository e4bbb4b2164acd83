package scheduling

import (
	"time"
)

// Task — поля задания, от которых зависит расписание.
type Task struct {
	IsRegular     bool
	Timing        time.Time
	RegularTimeID *uint
	Status        Status
}

// ValidateTask проверяет согласованность is_regular / regular_time_id / status.
// Существование расписания проверяет хранилище.
func ValidateTask(t Task) error {
	if _, err := ParseStatus(string(t.Status)); err != nil {
		return &RuleError{Field: "status", Msg: err.Error()}
	}
	if t.IsRegular && t.RegularTimeID == nil {
		return &RuleError{Field: "regular_time_id", Msg: "required for a regular task"}
	}
	if !t.IsRegular && t.RegularTimeID != nil {
		return &RuleError{Field: "regular_time_id", Msg: "must be empty for a one-off task"}
	}
	if t.Timing.IsZero() {
		return &RuleError{Field: "timing", Msg: "is required"}
	}
	return nil
}

// NextRun — ближайший запуск задания строго после after.
// Разовое задание запускается один раз в Timing; регулярное — по правилу,
// но не раньше Timing (якорь). Для завершённых заданий запуска нет.
// rule используется только для регулярных заданий.
func NextRun(t Task, rule *Rule, after time.Time) (time.Time, bool, error) {
	if t.Status.Terminal() {
		return time.Time{}, false, nil
	}
	if !t.IsRegular {
		if t.Timing.After(after) {
			return t.Timing, true, nil
		}
		return time.Time{}, false, nil
	}
	if rule == nil {
		return time.Time{}, false, &RuleError{Field: "regular_time_id", Msg: "schedule is missing"}
	}
	ref := after
	if t.Timing.After(ref) {
		ref = t.Timing.Add(-time.Nanosecond)
	}
	next, err := NextOccurrence(*rule, ref.In(after.Location()))
	if err != nil {
		return time.Time{}, false, err
	}
	return next, true, nil
}

var transitions = map[Status][]Status{
	StatusPending:            {StatusRunning, StatusRegisteredOnDevice, StatusFailed},
	StatusRegisteredOnDevice: {StatusRunning, StatusSucceeded, StatusFailed},
	StatusRunning:            {StatusRegisteredOnDevice, StatusSucceeded, StatusFailed},
}

// CanTransition описывает жизненный цикл задания для диспетчера.
// Хранилище его не применяет: смена статуса на любое значение допустима.
func CanTransition(from, to Status) bool {
	if from == to {
		return !from.Terminal()
	}
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
