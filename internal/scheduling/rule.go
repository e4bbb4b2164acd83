// Package scheduling holds the pure rules behind task lists and recurring
// schedules: what a valid schedule looks like, when it fires next, and which
// combinations of task fields are meaningful. Nothing here touches storage.
package scheduling

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

const day = 24 * time.Hour

// Rule — правило повторения: период, дни недели ISO (1 = понедельник, 7 = воскресенье)
// и время суток как смещение от полуночи.
type Rule struct {
	Period Period
	Days   []int
	At     time.Duration
}

// RuleError описывает, какое поле правила некорректно.
type RuleError struct {
	Field string
	Msg   string
}

func (e *RuleError) Error() string { return fmt.Sprintf("%s: %s", e.Field, e.Msg) }

// Normalize сортирует дни и убирает повторы.
func Normalize(days []int) []int {
	out := slices.Clone(days)
	slices.Sort(out)
	return slices.Compact(out)
}

func ValidateRule(r Rule) error {
	switch r.Period {
	case Weekly:
		if len(r.Days) == 0 {
			return &RuleError{Field: "days", Msg: "weekly schedule needs at least one weekday"}
		}
	case Daily:
		if len(r.Days) != 0 {
			return &RuleError{Field: "days", Msg: "must be empty for a daily schedule"}
		}
	default:
		return &RuleError{Field: "period", Msg: fmt.Sprintf("unknown period %q", r.Period)}
	}
	if len(r.Days) > 7 {
		return &RuleError{Field: "days", Msg: "at most 7 weekdays"}
	}
	for _, d := range r.Days {
		if d < 1 || d > 7 {
			return &RuleError{Field: "days", Msg: fmt.Sprintf("weekday %d out of range 1..7", d)}
		}
	}
	if r.At < 0 || r.At >= day {
		return &RuleError{Field: "timing", Msg: "time of day out of range"}
	}
	return nil
}

// ISOWeekday: понедельник = 1 ... воскресенье = 7.
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

var ErrNoOccurrence = errors.New("schedule has no occurrence")

// NextOccurrence возвращает первое срабатывание строго после after.
// Время считается в локации after; переход через конец недели учитывается.
// Время суток внутри разрыва при переводе часов вперёд сдвигается на конец разрыва.
func NextOccurrence(r Rule, after time.Time) (time.Time, error) {
	if err := ValidateRule(r); err != nil {
		return time.Time{}, err
	}
	h := int(r.At / time.Hour)
	m := int(r.At % time.Hour / time.Minute)
	s := int(r.At % time.Minute / time.Second)
	ns := int(r.At % time.Second)

	y, mon, d := after.Date()
	// сегодня + 7 дней вперёд: слот того же дня недели через неделю тоже допустим
	for i := 0; i <= 7; i++ {
		cand := wallClock(y, mon, d+i, h, m, s, ns, after.Location())
		if !cand.After(after) {
			continue
		}
		if r.Period == Daily || slices.Contains(r.Days, ISOWeekday(cand)) {
			return cand, nil
		}
	}
	return time.Time{}, ErrNoOccurrence
}

// wallClock — момент с заданным временем суток в loc. Если такого времени в этот
// день нет (перевод часов вперёд), берётся первый момент после разрыва.
func wallClock(y int, mon time.Month, d, h, m, s, ns int, loc *time.Location) time.Time {
	t := time.Date(y, mon, d, h, m, s, ns, loc)
	want := time.Date(y, mon, d, h, m, s, ns, time.UTC)
	got := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	switch {
	case got.Before(want):
		// time.Date взял смещение до перевода: разрыв кончается вместе с зоной t
		if _, end := t.ZoneBounds(); !end.IsZero() {
			return end
		}
	case got.After(want):
		if start, _ := t.ZoneBounds(); !start.IsZero() {
			return start
		}
	}
	return t
}

// Occurrences возвращает n последовательных срабатываний после after.
func Occurrences(r Rule, after time.Time, n int) ([]time.Time, error) {
	out := make([]time.Time, 0, n)
	cur := after
	for len(out) < n {
		next, err := NextOccurrence(r, cur)
		if err != nil {
			return nil, err
		}
		out = append(out, next)
		cur = next
	}
	return out, nil
}
