// Package apperr describes the error kinds every store operation can return.
//
// Stores return *Error values; callers branch with errors.Is against the
// sentinel kinds and the HTTP boundary maps kinds onto status codes.
package apperr

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrIntegrity      = errors.New("integrity violation")
	ErrData           = errors.New("invalid data")
	ErrUnknownField   = errors.New("unknown field")
	ErrReferential    = errors.New("referenced record does not exist")
	ErrReferenceInUse = errors.New("record is still referenced")
	ErrConfigNotFound = errors.New("config not found")
	ErrUnexpected     = errors.New("unexpected error")
)

type Error struct {
	Kind   error
	Entity string
	Field  string
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Entity != "" {
		b.WriteString(e.Entity)
		b.WriteString(": ")
	}
	if e.Msg != "" {
		b.WriteString(e.Msg)
	} else {
		b.WriteString(e.Kind.Error())
	}
	if e.Err != nil && !errors.Is(e.Kind, ErrData) {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func NotFound(entity string, id any) *Error {
	return &Error{Kind: ErrNotFound, Entity: entity, Msg: fmt.Sprintf("record %v not found", id)}
}

func Integrity(entity, msg string, cause error) *Error {
	return &Error{Kind: ErrIntegrity, Entity: entity, Msg: msg, Err: cause}
}

func Data(entity, field, msg string) *Error {
	return &Error{Kind: ErrData, Entity: entity, Field: field, Msg: msg}
}

func UnknownField(entity, field string) *Error {
	return &Error{Kind: ErrUnknownField, Entity: entity, Field: field,
		Msg: fmt.Sprintf("field %q does not exist", field)}
}

func Referential(entity, field string, id any) *Error {
	return &Error{Kind: ErrReferential, Entity: entity, Field: field,
		Msg: fmt.Sprintf("%s %v does not exist", field, id)}
}

func ReferenceInUse(entity string, id any, dependents string, n int64) *Error {
	return &Error{Kind: ErrReferenceInUse, Entity: entity,
		Msg: fmt.Sprintf("record %v is referenced by %d %s", id, n, dependents)}
}

func ConfigNotFound(name string) *Error {
	return &Error{Kind: ErrConfigNotFound, Entity: "config",
		Msg: fmt.Sprintf("config %q does not exist", name)}
}

func Unexpected(cause error) *Error {
	return &Error{Kind: ErrUnexpected, Msg: "unexpected error", Err: cause}
}

// Translate приводит ошибку gorm/драйвера к одному из видов.
// Уже типизированные ошибки возвращаются как есть.
func Translate(err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &Error{Kind: ErrNotFound, Msg: "record not found"}
	case errors.Is(err, gorm.ErrDuplicatedKey), isDuplicateErr(err):
		return Integrity("", "values must be unique and not empty", err)
	case errors.Is(err, gorm.ErrForeignKeyViolated), isForeignKeyErr(err):
		return Integrity("", "foreign key constraint failed", err)
	case isNotNullErr(err):
		return Integrity("", "values must be unique and not empty", err)
	case isDataErr(err):
		return &Error{Kind: ErrData, Msg: "wrong data type or size", Err: err}
	}
	return Unexpected(err)
}

func isDuplicateErr(err error) bool {
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "duplicate entry") ||
		strings.Contains(s, "unique constraint") ||
		strings.Contains(s, "duplicate key")
}

func isForeignKeyErr(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "foreign key")
}

func isNotNullErr(err error) bool {
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not null constraint") || strings.Contains(s, "cannot be null") ||
		strings.Contains(s, "violates not-null")
}

func isDataErr(err error) bool {
	s := strings.ToLower(err.Error())
	for _, m := range []string{"data too long", "value too long", "out of range", "invalid input syntax", "incorrect", "truncated"} {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
