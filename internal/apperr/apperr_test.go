package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		in   error
		kind error
	}{
		{"record not found", gorm.ErrRecordNotFound, ErrNotFound},
		{"wrapped not found", fmt.Errorf("load: %w", gorm.ErrRecordNotFound), ErrNotFound},
		{"gorm duplicated key", gorm.ErrDuplicatedKey, ErrIntegrity},
		{"sqlite unique", errors.New("UNIQUE constraint failed: devices.serial_number"), ErrIntegrity},
		{"mysql duplicate", errors.New("Error 1062 (23000): Duplicate entry 'SN-001' for key 'devices.idx'"), ErrIntegrity},
		{"postgres fk", errors.New(`insert violates foreign key constraint "fk_devices"`), ErrIntegrity},
		{"mysql data too long", errors.New("Error 1406: Data too long for column 'cmd'"), ErrData},
		{"anything else", errors.New("connection reset by peer"), ErrUnexpected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Translate(tt.in)
			assert.ErrorIs(t, got, tt.kind)
		})
	}
}

func TestTranslate_KeepsTypedErrors(t *testing.T) {
	in := NotFound("device", "42")
	assert.Same(t, in, Translate(in))
	assert.Nil(t, Translate(nil))
}

func TestError_Message(t *testing.T) {
	err := Referential("device", "model_id", 7)
	assert.Equal(t, "device: model_id 7 does not exist", err.Error())
	assert.ErrorIs(t, err, ErrReferential)

	u := Unexpected(errors.New("boom"))
	assert.ErrorIs(t, u, ErrUnexpected)
	assert.Contains(t, u.Error(), "boom")
}
