package models

import (
	"testing"
	"time"

	"feedhub/internal/apperr"
	"feedhub/internal/scheduling"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func ptr[T any](v T) *T { return &v }

func TestEnterprise_Validate(t *testing.T) {
	e := Enterprise{INN: "7707083893", OGRN: "1027700132195", KPP: "773601001", Name: "Ромашка", Address: "Москва"}
	require.NoError(t, e.Validate())

	e.OGRN = "123"
	err := e.Validate()
	assert.ErrorIs(t, err, apperr.ErrData)
	assert.Contains(t, err.Error(), "ogrn")
}

func TestDevice_ValidateSerialLength(t *testing.T) {
	d := Device{SerialNumber: "SN-001"}
	require.NoError(t, d.Validate())

	d.SerialNumber = string(make([]byte, 51))
	assert.ErrorIs(t, d.Validate(), apperr.ErrData)
}

func TestRegularSchedule_ValidateNormalizesDays(t *testing.T) {
	s := RegularSchedule{Period: scheduling.Weekly, Days: datatypes.JSONSlice[int]{5, 1, 3, 3}, Timing: datatypes.NewTime(8, 0, 0, 0)}
	require.NoError(t, s.Validate())
	assert.Equal(t, datatypes.JSONSlice[int]{1, 3, 5}, s.Days)

	daily := RegularSchedule{Period: scheduling.Daily, Days: datatypes.JSONSlice[int]{2}}
	err := daily.Validate()
	assert.ErrorIs(t, err, apperr.ErrData)
}

func TestTaskList_ValidateDefaultsStatus(t *testing.T) {
	task := TaskList{DeviceID: "3b241101-e2bb-4255-8caf-4136c566a962", Cmd: "feed 20g", Timing: time.Now()}
	require.NoError(t, task.Validate())
	assert.Equal(t, scheduling.StatusPending, task.Status)
}

func TestTaskListUpdate_OneOffDetachesSchedule(t *testing.T) {
	task := TaskList{IsRegular: true, RegularTimeID: ptr(uint(4))}
	TaskListUpdate{IsRegular: ptr(false)}.Apply(&task)
	assert.False(t, task.IsRegular)
	assert.Nil(t, task.RegularTimeID)
}

func TestEnterpriseUpdate_OnlySetFields(t *testing.T) {
	e := Enterprise{INN: "7707083893", Name: "old", Address: "addr"}
	EnterpriseUpdate{Name: ptr("new")}.Apply(&e)
	assert.Equal(t, "new", e.Name)
	assert.Equal(t, "addr", e.Address)
	assert.Equal(t, "7707083893", e.INN)
}
