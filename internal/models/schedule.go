package models

import (
	"errors"
	"time"

	"feedhub/internal/apperr"
	"feedhub/internal/fieldschema"
	"feedhub/internal/scheduling"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RegularSchedule — регулярное расписание (таблица regular_times).
type RegularSchedule struct {
	ID     uint                     `gorm:"primaryKey" json:"id"`
	Period scheduling.Period        `gorm:"type:varchar(16);not null" json:"period"`
	Days   datatypes.JSONSlice[int] `json:"days"`
	Timing datatypes.Time           `json:"timing"`

	Tasks []TaskList `gorm:"foreignKey:RegularTimeID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

func (RegularSchedule) TableName() string { return "regular_times" }

func (s *RegularSchedule) Rule() scheduling.Rule {
	return scheduling.Rule{Period: s.Period, Days: []int(s.Days), At: time.Duration(s.Timing)}
}

func (s *RegularSchedule) Validate() error {
	s.Days = datatypes.JSONSlice[int](scheduling.Normalize(s.Days))
	if s.Days == nil {
		s.Days = datatypes.JSONSlice[int]{}
	}
	return ruleErr("regular_time", scheduling.ValidateRule(s.Rule()))
}

type RegularScheduleUpdate struct {
	Period *scheduling.Period `json:"period"`
	Days   *[]int             `json:"days"`
	Timing *datatypes.Time    `json:"timing"`
}

func (u RegularScheduleUpdate) Apply(s *RegularSchedule) {
	setIf(&s.Period, u.Period)
	if u.Days != nil {
		s.Days = datatypes.JSONSlice[int](*u.Days)
	}
	setIf(&s.Timing, u.Timing)
}

// TaskList — одна команда для устройства: разовая или по расписанию.
type TaskList struct {
	ID            string            `gorm:"type:char(36);primaryKey" json:"id"`
	DeviceID      string            `gorm:"type:char(36);not null;index" json:"device_id"`
	Cmd           string            `gorm:"type:varchar(255);not null" json:"cmd"`
	IsRegular     bool              `gorm:"not null;default:false" json:"is_regular"`
	Timing        time.Time         `json:"timing"`
	RegularTimeID *uint             `gorm:"index" json:"regular_time_id"`
	Status        scheduling.Status `gorm:"type:varchar(32);not null;default:'Pending'" json:"status"`
}

func (TaskList) TableName() string { return "task_lists" }

func (t *TaskList) BeforeCreate(_ *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

func (t *TaskList) Schedule() scheduling.Task {
	return scheduling.Task{IsRegular: t.IsRegular, Timing: t.Timing, RegularTimeID: t.RegularTimeID, Status: t.Status}
}

func (t *TaskList) Validate() error {
	if t.Status == "" {
		t.Status = scheduling.StatusPending
	}
	v, err := fieldschema.Check(fieldschema.TaskList, map[string]string{"cmd": t.Cmd})
	if err != nil {
		return dataErr("task_list", err)
	}
	t.Cmd = v["cmd"]
	if _, err := uuid.Parse(t.DeviceID); err != nil {
		return apperr.Data("task_list", "device_id", "device_id: must be a UUID")
	}
	return ruleErr("task_list", scheduling.ValidateTask(t.Schedule()))
}

type TaskListUpdate struct {
	DeviceID      *string            `json:"device_id"`
	Cmd           *string            `json:"cmd"`
	IsRegular     *bool              `json:"is_regular"`
	Timing        *time.Time         `json:"timing"`
	RegularTimeID *uint              `json:"regular_time_id"`
	Status        *scheduling.Status `json:"status"`
}

// Apply: перевод задания в разовое (is_regular=false) отвязывает его от расписания.
func (u TaskListUpdate) Apply(t *TaskList) {
	setIf(&t.DeviceID, u.DeviceID)
	setIf(&t.Cmd, u.Cmd)
	setIf(&t.Timing, u.Timing)
	setIf(&t.Status, u.Status)
	if u.IsRegular != nil {
		t.IsRegular = *u.IsRegular
		if !t.IsRegular {
			t.RegularTimeID = nil
		}
	}
	if u.RegularTimeID != nil {
		id := *u.RegularTimeID
		t.RegularTimeID = &id
	}
}

func ruleErr(entity string, err error) error {
	if err == nil {
		return nil
	}
	var re *scheduling.RuleError
	if errors.As(err, &re) {
		return apperr.Data(entity, re.Field, re.Error())
	}
	return apperr.Data(entity, "", err.Error())
}
