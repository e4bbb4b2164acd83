package models

import (
	"feedhub/internal/fieldschema"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DeviceModel struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"type:varchar(500);not null" json:"name"`

	Devices []Device `gorm:"foreignKey:ModelID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

func (DeviceModel) TableName() string { return "device_models" }

func (m *DeviceModel) Validate() error {
	v, err := fieldschema.Check(fieldschema.DeviceModel, map[string]string{"name": m.Name})
	if err != nil {
		return dataErr("device_model", err)
	}
	m.Name = v["name"]
	return nil
}

type DeviceModelUpdate struct {
	Name *string `json:"name"`
}

func (u DeviceModelUpdate) Apply(m *DeviceModel) { setIf(&m.Name, u.Name) }

// Device — кормушка, установленная в филиале.
type Device struct {
	ID           string `gorm:"type:char(36);primaryKey" json:"id"`
	ModelID      uint   `gorm:"not null;index" json:"model_id"`
	FilialID     uint   `gorm:"not null;index" json:"filial_id"`
	SerialNumber string `gorm:"type:varchar(50);uniqueIndex;not null" json:"serial_number"`

	Tasks []TaskList `gorm:"foreignKey:DeviceID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

func (Device) TableName() string { return "devices" }

// BeforeCreate генерирует UUID, если клиент его не передал.
func (d *Device) BeforeCreate(_ *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

func (d *Device) Validate() error {
	v, err := fieldschema.Check(fieldschema.Device, map[string]string{"serial_number": d.SerialNumber})
	if err != nil {
		return dataErr("device", err)
	}
	d.SerialNumber = v["serial_number"]
	return nil
}

type DeviceUpdate struct {
	ModelID      *uint   `json:"model_id"`
	FilialID     *uint   `json:"filial_id"`
	SerialNumber *string `json:"serial_number"`
}

func (u DeviceUpdate) Apply(d *Device) {
	setIf(&d.ModelID, u.ModelID)
	setIf(&d.FilialID, u.FilialID)
	setIf(&d.SerialNumber, u.SerialNumber)
}
