package models

import (
	"feedhub/internal/apperr"
	"feedhub/internal/fieldschema"
)

// Enterprise — юрлицо, владелец филиалов. Первичный ключ — ИНН.
type Enterprise struct {
	INN     string `gorm:"column:inn;type:varchar(12);primaryKey" json:"inn"`
	OGRN    string `gorm:"column:ogrn;type:varchar(15);uniqueIndex;not null" json:"ogrn"`
	KPP     string `gorm:"column:kpp;type:varchar(9);not null" json:"kpp"`
	Name    string `gorm:"type:varchar(255);not null" json:"name"`
	Address string `gorm:"column:address;type:varchar(500);not null" json:"address"`

	Branches []Branch `gorm:"foreignKey:INN;references:INN;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

func (Enterprise) TableName() string { return "enterprises" }

func (e *Enterprise) Validate() error {
	v, err := fieldschema.Check(fieldschema.Enterprise, map[string]string{
		"inn": e.INN, "ogrn": e.OGRN, "kpp": e.KPP, "name": e.Name, "address": e.Address,
	})
	if err != nil {
		return dataErr("enterprise", err)
	}
	e.INN, e.OGRN, e.KPP, e.Name, e.Address = v["inn"], v["ogrn"], v["kpp"], v["name"], v["address"]
	return nil
}

type EnterpriseUpdate struct {
	INN     *string `json:"inn"`
	OGRN    *string `json:"ogrn"`
	KPP     *string `json:"kpp"`
	Name    *string `json:"name"`
	Address *string `json:"address"`
}

func (u EnterpriseUpdate) Apply(e *Enterprise) {
	setIf(&e.INN, u.INN)
	setIf(&e.OGRN, u.OGRN)
	setIf(&e.KPP, u.KPP)
	setIf(&e.Name, u.Name)
	setIf(&e.Address, u.Address)
}

// Branch — филиал предприятия (таблица filial_enterprises).
type Branch struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	INN     string `gorm:"column:inn;type:varchar(12);not null;index" json:"inn"`
	Address string `gorm:"column:address;type:varchar(500);not null" json:"address"`

	Devices []Device `gorm:"foreignKey:FilialID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

func (Branch) TableName() string { return "filial_enterprises" }

func (b *Branch) Validate() error {
	v, err := fieldschema.Check(fieldschema.Branch, map[string]string{"inn": b.INN, "address": b.Address})
	if err != nil {
		return dataErr("branch", err)
	}
	b.INN, b.Address = v["inn"], v["address"]
	return nil
}

type BranchUpdate struct {
	INN     *string `json:"inn"`
	Address *string `json:"address"`
}

func (u BranchUpdate) Apply(b *Branch) {
	setIf(&b.INN, u.INN)
	setIf(&b.Address, u.Address)
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func dataErr(entity string, err error) error {
	if fe, ok := err.(*fieldschema.FieldError); ok {
		return apperr.Data(entity, fe.Field, fe.Error())
	}
	return apperr.Data(entity, "", err.Error())
}
