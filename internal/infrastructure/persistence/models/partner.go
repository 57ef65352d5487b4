package models

import (
	"github.com/erp/returns/internal/domain/partner"
	"github.com/google/uuid"
)

// CustomerModel is the persistence model for the Customer aggregate root.
type CustomerModel struct {
	TenantAggregateModel
	Code             string                 `gorm:"type:varchar(50);not null"`
	Name             string                 `gorm:"type:varchar(200);not null"`
	Email            string                 `gorm:"type:varchar(200)"`
	Locale           string                 `gorm:"type:varchar(10)"`
	Status           partner.CustomerStatus `gorm:"type:varchar(20);not null;default:'active'"`
	ReturnLocationID *uuid.UUID             `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer
func (m *CustomerModel) ToDomain() *partner.Customer {
	return &partner.Customer{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		Code:                m.Code,
		Name:                m.Name,
		Email:               m.Email,
		Locale:              m.Locale,
		Status:              m.Status,
		ReturnLocationID:    m.ReturnLocationID,
	}
}

// CustomerModelFromDomain creates a persistence model from a domain Customer
func CustomerModelFromDomain(c *partner.Customer) *CustomerModel {
	m := &CustomerModel{
		Code:             c.Code,
		Name:             c.Name,
		Email:            c.Email,
		Locale:           c.Locale,
		Status:           c.Status,
		ReturnLocationID: c.ReturnLocationID,
	}
	m.FromDomainTenantAggregateRoot(c.TenantAggregateRoot)
	return m
}
