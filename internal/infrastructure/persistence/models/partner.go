package models

import (
	"github.com/erp/shopify-sync/internal/domain/partner"
)

// CustomerModel is the persistence model for the Customer domain entity.
type CustomerModel struct {
	NamedModel
	CustomerName      string               `gorm:"type:varchar(140)"`
	ShopifyCustomerID *string              `gorm:"type:varchar(64);uniqueIndex:idx_customer_shopify_id"`
	CustomerGroup     string               `gorm:"type:varchar(140)"`
	Territory         string               `gorm:"type:varchar(140)"`
	CustomerType      partner.CustomerType `gorm:"type:varchar(20);not null;default:'Individual'"`
	SyncWithShopify   bool                 `gorm:"not null;default:false;index"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer entity.
func (m *CustomerModel) ToDomain() *partner.Customer {
	return &partner.Customer{
		Name:              partner.CustomerID(m.Name),
		CustomerName:      m.CustomerName,
		ShopifyCustomerID: m.ShopifyCustomerID,
		CustomerGroup:     m.CustomerGroup,
		Territory:         m.Territory,
		CustomerType:      m.CustomerType,
		SyncWithShopify:   m.SyncWithShopify,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain Customer entity.
func (m *CustomerModel) FromDomain(c *partner.Customer) {
	m.Name = c.Name.String()
	m.CustomerName = c.CustomerName
	m.ShopifyCustomerID = c.ShopifyCustomerID
	m.CustomerGroup = c.CustomerGroup
	m.Territory = c.Territory
	m.CustomerType = c.CustomerType
	m.SyncWithShopify = c.SyncWithShopify
	m.CreatedAt = c.CreatedAt
	m.UpdatedAt = c.UpdatedAt
}

// CustomerModelFromDomain creates a new persistence model from a domain Customer entity.
func CustomerModelFromDomain(c *partner.Customer) *CustomerModel {
	m := &CustomerModel{}
	m.FromDomain(c)
	return m
}

// AddressModel is the persistence model for the Address domain entity.
type AddressModel struct {
	BaseModel
	Name             string              `gorm:"type:varchar(140);not null;uniqueIndex:idx_address_name"`
	CustomerID       string              `gorm:"type:varchar(140);not null;index:idx_address_customer_updated,priority:1"`
	AddressTitle     string              `gorm:"type:varchar(140)"`
	AddressType      partner.AddressType `gorm:"type:varchar(20);not null"`
	AddressLine1     string              `gorm:"type:varchar(255)"`
	AddressLine2     string              `gorm:"type:varchar(255)"`
	City             string              `gorm:"type:varchar(140)"`
	State            string              `gorm:"type:varchar(140)"`
	Pincode          string              `gorm:"type:varchar(20)"`
	Country          string              `gorm:"type:varchar(140)"`
	Phone            string              `gorm:"type:varchar(50)"`
	EmailID          string              `gorm:"type:varchar(255)"`
	ShopifyAddressID *string             `gorm:"type:varchar(64)"`
}

// TableName returns the table name for GORM
func (AddressModel) TableName() string {
	return "addresses"
}

// ToDomain converts the persistence model to a domain Address entity.
func (m *AddressModel) ToDomain() *partner.Address {
	return &partner.Address{
		ID:               m.ID,
		Name:             m.Name,
		CustomerID:       partner.CustomerID(m.CustomerID),
		Title:            m.AddressTitle,
		Type:             m.AddressType,
		Line1:            m.AddressLine1,
		Line2:            m.AddressLine2,
		City:             m.City,
		State:            m.State,
		Pincode:          m.Pincode,
		Country:          m.Country,
		Phone:            m.Phone,
		Email:            m.EmailID,
		ShopifyAddressID: m.ShopifyAddressID,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain Address entity.
func (m *AddressModel) FromDomain(a *partner.Address) {
	m.ID = a.ID
	m.CreatedAt = a.CreatedAt
	m.UpdatedAt = a.UpdatedAt
	m.Name = a.Name
	m.CustomerID = a.CustomerID.String()
	m.AddressTitle = a.Title
	m.AddressType = a.Type
	m.AddressLine1 = a.Line1
	m.AddressLine2 = a.Line2
	m.City = a.City
	m.State = a.State
	m.Pincode = a.Pincode
	m.Country = a.Country
	m.Phone = a.Phone
	m.EmailID = a.Email
	m.ShopifyAddressID = a.ShopifyAddressID
}

// AddressModelFromDomain creates a new persistence model from a domain Address entity.
func AddressModelFromDomain(a *partner.Address) *AddressModel {
	m := &AddressModel{}
	m.FromDomain(a)
	return m
}

// TerritoryModel is the persistence model for the Territory domain entity.
type TerritoryModel struct {
	Name            string `gorm:"type:varchar(140);primary_key"`
	ParentTerritory string `gorm:"type:varchar(140);index"`
	IsGroup         bool   `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (TerritoryModel) TableName() string {
	return "territories"
}

// ToDomain converts the persistence model to a domain Territory.
func (m *TerritoryModel) ToDomain() *partner.Territory {
	return &partner.Territory{
		Name:            m.Name,
		ParentTerritory: m.ParentTerritory,
		IsGroup:         m.IsGroup,
	}
}
