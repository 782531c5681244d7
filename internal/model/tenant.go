package model

import (
	"time"

	"gorm.io/gorm"
)

// Tenant statuses
const (
	TenantStatusActive    = "ACTIVE"
	TenantStatusInactive  = "INACTIVE"
	TenantStatusSuspended = "SUSPENDED"
)

// Tenant represents an isolated brand of the marketplace, reachable on its
// own subdomain or custom domain. This is the core of the multi-tenant
// architecture: every tenant-owned row carries TenantID and its natural key
// is unique only within the tenant.
type Tenant struct {
	ID           uint    `json:"id" gorm:"primaryKey"`
	Name         string  `json:"name" gorm:"type:varchar(100);not null"`
	Subdomain    string  `json:"subdomain" gorm:"type:varchar(63);uniqueIndex;not null"`
	CustomDomain *string `json:"custom_domain,omitempty" gorm:"type:varchar(255);uniqueIndex"`
	Status       string  `json:"status" gorm:"type:varchar(20);not null;default:'ACTIVE';index"`

	// Branding, display-only
	BrandName       string `json:"brand_name" gorm:"type:varchar(100)"`
	Tagline         string `json:"tagline" gorm:"type:varchar(255)"`
	Description     string `json:"description" gorm:"type:text"`
	Logo            string `json:"logo" gorm:"type:varchar(255)"`
	Favicon         string `json:"favicon" gorm:"type:varchar(255)"`
	PrimaryColor    string `json:"primary_color" gorm:"type:varchar(20);default:'#3b82f6'"`
	SecondaryColor  string `json:"secondary_color" gorm:"type:varchar(20);default:'#1e40af'"`
	AccentColor     string `json:"accent_color" gorm:"type:varchar(20);default:'#10b981'"`
	MetaTitle       string `json:"meta_title" gorm:"type:varchar(255)"`
	MetaDescription string `json:"meta_description" gorm:"type:varchar(255)"`

	OwnerEmail string `json:"owner_email" gorm:"type:varchar(100)"`
	OwnerName  string `json:"owner_name" gorm:"type:varchar(100)"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
