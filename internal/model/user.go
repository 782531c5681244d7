package model

import (
	"time"

	"gorm.io/gorm"
)

// User roles
const (
	RoleUser      = "USER"
	RoleModerator = "MODERATOR"
	RoleAdmin     = "ADMIN"
)

// User represents a registered account within one tenant. Email is unique
// per tenant, not globally: the same address may register independently
// under different brands.
type User struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	TenantID uint   `json:"tenant_id" gorm:"not null;uniqueIndex:idx_users_email_tenant"`
	Email    string `json:"email" gorm:"type:varchar(100);not null;uniqueIndex:idx_users_email_tenant"`
	Name     string `json:"name" gorm:"type:varchar(100)"`
	Password string `json:"-" gorm:"type:varchar(255)"`
	Role     string `json:"role" gorm:"type:varchar(20);not null;default:'USER'"`

	// Points is a denormalized cache of the PointHistory sum for this user.
	// It is only ever adjusted inside the same transaction that appends the
	// ledger row, via an atomic relative delta.
	Points int `json:"points" gorm:"not null;default:0"`

	Banned            bool `json:"banned" gorm:"not null;default:false"`
	ShowOnLeaderboard bool `json:"show_on_leaderboard" gorm:"not null;default:true"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
