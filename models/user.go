package models

import (
	"time"

	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleApprover Role = "APPROVER"
	RoleEmployee Role = "EMPLOYEE"
)

// User is the account an API caller authenticates as. The schedule engine
// itself never inspects users; it trusts the approver id the transport layer
// extracts from the token.
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Username     string         `gorm:"uniqueIndex;not null;size:100" json:"username"`
	FullName     string         `gorm:"not null;size:200" json:"full_name"`
	PasswordHash string         `gorm:"not null" json:"-"`
	Role         Role           `gorm:"not null;size:20" json:"role"`
	// StaffID links the account to the staff member it schedules for.
	// Approver/admin accounts may have none.
	StaffID *uint `gorm:"index" json:"staff_id"`
}

func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) CanApprove() bool {
	return u.Role == RoleAdmin || u.Role == RoleApprover
}
