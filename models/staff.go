package models

import (
	"time"
)

// Staff identity is owned by the HR system; this service only needs the id
// and whether the person is still scheduled.
type Staff struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `gorm:"not null;size:200" json:"name"`
	Active    bool      `gorm:"default:true" json:"active"`
}
