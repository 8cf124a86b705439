package models

import (
	"time"
)

// Contract is the recurring weekly baseline: one optional "HH:MM-HH:MM"
// hour range per weekday. It is maintained by HR imports and read-only here.
type Contract struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	StaffID   uint      `gorm:"uniqueIndex;not null" json:"staff_id"`
	Staff     *Staff    `gorm:"foreignKey:StaffID" json:"staff,omitempty"`
	Monday    *string   `gorm:"size:11" json:"monday"`
	Tuesday   *string   `gorm:"size:11" json:"tuesday"`
	Wednesday *string   `gorm:"size:11" json:"wednesday"`
	Thursday  *string   `gorm:"size:11" json:"thursday"`
	Friday    *string   `gorm:"size:11" json:"friday"`
	Saturday  *string   `gorm:"size:11" json:"saturday"`
	Sunday    *string   `gorm:"size:11" json:"sunday"`
}

// HoursFor returns the configured hour range for a weekday, or nil when the
// contract has no baseline that day.
func (c *Contract) HoursFor(day time.Weekday) *string {
	switch day {
	case time.Monday:
		return c.Monday
	case time.Tuesday:
		return c.Tuesday
	case time.Wednesday:
		return c.Wednesday
	case time.Thursday:
		return c.Thursday
	case time.Friday:
		return c.Friday
	case time.Saturday:
		return c.Saturday
	default:
		return c.Sunday
	}
}
