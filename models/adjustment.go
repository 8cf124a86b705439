package models

import (
	"time"

	"gorm.io/gorm"
)

// Adjustment is a date-specific concrete schedule segment for one staff
// member. Rows are created pending by submissions (or approved directly by
// administrators), flipped by the approval workflow, and deleted on
// rejection or cancellation.
//
// Invariants maintained by the schedule engine:
//   - Date always equals the local calendar date of StartAt.
//   - StartAt < EndAt.
//   - Approved rows for one staff+date never overlap.
//   - All rows sharing a BatchID have the same StaffID, Date and IsPending.
type Adjustment struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	StaffID   uint           `gorm:"not null;index:idx_adjustments_staff_date" json:"staff_id"`
	Staff     *Staff         `gorm:"foreignKey:StaffID" json:"staff,omitempty"`
	// Date is the canonical local calendar date, derived from StartAt.
	Date        string        `gorm:"not null;size:10;index:idx_adjustments_staff_date" json:"date"`
	Status      SegmentStatus `gorm:"not null;size:20" json:"status"`
	StartAt     time.Time     `gorm:"not null" json:"start_at"`
	EndAt       time.Time     `gorm:"not null" json:"end_at"`
	Memo        string        `gorm:"size:500" json:"memo"`
	IsPending   bool          `gorm:"not null;index" json:"is_pending"`
	PendingType string        `gorm:"size:40" json:"pending_type"`
	// BatchID groups the segments of one composite submission. Nil for
	// single-segment entries.
	BatchID    *string    `gorm:"size:36;index" json:"batch_id"`
	PresetID   *uint      `gorm:"index" json:"preset_id"`
	ApprovedBy *uint      `json:"approved_by"`
	ApprovedAt *time.Time `json:"approved_at"`
}

// Overlaps reports whether the [StartAt, EndAt) intervals of two adjustments
// intersect.
func (a *Adjustment) Overlaps(b *Adjustment) bool {
	return a.StartAt.Before(b.EndAt) && b.StartAt.Before(a.EndAt)
}
