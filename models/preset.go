package models

import (
	"fmt"
	"time"
)

// SegmentStatus is the closed set of working statuses a schedule segment can
// carry. StatusUnscheduled only appears in composed output, never in stored
// adjustments or preset templates.
type SegmentStatus string

const (
	StatusOnline      SegmentStatus = "online"
	StatusRemote      SegmentStatus = "remote"
	StatusOff         SegmentStatus = "off"
	StatusMeeting     SegmentStatus = "meeting"
	StatusTrip        SegmentStatus = "trip"
	StatusNightDuty   SegmentStatus = "night-duty"
	StatusUnscheduled SegmentStatus = "unscheduled"
)

// Storable reports whether the status may be written to an adjustment row.
func (s SegmentStatus) Storable() bool {
	switch s {
	case StatusOnline, StatusRemote, StatusOff, StatusMeeting, StatusTrip, StatusNightDuty:
		return true
	}
	return false
}

// Preset is a named template that expands to one or more segments. Presets
// are administrator-edited configuration; the engine treats them as read-only.
type Preset struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `gorm:"uniqueIndex;not null;size:100" json:"name"`
	// Enabled carries no column default on purpose: disabled presets must
	// round-trip as false through gorm's zero-value handling.
	Enabled bool `gorm:"not null" json:"enabled"`
	// RepresentativeIndex picks which segment summarizes the preset in
	// compact single-row views.
	RepresentativeIndex int             `gorm:"not null;default:0" json:"representative_index"`
	Segments            []PresetSegment `gorm:"foreignKey:PresetID;constraint:OnDelete:CASCADE" json:"segments,omitempty"`
}

// PresetSegment is one template row of a preset. Hours are fractional local
// wall-clock hours; EndHour may exceed 24 for blocks that run past midnight.
type PresetSegment struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	PresetID     uint          `gorm:"not null;index" json:"preset_id"`
	Position     int           `gorm:"not null" json:"position"`
	Status       SegmentStatus `gorm:"not null;size:20" json:"status"`
	StartHour    float64       `gorm:"not null" json:"start_hour"`
	EndHour      float64       `gorm:"not null" json:"end_hour"`
	MemoTemplate string        `gorm:"size:200" json:"memo_template"`
}

// Validate rejects malformed templates at the catalog boundary so bad
// configuration never reaches adjustment rows.
func (s *PresetSegment) Validate() error {
	if !s.Status.Storable() {
		return fmt.Errorf("preset segment %d: status %q not in the allowed set", s.Position, s.Status)
	}
	if s.StartHour < 0 || s.StartHour >= 24 {
		return fmt.Errorf("preset segment %d: start hour %.2f out of range [0,24)", s.Position, s.StartHour)
	}
	if s.EndHour <= s.StartHour || s.EndHour > 48 {
		return fmt.Errorf("preset segment %d: end hour %.2f must be in (start,48]", s.Position, s.EndHour)
	}
	return nil
}
