// Package catalog expands named presets into concrete, dated schedule
// segments. It is the only place preset templates are read, so template
// validation lives here and malformed configuration fails before any
// adjustment row is written.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"roster/models"
	"roster/timeutil"
)

// UnknownPresetError reports a preset id that does not exist.
type UnknownPresetError struct {
	PresetID uint
}

func (e *UnknownPresetError) Error() string {
	return fmt.Sprintf("preset %d not found", e.PresetID)
}

// InactivePresetError reports a preset that exists but is disabled, either
// globally or by the caller's enabled-preset allowlist.
type InactivePresetError struct {
	PresetID uint
	Name     string
}

func (e *InactivePresetError) Error() string {
	return fmt.Sprintf("preset %d (%s) is not available here", e.PresetID, e.Name)
}

// Segment is one concrete expansion result: a status over an absolute
// [StartAt, EndAt) interval.
type Segment struct {
	Status  models.SegmentStatus `json:"status"`
	StartAt time.Time            `json:"start_at"`
	EndAt   time.Time            `json:"end_at"`
	Memo    string               `json:"memo"`
}

// Expansion is the full result of applying a preset to a calendar date.
type Expansion struct {
	PresetID uint
	Name     string
	Segments []Segment
	// RepresentativeIndex marks the segment that summarizes the preset in
	// compact views. Display-only; storage treats all segments alike.
	RepresentativeIndex int
}

type Catalog struct {
	db *gorm.DB
	tz *timeutil.Normalizer
}

func New(db *gorm.DB, tz *timeutil.Normalizer) *Catalog {
	return &Catalog{db: db, tz: tz}
}

// Expand resolves a preset id into its ordered segment list for date.
func (c *Catalog) Expand(presetID uint, date string) (*Expansion, error) {
	return c.expand(presetID, date, nil)
}

// ExpandAllowed is Expand restricted to a caller-supplied allowlist of
// enabled preset ids (e.g. the submission page's configuration). A nil map
// means no restriction.
func (c *Catalog) ExpandAllowed(presetID uint, date string, allowed map[uint]bool) (*Expansion, error) {
	return c.expand(presetID, date, allowed)
}

func (c *Catalog) expand(presetID uint, date string, allowed map[uint]bool) (*Expansion, error) {
	var preset models.Preset
	err := c.db.Preload("Segments", func(db *gorm.DB) *gorm.DB {
		return db.Order("position asc")
	}).First(&preset, presetID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &UnknownPresetError{PresetID: presetID}
	}
	if err != nil {
		return nil, err
	}

	if !preset.Enabled || (allowed != nil && !allowed[preset.ID]) {
		return nil, &InactivePresetError{PresetID: preset.ID, Name: preset.Name}
	}
	if len(preset.Segments) == 0 {
		return nil, fmt.Errorf("preset %d (%s) has no segments", preset.ID, preset.Name)
	}

	sort.Slice(preset.Segments, func(i, j int) bool {
		return preset.Segments[i].Position < preset.Segments[j].Position
	})

	exp := &Expansion{
		PresetID:            preset.ID,
		Name:                preset.Name,
		RepresentativeIndex: preset.RepresentativeIndex,
	}
	if exp.RepresentativeIndex < 0 || exp.RepresentativeIndex >= len(preset.Segments) {
		exp.RepresentativeIndex = 0
	}

	for i := range preset.Segments {
		tpl := &preset.Segments[i]
		if err := tpl.Validate(); err != nil {
			return nil, fmt.Errorf("preset %d (%s): %w", preset.ID, preset.Name, err)
		}
		// Templates must also be disjoint among themselves, or one approval
		// would plant overlapping authoritative rows on the same day.
		for j := 0; j < i; j++ {
			prev := &preset.Segments[j]
			if tpl.StartHour < prev.EndHour && prev.StartHour < tpl.EndHour {
				return nil, fmt.Errorf("preset %d (%s): segments %d and %d overlap",
					preset.ID, preset.Name, prev.Position, tpl.Position)
			}
		}
		start, err := c.tz.ToInstant(date, tpl.StartHour)
		if err != nil {
			return nil, err
		}
		end, err := c.tz.ToInstant(date, tpl.EndHour)
		if err != nil {
			return nil, err
		}
		exp.Segments = append(exp.Segments, Segment{
			Status:  tpl.Status,
			StartAt: start,
			EndAt:   end,
			Memo:    renderMemo(tpl.MemoTemplate, preset.Name, date),
		})
	}
	return exp, nil
}

func renderMemo(tpl, presetName, date string) string {
	memo := strings.ReplaceAll(tpl, "{preset}", presetName)
	return strings.ReplaceAll(memo, "{date}", date)
}
