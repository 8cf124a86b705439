package schedule

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"roster/catalog"
	"roster/models"
)

// SegmentInput describes one directly-entered segment (no preset). Hours are
// fractional local wall-clock hours; EndHour may exceed 24 for blocks that
// run past midnight.
type SegmentInput struct {
	Status    models.SegmentStatus
	StartHour float64
	EndHour   float64
	Memo      string
}

// SubmitPreset expands a preset for staff+date and creates one pending
// adjustment row per segment, all sharing a fresh batch id, in a single
// transaction. The expansion is checked against already-approved entries;
// other pending submissions never conflict at this stage.
func (e *Engine) SubmitPreset(staffID uint, date string, presetID uint, pendingType string) (string, error) {
	return e.submitPreset(staffID, date, presetID, pendingType, nil)
}

// SubmitPresetAllowed is SubmitPreset restricted by the caller's
// enabled-preset allowlist.
func (e *Engine) SubmitPresetAllowed(staffID uint, date string, presetID uint, pendingType string, allowed map[uint]bool) (string, error) {
	return e.submitPreset(staffID, date, presetID, pendingType, allowed)
}

func (e *Engine) submitPreset(staffID uint, date string, presetID uint, pendingType string, allowed map[uint]bool) (string, error) {
	exp, err := e.catalog.ExpandAllowed(presetID, date, allowed)
	if err != nil {
		return "", err
	}

	batchID := uuid.NewString()
	err = e.db.Transaction(func(tx *gorm.DB) error {
		var dup int64
		if err := tx.Model(&models.Adjustment{}).
			Where("staff_id = ? AND date = ? AND preset_id = ? AND is_pending = ?", staffID, date, presetID, true).
			Count(&dup).Error; err != nil {
			return err
		}
		if dup > 0 {
			return &DuplicateSubmissionError{StaffID: staffID, Date: date, PresetID: presetID}
		}

		approved, err := approvedForDay(tx, staffID, date, nil)
		if err != nil {
			return err
		}

		rows := make([]models.Adjustment, 0, len(exp.Segments))
		for _, seg := range exp.Segments {
			row := models.Adjustment{
				StaffID:     staffID,
				Date:        e.tz.CalendarDate(seg.StartAt),
				Status:      seg.Status,
				StartAt:     seg.StartAt,
				EndAt:       seg.EndAt,
				Memo:        seg.Memo,
				IsPending:   true,
				PendingType: pendingType,
				BatchID:     &batchID,
				PresetID:    &exp.PresetID,
			}
			if conflict := firstOverlap(&row, approved); conflict != nil {
				return overlapErr(&row)
			}
			rows = append(rows, row)
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return "", err
	}

	e.lg.Printf("submitted batch %s: staff %d, %s, preset %d (%d segments)",
		batchID, staffID, date, presetID, len(exp.Segments))
	return batchID, nil
}

// SubmitDirect creates a single explicit segment with no batch id. It runs
// through the same validation and overlap gates as preset submissions; when
// pending is false (direct administrator entry) the row is authoritative
// immediately and must therefore satisfy the approved-overlap invariant.
func (e *Engine) SubmitDirect(staffID uint, date string, in SegmentInput, pending bool, pendingType string) (uint, error) {
	if !in.Status.Storable() {
		return 0, fmt.Errorf("status %q not in the allowed set", in.Status)
	}
	if in.StartHour >= 24 {
		return 0, fmt.Errorf("segment start %.2f must be before 24:00", in.StartHour)
	}
	start, err := e.tz.ToInstant(date, in.StartHour)
	if err != nil {
		return 0, err
	}
	end, err := e.tz.ToInstant(date, in.EndHour)
	if err != nil {
		return 0, err
	}
	if !start.Before(end) {
		return 0, fmt.Errorf("segment start must precede its end")
	}

	row := models.Adjustment{
		StaffID:     staffID,
		Date:        e.tz.CalendarDate(start),
		Status:      in.Status,
		StartAt:     start,
		EndAt:       end,
		Memo:        in.Memo,
		IsPending:   pending,
		PendingType: pendingType,
	}
	err = e.db.Transaction(func(tx *gorm.DB) error {
		approved, err := approvedForDay(tx, staffID, row.Date, nil)
		if err != nil {
			return err
		}
		if conflict := firstOverlap(&row, approved); conflict != nil {
			return overlapErr(&row)
		}
		return tx.Create(&row).Error
	})
	if err != nil {
		return 0, err
	}
	return row.ID, nil
}

// CancelBatch removes every row of a pending batch, or none. Approved
// batches can no longer be withdrawn.
func (e *Engine) CancelBatch(batchID string) error {
	return e.db.Transaction(func(tx *gorm.DB) error {
		rows, err := loadBatch(tx, batchID)
		if err != nil {
			return err
		}
		for i := range rows {
			if !rows[i].IsPending {
				return &AlreadyApprovedError{Ref: "batch " + batchID}
			}
		}
		return tx.Where("batch_id = ?", batchID).Delete(&models.Adjustment{}).Error
	})
}

// CancelAdjustment removes a single pending adjustment. When the row belongs
// to a batch the whole batch is cancelled, keeping the group atomic.
func (e *Engine) CancelAdjustment(id uint) error {
	return e.db.Transaction(func(tx *gorm.DB) error {
		row, err := loadAdjustment(tx, id)
		if err != nil {
			return err
		}
		if row.BatchID != nil {
			rows, err := loadBatch(tx, *row.BatchID)
			if err != nil {
				return err
			}
			for i := range rows {
				if !rows[i].IsPending {
					return &AlreadyApprovedError{Ref: "batch " + *row.BatchID}
				}
			}
			return tx.Where("batch_id = ?", *row.BatchID).Delete(&models.Adjustment{}).Error
		}
		if !row.IsPending {
			return &AlreadyApprovedError{Ref: fmt.Sprintf("adjustment %d", id)}
		}
		return tx.Delete(row).Error
	})
}

// ExpandPreset re-exports the catalog expansion for callers that preview a
// submission before committing it.
func (e *Engine) ExpandPreset(presetID uint, date string) (*catalog.Expansion, error) {
	return e.catalog.Expand(presetID, date)
}
