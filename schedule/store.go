package schedule

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"roster/models"
)

// PendingFilter narrows ListPending. Zero values mean "no restriction";
// From/To are inclusive calendar-date bounds.
type PendingFilter struct {
	From        string
	To          string
	StaffID     uint
	PendingType string
}

// ListPending returns pending adjustments matching the filter, ordered by
// date then start instant, for review screens.
func (e *Engine) ListPending(f PendingFilter) ([]models.Adjustment, error) {
	query := e.db.Preload("Staff").Where("is_pending = ?", true)
	if f.From != "" {
		query = query.Where("date >= ?", f.From)
	}
	if f.To != "" {
		query = query.Where("date <= ?", f.To)
	}
	if f.StaffID > 0 {
		query = query.Where("staff_id = ?", f.StaffID)
	}
	if f.PendingType != "" {
		query = query.Where("pending_type = ?", f.PendingType)
	}

	var rows []models.Adjustment
	if err := query.Order("date asc, start_at asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// approvedForDay loads the approved adjustments for staff+date, excluding
// the given row ids (a group being approved must not conflict with itself).
func approvedForDay(tx *gorm.DB, staffID uint, date string, excludeIDs []uint) ([]models.Adjustment, error) {
	query := tx.Where("staff_id = ? AND date = ? AND is_pending = ?", staffID, date, false)
	if len(excludeIDs) > 0 {
		query = query.Where("id NOT IN ?", excludeIDs)
	}
	var rows []models.Adjustment
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func loadBatch(tx *gorm.DB, batchID string) ([]models.Adjustment, error) {
	var rows []models.Adjustment
	if err := tx.Where("batch_id = ?", batchID).Order("start_at asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &NotFoundError{Kind: "batch", Ref: batchID}
	}
	return rows, nil
}

func loadAdjustment(tx *gorm.DB, id uint) (*models.Adjustment, error) {
	var row models.Adjustment
	err := tx.First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Kind: "adjustment", Ref: fmt.Sprint(id)}
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func firstOverlap(row *models.Adjustment, approved []models.Adjustment) *models.Adjustment {
	for i := range approved {
		if row.Overlaps(&approved[i]) {
			return &approved[i]
		}
	}
	return nil
}

func overlapErr(row *models.Adjustment) *OverlapError {
	return &OverlapError{
		StaffID: row.StaffID,
		Date:    row.Date,
		Status:  row.Status,
		StartAt: row.StartAt,
		EndAt:   row.EndAt,
	}
}
