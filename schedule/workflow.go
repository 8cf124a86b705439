package schedule

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"roster/models"
)

// The workflow has two terminal transitions: pending→approved and
// pending→rejected. Approval flips the group authoritative after re-checking
// the overlap invariant under the commit transaction; rejection deletes the
// proposal outright (audit of rejections, if wanted, belongs to an external
// audit log).

// ApproveBatch approves every row of a batch atomically. Approving an
// already-approved batch is a no-op success so callers can retry safely.
func (e *Engine) ApproveBatch(batchID string, approverID uint) error {
	return e.db.Transaction(func(tx *gorm.DB) error {
		rows, err := loadBatch(tx, batchID)
		if err != nil {
			return err
		}
		return approveGroup(tx, rows, approverID)
	})
}

// ApproveAdjustment approves a single adjustment; when the row belongs to a
// batch the whole batch is approved, never a partial group.
func (e *Engine) ApproveAdjustment(id uint, approverID uint) error {
	return e.db.Transaction(func(tx *gorm.DB) error {
		row, err := loadAdjustment(tx, id)
		if err != nil {
			return err
		}
		rows := []models.Adjustment{*row}
		if row.BatchID != nil {
			if rows, err = loadBatch(tx, *row.BatchID); err != nil {
				return err
			}
		}
		return approveGroup(tx, rows, approverID)
	})
}

// approveGroup re-validates the overlap invariant at commit time. Two
// pending batches may freely overlap each other; whichever is approved first
// wins, and the loser fails here with OverlapError, untouched and still
// pending.
func approveGroup(tx *gorm.DB, rows []models.Adjustment, approverID uint) error {
	pending := false
	for i := range rows {
		if rows[i].IsPending {
			pending = true
			break
		}
	}
	if !pending {
		// Terminal state already reached; idempotent retry.
		return nil
	}

	ids := make([]uint, len(rows))
	for i := range rows {
		ids[i] = rows[i].ID
	}
	// The group itself must be internally disjoint before it can become
	// authoritative, whatever path created its rows.
	for i := range rows {
		for j := i + 1; j < len(rows); j++ {
			if rows[i].Overlaps(&rows[j]) {
				return overlapErr(&rows[j])
			}
		}
	}
	approved, err := approvedForDay(tx, rows[0].StaffID, rows[0].Date, ids)
	if err != nil {
		return err
	}
	for i := range rows {
		if conflict := firstOverlap(&rows[i], approved); conflict != nil {
			return overlapErr(&rows[i])
		}
	}

	now := time.Now()
	return tx.Model(&models.Adjustment{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"is_pending":  false,
			"approved_by": approverID,
			"approved_at": now,
		}).Error
}

// RejectBatch deletes every pending row of a batch, or none.
func (e *Engine) RejectBatch(batchID string, reason string) error {
	err := e.db.Transaction(func(tx *gorm.DB) error {
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
	if err != nil {
		return err
	}
	e.lg.Printf("rejected batch %s: %s", batchID, reason)
	return nil
}

// RejectAdjustment deletes a single pending adjustment, or its whole batch
// when it belongs to one.
func (e *Engine) RejectAdjustment(id uint, reason string) error {
	err := e.db.Transaction(func(tx *gorm.DB) error {
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
	if err != nil {
		return err
	}
	e.lg.Printf("rejected adjustment %d: %s", id, reason)
	return nil
}

// GroupRef addresses one approval group: either a batch id or a standalone
// adjustment id.
type GroupRef struct {
	BatchID      string `json:"batch_id,omitempty"`
	AdjustmentID uint   `json:"adjustment_id,omitempty"`
}

func (r GroupRef) String() string {
	if r.BatchID != "" {
		return "batch " + r.BatchID
	}
	return fmt.Sprintf("adjustment %d", r.AdjustmentID)
}

type BulkError struct {
	Ref     string `json:"ref"`
	Message string `json:"message"`
}

type BulkReport struct {
	SuccessCount int         `json:"success_count"`
	FailedCount  int         `json:"failed_count"`
	Errors       []BulkError `json:"errors"`
}

// BulkApprove processes each group in its own transaction. One group's
// failure never aborts or rolls back another's success; failures are
// collected into the report and the loop continues.
func (e *Engine) BulkApprove(refs []GroupRef, approverID uint) BulkReport {
	var report BulkReport
	for _, ref := range refs {
		var err error
		if ref.BatchID != "" {
			err = e.ApproveBatch(ref.BatchID, approverID)
		} else {
			err = e.ApproveAdjustment(ref.AdjustmentID, approverID)
		}
		if err != nil {
			report.FailedCount++
			report.Errors = append(report.Errors, BulkError{Ref: ref.String(), Message: err.Error()})
			continue
		}
		report.SuccessCount++
	}
	e.lg.Printf("bulk approve by %d: %d ok, %d failed", approverID, report.SuccessCount, report.FailedCount)
	return report
}
