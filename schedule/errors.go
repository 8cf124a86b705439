package schedule

import (
	"fmt"
	"time"

	"roster/models"
)

// NotFoundError reports an unknown batch or adjustment reference.
type NotFoundError struct {
	Kind string // "batch" or "adjustment"
	Ref  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.Ref)
}

// OverlapError reports an interval conflict with an already-approved
// adjustment. It is raised both at submission and again at approval commit
// time, because pending batches may race to approval.
type OverlapError struct {
	StaffID uint
	Date    string
	Status  models.SegmentStatus
	StartAt time.Time
	EndAt   time.Time
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("staff %d on %s: %s %s-%s overlaps an approved entry",
		e.StaffID, e.Date, e.Status,
		e.StartAt.Format("15:04"), e.EndAt.Format("15:04"))
}

// DuplicateSubmissionError guards idempotency: the same staff+date+preset
// already has an unresolved pending batch.
type DuplicateSubmissionError struct {
	StaffID  uint
	Date     string
	PresetID uint
}

func (e *DuplicateSubmissionError) Error() string {
	return fmt.Sprintf("staff %d already has a pending submission of preset %d for %s",
		e.StaffID, e.PresetID, e.Date)
}

// AlreadyApprovedError reports an attempt to cancel or reject a group that
// has reached the approved terminal state.
type AlreadyApprovedError struct {
	Ref string
}

func (e *AlreadyApprovedError) Error() string {
	return fmt.Sprintf("%s is already approved and can no longer be withdrawn", e.Ref)
}
