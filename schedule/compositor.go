package schedule

import (
	"errors"
	"sort"
	"time"

	"gorm.io/gorm"

	"roster/models"
	"roster/timeutil"
)

// Layer names which source produced a composed span.
type Layer string

const (
	LayerContract   Layer = "contract"
	LayerAdjustment Layer = "adjustment"
)

// Span is one slice of the composed daily timeline.
type Span struct {
	Status  models.SegmentStatus `json:"status"`
	StartAt time.Time            `json:"start_at"`
	EndAt   time.Time            `json:"end_at"`
	Source  Layer                `json:"source"`
}

// ComposedSchedule merges the contract baseline with the approved
// adjustments for staff+date into the authoritative timeline: ordered,
// non-overlapping, covering the whole local day with explicit unscheduled
// spans where neither layer applies. Adjustments always win over the
// baseline; among themselves they are already non-overlapping, enforced at
// approval time. Pending rows are invisible here.
func (e *Engine) ComposedSchedule(staffID uint, date string) ([]Span, error) {
	dayStart, dayEnd, err := e.tz.DayWindow(date)
	if err != nil {
		return nil, err
	}

	spans, err := e.contractBaseline(staffID, date, dayStart)
	if err != nil {
		return nil, err
	}

	approved, err := approvedForDay(e.db, staffID, date, nil)
	if err != nil {
		return nil, err
	}
	sort.Slice(approved, func(i, j int) bool {
		return approved[i].StartAt.Before(approved[j].StartAt)
	})
	for i := range approved {
		adj := &approved[i]
		spans = overlay(spans, Span{
			Status:  adj.Status,
			StartAt: adj.StartAt,
			EndAt:   adj.EndAt,
			Source:  LayerAdjustment,
		})
	}

	return fillGaps(spans, dayStart, dayEnd), nil
}

// contractBaseline builds the low-precedence layer: one online span over the
// weekday's configured hour range, nothing when the contract is absent or
// silent for that day.
func (e *Engine) contractBaseline(staffID uint, date string, dayStart time.Time) ([]Span, error) {
	var contract models.Contract
	err := e.db.Where("staff_id = ?", staffID).First(&contract).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	weekday, err := e.tz.Weekday(date)
	if err != nil {
		return nil, err
	}
	hours := contract.HoursFor(weekday)
	if hours == nil {
		return nil, nil
	}
	startHour, endHour, err := timeutil.ParseHourRange(*hours)
	if err != nil {
		return nil, err
	}
	start := dayStart.Add(time.Duration(startHour * float64(time.Hour)))
	end := dayStart.Add(time.Duration(endHour * float64(time.Hour)))
	return []Span{{Status: models.StatusOnline, StartAt: start, EndAt: end, Source: LayerContract}}, nil
}

// overlay carves next's interval out of every existing span, splitting where
// needed, then inserts next in order.
func overlay(spans []Span, next Span) []Span {
	out := make([]Span, 0, len(spans)+2)
	for _, s := range spans {
		if !s.StartAt.Before(next.EndAt) || !next.StartAt.Before(s.EndAt) {
			out = append(out, s)
			continue
		}
		if s.StartAt.Before(next.StartAt) {
			left := s
			left.EndAt = next.StartAt
			out = append(out, left)
		}
		if next.EndAt.Before(s.EndAt) {
			right := s
			right.StartAt = next.EndAt
			out = append(out, right)
		}
	}
	out = append(out, next)
	sort.Slice(out, func(i, j int) bool { return out[i].StartAt.Before(out[j].StartAt) })
	return out
}

// fillGaps turns the sparse span list into a gap-free partition of
// [dayStart, dayEnd), extended when a span overruns midnight. Uncovered time
// becomes explicit unscheduled spans so consumers never infer absence.
func fillGaps(spans []Span, dayStart, dayEnd time.Time) []Span {
	end := dayEnd
	for _, s := range spans {
		if s.EndAt.After(end) {
			end = s.EndAt
		}
	}

	out := make([]Span, 0, 2*len(spans)+1)
	cursor := dayStart
	for _, s := range spans {
		if cursor.Before(s.StartAt) {
			out = append(out, Span{
				Status:  models.StatusUnscheduled,
				StartAt: cursor,
				EndAt:   s.StartAt,
				Source:  LayerContract,
			})
		}
		out = append(out, s)
		cursor = s.EndAt
	}
	if cursor.Before(end) {
		out = append(out, Span{
			Status:  models.StatusUnscheduled,
			StartAt: cursor,
			EndAt:   end,
			Source:  LayerContract,
		})
	}
	return out
}
