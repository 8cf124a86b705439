package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"roster/catalog"
	"roster/middleware"
	"roster/models"
	"roster/schedule"
	"roster/timeutil"
)

type ScheduleHandler struct {
	engine *schedule.Engine
	// allowedPresets is this surface's enabled-preset allowlist, owned by
	// deployment configuration. Nil means no restriction.
	allowedPresets map[uint]bool
}

func NewScheduleHandler(engine *schedule.Engine, enabledPresetIDs []uint) *ScheduleHandler {
	var allowed map[uint]bool
	if len(enabledPresetIDs) > 0 {
		allowed = make(map[uint]bool, len(enabledPresetIDs))
		for _, id := range enabledPresetIDs {
			allowed[id] = true
		}
	}
	return &ScheduleHandler{engine: engine, allowedPresets: allowed}
}

type submitRequest struct {
	StaffID     uint   `json:"staff_id"`
	Date        string `json:"date"`
	PresetID    uint   `json:"preset_id"`
	PendingType string `json:"pending_type"`
	// Segment is the explicit single-segment alternative to a preset.
	Segment *segmentRequest `json:"segment"`
}

type segmentRequest struct {
	Status    models.SegmentStatus `json:"status"`
	StartHour float64              `json:"start_hour"`
	EndHour   float64              `json:"end_hour"`
	Memo      string               `json:"memo"`
}

// SubmitPending creates a pending batch from a preset, or a single pending
// adjustment from an explicit segment.
func (h *ScheduleHandler) SubmitPending(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.StaffID == 0 || req.Date == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "staff_id and date are required"})
		return
	}

	if req.PresetID > 0 {
		batchID, err := h.engine.SubmitPresetAllowed(req.StaffID, req.Date, req.PresetID, req.PendingType, h.allowedPresets)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"batch_id": batchID})
		return
	}

	if req.Segment == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "preset_id or segment is required"})
		return
	}
	id, err := h.engine.SubmitDirect(req.StaffID, req.Date, schedule.SegmentInput{
		Status:    req.Segment.Status,
		StartHour: req.Segment.StartHour,
		EndHour:   req.Segment.EndHour,
		Memo:      req.Segment.Memo,
	}, true, req.PendingType)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]uint{"adjustment_id": id})
}

func (h *ScheduleHandler) CancelBatch(w http.ResponseWriter, r *http.Request) {
	batchID := chi.URLParam(r, "batchID")
	if err := h.engine.CancelBatch(batchID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

func (h *ScheduleHandler) CancelAdjustment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid adjustment id"})
		return
	}
	if err := h.engine.CancelAdjustment(uint(id)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

func (h *ScheduleHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	filter := schedule.PendingFilter{
		From:        r.URL.Query().Get("from"),
		To:          r.URL.Query().Get("to"),
		PendingType: r.URL.Query().Get("pending_type"),
	}
	if s := r.URL.Query().Get("staff_id"); s != "" {
		if sid, err := strconv.ParseUint(s, 10, 32); err == nil {
			filter.StaffID = uint(sid)
		}
	}

	rows, err := h.engine.ListPending(filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"adjustments": rows})
}

// PreviewPreset expands a preset for a date without writing anything, so
// submission forms can show the segments and the representative summary row.
func (h *ScheduleHandler) PreviewPreset(w http.ResponseWriter, r *http.Request) {
	presetID, err := strconv.ParseUint(chi.URLParam(r, "presetID"), 10, 32)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid preset id"})
		return
	}
	date := chi.URLParam(r, "date")

	exp, err := h.engine.ExpandPreset(uint(presetID), date)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"preset_id":            exp.PresetID,
		"name":                 exp.Name,
		"date":                 date,
		"segments":             exp.Segments,
		"representative_index": exp.RepresentativeIndex,
	})
}

func (h *ScheduleHandler) ComposedSchedule(w http.ResponseWriter, r *http.Request) {
	staffID, err := strconv.ParseUint(chi.URLParam(r, "staffID"), 10, 32)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid staff id"})
		return
	}
	date := chi.URLParam(r, "date")

	spans, err := h.engine.ComposedSchedule(uint(staffID), date)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"staff_id": staffID,
		"date":     date,
		"spans":    spans,
	})
}

type approvalRequest struct {
	BatchID      string `json:"batch_id"`
	AdjustmentID uint   `json:"adjustment_id"`
	Reason       string `json:"reason"`
}

func (h *ScheduleHandler) Approve(w http.ResponseWriter, r *http.Request) {
	approver := middleware.GetUserFromContext(r.Context())
	if approver == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	var req approvalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	var err error
	switch {
	case req.BatchID != "":
		err = h.engine.ApproveBatch(req.BatchID, approver.ID)
	case req.AdjustmentID > 0:
		err = h.engine.ApproveAdjustment(req.AdjustmentID, approver.ID)
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "batch_id or adjustment_id is required"})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "approved"})
}

func (h *ScheduleHandler) Reject(w http.ResponseWriter, r *http.Request) {
	var req approvalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	var err error
	switch {
	case req.BatchID != "":
		err = h.engine.RejectBatch(req.BatchID, req.Reason)
	case req.AdjustmentID > 0:
		err = h.engine.RejectAdjustment(req.AdjustmentID, req.Reason)
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "batch_id or adjustment_id is required"})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "rejected"})
}

type bulkApproveRequest struct {
	Items []schedule.GroupRef `json:"items"`
}

func (h *ScheduleHandler) BulkApprove(w http.ResponseWriter, r *http.Request) {
	approver := middleware.GetUserFromContext(r.Context())
	if approver == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	var req bulkApproveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if len(req.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "items is required"})
		return
	}

	report := h.engine.BulkApprove(req.Items, approver.ID)
	writeJSON(w, http.StatusOK, report)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps the engine's typed failures onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	var (
		timeErr     *timeutil.TimeFormatError
		unknownErr  *catalog.UnknownPresetError
		inactiveErr *catalog.InactivePresetError
		notFound    *schedule.NotFoundError
		overlap     *schedule.OverlapError
		dup         *schedule.DuplicateSubmissionError
		approvedErr *schedule.AlreadyApprovedError
	)
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &timeErr), errors.As(err, &inactiveErr):
		status = http.StatusBadRequest
	case errors.As(err, &unknownErr), errors.As(err, &notFound):
		status = http.StatusNotFound
	case errors.As(err, &overlap), errors.As(err, &dup), errors.As(err, &approvedErr):
		status = http.StatusConflict
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
