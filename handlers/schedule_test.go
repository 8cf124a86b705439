package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"roster/catalog"
	"roster/middleware"
	"roster/models"
	"roster/schedule"
	"roster/timeutil"
)

func newTestHandler(t *testing.T) (*ScheduleHandler, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(
		&models.Staff{},
		&models.Contract{},
		&models.Preset{},
		&models.PresetSegment{},
		&models.Adjustment{},
		&models.User{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	tz := timeutil.NewNormalizer(540)
	engine := schedule.New(db, tz, catalog.New(db, tz), log.New(io.Discard, "", 0))
	return NewScheduleHandler(engine, nil), db
}

func postJSON(t *testing.T, handler http.HandlerFunc, body interface{}, user *models.User) *httptest.ResponseRecorder {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(buf))
	if user != nil {
		req = req.WithContext(context.WithValue(req.Context(), middleware.UserContextKey, user))
	}
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestSubmitPendingWithSegment(t *testing.T) {
	h, db := newTestHandler(t)
	staff := models.Staff{Name: "Aoki", Active: true}
	if err := db.Create(&staff).Error; err != nil {
		t.Fatal(err)
	}

	rec := postJSON(t, h.SubmitPending, map[string]interface{}{
		"staff_id": staff.ID,
		"date":     "2024-06-03",
		"segment": map[string]interface{}{
			"status":     "remote",
			"start_hour": 9,
			"end_hour":   12,
		},
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp map[string]uint
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["adjustment_id"] == 0 {
		t.Fatal("no adjustment id returned")
	}
}

func TestSubmitPendingErrorMapping(t *testing.T) {
	h, db := newTestHandler(t)
	staff := models.Staff{Name: "Aoki", Active: true}
	if err := db.Create(&staff).Error; err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name string
		body map[string]interface{}
		want int
	}{
		{
			name: "unknown preset",
			body: map[string]interface{}{"staff_id": staff.ID, "date": "2024-06-03", "preset_id": 99},
			want: http.StatusNotFound,
		},
		{
			name: "malformed date",
			body: map[string]interface{}{
				"staff_id": staff.ID, "date": "03.06.2024",
				"segment": map[string]interface{}{"status": "remote", "start_hour": 9, "end_hour": 12},
			},
			want: http.StatusBadRequest,
		},
		{
			name: "missing payload",
			body: map[string]interface{}{"staff_id": staff.ID, "date": "2024-06-03"},
			want: http.StatusBadRequest,
		},
	}
	for _, tc := range cases {
		rec := postJSON(t, h.SubmitPending, tc.body, nil)
		if rec.Code != tc.want {
			t.Errorf("%s: status = %d, want %d (body %s)", tc.name, rec.Code, tc.want, rec.Body.String())
		}
	}
}

func TestSubmitPendingHonorsPresetAllowlist(t *testing.T) {
	h, db := newTestHandler(t)
	staff := models.Staff{Name: "Aoki", Active: true}
	if err := db.Create(&staff).Error; err != nil {
		t.Fatal(err)
	}
	preset := models.Preset{
		Name:    "remote-day",
		Enabled: true,
		Segments: []models.PresetSegment{
			{Position: 0, Status: models.StatusRemote, StartHour: 9, EndHour: 18},
		},
	}
	if err := db.Create(&preset).Error; err != nil {
		t.Fatal(err)
	}

	// This surface only offers some other preset.
	restricted := NewScheduleHandler(h.engine, []uint{preset.ID + 1})
	body := map[string]interface{}{"staff_id": staff.ID, "date": "2024-06-03", "preset_id": preset.ID}

	rec := postJSON(t, restricted.SubmitPending, body, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 (body %s)", rec.Code, rec.Body.String())
	}

	rec = postJSON(t, h.SubmitPending, body, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("unrestricted handler: %d %s", rec.Code, rec.Body.String())
	}
}

func TestPreviewPreset(t *testing.T) {
	h, db := newTestHandler(t)
	preset := models.Preset{
		Name:                "afternoon-off",
		Enabled:             true,
		RepresentativeIndex: 1,
		Segments: []models.PresetSegment{
			{Position: 0, Status: models.StatusOnline, StartHour: 9, EndHour: 13},
			{Position: 1, Status: models.StatusOff, StartHour: 13, EndHour: 18},
		},
	}
	if err := db.Create(&preset).Error; err != nil {
		t.Fatal(err)
	}

	router := chi.NewRouter()
	router.Get("/api/presets/{presetID}/expand/{date}", h.PreviewPreset)

	req := httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/api/presets/%d/expand/2024-06-03", preset.ID), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Name                string            `json:"name"`
		Segments            []catalog.Segment `json:"segments"`
		RepresentativeIndex int               `json:"representative_index"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Name != "afternoon-off" || len(resp.Segments) != 2 || resp.RepresentativeIndex != 1 {
		t.Fatalf("unexpected preview: %+v", resp)
	}

	// Nothing was written.
	var count int64
	db.Model(&models.Adjustment{}).Count(&count)
	if count != 0 {
		t.Fatalf("preview wrote %d rows", count)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/presets/999/expand/2024-06-03", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown preset preview: %d, want 404", rec.Code)
	}
}

func TestApproveRequiresAuthenticatedApprover(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := postJSON(t, h.Approve, map[string]interface{}{"batch_id": "x"}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestApproveConflictMapsTo409(t *testing.T) {
	h, db := newTestHandler(t)
	staff := models.Staff{Name: "Aoki", Active: true}
	if err := db.Create(&staff).Error; err != nil {
		t.Fatal(err)
	}
	approver := &models.User{ID: 1, Username: "boss", Role: models.RoleApprover}

	submit := func(status string) uint {
		t.Helper()
		rec := postJSON(t, h.SubmitPending, map[string]interface{}{
			"staff_id": staff.ID,
			"date":     "2024-06-03",
			"segment":  map[string]interface{}{"status": status, "start_hour": 10, "end_hour": 11},
		}, nil)
		if rec.Code != http.StatusCreated {
			t.Fatalf("submit %s: %d %s", status, rec.Code, rec.Body.String())
		}
		var resp map[string]uint
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatal(err)
		}
		return resp["adjustment_id"]
	}
	first := submit("online")
	second := submit("meeting")

	rec := postJSON(t, h.Approve, map[string]interface{}{"adjustment_id": first}, approver)
	if rec.Code != http.StatusOK {
		t.Fatalf("first approval: %d %s", rec.Code, rec.Body.String())
	}
	rec = postJSON(t, h.Approve, map[string]interface{}{"adjustment_id": second}, approver)
	if rec.Code != http.StatusConflict {
		t.Fatalf("conflicting approval: %d, want 409 (body %s)", rec.Code, rec.Body.String())
	}
}

func TestBulkApproveReportsPartialFailure(t *testing.T) {
	h, db := newTestHandler(t)
	staff := models.Staff{Name: "Aoki", Active: true}
	if err := db.Create(&staff).Error; err != nil {
		t.Fatal(err)
	}
	approver := &models.User{ID: 1, Username: "boss", Role: models.RoleApprover}

	var first, second map[string]uint
	rec := postJSON(t, h.SubmitPending, map[string]interface{}{
		"staff_id": staff.ID, "date": "2024-06-03",
		"segment": map[string]interface{}{"status": "online", "start_hour": 9, "end_hour": 12},
	}, nil)
	json.Unmarshal(rec.Body.Bytes(), &first)
	rec = postJSON(t, h.SubmitPending, map[string]interface{}{
		"staff_id": staff.ID, "date": "2024-06-03",
		"segment": map[string]interface{}{"status": "meeting", "start_hour": 10, "end_hour": 11},
	}, nil)
	json.Unmarshal(rec.Body.Bytes(), &second)

	rec = postJSON(t, h.BulkApprove, map[string]interface{}{
		"items": []map[string]interface{}{
			{"adjustment_id": first["adjustment_id"]},
			{"adjustment_id": second["adjustment_id"]},
		},
	}, approver)
	if rec.Code != http.StatusOK {
		t.Fatalf("bulk approve: %d %s", rec.Code, rec.Body.String())
	}

	var report schedule.BulkReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatal(err)
	}
	if report.SuccessCount != 1 || report.FailedCount != 1 {
		t.Fatalf("report = %d/%d, want 1/1", report.SuccessCount, report.FailedCount)
	}
}
