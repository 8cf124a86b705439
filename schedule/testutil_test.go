package schedule

import (
	"io"
	"log"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"roster/catalog"
	"roster/models"
	"roster/timeutil"
)

// testOffset pins the tests to UTC+9 so date-drift regressions around
// midnight stay visible.
const testOffset = 540

func newTestEngine(t *testing.T) (*Engine, *gorm.DB) {
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
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	tz := timeutil.NewNormalizer(testOffset)
	engine := New(db, tz, catalog.New(db, tz), log.New(io.Discard, "", 0))
	return engine, db
}

func createStaff(t *testing.T, db *gorm.DB, name string) *models.Staff {
	t.Helper()
	staff := &models.Staff{Name: name, Active: true}
	if err := db.Create(staff).Error; err != nil {
		t.Fatalf("create staff: %v", err)
	}
	return staff
}

// createWeekdayContract gives the staff member a Monday-Friday baseline.
func createWeekdayContract(t *testing.T, db *gorm.DB, staffID uint, hours string) {
	t.Helper()
	contract := &models.Contract{
		StaffID:   staffID,
		Monday:    &hours,
		Tuesday:   &hours,
		Wednesday: &hours,
		Thursday:  &hours,
		Friday:    &hours,
	}
	if err := db.Create(contract).Error; err != nil {
		t.Fatalf("create contract: %v", err)
	}
}

func createAfternoonOffPreset(t *testing.T, db *gorm.DB) *models.Preset {
	t.Helper()
	preset := &models.Preset{
		Name:                "afternoon-off",
		Enabled:             true,
		RepresentativeIndex: 1,
		Segments: []models.PresetSegment{
			{Position: 0, Status: models.StatusOnline, StartHour: 9, EndHour: 13},
			{Position: 1, Status: models.StatusOff, StartHour: 13, EndHour: 18},
		},
	}
	if err := db.Create(preset).Error; err != nil {
		t.Fatalf("create preset: %v", err)
	}
	return preset
}

func createSingleSegmentPreset(t *testing.T, db *gorm.DB, name string, status models.SegmentStatus, startHour, endHour float64) *models.Preset {
	t.Helper()
	preset := &models.Preset{
		Name:    name,
		Enabled: true,
		Segments: []models.PresetSegment{
			{Position: 0, Status: status, StartHour: startHour, EndHour: endHour},
		},
	}
	if err := db.Create(preset).Error; err != nil {
		t.Fatalf("create preset: %v", err)
	}
	return preset
}

func batchRows(t *testing.T, db *gorm.DB, batchID string) []models.Adjustment {
	t.Helper()
	var rows []models.Adjustment
	if err := db.Where("batch_id = ?", batchID).Order("start_at asc").Find(&rows).Error; err != nil {
		t.Fatalf("load batch: %v", err)
	}
	return rows
}
