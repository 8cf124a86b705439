package database

import (
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"roster/models"
)

// Open connects, migrates and seeds, returning the handle. The caller owns
// the handle's lifecycle; nothing here is package-level state.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	if err := seedDefaultAdmin(db); err != nil {
		return nil, err
	}
	if err := seedPresets(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates or updates the schema. Split out so tests can run it
// against their own database.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Staff{},
		&models.Contract{},
		&models.Preset{},
		&models.PresetSegment{},
		&models.Adjustment{},
		&models.User{},
	)
}

func seedDefaultAdmin(db *gorm.DB) error {
	var count int64
	db.Model(&models.User{}).Where("username = ?", "admin").Count(&count)
	if count > 0 {
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.User{
		Username:     "admin",
		FullName:     "Administrator",
		PasswordHash: string(hashedPassword),
		Role:         models.RoleAdmin,
	}

	if result := db.Create(&admin); result.Error != nil {
		return result.Error
	}

	log.Println("Default admin user created (username: admin, password: admin)")
	return nil
}

// seedPresets installs the built-in preset catalog on first boot.
// Administrators manage presets afterwards; an already-populated table is
// left alone.
func seedPresets(db *gorm.DB) error {
	var count int64
	db.Model(&models.Preset{}).Count(&count)
	if count > 0 {
		return nil
	}

	presets := []models.Preset{
		{
			Name:                "afternoon-off",
			Enabled:             true,
			RepresentativeIndex: 1,
			Segments: []models.PresetSegment{
				{Position: 0, Status: models.StatusOnline, StartHour: 9, EndHour: 13},
				{Position: 1, Status: models.StatusOff, StartHour: 13, EndHour: 18, MemoTemplate: "{preset}"},
			},
		},
		{
			Name:                "morning-off",
			Enabled:             true,
			RepresentativeIndex: 0,
			Segments: []models.PresetSegment{
				{Position: 0, Status: models.StatusOff, StartHour: 9, EndHour: 13, MemoTemplate: "{preset}"},
				{Position: 1, Status: models.StatusOnline, StartHour: 13, EndHour: 18},
			},
		},
		{
			Name:                "remote-day",
			Enabled:             true,
			RepresentativeIndex: 0,
			Segments: []models.PresetSegment{
				{Position: 0, Status: models.StatusRemote, StartHour: 9, EndHour: 18},
			},
		},
		{
			Name:                "full-day-off",
			Enabled:             true,
			RepresentativeIndex: 0,
			Segments: []models.PresetSegment{
				{Position: 0, Status: models.StatusOff, StartHour: 9, EndHour: 18},
			},
		},
		{
			// Runs past midnight; the entry stays attached to its start date.
			Name:                "night-duty",
			Enabled:             true,
			RepresentativeIndex: 0,
			Segments: []models.PresetSegment{
				{Position: 0, Status: models.StatusNightDuty, StartHour: 22, EndHour: 31},
			},
		},
	}

	for i := range presets {
		if err := db.Create(&presets[i]).Error; err != nil {
			return err
		}
	}

	log.Printf("Seeded %d built-in presets", len(presets))
	return nil
}
