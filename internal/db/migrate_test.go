package db

import (
	"testing"

	"github.com/lanternworks/scopeline/internal/config"
	"github.com/lanternworks/scopeline/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	return gormDB
}

func TestAutoMigrate(t *testing.T) {
	gormDB := openTestDB(t)
	if err := AutoMigrate(gormDB); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	for _, model := range AllModels() {
		if !gormDB.Migrator().HasTable(model) {
			t.Errorf("missing table for %T", model)
		}
	}
}

func TestEnsureSettings_CreatesOnce(t *testing.T) {
	gormDB := openTestDB(t)
	if err := AutoMigrate(gormDB); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	if err := gormDB.Create(&models.Organization{ID: "org-1", Name: "Studio", OwnerID: "u-1"}).Error; err != nil {
		t.Fatalf("seed org: %v", err)
	}

	first, err := EnsureSettings(gormDB, "org-1")
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if first.HourlyRate != 150 {
		t.Errorf("hourlyRate = %v, want default 150", first.HourlyRate)
	}

	second, err := EnsureSettings(gormDB, "org-1")
	if err != nil {
		t.Fatalf("ensure again: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("settings recreated: %s vs %s", first.ID, second.ID)
	}

	var count int64
	gormDB.Model(&models.OrganizationSettings{}).Count(&count)
	if count != 1 {
		t.Errorf("settings count = %d, want 1", count)
	}
}

func TestDSN(t *testing.T) {
	got := DSN(config.DatabaseConfig{
		User: "scopeline", Password: "secret",
		Host: "db.internal", Port: 3307, Name: "scopeline_prod",
	})
	want := "scopeline:secret@tcp(db.internal:3307)/scopeline_prod?parseTime=true&charset=utf8mb4"
	if got != want {
		t.Errorf("DSN = %q, want %q", got, want)
	}

	// Password omitted when empty.
	got = DSN(config.DatabaseConfig{User: "root", Host: "127.0.0.1", Port: 3306, Name: "scopeline"})
	want = "root@tcp(127.0.0.1:3306)/scopeline?parseTime=true&charset=utf8mb4"
	if got != want {
		t.Errorf("DSN = %q, want %q", got, want)
	}
}
