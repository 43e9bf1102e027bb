package db

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/BruksfildServices01/dental-clinic/internal/config"
	"github.com/BruksfildServices01/dental-clinic/internal/models"
)

// liveSlotIndex keeps at most one appointment per (branch, slot, date)
// among those that still hold their slot.
const liveSlotIndex = `
	CREATE UNIQUE INDEX IF NOT EXISTS ux_appointments_live_slot
	ON appointments (branch_id, slot_id, date)
	WHERE status NOT IN ('canceled', 'rejected') AND deleted_at IS NULL
`

func NewDB(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	logLevel := gormlogger.Warn
	if cfg.IsProduction() {
		logLevel = gormlogger.Error
	}

	db, err := gorm.Open(postgres.Open(cfg.DBUrl), &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := db.AutoMigrate(
		&models.Branch{},
		&models.TimeSlot{},
		&models.Service{},
		&models.Patient{},
		&models.Doctor{},
		&models.User{},
		&models.InventoryItem{},
		&models.Appointment{},
		&models.TreatmentEntry{},
		&models.ItemUsage{},
		&models.AuditLog{},
	); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	if err := db.Exec(liveSlotIndex).Error; err != nil {
		return nil, fmt.Errorf("create live slot index: %w", err)
	}

	db.Exec(`
		UPDATE branches
		SET timezone = 'UTC'
		WHERE timezone IS NULL OR timezone = ''
	`)

	log.Info("database ready", zap.Int("max_open_conns", cfg.DBMaxOpenConns))
	return db, nil
}
