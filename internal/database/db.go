package database

import (
	"fmt"

	"inmobiliaria-backend/internal/config"
	"inmobiliaria-backend/internal/logger"
	"inmobiliaria-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

// Init Postgres'e bağlanır ve şemayı migrate eder.
func Init(cfg *config.Config, log logger.Logger) (*gorm.DB, error) {
	level := gormlogger.Warn
	if cfg.Log.Level == "debug" {
		level = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("veritabanına bağlanılamadı: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	DB = db
	log.Info("Veritabanı bağlantısı başarılı. Migration tamamlandı.", nil)
	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Property{},
		&models.SiteSettings{},
		&models.ContactInquiry{},
		&models.AdminUser{},
		&models.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("AutoMigrate hatası: %w", err)
	}

	// Filtre ve liste sorguları için
	stmts := []string{
		"CREATE INDEX IF NOT EXISTS idx_properties_location ON properties(location)",
		"CREATE INDEX IF NOT EXISTS idx_properties_created_at ON properties(created_at DESC)",
	}
	for _, s := range stmts {
		if err := db.Exec(s).Error; err != nil {
			return fmt.Errorf("index oluşturulamadı: %w", err)
		}
	}
	return nil
}
