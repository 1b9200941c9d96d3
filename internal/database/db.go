package database

import (
	"fmt"
	"time"

	"dashkpis/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB хранит только журнал аудита; nil, если DB_DSN не задан
var DB *gorm.DB

func Init(dsn string, log *zap.Logger) error {
	var err error

	const maxAttempts = 10
	for i := 1; i <= maxAttempts; i++ {
		log.Info("trying to connect to audit DB", zap.Int("attempt", i), zap.Int("max", maxAttempts))

		DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		})
		if err == nil {
			log.Info("connected to audit DB")
			break
		}

		log.Warn("failed to connect to audit DB", zap.Error(err))
		time.Sleep(2 * time.Second)
	}

	if err != nil {
		DB = nil
		return fmt.Errorf("failed to connect to audit db after %d attempts: %w", maxAttempts, err)
	}

	// миграции
	if err := DB.AutoMigrate(&models.AuditLog{}); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}
