package db

import (
	"github.com/evanoh/storepulse-backend/config"
	"github.com/evanoh/storepulse-backend/internal/app/model"
	"github.com/evanoh/storepulse-backend/pkg/logger"
	"github.com/evanoh/storepulse-backend/pkg/util"
)

// Migrate runs database migrations
func Migrate(adminCfg *config.AdminConfig) error {
	logger.Info("Running database migrations...")

	models := []interface{}{
		&model.User{},
		&model.Store{},
		&model.Rating{},
	}

	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	if err := seedAdminUser(adminCfg); err != nil {
		logger.Error("Failed to seed admin user during migration", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// seedAdminUser creates the bootstrap administrator account when no
// system_admin exists yet.
func seedAdminUser(adminCfg *config.AdminConfig) error {
	var count int64
	if err := DB.Model(&model.User{}).Where("role = ?", model.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		logger.Debug("Admin account already exists, skipping seed", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	hash, err := util.HashPassword(adminCfg.Password)
	if err != nil {
		return err
	}

	admin := &model.User{
		Name:         "Platform Administrator Account",
		Email:        adminCfg.Email,
		PasswordHash: hash,
		Address:      "",
		Role:         model.RoleAdmin,
	}

	if err := DB.Create(admin).Error; err != nil {
		return err
	}

	logger.Info("Seeded bootstrap admin account", map[string]interface{}{
		"email": admin.Email,
	})
	return nil
}
