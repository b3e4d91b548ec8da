package repository

import (
	"fmt"

	"github.com/SundayYogurt/logistics_service/internal/domain"
	"gorm.io/gorm"
)

// partialIndexes are the invariants gorm tags cannot express.
var partialIndexes = []string{
	// one confirmed earning per (wallet, task)
	`CREATE UNIQUE INDEX IF NOT EXISTS uidx_wallet_tx_task_earning
		ON wallet_transactions (wallet_id, related_task_id)
		WHERE type = 'earning' AND status = 'confirmed'`,
	// one active media record per (owner, type)
	`CREATE UNIQUE INDEX IF NOT EXISTS uidx_media_files_active
		ON media_files (owner_user_id, type)
		WHERE is_active`,
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&domain.Permission{},
		&domain.Role{},
		&domain.User{},
		&domain.KYCAttempt{},
		&domain.MediaFile{},
		&domain.Business{},
		&domain.Task{},
		&domain.TaskStep{},
		&domain.Wallet{},
		&domain.WalletTransaction{},
		&domain.OTP{},
		&domain.AuditLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	for _, stmt := range partialIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create partial index: %w", err)
		}
	}
	return nil
}
