package db

import (
	"gorm.io/gorm"

	"github.com/agentnet/ant-orchestrator/internal/domain/chat"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&chat.Conversation{},
		&chat.Message{},
	)
}
