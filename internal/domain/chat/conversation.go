package chat

import (
	"time"
)

type Conversation struct {
	ID             uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	ConversationID string `gorm:"column:conversation_id;type:varchar(255);not null;uniqueIndex" json:"conversationId"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updatedAt"`
}

func (Conversation) TableName() string { return "conversations" }
