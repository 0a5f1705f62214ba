package repos

import (
	"gorm.io/gorm"

	"github.com/agentnet/ant-orchestrator/internal/data/repos/chat"
	"github.com/agentnet/ant-orchestrator/internal/platform/logger"
)

type ConversationRepo = chat.ConversationRepo
type MessageRepo = chat.MessageRepo

var ErrConversationNotFound = chat.ErrConversationNotFound

func NewConversationRepo(db *gorm.DB, baseLog *logger.Logger) ConversationRepo {
	return chat.NewConversationRepo(db, baseLog)
}

func NewMessageRepo(db *gorm.DB, baseLog *logger.Logger) MessageRepo {
	return chat.NewMessageRepo(db, baseLog)
}
