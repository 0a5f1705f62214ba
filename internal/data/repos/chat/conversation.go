package chat

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/agentnet/ant-orchestrator/internal/domain/chat"
	"github.com/agentnet/ant-orchestrator/internal/pkg/dbctx"
	"github.com/agentnet/ant-orchestrator/internal/platform/logger"
)

var ErrConversationNotFound = errors.New("conversation not found")

type ConversationRepo interface {
	// GetOrCreate returns the conversation, inserting it first when missing.
	GetOrCreate(dbc dbctx.Context, conversationID string) (*chat.Conversation, error)
	GetByConversationID(dbc dbctx.Context, conversationID string) (*chat.Conversation, error)
}

type conversationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConversationRepo(db *gorm.DB, log *logger.Logger) ConversationRepo {
	return &conversationRepo{db: db, log: log.With("repo", "ConversationRepo")}
}

func (r *conversationRepo) GetOrCreate(dbc dbctx.Context, conversationID string) (*chat.Conversation, error) {
	conversationID = strings.TrimSpace(conversationID)
	if conversationID == "" {
		return nil, fmt.Errorf("missing conversation_id")
	}
	row := &chat.Conversation{ConversationID: conversationID}
	if err := dbc.DB(r.db).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "conversation_id"}}, DoNothing: true}).
		Create(row).Error; err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	return r.GetByConversationID(dbc, conversationID)
}

func (r *conversationRepo) GetByConversationID(dbc dbctx.Context, conversationID string) (*chat.Conversation, error) {
	conversationID = strings.TrimSpace(conversationID)
	if conversationID == "" {
		return nil, fmt.Errorf("missing conversation_id")
	}
	var out chat.Conversation
	err := dbc.DB(r.db).
		Where("conversation_id = ?", conversationID).
		Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}
