package chat

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/agentnet/ant-orchestrator/internal/domain/chat"
	"github.com/agentnet/ant-orchestrator/internal/pkg/dbctx"
	"github.com/agentnet/ant-orchestrator/internal/platform/logger"
)

const (
	DefaultListLimit = 200
	MaxListLimit     = 500
)

type MessageRepo interface {
	Create(dbc dbctx.Context, rows []*chat.Message) ([]*chat.Message, error)
	// ListByConversation returns messages oldest first.
	ListByConversation(dbc dbctx.Context, conversationID string, limit int) ([]*chat.Message, error)
}

type messageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMessageRepo(db *gorm.DB, log *logger.Logger) MessageRepo {
	return &messageRepo{db: db, log: log.With("repo", "MessageRepo")}
}

func (r *messageRepo) Create(dbc dbctx.Context, rows []*chat.Message) ([]*chat.Message, error) {
	if len(rows) == 0 {
		return []*chat.Message{}, nil
	}
	// Insert one at a time so autoincrement ids follow slice order.
	for _, row := range rows {
		if err := dbc.DB(r.db).Create(row).Error; err != nil {
			return nil, fmt.Errorf("create message: %w", err)
		}
	}
	return rows, nil
}

func (r *messageRepo) ListByConversation(dbc dbctx.Context, conversationID string, limit int) ([]*chat.Message, error) {
	conversationID = strings.TrimSpace(conversationID)
	if conversationID == "" {
		return nil, fmt.Errorf("missing conversation_id")
	}
	limit = ClampLimit(limit)
	var out []*chat.Message
	if err := dbc.DB(r.db).
		Model(&chat.Message{}).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Order("id ASC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ClampLimit maps a zero (unset) limit to the default and clamps the rest to
// [1, MaxListLimit].
func ClampLimit(limit int) int {
	switch {
	case limit == 0:
		return DefaultListLimit
	case limit < 1:
		return 1
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}
