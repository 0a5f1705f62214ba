package aggregates

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/agentnet/ant-orchestrator/internal/data/repos"
	domainagg "github.com/agentnet/ant-orchestrator/internal/domain/aggregates"
	"github.com/agentnet/ant-orchestrator/internal/domain/chat"
	"github.com/agentnet/ant-orchestrator/internal/pkg/dbctx"
	"github.com/agentnet/ant-orchestrator/internal/platform/logger"
)

type ChatRunAggregateDeps struct {
	DB            *gorm.DB
	Log           *logger.Logger
	Runner        TxRunner
	Conversations repos.ConversationRepo
	Messages      repos.MessageRepo
	// NewID defaults to uuid.NewString.
	NewID func() string
}

type chatRunAggregate struct {
	deps ChatRunAggregateDeps
	log  *logger.Logger
}

func NewChatRunAggregate(deps ChatRunAggregateDeps) domainagg.ChatRunAggregate {
	if deps.Log == nil {
		deps.Log = logger.NewNop()
	}
	if deps.Runner == nil {
		deps.Runner = NewGormTxRunner(deps.DB)
	}
	if deps.Conversations == nil {
		deps.Conversations = repos.NewConversationRepo(deps.DB, deps.Log)
	}
	if deps.Messages == nil {
		deps.Messages = repos.NewMessageRepo(deps.DB, deps.Log)
	}
	if deps.NewID == nil {
		deps.NewID = uuid.NewString
	}
	return &chatRunAggregate{deps: deps, log: deps.Log.With("aggregate", "ChatRun")}
}

func (a *chatRunAggregate) Append(ctx context.Context, in domainagg.ChatRunInput) (domainagg.ChatRunResult, error) {
	const op = "Chat.Run.Append"
	var out domainagg.ChatRunResult

	cid := strings.TrimSpace(in.ConversationID)
	if cid == "" {
		cid = strings.TrimSpace(in.RequestID)
	}
	if cid == "" {
		cid = a.deps.NewID()
	}
	assistantID := strings.TrimSpace(in.RequestID)
	if assistantID == "" {
		assistantID = a.deps.NewID()
	}

	var identity datatypes.JSON
	if len(in.IdentitySnapshot) > 0 {
		identity = datatypes.JSON(in.IdentitySnapshot)
	}
	user := &chat.Message{
		ConversationID:   cid,
		MessageID:        a.deps.NewID(),
		Role:             chat.RoleUser,
		Content:          in.Query,
		IdentitySnapshot: identity,
	}
	assistant := &chat.Message{
		ConversationID:   cid,
		MessageID:        assistantID,
		Role:             chat.RoleAssistant,
		Content:          in.Response,
		IdentitySnapshot: identity,
	}
	if len(in.Trace) > 0 {
		assistant.Trace = datatypes.JSON(in.Trace)
	}

	err := a.deps.Runner.InTx(ctx, func(dbc dbctx.Context) error {
		if _, err := a.deps.Conversations.GetOrCreate(dbc, cid); err != nil {
			return err
		}
		_, err := a.deps.Messages.Create(dbc, []*chat.Message{user, assistant})
		return err
	})
	if err != nil {
		return out, MapError(op, err)
	}

	out.ConversationID = cid
	out.UserMessageID = user.MessageID
	out.AssistantMessageID = assistant.MessageID
	a.log.Debug("chat run persisted", "conversation_id", cid, "request_id", assistantID)
	return out, nil
}
