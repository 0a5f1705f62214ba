package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/agentnet/ant-orchestrator/internal/data/repos"
	chatrepo "github.com/agentnet/ant-orchestrator/internal/data/repos/chat"
	"github.com/agentnet/ant-orchestrator/internal/http/response"
	"github.com/agentnet/ant-orchestrator/internal/pkg/dbctx"
	"github.com/agentnet/ant-orchestrator/internal/platform/logger"
)

// Reachability reports whether the database answered its start-up probe.
type Reachability interface {
	Reachable() bool
}

type ConversationsHandler struct {
	log           *logger.Logger
	db            Reachability
	conversations repos.ConversationRepo
	messages      repos.MessageRepo
}

// NewConversationsHandler accepts a nil db when persistence is off; every
// request then answers 503.
func NewConversationsHandler(log *logger.Logger, db Reachability, conversations repos.ConversationRepo, messages repos.MessageRepo) *ConversationsHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &ConversationsHandler{
		log:           log.With("handler", "ConversationsHandler"),
		db:            db,
		conversations: conversations,
		messages:      messages,
	}
}

type messageView struct {
	MessageID string          `json:"messageId"`
	Role      string          `json:"role"`
	Content   string          `json:"content"`
	CreatedAt time.Time       `json:"createdAt"`
	Trace     json.RawMessage `json:"trace"`
}

var (
	errDBUnavailable = errors.New("database unavailable")
	errNotFound      = errors.New("conversation not found")
	errInternal      = errors.New("internal")
)

// GET /api/conversations/:conversationId/messages?limit=200
func (h *ConversationsHandler) ListMessages(c *gin.Context) {
	if h.db == nil || !h.db.Reachable() || h.conversations == nil || h.messages == nil {
		response.RespondError(c, http.StatusServiceUnavailable, response.CodeDBUnavailable, errDBUnavailable)
		return
	}

	conversationID := c.Param("conversationId")
	limit := 0
	if v := strings.TrimSpace(c.Query("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	limit = chatrepo.ClampLimit(limit)

	dbc := dbctx.Context{Ctx: c.Request.Context()}
	if _, err := h.conversations.GetByConversationID(dbc, conversationID); err != nil {
		if errors.Is(err, repos.ErrConversationNotFound) {
			response.RespondError(c, http.StatusNotFound, response.CodeNotFound, errNotFound)
			return
		}
		h.log.Error("get conversation failed", "conversation_id", conversationID, "error", err)
		response.RespondError(c, http.StatusInternalServerError, response.CodeInternal, errInternal)
		return
	}

	rows, err := h.messages.ListByConversation(dbc, conversationID, limit)
	if err != nil {
		h.log.Error("list messages failed", "conversation_id", conversationID, "error", err)
		response.RespondError(c, http.StatusInternalServerError, response.CodeInternal, errInternal)
		return
	}

	out := make([]messageView, 0, len(rows))
	for _, m := range rows {
		v := messageView{
			MessageID: m.MessageID,
			Role:      m.Role,
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		}
		if m.HasTrace() {
			v.Trace = json.RawMessage(m.Trace)
		}
		out = append(out, v)
	}
	response.RespondOK(c, gin.H{"conversationId": conversationID, "messages": out})
}
