package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agentnet/ant-orchestrator/internal/domain/grounding"
	"github.com/agentnet/ant-orchestrator/internal/http/response"
	"github.com/agentnet/ant-orchestrator/internal/orchestrator"
	"github.com/agentnet/ant-orchestrator/internal/platform/ctxutil"
	"github.com/agentnet/ant-orchestrator/internal/platform/logger"
)

// Runner is the orchestration entry point the chat route drives.
type Runner interface {
	Run(ctx context.Context, query string, opts grounding.Options) orchestrator.Result
}

type ChatHandler struct {
	log    *logger.Logger
	runner Runner
}

func NewChatHandler(log *logger.Logger, runner Runner) *ChatHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &ChatHandler{log: log.With("handler", "ChatHandler"), runner: runner}
}

type chatMessage struct {
	Role    *string `json:"role" binding:"required"`
	Content *string `json:"content" binding:"required"`
}

type chatOptions struct {
	EnableWebRag *bool `json:"enableWebRag"`
	EnableLlm    *bool `json:"enableLlm"`
}

type chatReq struct {
	ConversationID string       `json:"conversationId" binding:"required"`
	Message        *chatMessage `json:"message" binding:"required"`
	Options        *chatOptions `json:"options"`
	AnswerMode     string       `json:"answerMode" binding:"omitempty,oneof=agentnet rag model all"`
}

func (r chatReq) options() grounding.Options {
	opts := grounding.Options{ConversationID: r.ConversationID, AnswerMode: r.AnswerMode}
	if r.Options != nil {
		if r.Options.EnableWebRag != nil {
			opts.EnableWebRag = *r.Options.EnableWebRag
		}
		if r.Options.EnableLlm != nil {
			opts.EnableLlm = *r.Options.EnableLlm
		}
	}
	return opts
}

// POST /api/chat
func (h *ChatHandler) Chat(c *gin.Context) {
	var req chatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondFlat(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.run(c.Request.Context(), *req.Message.Content, req.options())
	if err != nil {
		h.log.Error("chat error", append([]any{"error", err}, ctxutil.LogFields(c.Request.Context())...)...)
		response.RespondFlat(c, http.StatusInternalServerError, "internal")
		return
	}
	response.RespondOK(c, result)
}

// run converts a runner panic into an error so the route keeps its contract.
func (h *ChatHandler) run(ctx context.Context, query string, opts grounding.Options) (res orchestrator.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r}
		}
	}()
	return h.runner.Run(ctx, query, opts), nil
}

type panicError struct{ value any }

func (e *panicError) Error() string { return fmt.Sprintf("orchestration panic: %v", e.value) }
