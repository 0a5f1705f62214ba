package aggregates

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/agentnet/ant-orchestrator/internal/data/repos"
	"github.com/agentnet/ant-orchestrator/internal/data/repos/testutil"
	domainagg "github.com/agentnet/ant-orchestrator/internal/domain/aggregates"
	"github.com/agentnet/ant-orchestrator/internal/domain/chat"
	"github.com/agentnet/ant-orchestrator/internal/pkg/dbctx"
)

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func TestChatRunAppend(t *testing.T) {
	db := testutil.DB(t)
	agg := NewChatRunAggregate(ChatRunAggregateDeps{DB: db, Log: testutil.Logger(t), NewID: seqIDs()})

	in := domainagg.ChatRunInput{
		ConversationID:   "conv-1",
		RequestID:        "req-1",
		Query:            "what is acme",
		Response:         "Acme makes widgets",
		Trace:            []byte(`{"requestId":"req-1"}`),
		IdentitySnapshot: []byte(`{"nodeId":"n1"}`),
	}
	out, err := agg.Append(context.Background(), in)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if out.ConversationID != "conv-1" || out.AssistantMessageID != "req-1" || out.UserMessageID != "id-1" {
		t.Fatalf("result=%+v", out)
	}
	if _, err := agg.Append(context.Background(), in); err != nil {
		t.Fatalf("second Append: %v", err)
	}

	var msgs []chat.Message
	if err := db.Where("conversation_id = ?", "conv-1").Order("id ASC").Find(&msgs).Error; err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(msgs) != 4 {
		t.Fatalf("want 4 messages, got %d", len(msgs))
	}
	if msgs[0].Role != chat.RoleUser || msgs[0].Content != "what is acme" || msgs[0].HasTrace() {
		t.Fatalf("user message=%+v", msgs[0])
	}
	if msgs[1].Role != chat.RoleAssistant || msgs[1].MessageID != "req-1" || string(msgs[1].Trace) != `{"requestId":"req-1"}` {
		t.Fatalf("assistant message=%+v", msgs[1])
	}

	var convs int64
	db.Model(&chat.Conversation{}).Count(&convs)
	if convs != 1 {
		t.Fatalf("conversation must be created once, got %d", convs)
	}
}

func TestChatRunAppendFallsBackToRequestID(t *testing.T) {
	db := testutil.DB(t)
	agg := NewChatRunAggregate(ChatRunAggregateDeps{DB: db, Log: testutil.Logger(t), NewID: seqIDs()})

	out, err := agg.Append(context.Background(), domainagg.ChatRunInput{RequestID: "req-9", Query: "q", Response: "r"})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if out.ConversationID != "req-9" {
		t.Fatalf("conversation id=%q", out.ConversationID)
	}
}

type failingMessages struct{ repos.MessageRepo }

func (failingMessages) Create(dbctx.Context, []*chat.Message) ([]*chat.Message, error) {
	return nil, errors.New("disk full")
}

func TestChatRunAppendRollsBack(t *testing.T) {
	db := testutil.DB(t)
	agg := NewChatRunAggregate(ChatRunAggregateDeps{
		DB:       db,
		Log:      testutil.Logger(t),
		Messages: failingMessages{},
	})

	_, err := agg.Append(context.Background(), domainagg.ChatRunInput{ConversationID: "conv-x", RequestID: "r", Query: "q", Response: "a"})
	if !domainagg.IsCode(err, domainagg.CodeInternal) {
		t.Fatalf("expected internal code, got %q (%v)", domainagg.CodeOf(err), err)
	}

	var convs int64
	db.Model(&chat.Conversation{}).Count(&convs)
	if convs != 0 {
		t.Fatalf("conversation insert must roll back, got %d rows", convs)
	}
}

func TestMapError(t *testing.T) {
	cases := []struct {
		err  error
		code domainagg.ErrorCode
	}{
		{repos.ErrConversationNotFound, domainagg.CodeNotFound},
		{context.DeadlineExceeded, domainagg.CodeUnavailable},
		{errors.New("UNIQUE constraint failed: conversations.conversation_id"), domainagg.CodeConflict},
		{errors.New("dial tcp: connection refused"), domainagg.CodeUnavailable},
		{errors.New("boom"), domainagg.CodeInternal},
	}
	for _, tc := range cases {
		if got := domainagg.CodeOf(MapError("op", tc.err)); got != tc.code {
			t.Fatalf("MapError(%v)=%q want %q", tc.err, got, tc.code)
		}
	}
	if MapError("op", nil) != nil {
		t.Fatalf("nil must stay nil")
	}
	in := domainagg.NewError(domainagg.CodeConflict, "op", "x", nil)
	if MapError("other", in) != in {
		t.Fatalf("aggregate errors pass through")
	}
}
