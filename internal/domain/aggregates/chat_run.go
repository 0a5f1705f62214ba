package aggregates

import (
	"context"
	"encoding/json"
)

// ChatRunInput is one completed orchestration turn.
type ChatRunInput struct {
	ConversationID string
	RequestID      string
	Query          string
	Response       string
	Trace          json.RawMessage
	// IdentitySnapshot is optional JSON attached to both messages.
	IdentitySnapshot json.RawMessage
}

type ChatRunResult struct {
	ConversationID     string
	UserMessageID      string
	AssistantMessageID string
}

// ChatRunAggregate appends a user/assistant message pair to a conversation,
// creating the conversation when it does not exist yet. All writes share one
// transaction.
type ChatRunAggregate interface {
	Append(ctx context.Context, in ChatRunInput) (ChatRunResult, error)
}
