package audit

import (
	"context"
	"encoding/json"
	"fmt"

	domainagg "github.com/agentnet/ant-orchestrator/internal/domain/aggregates"
)

// DBSink persists the run as a user/assistant message pair.
type DBSink struct {
	runs domainagg.ChatRunAggregate
}

func NewDBSink(runs domainagg.ChatRunAggregate) *DBSink {
	return &DBSink{runs: runs}
}

func (*DBSink) Name() string { return "db" }

func (s *DBSink) Write(ctx context.Context, rec Record) error {
	traceJSON, err := json.Marshal(rec.Trace)
	if err != nil {
		return fmt.Errorf("encode trace: %w", err)
	}
	var identity json.RawMessage
	if rec.IdentitySnapshot != nil {
		if identity, err = json.Marshal(rec.IdentitySnapshot); err != nil {
			return fmt.Errorf("encode identity snapshot: %w", err)
		}
	}
	_, err = s.runs.Append(ctx, domainagg.ChatRunInput{
		ConversationID:   rec.ConversationID,
		RequestID:        rec.RequestID,
		Query:            rec.Query,
		Response:         rec.Response,
		Trace:            traceJSON,
		IdentitySnapshot: identity,
	})
	return err
}
