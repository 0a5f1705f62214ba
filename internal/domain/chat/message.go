package chat

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	ID             uint   `gorm:"primaryKey;autoIncrement" json:"-"`
	ConversationID string `gorm:"column:conversation_id;type:varchar(255);not null;index" json:"conversationId"`
	MessageID      string `gorm:"column:message_id;type:varchar(255);not null;index" json:"messageId"`

	Role    string `gorm:"column:role;type:varchar(16);not null" json:"role"`
	Content string `gorm:"column:content;type:text;not null" json:"content"`

	// Trace is set on assistant messages only.
	Trace datatypes.JSON `gorm:"column:trace" json:"trace"`
	// IdentitySnapshot is the resolver's audit identity for the turn, when known.
	IdentitySnapshot datatypes.JSON `gorm:"column:identity_snapshot" json:"-"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"-"`
}

func (Message) TableName() string { return "messages" }

var jsonNull = datatypes.JSON("null")

// BeforeCreate stores absent JSON columns as a JSON null so reads never scan SQL NULL.
func (m *Message) BeforeCreate(*gorm.DB) error {
	if len(m.Trace) == 0 {
		m.Trace = jsonNull
	}
	if len(m.IdentitySnapshot) == 0 {
		m.IdentitySnapshot = jsonNull
	}
	return nil
}

// HasTrace reports whether the message carries a non-null trace.
func (m *Message) HasTrace() bool {
	return len(m.Trace) > 0 && string(m.Trace) != "null"
}
