package models

import (
	"fmt"
	"time"
)

// ThreadScope selects which message table a thread lives in.
type ThreadScope string

const (
	// ThreadScopeConversation is a 1:1 or group conversation thread.
	ThreadScopeConversation ThreadScope = "conversation"
	// ThreadScopeGroup is a co-investment group's chat.
	ThreadScopeGroup ThreadScope = "group"
	// ThreadScopeProperty is the property-wide group chat.
	ThreadScopeProperty ThreadScope = "property"
)

// ParseThreadScope validates a scope name from a route.
func ParseThreadScope(raw string) (ThreadScope, error) {
	switch s := ThreadScope(raw); s {
	case ThreadScopeConversation, ThreadScopeGroup, ThreadScopeProperty:
		return s, nil
	}
	return "", NewValidationError(fmt.Sprintf("unknown thread scope %q", raw))
}

// Thread addresses one message thread.
type Thread struct {
	Scope ThreadScope `json:"scope"`
	ID    uint        `json:"id"`
}

func (t Thread) String() string {
	return fmt.Sprintf("%s:%d", t.Scope, t.ID)
}

// Message is a conversation message. Messages are immutable once created.
type Message struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ConversationID uint      `gorm:"not null;index:idx_messages_conv_created" json:"conversation_id"`
	SenderID       uint      `gorm:"not null;index" json:"sender_id"`
	UserName       string    `gorm:"size:255" json:"user_name"`
	Message        string    `gorm:"type:text;not null" json:"message"`
	CreatedAt      time.Time `gorm:"index:idx_messages_conv_created" json:"created_at"`
}

// TableName specifies the table name for GORM
func (Message) TableName() string {
	return "messages"
}

// GroupMessage is a message in a co-investment group's chat.
type GroupMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	GroupID   uint      `gorm:"not null;index:idx_group_messages_group_created" json:"group_id"`
	UserID    uint      `gorm:"not null" json:"user_id"`
	UserName  string    `gorm:"size:255" json:"user_name"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	CreatedAt time.Time `gorm:"index:idx_group_messages_group_created" json:"created_at"`
}

// TableName specifies the table name for GORM
func (GroupMessage) TableName() string {
	return "group_messages"
}

// PropertyGroupMessage is a message in a property's public group chat.
type PropertyGroupMessage struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PropertyID uint      `gorm:"not null;index:idx_property_group_messages_prop_created" json:"property_id"`
	UserID     uint      `gorm:"not null" json:"user_id"`
	UserName   string    `gorm:"size:255" json:"user_name"`
	Message    string    `gorm:"type:text;not null" json:"message"`
	CreatedAt  time.Time `gorm:"index:idx_property_group_messages_prop_created" json:"created_at"`
}

// TableName specifies the table name for GORM
func (PropertyGroupMessage) TableName() string {
	return "property_group_messages"
}

// ThreadMessage is the scope-independent view of a message returned to clients.
type ThreadMessage struct {
	ID        uint        `json:"id"`
	Scope     ThreadScope `json:"scope"`
	ScopeID   uint        `json:"scope_id"`
	SenderID  uint        `json:"sender_id"`
	UserName  string      `json:"user_name"`
	Message   string      `json:"message"`
	CreatedAt time.Time   `json:"created_at"`
}
