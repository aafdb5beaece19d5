package models

import "time"

// Conversation is a 1:1 or group thread scoped to a property or an
// opportunity. At most one conversation exists per (property, is_group) and
// per (opportunity, is_group).
type Conversation struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	PropertyID    *uint        `gorm:"uniqueIndex:idx_conversations_property_group" json:"property_id,omitempty"`
	OpportunityID *uint        `gorm:"uniqueIndex:idx_conversations_opportunity_group" json:"opportunity_id,omitempty"`
	IsGroup       bool         `gorm:"not null;default:false;uniqueIndex:idx_conversations_property_group;uniqueIndex:idx_conversations_opportunity_group" json:"is_group"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
	Property      *Property    `gorm:"foreignKey:PropertyID" json:"property,omitempty"`
	Opportunity   *Opportunity `gorm:"foreignKey:OpportunityID" json:"opportunity,omitempty"`
	Participants  []User       `gorm:"many2many:conversation_participants;" json:"participants,omitempty"`
}

// TableName specifies the table name for GORM
func (Conversation) TableName() string {
	return "conversations"
}

// HasParticipant reports whether userID is in the loaded participant list.
func (c *Conversation) HasParticipant(userID uint) bool {
	for _, p := range c.Participants {
		if p.ID == userID {
			return true
		}
	}
	return false
}

// ConversationParticipant is the append-only membership join row.
type ConversationParticipant struct {
	ConversationID uint      `gorm:"primaryKey" json:"conversation_id"`
	UserID         uint      `gorm:"primaryKey" json:"user_id"`
	JoinedAt       time.Time `gorm:"autoCreateTime" json:"joined_at"`
}

// TableName specifies the table name for GORM
func (ConversationParticipant) TableName() string {
	return "conversation_participants"
}
