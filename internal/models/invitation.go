package models

import "time"

// InvitationStatus is the lifecycle state of a group invitation.
type InvitationStatus string

const (
	InvitationStatusPending  InvitationStatus = "pending"
	InvitationStatusAccepted InvitationStatus = "accepted"
	InvitationStatusDeclined InvitationStatus = "declined"
)

// IsTerminal reports whether no further transition is allowed.
func (s InvitationStatus) IsTerminal() bool {
	return s == InvitationStatusAccepted || s == InvitationStatusDeclined
}

// CanTransition reports whether s may move to next. Only pending may move,
// and only to accepted or declined.
func (s InvitationStatus) CanTransition(next InvitationStatus) bool {
	return s == InvitationStatusPending && next.IsTerminal()
}

// GroupInvitation offers a user a seat in a property's group conversation.
type GroupInvitation struct {
	ID                  uint             `gorm:"primaryKey" json:"id"`
	GroupConversationID uint             `gorm:"not null;index" json:"group_conversation_id"`
	PropertyID          uint             `gorm:"not null;index" json:"property_id"`
	InviterID           uint             `gorm:"not null" json:"inviter_id"`
	InviteeID           uint             `gorm:"not null;index:idx_group_invitations_invitee_status" json:"invitee_id"`
	Status              InvitationStatus `gorm:"type:varchar(20);not null;default:'pending';index:idx_group_invitations_invitee_status" json:"status"`
	Read                bool             `gorm:"default:false" json:"read"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`

	Conversation *Conversation `gorm:"foreignKey:GroupConversationID" json:"conversation,omitempty"`
	Property     *Property     `gorm:"foreignKey:PropertyID" json:"property,omitempty"`
	Inviter      *User         `gorm:"foreignKey:InviterID" json:"inviter,omitempty"`
}

// TableName specifies the table name for GORM
func (GroupInvitation) TableName() string {
	return "group_invitations"
}
