package models

import "time"

// MemberStatus tracks a member's acceptance of a group seat.
type MemberStatus string

const (
	MemberStatusPending  MemberStatus = "pending"
	MemberStatusAccepted MemberStatus = "accepted"
	MemberStatusDeclined MemberStatus = "declined"
)

// DefaultMaxInvestors is used when a group is created without a cap.
const DefaultMaxInvestors = 10

// CoInvestmentGroup pools investors toward one property.
type CoInvestmentGroup struct {
	ID                    uint          `gorm:"primaryKey" json:"id"`
	PropertyID            uint          `gorm:"not null;index" json:"property_id"`
	GroupName             string        `gorm:"size:200;not null" json:"group_name"`
	LeadInvestorID        uint          `gorm:"not null;index" json:"lead_investor_id"`
	MaxInvestors          int           `gorm:"default:10" json:"max_investors"`
	MinInvestment         *float64      `json:"min_investment"`
	TotalInvestmentTarget float64       `json:"total_investment_target"`
	Description           string        `gorm:"type:text" json:"description"`
	CreatedAt             time.Time     `gorm:"index" json:"created_at"`
	UpdatedAt             time.Time     `json:"updated_at"`
	Members               []GroupMember `gorm:"foreignKey:GroupID" json:"members,omitempty"`
}

// TableName specifies the table name for GORM
func (CoInvestmentGroup) TableName() string {
	return "co_investment_groups"
}

// GroupMember attaches a user to a co-investment group.
type GroupMember struct {
	ID               uint         `gorm:"primaryKey" json:"id"`
	GroupID          uint         `gorm:"not null;uniqueIndex:idx_group_members_group_user" json:"group_id"`
	UserID           uint         `gorm:"not null;uniqueIndex:idx_group_members_group_user;index" json:"user_id"`
	InvestmentAmount float64      `gorm:"default:0" json:"investment_amount"`
	Role             InvestorRole `gorm:"type:varchar(20);default:'co_investor'" json:"role"`
	Status           MemberStatus `gorm:"type:varchar(20);default:'pending'" json:"status"`
	CreatedAt        time.Time    `json:"created_at"`
}

// TableName specifies the table name for GORM
func (GroupMember) TableName() string {
	return "group_members"
}

// HasMember reports whether userID leads or belongs to the group.
func (g *CoInvestmentGroup) HasMember(userID uint) bool {
	if g.LeadInvestorID == userID {
		return true
	}
	for _, m := range g.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}
