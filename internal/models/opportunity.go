package models

import "time"

// Opportunity is a user-posted co-investment opportunity.
type Opportunity struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"not null;index" json:"user_id"`
	Type            string    `gorm:"size:50;not null;default:'residential'" json:"type"`
	Title           string    `gorm:"size:200;not null" json:"title"`
	PropertyAddress string    `gorm:"size:300;not null" json:"property_address"`
	Description     string    `gorm:"type:text;not null" json:"description"`
	CreatedAt       time.Time `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for GORM
func (Opportunity) TableName() string {
	return "co_investment_opportunities"
}

// OpportunityComment is a public comment on an opportunity.
type OpportunityComment struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	OpportunityID uint      `gorm:"not null;index" json:"opportunity_id"`
	UserID        uint      `gorm:"not null" json:"user_id"`
	CommentText   string    `gorm:"type:text;not null" json:"comment_text"`
	CreatedAt     time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (OpportunityComment) TableName() string {
	return "opportunity_comments"
}
