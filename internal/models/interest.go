package models

import "time"

// InterestLevel grades how committed a buyer is.
type InterestLevel string

const (
	InterestLevelInterested     InterestLevel = "interested"
	InterestLevelVeryInterested InterestLevel = "very_interested"
	InterestLevelReadyToInvest  InterestLevel = "ready_to_invest"
)

// Valid reports whether l is a known level.
func (l InterestLevel) Valid() bool {
	switch l {
	case InterestLevelInterested, InterestLevelVeryInterested, InterestLevelReadyToInvest:
		return true
	}
	return false
}

// InvestorRole is the role a member plays in a co-investment group.
type InvestorRole string

const (
	InvestorRoleLead    InvestorRole = "lead_investor"
	InvestorRoleCo      InvestorRole = "co_investor"
	InvestorRolePassive InvestorRole = "passive_investor"
)

// Valid reports whether r is a known investor role.
func (r InvestorRole) Valid() bool {
	switch r {
	case InvestorRoleLead, InvestorRoleCo, InvestorRolePassive:
		return true
	}
	return false
}

// PropertyInterest is a buyer's declared interest in a property. Rows are
// never updated; resubmitting creates a new row.
type PropertyInterest struct {
	ID                  uint          `gorm:"primaryKey" json:"id"`
	PropertyID          uint          `gorm:"not null;index" json:"property_id"`
	UserID              uint          `gorm:"not null;index" json:"user_id"`
	UserEmail           string        `gorm:"size:255" json:"user_email"`
	UserName            string        `gorm:"size:255" json:"user_name"`
	Description         string        `gorm:"type:text" json:"description"`
	DisplayRealName     bool          `gorm:"default:false" json:"display_real_name"`
	ShowProfileToOthers bool          `gorm:"default:false" json:"show_profile_to_others"`
	InterestLevel       InterestLevel `gorm:"type:varchar(20);default:'interested'" json:"interest_level"`
	InvestmentAmount    *float64      `json:"investment_amount"`
	PreferredRole       InvestorRole  `gorm:"type:varchar(20);default:'co_investor'" json:"preferred_role"`
	CreatedAt           time.Time     `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for GORM
func (PropertyInterest) TableName() string {
	return "property_interests"
}

// Label is the privacy-aware name shown for this interest.
func (i *PropertyInterest) Label() string {
	return DisplayName(i.DisplayRealName, i.UserName, i.UserEmail)
}
