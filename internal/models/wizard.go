package models

import (
	"time"

	"gorm.io/datatypes"
)

// WizardName identifies one of the multi-step forms.
type WizardName string

const (
	WizardProfile  WizardName = "profile"
	WizardListing  WizardName = "listing"
	WizardInterest WizardName = "interest"
	WizardGroup    WizardName = "group"
)

// WizardDraft is the resumable partial state of a wizard, keyed by user and
// wizard. ScopeID is the property an interest or group wizard targets.
type WizardDraft struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;uniqueIndex:idx_wizard_drafts_user_wizard" json:"user_id"`
	Wizard    WizardName     `gorm:"type:varchar(20);not null;uniqueIndex:idx_wizard_drafts_user_wizard" json:"wizard"`
	ScopeID   *uint          `json:"scope_id,omitempty"`
	Step      int            `gorm:"not null;default:0" json:"step"`
	Data      datatypes.JSON `json:"data"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (WizardDraft) TableName() string {
	return "wizard_drafts"
}
