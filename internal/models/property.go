package models

import (
	"time"

	"gorm.io/datatypes"
)

// PropertyStatusActive is the default listing status.
const PropertyStatusActive = "Active"

// Property is a listing owned by a builder.
type Property struct {
	ID          uint     `gorm:"primaryKey" json:"id"`
	Title       string   `gorm:"size:200;not null" json:"title"`
	Description string   `gorm:"type:text" json:"description"`
	Price       *float64 `json:"price"`
	Type        string   `gorm:"size:50" json:"type"`
	Status      string   `gorm:"size:30;default:'Active'" json:"status"`

	BuilderID   *uint  `gorm:"index" json:"builder_id"`
	BuilderName string `gorm:"size:255" json:"builder_name"`

	AddressProvince   string `gorm:"size:50" json:"address_province"`
	AddressCity       string `gorm:"size:100" json:"address_city"`
	AddressStreet     string `gorm:"size:200" json:"address_street"`
	AddressStreetNum  string `gorm:"size:20" json:"address_street_num"`
	AddressPostalCode string `gorm:"size:20" json:"address_postal_code"`
	AddressUnit       string `gorm:"size:20" json:"address_unit"`

	Bedrooms      *int                        `json:"bedrooms"`
	Bathrooms     *int                        `json:"bathrooms"`
	Size          *int                        `json:"size"`
	Amenities     datatypes.JSONSlice[string] `json:"amenities"`
	PhotoURL      string                      `gorm:"size:500" json:"photo_url"`
	AvailableDate string                      `gorm:"size:10" json:"available_date"`

	LockedBy              *uint      `gorm:"index" json:"locked_by"`
	LockedByEmail         string     `gorm:"size:255" json:"locked_by_email"`
	LockedAt              *time.Time `json:"locked_at"`
	LockAgreementAccepted bool       `gorm:"default:false" json:"lock_agreement_accepted"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Property) TableName() string {
	return "properties"
}

// IsLocked reports whether an exclusive-negotiation lock is held.
func (p *Property) IsLocked() bool {
	return p.LockedBy != nil
}

// IsBuilder reports whether userID owns the listing.
func (p *Property) IsBuilder(userID uint) bool {
	return p.BuilderID != nil && *p.BuilderID == userID
}

// CanAct reports whether userID may continue property-scoped actions.
// Once locked, only the locking buyer and the builder may.
func (p *Property) CanAct(userID uint) bool {
	if !p.IsLocked() {
		return true
	}
	return *p.LockedBy == userID || p.IsBuilder(userID)
}
