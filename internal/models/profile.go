package models

import (
	"strings"
	"time"
)

// ProfileSections is the number of sections in the profile questionnaire.
const ProfileSections = 7

// Profile holds the extended, incrementally filled attributes of a user.
// Its ID equals the owning user's ID.
type Profile struct {
	ID       uint   `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Email    string `gorm:"size:255" json:"email"`
	UserRole Role   `gorm:"type:varchar(20)" json:"user_role"`

	// Personal details
	AccountType   string `gorm:"size:50" json:"account_type"`
	FirstName     string `gorm:"size:100" json:"first_name"`
	MiddleName    string `gorm:"size:100" json:"middle_name"`
	LastName      string `gorm:"size:100" json:"last_name"`
	DateOfBirth   string `gorm:"size:10" json:"date_of_birth"`
	SIN           string `gorm:"column:sin;size:20" json:"sin,omitempty"`
	Gender        string `gorm:"size:30" json:"gender"`
	MaritalStatus string `gorm:"size:30" json:"marital_status"`
	Phone         string `gorm:"size:40" json:"phone"`

	// Residency and citizenship
	IsCanadianResident     *bool  `json:"is_canadian_resident"`
	CountryOfOrigin        string `gorm:"size:100" json:"country_of_origin"`
	CanadianStatus         string `gorm:"size:100" json:"canadian_status"`
	UniversityName         string `gorm:"size:200" json:"university_name"`
	LevelOfStudy           string `gorm:"size:50" json:"level_of_study"`
	StudyStartDate         string `gorm:"size:10" json:"study_start_date"`
	ExpectedGraduationDate string `gorm:"size:10" json:"expected_graduation_date"`
	WorkPermitStartDate    string `gorm:"size:10" json:"work_permit_start_date"`
	WorkPermitEndDate      string `gorm:"size:10" json:"work_permit_end_date"`
	PRApplicationDate      string `gorm:"column:pr_application_date;size:10" json:"pr_application_date"`

	// Address
	ResidentialProvince      string `gorm:"size:50" json:"residential_province"`
	ResidentialCity          string `gorm:"size:100" json:"residential_city"`
	ResidentialStreetNumber  string `gorm:"size:20" json:"residential_street_number"`
	ResidentialStreetName    string `gorm:"size:200" json:"residential_street_name"`
	ResidentialPostalCode    string `gorm:"size:20" json:"residential_postal_code"`
	ResidentialUnitNumber    string `gorm:"size:20" json:"residential_unit_number"`
	MailingSameAsResidential *bool  `json:"mailing_same_as_residential"`
	MailingProvince          string `gorm:"size:50" json:"mailing_province"`
	MailingCity              string `gorm:"size:100" json:"mailing_city"`
	MailingStreetNumber      string `gorm:"size:20" json:"mailing_street_number"`
	MailingStreetName        string `gorm:"size:200" json:"mailing_street_name"`
	MailingPostalCode        string `gorm:"size:20" json:"mailing_postal_code"`
	MailingUnitNumber        string `gorm:"size:20" json:"mailing_unit_number"`

	// Employment and finances
	EmploymentType          string   `gorm:"size:30" json:"employment_type"`
	EmployerName            string   `gorm:"size:200" json:"employer_name"`
	JobTitle                string   `gorm:"size:200" json:"job_title"`
	MonthlyIncome           *float64 `json:"monthly_income"`
	EmploymentStartDate     string   `gorm:"size:10" json:"employment_start_date"`
	EmploymentEndDate       string   `gorm:"size:10" json:"employment_end_date"`
	CurrentlyWorkingHere    *bool    `json:"currently_working_here"`
	EmploymentDurationYears *float64 `json:"employment_duration_years"`
	BusinessName            string   `gorm:"size:200" json:"business_name"`
	BusinessStartDate       string   `gorm:"size:10" json:"business_start_date"`
	BusinessDurationYears   *float64 `json:"business_duration_years"`
	YearlyIncome            *float64 `json:"yearly_income"`

	// Debt and obligations
	HasCar            *bool    `json:"has_car"`
	CarMake           string   `gorm:"size:100" json:"car_make"`
	CarYear           string   `gorm:"size:4" json:"car_year"`
	CarFinancingType  string   `gorm:"size:20" json:"car_financing_type"`
	CarLeaseStartDate string   `gorm:"size:10" json:"car_lease_start_date"`
	CarLeaseEndDate   string   `gorm:"size:10" json:"car_lease_end_date"`
	CarFinanceAmount  *float64 `json:"car_finance_amount"`
	HasLoan           *bool    `json:"has_loan"`

	// Investment capacity
	Budget                *float64 `json:"budget"`
	OwnsRealEstate        *bool    `json:"owns_real_estate"`
	ComfortableInvestment *float64 `json:"comfortable_investment"`

	// Backup plans
	HasEmergencySavings *bool `json:"has_emergency_savings"`
	HasFamilyBackup     *bool `json:"has_family_backup"`
	HasPropertyBackup   *bool `json:"has_property_backup"`

	ProfileCompleted bool      `gorm:"default:false" json:"profile_completed"`
	CurrentSection   int       `gorm:"default:1" json:"current_section"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Profile) TableName() string {
	return "profiles"
}

// FullName returns "first last" or an empty string when either part is missing.
func (p *Profile) FullName() string {
	if p == nil {
		return ""
	}
	first := strings.TrimSpace(p.FirstName)
	last := strings.TrimSpace(p.LastName)
	if first == "" || last == "" {
		return ""
	}
	return first + " " + last
}

// StoredName joins whichever name parts are present. It is empty only when
// both are blank.
func (p *Profile) StoredName() string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
}

// PublicProfile is the subset of a profile shown to other users when an
// interest opts into show_profile_to_others.
type PublicProfile struct {
	ID                  uint     `json:"id"`
	FirstName           string   `json:"first_name"`
	LastName            string   `json:"last_name"`
	AccountType         string   `json:"account_type"`
	ResidentialCity     string   `json:"residential_city"`
	ResidentialProvince string   `json:"residential_province"`
	EmploymentType      string   `json:"employment_type"`
	Budget              *float64 `json:"budget"`
	OwnsRealEstate      *bool    `json:"owns_real_estate"`
}

// Public strips private fields from the profile.
func (p *Profile) Public() PublicProfile {
	return PublicProfile{
		ID:                  p.ID,
		FirstName:           p.FirstName,
		LastName:            p.LastName,
		AccountType:         p.AccountType,
		ResidentialCity:     p.ResidentialCity,
		ResidentialProvince: p.ResidentialProvince,
		EmploymentType:      p.EmploymentType,
		Budget:              p.Budget,
		OwnsRealEstate:      p.OwnsRealEstate,
	}
}
