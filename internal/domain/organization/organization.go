package organization

import (
	"strings"
	"time"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared"
)

// OrganizationStatus represents the status of an organization
type OrganizationStatus string

const (
	OrganizationStatusActive    OrganizationStatus = "active"
	OrganizationStatusInactive  OrganizationStatus = "inactive"
	OrganizationStatusSuspended OrganizationStatus = "suspended" // Suspended by a platform operator
)

// ReportingFramework represents the disclosure framework an organization reports under
type ReportingFramework string

const (
	FrameworkESRS   ReportingFramework = "esrs" // EU CSRD / European Sustainability Reporting Standards
	FrameworkGRI    ReportingFramework = "gri"
	FrameworkSASB   ReportingFramework = "sasb"
	FrameworkTCFD   ReportingFramework = "tcfd"
	FrameworkCustom ReportingFramework = "custom"
)

// HeadcountBand represents the employee headcount band of an organization
type HeadcountBand string

const (
	HeadcountBandMicro      HeadcountBand = "1-9"
	HeadcountBandSmall      HeadcountBand = "10-49"
	HeadcountBandMedium     HeadcountBand = "50-249"
	HeadcountBandLarge      HeadcountBand = "250-999"
	HeadcountBandEnterprise HeadcountBand = "1000+"
)

// OrganizationConfig holds configurable settings for an organization
type OrganizationConfig struct {
	MaxUsers        int    `json:"max_users"`          // Maximum number of users allowed
	MaxUploadSizeMB int    `json:"max_upload_size_mb"` // Maximum evidence upload size
	ScoringStrategy string `json:"scoring_strategy"`   // Completeness scoring strategy (weighted, strict)
	Features        string `json:"features"`           // JSON object of enabled features
	Settings        string `json:"settings"`           // JSON object of organization settings
	Timezone        string `json:"timezone"`           // Organization timezone
	Locale          string `json:"locale"`             // Organization locale (e.g., en-US, pl-PL)
}

// DefaultOrganizationConfig returns the default configuration for a new organization
func DefaultOrganizationConfig() OrganizationConfig {
	return OrganizationConfig{
		MaxUsers:        50,
		MaxUploadSizeMB: 25,
		ScoringStrategy: "weighted",
		Features:        "{}",
		Settings:        "{}",
		Timezone:        "Europe/Warsaw",
		Locale:          "en-US",
	}
}

// Sector is a static catalog entry describing an industry sector
type Sector struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Sectors returns the static sector catalog used for organization profiles
func Sectors() []Sector {
	return []Sector{
		{Code: "energy", Name: "Energy"},
		{Code: "materials", Name: "Materials"},
		{Code: "industrials", Name: "Industrials"},
		{Code: "consumer_discretionary", Name: "Consumer Discretionary"},
		{Code: "consumer_staples", Name: "Consumer Staples"},
		{Code: "health_care", Name: "Health Care"},
		{Code: "financials", Name: "Financials"},
		{Code: "information_technology", Name: "Information Technology"},
		{Code: "communication_services", Name: "Communication Services"},
		{Code: "utilities", Name: "Utilities"},
		{Code: "real_estate", Name: "Real Estate"},
		{Code: "transportation", Name: "Transportation"},
		{Code: "agriculture", Name: "Agriculture"},
		{Code: "public_sector", Name: "Public Sector"},
		{Code: "other", Name: "Other"},
	}
}

// IsValidSector reports whether code is part of the sector catalog
func IsValidSector(code string) bool {
	for _, s := range Sectors() {
		if s.Code == code {
			return true
		}
	}
	return false
}

// Organization represents a reporting organization
// It is the aggregate root all other aggregates are scoped to
type Organization struct {
	shared.BaseAggregateRoot
	Code                 string             `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name                 string             `gorm:"type:varchar(200);not null"`
	LegalName            string             `gorm:"type:varchar(300)"`
	RegistrationNumber   string             `gorm:"type:varchar(100)"` // National registry or LEI
	Country              string             `gorm:"type:varchar(2)"`   // ISO 3166-1 alpha-2
	Sector               string             `gorm:"type:varchar(50)"`
	Headcount            HeadcountBand      `gorm:"type:varchar(20)"`
	FiscalYearStartMonth int                `gorm:"not null;default:1"` // 1 = January
	Framework            ReportingFramework `gorm:"type:varchar(20);not null;default:'esrs'"`
	Status               OrganizationStatus `gorm:"type:varchar(20);not null;default:'active'"`
	ContactName          string             `gorm:"type:varchar(100)"` // Disclosure contact
	ContactPhone         string             `gorm:"type:varchar(50)"`
	ContactEmail         string             `gorm:"type:varchar(200)"`
	Address              string             `gorm:"type:text"`
	Website              string             `gorm:"type:varchar(500)"`
	LogoURL              string             `gorm:"type:varchar(500)"`
	Config               OrganizationConfig `gorm:"embedded;embeddedPrefix:config_"`
	Notes                string             `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Organization) TableName() string {
	return "organizations"
}

// NewOrganization creates a new organization with required fields
func NewOrganization(code, name string) (*Organization, error) {
	if err := validateOrganizationCode(code); err != nil {
		return nil, err
	}
	if err := validateOrganizationName(name); err != nil {
		return nil, err
	}

	org := &Organization{
		BaseAggregateRoot:    shared.NewBaseAggregateRoot(),
		Code:                 strings.ToUpper(code),
		Name:                 name,
		Status:               OrganizationStatusActive,
		Framework:            FrameworkESRS,
		FiscalYearStartMonth: 1,
		Config:               DefaultOrganizationConfig(),
	}

	org.AddDomainEvent(NewOrganizationCreatedEvent(org))

	return org, nil
}

// Update updates the organization's basic information
func (o *Organization) Update(name, legalName string) error {
	if err := validateOrganizationName(name); err != nil {
		return err
	}
	if legalName != "" && len(legalName) > 300 {
		return shared.NewDomainError("INVALID_LEGAL_NAME", "Legal name cannot exceed 300 characters")
	}

	o.Name = name
	o.LegalName = legalName
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	o.AddDomainEvent(NewOrganizationUpdatedEvent(o))

	return nil
}

// SetRegistration sets the registration number and country
func (o *Organization) SetRegistration(registrationNumber, country string) error {
	if registrationNumber != "" && len(registrationNumber) > 100 {
		return shared.NewDomainError("INVALID_REGISTRATION", "Registration number cannot exceed 100 characters")
	}
	country = strings.ToUpper(strings.TrimSpace(country))
	if country != "" && len(country) != 2 {
		return shared.NewDomainError("INVALID_COUNTRY", "Country must be an ISO 3166-1 alpha-2 code")
	}

	o.RegistrationNumber = strings.TrimSpace(registrationNumber)
	o.Country = country
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return nil
}

// SetSector sets the organization's industry sector
func (o *Organization) SetSector(sector string) error {
	sector = strings.ToLower(strings.TrimSpace(sector))
	if sector != "" && !IsValidSector(sector) {
		return shared.NewDomainError("INVALID_SECTOR", "Sector is not part of the sector catalog")
	}

	o.Sector = sector
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return nil
}

// SetHeadcount sets the organization's employee headcount band
func (o *Organization) SetHeadcount(band HeadcountBand) error {
	if band != "" {
		if err := validateHeadcountBand(band); err != nil {
			return err
		}
	}

	o.Headcount = band
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return nil
}

// SetFiscalYearStart sets the month the organization's fiscal year starts in
func (o *Organization) SetFiscalYearStart(month int) error {
	if month < 1 || month > 12 {
		return shared.NewDomainError("INVALID_FISCAL_YEAR_START", "Fiscal year start month must be between 1 and 12")
	}

	o.FiscalYearStartMonth = month
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return nil
}

// SetFramework sets the organization's default reporting framework
func (o *Organization) SetFramework(framework ReportingFramework) error {
	if err := validateFramework(framework); err != nil {
		return err
	}

	oldFramework := o.Framework
	o.Framework = framework
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	o.AddDomainEvent(NewOrganizationFrameworkChangedEvent(o, oldFramework, framework))

	return nil
}

// SetContact sets the organization's disclosure contact information
func (o *Organization) SetContact(contactName, phone, email string) error {
	if contactName != "" && len(contactName) > 100 {
		return shared.NewDomainError("INVALID_CONTACT_NAME", "Contact name cannot exceed 100 characters")
	}
	if phone != "" && len(phone) > 50 {
		return shared.NewDomainError("INVALID_PHONE", "Phone cannot exceed 50 characters")
	}
	if email != "" && len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}

	o.ContactName = contactName
	o.ContactPhone = phone
	o.ContactEmail = email
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return nil
}

// SetAddress sets the organization's address
func (o *Organization) SetAddress(address string) error {
	if address != "" && len(address) > 500 {
		return shared.NewDomainError("INVALID_ADDRESS", "Address cannot exceed 500 characters")
	}

	o.Address = address
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return nil
}

// SetWebsite sets the organization's website URL
func (o *Organization) SetWebsite(url string) error {
	if url != "" && len(url) > 500 {
		return shared.NewDomainError("INVALID_URL", "Website URL cannot exceed 500 characters")
	}

	o.Website = url
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return nil
}

// SetLogoURL sets the organization's logo URL
func (o *Organization) SetLogoURL(url string) error {
	if url != "" && len(url) > 500 {
		return shared.NewDomainError("INVALID_URL", "Logo URL cannot exceed 500 characters")
	}

	o.LogoURL = url
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return nil
}

// UpdateConfig updates the organization's configuration
func (o *Organization) UpdateConfig(config OrganizationConfig) error {
	if config.MaxUsers < 0 {
		return shared.NewDomainError("INVALID_MAX_USERS", "Max users cannot be negative")
	}
	if config.MaxUploadSizeMB < 0 {
		return shared.NewDomainError("INVALID_MAX_UPLOAD_SIZE", "Max upload size cannot be negative")
	}
	if config.ScoringStrategy != "" && config.ScoringStrategy != "weighted" && config.ScoringStrategy != "strict" {
		return shared.NewDomainError("INVALID_SCORING_STRATEGY", "Scoring strategy must be 'weighted' or 'strict'")
	}

	o.Config = config
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return nil
}

// SetNotes sets the organization's notes
func (o *Organization) SetNotes(notes string) {
	o.Notes = notes
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
}

// Activate activates the organization
func (o *Organization) Activate() error {
	if o.Status == OrganizationStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Organization is already active")
	}

	oldStatus := o.Status
	o.Status = OrganizationStatusActive
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	o.AddDomainEvent(NewOrganizationStatusChangedEvent(o, oldStatus, OrganizationStatusActive))

	return nil
}

// Deactivate deactivates the organization
func (o *Organization) Deactivate() error {
	if o.Status == OrganizationStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Organization is already inactive")
	}

	oldStatus := o.Status
	o.Status = OrganizationStatusInactive
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	o.AddDomainEvent(NewOrganizationStatusChangedEvent(o, oldStatus, OrganizationStatusInactive))

	return nil
}

// Suspend suspends the organization
func (o *Organization) Suspend() error {
	if o.Status == OrganizationStatusSuspended {
		return shared.NewDomainError("ALREADY_SUSPENDED", "Organization is already suspended")
	}

	oldStatus := o.Status
	o.Status = OrganizationStatusSuspended
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	o.AddDomainEvent(NewOrganizationStatusChangedEvent(o, oldStatus, OrganizationStatusSuspended))

	return nil
}

// IsActive returns true if the organization is active
func (o *Organization) IsActive() bool {
	return o.Status == OrganizationStatusActive
}

// IsInactive returns true if the organization is inactive
func (o *Organization) IsInactive() bool {
	return o.Status == OrganizationStatusInactive
}

// IsSuspended returns true if the organization is suspended
func (o *Organization) IsSuspended() bool {
	return o.Status == OrganizationStatusSuspended
}

// CanAddUser returns true if the organization can add more users
func (o *Organization) CanAddUser(currentUserCount int) bool {
	return currentUserCount < o.Config.MaxUsers
}

// FiscalYearForDate returns the fiscal year label a given date falls into,
// honoring the configured fiscal year start month
func (o *Organization) FiscalYearForDate(date time.Time) int {
	if int(date.Month()) >= o.FiscalYearStartMonth {
		return date.Year()
	}
	return date.Year() - 1
}

// Validation functions

func validateOrganizationCode(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Organization code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Organization code cannot exceed 50 characters")
	}
	for _, r := range code {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewDomainError("INVALID_CODE", "Organization code can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

func validateOrganizationName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Organization name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Organization name cannot exceed 200 characters")
	}
	return nil
}

func validateFramework(framework ReportingFramework) error {
	switch framework {
	case FrameworkESRS, FrameworkGRI, FrameworkSASB, FrameworkTCFD, FrameworkCustom:
		return nil
	default:
		return shared.NewDomainError("INVALID_FRAMEWORK", "Invalid reporting framework")
	}
}

func validateHeadcountBand(band HeadcountBand) error {
	switch band {
	case HeadcountBandMicro, HeadcountBandSmall, HeadcountBandMedium, HeadcountBandLarge, HeadcountBandEnterprise:
		return nil
	default:
		return shared.NewDomainError("INVALID_HEADCOUNT_BAND", "Invalid headcount band")
	}
}
