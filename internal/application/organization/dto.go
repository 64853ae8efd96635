package organization

import (
	"time"

	"github.com/google/uuid"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/organization"
)

// CreateOrganizationRequest represents a request to create an organization
type CreateOrganizationRequest struct {
	Code      string `json:"code" binding:"required,min=2,max=50"`
	Name      string `json:"name" binding:"required,min=1,max=200"`
	LegalName string `json:"legal_name" binding:"max=300"`
	Country   string `json:"country" binding:"omitempty,len=2"`
	Sector    string `json:"sector"`
	Framework string `json:"framework" binding:"omitempty,oneof=esrs gri sasb tcfd custom"`
}

// UpdateOrganizationRequest represents a request to update organization profile fields
type UpdateOrganizationRequest struct {
	Name               *string `json:"name"`
	LegalName          *string `json:"legal_name"`
	RegistrationNumber *string `json:"registration_number"`
	Country            *string `json:"country"`
	Sector             *string `json:"sector"`
	Headcount          *string `json:"headcount"`
	FiscalYearStart    *int    `json:"fiscal_year_start"`
	ContactName        *string `json:"contact_name"`
	ContactPhone       *string `json:"contact_phone"`
	ContactEmail       *string `json:"contact_email"`
	Address            *string `json:"address"`
	Website            *string `json:"website"`
	LogoURL            *string `json:"logo_url"`
	Notes              *string `json:"notes"`
}

// SetFrameworkRequest represents a request to change the reporting framework
type SetFrameworkRequest struct {
	Framework string `json:"framework" binding:"required,oneof=esrs gri sasb tcfd custom"`
}

// UpdateConfigRequest represents a request to update organization configuration
type UpdateConfigRequest struct {
	MaxUsers        *int    `json:"max_users"`
	MaxUploadSizeMB *int    `json:"max_upload_size_mb"`
	ScoringStrategy *string `json:"scoring_strategy" binding:"omitempty,oneof=weighted strict"`
	Features        *string `json:"features"`
	Settings        *string `json:"settings"`
	Timezone        *string `json:"timezone"`
	Locale          *string `json:"locale"`
}

// OrganizationListFilter represents filtering options for organization listings
type OrganizationListFilter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	Status   *organization.OrganizationStatus
	Country  string
	Sector   string
}

// ConfigResponse represents organization configuration in API responses
type ConfigResponse struct {
	MaxUsers        int    `json:"max_users"`
	MaxUploadSizeMB int    `json:"max_upload_size_mb"`
	ScoringStrategy string `json:"scoring_strategy"`
	Features        string `json:"features"`
	Settings        string `json:"settings"`
	Timezone        string `json:"timezone"`
	Locale          string `json:"locale"`
}

// OrganizationResponse represents an organization in API responses
type OrganizationResponse struct {
	ID                   uuid.UUID      `json:"id"`
	Code                 string         `json:"code"`
	Name                 string         `json:"name"`
	LegalName            string         `json:"legal_name,omitempty"`
	RegistrationNumber   string         `json:"registration_number,omitempty"`
	Country              string         `json:"country,omitempty"`
	Sector               string         `json:"sector,omitempty"`
	Headcount            string         `json:"headcount,omitempty"`
	FiscalYearStartMonth int            `json:"fiscal_year_start_month"`
	Framework            string         `json:"framework"`
	Status               string         `json:"status"`
	ContactName          string         `json:"contact_name,omitempty"`
	ContactPhone         string         `json:"contact_phone,omitempty"`
	ContactEmail         string         `json:"contact_email,omitempty"`
	Address              string         `json:"address,omitempty"`
	Website              string         `json:"website,omitempty"`
	LogoURL              string         `json:"logo_url,omitempty"`
	Config               ConfigResponse `json:"config"`
	Notes                string         `json:"notes,omitempty"`
	Version              int            `json:"version"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
}

// SectorResponse represents a sector catalog entry
type SectorResponse struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// ToOrganizationResponse converts a domain organization to a response DTO
func ToOrganizationResponse(o *organization.Organization) OrganizationResponse {
	return OrganizationResponse{
		ID:                   o.ID,
		Code:                 o.Code,
		Name:                 o.Name,
		LegalName:            o.LegalName,
		RegistrationNumber:   o.RegistrationNumber,
		Country:              o.Country,
		Sector:               o.Sector,
		Headcount:            string(o.Headcount),
		FiscalYearStartMonth: o.FiscalYearStartMonth,
		Framework:            string(o.Framework),
		Status:               string(o.Status),
		ContactName:          o.ContactName,
		ContactPhone:         o.ContactPhone,
		ContactEmail:         o.ContactEmail,
		Address:              o.Address,
		Website:              o.Website,
		LogoURL:              o.LogoURL,
		Config: ConfigResponse{
			MaxUsers:        o.Config.MaxUsers,
			MaxUploadSizeMB: o.Config.MaxUploadSizeMB,
			ScoringStrategy: o.Config.ScoringStrategy,
			Features:        o.Config.Features,
			Settings:        o.Config.Settings,
			Timezone:        o.Config.Timezone,
			Locale:          o.Config.Locale,
		},
		Notes:     o.Notes,
		Version:   o.Version,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

// ToOrganizationResponses converts a slice of domain organizations to response DTOs
func ToOrganizationResponses(orgs []organization.Organization) []OrganizationResponse {
	responses := make([]OrganizationResponse, len(orgs))
	for i := range orgs {
		responses[i] = ToOrganizationResponse(&orgs[i])
	}
	return responses
}
