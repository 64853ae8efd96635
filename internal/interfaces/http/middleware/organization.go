package middleware

import (
	"net/http"
	"strings"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrganizationContextKey is the key used to store organization information in gin.Context
const (
	OrganizationIDKey     = "organization_id"
	OrganizationCodeKey   = "organization_code"
	OrganizationHeaderKey = "X-Organization-ID"
)

// OrganizationInfo holds the extracted organization information
type OrganizationInfo struct {
	ID   uuid.UUID `json:"id"`
	Code string    `json:"code"`
}

// OrganizationExtractor defines the interface for extracting organization information
type OrganizationExtractor interface {
	ExtractOrganizationID(c *gin.Context) (string, error)
}

// OrganizationValidator defines the interface for validating organization
type OrganizationValidator interface {
	ValidateOrganization(organizationID string) (*OrganizationInfo, error)
}

// OrganizationMiddlewareConfig holds configuration for organization middleware
type OrganizationMiddlewareConfig struct {
	// HeaderEnabled enables X-Organization-ID header extraction
	HeaderEnabled bool
	// JWTEnabled enables JWT claim extraction (requires JWT middleware to run first)
	JWTEnabled bool
	// SubdomainEnabled enables subdomain extraction
	SubdomainEnabled bool
	// BaseDomain is the base domain for subdomain extraction (e.g., "esg.example.com")
	BaseDomain string
	// SkipPaths are paths that don't require organization context (e.g., health check)
	SkipPaths []string
	// Required determines if organization context is mandatory
	Required bool
	// Validator is an optional validator to check if organization exists and is active
	Validator OrganizationValidator
	// Logger for middleware logging
	Logger *zap.Logger
}

// DefaultOrganizationConfig returns default organization middleware configuration
func DefaultOrganizationConfig() OrganizationMiddlewareConfig {
	return OrganizationMiddlewareConfig{
		HeaderEnabled:    true,
		JWTEnabled:       true,
		SubdomainEnabled: false,
		BaseDomain:       "",
		SkipPaths:        []string{"/health", "/healthz", "/ready", "/metrics", "/api/v1/health"},
		Required:         true,
		Validator:        nil,
		Logger:           nil,
	}
}

// OrganizationMiddleware extracts organization information from the request
// Extraction order: JWT claims > X-Organization-ID header > subdomain
func OrganizationMiddleware() gin.HandlerFunc {
	return OrganizationMiddlewareWithConfig(DefaultOrganizationConfig())
}

// OrganizationMiddlewareWithConfig returns organization middleware with custom configuration
func OrganizationMiddlewareWithConfig(cfg OrganizationMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Check if path should be skipped
		path := c.Request.URL.Path
		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath || strings.HasPrefix(path, skipPath+"/") {
				c.Next()
				return
			}
		}

		var organizationID string
		var extractionMethod string

		// Priority 1: JWT claims (if JWT middleware has already run)
		if cfg.JWTEnabled {
			if jwtOrganizationID, exists := c.Get("jwt_organization_id"); exists {
				if tid, ok := jwtOrganizationID.(string); ok && tid != "" {
					organizationID = tid
					extractionMethod = "jwt"
				}
			}
		}

		// Priority 2: X-Organization-ID header
		if organizationID == "" && cfg.HeaderEnabled {
			if headerOrganizationID := c.GetHeader(OrganizationHeaderKey); headerOrganizationID != "" {
				organizationID = headerOrganizationID
				extractionMethod = "header"
			}
		}

		// Priority 3: Subdomain extraction
		if organizationID == "" && cfg.SubdomainEnabled && cfg.BaseDomain != "" {
			if subdomainOrganizationID := extractOrganizationFromSubdomain(c.Request.Host, cfg.BaseDomain); subdomainOrganizationID != "" {
				organizationID = subdomainOrganizationID
				extractionMethod = "subdomain"
			}
		}

		// Validate organization ID format if present
		if organizationID != "" {
			if err := validateOrganizationIDFormat(organizationID); err != nil {
				respondUnauthorized(c, "Invalid organization ID format")
				return
			}
		}

		// Check if organization is required
		if organizationID == "" && cfg.Required {
			respondUnauthorized(c, "Organization identification required")
			return
		}

		// Optional: Validate organization exists and is active
		var organizationInfo *OrganizationInfo
		if organizationID != "" && cfg.Validator != nil {
			var err error
			organizationInfo, err = cfg.Validator.ValidateOrganization(organizationID)
			if err != nil {
				log := cfg.Logger
				if log == nil {
					log = logger.FromContext(c.Request.Context())
				}
				log.Warn("Organization validation failed",
					zap.String("organization_id", organizationID),
					zap.Error(err),
				)
				respondUnauthorized(c, "Invalid or inactive organization")
				return
			}
		}

		// Set organization information in context
		if organizationID != "" {
			// Set in gin context for easy access in handlers
			c.Set(OrganizationIDKey, organizationID)
			if organizationInfo != nil {
				c.Set(OrganizationCodeKey, organizationInfo.Code)
			}

			// Set in request context for service layer access
			ctx := c.Request.Context()
			log := logger.FromContext(ctx)
			ctx, _ = logger.WithOrganizationID(ctx, log, organizationID)
			c.Request = c.Request.WithContext(ctx)

			// Log extraction method for debugging
			if cfg.Logger != nil {
				cfg.Logger.Debug("Organization identified",
					zap.String("organization_id", organizationID),
					zap.String("method", extractionMethod),
				)
			}
		}

		c.Next()
	}
}

// extractOrganizationFromSubdomain extracts organization code from subdomain
// e.g., "acme.esg.example.com" with baseDomain "esg.example.com" returns "acme"
func extractOrganizationFromSubdomain(host, baseDomain string) string {
	// Remove port if present
	if idx := strings.Index(host, ":"); idx != -1 {
		host = host[:idx]
	}

	// Check if host ends with base domain
	if !strings.HasSuffix(host, baseDomain) {
		return ""
	}

	// Extract subdomain
	subdomain := strings.TrimSuffix(host, "."+baseDomain)
	if subdomain == host || subdomain == "" || subdomain == "www" {
		return ""
	}

	// Return the first part of subdomain (in case of multi-level subdomains)
	parts := strings.Split(subdomain, ".")
	return parts[0]
}

// validateOrganizationIDFormat validates that the organization ID is a valid UUID
func validateOrganizationIDFormat(organizationID string) error {
	_, err := uuid.Parse(organizationID)
	return err
}

// respondUnauthorized sends an unauthorized response
func respondUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "UNAUTHORIZED",
			"message": message,
		},
	})
}

// GetOrganizationID retrieves the organization ID from gin.Context
func GetOrganizationID(c *gin.Context) string {
	if organizationID, exists := c.Get(OrganizationIDKey); exists {
		if tid, ok := organizationID.(string); ok {
			return tid
		}
	}
	return ""
}

// GetOrganizationUUID retrieves the organization ID as UUID from gin.Context
func GetOrganizationUUID(c *gin.Context) (uuid.UUID, error) {
	organizationID := GetOrganizationID(c)
	if organizationID == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(organizationID)
}

// GetOrganizationCode retrieves the organization code from gin.Context
func GetOrganizationCode(c *gin.Context) string {
	if organizationCode, exists := c.Get(OrganizationCodeKey); exists {
		if code, ok := organizationCode.(string); ok {
			return code
		}
	}
	return ""
}

// MustGetOrganizationID retrieves the organization ID from gin.Context or panics if not found
// Use this only in handlers where organization is guaranteed to exist
func MustGetOrganizationID(c *gin.Context) string {
	organizationID := GetOrganizationID(c)
	if organizationID == "" {
		panic("organization_id not found in context")
	}
	return organizationID
}

// MustGetOrganizationUUID retrieves the organization ID as UUID or panics if not found
func MustGetOrganizationUUID(c *gin.Context) uuid.UUID {
	organizationUUID, err := GetOrganizationUUID(c)
	if err != nil || organizationUUID == uuid.Nil {
		panic("valid organization_id not found in context")
	}
	return organizationUUID
}

// OptionalOrganizationMiddleware creates middleware that doesn't require organization
func OptionalOrganizationMiddleware() gin.HandlerFunc {
	cfg := DefaultOrganizationConfig()
	cfg.Required = false
	return OrganizationMiddlewareWithConfig(cfg)
}
