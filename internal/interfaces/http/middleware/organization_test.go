package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// mockOrganizationValidator is a test implementation of OrganizationValidator
type mockOrganizationValidator struct {
	ValidOrganizations map[string]*OrganizationInfo
	ShouldFail         bool
	FailError          error
}

func (m *mockOrganizationValidator) ValidateOrganization(organizationID string) (*OrganizationInfo, error) {
	if m.ShouldFail {
		return nil, m.FailError
	}
	if info, exists := m.ValidOrganizations[organizationID]; exists {
		return info, nil
	}
	return nil, errors.New("organization not found")
}

func TestOrganizationMiddleware_HeaderExtraction(t *testing.T) {
	tests := []struct {
		name           string
		organizationID string
		expectedStatus int
		expectedID     string
	}{
		{
			name:           "valid organization ID in header",
			organizationID: uuid.New().String(),
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing organization ID",
			organizationID: "",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "invalid organization ID format",
			organizationID: "invalid-uuid",
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(OrganizationMiddleware())

			var capturedOrganizationID string
			router.GET("/test", func(c *gin.Context) {
				capturedOrganizationID = GetOrganizationID(c)
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.organizationID != "" {
				req.Header.Set(OrganizationHeaderKey, tt.organizationID)
			}
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, tt.organizationID, capturedOrganizationID)
			}
		})
	}
}

func TestOrganizationMiddleware_JWTExtraction(t *testing.T) {
	organizationID := uuid.New().String()

	router := gin.New()

	// Simulate JWT middleware that sets organization_id
	router.Use(func(c *gin.Context) {
		c.Set("jwt_organization_id", organizationID)
		c.Next()
	})
	router.Use(OrganizationMiddleware())

	var capturedOrganizationID string
	router.GET("/test", func(c *gin.Context) {
		capturedOrganizationID = GetOrganizationID(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, organizationID, capturedOrganizationID)
}

func TestOrganizationMiddleware_JWTOverridesHeader(t *testing.T) {
	jwtOrganizationID := uuid.New().String()
	headerOrganizationID := uuid.New().String()

	router := gin.New()

	// JWT sets one organization ID
	router.Use(func(c *gin.Context) {
		c.Set("jwt_organization_id", jwtOrganizationID)
		c.Next()
	})
	router.Use(OrganizationMiddleware())

	var capturedOrganizationID string
	router.GET("/test", func(c *gin.Context) {
		capturedOrganizationID = GetOrganizationID(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	// Header sets a different organization ID
	req.Header.Set(OrganizationHeaderKey, headerOrganizationID)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	// JWT should take priority over header
	assert.Equal(t, jwtOrganizationID, capturedOrganizationID)
}

func TestOrganizationMiddleware_SkipPaths(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		skipPaths      []string
		organizationID string
		expectedStatus int
	}{
		{
			name:           "health endpoint skipped",
			path:           "/health",
			skipPaths:      []string{"/health"},
			organizationID: "",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "api health endpoint skipped",
			path:           "/api/v1/health",
			skipPaths:      []string{"/api/v1/health"},
			organizationID: "",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "metrics endpoint skipped",
			path:           "/metrics",
			skipPaths:      []string{"/metrics"},
			organizationID: "",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "nested health path skipped",
			path:           "/health/ready",
			skipPaths:      []string{"/health"},
			organizationID: "",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "non-skipped path requires organization",
			path:           "/api/test",
			skipPaths:      []string{"/health"},
			organizationID: "",
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			cfg := DefaultOrganizationConfig()
			cfg.SkipPaths = tt.skipPaths
			router.Use(OrganizationMiddlewareWithConfig(cfg))

			router.GET(tt.path, func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.organizationID != "" {
				req.Header.Set(OrganizationHeaderKey, tt.organizationID)
			}
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestOrganizationMiddleware_OptionalOrganization(t *testing.T) {
	router := gin.New()
	router.Use(OptionalOrganizationMiddleware())

	var capturedOrganizationID string
	router.GET("/test", func(c *gin.Context) {
		capturedOrganizationID = GetOrganizationID(c)
		c.Status(http.StatusOK)
	})

	// Request without organization ID should succeed
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, capturedOrganizationID)
}

func TestOrganizationMiddleware_WithValidator(t *testing.T) {
	validOrganizationID := uuid.New().String()
	invalidOrganizationID := uuid.New().String()

	validator := &mockOrganizationValidator{
		ValidOrganizations: map[string]*OrganizationInfo{
			validOrganizationID: {
				ID:   uuid.MustParse(validOrganizationID),
				Code: "ACME",
			},
		},
	}

	tests := []struct {
		name           string
		organizationID string
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "valid organization passes validation",
			organizationID: validOrganizationID,
			expectedStatus: http.StatusOK,
			expectedCode:   "ACME",
		},
		{
			name:           "invalid organization fails validation",
			organizationID: invalidOrganizationID,
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			cfg := DefaultOrganizationConfig()
			cfg.Validator = validator
			router.Use(OrganizationMiddlewareWithConfig(cfg))

			var capturedCode string
			router.GET("/test", func(c *gin.Context) {
				capturedCode = GetOrganizationCode(c)
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Set(OrganizationHeaderKey, tt.organizationID)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, tt.expectedCode, capturedCode)
			}
		})
	}
}

func TestOrganizationMiddleware_SubdomainExtraction(t *testing.T) {
	// Note: The organization ID for subdomain extraction returns the subdomain as organization code,
	// which then needs to be resolved to a organization ID by the validator
	// For this test, we test the extraction logic directly

	tests := []struct {
		name       string
		host       string
		baseDomain string
		expected   string
	}{
		{
			name:       "simple subdomain",
			host:       "acme.esg.example.com",
			baseDomain: "esg.example.com",
			expected:   "acme",
		},
		{
			name:       "subdomain with port",
			host:       "acme.esg.example.com:8080",
			baseDomain: "esg.example.com",
			expected:   "acme",
		},
		{
			name:       "no subdomain",
			host:       "esg.example.com",
			baseDomain: "esg.example.com",
			expected:   "",
		},
		{
			name:       "www subdomain ignored",
			host:       "www.esg.example.com",
			baseDomain: "esg.example.com",
			expected:   "",
		},
		{
			name:       "different base domain",
			host:       "acme.other.com",
			baseDomain: "esg.example.com",
			expected:   "",
		},
		{
			name:       "multi-level subdomain",
			host:       "app.acme.esg.example.com",
			baseDomain: "esg.example.com",
			expected:   "app",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractOrganizationFromSubdomain(tt.host, tt.baseDomain)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestValidateOrganizationIDFormat(t *testing.T) {
	tests := []struct {
		name           string
		organizationID string
		wantError      bool
	}{
		{
			name:           "valid UUID",
			organizationID: uuid.New().String(),
			wantError:      false,
		},
		{
			name:           "invalid UUID - too short",
			organizationID: "invalid",
			wantError:      true,
		},
		{
			name:           "invalid UUID - wrong format",
			organizationID: "not-a-valid-uuid-format",
			wantError:      true,
		},
		{
			name:           "empty string",
			organizationID: "",
			wantError:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateOrganizationIDFormat(tt.organizationID)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGetOrganizationID(t *testing.T) {
	organizationID := uuid.New().String()

	router := gin.New()
	router.Use(OrganizationMiddleware())

	router.GET("/test", func(c *gin.Context) {
		// Test GetOrganizationID
		gotID := GetOrganizationID(c)
		assert.Equal(t, organizationID, gotID)

		// Test GetOrganizationUUID
		gotUUID, err := GetOrganizationUUID(c)
		require.NoError(t, err)
		assert.Equal(t, uuid.MustParse(organizationID), gotUUID)

		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(OrganizationHeaderKey, organizationID)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMustGetOrganizationID_Panics(t *testing.T) {
	router := gin.New()
	// No organization middleware, so no organization_id in context

	router.GET("/test", func(c *gin.Context) {
		assert.Panics(t, func() {
			MustGetOrganizationID(c)
		})
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMustGetOrganizationUUID_Panics(t *testing.T) {
	router := gin.New()

	router.GET("/test", func(c *gin.Context) {
		assert.Panics(t, func() {
			MustGetOrganizationUUID(c)
		})
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDefaultOrganizationConfig(t *testing.T) {
	cfg := DefaultOrganizationConfig()

	assert.True(t, cfg.HeaderEnabled)
	assert.True(t, cfg.JWTEnabled)
	assert.False(t, cfg.SubdomainEnabled)
	assert.Empty(t, cfg.BaseDomain)
	assert.True(t, cfg.Required)
	assert.Nil(t, cfg.Validator)
	assert.Nil(t, cfg.Logger)
	assert.Contains(t, cfg.SkipPaths, "/health")
	assert.Contains(t, cfg.SkipPaths, "/metrics")
}

func TestOrganizationMiddleware_ContextPropagation(t *testing.T) {
	organizationID := uuid.New().String()

	router := gin.New()
	router.Use(OrganizationMiddleware())

	router.GET("/test", func(c *gin.Context) {
		// Test that organization ID is also available in the request context
		// via the logger package utility
		ctx := c.Request.Context()
		ctxOrganizationID := logger.GetOrganizationID(ctx)
		assert.Equal(t, organizationID, ctxOrganizationID)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(OrganizationHeaderKey, organizationID)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOrganizationMiddleware_DisabledMethods(t *testing.T) {
	organizationID := uuid.New().String()

	t.Run("header disabled", func(t *testing.T) {
		router := gin.New()
		cfg := DefaultOrganizationConfig()
		cfg.HeaderEnabled = false
		cfg.Required = false
		router.Use(OrganizationMiddlewareWithConfig(cfg))

		var capturedOrganizationID string
		router.GET("/test", func(c *gin.Context) {
			capturedOrganizationID = GetOrganizationID(c)
			c.Status(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(OrganizationHeaderKey, organizationID)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		// Header extraction disabled, so organization ID should be empty
		assert.Empty(t, capturedOrganizationID)
	})

	t.Run("jwt disabled", func(t *testing.T) {
		router := gin.New()

		// Simulate JWT middleware
		router.Use(func(c *gin.Context) {
			c.Set("jwt_organization_id", organizationID)
			c.Next()
		})

		cfg := DefaultOrganizationConfig()
		cfg.JWTEnabled = false
		cfg.Required = false
		router.Use(OrganizationMiddlewareWithConfig(cfg))

		var capturedOrganizationID string
		router.GET("/test", func(c *gin.Context) {
			capturedOrganizationID = GetOrganizationID(c)
			c.Status(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		// JWT extraction disabled, so organization ID should be empty
		assert.Empty(t, capturedOrganizationID)
	})
}

func TestOrganizationMiddleware_ValidatorError(t *testing.T) {
	organizationID := uuid.New().String()
	validatorError := errors.New("database connection failed")

	validator := &mockOrganizationValidator{
		ShouldFail: true,
		FailError:  validatorError,
	}

	router := gin.New()
	cfg := DefaultOrganizationConfig()
	cfg.Validator = validator
	router.Use(OrganizationMiddlewareWithConfig(cfg))

	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(OrganizationHeaderKey, organizationID)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
