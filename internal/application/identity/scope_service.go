package identity

import (
	"context"

	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/identity"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SectionScopeService resolves per-section responsibility from role data
// scopes. A contributor whose roles carry a sections scope may only touch
// content in the listed sections; an "all" scope or the absence of any
// sections scope leaves the user unrestricted.
type SectionScopeService struct {
	userRepo identity.UserRepository
	roleRepo identity.RoleRepository
	logger   *zap.Logger
}

// NewSectionScopeService creates a new section scope service
func NewSectionScopeService(
	userRepo identity.UserRepository,
	roleRepo identity.RoleRepository,
	logger *zap.Logger,
) *SectionScopeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SectionScopeService{
		userRepo: userRepo,
		roleRepo: roleRepo,
		logger:   logger,
	}
}

// CanAccessSection reports whether the user may modify content in the given
// section. The widest grant across the user's enabled roles wins.
func (s *SectionScopeService) CanAccessSection(ctx context.Context, organizationID, userID, sectionID uuid.UUID) (bool, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return false, err
	}
	if user.OrganizationID != organizationID {
		return false, nil
	}
	if len(user.RoleIDs) == 0 {
		return true, nil
	}

	roles, err := s.roleRepo.FindByIDs(ctx, user.RoleIDs)
	if err != nil {
		return false, err
	}

	restricted := false
	sectionKey := sectionID.String()
	for _, role := range roles {
		if !role.IsEnabled {
			continue
		}
		if len(role.DataScopes) == 0 {
			if err := s.roleRepo.LoadDataScopes(ctx, role); err != nil {
				return false, err
			}
		}
		for _, scope := range role.DataScopes {
			switch scope.ScopeType {
			case identity.DataScopeAll:
				return true, nil
			case identity.DataScopeSections:
				restricted = true
				for _, v := range scope.ScopeValues {
					if v == sectionKey {
						return true, nil
					}
				}
			}
		}
	}

	if restricted {
		s.logger.Debug("Section scope denied",
			zap.String("user_id", userID.String()),
			zap.String("section_id", sectionKey))
		return false, nil
	}

	// No role carries a sections scope, the user is unrestricted
	return true, nil
}
