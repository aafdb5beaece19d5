package service

import (
	"context"

	"propmatch/internal/models"
	"propmatch/internal/repository"
)

// ListingSummary is a builder's listing with the number of interests recorded on it.
type ListingSummary struct {
	models.Property
	InterestCount int64 `json:"interest_count"`
}

// Dashboard is the role-branched landing summary. Only the fields for the
// caller's role are filled.
type Dashboard struct {
	Role               models.Role                `json:"role"`
	Listings           []ListingSummary           `json:"listings,omitempty"`
	Interests          []models.PropertyInterest  `json:"interests,omitempty"`
	Groups             []models.CoInvestmentGroup `json:"groups,omitempty"`
	PendingInvitations int64                      `json:"pending_invitations"`
	ProfileCompleted   bool                       `json:"profile_completed"`
	CurrentSection     int                        `json:"current_section"`
	TotalProperties    int                        `json:"total_properties,omitempty"`
}

type DashboardService struct {
	properties  repository.PropertyRepository
	interests   repository.InterestRepository
	groups      repository.GroupRepository
	invitations repository.InvitationRepository
	profiles    repository.ProfileRepository
}

func NewDashboardService(
	properties repository.PropertyRepository,
	interests repository.InterestRepository,
	groups repository.GroupRepository,
	invitations repository.InvitationRepository,
	profiles repository.ProfileRepository,
) *DashboardService {
	return &DashboardService{
		properties:  properties,
		interests:   interests,
		groups:      groups,
		invitations: invitations,
		profiles:    profiles,
	}
}

// Summary builds the dashboard for the caller's role: builders see their listings
// with interest counts, seekers their interests, groups and profile progress, and
// admins the catalog size.
func (s *DashboardService) Summary(ctx context.Context, session models.Session) (*Dashboard, error) {
	d := &Dashboard{Role: session.Role}

	unread, err := s.invitations.CountUnread(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	d.PendingInvitations = unread

	switch session.Role {
	case models.RoleBuilder:
		listings, err := s.properties.ListByBuilder(ctx, session.UserID)
		if err != nil {
			return nil, err
		}
		ids := make([]uint, len(listings))
		for i, p := range listings {
			ids[i] = p.ID
		}
		counts, err := s.interests.CountByProperty(ctx, ids)
		if err != nil {
			return nil, err
		}
		d.Listings = make([]ListingSummary, len(listings))
		for i, p := range listings {
			d.Listings[i] = ListingSummary{Property: p, InterestCount: counts[p.ID]}
		}

	case models.RoleAdmin:
		all, err := s.properties.List(ctx)
		if err != nil {
			return nil, err
		}
		d.TotalProperties = len(all)

	default:
		interests, err := s.interests.ListByUser(ctx, session.UserID)
		if err != nil {
			return nil, err
		}
		groups, err := s.groups.ListForUser(ctx, session.UserID)
		if err != nil {
			return nil, err
		}
		d.Interests = interests
		d.Groups = groups

		profile, err := s.profiles.GetByUserID(ctx, session.UserID)
		if err != nil && !models.HasCode(err, models.CodeNotFound) {
			return nil, err
		}
		if profile != nil {
			d.ProfileCompleted = profile.ProfileCompleted
			d.CurrentSection = profile.CurrentSection
		}
	}
	return d, nil
}
