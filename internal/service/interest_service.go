package service

import (
	"context"
	"fmt"
	"strings"

	"propmatch/internal/middleware"
	"propmatch/internal/models"
	"propmatch/internal/repository"
	"propmatch/internal/validation"
)

type InterestService struct {
	properties repository.PropertyRepository
	interests  repository.InterestRepository
	profiles   repository.ProfileRepository
	groups     repository.GroupRepository
}

type SubmitInterestInput struct {
	Description         string               `json:"description" validate:"max=5000"`
	DisplayRealName     bool                 `json:"display_real_name"`
	ShowProfileToOthers bool                 `json:"show_profile_to_others"`
	InterestLevel       models.InterestLevel `json:"interest_level" validate:"omitempty,interest_level"`
	InvestmentAmount    *float64             `json:"investment_amount" validate:"omitempty,gte=0"`
	PreferredRole       models.InvestorRole  `json:"preferred_role" validate:"omitempty,investor_role"`
}

type CreateGroupInput struct {
	GroupName             string   `json:"group_name" validate:"notblank,max=200"`
	MaxInvestors          int      `json:"max_investors" validate:"gte=0,max=1000"`
	MinInvestment         *float64 `json:"min_investment" validate:"omitempty,gte=0"`
	TotalInvestmentTarget *float64 `json:"total_investment_target" validate:"omitempty,gt=0"`
	Description           string   `json:"description" validate:"max=5000"`
	MemberIDs             []uint   `json:"member_ids" validate:"dive,gt=0"`
}

// InterestView is an interest with its resolved label and, when the buyer
// opted in, their public profile.
type InterestView struct {
	models.PropertyInterest
	Label   string                `json:"label"`
	Profile *models.PublicProfile `json:"profile,omitempty"`
}

// InterestList is the builder's view of a property's interested parties.
type InterestList struct {
	Interests []InterestView                 `json:"interests"`
	Profiles  map[uint]*models.PublicProfile `json:"profiles"`
}

// Candidate is one selectable user in the group formation picker.
type Candidate struct {
	UserID           uint                 `json:"user_id"`
	Label            string               `json:"label"`
	InterestLevel    models.InterestLevel `json:"interest_level"`
	InvestmentAmount *float64             `json:"investment_amount"`
	PreferredRole    models.InvestorRole  `json:"preferred_role"`
}

func NewInterestService(
	properties repository.PropertyRepository,
	interests repository.InterestRepository,
	profiles repository.ProfileRepository,
	groups repository.GroupRepository,
) *InterestService {
	return &InterestService{
		properties: properties,
		interests:  interests,
		profiles:   profiles,
		groups:     groups,
	}
}

// SubmitInterest records a new interest row. Resubmitting never edits an older
// row. Once a property is locked only the lock holder and the builder may act on it.
func (s *InterestService) SubmitInterest(ctx context.Context, session models.Session, propertyID uint, in SubmitInterestInput) (*models.PropertyInterest, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	property, err := s.properties.GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if !property.CanAct(session.UserID) {
		return nil, models.NewConflictError("Property is locked for negotiation with another buyer")
	}

	profile, err := s.profiles.GetByUserID(ctx, session.UserID)
	if err != nil && !models.HasCode(err, models.CodeNotFound) {
		return nil, err
	}

	level := in.InterestLevel
	if level == "" {
		level = models.InterestLevelInterested
	}
	role := in.PreferredRole
	if role == "" {
		role = models.InvestorRoleCo
	}

	interest := &models.PropertyInterest{
		PropertyID:          propertyID,
		UserID:              session.UserID,
		UserEmail:           session.Email,
		UserName:            interestUserName(in.DisplayRealName, profile, session.Email),
		Description:         strings.TrimSpace(in.Description),
		DisplayRealName:     in.DisplayRealName,
		ShowProfileToOthers: in.ShowProfileToOthers,
		InterestLevel:       level,
		InvestmentAmount:    in.InvestmentAmount,
		PreferredRole:       role,
	}
	if err := s.interests.Create(ctx, interest); err != nil {
		return nil, err
	}
	return interest, nil
}

// interestUserName is the name snapshot stored on an interest: the profile's
// stored name when the buyer chose to show it, else the email.
func interestUserName(displayRealName bool, profile *models.Profile, email string) string {
	return models.DisplayName(displayRealName, profile.StoredName(), email)
}

// ListInterests returns a property's interests newest first, with public
// profiles batch-loaded for buyers who chose to share them.
func (s *InterestService) ListInterests(ctx context.Context, session models.Session, propertyID uint) (*InterestList, error) {
	property, err := s.properties.GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if !property.IsBuilder(session.UserID) && !session.IsAdmin() {
		return nil, models.NewForbiddenError("Only the listing's builder can view its interests")
	}

	rows, err := s.interests.ListByProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	var shared []uint
	seen := make(map[uint]bool)
	for _, r := range rows {
		if r.ShowProfileToOthers && !seen[r.UserID] {
			seen[r.UserID] = true
			shared = append(shared, r.UserID)
		}
	}

	public := make(map[uint]*models.PublicProfile, len(shared))
	if len(shared) > 0 {
		profiles, err := s.profiles.ListByUserIDs(ctx, shared)
		if err != nil {
			return nil, err
		}
		for id, p := range profiles {
			pp := p.Public()
			public[id] = &pp
		}
	}

	views := make([]InterestView, 0, len(rows))
	for _, r := range rows {
		v := InterestView{PropertyInterest: r, Label: r.Label()}
		if r.ShowProfileToOthers {
			v.Profile = public[r.UserID]
		}
		views = append(views, v)
	}
	return &InterestList{Interests: views, Profiles: public}, nil
}

// Candidates lists each interested user once, labelled by the display-name
// rule and carrying their latest interest terms.
func (s *InterestService) Candidates(ctx context.Context, session models.Session, propertyID uint) ([]Candidate, error) {
	property, err := s.properties.GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if !property.CanAct(session.UserID) {
		return nil, models.NewConflictError("Property is locked for negotiation with another buyer")
	}

	rows, err := s.interests.ListByProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	out := make([]Candidate, 0, len(rows))
	seen := make(map[uint]bool)
	for _, r := range rows {
		if seen[r.UserID] {
			continue
		}
		seen[r.UserID] = true
		out = append(out, Candidate{
			UserID:           r.UserID,
			Label:            r.Label(),
			InterestLevel:    r.InterestLevel,
			InvestmentAmount: r.InvestmentAmount,
			PreferredRole:    r.PreferredRole,
		})
	}
	return out, nil
}

// CreateGroupFromInterests creates the group row, then bulk-inserts the selected
// members with terms copied from their latest interest. If the member insert
// fails the group row stays, with no members.
func (s *InterestService) CreateGroupFromInterests(ctx context.Context, lead models.Session, propertyID uint, in CreateGroupInput) (*models.CoInvestmentGroup, error) {
	in.GroupName = strings.TrimSpace(in.GroupName)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	property, err := s.properties.GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if !property.CanAct(lead.UserID) {
		return nil, models.NewConflictError("Property is locked for negotiation with another buyer")
	}

	memberIDs := uniqueIDs(in.MemberIDs, lead.UserID)

	maxInvestors := in.MaxInvestors
	if maxInvestors == 0 {
		maxInvestors = models.DefaultMaxInvestors
	}
	if len(memberIDs) > maxInvestors {
		return nil, models.NewValidationError(fmt.Sprintf("A group can have at most %d investors", maxInvestors))
	}

	var target float64
	switch {
	case in.TotalInvestmentTarget != nil:
		target = *in.TotalInvestmentTarget
	case property.Price != nil:
		target = *property.Price
	}

	group := &models.CoInvestmentGroup{
		PropertyID:            propertyID,
		GroupName:             in.GroupName,
		LeadInvestorID:        lead.UserID,
		MaxInvestors:          maxInvestors,
		MinInvestment:         in.MinInvestment,
		TotalInvestmentTarget: target,
		Description:           strings.TrimSpace(in.Description),
	}
	if err := s.groups.CreateGroup(ctx, group); err != nil {
		return nil, err
	}
	if len(memberIDs) == 0 {
		return group, nil
	}

	latest, err := s.interests.LatestByUsers(ctx, propertyID, memberIDs)
	if err != nil {
		return group, err
	}

	members := make([]models.GroupMember, 0, len(memberIDs))
	for _, uid := range memberIDs {
		m := models.GroupMember{
			GroupID: group.ID,
			UserID:  uid,
			Role:    models.InvestorRoleCo,
			Status:  models.MemberStatusPending,
		}
		if interest, ok := latest[uid]; ok {
			if interest.InvestmentAmount != nil {
				m.InvestmentAmount = *interest.InvestmentAmount
			}
			if interest.PreferredRole.Valid() {
				m.Role = interest.PreferredRole
			}
		}
		members = append(members, m)
	}

	if err := s.groups.AddMembers(ctx, members); err != nil {
		middleware.Logger.ErrorContext(ctx, "group members insert failed", "group_id", group.ID, "error", err)
		return group, err
	}
	group.Members = members
	return group, nil
}

// ListMyGroups returns groups the caller leads or belongs to.
func (s *InterestService) ListMyGroups(ctx context.Context, session models.Session) ([]models.CoInvestmentGroup, error) {
	groups, err := s.groups.ListForUser(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	if groups == nil {
		groups = []models.CoInvestmentGroup{}
	}
	return groups, nil
}

// ListMyInterests returns the caller's own interests.
func (s *InterestService) ListMyInterests(ctx context.Context, session models.Session) ([]models.PropertyInterest, error) {
	rows, err := s.interests.ListByUser(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []models.PropertyInterest{}
	}
	return rows, nil
}

// uniqueIDs drops zero ids, duplicates and skip, preserving order.
func uniqueIDs(ids []uint, skip uint) []uint {
	out := make([]uint, 0, len(ids))
	seen := make(map[uint]bool, len(ids))
	for _, id := range ids {
		if id == 0 || id == skip || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
