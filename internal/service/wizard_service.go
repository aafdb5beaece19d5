package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"propmatch/internal/models"
	"propmatch/internal/repository"
	"propmatch/internal/storage"

	"gorm.io/datatypes"
)

// ListingCreator creates a property from a completed listing wizard.
type ListingCreator interface {
	CreateProperty(ctx context.Context, builder models.Session, in CreatePropertyInput, photo *storage.Photo) (*models.Property, error)
}

// InterestActions runs the domain operations behind the interest and group wizards.
type InterestActions interface {
	SubmitInterest(ctx context.Context, session models.Session, propertyID uint, in SubmitInterestInput) (*models.PropertyInterest, error)
	CreateGroupFromInterests(ctx context.Context, lead models.Session, propertyID uint, in CreateGroupInput) (*models.CoInvestmentGroup, error)
}

// draftData is a wizard's accumulated answers as decoded JSON.
type draftData map[string]any

func (d draftData) text(key string) string {
	s, _ := d[key].(string)
	return strings.TrimSpace(s)
}

func (d draftData) number(key string) (float64, bool) {
	f, ok := d[key].(float64)
	return f, ok
}

func (d draftData) requireText(keys ...string) error {
	for _, k := range keys {
		if d.text(k) == "" {
			return fmt.Errorf("%s is required", k)
		}
	}
	return nil
}

func (d draftData) requirePositive(key string) error {
	if f, ok := d.number(key); !ok || f <= 0 {
		return fmt.Errorf("%s must be greater than 0", key)
	}
	return nil
}

func (d draftData) requireBool(key string) error {
	if _, ok := d[key].(bool); !ok {
		return fmt.Errorf("%s must be answered", key)
	}
	return nil
}

func (d draftData) optionalNonNegative(keys ...string) error {
	for _, k := range keys {
		if _, present := d[k]; !present || d[k] == nil {
			continue
		}
		if f, ok := d.number(k); !ok || f < 0 {
			return fmt.Errorf("%s must be a non-negative number", k)
		}
	}
	return nil
}

func (d draftData) optionalEnum(key string, valid func(string) bool) error {
	v := d.text(key)
	if v == "" || valid(v) {
		return nil
	}
	return fmt.Errorf("%s has an unsupported value %q", key, v)
}

type wizardStep struct {
	name  string
	check func(d draftData) error
}

type wizardDef struct {
	steps []wizardStep
	// scoped wizards target a property given by the draft's scope id.
	scoped bool
}

func anyStep(draftData) error { return nil }

var wizardDefs = map[models.WizardName]wizardDef{
	models.WizardProfile: {steps: []wizardStep{
		{"Personal Details", func(d draftData) error {
			return d.requireText("account_type", "first_name", "last_name", "date_of_birth")
		}},
		{"Residency & Citizenship", func(d draftData) error {
			return d.requireBool("is_canadian_resident")
		}},
		{"Address Information", func(d draftData) error {
			return d.requireText("residential_province", "residential_city")
		}},
		{"Employment & Financial", func(d draftData) error {
			if err := d.requireText("employment_type"); err != nil {
				return err
			}
			return d.optionalNonNegative("monthly_income", "yearly_income")
		}},
		{"Debt & Financial Obligations", func(d draftData) error {
			return d.optionalNonNegative("car_finance_amount")
		}},
		{"Investment Capacity", func(d draftData) error {
			return d.optionalNonNegative("budget", "comfortable_investment")
		}},
		{"Backup Plans", anyStep},
	}},
	models.WizardListing: {steps: []wizardStep{
		{"Property Details", func(d draftData) error {
			if err := d.requireText("type", "title", "description"); err != nil {
				return err
			}
			return d.requirePositive("price")
		}},
		{"Features", func(d draftData) error {
			return d.optionalNonNegative("bedrooms", "bathrooms", "size")
		}},
		{"Media", anyStep},
		{"Listing Details", anyStep},
	}},
	models.WizardInterest: {scoped: true, steps: []wizardStep{
		{"Basic Interest", func(d draftData) error {
			return d.optionalEnum("interest_level", func(v string) bool { return models.InterestLevel(v).Valid() })
		}},
		{"Privacy Settings", anyStep},
		{"Investment Details", func(d draftData) error {
			if err := d.requirePositive("investment_amount"); err != nil {
				return err
			}
			return d.optionalEnum("preferred_role", func(v string) bool { return models.InvestorRole(v).Valid() })
		}},
		{"Review & Submit", anyStep},
	}},
	models.WizardGroup: {scoped: true, steps: []wizardStep{
		{"Group Setup", func(d draftData) error {
			if err := d.requireText("group_name"); err != nil {
				return err
			}
			return d.requirePositive("total_investment_target")
		}},
		{"Select Members", anyStep},
		{"Review & Create", anyStep},
	}},
}

// profileLockedFields are never written from wizard data.
var profileLockedFields = []string{"id", "email", "user_role", "profile_completed", "current_section", "created_at", "updated_at"}

// WizardState is the resumable position of one wizard. Step is 1-based.
type WizardState struct {
	Wizard     models.WizardName `json:"wizard"`
	Step       int               `json:"step"`
	TotalSteps int               `json:"total_steps"`
	Steps      []string          `json:"steps"`
	ScopeID    *uint             `json:"scope_id,omitempty"`
	Data       map[string]any    `json:"data"`
}

// WizardResult is returned when a wizard completes; Result holds the created entity.
type WizardResult struct {
	Wizard models.WizardName `json:"wizard"`
	Result any               `json:"result"`
}

type WizardService struct {
	drafts    repository.WizardRepository
	profiles  repository.ProfileRepository
	listings  ListingCreator
	interests InterestActions
}

func NewWizardService(
	drafts repository.WizardRepository,
	profiles repository.ProfileRepository,
	listings ListingCreator,
	interests InterestActions,
) *WizardService {
	return &WizardService{
		drafts:    drafts,
		profiles:  profiles,
		listings:  listings,
		interests: interests,
	}
}

func lookupWizard(name models.WizardName) (wizardDef, error) {
	def, ok := wizardDefs[name]
	if !ok {
		return wizardDef{}, models.NewNotFoundError("Wizard", name)
	}
	return def, nil
}

func (def wizardDef) names() []string {
	out := make([]string, len(def.steps))
	for i, s := range def.steps {
		out[i] = s.name
	}
	return out
}

func (def wizardDef) state(name models.WizardName, step int, scopeID *uint, data draftData) *WizardState {
	if data == nil {
		data = draftData{}
	}
	return &WizardState{
		Wizard:     name,
		Step:       step,
		TotalSteps: len(def.steps),
		Steps:      def.names(),
		ScopeID:    scopeID,
		Data:       data,
	}
}

func decodeDraft(draft *models.WizardDraft) (draftData, error) {
	data := draftData{}
	if draft == nil || len(draft.Data) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(draft.Data, &data); err != nil {
		return nil, models.NewInternalError(fmt.Errorf("decode %s draft: %w", draft.Wizard, err))
	}
	return data, nil
}

// load returns the caller's draft, or nil when there is none or it targets a
// different property than scopeID.
func (s *WizardService) load(ctx context.Context, userID uint, name models.WizardName, scopeID *uint) (*models.WizardDraft, error) {
	draft, err := s.drafts.Get(ctx, userID, name)
	if err != nil || draft == nil {
		return nil, err
	}
	if scopeID != nil && (draft.ScopeID == nil || *draft.ScopeID != *scopeID) {
		return nil, nil
	}
	return draft, nil
}

// Get returns the saved position, or step 1 when nothing is saved. The profile
// wizard resumes from the profile's current section.
func (s *WizardService) Get(ctx context.Context, session models.Session, name models.WizardName, scopeID *uint) (*WizardState, error) {
	def, err := lookupWizard(name)
	if err != nil {
		return nil, err
	}
	draft, err := s.load(ctx, session.UserID, name, scopeID)
	if err != nil {
		return nil, err
	}
	if draft != nil {
		data, err := decodeDraft(draft)
		if err != nil {
			return nil, err
		}
		return def.state(name, draft.Step, draft.ScopeID, data), nil
	}

	step := 1
	if name == models.WizardProfile {
		profile, err := s.profiles.GetByUserID(ctx, session.UserID)
		if err != nil && !models.HasCode(err, models.CodeNotFound) {
			return nil, err
		}
		if profile != nil {
			step = clampStep(profile.CurrentSection, len(def.steps))
		}
	}
	return def.state(name, step, scopeID, nil), nil
}

func clampStep(step, total int) int {
	switch {
	case step < 1:
		return 1
	case step > total:
		return total
	}
	return step
}

// SaveStep merges data into the draft, checks the step's predicate against the
// merged answers and advances past it. A step beyond the current one cannot be saved.
func (s *WizardService) SaveStep(ctx context.Context, session models.Session, name models.WizardName, step int, scopeID *uint, data map[string]any) (*WizardState, error) {
	def, err := lookupWizard(name)
	if err != nil {
		return nil, err
	}

	draft, err := s.load(ctx, session.UserID, name, scopeID)
	if err != nil {
		return nil, err
	}
	current := 1
	if draft != nil {
		current = draft.Step
		if scopeID == nil {
			scopeID = draft.ScopeID
		}
	} else if name == models.WizardProfile {
		if profile, _ := s.profiles.GetByUserID(ctx, session.UserID); profile != nil {
			current = clampStep(profile.CurrentSection, len(def.steps))
		}
	}
	if def.scoped && scopeID == nil {
		return nil, models.NewValidationError("property_id is required for the " + string(name) + " wizard")
	}
	if step < 1 || step > len(def.steps) {
		return nil, models.NewValidationError(fmt.Sprintf("step must be between 1 and %d", len(def.steps)))
	}
	if step > current {
		return nil, models.NewValidationError(fmt.Sprintf("complete step %d first", current))
	}

	merged, err := decodeDraft(draft)
	if err != nil {
		return nil, err
	}
	for k, v := range data {
		merged[k] = v
	}
	if err := def.steps[step-1].check(merged); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	next := step + 1
	if next > len(def.steps) {
		next = len(def.steps)
	}
	if next < current {
		next = current
	}
	if err := s.save(ctx, session.UserID, name, scopeID, next, merged); err != nil {
		return nil, err
	}
	if name == models.WizardProfile {
		if err := s.saveProfile(ctx, session, merged, next, false); err != nil {
			return nil, err
		}
	}
	return def.state(name, next, scopeID, merged), nil
}

// Back moves the draft one step back, keeping its answers.
func (s *WizardService) Back(ctx context.Context, session models.Session, name models.WizardName) (*WizardState, error) {
	def, err := lookupWizard(name)
	if err != nil {
		return nil, err
	}
	draft, err := s.drafts.Get(ctx, session.UserID, name)
	if err != nil {
		return nil, err
	}
	if draft == nil {
		return def.state(name, 1, nil, nil), nil
	}
	data, err := decodeDraft(draft)
	if err != nil {
		return nil, err
	}
	step := clampStep(draft.Step-1, len(def.steps))
	if err := s.save(ctx, session.UserID, name, draft.ScopeID, step, data); err != nil {
		return nil, err
	}
	if name == models.WizardProfile {
		if err := s.setProfileSection(ctx, session.UserID, step); err != nil {
			return nil, err
		}
	}
	return def.state(name, step, draft.ScopeID, data), nil
}

// Complete re-checks every step, runs the wizard's operation and drops the draft.
func (s *WizardService) Complete(ctx context.Context, session models.Session, name models.WizardName) (*WizardResult, error) {
	def, err := lookupWizard(name)
	if err != nil {
		return nil, err
	}
	draft, err := s.drafts.Get(ctx, session.UserID, name)
	if err != nil {
		return nil, err
	}
	if draft == nil {
		return nil, models.NewValidationError("Nothing to complete: the " + string(name) + " wizard has not been started")
	}
	data, err := decodeDraft(draft)
	if err != nil {
		return nil, err
	}
	for i, step := range def.steps {
		if err := step.check(data); err != nil {
			return nil, models.NewValidationError(fmt.Sprintf("step %d (%s): %v", i+1, step.name, err))
		}
	}

	var result any
	switch name {
	case models.WizardProfile:
		if err := s.saveProfile(ctx, session, data, len(def.steps), true); err != nil {
			return nil, err
		}
		result, err = s.profiles.GetByUserID(ctx, session.UserID)
	case models.WizardListing:
		var in CreatePropertyInput
		if err := remarshal(data, &in); err != nil {
			return nil, err
		}
		result, err = s.listings.CreateProperty(ctx, session, in, nil)
	case models.WizardInterest:
		var in SubmitInterestInput
		if err := remarshal(data, &in); err != nil {
			return nil, err
		}
		result, err = s.interests.SubmitInterest(ctx, session, *draft.ScopeID, in)
	case models.WizardGroup:
		var in CreateGroupInput
		if err := remarshal(data, &in); err != nil {
			return nil, err
		}
		result, err = s.interests.CreateGroupFromInterests(ctx, session, *draft.ScopeID, in)
	}
	if err != nil {
		return nil, err
	}

	if err := s.drafts.Delete(ctx, session.UserID, name); err != nil {
		return nil, err
	}
	return &WizardResult{Wizard: name, Result: result}, nil
}

// Discard drops the draft. Profile answers already saved stay on the profile.
func (s *WizardService) Discard(ctx context.Context, session models.Session, name models.WizardName) error {
	if _, err := lookupWizard(name); err != nil {
		return err
	}
	return s.drafts.Delete(ctx, session.UserID, name)
}

func (s *WizardService) save(ctx context.Context, userID uint, name models.WizardName, scopeID *uint, step int, data draftData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return models.NewInternalError(err)
	}
	return s.drafts.Save(ctx, &models.WizardDraft{
		UserID:  userID,
		Wizard:  name,
		ScopeID: scopeID,
		Step:    step,
		Data:    datatypes.JSON(raw),
	})
}

// saveProfile writes the answers onto the caller's profile, creating it if it is missing.
func (s *WizardService) saveProfile(ctx context.Context, session models.Session, data draftData, section int, completed bool) error {
	profile, err := s.profiles.GetByUserID(ctx, session.UserID)
	if err != nil {
		if !models.HasCode(err, models.CodeNotFound) {
			return err
		}
		profile = &models.Profile{ID: session.UserID, Email: session.Email, UserRole: session.Role}
	}

	answers := make(draftData, len(data))
	for k, v := range data {
		answers[k] = v
	}
	for _, k := range profileLockedFields {
		delete(answers, k)
	}
	if err := remarshal(answers, profile); err != nil {
		return err
	}

	profile.CurrentSection = section
	if completed {
		profile.ProfileCompleted = true
	}
	return s.profiles.Upsert(ctx, profile)
}

func (s *WizardService) setProfileSection(ctx context.Context, userID uint, section int) error {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return nil
		}
		return err
	}
	profile.CurrentSection = section
	return s.profiles.Upsert(ctx, profile)
}

// remarshal copies JSON-shaped answers onto a typed value. Type mismatches are
// reported as validation errors.
func remarshal(src any, dst any) error {
	raw, err := json.Marshal(src)
	if err != nil {
		return models.NewInternalError(err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return models.NewValidationError(fmt.Sprintf("%s has the wrong type", typeErr.Field))
		}
		return models.NewValidationError("invalid wizard data")
	}
	return nil
}
