package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"propmatch/internal/models"
	"propmatch/internal/notifications"
	"propmatch/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	createAccountFn func(context.Context, *models.User) error
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	listByIDsFn     func(context.Context, []uint) ([]models.User, error)
}

func (s *userRepoStub) CreateAccount(ctx context.Context, user *models.User) error {
	return s.createAccountFn(ctx, user)
}
func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) ListByIDs(ctx context.Context, ids []uint) ([]models.User, error) {
	return s.listByIDsFn(ctx, ids)
}

// profileRepoStub is a stub for repository.ProfileRepository. A nil getFn
// reports every profile as missing.
type profileRepoStub struct {
	getFn    func(context.Context, uint) (*models.Profile, error)
	listFn   func(context.Context, []uint) (map[uint]*models.Profile, error)
	upsertFn func(context.Context, *models.Profile) error
}

func (s *profileRepoStub) GetByUserID(ctx context.Context, userID uint) (*models.Profile, error) {
	if s.getFn == nil {
		return nil, models.NewNotFoundError("Profile", userID)
	}
	return s.getFn(ctx, userID)
}
func (s *profileRepoStub) ListByUserIDs(ctx context.Context, ids []uint) (map[uint]*models.Profile, error) {
	return s.listFn(ctx, ids)
}
func (s *profileRepoStub) Upsert(ctx context.Context, p *models.Profile) error {
	return s.upsertFn(ctx, p)
}

// propertyRepoStub is a stub for repository.PropertyRepository.
type propertyRepoStub struct {
	listFn          func(context.Context) ([]models.Property, error)
	listByBuilderFn func(context.Context, uint) ([]models.Property, error)
	getByIDFn       func(context.Context, uint) (*models.Property, error)
	createFn        func(context.Context, *models.Property) error
	deleteFn        func(context.Context, uint) error
	lockFn          func(context.Context, uint, uint, string, time.Time) (bool, error)
}

func (s *propertyRepoStub) List(ctx context.Context) ([]models.Property, error) {
	return s.listFn(ctx)
}
func (s *propertyRepoStub) ListByBuilder(ctx context.Context, builderID uint) ([]models.Property, error) {
	return s.listByBuilderFn(ctx, builderID)
}
func (s *propertyRepoStub) GetByID(ctx context.Context, id uint) (*models.Property, error) {
	return s.getByIDFn(ctx, id)
}
func (s *propertyRepoStub) Create(ctx context.Context, p *models.Property) error {
	return s.createFn(ctx, p)
}
func (s *propertyRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *propertyRepoStub) Lock(ctx context.Context, id, userID uint, email string, at time.Time) (bool, error) {
	return s.lockFn(ctx, id, userID, email, at)
}

// fixedProperty returns a getByIDFn serving p for its id and NOT_FOUND otherwise.
func fixedProperty(p *models.Property) func(context.Context, uint) (*models.Property, error) {
	return func(_ context.Context, id uint) (*models.Property, error) {
		if id != p.ID {
			return nil, models.NewNotFoundError("Property", id)
		}
		cp := *p
		return &cp, nil
	}
}

// interestRepoStub is a stub for repository.InterestRepository.
type interestRepoStub struct {
	createFn          func(context.Context, *models.PropertyInterest) error
	listByPropertyFn  func(context.Context, uint) ([]models.PropertyInterest, error)
	listByUserFn      func(context.Context, uint) ([]models.PropertyInterest, error)
	countByPropertyFn func(context.Context, []uint) (map[uint]int64, error)
	latestByUsersFn   func(context.Context, uint, []uint) (map[uint]models.PropertyInterest, error)
}

func (s *interestRepoStub) Create(ctx context.Context, i *models.PropertyInterest) error {
	return s.createFn(ctx, i)
}
func (s *interestRepoStub) ListByProperty(ctx context.Context, propertyID uint) ([]models.PropertyInterest, error) {
	return s.listByPropertyFn(ctx, propertyID)
}
func (s *interestRepoStub) ListByUser(ctx context.Context, userID uint) ([]models.PropertyInterest, error) {
	return s.listByUserFn(ctx, userID)
}
func (s *interestRepoStub) CountByProperty(ctx context.Context, ids []uint) (map[uint]int64, error) {
	return s.countByPropertyFn(ctx, ids)
}
func (s *interestRepoStub) LatestByUsers(ctx context.Context, propertyID uint, userIDs []uint) (map[uint]models.PropertyInterest, error) {
	return s.latestByUsersFn(ctx, propertyID, userIDs)
}

// groupRepoStub is a stub for repository.GroupRepository.
type groupRepoStub struct {
	createGroupFn func(context.Context, *models.CoInvestmentGroup) error
	addMembersFn  func(context.Context, []models.GroupMember) error
	getByIDFn     func(context.Context, uint) (*models.CoInvestmentGroup, error)
	listForUserFn func(context.Context, uint) ([]models.CoInvestmentGroup, error)
	listMembersFn func(context.Context, uint) ([]models.GroupMember, error)
}

func (s *groupRepoStub) CreateGroup(ctx context.Context, g *models.CoInvestmentGroup) error {
	return s.createGroupFn(ctx, g)
}
func (s *groupRepoStub) AddMembers(ctx context.Context, m []models.GroupMember) error {
	return s.addMembersFn(ctx, m)
}
func (s *groupRepoStub) GetByID(ctx context.Context, id uint) (*models.CoInvestmentGroup, error) {
	return s.getByIDFn(ctx, id)
}
func (s *groupRepoStub) ListForUser(ctx context.Context, userID uint) ([]models.CoInvestmentGroup, error) {
	return s.listForUserFn(ctx, userID)
}
func (s *groupRepoStub) ListMembers(ctx context.Context, groupID uint) ([]models.GroupMember, error) {
	return s.listMembersFn(ctx, groupID)
}

// conversationRepoStub keeps participants in memory.
type conversationRepoStub struct {
	conversations map[uint]*models.Conversation
	participants  map[uint]map[uint]bool
	upsertCalls   int
	calls         []string
	addErr        error
	// afterAdd runs once a participant is stored.
	afterAdd func()
}

func newConversationRepoStub() *conversationRepoStub {
	return &conversationRepoStub{
		conversations: map[uint]*models.Conversation{},
		participants:  map[uint]map[uint]bool{},
	}
}

func (s *conversationRepoStub) upsert(match func(*models.Conversation) bool, build func() *models.Conversation) *models.Conversation {
	s.upsertCalls++
	for _, c := range s.conversations {
		if match(c) {
			return c
		}
	}
	c := build()
	c.ID = uint(len(s.conversations) + 1)
	s.conversations[c.ID] = c
	return c
}

func (s *conversationRepoStub) UpsertPropertyConversation(_ context.Context, propertyID uint, isGroup bool) (*models.Conversation, error) {
	return s.upsert(func(c *models.Conversation) bool {
		return c.PropertyID != nil && *c.PropertyID == propertyID && c.IsGroup == isGroup
	}, func() *models.Conversation {
		pid := propertyID
		return &models.Conversation{PropertyID: &pid, IsGroup: isGroup}
	}), nil
}
func (s *conversationRepoStub) UpsertOpportunityConversation(_ context.Context, opportunityID uint) (*models.Conversation, error) {
	return s.upsert(func(c *models.Conversation) bool {
		return c.OpportunityID != nil && *c.OpportunityID == opportunityID
	}, func() *models.Conversation {
		oid := opportunityID
		return &models.Conversation{OpportunityID: &oid}
	}), nil
}
func (s *conversationRepoStub) AddParticipant(_ context.Context, convID, userID uint) error {
	s.calls = append(s.calls, "add_participant")
	if s.addErr != nil {
		return s.addErr
	}
	if s.participants[convID] == nil {
		s.participants[convID] = map[uint]bool{}
	}
	s.participants[convID][userID] = true
	if s.afterAdd != nil {
		s.afterAdd()
	}
	return nil
}
func (s *conversationRepoStub) IsParticipant(_ context.Context, convID, userID uint) (bool, error) {
	return s.participants[convID][userID], nil
}
func (s *conversationRepoStub) GetByID(_ context.Context, id uint) (*models.Conversation, error) {
	c, ok := s.conversations[id]
	if !ok {
		return nil, models.NewNotFoundError("Conversation", id)
	}
	cp := *c
	cp.Participants = nil
	for uid := range s.participants[id] {
		cp.Participants = append(cp.Participants, models.User{ID: uid})
	}
	return &cp, nil
}
func (s *conversationRepoStub) ListForUser(_ context.Context, userID uint) ([]models.Conversation, error) {
	var out []models.Conversation
	for id, c := range s.conversations {
		if s.participants[id][userID] {
			out = append(out, *c)
		}
	}
	return out, nil
}

// invitationRepoStub keeps invitations in memory and records call order.
type invitationRepoStub struct {
	rows          map[uint]*models.GroupInvitation
	calls         *[]string
	transitionErr error
}

func newInvitationRepoStub(calls *[]string) *invitationRepoStub {
	return &invitationRepoStub{rows: map[uint]*models.GroupInvitation{}, calls: calls}
}

func (s *invitationRepoStub) record(name string) {
	if s.calls != nil {
		*s.calls = append(*s.calls, name)
	}
}

func (s *invitationRepoStub) Create(_ context.Context, inv *models.GroupInvitation) (*models.GroupInvitation, bool, error) {
	for _, r := range s.rows {
		if r.GroupConversationID == inv.GroupConversationID && r.InviteeID == inv.InviteeID &&
			r.Status == models.InvitationStatusPending {
			cp := *r
			return &cp, false, nil
		}
	}
	inv.ID = uint(len(s.rows) + 1)
	cp := *inv
	s.rows[inv.ID] = &cp
	return inv, true, nil
}
func (s *invitationRepoStub) GetByID(_ context.Context, id uint) (*models.GroupInvitation, error) {
	r, ok := s.rows[id]
	if !ok {
		return nil, models.NewNotFoundError("Invitation", id)
	}
	cp := *r
	return &cp, nil
}
func (s *invitationRepoStub) ListPending(_ context.Context, inviteeID uint) ([]models.GroupInvitation, error) {
	var out []models.GroupInvitation
	for id := uint(len(s.rows)); id >= 1; id-- {
		r := s.rows[id]
		if r != nil && r.InviteeID == inviteeID && r.Status == models.InvitationStatusPending {
			out = append(out, *r)
		}
	}
	return out, nil
}
func (s *invitationRepoStub) MarkRead(_ context.Context, ids []uint) error {
	for _, id := range ids {
		if r, ok := s.rows[id]; ok {
			r.Read = true
		}
	}
	return nil
}
func (s *invitationRepoStub) Transition(_ context.Context, id uint, to models.InvitationStatus) (bool, error) {
	s.record("transition")
	if s.transitionErr != nil {
		return false, s.transitionErr
	}
	r, ok := s.rows[id]
	if !ok || !r.Status.CanTransition(to) {
		return false, nil
	}
	r.Status = to
	return true, nil
}
func (s *invitationRepoStub) CountUnread(_ context.Context, inviteeID uint) (int64, error) {
	var n int64
	for _, r := range s.rows {
		if r.InviteeID == inviteeID && r.Status == models.InvitationStatusPending && !r.Read {
			n++
		}
	}
	return n, nil
}

// messageRepoStub appends to in-memory threads.
type messageRepoStub struct {
	threads map[models.Thread][]models.ThreadMessage
	nextID  uint
}

func newMessageRepoStub() *messageRepoStub {
	return &messageRepoStub{threads: map[models.Thread][]models.ThreadMessage{}}
}

func (s *messageRepoStub) Create(_ context.Context, thread models.Thread, senderID uint, userName, text string) (*models.ThreadMessage, error) {
	s.nextID++
	msg := models.ThreadMessage{
		ID:        s.nextID,
		Scope:     thread.Scope,
		ScopeID:   thread.ID,
		SenderID:  senderID,
		UserName:  userName,
		Message:   text,
		CreatedAt: time.Unix(int64(s.nextID), 0),
	}
	s.threads[thread] = append(s.threads[thread], msg)
	return &msg, nil
}
func (s *messageRepoStub) ListThread(_ context.Context, thread models.Thread) ([]models.ThreadMessage, error) {
	return append([]models.ThreadMessage(nil), s.threads[thread]...), nil
}

// notifierStub records published events.
type notifierStub struct {
	userEvents   []notifications.Event
	threadEvents []models.ThreadMessage
	err          error
}

func (n *notifierStub) PublishUser(_ context.Context, _ uint, ev notifications.Event) error {
	n.userEvents = append(n.userEvents, ev)
	return n.err
}
func (n *notifierStub) PublishThread(_ context.Context, _ models.Thread, msg models.ThreadMessage) error {
	n.threadEvents = append(n.threadEvents, msg)
	return n.err
}

// photoUploaderStub returns a fixed URL or error.
type photoUploaderStub struct {
	url   string
	err   error
	calls int
}

func (p *photoUploaderStub) Upload(_ context.Context, _ storage.Photo) (string, error) {
	p.calls++
	return p.url, p.err
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code, appErr.Message)
}

// assertValidationError asserts that err is an AppError with code VALIDATION_ERROR.
func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertCode(t, err, models.CodeValidation)
}

func seeker(id uint) models.Session {
	return models.Session{UserID: id, Email: emailFor(id), Role: models.RoleSeeker}
}

func builder(id uint) models.Session {
	return models.Session{UserID: id, Email: emailFor(id), Role: models.RoleBuilder}
}

func emailFor(id uint) string {
	return "user" + string(rune('0'+id%10)) + "@example.com"
}

func ptrFloat(f float64) *float64 { return &f }
func ptrUint(u uint) *uint        { return &u }
