package service

import (
	"context"
	"strings"

	"propmatch/internal/cache"
	"propmatch/internal/middleware"
	"propmatch/internal/models"
	"propmatch/internal/notifications"
	"propmatch/internal/observability"
	"propmatch/internal/repository"
)

// UserNotifier pushes events to a single user's channel.
type UserNotifier interface {
	PublishUser(ctx context.Context, userID uint, ev notifications.Event) error
}

type InvitationService struct {
	properties    repository.PropertyRepository
	users         repository.UserRepository
	conversations repository.ConversationRepository
	invitations   repository.InvitationRepository
	notifier      UserNotifier
}

// InviteInput names the invitee by id or, failing that, by email.
type InviteInput struct {
	InviteeID    uint   `json:"invitee_id"`
	InviteeEmail string `json:"invitee_email"`
}

// PendingInvitations is the invitee's inbox. Unread is the number of invitations
// that were unread when fetched; fetching marks them read.
type PendingInvitations struct {
	Invitations []models.GroupInvitation `json:"invitations"`
	Unread      int64                    `json:"unread"`
}

func NewInvitationService(
	properties repository.PropertyRepository,
	users repository.UserRepository,
	conversations repository.ConversationRepository,
	invitations repository.InvitationRepository,
	notifier UserNotifier,
) *InvitationService {
	return &InvitationService{
		properties:    properties,
		users:         users,
		conversations: conversations,
		invitations:   invitations,
		notifier:      notifier,
	}
}

// Invite offers the invitee a seat in the property's group conversation. The
// conversation is created on first use and the inviter joins it. A second invite
// while one is pending returns the pending one with created=false.
func (s *InvitationService) Invite(ctx context.Context, inviter models.Session, propertyID uint, in InviteInput) (*models.GroupInvitation, bool, error) {
	invitee, err := s.resolveInvitee(ctx, in)
	if err != nil {
		return nil, false, err
	}
	if invitee.ID == inviter.UserID {
		return nil, false, models.NewValidationError("You cannot invite yourself")
	}

	property, err := s.properties.GetByID(ctx, propertyID)
	if err != nil {
		return nil, false, err
	}
	if !property.CanAct(inviter.UserID) {
		return nil, false, models.NewConflictError("Property is locked for negotiation with another buyer")
	}

	conv, err := s.conversations.UpsertPropertyConversation(ctx, propertyID, true)
	if err != nil {
		return nil, false, err
	}
	if err := s.conversations.AddParticipant(ctx, conv.ID, inviter.UserID); err != nil {
		return nil, false, err
	}
	cache.InvalidateConversations(ctx, inviter.UserID)

	member, err := s.conversations.IsParticipant(ctx, conv.ID, invitee.ID)
	if err != nil {
		return nil, false, err
	}
	if member {
		return nil, false, models.NewConflictError("User is already in this group chat")
	}

	inv, created, err := s.invitations.Create(ctx, &models.GroupInvitation{
		GroupConversationID: conv.ID,
		PropertyID:          propertyID,
		InviterID:           inviter.UserID,
		InviteeID:           invitee.ID,
		Status:              models.InvitationStatusPending,
	})
	if err != nil {
		return nil, false, err
	}
	if created {
		observability.InvitationTransitions.WithLabelValues(string(models.InvitationStatusPending)).Inc()
		s.notify(ctx, invitee.ID, notifications.EventInvitationCreated, inv)
	}
	return inv, created, nil
}

func (s *InvitationService) resolveInvitee(ctx context.Context, in InviteInput) (*models.User, error) {
	if in.InviteeID != 0 {
		return s.users.GetByID(ctx, in.InviteeID)
	}
	email := strings.ToLower(strings.TrimSpace(in.InviteeEmail))
	if email == "" {
		return nil, models.NewValidationError("invitee_id or invitee_email is required")
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", email)
	}
	return user, nil
}

// ListPending returns the caller's pending invitations and marks the unread
// ones read. The unread count is taken before marking.
func (s *InvitationService) ListPending(ctx context.Context, session models.Session) (*PendingInvitations, error) {
	rows, err := s.invitations.ListPending(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	var unread []uint
	for _, inv := range rows {
		if !inv.Read {
			unread = append(unread, inv.ID)
		}
	}
	if len(unread) > 0 {
		if err := s.invitations.MarkRead(ctx, unread); err != nil {
			return nil, err
		}
	}

	if rows == nil {
		rows = []models.GroupInvitation{}
	}
	return &PendingInvitations{Invitations: rows, Unread: int64(len(unread))}, nil
}

// UnreadCount is the navigation badge: pending invitations not yet fetched.
func (s *InvitationService) UnreadCount(ctx context.Context, session models.Session) (int64, error) {
	return s.invitations.CountUnread(ctx, session.UserID)
}

// Accept joins the invitee to the group conversation, then flips the
// invitation to accepted.
func (s *InvitationService) Accept(ctx context.Context, session models.Session, id uint) (*models.GroupInvitation, error) {
	inv, err := s.pendingFor(ctx, session, id)
	if err != nil {
		return nil, err
	}

	if err := s.conversations.AddParticipant(ctx, inv.GroupConversationID, inv.InviteeID); err != nil {
		return nil, err
	}
	cache.InvalidateConversations(ctx, inv.InviteeID)

	if err := s.transition(ctx, inv, models.InvitationStatusAccepted); err != nil {
		return nil, err
	}
	s.notify(ctx, inv.InviterID, notifications.EventInvitationAccepted, inv)
	return inv, nil
}

// Decline resolves the invitation without touching conversation membership.
func (s *InvitationService) Decline(ctx context.Context, session models.Session, id uint) (*models.GroupInvitation, error) {
	inv, err := s.pendingFor(ctx, session, id)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, inv, models.InvitationStatusDeclined); err != nil {
		return nil, err
	}
	s.notify(ctx, inv.InviterID, notifications.EventInvitationDeclined, inv)
	return inv, nil
}

func (s *InvitationService) pendingFor(ctx context.Context, session models.Session, id uint) (*models.GroupInvitation, error) {
	inv, err := s.invitations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.InviteeID != session.UserID {
		return nil, models.NewForbiddenError("This invitation is addressed to another user")
	}
	if inv.Status != models.InvitationStatusPending {
		return nil, models.NewConflictError("Invitation has already been " + string(inv.Status))
	}
	return inv, nil
}

func (s *InvitationService) transition(ctx context.Context, inv *models.GroupInvitation, to models.InvitationStatus) error {
	ok, err := s.invitations.Transition(ctx, inv.ID, to)
	if err != nil {
		return err
	}
	if !ok {
		return models.NewConflictError("Invitation is no longer pending")
	}
	inv.Status = to
	observability.InvitationTransitions.WithLabelValues(string(to)).Inc()
	return nil
}

func (s *InvitationService) notify(ctx context.Context, userID uint, eventType string, inv *models.GroupInvitation) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.PublishUser(ctx, userID, notifications.Event{Type: eventType, Payload: inv}); err != nil {
		middleware.Logger.WarnContext(ctx, "invitation notification failed",
			"invitation_id", inv.ID, "user_id", userID, "error", err)
	}
}
