package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"propmatch/internal/cache"
	"propmatch/internal/middleware"
	"propmatch/internal/models"
	"propmatch/internal/observability"
	"propmatch/internal/repository"
)

// MaxMessageLength bounds a single message body, in characters.
const MaxMessageLength = 5000

// ThreadPublisher announces stored messages to live subscribers.
type ThreadPublisher interface {
	PublishThread(ctx context.Context, thread models.Thread, msg models.ThreadMessage) error
}

type MessagingService struct {
	messages      repository.MessageRepository
	conversations repository.ConversationRepository
	groups        repository.GroupRepository
	properties    repository.PropertyRepository
	interests     repository.InterestRepository
	profiles      repository.ProfileRepository
	publisher     ThreadPublisher
}

// DirectMessageResult is the builder conversation and the message sent into it, if any.
type DirectMessageResult struct {
	Conversation *models.Conversation  `json:"conversation"`
	Message      *models.ThreadMessage `json:"message,omitempty"`
}

func NewMessagingService(
	messages repository.MessageRepository,
	conversations repository.ConversationRepository,
	groups repository.GroupRepository,
	properties repository.PropertyRepository,
	interests repository.InterestRepository,
	profiles repository.ProfileRepository,
	publisher ThreadPublisher,
) *MessagingService {
	return &MessagingService{
		messages:      messages,
		conversations: conversations,
		groups:        groups,
		properties:    properties,
		interests:     interests,
		profiles:      profiles,
		publisher:     publisher,
	}
}

// authorize checks that the caller may read and post in thread.
func (s *MessagingService) authorize(ctx context.Context, session models.Session, thread models.Thread) error {
	switch thread.Scope {
	case models.ThreadScopeConversation:
		ok, err := s.conversations.IsParticipant(ctx, thread.ID, session.UserID)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if _, err := s.conversations.GetByID(ctx, thread.ID); err != nil {
			return err
		}
		return models.NewForbiddenError("You are not a participant in this conversation")

	case models.ThreadScopeGroup:
		group, err := s.groups.GetByID(ctx, thread.ID)
		if err != nil {
			return err
		}
		if !group.HasMember(session.UserID) && !session.IsAdmin() {
			return models.NewForbiddenError("You are not a member of this group")
		}
		return nil

	case models.ThreadScopeProperty:
		property, err := s.properties.GetByID(ctx, thread.ID)
		if err != nil {
			return err
		}
		if !property.CanAct(session.UserID) && !session.IsAdmin() {
			return models.NewConflictError("Property is locked for negotiation with another buyer")
		}
		return nil
	}
	return models.NewValidationError("unknown thread scope " + string(thread.Scope))
}

// FetchThread returns the whole thread, oldest first. Repeated calls with no
// sends in between return the same list.
func (s *MessagingService) FetchThread(ctx context.Context, session models.Session, thread models.Thread) ([]models.ThreadMessage, error) {
	if err := s.authorize(ctx, session, thread); err != nil {
		return nil, err
	}
	msgs, err := s.messages.ListThread(ctx, thread)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []models.ThreadMessage{}
	}
	return msgs, nil
}

// SendMessage appends text to thread. The sender's display name is captured
// now and never recomputed.
func (s *MessagingService) SendMessage(ctx context.Context, session models.Session, thread models.Thread, text string) (*models.ThreadMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, models.NewValidationError("Message cannot be empty")
	}
	if utf8.RuneCountInString(text) > MaxMessageLength {
		return nil, models.NewValidationError("Message is too long")
	}
	if err := s.authorize(ctx, session, thread); err != nil {
		return nil, err
	}

	profile, err := s.profiles.GetByUserID(ctx, session.UserID)
	if err != nil && !models.HasCode(err, models.CodeNotFound) {
		return nil, err
	}

	msg, err := s.messages.Create(ctx, thread, session.UserID, models.SenderName(profile, session.Email), text)
	if err != nil {
		return nil, err
	}
	observability.MessagesSent.WithLabelValues(string(thread.Scope)).Inc()

	if thread.Scope == models.ThreadScopeConversation {
		s.invalidateConversationLists(ctx, thread.ID)
	}
	if s.publisher != nil {
		if err := s.publisher.PublishThread(ctx, thread, *msg); err != nil {
			middleware.Logger.WarnContext(ctx, "thread publish failed", "thread", thread.String(), "error", err)
		}
	}
	return msg, nil
}

func (s *MessagingService) invalidateConversationLists(ctx context.Context, convID uint) {
	conv, err := s.conversations.GetByID(ctx, convID)
	if err != nil {
		return
	}
	ids := make([]uint, 0, len(conv.Participants))
	for _, p := range conv.Participants {
		ids = append(ids, p.ID)
	}
	cache.InvalidateConversations(ctx, ids...)
}

// DirectMessageBuilder opens the property's 1:1 conversation with its builder,
// joining both sides, and posts text when it is not blank.
func (s *MessagingService) DirectMessageBuilder(ctx context.Context, session models.Session, propertyID uint, text string) (*DirectMessageResult, error) {
	property, err := s.properties.GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if property.BuilderID == nil {
		return nil, models.NewValidationError("This property has no builder to message")
	}
	if *property.BuilderID == session.UserID {
		return nil, models.NewValidationError("You cannot message yourself")
	}
	if !property.CanAct(session.UserID) {
		return nil, models.NewConflictError("Property is locked for negotiation with another buyer")
	}

	conv, err := s.conversations.UpsertPropertyConversation(ctx, propertyID, false)
	if err != nil {
		return nil, err
	}
	for _, uid := range []uint{session.UserID, *property.BuilderID} {
		if err := s.conversations.AddParticipant(ctx, conv.ID, uid); err != nil {
			return nil, err
		}
	}
	cache.InvalidateConversations(ctx, session.UserID, *property.BuilderID)

	result := &DirectMessageResult{Conversation: conv}
	if strings.TrimSpace(text) != "" {
		msg, err := s.SendMessage(ctx, session, models.Thread{Scope: models.ThreadScopeConversation, ID: conv.ID}, text)
		if err != nil {
			return nil, err
		}
		result.Message = msg
	}
	return result, nil
}

// JoinPropertyGroupChat fetches or creates the property's group conversation
// and adds the caller to it.
func (s *MessagingService) JoinPropertyGroupChat(ctx context.Context, session models.Session, propertyID uint) (*models.Conversation, error) {
	property, err := s.properties.GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if !property.CanAct(session.UserID) {
		return nil, models.NewConflictError("Property is locked for negotiation with another buyer")
	}

	conv, err := s.conversations.UpsertPropertyConversation(ctx, propertyID, true)
	if err != nil {
		return nil, err
	}
	if err := s.conversations.AddParticipant(ctx, conv.ID, session.UserID); err != nil {
		return nil, err
	}
	cache.InvalidateConversations(ctx, session.UserID)
	return conv, nil
}

// ContactUser adds the caller and userID to the property's one-to-one
// conversation. userID must be the builder or someone who expressed interest.
func (s *MessagingService) ContactUser(ctx context.Context, session models.Session, propertyID, userID uint) (*models.Conversation, error) {
	if userID == 0 {
		return nil, models.NewValidationError("user_id is required")
	}
	if userID == session.UserID {
		return nil, models.NewValidationError("You cannot message yourself")
	}
	property, err := s.properties.GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if !property.CanAct(session.UserID) || !property.CanAct(userID) {
		return nil, models.NewConflictError("Property is locked for negotiation with another buyer")
	}
	if !property.IsBuilder(userID) {
		latest, err := s.interests.LatestByUsers(ctx, propertyID, []uint{userID})
		if err != nil {
			return nil, err
		}
		if _, ok := latest[userID]; !ok {
			return nil, models.NewValidationError("That user has not expressed interest in this property")
		}
	}

	conv, err := s.conversations.UpsertPropertyConversation(ctx, propertyID, false)
	if err != nil {
		return nil, err
	}
	for _, uid := range []uint{session.UserID, userID} {
		if err := s.conversations.AddParticipant(ctx, conv.ID, uid); err != nil {
			return nil, err
		}
	}
	cache.InvalidateConversations(ctx, session.UserID, userID)
	return conv, nil
}

// ListConversations returns the caller's conversations, most recently active first.
func (s *MessagingService) ListConversations(ctx context.Context, session models.Session) ([]models.Conversation, error) {
	var out []models.Conversation
	err := cache.Aside(ctx, cache.ConversationListKey(session.UserID), &out, cache.ConversationTTL, func() error {
		list, err := s.conversations.ListForUser(ctx, session.UserID)
		if err != nil {
			return err
		}
		out = list
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Conversation{}
	}
	return out, nil
}

// GetConversation loads one conversation for the messenger deep link.
func (s *MessagingService) GetConversation(ctx context.Context, session models.Session, id uint) (*models.Conversation, error) {
	conv, err := s.conversations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(session.UserID) && !session.IsAdmin() {
		return nil, models.NewForbiddenError("You are not a participant in this conversation")
	}
	return conv, nil
}
