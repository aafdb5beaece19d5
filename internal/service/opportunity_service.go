package service

import (
	"context"
	"strings"

	"propmatch/internal/cache"
	"propmatch/internal/models"
	"propmatch/internal/repository"
	"propmatch/internal/validation"
)

// ThreadSender posts a message into a thread on behalf of a user.
type ThreadSender interface {
	SendMessage(ctx context.Context, session models.Session, thread models.Thread, text string) (*models.ThreadMessage, error)
}

type OpportunityService struct {
	opportunities repository.OpportunityRepository
	conversations repository.ConversationRepository
	sender        ThreadSender
}

type PostOpportunityInput struct {
	Type            string `json:"type" validate:"notblank,max=50"`
	Title           string `json:"title" validate:"notblank,max=200"`
	PropertyAddress string `json:"property_address" validate:"notblank,max=300"`
	Description     string `json:"description" validate:"notblank,max=5000"`
}

type CommentInput struct {
	CommentText string `json:"comment_text" validate:"notblank,max=2000"`
}

func NewOpportunityService(
	opportunities repository.OpportunityRepository,
	conversations repository.ConversationRepository,
	sender ThreadSender,
) *OpportunityService {
	return &OpportunityService{
		opportunities: opportunities,
		conversations: conversations,
		sender:        sender,
	}
}

func (s *OpportunityService) Post(ctx context.Context, session models.Session, in PostOpportunityInput) (*models.Opportunity, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	opp := &models.Opportunity{
		UserID:          session.UserID,
		Type:            strings.TrimSpace(in.Type),
		Title:           strings.TrimSpace(in.Title),
		PropertyAddress: strings.TrimSpace(in.PropertyAddress),
		Description:     strings.TrimSpace(in.Description),
	}
	if err := s.opportunities.Create(ctx, opp); err != nil {
		return nil, err
	}
	return opp, nil
}

// List returns every opportunity, newest first.
func (s *OpportunityService) List(ctx context.Context) ([]models.Opportunity, error) {
	list, err := s.opportunities.List(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []models.Opportunity{}
	}
	return list, nil
}

func (s *OpportunityService) Comment(ctx context.Context, session models.Session, opportunityID uint, in CommentInput) (*models.OpportunityComment, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if _, err := s.opportunities.GetByID(ctx, opportunityID); err != nil {
		return nil, err
	}
	comment := &models.OpportunityComment{
		OpportunityID: opportunityID,
		UserID:        session.UserID,
		CommentText:   strings.TrimSpace(in.CommentText),
	}
	if err := s.opportunities.AddComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// ListComments returns comments oldest first.
func (s *OpportunityService) ListComments(ctx context.Context, opportunityID uint) ([]models.OpportunityComment, error) {
	if _, err := s.opportunities.GetByID(ctx, opportunityID); err != nil {
		return nil, err
	}
	list, err := s.opportunities.ListComments(ctx, opportunityID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []models.OpportunityComment{}
	}
	return list, nil
}

// MessageCreator opens the opportunity's 1:1 conversation with its poster and
// sends text into it when it is not blank.
func (s *OpportunityService) MessageCreator(ctx context.Context, session models.Session, opportunityID uint, text string) (*DirectMessageResult, error) {
	opp, err := s.opportunities.GetByID(ctx, opportunityID)
	if err != nil {
		return nil, err
	}
	if opp.UserID == session.UserID {
		return nil, models.NewValidationError("You cannot message yourself")
	}

	conv, err := s.conversations.UpsertOpportunityConversation(ctx, opportunityID)
	if err != nil {
		return nil, err
	}
	for _, uid := range []uint{session.UserID, opp.UserID} {
		if err := s.conversations.AddParticipant(ctx, conv.ID, uid); err != nil {
			return nil, err
		}
	}
	cache.InvalidateConversations(ctx, session.UserID, opp.UserID)

	result := &DirectMessageResult{Conversation: conv}
	if strings.TrimSpace(text) != "" && s.sender != nil {
		msg, err := s.sender.SendMessage(ctx, session, models.Thread{Scope: models.ThreadScopeConversation, ID: conv.ID}, text)
		if err != nil {
			return nil, err
		}
		result.Message = msg
	}
	return result, nil
}
