package service

import (
	"context"
	"testing"

	"propmatch/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// opportunityRepoStub keeps opportunities and comments in memory.
type opportunityRepoStub struct {
	opps     []models.Opportunity
	comments []models.OpportunityComment
}

func (s *opportunityRepoStub) Create(_ context.Context, opp *models.Opportunity) error {
	opp.ID = uint(len(s.opps) + 1)
	s.opps = append(s.opps, *opp)
	return nil
}
func (s *opportunityRepoStub) List(context.Context) ([]models.Opportunity, error) {
	out := make([]models.Opportunity, 0, len(s.opps))
	for i := len(s.opps) - 1; i >= 0; i-- {
		out = append(out, s.opps[i])
	}
	return out, nil
}
func (s *opportunityRepoStub) GetByID(_ context.Context, id uint) (*models.Opportunity, error) {
	for i := range s.opps {
		if s.opps[i].ID == id {
			cp := s.opps[i]
			return &cp, nil
		}
	}
	return nil, models.NewNotFoundError("Opportunity", id)
}
func (s *opportunityRepoStub) AddComment(_ context.Context, c *models.OpportunityComment) error {
	c.ID = uint(len(s.comments) + 1)
	s.comments = append(s.comments, *c)
	return nil
}
func (s *opportunityRepoStub) ListComments(_ context.Context, id uint) ([]models.OpportunityComment, error) {
	var out []models.OpportunityComment
	for _, c := range s.comments {
		if c.OpportunityID == id {
			out = append(out, c)
		}
	}
	return out, nil
}

// senderStub records messages sent through MessageCreator.
type senderStub struct {
	sent []models.Thread
}

func (s *senderStub) SendMessage(_ context.Context, session models.Session, thread models.Thread, text string) (*models.ThreadMessage, error) {
	s.sent = append(s.sent, thread)
	return &models.ThreadMessage{Scope: thread.Scope, ScopeID: thread.ID, SenderID: session.UserID, Message: text}, nil
}

func TestOpportunityService_PostAndList(t *testing.T) {
	repo := &opportunityRepoStub{}
	svc := NewOpportunityService(repo, newConversationRepoStub(), &senderStub{})
	ctx := context.Background()

	_, err := svc.Post(ctx, seeker(2), PostOpportunityInput{Type: "residential", Title: "Duplex", PropertyAddress: "1 Main St"})
	assertValidationError(t, err)

	first, err := svc.Post(ctx, seeker(2), PostOpportunityInput{Type: "residential", Title: "Duplex", PropertyAddress: "1 Main St", Description: "Looking for two partners"})
	require.NoError(t, err)
	second, err := svc.Post(ctx, seeker(3), PostOpportunityInput{Type: "commercial", Title: "Retail strip", PropertyAddress: "9 King St", Description: "Cash flow positive"})
	require.NoError(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest first")
	assert.Equal(t, first.ID, list[1].ID)
}

func TestOpportunityService_Comments(t *testing.T) {
	repo := &opportunityRepoStub{}
	svc := NewOpportunityService(repo, newConversationRepoStub(), &senderStub{})
	ctx := context.Background()

	opp, err := svc.Post(ctx, seeker(2), PostOpportunityInput{Type: "residential", Title: "Duplex", PropertyAddress: "1 Main St", Description: "d"})
	require.NoError(t, err)

	_, err = svc.Comment(ctx, seeker(3), opp.ID, CommentInput{CommentText: " "})
	assertValidationError(t, err)
	_, err = svc.Comment(ctx, seeker(3), 99, CommentInput{CommentText: "hello"})
	assertCode(t, err, models.CodeNotFound)

	_, err = svc.Comment(ctx, seeker(3), opp.ID, CommentInput{CommentText: "first"})
	require.NoError(t, err)
	_, err = svc.Comment(ctx, seeker(4), opp.ID, CommentInput{CommentText: "second"})
	require.NoError(t, err)

	comments, err := svc.ListComments(ctx, opp.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].CommentText)
	assert.Equal(t, "second", comments[1].CommentText)
}

func TestOpportunityService_MessageCreator(t *testing.T) {
	repo := &opportunityRepoStub{}
	convs := newConversationRepoStub()
	sender := &senderStub{}
	svc := NewOpportunityService(repo, convs, sender)
	ctx := context.Background()

	opp, err := svc.Post(ctx, seeker(2), PostOpportunityInput{Type: "residential", Title: "Duplex", PropertyAddress: "1 Main St", Description: "d"})
	require.NoError(t, err)

	_, err = svc.MessageCreator(ctx, seeker(2), opp.ID, "hi me")
	assertValidationError(t, err)

	res, err := svc.MessageCreator(ctx, seeker(3), opp.ID, "Interested in your duplex")
	require.NoError(t, err)
	require.NotNil(t, res.Conversation.OpportunityID)
	assert.Equal(t, opp.ID, *res.Conversation.OpportunityID)
	assert.True(t, convs.participants[res.Conversation.ID][2])
	assert.True(t, convs.participants[res.Conversation.ID][3])
	require.Len(t, sender.sent, 1)
	assert.Equal(t, models.Thread{Scope: models.ThreadScopeConversation, ID: res.Conversation.ID}, sender.sent[0])

	again, err := svc.MessageCreator(ctx, seeker(3), opp.ID, "")
	require.NoError(t, err)
	assert.Equal(t, res.Conversation.ID, again.Conversation.ID)
	assert.Len(t, sender.sent, 1)
}
