package repository

import (
	"context"
	"errors"

	"propmatch/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConversationRepository defines persistence operations for conversations and their participants.
type ConversationRepository interface {
	// UpsertPropertyConversation returns the (property, is_group) conversation, creating it if absent.
	// Concurrent callers converge on one row through the unique index.
	UpsertPropertyConversation(ctx context.Context, propertyID uint, isGroup bool) (*models.Conversation, error)
	// UpsertOpportunityConversation returns the opportunity's 1:1 conversation, creating it if absent.
	UpsertOpportunityConversation(ctx context.Context, opportunityID uint) (*models.Conversation, error)
	// AddParticipant is idempotent; membership is append-only.
	AddParticipant(ctx context.Context, convID, userID uint) error
	IsParticipant(ctx context.Context, convID, userID uint) (bool, error)
	GetByID(ctx context.Context, id uint) (*models.Conversation, error)
	// ListForUser returns the user's conversations, most recently active first.
	ListForUser(ctx context.Context, userID uint) ([]models.Conversation, error)
}

type conversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository returns a new ConversationRepository implementation.
func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

func (r *conversationRepository) UpsertPropertyConversation(ctx context.Context, propertyID uint, isGroup bool) (*models.Conversation, error) {
	return r.upsert(ctx, &models.Conversation{PropertyID: &propertyID, IsGroup: isGroup},
		"property_id = ? AND is_group = ?", propertyID, isGroup)
}

func (r *conversationRepository) UpsertOpportunityConversation(ctx context.Context, opportunityID uint) (*models.Conversation, error) {
	return r.upsert(ctx, &models.Conversation{OpportunityID: &opportunityID},
		"opportunity_id = ? AND is_group = ?", opportunityID, false)
}

// upsert inserts candidate unless a conflicting row exists, then reads back whichever row won.
func (r *conversationRepository) upsert(ctx context.Context, candidate *models.Conversation, query string, args ...any) (*models.Conversation, error) {
	db := r.db.WithContext(ctx)
	if err := db.
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(candidate).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	var conv models.Conversation
	if err := db.Where(query, args...).First(&conv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewInternalError(errors.New("conversation upsert returned no row"))
		}
		return nil, models.NewInternalError(err)
	}
	return &conv, nil
}

func (r *conversationRepository) AddParticipant(ctx context.Context, convID, userID uint) error {
	participant := models.ConversationParticipant{
		ConversationID: convID,
		UserID:         userID,
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&participant).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *conversationRepository) IsParticipant(ctx context.Context, convID, userID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id = ?", convID, userID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *conversationRepository) GetByID(ctx context.Context, id uint) (*models.Conversation, error) {
	var conv models.Conversation
	if err := r.db.WithContext(ctx).
		Preload("Participants", func(db *gorm.DB) *gorm.DB { return db.Order("users.id") }).
		Preload("Property").
		Preload("Opportunity").
		First(&conv, id).Error; err != nil {
		return nil, lookupError(err, "Conversation", id)
	}
	return &conv, nil
}

func (r *conversationRepository) ListForUser(ctx context.Context, userID uint) ([]models.Conversation, error) {
	var convs []models.Conversation
	if err := r.db.WithContext(ctx).
		Joins("JOIN conversation_participants cp ON cp.conversation_id = conversations.id").
		Where("cp.user_id = ?", userID).
		Preload("Participants", func(db *gorm.DB) *gorm.DB { return db.Order("users.id") }).
		Preload("Property").
		Preload("Opportunity").
		Order("conversations.updated_at DESC, conversations.id DESC").
		Find(&convs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return convs, nil
}
