package repository

import (
	"context"

	"propmatch/internal/models"

	"gorm.io/gorm"
)

// OpportunityRepository defines persistence operations for opportunities and their comments.
type OpportunityRepository interface {
	Create(ctx context.Context, opp *models.Opportunity) error
	// List returns every opportunity, newest first.
	List(ctx context.Context) ([]models.Opportunity, error)
	GetByID(ctx context.Context, id uint) (*models.Opportunity, error)
	AddComment(ctx context.Context, comment *models.OpportunityComment) error
	// ListComments returns an opportunity's comments, oldest first.
	ListComments(ctx context.Context, opportunityID uint) ([]models.OpportunityComment, error)
}

type opportunityRepository struct {
	db *gorm.DB
}

// NewOpportunityRepository returns a new OpportunityRepository implementation.
func NewOpportunityRepository(db *gorm.DB) OpportunityRepository {
	return &opportunityRepository{db: db}
}

func (r *opportunityRepository) Create(ctx context.Context, opp *models.Opportunity) error {
	if err := r.db.WithContext(ctx).Create(opp).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *opportunityRepository) List(ctx context.Context) ([]models.Opportunity, error) {
	var opps []models.Opportunity
	if err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&opps).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return opps, nil
}

func (r *opportunityRepository) GetByID(ctx context.Context, id uint) (*models.Opportunity, error) {
	var opp models.Opportunity
	if err := r.db.WithContext(ctx).First(&opp, id).Error; err != nil {
		return nil, lookupError(err, "Opportunity", id)
	}
	return &opp, nil
}

func (r *opportunityRepository) AddComment(ctx context.Context, comment *models.OpportunityComment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *opportunityRepository) ListComments(ctx context.Context, opportunityID uint) ([]models.OpportunityComment, error) {
	var comments []models.OpportunityComment
	if err := r.db.WithContext(ctx).
		Where("opportunity_id = ?", opportunityID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}
