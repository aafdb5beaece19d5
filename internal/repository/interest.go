package repository

import (
	"context"

	"propmatch/internal/models"

	"gorm.io/gorm"
)

// InterestRepository defines persistence operations for property interests.
type InterestRepository interface {
	Create(ctx context.Context, interest *models.PropertyInterest) error
	// ListByProperty returns a property's interests, newest first.
	ListByProperty(ctx context.Context, propertyID uint) ([]models.PropertyInterest, error)
	ListByUser(ctx context.Context, userID uint) ([]models.PropertyInterest, error)
	CountByProperty(ctx context.Context, propertyIDs []uint) (map[uint]int64, error)
	// LatestByUsers returns each user's most recent interest in the property.
	LatestByUsers(ctx context.Context, propertyID uint, userIDs []uint) (map[uint]models.PropertyInterest, error)
}

type interestRepository struct {
	db *gorm.DB
}

// NewInterestRepository returns a new InterestRepository implementation.
func NewInterestRepository(db *gorm.DB) InterestRepository {
	return &interestRepository{db: db}
}

func (r *interestRepository) Create(ctx context.Context, interest *models.PropertyInterest) error {
	if err := r.db.WithContext(ctx).Create(interest).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *interestRepository) ListByProperty(ctx context.Context, propertyID uint) ([]models.PropertyInterest, error) {
	var interests []models.PropertyInterest
	if err := r.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("created_at DESC, id DESC").
		Find(&interests).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return interests, nil
}

func (r *interestRepository) ListByUser(ctx context.Context, userID uint) ([]models.PropertyInterest, error) {
	var interests []models.PropertyInterest
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&interests).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return interests, nil
}

func (r *interestRepository) CountByProperty(ctx context.Context, propertyIDs []uint) (map[uint]int64, error) {
	out := make(map[uint]int64, len(propertyIDs))
	if len(propertyIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		PropertyID uint
		Total      int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.PropertyInterest{}).
		Select("property_id, COUNT(*) AS total").
		Where("property_id IN ?", propertyIDs).
		Group("property_id").
		Scan(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, row := range rows {
		out[row.PropertyID] = row.Total
	}
	return out, nil
}

func (r *interestRepository) LatestByUsers(ctx context.Context, propertyID uint, userIDs []uint) (map[uint]models.PropertyInterest, error) {
	out := make(map[uint]models.PropertyInterest, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	var interests []models.PropertyInterest
	if err := r.db.WithContext(ctx).
		Where("property_id = ? AND user_id IN ?", propertyID, userIDs).
		Order("created_at DESC, id DESC").
		Find(&interests).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, in := range interests {
		if _, seen := out[in.UserID]; !seen {
			out[in.UserID] = in
		}
	}
	return out, nil
}
