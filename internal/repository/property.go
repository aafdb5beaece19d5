package repository

import (
	"context"
	"time"

	"propmatch/internal/models"

	"gorm.io/gorm"
)

// PropertyRepository defines persistence operations for listings.
type PropertyRepository interface {
	// List returns every listing, newest first.
	List(ctx context.Context) ([]models.Property, error)
	ListByBuilder(ctx context.Context, builderID uint) ([]models.Property, error)
	GetByID(ctx context.Context, id uint) (*models.Property, error)
	Create(ctx context.Context, property *models.Property) error
	// Delete hard-deletes the row. Interests, groups and threads are left in place.
	Delete(ctx context.Context, id uint) error
	// Lock sets the negotiation lock only if none is held. It reports whether this call set it.
	Lock(ctx context.Context, id, userID uint, email string, at time.Time) (bool, error)
}

type propertyRepository struct {
	db *gorm.DB
}

// NewPropertyRepository returns a new PropertyRepository implementation.
func NewPropertyRepository(db *gorm.DB) PropertyRepository {
	return &propertyRepository{db: db}
}

func (r *propertyRepository) List(ctx context.Context) ([]models.Property, error) {
	var properties []models.Property
	if err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&properties).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return properties, nil
}

func (r *propertyRepository) ListByBuilder(ctx context.Context, builderID uint) ([]models.Property, error) {
	var properties []models.Property
	if err := r.db.WithContext(ctx).
		Where("builder_id = ?", builderID).
		Order("created_at DESC, id DESC").
		Find(&properties).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return properties, nil
}

func (r *propertyRepository) GetByID(ctx context.Context, id uint) (*models.Property, error) {
	var property models.Property
	if err := r.db.WithContext(ctx).First(&property, id).Error; err != nil {
		return nil, lookupError(err, "Property", id)
	}
	return &property, nil
}

func (r *propertyRepository) Create(ctx context.Context, property *models.Property) error {
	if err := r.db.WithContext(ctx).Create(property).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *propertyRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Property{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Property", id)
	}
	return nil
}

func (r *propertyRepository) Lock(ctx context.Context, id, userID uint, email string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Property{}).
		Where("id = ? AND locked_by IS NULL", id).
		Updates(map[string]any{
			"locked_by":               userID,
			"locked_by_email":         email,
			"locked_at":               at,
			"lock_agreement_accepted": true,
		})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected == 1, nil
}
