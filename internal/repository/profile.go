package repository

import (
	"context"

	"propmatch/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileRepository defines persistence operations for profiles.
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID uint) (*models.Profile, error)
	// ListByUserIDs batch-loads profiles into a lookup map keyed by user id.
	ListByUserIDs(ctx context.Context, userIDs []uint) (map[uint]*models.Profile, error)
	Upsert(ctx context.Context, profile *models.Profile) error
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository returns a new ProfileRepository implementation.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID uint) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).First(&profile, userID).Error; err != nil {
		return nil, lookupError(err, "Profile", userID)
	}
	return &profile, nil
}

func (r *profileRepository) ListByUserIDs(ctx context.Context, userIDs []uint) (map[uint]*models.Profile, error) {
	out := make(map[uint]*models.Profile, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	var profiles []models.Profile
	if err := r.db.WithContext(ctx).Where("id IN ?", userIDs).Find(&profiles).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for i := range profiles {
		out[profiles[i].ID] = &profiles[i]
	}
	return out, nil
}

func (r *profileRepository) Upsert(ctx context.Context, profile *models.Profile) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(profile).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
