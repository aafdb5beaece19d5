package repository

import (
	"context"
	"errors"

	"propmatch/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WizardRepository stores resumable wizard drafts, one per (user, wizard).
type WizardRepository interface {
	// Get returns nil, nil when the user has no draft for the wizard.
	Get(ctx context.Context, userID uint, wizard models.WizardName) (*models.WizardDraft, error)
	Save(ctx context.Context, draft *models.WizardDraft) error
	Delete(ctx context.Context, userID uint, wizard models.WizardName) error
}

type wizardRepository struct {
	db *gorm.DB
}

// NewWizardRepository returns a new WizardRepository implementation.
func NewWizardRepository(db *gorm.DB) WizardRepository {
	return &wizardRepository{db: db}
}

func (r *wizardRepository) Get(ctx context.Context, userID uint, wizard models.WizardName) (*models.WizardDraft, error) {
	var draft models.WizardDraft
	err := r.db.WithContext(ctx).Where("user_id = ? AND wizard = ?", userID, wizard).First(&draft).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &draft, nil
}

func (r *wizardRepository) Save(ctx context.Context, draft *models.WizardDraft) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "wizard"}},
			DoUpdates: clause.AssignmentColumns([]string{"scope_id", "step", "data", "updated_at"}),
		}).
		Create(draft).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *wizardRepository) Delete(ctx context.Context, userID uint, wizard models.WizardName) error {
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND wizard = ?", userID, wizard).
		Delete(&models.WizardDraft{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
