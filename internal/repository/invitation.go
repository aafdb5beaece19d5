package repository

import (
	"context"
	"errors"

	"propmatch/internal/models"

	"gorm.io/gorm"
)

// InvitationRepository defines persistence operations for group invitations.
type InvitationRepository interface {
	// Create inserts a pending invitation. If the invitee already holds a pending invitation
	// to the same conversation, that row is returned instead and created is false.
	Create(ctx context.Context, inv *models.GroupInvitation) (existing *models.GroupInvitation, created bool, err error)
	GetByID(ctx context.Context, id uint) (*models.GroupInvitation, error)
	// ListPending returns the invitee's pending invitations, newest first.
	ListPending(ctx context.Context, inviteeID uint) ([]models.GroupInvitation, error)
	MarkRead(ctx context.Context, ids []uint) error
	// Transition moves a pending invitation to a terminal status. It reports false when
	// the invitation was no longer pending.
	Transition(ctx context.Context, id uint, to models.InvitationStatus) (bool, error)
	CountUnread(ctx context.Context, inviteeID uint) (int64, error)
}

type invitationRepository struct {
	db *gorm.DB
}

// NewInvitationRepository returns a new InvitationRepository implementation.
func NewInvitationRepository(db *gorm.DB) InvitationRepository {
	return &invitationRepository{db: db}
}

func (r *invitationRepository) findPending(db *gorm.DB, convID, inviteeID uint) (*models.GroupInvitation, error) {
	var inv models.GroupInvitation
	err := db.
		Where("group_conversation_id = ? AND invitee_id = ? AND status = ?", convID, inviteeID, models.InvitationStatusPending).
		Order("id").
		First(&inv).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *invitationRepository) Create(ctx context.Context, inv *models.GroupInvitation) (*models.GroupInvitation, bool, error) {
	db := r.db.WithContext(ctx)

	existing, err := r.findPending(db, inv.GroupConversationID, inv.InviteeID)
	switch {
	case err == nil:
		return existing, false, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, false, models.NewInternalError(err)
	}

	inv.Status = models.InvitationStatusPending
	if err := db.Omit("Conversation", "Property", "Inviter").Create(inv).Error; err != nil {
		if isUniqueConstraintError(err) {
			// Lost a race with a concurrent invite; the partial unique index kept one row.
			if existing, findErr := r.findPending(db, inv.GroupConversationID, inv.InviteeID); findErr == nil {
				return existing, false, nil
			}
		}
		return nil, false, models.NewInternalError(err)
	}
	return inv, true, nil
}

func (r *invitationRepository) GetByID(ctx context.Context, id uint) (*models.GroupInvitation, error) {
	var inv models.GroupInvitation
	if err := r.db.WithContext(ctx).First(&inv, id).Error; err != nil {
		return nil, lookupError(err, "Invitation", id)
	}
	return &inv, nil
}

func (r *invitationRepository) ListPending(ctx context.Context, inviteeID uint) ([]models.GroupInvitation, error) {
	var invs []models.GroupInvitation
	if err := r.db.WithContext(ctx).
		Where("invitee_id = ? AND status = ?", inviteeID, models.InvitationStatusPending).
		Preload("Property").
		Preload("Inviter").
		Order("created_at DESC, id DESC").
		Find(&invs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return invs, nil
}

func (r *invitationRepository) MarkRead(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).
		Model(&models.GroupInvitation{}).
		Where("id IN ? AND read = ?", ids, false).
		Update("read", true).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *invitationRepository) Transition(ctx context.Context, id uint, to models.InvitationStatus) (bool, error) {
	if !models.InvitationStatusPending.CanTransition(to) {
		return false, models.NewValidationError("invalid invitation status " + string(to))
	}
	res := r.db.WithContext(ctx).
		Model(&models.GroupInvitation{}).
		Where("id = ? AND status = ?", id, models.InvitationStatusPending).
		Update("status", to)
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *invitationRepository) CountUnread(ctx context.Context, inviteeID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.GroupInvitation{}).
		Where("invitee_id = ? AND status = ? AND read = ?", inviteeID, models.InvitationStatusPending, false).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
