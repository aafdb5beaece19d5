package repository

import (
	"context"

	"propmatch/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GroupRepository defines persistence operations for co-investment groups.
type GroupRepository interface {
	CreateGroup(ctx context.Context, group *models.CoInvestmentGroup) error
	// AddMembers bulk-inserts members; an existing (group, user) pair is left untouched.
	AddMembers(ctx context.Context, members []models.GroupMember) error
	GetByID(ctx context.Context, id uint) (*models.CoInvestmentGroup, error)
	// ListForUser returns groups the user leads or belongs to, newest first.
	ListForUser(ctx context.Context, userID uint) ([]models.CoInvestmentGroup, error)
	ListMembers(ctx context.Context, groupID uint) ([]models.GroupMember, error)
}

type groupRepository struct {
	db *gorm.DB
}

// NewGroupRepository returns a new GroupRepository implementation.
func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) CreateGroup(ctx context.Context, group *models.CoInvestmentGroup) error {
	if err := r.db.WithContext(ctx).Omit("Members").Create(group).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *groupRepository) AddMembers(ctx context.Context, members []models.GroupMember) error {
	if len(members) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&members).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *groupRepository) GetByID(ctx context.Context, id uint) (*models.CoInvestmentGroup, error) {
	var group models.CoInvestmentGroup
	if err := r.db.WithContext(ctx).
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&group, id).Error; err != nil {
		return nil, lookupError(err, "Group", id)
	}
	return &group, nil
}

func (r *groupRepository) ListForUser(ctx context.Context, userID uint) ([]models.CoInvestmentGroup, error) {
	db := r.db.WithContext(ctx)
	memberOf := db.Model(&models.GroupMember{}).Select("group_id").Where("user_id = ?", userID)

	var groups []models.CoInvestmentGroup
	if err := db.
		Where("lead_investor_id = ? OR id IN (?)", userID, memberOf).
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Order("created_at DESC, id DESC").
		Find(&groups).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return groups, nil
}

func (r *groupRepository) ListMembers(ctx context.Context, groupID uint) ([]models.GroupMember, error) {
	var members []models.GroupMember
	if err := r.db.WithContext(ctx).Where("group_id = ?", groupID).Order("id").Find(&members).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return members, nil
}
