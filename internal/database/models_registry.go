package database

import (
	"fmt"

	"propmatch/internal/models"

	"gorm.io/gorm"
)

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Profile{},
		&models.Property{},
		&models.PropertyInterest{},
		&models.CoInvestmentGroup{},
		&models.GroupMember{},
		&models.Opportunity{},
		&models.OpportunityComment{},
		&models.Conversation{},
		&models.ConversationParticipant{},
		&models.Message{},
		&models.GroupMessage{},
		&models.PropertyGroupMessage{},
		&models.GroupInvitation{},
		&models.WizardDraft{},
	}
}

// AutoMigrate creates or updates every persistent table. Tests use it
// against sqlite.
func AutoMigrate(db *gorm.DB) error {
	if err := SetupJoinTables(db); err != nil {
		return err
	}
	if err := db.AutoMigrate(PersistentModels()...); err != nil {
		return err
	}
	return createPartialIndexes(db)
}

// partialIndexes cannot be expressed as struct tags. The statements match the
// SQL migrations and run on both postgres and sqlite.
var partialIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_group_invitations_pending
	ON group_invitations (group_conversation_id, invitee_id)
	WHERE status = 'pending'`,
}

func createPartialIndexes(db *gorm.DB) error {
	for _, stmt := range partialIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create partial index: %w", err)
		}
	}
	return nil
}

// SetupJoinTables registers custom join models so many2many associations
// read and write the same rows the repositories do.
func SetupJoinTables(db *gorm.DB) error {
	if err := db.SetupJoinTable(&models.Conversation{}, "Participants", &models.ConversationParticipant{}); err != nil {
		return fmt.Errorf("setup conversation participants: %w", err)
	}
	return nil
}
