package repository

import (
	"context"
	"fmt"
	"time"

	"propmatch/internal/models"

	"gorm.io/gorm"
)

// MessageRepository stores and reads the three message thread kinds behind one interface.
type MessageRepository interface {
	// Create appends a message to the thread. Messages are never edited.
	Create(ctx context.Context, thread models.Thread, senderID uint, userName, text string) (*models.ThreadMessage, error)
	// ListThread returns the full thread ordered by created_at, then id, ascending.
	ListThread(ctx context.Context, thread models.Thread) ([]models.ThreadMessage, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository returns a new MessageRepository implementation.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, thread models.Thread, senderID uint, userName, text string) (*models.ThreadMessage, error) {
	now := time.Now()
	var out models.ThreadMessage

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		switch thread.Scope {
		case models.ThreadScopeConversation:
			msg := models.Message{ConversationID: thread.ID, SenderID: senderID, UserName: userName, Message: text, CreatedAt: now}
			if err := tx.Create(&msg).Error; err != nil {
				return err
			}
			out = fromMessage(msg)
			// Bumps the conversation to the top of the messenger list.
			return tx.Model(&models.Conversation{}).Where("id = ?", thread.ID).Update("updated_at", now).Error
		case models.ThreadScopeGroup:
			msg := models.GroupMessage{GroupID: thread.ID, UserID: senderID, UserName: userName, Message: text, CreatedAt: now}
			if err := tx.Create(&msg).Error; err != nil {
				return err
			}
			out = fromGroupMessage(msg)
			return nil
		case models.ThreadScopeProperty:
			msg := models.PropertyGroupMessage{PropertyID: thread.ID, UserID: senderID, UserName: userName, Message: text, CreatedAt: now}
			if err := tx.Create(&msg).Error; err != nil {
				return err
			}
			out = fromPropertyMessage(msg)
			return nil
		default:
			return fmt.Errorf("unknown thread scope %q", thread.Scope)
		}
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &out, nil
}

func (r *messageRepository) ListThread(ctx context.Context, thread models.Thread) ([]models.ThreadMessage, error) {
	db := r.db.WithContext(ctx).Order("created_at ASC, id ASC")

	switch thread.Scope {
	case models.ThreadScopeConversation:
		var rows []models.Message
		if err := db.Where("conversation_id = ?", thread.ID).Find(&rows).Error; err != nil {
			return nil, models.NewInternalError(err)
		}
		out := make([]models.ThreadMessage, len(rows))
		for i, m := range rows {
			out[i] = fromMessage(m)
		}
		return out, nil
	case models.ThreadScopeGroup:
		var rows []models.GroupMessage
		if err := db.Where("group_id = ?", thread.ID).Find(&rows).Error; err != nil {
			return nil, models.NewInternalError(err)
		}
		out := make([]models.ThreadMessage, len(rows))
		for i, m := range rows {
			out[i] = fromGroupMessage(m)
		}
		return out, nil
	case models.ThreadScopeProperty:
		var rows []models.PropertyGroupMessage
		if err := db.Where("property_id = ?", thread.ID).Find(&rows).Error; err != nil {
			return nil, models.NewInternalError(err)
		}
		out := make([]models.ThreadMessage, len(rows))
		for i, m := range rows {
			out[i] = fromPropertyMessage(m)
		}
		return out, nil
	}
	return nil, models.NewValidationError(fmt.Sprintf("unknown thread scope %q", thread.Scope))
}

func fromMessage(m models.Message) models.ThreadMessage {
	return models.ThreadMessage{
		ID: m.ID, Scope: models.ThreadScopeConversation, ScopeID: m.ConversationID,
		SenderID: m.SenderID, UserName: m.UserName, Message: m.Message, CreatedAt: m.CreatedAt,
	}
}

func fromGroupMessage(m models.GroupMessage) models.ThreadMessage {
	return models.ThreadMessage{
		ID: m.ID, Scope: models.ThreadScopeGroup, ScopeID: m.GroupID,
		SenderID: m.UserID, UserName: m.UserName, Message: m.Message, CreatedAt: m.CreatedAt,
	}
}

func fromPropertyMessage(m models.PropertyGroupMessage) models.ThreadMessage {
	return models.ThreadMessage{
		ID: m.ID, Scope: models.ThreadScopeProperty, ScopeID: m.PropertyID,
		SenderID: m.UserID, UserName: m.UserName, Message: m.Message, CreatedAt: m.CreatedAt,
	}
}
