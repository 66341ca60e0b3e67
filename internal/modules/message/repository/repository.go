package repository

import (
	"context"
	"time"

	"anoa.com/tradesphere/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MessageRepository interface {
	// GetOrCreateConversation inserts the conversation unless the same
	// ordered pair and listing already has one, then reads it back. Callers
	// racing on first contact all end up with the same row.
	GetOrCreateConversation(ctx context.Context, selfID, otherID, listingID uuid.UUID) (*entity.Conversation, error)
	FindConversationByID(ctx context.Context, id uuid.UUID) (*entity.Conversation, error)
	ListConversations(ctx context.Context, userID uuid.UUID) ([]*entity.Conversation, error)
	// FindMessages pages newest first and returns each page in
	// chronological order.
	FindMessages(ctx context.Context, conversationID uuid.UUID, offset, limit int) ([]*entity.Message, int64, error)
	CreateMessage(ctx context.Context, message *entity.Message) error
	MarkRead(ctx context.Context, conversationID, readerID uuid.UUID) (int64, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
}

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Listing").
		Preload("UserOne").
		Preload("UserTwo")
}

func (r *messageRepository) GetOrCreateConversation(ctx context.Context, selfID, otherID, listingID uuid.UUID) (*entity.Conversation, error) {
	one, two := entity.OrderedPair(selfID, otherID)

	conversation := &entity.Conversation{
		ParticipantOne: one,
		ParticipantTwo: two,
		ListingID:      listingID,
	}
	err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "participant_one"},
				{Name: "participant_two"},
				{Name: "listing_id"},
			},
			DoNothing: true,
		}).
		Create(conversation).Error
	if err != nil {
		return nil, err
	}

	var existing entity.Conversation
	err = r.withRelations(r.db.WithContext(ctx)).
		Where("participant_one = ? AND participant_two = ? AND listing_id = ?", one, two, listingID).
		First(&existing).Error
	if err != nil {
		return nil, err
	}
	if err := r.attachLastMessages(ctx, []*entity.Conversation{&existing}); err != nil {
		return nil, err
	}
	return &existing, nil
}

func (r *messageRepository) FindConversationByID(ctx context.Context, id uuid.UUID) (*entity.Conversation, error) {
	var conversation entity.Conversation
	if err := r.db.WithContext(ctx).First(&conversation, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &conversation, nil
}

func (r *messageRepository) ListConversations(ctx context.Context, userID uuid.UUID) ([]*entity.Conversation, error) {
	var conversations []*entity.Conversation
	err := r.withRelations(r.db.WithContext(ctx)).
		Where("participant_one = ? OR participant_two = ?", userID, userID).
		Order("updated_at DESC").
		Find(&conversations).Error
	if err != nil {
		return nil, err
	}

	if err := r.attachLastMessages(ctx, conversations); err != nil {
		return nil, err
	}
	return conversations, nil
}

func (r *messageRepository) attachLastMessages(ctx context.Context, conversations []*entity.Conversation) error {
	ids := make([]uuid.UUID, 0, len(conversations))
	for _, c := range conversations {
		if c.LastMessageID != nil {
			ids = append(ids, *c.LastMessageID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	var messages []*entity.Message
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&messages).Error; err != nil {
		return err
	}

	byID := make(map[uuid.UUID]*entity.Message, len(messages))
	for _, m := range messages {
		byID[m.ID] = m
	}
	for _, c := range conversations {
		if c.LastMessageID != nil {
			c.LastMessage = byID[*c.LastMessageID]
		}
	}
	return nil
}

func (r *messageRepository) FindMessages(ctx context.Context, conversationID uuid.UUID, offset, limit int) ([]*entity.Message, int64, error) {
	var (
		messages []*entity.Message
		total    int64
	)

	base := r.db.WithContext(ctx).Model(&entity.Message{}).
		Where("conversation_id = ?", conversationID).
		Session(&gorm.Session{})

	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := base.
		Preload("Sender").
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, 0, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, total, nil
}

func (r *messageRepository) CreateMessage(ctx context.Context, message *entity.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(message).Error; err != nil {
			return err
		}

		return tx.Model(&entity.Conversation{}).
			Where("id = ?", message.ConversationID).
			Updates(map[string]any{
				"last_message_id": message.ID,
				"updated_at":      time.Now(),
			}).Error
	})
}

func (r *messageRepository) MarkRead(ctx context.Context, conversationID, readerID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Model(&entity.Message{}).
		Where("conversation_id = ? AND receiver_id = ? AND read = ?", conversationID, readerID, false).
		Update("read", true)
	return result.RowsAffected, result.Error
}

func (r *messageRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Message{}).
		Where("receiver_id = ? AND read = ?", userID, false).
		Count(&count).Error
	return count, err
}
