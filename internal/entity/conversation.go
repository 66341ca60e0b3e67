package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Conversation keeps its two participants as an ordered pair
// (participant_one < participant_two) so one unique index covers
// both directions of first contact.
type Conversation struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ParticipantOne uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_conversations_pair_listing,priority:1;index" json:"participant_one"`
	ParticipantTwo uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_conversations_pair_listing,priority:2;index" json:"participant_two"`
	ListingID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_conversations_pair_listing,priority:3;index" json:"listing_id"`
	Listing        Listing    `json:"listing"`
	UserOne        User       `gorm:"foreignKey:ParticipantOne;constraint:OnDelete:CASCADE" json:"-"`
	UserTwo        User       `gorm:"foreignKey:ParticipantTwo;constraint:OnDelete:CASCADE" json:"-"`
	LastMessageID  *uuid.UUID `gorm:"type:uuid" json:"last_message_id,omitempty"`
	LastMessage    *Message   `gorm:"-" json:"last_message,omitempty"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime;index" json:"updated_at"`
}

func (c *Conversation) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID, err = uuid.NewV7()
	}
	return
}

// OrderedPair returns a and b with the lexically smaller id first.
func OrderedPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if a.String() > b.String() {
		return b, a
	}
	return a, b
}

func (c *Conversation) HasParticipant(userID uuid.UUID) bool {
	return c.ParticipantOne == userID || c.ParticipantTwo == userID
}

// Other returns the participant that is not userID.
func (c *Conversation) Other(userID uuid.UUID) uuid.UUID {
	if c.ParticipantOne == userID {
		return c.ParticipantTwo
	}
	return c.ParticipantOne
}

type Message struct {
	ID             uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	ConversationID uuid.UUID     `gorm:"type:uuid;not null;index:idx_messages_conversation_created,priority:1" json:"conversation_id"`
	Conversation   *Conversation `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	SenderID       uuid.UUID     `gorm:"type:uuid;not null" json:"sender_id"`
	Sender         User          `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE" json:"sender"`
	ReceiverID     uuid.UUID     `gorm:"type:uuid;not null;index:idx_messages_receiver_read,priority:1" json:"receiver_id"`
	ListingID      uuid.UUID     `gorm:"type:uuid;not null;index" json:"listing_id"`
	Content        string        `gorm:"type:text;not null" json:"content"`
	Read           bool          `gorm:"not null;default:false;index:idx_messages_receiver_read,priority:2" json:"read"`
	CreatedAt      time.Time     `gorm:"autoCreateTime;index:idx_messages_conversation_created,priority:2" json:"created_at"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID, err = uuid.NewV7()
	}
	return
}
