package dto

import (
	"time"

	"anoa.com/tradesphere/internal/entity"
	commonDto "anoa.com/tradesphere/pkg/dto"
	"github.com/google/uuid"
)

const MaxContentLength = 1000

type SendMessageRequest struct {
	ConversationID uuid.UUID `json:"conversationId" binding:"required"`
	Content        string    `json:"content" binding:"required,max=1000"`
}

type MessageResponse struct {
	ID             uuid.UUID                `json:"id"`
	ConversationID uuid.UUID                `json:"conversationId"`
	SenderID       uuid.UUID                `json:"senderId"`
	ReceiverID     uuid.UUID                `json:"receiverId"`
	ListingID      uuid.UUID                `json:"listingId"`
	Content        string                   `json:"content"`
	Read           bool                     `json:"read"`
	Sender         *commonDto.OwnerResponse `json:"sender,omitempty"`
	CreatedAt      time.Time                `json:"createdAt"`
}

type ConversationResponse struct {
	ID          uuid.UUID                 `json:"id"`
	Listing     *commonDto.ListingSummary `json:"listing"`
	OtherUser   *commonDto.OwnerResponse  `json:"otherUser"`
	LastMessage *MessageResponse          `json:"lastMessage"`
	CreatedAt   time.Time                 `json:"createdAt"`
	UpdatedAt   time.Time                 `json:"updatedAt"`
}

type ConversationDetailResponse struct {
	Conversation ConversationResponse     `json:"conversation"`
	Messages     []MessageResponse        `json:"messages"`
	Pagination   commonDto.PaginationMeta `json:"pagination"`
}

// Event is what live subscribers receive on the user's channel.
type Event struct {
	Type string          `json:"type"`
	Data MessageResponse `json:"data"`
}

func NewMessageResponse(m *entity.Message) MessageResponse {
	return MessageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		ReceiverID:     m.ReceiverID,
		ListingID:      m.ListingID,
		Content:        m.Content,
		Read:           m.Read,
		Sender:         commonDto.NewOwnerResponse(&m.Sender),
		CreatedAt:      m.CreatedAt,
	}
}

// NewConversationResponse renders c from viewer's side, so OtherUser is
// whoever viewer is talking to.
func NewConversationResponse(c *entity.Conversation, viewer uuid.UUID) ConversationResponse {
	other := &c.UserTwo
	if c.ParticipantTwo == viewer {
		other = &c.UserOne
	}

	resp := ConversationResponse{
		ID:        c.ID,
		Listing:   commonDto.NewListingSummary(&c.Listing),
		OtherUser: commonDto.NewOwnerResponse(other),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if c.LastMessage != nil {
		last := NewMessageResponse(c.LastMessage)
		resp.LastMessage = &last
	}
	return resp
}
