package message

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"anoa.com/tradesphere/internal/entity"
	listingRepo "anoa.com/tradesphere/internal/modules/listing/repository"
	"anoa.com/tradesphere/internal/modules/message/dto"
	messageRepo "anoa.com/tradesphere/internal/modules/message/repository"
	userRepo "anoa.com/tradesphere/internal/modules/user/repository"
	"anoa.com/tradesphere/pkg/apperror"
	commonDto "anoa.com/tradesphere/pkg/dto"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	defaultMessageLimit = 50
	maxMessageLimit     = 100

	EventNewMessage = "message"
)

// Channel is the Redis pub/sub channel carrying a user's incoming messages.
func Channel(userID string) string {
	return fmt.Sprintf("user_messages:%s", userID)
}

type MessageService interface {
	GetConversations(ctx context.Context, userID uuid.UUID) ([]dto.ConversationResponse, error)
	GetOrCreateConversation(ctx context.Context, userID, otherID, listingID uuid.UUID) (*dto.ConversationDetailResponse, error)
	GetMessages(ctx context.Context, userID, conversationID uuid.UUID, page commonDto.PageRequest) ([]dto.MessageResponse, commonDto.PaginationMeta, error)
	SendMessage(ctx context.Context, senderID uuid.UUID, req dto.SendMessageRequest) (*dto.MessageResponse, error)
	MarkAsRead(ctx context.Context, userID, conversationID uuid.UUID) (int64, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
}

type messageService struct {
	repo        messageRepo.MessageRepository
	listingRepo listingRepo.Repository
	userRepo    userRepo.UserRepository
	redisClient *redis.Client
}

func NewMessageService(repo messageRepo.MessageRepository, listingRepo listingRepo.Repository, userRepo userRepo.UserRepository, redisClient *redis.Client) MessageService {
	return &messageService{
		repo:        repo,
		listingRepo: listingRepo,
		userRepo:    userRepo,
		redisClient: redisClient,
	}
}

func (s *messageService) GetConversations(ctx context.Context, userID uuid.UUID) ([]dto.ConversationResponse, error) {
	conversations, err := s.repo.ListConversations(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]dto.ConversationResponse, 0, len(conversations))
	for _, c := range conversations {
		out = append(out, dto.NewConversationResponse(c, userID))
	}
	return out, nil
}

func (s *messageService) GetOrCreateConversation(ctx context.Context, userID, otherID, listingID uuid.UUID) (*dto.ConversationDetailResponse, error) {
	if userID == otherID {
		return nil, apperror.NewValidationError("userId", "cannot start a conversation with yourself")
	}

	if _, err := s.listingRepo.FindByID(ctx, listingID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("listing not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	if _, err := s.userRepo.FindByID(ctx, otherID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	conversation, err := s.repo.GetOrCreateConversation(ctx, userID, otherID, listingID)
	if err != nil {
		return nil, err
	}

	messages, meta, err := s.page(ctx, conversation.ID, commonDto.PageRequest{})
	if err != nil {
		return nil, err
	}

	return &dto.ConversationDetailResponse{
		Conversation: dto.NewConversationResponse(conversation, userID),
		Messages:     messages,
		Pagination:   meta,
	}, nil
}

// participantConversation loads the conversation and checks userID is in it.
func (s *messageService) participantConversation(ctx context.Context, userID, conversationID uuid.UUID) (*entity.Conversation, error) {
	conversation, err := s.repo.FindConversationByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("conversation not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	if !conversation.HasParticipant(userID) {
		return nil, fmt.Errorf("not a participant of this conversation: %w", apperror.ErrForbidden)
	}
	return conversation, nil
}

func (s *messageService) page(ctx context.Context, conversationID uuid.UUID, req commonDto.PageRequest) ([]dto.MessageResponse, commonDto.PaginationMeta, error) {
	page, limit := req.Normalize(defaultMessageLimit, maxMessageLimit)

	messages, total, err := s.repo.FindMessages(ctx, conversationID, (page-1)*limit, limit)
	if err != nil {
		return nil, commonDto.PaginationMeta{}, err
	}

	out := make([]dto.MessageResponse, 0, len(messages))
	for _, m := range messages {
		out = append(out, dto.NewMessageResponse(m))
	}
	return out, commonDto.NewPaginationMeta(total, page, limit), nil
}

func (s *messageService) GetMessages(ctx context.Context, userID, conversationID uuid.UUID, req commonDto.PageRequest) ([]dto.MessageResponse, commonDto.PaginationMeta, error) {
	if _, err := s.participantConversation(ctx, userID, conversationID); err != nil {
		return nil, commonDto.PaginationMeta{}, err
	}
	return s.page(ctx, conversationID, req)
}

func (s *messageService) SendMessage(ctx context.Context, senderID uuid.UUID, req dto.SendMessageRequest) (*dto.MessageResponse, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, apperror.NewValidationError("content", "message content is required")
	}
	if len([]rune(content)) > dto.MaxContentLength {
		return nil, apperror.NewValidationError("content", fmt.Sprintf("must be at most %d characters", dto.MaxContentLength))
	}

	conversation, err := s.participantConversation(ctx, senderID, req.ConversationID)
	if err != nil {
		return nil, err
	}

	message := &entity.Message{
		ConversationID: conversation.ID,
		SenderID:       senderID,
		ReceiverID:     conversation.Other(senderID),
		ListingID:      conversation.ListingID,
		Content:        content,
	}
	if err := s.repo.CreateMessage(ctx, message); err != nil {
		return nil, err
	}

	if sender, err := s.userRepo.FindByID(ctx, senderID); err == nil {
		message.Sender = *sender
	}

	resp := dto.NewMessageResponse(message)
	s.publish(ctx, message.ReceiverID, resp)
	return &resp, nil
}

// publish is best-effort; the message is already stored.
func (s *messageService) publish(ctx context.Context, receiverID uuid.UUID, msg dto.MessageResponse) {
	if s.redisClient == nil {
		return
	}

	payload, err := json.Marshal(dto.Event{Type: EventNewMessage, Data: msg})
	if err != nil {
		log.Printf("Failed to encode message event: %v", err)
		return
	}
	if err := s.redisClient.Publish(ctx, Channel(receiverID.String()), payload).Err(); err != nil {
		log.Printf("Failed to publish message %s: %v", msg.ID, err)
	}
}

func (s *messageService) MarkAsRead(ctx context.Context, userID, conversationID uuid.UUID) (int64, error) {
	if _, err := s.participantConversation(ctx, userID, conversationID); err != nil {
		return 0, err
	}
	return s.repo.MarkRead(ctx, conversationID, userID)
}

func (s *messageService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}
