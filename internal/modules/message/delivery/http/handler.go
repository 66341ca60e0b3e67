package handler

import (
	"log"
	"net/http"
	"slices"
	"time"

	"anoa.com/tradesphere/internal/modules/message/dto"
	message "anoa.com/tradesphere/internal/modules/message/service"
	"anoa.com/tradesphere/internal/observability"
	"anoa.com/tradesphere/pkg/apperror"
	commonDto "anoa.com/tradesphere/pkg/dto"
	"anoa.com/tradesphere/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

const writeWait = 10 * time.Second

type MessageHandler struct {
	service     message.MessageService
	redisClient *redis.Client
	upgrader    websocket.Upgrader
}

func NewMessageHandler(service message.MessageService, redisClient *redis.Client, allowedOrigins []string) *MessageHandler {
	return &MessageHandler{
		service:     service,
		redisClient: redisClient,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || slices.Contains(allowedOrigins, "*") || slices.Contains(allowedOrigins, origin)
			},
		},
	}
}

func uuidParam(c *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.ResponseError(c, apperror.NewValidationError(name, "must be a valid "+label+" id"))
		return uuid.Nil, false
	}
	return id, true
}

func (h *MessageHandler) GetConversations(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	conversations, err := h.service.GetConversations(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"count": len(conversations), "conversations": conversations})
}

func (h *MessageHandler) GetOrCreateConversation(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	otherID, ok := uuidParam(c, "userId", "user")
	if !ok {
		return
	}
	listingID, ok := uuidParam(c, "listingId", "listing")
	if !ok {
		return
	}

	detail, err := h.service.GetOrCreateConversation(c.Request.Context(), userID, otherID, listingID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"conversation": detail.Conversation,
		"messages":     detail.Messages,
		"pagination":   detail.Pagination,
	})
}

func (h *MessageHandler) GetMessages(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	conversationID, ok := uuidParam(c, "id", "conversation")
	if !ok {
		return
	}

	var page commonDto.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		response.ResponseError(c, err)
		return
	}

	messages, meta, err := h.service.GetMessages(c.Request.Context(), userID, conversationID, page)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"messages": messages, "pagination": meta})
}

func (h *MessageHandler) SendMessage(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, err)
		return
	}

	sent, err := h.service.SendMessage(c.Request.Context(), userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"message": sent})
}

func (h *MessageHandler) MarkAsRead(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	conversationID, ok := uuidParam(c, "conversationId", "conversation")
	if !ok {
		return
	}

	updated, err := h.service.MarkAsRead(c.Request.Context(), userID, conversationID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "messages marked as read", "updated": updated})
}

func (h *MessageHandler) UnreadCount(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	count, err := h.service.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"count": count})
}

// HandleWebSocket relays the caller's Redis message channel to the socket
// until either side goes away.
func (h *MessageHandler) HandleWebSocket(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if h.redisClient == nil {
		response.ResponseError(c, apperror.New(http.StatusServiceUnavailable, "live messages are unavailable", nil))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade websocket: %v", err)
		return
	}
	defer conn.Close()

	observability.IncWSActive()
	defer observability.DecWSActive()

	ctx := c.Request.Context()
	pubsub := h.redisClient.Subscribe(ctx, message.Channel(userID.String()))
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		log.Printf("Failed to subscribe to redis channel: %v", err)
		return
	}

	ch := pubsub.Channel()

	clientClosed := make(chan struct{})
	go func() {
		defer close(clientClosed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				log.Printf("Failed to write message to websocket: %v", err)
				return
			}
		case <-clientClosed:
			return
		case <-ctx.Done():
			return
		}
	}
}
