package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"anoa.com/tradesphere/internal/mocks"
	"anoa.com/tradesphere/internal/modules/message/dto"
	"anoa.com/tradesphere/pkg/apperror"
	commonDto "anoa.com/tradesphere/pkg/dto"
	"anoa.com/tradesphere/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var userID = uuid.New()

func setupRouter(h *MessageHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(response.ContextUserID, userID.String())
		c.Next()
	})
	r.GET("/messages/conversations", h.GetConversations)
	r.GET("/messages/conversation/:userId/:listingId", h.GetOrCreateConversation)
	r.GET("/messages/conversations/:id/messages", h.GetMessages)
	r.POST("/messages", h.SendMessage)
	r.PUT("/messages/read/:conversationId", h.MarkAsRead)
	r.GET("/messages/unread", h.UnreadCount)
	r.GET("/messages/ws", h.HandleWebSocket)
	return r
}

func TestSendMessage(t *testing.T) {
	svc := new(mocks.MessageServiceMock)
	router := setupRouter(NewMessageHandler(svc, nil, nil))
	convID := uuid.New()
	receiver := uuid.New()

	req := dto.SendMessageRequest{ConversationID: convID, Content: "Still available?"}
	svc.On("SendMessage", mock.Anything, userID, req).
		Return(&dto.MessageResponse{ID: uuid.New(), ConversationID: convID, SenderID: userID, ReceiverID: receiver, Content: req.Content}, nil).Once()

	payload, _ := json.Marshal(req)
	rec := httptest.NewRecorder()
	httpReq := httptest.NewRequest(http.MethodPost, "/messages", bytes.NewReader(payload))
	httpReq.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, httpReq)

	require.Equal(t, http.StatusCreated, rec.Code)
	var body struct {
		Success bool                `json:"success"`
		Message dto.MessageResponse `json:"message"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.Equal(t, receiver, body.Message.ReceiverID)
	svc.AssertExpectations(t)
}

func TestSendMessageRequiresContent(t *testing.T) {
	svc := new(mocks.MessageServiceMock)
	router := setupRouter(NewMessageHandler(svc, nil, nil))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/messages", bytes.NewBufferString(`{"conversationId":"`+uuid.NewString()+`"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetOrCreateConversationRejectsBadIDs(t *testing.T) {
	svc := new(mocks.MessageServiceMock)
	router := setupRouter(NewMessageHandler(svc, nil, nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/messages/conversation/not-a-user/"+uuid.NewString(), nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "GetOrCreateConversation", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetMessagesForNonParticipant(t *testing.T) {
	svc := new(mocks.MessageServiceMock)
	router := setupRouter(NewMessageHandler(svc, nil, nil))
	convID := uuid.New()

	svc.On("GetMessages", mock.Anything, userID, convID, commonDto.PageRequest{}).
		Return(nil, commonDto.PaginationMeta{}, apperror.ErrForbidden).Once()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/messages/conversations/"+convID.String()+"/messages", nil))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMarkAsReadAndUnread(t *testing.T) {
	svc := new(mocks.MessageServiceMock)
	router := setupRouter(NewMessageHandler(svc, nil, nil))
	convID := uuid.New()

	svc.On("MarkAsRead", mock.Anything, userID, convID).Return(int64(3), nil).Once()
	svc.On("UnreadCount", mock.Anything, userID).Return(int64(0), nil).Once()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/messages/read/"+convID.String(), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var marked map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&marked))
	assert.Equal(t, float64(3), marked["updated"])

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/messages/unread", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var unread map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&unread))
	assert.Equal(t, float64(0), unread["count"])
}

func TestWebSocketWithoutRedis(t *testing.T) {
	router := setupRouter(NewMessageHandler(new(mocks.MessageServiceMock), nil, nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/messages/ws", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
