//go:build integration

package message_test

import (
	"context"
	"sync"
	"testing"

	listingRepo "anoa.com/tradesphere/internal/modules/listing/repository"
	"anoa.com/tradesphere/internal/modules/message/dto"
	messageRepo "anoa.com/tradesphere/internal/modules/message/repository"
	message "anoa.com/tradesphere/internal/modules/message/service"
	userRepo "anoa.com/tradesphere/internal/modules/user/repository"
	"anoa.com/tradesphere/internal/testutil/pgtest"
	commonDto "anoa.com/tradesphere/pkg/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	pgtest.Main(m)
}

func realService(db *gorm.DB) message.MessageService {
	return message.NewMessageService(
		messageRepo.NewMessageRepository(db),
		listingRepo.NewRepository(db),
		userRepo.NewUserRepository(db),
		nil,
	)
}

func TestGetOrCreateIsIdempotent(t *testing.T) {
	db := pgtest.DB(t)
	ctx := context.Background()
	a := pgtest.CreateUser(t, db, "a@example.com")
	b := pgtest.CreateUser(t, db, "b@example.com")
	cat := pgtest.CreateCategory(t, db, "Phones", "phones", nil)
	l := pgtest.CreateListing(t, db, b, cat, "phone", 150)
	svc := realService(db)

	first, err := svc.GetOrCreateConversation(ctx, a.ID, b.ID, l.ID)
	require.NoError(t, err)
	second, err := svc.GetOrCreateConversation(ctx, a.ID, b.ID, l.ID)
	require.NoError(t, err)
	reverse, err := svc.GetOrCreateConversation(ctx, b.ID, a.ID, l.ID)
	require.NoError(t, err)

	assert.Equal(t, first.Conversation.ID, second.Conversation.ID)
	assert.Equal(t, first.Conversation.ID, reverse.Conversation.ID)
	assert.Equal(t, b.ID, first.Conversation.OtherUser.ID)
	assert.Equal(t, a.ID, reverse.Conversation.OtherUser.ID)
}

func TestConcurrentFirstContactConverges(t *testing.T) {
	db := pgtest.DB(t)
	ctx := context.Background()
	a := pgtest.CreateUser(t, db, "a@example.com")
	b := pgtest.CreateUser(t, db, "b@example.com")
	cat := pgtest.CreateCategory(t, db, "Phones", "phones", nil)
	l := pgtest.CreateListing(t, db, b, cat, "phone", 150)
	svc := realService(db)

	ids := make([]uuid.UUID, 8)
	var wg sync.WaitGroup
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := svc.GetOrCreateConversation(ctx, a.ID, b.ID, l.ID)
			if assert.NoError(t, err) {
				ids[i] = res.Conversation.ID
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids[1:] {
		assert.Equal(t, ids[0], id)
	}
}

func TestSendReadAndUnread(t *testing.T) {
	db := pgtest.DB(t)
	ctx := context.Background()
	buyer := pgtest.CreateUser(t, db, "buyer@example.com")
	seller := pgtest.CreateUser(t, db, "seller@example.com")
	cat := pgtest.CreateCategory(t, db, "Phones", "phones", nil)
	l := pgtest.CreateListing(t, db, seller, cat, "phone", 150)
	svc := realService(db)

	conv, err := svc.GetOrCreateConversation(ctx, buyer.ID, seller.ID, l.ID)
	require.NoError(t, err)
	convID := conv.Conversation.ID

	for _, text := range []string{"  Is this still available?  ", "Can you do 120?"} {
		msg, err := svc.SendMessage(ctx, buyer.ID, dto.SendMessageRequest{ConversationID: convID, Content: text})
		require.NoError(t, err)
		assert.Equal(t, seller.ID, msg.ReceiverID)
	}
	_, err = svc.SendMessage(ctx, seller.ID, dto.SendMessageRequest{ConversationID: convID, Content: "Yes, it is"})
	require.NoError(t, err)

	unread, err := svc.UnreadCount(ctx, seller.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)

	msgs, _, err := svc.GetMessages(ctx, seller.ID, convID, commonDto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "Is this still available?", msgs[0].Content)
	assert.Equal(t, "Yes, it is", msgs[2].Content)

	list, err := svc.GetConversations(ctx, buyer.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].LastMessage)
	assert.Equal(t, "Yes, it is", list[0].LastMessage.Content)

	flipped, err := svc.MarkAsRead(ctx, seller.ID, convID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), flipped)

	unread, err = svc.UnreadCount(ctx, seller.ID)
	require.NoError(t, err)
	assert.Zero(t, unread)

	unread, err = svc.UnreadCount(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
}
