package mocks

import (
	"context"
	"time"

	"anoa.com/tradesphere/internal/entity"
	"anoa.com/tradesphere/internal/modules/listing/query"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) Create(ctx context.Context, user *entity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepositoryMock) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	args := m.Called(ctx, id)
	var user *entity.User
	if val := args.Get(0); val != nil {
		user = val.(*entity.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	var user *entity.User
	if val := args.Get(0); val != nil {
		user = val.(*entity.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) FindRoleByName(ctx context.Context, name string) (*entity.Role, error) {
	args := m.Called(ctx, name)
	var role *entity.Role
	if val := args.Get(0); val != nil {
		role = val.(*entity.Role)
	}
	return role, args.Error(1)
}

func (m *UserRepositoryMock) Update(ctx context.Context, user *entity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepositoryMock) FindAll(ctx context.Context, search string, offset, limit int) ([]*entity.User, int64, error) {
	args := m.Called(ctx, search, offset, limit)
	var users []*entity.User
	if val := args.Get(0); val != nil {
		users = val.([]*entity.User)
	}
	return users, args.Get(1).(int64), args.Error(2)
}

func (m *UserRepositoryMock) CountActiveListings(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *UserRepositoryMock) Delete(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, id)
	var ids []uuid.UUID
	if val := args.Get(0); val != nil {
		ids = val.([]uuid.UUID)
	}
	return ids, args.Error(1)
}

type CategoryRepositoryMock struct {
	mock.Mock
}

func (m *CategoryRepositoryMock) Create(ctx context.Context, category *entity.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *CategoryRepositoryMock) Update(ctx context.Context, category *entity.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *CategoryRepositoryMock) FindBySlug(ctx context.Context, slug string) (*entity.Category, error) {
	args := m.Called(ctx, slug)
	var category *entity.Category
	if val := args.Get(0); val != nil {
		category = val.(*entity.Category)
	}
	return category, args.Error(1)
}

func (m *CategoryRepositoryMock) FindByID(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	args := m.Called(ctx, id)
	var category *entity.Category
	if val := args.Get(0); val != nil {
		category = val.(*entity.Category)
	}
	return category, args.Error(1)
}

func (m *CategoryRepositoryMock) FindByName(ctx context.Context, name string) (*entity.Category, error) {
	args := m.Called(ctx, name)
	var category *entity.Category
	if val := args.Get(0); val != nil {
		category = val.(*entity.Category)
	}
	return category, args.Error(1)
}

func (m *CategoryRepositoryMock) FindAll(ctx context.Context, parentOnly bool) ([]*entity.Category, error) {
	args := m.Called(ctx, parentOnly)
	var categories []*entity.Category
	if val := args.Get(0); val != nil {
		categories = val.([]*entity.Category)
	}
	return categories, args.Error(1)
}

func (m *CategoryRepositoryMock) CountChildren(ctx context.Context, id uuid.UUID) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *CategoryRepositoryMock) CountListings(ctx context.Context, id uuid.UUID) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *CategoryRepositoryMock) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type ListingRepositoryMock struct {
	mock.Mock
}

func (m *ListingRepositoryMock) Create(ctx context.Context, listing *entity.Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}

func (m *ListingRepositoryMock) Update(ctx context.Context, listing *entity.Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}

func (m *ListingRepositoryMock) FindByID(ctx context.Context, id uuid.UUID) (*entity.Listing, error) {
	args := m.Called(ctx, id)
	var listing *entity.Listing
	if val := args.Get(0); val != nil {
		listing = val.(*entity.Listing)
	}
	return listing, args.Error(1)
}

func (m *ListingRepositoryMock) FindBySlug(ctx context.Context, slug string) (*entity.Listing, error) {
	args := m.Called(ctx, slug)
	var listing *entity.Listing
	if val := args.Get(0); val != nil {
		listing = val.(*entity.Listing)
	}
	return listing, args.Error(1)
}

func (m *ListingRepositoryMock) FindAll(ctx context.Context, q *query.Query) ([]*entity.Listing, int64, error) {
	args := m.Called(ctx, q)
	var listings []*entity.Listing
	if val := args.Get(0); val != nil {
		listings = val.([]*entity.Listing)
	}
	return listings, args.Get(1).(int64), args.Error(2)
}

func (m *ListingRepositoryMock) FindRelated(ctx context.Context, listing *entity.Listing, limit int) ([]*entity.Listing, error) {
	args := m.Called(ctx, listing, limit)
	var listings []*entity.Listing
	if val := args.Get(0); val != nil {
		listings = val.([]*entity.Listing)
	}
	return listings, args.Error(1)
}

func (m *ListingRepositoryMock) FindOtherByOwner(ctx context.Context, ownerID, excludeID uuid.UUID, limit int) ([]*entity.Listing, error) {
	args := m.Called(ctx, ownerID, excludeID, limit)
	var listings []*entity.Listing
	if val := args.Get(0); val != nil {
		listings = val.([]*entity.Listing)
	}
	return listings, args.Error(1)
}

func (m *ListingRepositoryMock) IncrementViews(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ListingRepositoryMock) SetFeatured(ctx context.Context, id uuid.UUID, featured bool) error {
	args := m.Called(ctx, id, featured)
	return args.Error(0)
}

func (m *ListingRepositoryMock) ExpireOverdue(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	args := m.Called(ctx, now)
	var ids []uuid.UUID
	if val := args.Get(0); val != nil {
		ids = val.([]uuid.UUID)
	}
	return ids, args.Error(1)
}

func (m *ListingRepositoryMock) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type FavoriteRepositoryMock struct {
	mock.Mock
}

func (m *FavoriteRepositoryMock) Create(ctx context.Context, favorite *entity.Favorite) error {
	args := m.Called(ctx, favorite)
	return args.Error(0)
}

func (m *FavoriteRepositoryMock) Delete(ctx context.Context, userID, listingID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID, listingID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *FavoriteRepositoryMock) Exists(ctx context.Context, userID, listingID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, listingID)
	return args.Bool(0), args.Error(1)
}

func (m *FavoriteRepositoryMock) FindByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*entity.Favorite, int64, error) {
	args := m.Called(ctx, userID, offset, limit)
	var favorites []*entity.Favorite
	if val := args.Get(0); val != nil {
		favorites = val.([]*entity.Favorite)
	}
	return favorites, args.Get(1).(int64), args.Error(2)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) GetOrCreateConversation(ctx context.Context, selfID, otherID, listingID uuid.UUID) (*entity.Conversation, error) {
	args := m.Called(ctx, selfID, otherID, listingID)
	var conversation *entity.Conversation
	if val := args.Get(0); val != nil {
		conversation = val.(*entity.Conversation)
	}
	return conversation, args.Error(1)
}

func (m *MessageRepositoryMock) FindConversationByID(ctx context.Context, id uuid.UUID) (*entity.Conversation, error) {
	args := m.Called(ctx, id)
	var conversation *entity.Conversation
	if val := args.Get(0); val != nil {
		conversation = val.(*entity.Conversation)
	}
	return conversation, args.Error(1)
}

func (m *MessageRepositoryMock) ListConversations(ctx context.Context, userID uuid.UUID) ([]*entity.Conversation, error) {
	args := m.Called(ctx, userID)
	var conversations []*entity.Conversation
	if val := args.Get(0); val != nil {
		conversations = val.([]*entity.Conversation)
	}
	return conversations, args.Error(1)
}

func (m *MessageRepositoryMock) FindMessages(ctx context.Context, conversationID uuid.UUID, offset, limit int) ([]*entity.Message, int64, error) {
	args := m.Called(ctx, conversationID, offset, limit)
	var messages []*entity.Message
	if val := args.Get(0); val != nil {
		messages = val.([]*entity.Message)
	}
	return messages, args.Get(1).(int64), args.Error(2)
}

func (m *MessageRepositoryMock) CreateMessage(ctx context.Context, message *entity.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MessageRepositoryMock) MarkRead(ctx context.Context, conversationID, readerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, conversationID, readerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MessageRepositoryMock) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type AttachmentRepositoryMock struct {
	mock.Mock
}

func (m *AttachmentRepositoryMock) Create(ctx context.Context, attachment *entity.Attachment) error {
	args := m.Called(ctx, attachment)
	return args.Error(0)
}

func (m *AttachmentRepositoryMock) FindByURL(ctx context.Context, fileURL string) (*entity.Attachment, error) {
	args := m.Called(ctx, fileURL)
	var attachment *entity.Attachment
	if val := args.Get(0); val != nil {
		attachment = val.(*entity.Attachment)
	}
	return attachment, args.Error(1)
}

func (m *AttachmentRepositoryMock) InUse(ctx context.Context, fileURL string) (bool, error) {
	args := m.Called(ctx, fileURL)
	return args.Bool(0), args.Error(1)
}

func (m *AttachmentRepositoryMock) FindOrphans(ctx context.Context, cutoff time.Time) ([]entity.Attachment, error) {
	args := m.Called(ctx, cutoff)
	var attachments []entity.Attachment
	if val := args.Get(0); val != nil {
		attachments = val.([]entity.Attachment)
	}
	return attachments, args.Error(1)
}

func (m *AttachmentRepositoryMock) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
