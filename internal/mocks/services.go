package mocks

import (
	"context"
	"io"
	"mime/multipart"

	"anoa.com/tradesphere/internal/entity"
	attachmentDto "anoa.com/tradesphere/internal/modules/attachment/dto"
	categoryDto "anoa.com/tradesphere/internal/modules/category/dto"
	favoriteDto "anoa.com/tradesphere/internal/modules/favorite/dto"
	listingDto "anoa.com/tradesphere/internal/modules/listing/dto"
	"anoa.com/tradesphere/internal/modules/listing/query"
	messageDto "anoa.com/tradesphere/internal/modules/message/dto"
	searchDto "anoa.com/tradesphere/internal/modules/search/dto"
	userDto "anoa.com/tradesphere/internal/modules/user/dto"
	commonDto "anoa.com/tradesphere/pkg/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type ImageStorageMock struct {
	mock.Mock
}

func (m *ImageStorageMock) UploadImage(ctx context.Context, r io.Reader, folder, fileName string) (string, error) {
	args := m.Called(ctx, r, folder, fileName)
	return args.String(0), args.Error(1)
}

func (m *ImageStorageMock) DeleteImage(ctx context.Context, fileURL string) error {
	args := m.Called(ctx, fileURL)
	return args.Error(0)
}

type SearchServiceMock struct {
	mock.Mock
}

func (m *SearchServiceMock) IndexListing(listing *entity.Listing) error {
	args := m.Called(listing)
	return args.Error(0)
}

func (m *SearchServiceMock) DeleteListing(id uuid.UUID) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *SearchServiceMock) SearchListings(req searchDto.SearchRequest) (*searchDto.SearchResponse, error) {
	args := m.Called(req)
	var resp *searchDto.SearchResponse
	if val := args.Get(0); val != nil {
		resp = val.(*searchDto.SearchResponse)
	}
	return resp, args.Error(1)
}

func (m *SearchServiceMock) GenerateSearchToken(isAdmin bool) (string, error) {
	args := m.Called(isAdmin)
	return args.String(0), args.Error(1)
}

type CategoryServiceMock struct {
	mock.Mock
}

func (m *CategoryServiceMock) List(ctx context.Context, parentOnly bool) ([]categoryDto.CategoryResponse, error) {
	args := m.Called(ctx, parentOnly)
	var list []categoryDto.CategoryResponse
	if val := args.Get(0); val != nil {
		list = val.([]categoryDto.CategoryResponse)
	}
	return list, args.Error(1)
}

func (m *CategoryServiceMock) Get(ctx context.Context, idOrSlug string) (*categoryDto.CategoryDetailResponse, error) {
	args := m.Called(ctx, idOrSlug)
	var detail *categoryDto.CategoryDetailResponse
	if val := args.Get(0); val != nil {
		detail = val.(*categoryDto.CategoryDetailResponse)
	}
	return detail, args.Error(1)
}

func (m *CategoryServiceMock) Resolve(ctx context.Context, ref string) (*entity.Category, error) {
	args := m.Called(ctx, ref)
	var category *entity.Category
	if val := args.Get(0); val != nil {
		category = val.(*entity.Category)
	}
	return category, args.Error(1)
}

func (m *CategoryServiceMock) Create(ctx context.Context, req categoryDto.CreateCategoryRequest) (*categoryDto.CategoryResponse, error) {
	args := m.Called(ctx, req)
	var resp *categoryDto.CategoryResponse
	if val := args.Get(0); val != nil {
		resp = val.(*categoryDto.CategoryResponse)
	}
	return resp, args.Error(1)
}

func (m *CategoryServiceMock) Update(ctx context.Context, id uuid.UUID, req categoryDto.UpdateCategoryRequest) (*categoryDto.CategoryResponse, error) {
	args := m.Called(ctx, id, req)
	var resp *categoryDto.CategoryResponse
	if val := args.Get(0); val != nil {
		resp = val.(*categoryDto.CategoryResponse)
	}
	return resp, args.Error(1)
}

func (m *CategoryServiceMock) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *CategoryServiceMock) Initialize(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type ListingServiceMock struct {
	mock.Mock
}

func (m *ListingServiceMock) page(args mock.Arguments) (*listingDto.PaginatedListingResponse, error) {
	var resp *listingDto.PaginatedListingResponse
	if val := args.Get(0); val != nil {
		resp = val.(*listingDto.PaginatedListingResponse)
	}
	return resp, args.Error(1)
}

func (m *ListingServiceMock) listing(args mock.Arguments) (*listingDto.ListingResponse, error) {
	var resp *listingDto.ListingResponse
	if val := args.Get(0); val != nil {
		resp = val.(*listingDto.ListingResponse)
	}
	return resp, args.Error(1)
}

func (m *ListingServiceMock) GetListings(ctx context.Context, callerID *uuid.UUID, params query.Params) (*listingDto.PaginatedListingResponse, error) {
	return m.page(m.Called(ctx, callerID, params))
}

func (m *ListingServiceMock) GetFeatured(ctx context.Context, params query.Params) (*listingDto.PaginatedListingResponse, error) {
	return m.page(m.Called(ctx, params))
}

func (m *ListingServiceMock) GetRecent(ctx context.Context, params query.Params) (*listingDto.PaginatedListingResponse, error) {
	return m.page(m.Called(ctx, params))
}

func (m *ListingServiceMock) GetListingsByUser(ctx context.Context, callerID *uuid.UUID, ownerID uuid.UUID, params query.Params) (*listingDto.PaginatedListingResponse, error) {
	return m.page(m.Called(ctx, callerID, ownerID, params))
}

func (m *ListingServiceMock) GetListing(ctx context.Context, idOrSlug string) (*listingDto.ListingDetailResponse, error) {
	args := m.Called(ctx, idOrSlug)
	var resp *listingDto.ListingDetailResponse
	if val := args.Get(0); val != nil {
		resp = val.(*listingDto.ListingDetailResponse)
	}
	return resp, args.Error(1)
}

func (m *ListingServiceMock) CreateListing(ctx context.Context, userID uuid.UUID, req listingDto.CreateListingRequest) (*listingDto.ListingResponse, error) {
	return m.listing(m.Called(ctx, userID, req))
}

func (m *ListingServiceMock) UpdateListing(ctx context.Context, userID, listingID uuid.UUID, req listingDto.UpdateListingRequest) (*listingDto.ListingResponse, error) {
	return m.listing(m.Called(ctx, userID, listingID, req))
}

func (m *ListingServiceMock) DeleteListing(ctx context.Context, userID, listingID uuid.UUID) error {
	args := m.Called(ctx, userID, listingID)
	return args.Error(0)
}

func (m *ListingServiceMock) MarkSold(ctx context.Context, userID, listingID uuid.UUID) (*listingDto.ListingResponse, error) {
	return m.listing(m.Called(ctx, userID, listingID))
}

func (m *ListingServiceMock) ToggleFeatured(ctx context.Context, listingID uuid.UUID) (*listingDto.ListingResponse, error) {
	return m.listing(m.Called(ctx, listingID))
}

func (m *ListingServiceMock) ExpireListings(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type FavoriteServiceMock struct {
	mock.Mock
}

func (m *FavoriteServiceMock) AddFavorite(ctx context.Context, userID, listingID uuid.UUID) (*favoriteDto.FavoriteResponse, error) {
	args := m.Called(ctx, userID, listingID)
	var resp *favoriteDto.FavoriteResponse
	if val := args.Get(0); val != nil {
		resp = val.(*favoriteDto.FavoriteResponse)
	}
	return resp, args.Error(1)
}

func (m *FavoriteServiceMock) RemoveFavorite(ctx context.Context, userID, listingID uuid.UUID) error {
	args := m.Called(ctx, userID, listingID)
	return args.Error(0)
}

func (m *FavoriteServiceMock) IsFavorite(ctx context.Context, userID, listingID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, listingID)
	return args.Bool(0), args.Error(1)
}

func (m *FavoriteServiceMock) GetFavorites(ctx context.Context, userID uuid.UUID, page commonDto.PageRequest) ([]favoriteDto.FavoriteResponse, commonDto.PaginationMeta, error) {
	args := m.Called(ctx, userID, page)
	var list []favoriteDto.FavoriteResponse
	if val := args.Get(0); val != nil {
		list = val.([]favoriteDto.FavoriteResponse)
	}
	return list, args.Get(1).(commonDto.PaginationMeta), args.Error(2)
}

type MessageServiceMock struct {
	mock.Mock
}

func (m *MessageServiceMock) GetConversations(ctx context.Context, userID uuid.UUID) ([]messageDto.ConversationResponse, error) {
	args := m.Called(ctx, userID)
	var list []messageDto.ConversationResponse
	if val := args.Get(0); val != nil {
		list = val.([]messageDto.ConversationResponse)
	}
	return list, args.Error(1)
}

func (m *MessageServiceMock) GetOrCreateConversation(ctx context.Context, userID, otherID, listingID uuid.UUID) (*messageDto.ConversationDetailResponse, error) {
	args := m.Called(ctx, userID, otherID, listingID)
	var detail *messageDto.ConversationDetailResponse
	if val := args.Get(0); val != nil {
		detail = val.(*messageDto.ConversationDetailResponse)
	}
	return detail, args.Error(1)
}

func (m *MessageServiceMock) GetMessages(ctx context.Context, userID, conversationID uuid.UUID, page commonDto.PageRequest) ([]messageDto.MessageResponse, commonDto.PaginationMeta, error) {
	args := m.Called(ctx, userID, conversationID, page)
	var list []messageDto.MessageResponse
	if val := args.Get(0); val != nil {
		list = val.([]messageDto.MessageResponse)
	}
	return list, args.Get(1).(commonDto.PaginationMeta), args.Error(2)
}

func (m *MessageServiceMock) SendMessage(ctx context.Context, senderID uuid.UUID, req messageDto.SendMessageRequest) (*messageDto.MessageResponse, error) {
	args := m.Called(ctx, senderID, req)
	var resp *messageDto.MessageResponse
	if val := args.Get(0); val != nil {
		resp = val.(*messageDto.MessageResponse)
	}
	return resp, args.Error(1)
}

func (m *MessageServiceMock) MarkAsRead(ctx context.Context, userID, conversationID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID, conversationID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MessageServiceMock) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type AttachmentServiceMock struct {
	mock.Mock
}

func (m *AttachmentServiceMock) UploadImages(ctx context.Context, userID uuid.UUID, files []*multipart.FileHeader) ([]attachmentDto.AttachmentResponse, error) {
	args := m.Called(ctx, userID, files)
	var list []attachmentDto.AttachmentResponse
	if val := args.Get(0); val != nil {
		list = val.([]attachmentDto.AttachmentResponse)
	}
	return list, args.Error(1)
}

func (m *AttachmentServiceMock) DeleteImage(ctx context.Context, userID uuid.UUID, fileURL string) error {
	args := m.Called(ctx, userID, fileURL)
	return args.Error(0)
}

func (m *AttachmentServiceMock) CleanupOrphanAttachments(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type AuthServiceMock struct {
	mock.Mock
}

func (m *AuthServiceMock) Register(ctx context.Context, req userDto.RegisterRequest) (*userDto.AuthResponse, error) {
	args := m.Called(ctx, req)
	var resp *userDto.AuthResponse
	if val := args.Get(0); val != nil {
		resp = val.(*userDto.AuthResponse)
	}
	return resp, args.Error(1)
}

func (m *AuthServiceMock) Login(ctx context.Context, req userDto.LoginRequest) (*userDto.AuthResponse, error) {
	args := m.Called(ctx, req)
	var resp *userDto.AuthResponse
	if val := args.Get(0); val != nil {
		resp = val.(*userDto.AuthResponse)
	}
	return resp, args.Error(1)
}

func (m *AuthServiceMock) Me(ctx context.Context, userID uuid.UUID) (*userDto.UserResponse, error) {
	args := m.Called(ctx, userID)
	var resp *userDto.UserResponse
	if val := args.Get(0); val != nil {
		resp = val.(*userDto.UserResponse)
	}
	return resp, args.Error(1)
}
