package favorite_test

import (
	"context"
	"testing"

	"anoa.com/tradesphere/internal/entity"
	"anoa.com/tradesphere/internal/mocks"
	favorite "anoa.com/tradesphere/internal/modules/favorite/service"
	"anoa.com/tradesphere/pkg/apperror"
	commonDto "anoa.com/tradesphere/pkg/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setup() (*mocks.FavoriteRepositoryMock, *mocks.ListingRepositoryMock, favorite.FavoriteService) {
	favorites := new(mocks.FavoriteRepositoryMock)
	listings := new(mocks.ListingRepositoryMock)
	return favorites, listings, favorite.NewFavoriteService(favorites, listings)
}

func TestAddFavoriteTwiceConflicts(t *testing.T) {
	favorites, listings, svc := setup()
	userID := uuid.New()
	l := &entity.Listing{ID: uuid.New(), Title: "Bike", Slug: "bike-abcde"}

	listings.On("FindByID", mock.Anything, l.ID).Return(l, nil).Twice()
	favorites.On("Create", mock.Anything, mock.AnythingOfType("*entity.Favorite")).Return(nil).Once()
	favorites.On("Create", mock.Anything, mock.AnythingOfType("*entity.Favorite")).Return(gorm.ErrDuplicatedKey).Once()

	created, err := svc.AddFavorite(context.Background(), userID, l.ID)
	require.NoError(t, err)
	assert.Equal(t, l.ID, created.ListingID)
	require.NotNil(t, created.Listing)
	assert.Equal(t, "bike-abcde", created.Listing.Slug)

	_, err = svc.AddFavorite(context.Background(), userID, l.ID)
	require.ErrorIs(t, err, apperror.ErrConflict)
	favorites.AssertExpectations(t)
}

func TestAddFavoriteMissingListing(t *testing.T) {
	favorites, listings, svc := setup()
	id := uuid.New()

	listings.On("FindByID", mock.Anything, id).Return(nil, gorm.ErrRecordNotFound).Once()

	_, err := svc.AddFavorite(context.Background(), uuid.New(), id)
	require.ErrorIs(t, err, apperror.ErrNotFound)
	favorites.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRemoveFavorite(t *testing.T) {
	favorites, _, svc := setup()
	userID, listingID := uuid.New(), uuid.New()

	favorites.On("Delete", mock.Anything, userID, listingID).Return(int64(1), nil).Once()
	favorites.On("Delete", mock.Anything, userID, listingID).Return(int64(0), nil).Once()

	require.NoError(t, svc.RemoveFavorite(context.Background(), userID, listingID))
	require.ErrorIs(t, svc.RemoveFavorite(context.Background(), userID, listingID), apperror.ErrNotFound)
}

func TestIsFavoriteNoErrorOnAbsence(t *testing.T) {
	favorites, _, svc := setup()
	userID, listingID := uuid.New(), uuid.New()

	favorites.On("Exists", mock.Anything, userID, listingID).Return(false, nil).Once()

	ok, err := svc.IsFavorite(context.Background(), userID, listingID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetFavoritesPaginates(t *testing.T) {
	favorites, _, svc := setup()
	userID := uuid.New()
	owner := entity.User{ID: uuid.New(), Name: "Seller"}

	rows := []*entity.Favorite{
		{ID: uuid.New(), UserID: userID, ListingID: uuid.New(), Listing: entity.Listing{ID: uuid.New(), Title: "Desk", User: owner}},
	}
	favorites.On("FindByUser", mock.Anything, userID, 10, 10).Return(rows, int64(11), nil).Once()

	list, meta, err := svc.GetFavorites(context.Background(), userID, commonDto.PageRequest{Page: 2, Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Seller", list[0].Listing.Owner.Name)
	assert.Equal(t, commonDto.PaginationMeta{Total: 11, Pages: 2, Page: 2, Limit: 10}, meta)
}
