package category_test

import (
	"context"
	"strings"
	"testing"

	"anoa.com/tradesphere/internal/entity"
	"anoa.com/tradesphere/internal/mocks"
	"anoa.com/tradesphere/internal/modules/category/dto"
	category "anoa.com/tradesphere/internal/modules/category/service"
	"anoa.com/tradesphere/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCreateCategory(t *testing.T) {
	ctx := context.Background()

	t.Run("derives slug and defaults", func(t *testing.T) {
		repo := new(mocks.CategoryRepositoryMock)
		svc := category.NewCategoryService(repo, nil)

		repo.On("FindByName", mock.Anything, "Home Garden").Return(nil, gorm.ErrRecordNotFound)
		repo.On("FindBySlug", mock.Anything, "home-garden").Return(nil, gorm.ErrRecordNotFound)
		repo.On("Create", mock.Anything, mock.MatchedBy(func(c *entity.Category) bool {
			return c.Slug == "home-garden" && c.ParentID == nil
		})).Return(nil)

		resp, err := svc.Create(ctx, dto.CreateCategoryRequest{Name: "  Home   Garden "})
		require.NoError(t, err)
		assert.Equal(t, "Home Garden", resp.Name)
		assert.Equal(t, "home-garden", resp.Slug)
		assert.Equal(t, "tag", resp.Icon)
		assert.NotEmpty(t, resp.Color)
	})

	t.Run("duplicate name conflicts", func(t *testing.T) {
		repo := new(mocks.CategoryRepositoryMock)
		svc := category.NewCategoryService(repo, nil)

		repo.On("FindByName", mock.Anything, "Toys").Return(&entity.Category{ID: uuid.New(), Name: "Toys", Slug: "toys"}, nil)

		_, err := svc.Create(ctx, dto.CreateCategoryRequest{Name: "Toys"})
		assert.ErrorIs(t, err, apperror.ErrConflict)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unknown parent is a validation error", func(t *testing.T) {
		repo := new(mocks.CategoryRepositoryMock)
		svc := category.NewCategoryService(repo, nil)
		parent := uuid.New()
		ref := parent.String()

		repo.On("FindByName", mock.Anything, "Drones").Return(nil, gorm.ErrRecordNotFound)
		repo.On("FindBySlug", mock.Anything, "drones").Return(nil, gorm.ErrRecordNotFound)
		repo.On("FindByID", mock.Anything, parent).Return(nil, gorm.ErrRecordNotFound)

		_, err := svc.Create(ctx, dto.CreateCategoryRequest{Name: "Drones", ParentID: &ref})
		var verr *apperror.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "parentId")
	})

	t.Run("blank name rejected", func(t *testing.T) {
		svc := category.NewCategoryService(new(mocks.CategoryRepositoryMock), nil)

		_, err := svc.Create(ctx, dto.CreateCategoryRequest{Name: "   "})
		var verr *apperror.ValidationError
		assert.ErrorAs(t, err, &verr)
	})
}

func TestResolveByIDOrSlug(t *testing.T) {
	repo := new(mocks.CategoryRepositoryMock)
	svc := category.NewCategoryService(repo, nil)
	cars := &entity.Category{ID: uuid.New(), Name: "Cars", Slug: "cars"}

	repo.On("FindByID", mock.Anything, cars.ID).Return(cars, nil)
	repo.On("FindBySlug", mock.Anything, "cars").Return(cars, nil)
	repo.On("FindBySlug", mock.Anything, "boats").Return(nil, gorm.ErrRecordNotFound)

	got, err := svc.Resolve(context.Background(), cars.ID.String())
	require.NoError(t, err)
	assert.Equal(t, cars.ID, got.ID)

	got, err = svc.Resolve(context.Background(), "CARS")
	require.NoError(t, err)
	assert.Equal(t, cars.ID, got.ID)

	_, err = svc.Resolve(context.Background(), "boats")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestGetIncludesParentFields(t *testing.T) {
	repo := new(mocks.CategoryRepositoryMock)
	svc := category.NewCategoryService(repo, nil)
	vehicles := &entity.Category{ID: uuid.New(), Name: "Vehicles", Slug: "vehicles"}
	cars := &entity.Category{ID: uuid.New(), Name: "Cars", Slug: "cars", ParentID: &vehicles.ID}

	repo.On("FindBySlug", mock.Anything, "cars").Return(cars, nil)
	repo.On("FindByID", mock.Anything, vehicles.ID).Return(vehicles, nil)

	detail, err := svc.Get(context.Background(), "cars")
	require.NoError(t, err)
	require.NotNil(t, detail.ParentCategory)
	assert.Equal(t, "vehicles", detail.ParentCategory.Slug)
	assert.NotEmpty(t, detail.Fields)
}

func TestUpdateCategoryParent(t *testing.T) {
	ctx := context.Background()
	self := &entity.Category{ID: uuid.New(), Name: "Drones", Slug: "drones"}

	parentErr := func(t *testing.T, err error) {
		t.Helper()
		var verr *apperror.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "parentId")
	}

	t.Run("own id is rejected", func(t *testing.T) {
		for _, ref := range []string{
			self.ID.String(),
			strings.ToUpper(self.ID.String()),
			"{" + self.ID.String() + "}",
			"urn:uuid:" + self.ID.String(),
		} {
			repo := new(mocks.CategoryRepositoryMock)
			svc := category.NewCategoryService(repo, nil)
			current := *self
			repo.On("FindByID", mock.Anything, self.ID).Return(&current, nil)

			_, err := svc.Update(ctx, self.ID, dto.UpdateCategoryRequest{ParentID: &ref})
			parentErr(t, err)
			assert.Nil(t, current.ParentID)
			repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		}
	})

	t.Run("missing parent is rejected", func(t *testing.T) {
		repo := new(mocks.CategoryRepositoryMock)
		svc := category.NewCategoryService(repo, nil)
		missing := uuid.New()
		ref := missing.String()
		current := *self
		repo.On("FindByID", mock.Anything, self.ID).Return(&current, nil)
		repo.On("FindByID", mock.Anything, missing).Return(nil, gorm.ErrRecordNotFound)

		_, err := svc.Update(ctx, self.ID, dto.UpdateCategoryRequest{ParentID: &ref})
		parentErr(t, err)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("subcategory cannot be a parent", func(t *testing.T) {
		repo := new(mocks.CategoryRepositoryMock)
		svc := category.NewCategoryService(repo, nil)
		top := uuid.New()
		sub := &entity.Category{ID: uuid.New(), Name: "Cars", Slug: "cars", ParentID: &top}
		ref := sub.ID.String()
		current := *self
		repo.On("FindByID", mock.Anything, self.ID).Return(&current, nil)
		repo.On("FindByID", mock.Anything, sub.ID).Return(sub, nil)

		_, err := svc.Update(ctx, self.ID, dto.UpdateCategoryRequest{ParentID: &ref})
		parentErr(t, err)
	})

	t.Run("category with listings stays put", func(t *testing.T) {
		repo := new(mocks.CategoryRepositoryMock)
		svc := category.NewCategoryService(repo, nil)
		parent := &entity.Category{ID: uuid.New(), Name: "Electronics", Slug: "electronics"}
		ref := parent.ID.String()
		current := *self
		repo.On("FindByID", mock.Anything, self.ID).Return(&current, nil)
		repo.On("FindByID", mock.Anything, parent.ID).Return(parent, nil)
		repo.On("CountChildren", mock.Anything, self.ID).Return(int64(0), nil)
		repo.On("CountListings", mock.Anything, self.ID).Return(int64(3), nil)

		_, err := svc.Update(ctx, self.ID, dto.UpdateCategoryRequest{ParentID: &ref})
		assert.ErrorIs(t, err, apperror.ErrConflict)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("category with subcategories cannot be nested", func(t *testing.T) {
		repo := new(mocks.CategoryRepositoryMock)
		svc := category.NewCategoryService(repo, nil)
		parent := &entity.Category{ID: uuid.New(), Name: "Electronics", Slug: "electronics"}
		ref := parent.ID.String()
		current := *self
		repo.On("FindByID", mock.Anything, self.ID).Return(&current, nil)
		repo.On("FindByID", mock.Anything, parent.ID).Return(parent, nil)
		repo.On("CountChildren", mock.Anything, self.ID).Return(int64(1), nil)

		_, err := svc.Update(ctx, self.ID, dto.UpdateCategoryRequest{ParentID: &ref})
		assert.ErrorIs(t, err, apperror.ErrConflict)
	})

	t.Run("empty category moves under a top-level parent", func(t *testing.T) {
		repo := new(mocks.CategoryRepositoryMock)
		svc := category.NewCategoryService(repo, nil)
		parent := &entity.Category{ID: uuid.New(), Name: "Electronics", Slug: "electronics"}
		ref := parent.ID.String()
		current := *self
		repo.On("FindByID", mock.Anything, self.ID).Return(&current, nil)
		repo.On("FindByID", mock.Anything, parent.ID).Return(parent, nil)
		repo.On("CountChildren", mock.Anything, self.ID).Return(int64(0), nil)
		repo.On("CountListings", mock.Anything, self.ID).Return(int64(0), nil)
		repo.On("Update", mock.Anything, &current).Return(nil)

		resp, err := svc.Update(ctx, self.ID, dto.UpdateCategoryRequest{ParentID: &ref})
		require.NoError(t, err)
		require.NotNil(t, resp.ParentID)
		assert.Equal(t, parent.ID, *resp.ParentID)
	})
}

func TestUpdateCategoryRename(t *testing.T) {
	ctx := context.Background()

	t.Run("collision conflicts", func(t *testing.T) {
		repo := new(mocks.CategoryRepositoryMock)
		svc := category.NewCategoryService(repo, nil)
		current := &entity.Category{ID: uuid.New(), Name: "Gadgets", Slug: "gadgets"}
		other := &entity.Category{ID: uuid.New(), Name: "Toys", Slug: "toys"}
		repo.On("FindByID", mock.Anything, current.ID).Return(current, nil)
		repo.On("FindByName", mock.Anything, "Toys").Return(other, nil)

		name := "Toys"
		_, err := svc.Update(ctx, current.ID, dto.UpdateCategoryRequest{Name: &name})
		assert.ErrorIs(t, err, apperror.ErrConflict)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("rename re-derives slug", func(t *testing.T) {
		repo := new(mocks.CategoryRepositoryMock)
		svc := category.NewCategoryService(repo, nil)
		current := &entity.Category{ID: uuid.New(), Name: "Gadgets", Slug: "gadgets"}
		repo.On("FindByID", mock.Anything, current.ID).Return(current, nil)
		repo.On("FindByName", mock.Anything, "Smart Home").Return(nil, gorm.ErrRecordNotFound)
		repo.On("FindBySlug", mock.Anything, "smart-home").Return(nil, gorm.ErrRecordNotFound)
		repo.On("Update", mock.Anything, current).Return(nil)

		name := "Smart Home"
		resp, err := svc.Update(ctx, current.ID, dto.UpdateCategoryRequest{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "smart-home", resp.Slug)
	})
}

func TestDeleteCategory(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("blocked by subcategories", func(t *testing.T) {
		repo := new(mocks.CategoryRepositoryMock)
		svc := category.NewCategoryService(repo, nil)
		repo.On("FindByID", mock.Anything, id).Return(&entity.Category{ID: id}, nil)
		repo.On("CountChildren", mock.Anything, id).Return(int64(2), nil)

		assert.ErrorIs(t, svc.Delete(ctx, id), apperror.ErrConflict)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("blocked by listings", func(t *testing.T) {
		repo := new(mocks.CategoryRepositoryMock)
		svc := category.NewCategoryService(repo, nil)
		repo.On("FindByID", mock.Anything, id).Return(&entity.Category{ID: id}, nil)
		repo.On("CountChildren", mock.Anything, id).Return(int64(0), nil)
		repo.On("CountListings", mock.Anything, id).Return(int64(5), nil)

		assert.ErrorIs(t, svc.Delete(ctx, id), apperror.ErrConflict)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("unused category is removed", func(t *testing.T) {
		repo := new(mocks.CategoryRepositoryMock)
		svc := category.NewCategoryService(repo, nil)
		repo.On("FindByID", mock.Anything, id).Return(&entity.Category{ID: id}, nil)
		repo.On("CountChildren", mock.Anything, id).Return(int64(0), nil)
		repo.On("CountListings", mock.Anything, id).Return(int64(0), nil)
		repo.On("Delete", mock.Anything, id).Return(nil)

		require.NoError(t, svc.Delete(ctx, id))
		repo.AssertExpectations(t)
	})

	t.Run("missing category", func(t *testing.T) {
		repo := new(mocks.CategoryRepositoryMock)
		svc := category.NewCategoryService(repo, nil)
		repo.On("FindByID", mock.Anything, id).Return(nil, gorm.ErrRecordNotFound)

		assert.ErrorIs(t, svc.Delete(ctx, id), apperror.ErrNotFound)
	})
}

func TestInitializeSeedsOnce(t *testing.T) {
	ctx := context.Background()

	empty := new(mocks.CategoryRepositoryMock)
	empty.On("FindBySlug", mock.Anything, mock.Anything).Return(nil, gorm.ErrRecordNotFound)
	empty.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*entity.Category).ID = uuid.New()
	}).Return(nil)

	created, err := category.NewCategoryService(empty, nil).Initialize(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(category.DefaultCategories), created)

	seeded := new(mocks.CategoryRepositoryMock)
	seeded.On("FindBySlug", mock.Anything, mock.Anything).Return(&entity.Category{ID: uuid.New(), Slug: "existing"}, nil)

	created, err = category.NewCategoryService(seeded, nil).Initialize(ctx)
	require.NoError(t, err)
	assert.Zero(t, created)
	seeded.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
