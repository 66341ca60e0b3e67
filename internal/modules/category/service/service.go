package category

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"anoa.com/tradesphere/internal/entity"
	"anoa.com/tradesphere/internal/modules/category/dto"
	"anoa.com/tradesphere/internal/modules/category/repository"
	"anoa.com/tradesphere/internal/modules/listing/specs"
	"anoa.com/tradesphere/pkg/apperror"
	"anoa.com/tradesphere/pkg/slug"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	treeCacheTTL    = 10 * time.Minute
	maxNameLength   = 50
	treeCachePrefix = "categories:tree:"
)

type CategoryService interface {
	List(ctx context.Context, parentOnly bool) ([]dto.CategoryResponse, error)
	Get(ctx context.Context, idOrSlug string) (*dto.CategoryDetailResponse, error)
	// Resolve looks a category up by id, or by slug when ref is not id-shaped.
	Resolve(ctx context.Context, ref string) (*entity.Category, error)
	Create(ctx context.Context, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateCategoryRequest) (*dto.CategoryResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Initialize(ctx context.Context) (int, error)
}

type categoryService struct {
	repo        repository.CategoryRepository
	redisClient *redis.Client
	schema      specs.Schema
}

func NewCategoryService(repo repository.CategoryRepository, redisClient *redis.Client) CategoryService {
	return &categoryService{
		repo:        repo,
		redisClient: redisClient,
		schema:      specs.Default,
	}
}

func (s *categoryService) List(ctx context.Context, parentOnly bool) ([]dto.CategoryResponse, error) {
	key := fmt.Sprintf("%s%t", treeCachePrefix, parentOnly)

	if s.redisClient != nil {
		cached, err := s.redisClient.Get(ctx, key).Bytes()
		if err == nil {
			var out []dto.CategoryResponse
			if err := json.Unmarshal(cached, &out); err == nil {
				return out, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			log.Printf("category cache read failed: %v", err)
		}
	}

	categories, err := s.repo.FindAll(ctx, parentOnly)
	if err != nil {
		return nil, err
	}

	out := make([]dto.CategoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, dto.NewCategoryResponse(c))
	}

	if s.redisClient != nil {
		if payload, err := json.Marshal(out); err == nil {
			if err := s.redisClient.Set(ctx, key, payload, treeCacheTTL).Err(); err != nil {
				log.Printf("category cache write failed: %v", err)
			}
		}
	}

	return out, nil
}

func (s *categoryService) invalidate(ctx context.Context) {
	if s.redisClient == nil {
		return
	}
	if err := s.redisClient.Del(ctx, treeCachePrefix+"true", treeCachePrefix+"false").Err(); err != nil {
		log.Printf("category cache invalidation failed: %v", err)
	}
}

func (s *categoryService) Resolve(ctx context.Context, ref string) (*entity.Category, error) {
	var (
		category *entity.Category
		err      error
	)
	if id, parseErr := uuid.Parse(ref); parseErr == nil {
		category, err = s.repo.FindByID(ctx, id)
	} else {
		category, err = s.repo.FindBySlug(ctx, strings.ToLower(ref))
	}

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("category not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return category, nil
}

func (s *categoryService) Get(ctx context.Context, idOrSlug string) (*dto.CategoryDetailResponse, error) {
	category, err := s.Resolve(ctx, idOrSlug)
	if err != nil {
		return nil, err
	}

	resp := &dto.CategoryDetailResponse{Category: dto.NewCategoryResponse(category)}
	slugs := []string{category.Slug}

	if category.ParentID != nil {
		parent, err := s.repo.FindByID(ctx, *category.ParentID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if parent != nil {
			p := dto.NewCategoryResponse(parent)
			resp.ParentCategory = &p
			slugs = append(slugs, parent.Slug)
		}
	}

	resp.Fields = s.schema.Fields(slugs...)
	return resp, nil
}

func normalizeName(name string) (string, error) {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return "", apperror.NewValidationError("name", "name is required")
	}
	if len([]rune(name)) > maxNameLength {
		return "", apperror.NewValidationError("name", fmt.Sprintf("name must be at most %d characters", maxNameLength))
	}
	if slug.Make(name) == "" {
		return "", apperror.NewValidationError("name", "name must contain letters or digits")
	}
	return name, nil
}

// ensureUnique rejects a name or derived slug already used by another category.
func (s *categoryService) ensureUnique(ctx context.Context, name string, self uuid.UUID) error {
	if existing, err := s.repo.FindByName(ctx, name); err == nil && existing.ID != self {
		return fmt.Errorf("category %q already exists: %w", name, apperror.ErrConflict)
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if existing, err := s.repo.FindBySlug(ctx, slug.Make(name)); err == nil && existing.ID != self {
		return fmt.Errorf("category slug %q already exists: %w", existing.Slug, apperror.ErrConflict)
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}

// parentFromRef resolves raw to an existing top-level category other than self.
func (s *categoryService) parentFromRef(ctx context.Context, raw string, self uuid.UUID) (*uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperror.NewValidationError("parentId", "must be a valid category id")
	}
	if id == self {
		return nil, apperror.NewValidationError("parentId", "a category cannot be its own parent")
	}
	parent, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewValidationError("parentId", "parent category does not exist")
		}
		return nil, err
	}
	if parent.ParentID != nil {
		return nil, apperror.NewValidationError("parentId", "parent must be a top-level category")
	}
	return &id, nil
}

// ensureMovable refuses to change the parent of a category that still has
// subcategories or listings filed under its current position.
func (s *categoryService) ensureMovable(ctx context.Context, id uuid.UUID) error {
	children, err := s.repo.CountChildren(ctx, id)
	if err != nil {
		return err
	}
	if children > 0 {
		return fmt.Errorf("category has %d subcategories and cannot be moved: %w", children, apperror.ErrConflict)
	}
	listings, err := s.repo.CountListings(ctx, id)
	if err != nil {
		return err
	}
	if listings > 0 {
		return fmt.Errorf("category is used by %d listings and cannot be moved: %w", listings, apperror.ErrConflict)
	}
	return nil
}

func (s *categoryService) Create(ctx context.Context, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	name, err := normalizeName(req.Name)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, name, uuid.Nil); err != nil {
		return nil, err
	}

	category := &entity.Category{
		Name:        name,
		Slug:        slug.Make(name),
		Description: strings.TrimSpace(req.Description),
		Icon:        req.Icon,
		Color:       req.Color,
		Image:       req.Image,
	}
	if category.Icon == "" {
		category.Icon = "tag"
	}
	if category.Color == "" {
		category.Color = "from-blue-500 to-blue-600"
	}

	if req.ParentID != nil {
		parentID, err := s.parentFromRef(ctx, *req.ParentID, uuid.Nil)
		if err != nil {
			return nil, err
		}
		category.ParentID = parentID
	}

	if err := s.repo.Create(ctx, category); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("category %q already exists: %w", name, apperror.ErrConflict)
		}
		return nil, err
	}
	s.invalidate(ctx)

	resp := dto.NewCategoryResponse(category)
	return &resp, nil
}

func (s *categoryService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateCategoryRequest) (*dto.CategoryResponse, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("category not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	if req.Name != nil {
		name, err := normalizeName(*req.Name)
		if err != nil {
			return nil, err
		}
		if name != category.Name {
			if err := s.ensureUnique(ctx, name, category.ID); err != nil {
				return nil, err
			}
			category.Name = name
			category.Slug = slug.Make(name)
		}
	}
	if req.Description != nil {
		category.Description = strings.TrimSpace(*req.Description)
	}
	if req.Icon != nil {
		category.Icon = *req.Icon
	}
	if req.Color != nil {
		category.Color = *req.Color
	}
	if req.Image != nil {
		category.Image = req.Image
	}

	newParent := category.ParentID
	switch {
	case req.ClearParent:
		newParent = nil
	case req.ParentID != nil:
		parentID, err := s.parentFromRef(ctx, *req.ParentID, category.ID)
		if err != nil {
			return nil, err
		}
		newParent = parentID
	}
	if !sameParent(category.ParentID, newParent) {
		if err := s.ensureMovable(ctx, category.ID); err != nil {
			return nil, err
		}
		category.ParentID = newParent
	}

	if err := s.repo.Update(ctx, category); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("category %q already exists: %w", category.Name, apperror.ErrConflict)
		}
		return nil, err
	}
	s.invalidate(ctx)

	resp := dto.NewCategoryResponse(category)
	return &resp, nil
}

func sameParent(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Delete refuses while subcategories or listings still point at the category.
func (s *categoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("category not found: %w", apperror.ErrNotFound)
		}
		return err
	}

	children, err := s.repo.CountChildren(ctx, id)
	if err != nil {
		return err
	}
	if children > 0 {
		return fmt.Errorf("category has %d subcategories, delete or move them first: %w", children, apperror.ErrConflict)
	}

	listings, err := s.repo.CountListings(ctx, id)
	if err != nil {
		return err
	}
	if listings > 0 {
		return fmt.Errorf("category is used by %d listings: %w", listings, apperror.ErrConflict)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// Initialize creates any missing default categories and returns how many
// were added. Running it twice adds nothing.
func (s *categoryService) Initialize(ctx context.Context) (int, error) {
	created := 0
	bySlug := make(map[string]uuid.UUID)

	for _, def := range DefaultCategories {
		existing, err := s.repo.FindBySlug(ctx, slug.Make(def.Name))
		if err == nil {
			bySlug[existing.Slug] = existing.ID
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return created, err
		}

		category := &entity.Category{
			Name:        def.Name,
			Slug:        slug.Make(def.Name),
			Description: def.Description,
			Icon:        def.Icon,
			Color:       def.Color,
		}
		if def.ParentSlug != "" {
			parentID, ok := bySlug[def.ParentSlug]
			if !ok {
				log.Printf("skipping %s: parent %s not seeded", def.Name, def.ParentSlug)
				continue
			}
			category.ParentID = &parentID
		}

		if err := s.repo.Create(ctx, category); err != nil {
			return created, err
		}
		bySlug[category.Slug] = category.ID
		created++
	}

	if created > 0 {
		s.invalidate(ctx)
	}
	return created, nil
}
