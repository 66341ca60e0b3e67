package listing

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"strings"
	"time"

	"anoa.com/tradesphere/internal/entity"
	category "anoa.com/tradesphere/internal/modules/category/service"
	"anoa.com/tradesphere/internal/modules/listing/dto"
	"anoa.com/tradesphere/internal/modules/listing/query"
	repo "anoa.com/tradesphere/internal/modules/listing/repository"
	"anoa.com/tradesphere/internal/modules/listing/specs"
	search "anoa.com/tradesphere/internal/modules/search/service"
	userRepo "anoa.com/tradesphere/internal/modules/user/repository"
	"anoa.com/tradesphere/pkg/apperror"
	commonDto "anoa.com/tradesphere/pkg/dto"
	"anoa.com/tradesphere/pkg/ratelimiter"
	"anoa.com/tradesphere/pkg/slug"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"
)

const (
	relatedLimit      = 4
	ownerListingLimit = 3
	homeLimit         = 8
	slugAttempts      = 3
	minDescription    = 20

	actionCreateListing = "create_listing"
)

type Service interface {
	GetListings(ctx context.Context, callerID *uuid.UUID, params query.Params) (*dto.PaginatedListingResponse, error)
	GetFeatured(ctx context.Context, params query.Params) (*dto.PaginatedListingResponse, error)
	GetRecent(ctx context.Context, params query.Params) (*dto.PaginatedListingResponse, error)
	GetListingsByUser(ctx context.Context, callerID *uuid.UUID, ownerID uuid.UUID, params query.Params) (*dto.PaginatedListingResponse, error)
	// GetListing resolves by id or slug and counts exactly one view.
	GetListing(ctx context.Context, idOrSlug string) (*dto.ListingDetailResponse, error)
	CreateListing(ctx context.Context, userID uuid.UUID, req dto.CreateListingRequest) (*dto.ListingResponse, error)
	UpdateListing(ctx context.Context, userID, listingID uuid.UUID, req dto.UpdateListingRequest) (*dto.ListingResponse, error)
	DeleteListing(ctx context.Context, userID, listingID uuid.UUID) error
	MarkSold(ctx context.Context, userID, listingID uuid.UUID) (*dto.ListingResponse, error)
	ToggleFeatured(ctx context.Context, listingID uuid.UUID) (*dto.ListingResponse, error)
	ExpireListings(ctx context.Context) (int, error)
}

type Config struct {
	CreateCooldown time.Duration
}

type service struct {
	listingRepo repo.Repository
	userRepo    userRepo.UserRepository
	categories  category.CategoryService
	limiter     *ratelimiter.Limiter
	meili       search.MeiliSearchService
	sanitizer   *bluemonday.Policy
	schema      specs.Schema
	cfg         Config
}

func NewService(listingRepo repo.Repository, userRepo userRepo.UserRepository, categories category.CategoryService, limiter *ratelimiter.Limiter, meili search.MeiliSearchService, cfg Config) Service {
	return &service{
		listingRepo: listingRepo,
		userRepo:    userRepo,
		categories:  categories,
		limiter:     limiter,
		meili:       meili,
		sanitizer:   bluemonday.StrictPolicy(),
		schema:      specs.Default,
		cfg:         cfg,
	}
}

func (s *service) caller(ctx context.Context, userID *uuid.UUID) (query.Caller, error) {
	if userID == nil {
		return query.Caller{}, nil
	}
	user, err := s.userRepo.FindByID(ctx, *userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return query.Caller{}, fmt.Errorf("user not found: %w", apperror.ErrUnauthorized)
		}
		return query.Caller{}, err
	}
	return query.Caller{UserID: userID, IsAdmin: user.IsAdmin()}, nil
}

func (s *service) run(ctx context.Context, caller query.Caller, params query.Params, opts query.Options) (*dto.PaginatedListingResponse, error) {
	q, err := query.Build(params, caller, opts)
	if err != nil {
		return nil, err
	}

	empty := &dto.PaginatedListingResponse{
		Data:       []dto.ListingResponse{},
		Pagination: commonDto.NewPaginationMeta(0, q.Page, q.Limit),
	}

	for _, ref := range []string{q.CategoryRef, q.SubcategoryRef} {
		if ref == "" {
			continue
		}
		cat, err := s.categories.Resolve(ctx, ref)
		if err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				return empty, nil
			}
			return nil, err
		}
		q.FilterCategory(cat.ID, !cat.IsTopLevel())
	}

	listings, total, err := s.listingRepo.FindAll(ctx, q)
	if err != nil {
		return nil, err
	}

	return &dto.PaginatedListingResponse{
		Data:       dto.NewListingResponses(listings),
		Pagination: commonDto.NewPaginationMeta(total, q.Page, q.Limit),
	}, nil
}

func (s *service) GetListings(ctx context.Context, callerID *uuid.UUID, params query.Params) (*dto.PaginatedListingResponse, error) {
	caller, err := s.caller(ctx, callerID)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, caller, params, query.Options{DefaultStatus: entity.ListingStatusActive})
}

func (s *service) GetFeatured(ctx context.Context, params query.Params) (*dto.PaginatedListingResponse, error) {
	return s.run(ctx, query.Caller{}, query.Params{
		Featured: "true",
		Page:     params.Page,
		Limit:    params.Limit,
	}, query.Options{DefaultLimit: homeLimit, DefaultStatus: entity.ListingStatusActive})
}

func (s *service) GetRecent(ctx context.Context, params query.Params) (*dto.PaginatedListingResponse, error) {
	return s.run(ctx, query.Caller{}, query.Params{
		Sort:  "newest",
		Page:  params.Page,
		Limit: params.Limit,
	}, query.Options{DefaultLimit: homeLimit, DefaultStatus: entity.ListingStatusActive})
}

// GetListingsByUser shows every status to the owner (and admins) and only
// active listings to everyone else, unless a status is asked for.
func (s *service) GetListingsByUser(ctx context.Context, callerID *uuid.UUID, ownerID uuid.UUID, params query.Params) (*dto.PaginatedListingResponse, error) {
	caller, err := s.caller(ctx, callerID)
	if err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByID(ctx, ownerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	opts := query.Options{Owner: &ownerID, DefaultStatus: entity.ListingStatusActive}
	if caller.IsAdmin || (caller.UserID != nil && *caller.UserID == ownerID) {
		opts.DefaultStatus = ""
	}
	return s.run(ctx, caller, params, opts)
}

func (s *service) find(ctx context.Context, idOrSlug string) (*entity.Listing, error) {
	var (
		listing *entity.Listing
		err     error
	)
	if id, parseErr := uuid.Parse(idOrSlug); parseErr == nil {
		listing, err = s.listingRepo.FindByID(ctx, id)
	} else {
		listing, err = s.listingRepo.FindBySlug(ctx, idOrSlug)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("listing not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return listing, nil
}

func (s *service) GetListing(ctx context.Context, idOrSlug string) (*dto.ListingDetailResponse, error) {
	listing, err := s.find(ctx, idOrSlug)
	if err != nil {
		return nil, err
	}

	if err := s.listingRepo.IncrementViews(ctx, listing.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("listing not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	listing.Views++

	related, err := s.listingRepo.FindRelated(ctx, listing, relatedLimit)
	if err != nil {
		return nil, err
	}
	others, err := s.listingRepo.FindOtherByOwner(ctx, listing.UserID, listing.ID, ownerListingLimit)
	if err != nil {
		return nil, err
	}

	return &dto.ListingDetailResponse{
		Listing:         dto.NewListingResponse(listing),
		RelatedListings: dto.NewListingResponses(related),
		OwnerListings:   dto.NewListingResponses(others),
	}, nil
}

// cleanDescription strips markup and collapses runs of blank space inside
// lines while keeping paragraph breaks.
func (s *service) cleanDescription(raw string) (string, error) {
	text := html.UnescapeString(s.sanitizer.Sanitize(raw))
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	text = strings.TrimSpace(strings.Join(lines, "\n"))

	if len([]rune(text)) < minDescription {
		return "", apperror.NewValidationError("description", fmt.Sprintf("description must be at least %d characters of text", minDescription))
	}
	return text, nil
}

// resolveCategories returns the top-level category and optional
// subcategory. A subcategory passed as the category is split into both.
func (s *service) resolveCategories(ctx context.Context, categoryRef, subcategoryRef string) (*entity.Category, *entity.Category, error) {
	cat, err := s.categories.Resolve(ctx, categoryRef)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, nil, apperror.NewValidationError("category", "category does not exist")
		}
		return nil, nil, err
	}

	var sub *entity.Category
	if !cat.IsTopLevel() {
		sub = cat
		cat, err = s.categories.Resolve(ctx, cat.ParentID.String())
		if err != nil {
			return nil, nil, err
		}
	}

	if subcategoryRef != "" {
		found, err := s.categories.Resolve(ctx, subcategoryRef)
		if err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				return nil, nil, apperror.NewValidationError("subcategory", "subcategory does not exist")
			}
			return nil, nil, err
		}
		if sub != nil && sub.ID != found.ID {
			return nil, nil, apperror.NewValidationError("subcategory", "conflicts with the category given")
		}
		sub = found
	}

	if sub != nil && (sub.ParentID == nil || *sub.ParentID != cat.ID) {
		return nil, nil, apperror.NewValidationError("subcategory", "subcategory does not belong to the selected category")
	}

	return cat, sub, nil
}

func (s *service) validateSpecs(cat, sub *entity.Category, values entity.Specifications) error {
	slugs := []string{cat.Slug}
	if sub != nil {
		slugs = []string{sub.Slug, cat.Slug}
	}
	return specs.Validate(s.schema.Fields(slugs...), values)
}

func trimSpecs(in map[string]string) entity.Specifications {
	out := make(entity.Specifications, len(in))
	for k, v := range in {
		k = strings.TrimSpace(k)
		v = strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		out[k] = v
	}
	return out
}

func (s *service) CreateListing(ctx context.Context, userID uuid.UUID, req dto.CreateListingRequest) (*dto.ListingResponse, error) {
	release, err := s.limiter.Acquire(ctx, userID, actionCreateListing, s.cfg.CreateCooldown)
	if err != nil {
		return nil, err
	}
	creationFailed := true
	defer func() {
		if creationFailed {
			release()
		}
	}()

	owner, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found: %w", apperror.ErrUnauthorized)
		}
		return nil, err
	}

	cat, sub, err := s.resolveCategories(ctx, req.Category, strings.TrimSpace(req.Subcategory))
	if err != nil {
		return nil, err
	}

	description, err := s.cleanDescription(req.Description)
	if err != nil {
		return nil, err
	}

	specValues := trimSpecs(req.Specifications)
	if err := s.validateSpecs(cat, sub, specValues); err != nil {
		return nil, err
	}

	listing := &entity.Listing{
		Title:          strings.TrimSpace(req.Title),
		Description:    description,
		Price:          *req.Price,
		PriceType:      req.PriceType,
		Condition:      req.Condition,
		Status:         req.Status,
		Images:         req.Images,
		CategoryID:     cat.ID,
		Location:       strings.TrimSpace(req.Location),
		Specifications: entity.NewSpecifications(specValues),
		UserID:         owner.ID,
	}
	if listing.PriceType == entity.PriceTypeFree {
		listing.Price = 0
	}
	if sub != nil {
		listing.SubcategoryID = &sub.ID
	}

	for attempt := 0; ; attempt++ {
		listing.Slug = slug.WithSuffix(listing.Title, 5)
		err = s.listingRepo.Create(ctx, listing)
		if err == nil || !errors.Is(err, gorm.ErrDuplicatedKey) || attempt+1 >= slugAttempts {
			break
		}
		listing.ID = uuid.Nil
	}
	if err != nil {
		return nil, err
	}

	creationFailed = false

	listing.Category = *cat
	listing.Subcategory = sub
	listing.User = *owner
	s.index(listing)

	resp := dto.NewListingResponse(listing)
	return &resp, nil
}

func (s *service) authorize(ctx context.Context, userID uuid.UUID, listing *entity.Listing) (*entity.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found: %w", apperror.ErrUnauthorized)
		}
		return nil, err
	}
	if !listing.OwnedBy(userID) && !user.IsAdmin() {
		return nil, fmt.Errorf("not the owner of this listing: %w", apperror.ErrForbidden)
	}
	return user, nil
}

func (s *service) UpdateListing(ctx context.Context, userID, listingID uuid.UUID, req dto.UpdateListingRequest) (*dto.ListingResponse, error) {
	listing, err := s.find(ctx, listingID.String())
	if err != nil {
		return nil, err
	}
	user, err := s.authorize(ctx, userID, listing)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		listing.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		description, err := s.cleanDescription(*req.Description)
		if err != nil {
			return nil, err
		}
		listing.Description = description
	}
	if req.Price != nil {
		listing.Price = *req.Price
	}
	if req.PriceType != nil {
		listing.PriceType = *req.PriceType
	}
	if listing.PriceType == entity.PriceTypeFree {
		listing.Price = 0
	}
	if req.Condition != nil {
		listing.Condition = *req.Condition
	}
	if req.Images != nil {
		listing.Images = req.Images
	}
	if req.Location != nil {
		listing.Location = strings.TrimSpace(*req.Location)
	}

	if req.Status != nil && *req.Status != listing.Status {
		next := *req.Status
		switch next {
		case entity.ListingStatusPending, entity.ListingStatusExpired:
			if !user.IsAdmin() {
				return nil, fmt.Errorf("only admins can set status %q: %w", next, apperror.ErrForbidden)
			}
		case entity.ListingStatusActive:
			// reactivating restarts the listing lifetime
			listing.ExpiresAt = time.Now().Add(entity.ListingLifetime)
		}
		listing.Status = next
	}

	categoryRef := listing.CategoryID.String()
	if req.Category != nil {
		categoryRef = strings.TrimSpace(*req.Category)
	}
	subRef := ""
	if listing.SubcategoryID != nil {
		subRef = listing.SubcategoryID.String()
	}
	if req.Subcategory != nil {
		subRef = strings.TrimSpace(*req.Subcategory)
	} else if req.Category != nil {
		subRef = ""
	}

	cat, sub, err := s.resolveCategories(ctx, categoryRef, subRef)
	if err != nil {
		return nil, err
	}
	listing.CategoryID = cat.ID
	listing.Category = *cat
	listing.SubcategoryID = nil
	listing.Subcategory = sub
	if sub != nil {
		listing.SubcategoryID = &sub.ID
	}

	specValues := listing.Specifications.Data()
	if req.Specifications != nil {
		specValues = trimSpecs(*req.Specifications)
	}
	if err := s.validateSpecs(cat, sub, specValues); err != nil {
		return nil, err
	}
	listing.Specifications = entity.NewSpecifications(specValues)

	if err := s.listingRepo.Update(ctx, listing); err != nil {
		return nil, err
	}

	s.index(listing)

	resp := dto.NewListingResponse(listing)
	return &resp, nil
}

func (s *service) DeleteListing(ctx context.Context, userID, listingID uuid.UUID) error {
	listing, err := s.find(ctx, listingID.String())
	if err != nil {
		return err
	}
	if _, err := s.authorize(ctx, userID, listing); err != nil {
		return err
	}

	if err := s.listingRepo.Delete(ctx, listing.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("listing not found: %w", apperror.ErrNotFound)
		}
		return err
	}

	if s.meili != nil {
		if err := s.meili.DeleteListing(listing.ID); err != nil {
			log.Printf("Failed to remove listing %s from search index: %v", listing.ID, err)
		}
	}
	return nil
}

func (s *service) MarkSold(ctx context.Context, userID, listingID uuid.UUID) (*dto.ListingResponse, error) {
	listing, err := s.find(ctx, listingID.String())
	if err != nil {
		return nil, err
	}
	if !listing.OwnedBy(userID) {
		return nil, fmt.Errorf("only the owner can mark a listing as sold: %w", apperror.ErrForbidden)
	}
	if listing.Status == entity.ListingStatusSold {
		resp := dto.NewListingResponse(listing)
		return &resp, nil
	}

	listing.Status = entity.ListingStatusSold
	if err := s.listingRepo.Update(ctx, listing); err != nil {
		return nil, err
	}
	s.index(listing)

	resp := dto.NewListingResponse(listing)
	return &resp, nil
}

func (s *service) ToggleFeatured(ctx context.Context, listingID uuid.UUID) (*dto.ListingResponse, error) {
	listing, err := s.find(ctx, listingID.String())
	if err != nil {
		return nil, err
	}

	listing.Featured = !listing.Featured
	if err := s.listingRepo.SetFeatured(ctx, listing.ID, listing.Featured); err != nil {
		return nil, err
	}
	s.index(listing)

	resp := dto.NewListingResponse(listing)
	return &resp, nil
}

// ExpireListings flips active listings past their expiry to expired.
func (s *service) ExpireListings(ctx context.Context) (int, error) {
	ids, err := s.listingRepo.ExpireOverdue(ctx, time.Now())
	if err != nil {
		return 0, err
	}

	if s.meili != nil {
		for _, id := range ids {
			if err := s.meili.DeleteListing(id); err != nil {
				log.Printf("Failed to remove expired listing %s from search index: %v", id, err)
			}
		}
	}
	return len(ids), nil
}

// index keeps the search index in step. Only active listings are searchable.
func (s *service) index(listing *entity.Listing) {
	if s.meili == nil {
		return
	}
	if listing.Status != entity.ListingStatusActive {
		if err := s.meili.DeleteListing(listing.ID); err != nil {
			log.Printf("Failed to remove listing %s from search index: %v", listing.ID, err)
		}
		return
	}
	if err := s.meili.IndexListing(listing); err != nil {
		log.Printf("Failed to index listing %s: %v", listing.ID, err)
	}
}
