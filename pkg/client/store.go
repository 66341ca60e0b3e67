package client

import (
	"context"
	"errors"
	"sync"

	listingDto "anoa.com/tradesphere/internal/modules/listing/dto"
	"anoa.com/tradesphere/internal/modules/listing/query"
	"anoa.com/tradesphere/pkg/apperror"
	commonDto "anoa.com/tradesphere/pkg/dto"
	"github.com/google/uuid"
)

var (
	// ErrBusy is returned when a mutation for the same listing is still in flight.
	ErrBusy = errors.New("listing has a request in flight")
	// ErrStale is returned by Fetch when a newer fetch already settled.
	ErrStale = errors.New("superseded by a newer fetch")
)

const favoritesPageSize = 50

// ListingAPI is the subset of Client the store depends on.
type ListingAPI interface {
	ListListings(ctx context.Context, params query.Params) (*ListingPage, error)
	CreateListing(ctx context.Context, req listingDto.CreateListingRequest) (*listingDto.ListingResponse, error)
	UpdateListing(ctx context.Context, id uuid.UUID, req listingDto.UpdateListingRequest) (*listingDto.ListingResponse, error)
	DeleteListing(ctx context.Context, id uuid.UUID) error
	ListFavorites(ctx context.Context, page, limit int) (*FavoritePage, error)
	AddFavorite(ctx context.Context, listingID uuid.UUID) error
	RemoveFavorite(ctx context.Context, listingID uuid.UUID) error
}

// State is a copy of the store contents, safe to hand to a renderer.
type State struct {
	Listings   []listingDto.ListingResponse
	Pagination commonDto.PaginationMeta
	Favorites  map[uuid.UUID]bool
	Loading    bool
	Pending    map[uuid.UUID]bool
	Err        error
}

// ListingStore caches the last fetched page of listings and the caller's
// favorites. Every method leaves the store settled when it returns: no
// loading or pending flag survives the call that set it, and a failed
// mutation is rolled back.
type ListingStore struct {
	api ListingAPI

	mu         sync.Mutex
	listings   []listingDto.ListingResponse
	pagination commonDto.PaginationMeta
	favorites  map[uuid.UUID]bool
	pending    map[uuid.UUID]bool
	inFlight   int
	issued     uint64
	applied    uint64
	err        error
}

func NewListingStore(api ListingAPI) *ListingStore {
	return &ListingStore{
		api:       api,
		favorites: make(map[uuid.UUID]bool),
		pending:   make(map[uuid.UUID]bool),
	}
}

func (s *ListingStore) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		Listings:   append([]listingDto.ListingResponse(nil), s.listings...),
		Pagination: s.pagination,
		Favorites:  make(map[uuid.UUID]bool, len(s.favorites)),
		Pending:    make(map[uuid.UUID]bool, len(s.pending)),
		Loading:    s.inFlight > 0,
		Err:        s.err,
	}
	for id, v := range s.favorites {
		st.Favorites[id] = v
	}
	for id, v := range s.pending {
		st.Pending[id] = v
	}
	return st
}

// Fetch loads a page for params. Responses are applied in request order:
// one that arrives after a newer request already settled is dropped and
// ErrStale is returned.
func (s *ListingStore) Fetch(ctx context.Context, params query.Params) error {
	s.mu.Lock()
	s.issued++
	seq := s.issued
	s.inFlight++
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight--
		s.mu.Unlock()
	}()

	page, err := s.api.ListListings(ctx, params)

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq < s.applied {
		return ErrStale
	}
	s.applied = seq

	if err != nil {
		s.err = err
		return err
	}

	s.listings = page.Data
	s.pagination = page.Pagination
	s.err = nil
	return nil
}

// LoadFavorites replaces the favorite set with the server's.
func (s *ListingStore) LoadFavorites(ctx context.Context) error {
	s.mu.Lock()
	s.inFlight++
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight--
		s.mu.Unlock()
	}()

	favorites := make(map[uuid.UUID]bool)
	for page := 1; ; page++ {
		res, err := s.api.ListFavorites(ctx, page, favoritesPageSize)
		if err != nil {
			s.setErr(err)
			return err
		}
		for _, f := range res.Data {
			favorites[f.ListingID] = true
		}
		if page >= res.Pagination.Pages {
			break
		}
	}

	s.mu.Lock()
	s.favorites = favorites
	s.mu.Unlock()
	return nil
}

func (s *ListingStore) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// claim marks id as having a mutation in flight. The returned func must be
// deferred by the caller.
func (s *ListingStore) claim(id uuid.UUID) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending[id] {
		return nil, ErrBusy
	}
	s.pending[id] = true
	return func() {
		s.mu.Lock()
		delete(s.pending, id)
		s.mu.Unlock()
	}, nil
}

func (s *ListingStore) indexOf(id uuid.UUID) int {
	for i := range s.listings {
		if s.listings[i].ID == id {
			return i
		}
	}
	return -1
}

// Create adds the listing to the front of the cache once the server
// accepts it.
func (s *ListingStore) Create(ctx context.Context, req listingDto.CreateListingRequest) (*listingDto.ListingResponse, error) {
	s.mu.Lock()
	s.inFlight++
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight--
		s.mu.Unlock()
	}()

	created, err := s.api.CreateListing(ctx, req)
	if err != nil {
		s.setErr(err)
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(created.ID) < 0 {
		s.listings = append([]listingDto.ListingResponse{*created}, s.listings...)
		s.pagination.Total++
	}
	s.err = nil
	return created, nil
}

// Update replaces the cached copy once the server accepts the change.
func (s *ListingStore) Update(ctx context.Context, id uuid.UUID, req listingDto.UpdateListingRequest) (*listingDto.ListingResponse, error) {
	release, err := s.claim(id)
	if err != nil {
		return nil, err
	}
	defer release()

	updated, err := s.api.UpdateListing(ctx, id, req)
	if err != nil {
		s.setErr(err)
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		s.listings[i] = *updated
	}
	s.err = nil
	return updated, nil
}

// Delete removes the listing locally before the server confirms. On
// failure it is put back where it was.
func (s *ListingStore) Delete(ctx context.Context, id uuid.UUID) error {
	release, err := s.claim(id)
	if err != nil {
		return err
	}
	defer release()

	s.mu.Lock()
	idx := s.indexOf(id)
	var removed listingDto.ListingResponse
	if idx >= 0 {
		removed = s.listings[idx]
		s.listings = append(s.listings[:idx:idx], s.listings[idx+1:]...)
		s.pagination.Total--
	}
	wasFavorite := s.favorites[id]
	delete(s.favorites, id)
	s.mu.Unlock()

	err = s.api.DeleteListing(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		if idx >= 0 && s.indexOf(id) < 0 {
			if idx > len(s.listings) {
				idx = len(s.listings)
			}
			s.listings = append(s.listings[:idx:idx], append([]listingDto.ListingResponse{removed}, s.listings[idx:]...)...)
			s.pagination.Total++
		}
		if wasFavorite {
			s.favorites[id] = true
		}
		s.err = err
		return err
	}

	s.err = nil
	return nil
}

// ToggleFavorite flips the favorite flag locally, then asks the server.
// A conflict on add or a not-found on remove means the server already
// agrees with the new state and is not treated as a failure.
func (s *ListingStore) ToggleFavorite(ctx context.Context, id uuid.UUID) (bool, error) {
	release, err := s.claim(id)
	if err != nil {
		return false, err
	}
	defer release()

	s.mu.Lock()
	next := !s.favorites[id]
	s.setFavorite(id, next)
	s.mu.Unlock()

	if next {
		err = s.api.AddFavorite(ctx, id)
		if errors.Is(err, apperror.ErrConflict) {
			err = nil
		}
	} else {
		err = s.api.RemoveFavorite(ctx, id)
		if errors.Is(err, apperror.ErrNotFound) {
			err = nil
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.setFavorite(id, !next)
		s.err = err
		return !next, err
	}

	s.err = nil
	return next, nil
}

func (s *ListingStore) setFavorite(id uuid.UUID, on bool) {
	if on {
		s.favorites[id] = true
		return
	}
	delete(s.favorites, id)
}
