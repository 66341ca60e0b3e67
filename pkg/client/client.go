// Package client is a typed Go client for the marketplace API plus a
// listing cache that keeps local state consistent across failed mutations.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	favoriteDto "anoa.com/tradesphere/internal/modules/favorite/dto"
	listingDto "anoa.com/tradesphere/internal/modules/listing/dto"
	"anoa.com/tradesphere/internal/modules/listing/query"
	userDto "anoa.com/tradesphere/internal/modules/user/dto"
	"anoa.com/tradesphere/pkg/apperror"
	commonDto "anoa.com/tradesphere/pkg/dto"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// TokenStore persists the bearer token between calls.
type TokenStore interface {
	Token() string
	SetToken(token string)
}

type MemoryTokenStore struct {
	mu    sync.RWMutex
	token string
}

func (s *MemoryTokenStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *MemoryTokenStore) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

// APIError is a non-2xx response decoded from the error envelope.
type APIError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Unwrap maps the status back to the sentinel the server used, so callers
// can branch with errors.Is(err, apperror.ErrConflict) and friends.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusBadRequest:
		if len(e.Fields) > 0 {
			return apperror.ErrInvalidInput
		}
		return apperror.ErrBadRequest
	case http.StatusUnauthorized:
		return apperror.ErrUnauthorized
	case http.StatusForbidden:
		return apperror.ErrForbidden
	case http.StatusNotFound:
		return apperror.ErrNotFound
	case http.StatusConflict:
		return apperror.ErrConflict
	case http.StatusTooManyRequests:
		return apperror.ErrRateLimitExceeded
	default:
		return apperror.ErrInternal
	}
}

type ListingPage struct {
	Data       []listingDto.ListingResponse `json:"data"`
	Pagination commonDto.PaginationMeta     `json:"pagination"`
}

type FavoritePage struct {
	Data       []favoriteDto.FavoriteResponse `json:"data"`
	Pagination commonDto.PaginationMeta       `json:"pagination"`
}

type Client struct {
	baseURL     string
	httpClient  *http.Client
	tokens      TokenStore
	rateLimiter *rate.Limiter
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithTokenStore(tokens TokenStore) Option {
	return func(c *Client) { c.tokens = tokens }
}

// WithRateLimit throttles outgoing requests client-side.
func WithRateLimit(every time.Duration, burst int) Option {
	return func(c *Client) { c.rateLimiter = rate.NewLimiter(rate.Every(every), burst) }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		tokens:      &MemoryTokenStore{},
		rateLimiter: rate.NewLimiter(rate.Inf, 0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body, out any) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var envelope struct {
			Message string            `json:"message"`
			Errors  map[string]string `json:"errors"`
		}
		_ = json.Unmarshal(raw, &envelope)
		if envelope.Message == "" {
			envelope.Message = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: envelope.Message, Fields: envelope.Errors}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

func (c *Client) Register(ctx context.Context, req userDto.RegisterRequest) (*userDto.AuthResponse, error) {
	return c.authenticate(ctx, "/api/auth/register", req)
}

func (c *Client) Login(ctx context.Context, email, password string) (*userDto.AuthResponse, error) {
	return c.authenticate(ctx, "/api/auth/login", userDto.LoginRequest{Email: email, Password: password})
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (*userDto.AuthResponse, error) {
	var out struct {
		Data userDto.AuthResponse `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, path, nil, body, &out); err != nil {
		return nil, err
	}
	c.tokens.SetToken(out.Data.Token)
	return &out.Data, nil
}

func (c *Client) Logout() {
	c.tokens.SetToken("")
}

func (c *Client) Me(ctx context.Context) (*userDto.UserResponse, error) {
	var out struct {
		Data userDto.UserResponse `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func listingValues(p query.Params) url.Values {
	v := url.Values{}
	set := func(key, value string) {
		if value != "" {
			v.Set(key, value)
		}
	}
	set("search", p.Search)
	set("category", p.Category)
	set("subcategory", p.Subcategory)
	set("minPrice", p.MinPrice)
	set("maxPrice", p.MaxPrice)
	set("condition", p.Condition)
	set("location", p.Location)
	set("featured", p.Featured)
	set("status", p.Status)
	set("user", p.User)
	set("sort", p.Sort)
	set("page", p.Page)
	set("limit", p.Limit)
	return v
}

func (c *Client) ListListings(ctx context.Context, params query.Params) (*ListingPage, error) {
	var out ListingPage
	if err := c.do(ctx, http.MethodGet, "/api/listings", listingValues(params), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetListing(ctx context.Context, idOrSlug string) (*listingDto.ListingDetailResponse, error) {
	var out struct {
		Data            listingDto.ListingResponse   `json:"data"`
		RelatedListings []listingDto.ListingResponse `json:"relatedListings"`
		OwnerListings   []listingDto.ListingResponse `json:"ownerListings"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/listings/"+url.PathEscape(idOrSlug), nil, nil, &out); err != nil {
		return nil, err
	}
	return &listingDto.ListingDetailResponse{
		Listing:         out.Data,
		RelatedListings: out.RelatedListings,
		OwnerListings:   out.OwnerListings,
	}, nil
}

func (c *Client) CreateListing(ctx context.Context, req listingDto.CreateListingRequest) (*listingDto.ListingResponse, error) {
	var out struct {
		Data listingDto.ListingResponse `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/listings", nil, req, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) UpdateListing(ctx context.Context, id uuid.UUID, req listingDto.UpdateListingRequest) (*listingDto.ListingResponse, error) {
	var out struct {
		Data listingDto.ListingResponse `json:"data"`
	}
	if err := c.do(ctx, http.MethodPut, "/api/listings/"+id.String(), nil, req, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) DeleteListing(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/listings/"+id.String(), nil, nil, nil)
}

func (c *Client) ListFavorites(ctx context.Context, page, limit int) (*FavoritePage, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(limit))

	var out FavoritePage
	if err := c.do(ctx, http.MethodGet, "/api/favorites", params, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AddFavorite(ctx context.Context, listingID uuid.UUID) error {
	return c.do(ctx, http.MethodPost, "/api/favorites", nil, favoriteDto.AddFavoriteRequest{ListingID: listingID}, nil)
}

func (c *Client) RemoveFavorite(ctx context.Context, listingID uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/favorites/"+listingID.String(), nil, nil, nil)
}

func (c *Client) IsFavorite(ctx context.Context, listingID uuid.UUID) (bool, error) {
	var out struct {
		Data favoriteDto.FavoriteStatusResponse `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/favorites/"+listingID.String()+"/check", nil, nil, &out); err != nil {
		return false, err
	}
	return out.Data.IsFavorite, nil
}
