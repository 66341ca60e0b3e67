package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	listingDto "anoa.com/tradesphere/internal/modules/listing/dto"
	"anoa.com/tradesphere/internal/modules/listing/query"
	"anoa.com/tradesphere/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestLoginStoresToken(t *testing.T) {
	var gotAuth string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data":    map[string]any{"token": "abc", "tokenType": "Bearer", "user": map[string]any{"email": "a@b.c"}},
		})
	})
	mux.HandleFunc("/api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"email": "a@b.c"}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL)
	auth, err := c.Login(context.Background(), "a@b.c", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "abc", auth.Token)

	me, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", me.Email)
	assert.Equal(t, "Bearer abc", gotAuth)
}

func TestListListingsEncodesFilter(t *testing.T) {
	id := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/api/listings", r.URL.Path)
		assert.Equal(t, "vehicles", q.Get("category"))
		assert.Equal(t, "1000", q.Get("minPrice"))
		assert.Equal(t, "price-asc", q.Get("sort"))
		assert.False(t, q.Has("search"))
		writeJSON(w, http.StatusOK, map[string]any{
			"success":    true,
			"count":      1,
			"data":       []map[string]any{{"id": id, "title": "Bike", "price": 5000}},
			"pagination": map[string]any{"total": 1, "pages": 1, "page": 1, "limit": 12},
		})
	}))
	defer srv.Close()

	page, err := New(srv.URL).ListListings(context.Background(), query.Params{
		Category: "vehicles",
		MinPrice: "1000",
		Sort:     "price-asc",
	})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, id, page.Data[0].ID)
	assert.Equal(t, int64(1), page.Pagination.Total)
}

func TestGetListingDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/listings/red-bike", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{
			"success":         true,
			"data":            map[string]any{"title": "Red bike", "views": 4},
			"relatedListings": []map[string]any{{"title": "Blue bike"}},
			"ownerListings":   []map[string]any{},
		})
	}))
	defer srv.Close()

	detail, err := New(srv.URL).GetListing(context.Background(), "red-bike")
	require.NoError(t, err)
	assert.Equal(t, "Red bike", detail.Listing.Title)
	assert.Equal(t, int64(4), detail.Listing.Views)
	assert.Len(t, detail.RelatedListings, 1)
}

func TestErrorEnvelope(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   map[string]any
		target error
	}{
		{"validation", http.StatusBadRequest, map[string]any{"success": false, "message": "validation failed", "errors": map[string]string{"images": "is required"}}, apperror.ErrInvalidInput},
		{"unauthorized", http.StatusUnauthorized, map[string]any{"success": false, "message": "authorization required"}, apperror.ErrUnauthorized},
		{"forbidden", http.StatusForbidden, map[string]any{"success": false, "message": "not the owner"}, apperror.ErrForbidden},
		{"conflict", http.StatusConflict, map[string]any{"success": false, "message": "already in favorites"}, apperror.ErrConflict},
		{"rate limited", http.StatusTooManyRequests, map[string]any{"success": false, "message": "please wait"}, apperror.ErrRateLimitExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			}))
			defer srv.Close()

			_, err := New(srv.URL).CreateListing(context.Background(), listingDto.CreateListingRequest{Title: "x"})
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.target))

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.body["message"], apiErr.Message)
		})
	}
}

func TestFavoriteCalls(t *testing.T) {
	listingID := uuid.New()
	var calls []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		switch {
		case r.Method == http.MethodPost:
			var body map[string]string
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, listingID.String(), body["listingId"])
			writeJSON(w, http.StatusCreated, map[string]any{"success": true})
		case r.Method == http.MethodGet:
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]bool{"isFavorite": true}})
		default:
			writeJSON(w, http.StatusOK, map[string]any{"success": true})
		}
	}))
	defer srv.Close()

	c := New(srv.URL)
	require.NoError(t, c.AddFavorite(context.Background(), listingID))
	ok, err := c.IsFavorite(context.Background(), listingID)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, c.RemoveFavorite(context.Background(), listingID))

	assert.Equal(t, []string{
		"POST /api/favorites",
		"GET /api/favorites/" + listingID.String() + "/check",
		"DELETE /api/favorites/" + listingID.String(),
	}, calls)
}
