package handler

import (
	"errors"
	"fmt"
	"net/http"

	"anoa.com/tradesphere/internal/modules/listing/dto"
	"anoa.com/tradesphere/internal/modules/listing/query"
	listing "anoa.com/tradesphere/internal/modules/listing/service"
	"anoa.com/tradesphere/pkg/apperror"
	"anoa.com/tradesphere/pkg/ratelimiter"
	"anoa.com/tradesphere/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ListingHandler struct {
	service listing.Service
}

func NewListingHandler(service listing.Service) *ListingHandler {
	return &ListingHandler{service: service}
}

func listingID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ResponseError(c, apperror.NewValidationError("id", "must be a valid listing id"))
		return uuid.Nil, false
	}
	return id, true
}

func writePage(c *gin.Context, page *dto.PaginatedListingResponse) {
	response.Success(c, http.StatusOK, gin.H{
		"count":      len(page.Data),
		"data":       page.Data,
		"pagination": page.Pagination,
	})
}

func (h *ListingHandler) GetListings(c *gin.Context) {
	var params query.Params
	if err := c.ShouldBindQuery(&params); err != nil {
		response.ResponseError(c, err)
		return
	}

	page, err := h.service.GetListings(c.Request.Context(), response.GetOptionalUserID(c), params)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	writePage(c, page)
}

func (h *ListingHandler) GetFeatured(c *gin.Context) {
	var params query.Params
	if err := c.ShouldBindQuery(&params); err != nil {
		response.ResponseError(c, err)
		return
	}

	page, err := h.service.GetFeatured(c.Request.Context(), params)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	writePage(c, page)
}

func (h *ListingHandler) GetRecent(c *gin.Context) {
	var params query.Params
	if err := c.ShouldBindQuery(&params); err != nil {
		response.ResponseError(c, err)
		return
	}

	page, err := h.service.GetRecent(c.Request.Context(), params)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	writePage(c, page)
}

func (h *ListingHandler) GetMyListings(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var params query.Params
	if err := c.ShouldBindQuery(&params); err != nil {
		response.ResponseError(c, err)
		return
	}

	page, err := h.service.GetListingsByUser(c.Request.Context(), &userID, userID, params)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	writePage(c, page)
}

func (h *ListingHandler) GetUserListings(c *gin.Context) {
	ownerID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.ResponseError(c, apperror.NewValidationError("userId", "must be a valid user id"))
		return
	}

	var params query.Params
	if err := c.ShouldBindQuery(&params); err != nil {
		response.ResponseError(c, err)
		return
	}

	page, err := h.service.GetListingsByUser(c.Request.Context(), response.GetOptionalUserID(c), ownerID, params)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	writePage(c, page)
}

func (h *ListingHandler) GetListing(c *gin.Context) {
	detail, err := h.service.GetListing(c.Request.Context(), c.Param("idOrSlug"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"data":            detail.Listing,
		"relatedListings": detail.RelatedListings,
		"ownerListings":   detail.OwnerListings,
	})
}

func (h *ListingHandler) CreateListing(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, err)
		return
	}

	created, err := h.service.CreateListing(c.Request.Context(), userID, req)
	if err != nil {
		var rateLimitErr *ratelimiter.RateLimitError
		if errors.As(err, &rateLimitErr) {
			c.Header("Retry-After", fmt.Sprintf("%.0f", rateLimitErr.RetryAfter.Seconds()))
		}
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"data": created})
}

func (h *ListingHandler) UpdateListing(c *gin.Context) {
	id, ok := listingID(c)
	if !ok {
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.UpdateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, err)
		return
	}

	updated, err := h.service.UpdateListing(c.Request.Context(), userID, id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"data": updated})
}

func (h *ListingHandler) DeleteListing(c *gin.Context) {
	id, ok := listingID(c)
	if !ok {
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.DeleteListing(c.Request.Context(), userID, id); err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "listing deleted successfully"})
}

func (h *ListingHandler) MarkSold(c *gin.Context) {
	id, ok := listingID(c)
	if !ok {
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	updated, err := h.service.MarkSold(c.Request.Context(), userID, id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"data": updated})
}

func (h *ListingHandler) ToggleFeatured(c *gin.Context) {
	id, ok := listingID(c)
	if !ok {
		return
	}

	updated, err := h.service.ToggleFeatured(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"data": updated})
}
