package handler

import (
	"net/http"

	"anoa.com/tradesphere/internal/modules/favorite/dto"
	favorite "anoa.com/tradesphere/internal/modules/favorite/service"
	"anoa.com/tradesphere/pkg/apperror"
	commonDto "anoa.com/tradesphere/pkg/dto"
	"anoa.com/tradesphere/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type FavoriteHandler struct {
	service favorite.FavoriteService
}

func NewFavoriteHandler(service favorite.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{service: service}
}

func (h *FavoriteHandler) GetFavorites(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var page commonDto.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		response.ResponseError(c, err)
		return
	}

	favorites, meta, err := h.service.GetFavorites(c.Request.Context(), userID, page)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"count":      len(favorites),
		"data":       favorites,
		"pagination": meta,
	})
}

func (h *FavoriteHandler) AddFavorite(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.AddFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, err)
		return
	}

	created, err := h.service.AddFavorite(c.Request.Context(), userID, req.ListingID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"data": created})
}

func (h *FavoriteHandler) RemoveFavorite(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	listingID, err := uuid.Parse(c.Param("listingId"))
	if err != nil {
		response.ResponseError(c, apperror.NewValidationError("listingId", "must be a valid listing id"))
		return
	}

	if err := h.service.RemoveFavorite(c.Request.Context(), userID, listingID); err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "removed from favorites"})
}

func (h *FavoriteHandler) CheckFavorite(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	listingID, err := uuid.Parse(c.Param("listingId"))
	if err != nil {
		response.ResponseError(c, apperror.NewValidationError("listingId", "must be a valid listing id"))
		return
	}

	ok, err := h.service.IsFavorite(c.Request.Context(), userID, listingID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"data": dto.FavoriteStatusResponse{IsFavorite: ok}})
}
