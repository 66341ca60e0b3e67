package handler

import (
	"fmt"
	"net/http"

	"anoa.com/tradesphere/internal/modules/search/dto"
	search "anoa.com/tradesphere/internal/modules/search/service"
	"anoa.com/tradesphere/pkg/apperror"
	"anoa.com/tradesphere/pkg/response"
	"github.com/gin-gonic/gin"
)

type SearchHandler struct {
	service search.MeiliSearchService
}

func NewSearchHandler(service search.MeiliSearchService) *SearchHandler {
	return &SearchHandler{service: service}
}

func (h *SearchHandler) SearchListings(c *gin.Context) {
	if h.service == nil {
		response.ResponseError(c, apperror.New(http.StatusServiceUnavailable, "search is not configured", fmt.Errorf("search is not configured")))
		return
	}

	var req dto.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ResponseError(c, err)
		return
	}

	result, err := h.service.SearchListings(req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"data": result})
}
