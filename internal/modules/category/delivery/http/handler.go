package handler

import (
	"net/http"

	"anoa.com/tradesphere/internal/modules/category/dto"
	category "anoa.com/tradesphere/internal/modules/category/service"
	"anoa.com/tradesphere/pkg/apperror"
	"anoa.com/tradesphere/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CategoryHandler struct {
	service category.CategoryService
}

func NewCategoryHandler(service category.CategoryService) *CategoryHandler {
	return &CategoryHandler{service: service}
}

func (h *CategoryHandler) GetAllCategories(c *gin.Context) {
	var req dto.ListCategoriesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ResponseError(c, err)
		return
	}

	categories, err := h.service.List(c.Request.Context(), req.ParentOnly)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"count": len(categories), "data": categories})
}

func (h *CategoryHandler) GetCategory(c *gin.Context) {
	detail, err := h.service.Get(c.Request.Context(), c.Param("idOrSlug"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"data": detail})
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, err)
		return
	}

	created, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"data": created})
}

func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ResponseError(c, apperror.NewValidationError("id", "must be a valid category id"))
		return
	}

	var req dto.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, err)
		return
	}

	updated, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"data": updated})
}

func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ResponseError(c, apperror.NewValidationError("id", "must be a valid category id"))
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "category deleted"})
}

func (h *CategoryHandler) InitializeCategories(c *gin.Context) {
	created, err := h.service.Initialize(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "default categories initialized", "created": created})
}
