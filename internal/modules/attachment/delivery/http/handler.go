package handler

import (
	"net/http"

	"anoa.com/tradesphere/internal/modules/attachment/dto"
	attachment "anoa.com/tradesphere/internal/modules/attachment/service"
	"anoa.com/tradesphere/pkg/apperror"
	"anoa.com/tradesphere/pkg/response"
	"github.com/gin-gonic/gin"
)

type AttachmentHandler struct {
	service attachment.AttachmentService
}

func NewAttachmentHandler(service attachment.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{service: service}
}

func (h *AttachmentHandler) UploadImages(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		response.ResponseError(c, apperror.NewValidationError("images", "multipart form with images is required"))
		return
	}

	uploaded, err := h.service.UploadImages(c.Request.Context(), userID, form.File["images"])
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	urls := make([]string, 0, len(uploaded))
	for _, u := range uploaded {
		urls = append(urls, u.FileURL)
	}

	response.Success(c, http.StatusCreated, gin.H{"data": uploaded, "urls": urls})
}

func (h *AttachmentHandler) DeleteImage(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.DeleteAttachmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.DeleteImage(c.Request.Context(), userID, req.URL); err != nil {
		response.ResponseError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "image deleted"})
}
