package controller

import (
	"net/http"

	apperrors "github.com/evanoh/storepulse-backend/internal/errors"
	"github.com/evanoh/storepulse-backend/internal/middleware"
	"github.com/evanoh/storepulse-backend/internal/storage"
	"github.com/gin-gonic/gin"
)

const maxUploadSize = 10 << 20 // 10 MB

var allowedImageTypes = []string{
	"image/jpeg",
	"image/png",
	"image/webp",
}

type UploadController struct {
	storage *storage.S3Storage
}

func NewUploadController(s3 *storage.S3Storage) *UploadController {
	return &UploadController{
		storage: s3,
	}
}

type PresignRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
	FileSize    int64  `json:"file_size" binding:"required"`
}

// PresignStoreImage issues a pre-signed URL for uploading a store image.
// The client PUTs the file to S3 directly, then saves the returned file_url
// on the store record.
// POST /admin/uploads/presign
func (ctrl *UploadController) PresignStoreImage(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req PresignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Filename, content type and file size are required")
		return
	}

	if err := ctrl.storage.ValidateContentType(req.ContentType, allowedImageTypes); err != nil {
		apperrors.BadRequest(c, apperrors.UploadInvalidFileType, "Only JPEG, PNG and WebP images are allowed")
		return
	}
	if err := ctrl.storage.ValidateFileSize(req.FileSize, maxUploadSize); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidRange, "File exceeds the 10 MB limit")
		return
	}

	result, err := ctrl.storage.GeneratePresignedURL(req.Filename, req.ContentType, "stores")
	if err != nil {
		log.Error("Failed to generate presigned URL", err, map[string]interface{}{
			"filename": req.Filename,
		})
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.UploadFailed, "Could not prepare the upload")
		return
	}

	c.JSON(http.StatusOK, result)
}
