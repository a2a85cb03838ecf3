package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mycad-io/fleet-api/internal/models"
	"github.com/mycad-io/fleet-api/internal/service"
	appErrors "github.com/mycad-io/fleet-api/pkg/errors"
	"github.com/mycad-io/fleet-api/pkg/response"
)

// AttachmentHandler exposes file attachment endpoints.
type AttachmentHandler struct {
	attachments *service.AttachmentService
}

// NewAttachmentHandler constructs AttachmentHandler.
func NewAttachmentHandler(attachments *service.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{attachments: attachments}
}

// Upload godoc
// @Summary Upload attachment
// @Description Attach a file to a rental or report
// @Tags Attachments
// @Accept multipart/form-data
// @Produce json
// @Param owner_type formData string true "Owner kind (VEHICLE, RENTAL, REPAIR_REPORT, SERVICE_REPORT)"
// @Param owner_id formData string true "Owner ID"
// @Param file formData file true "File"
// @Success 201 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Failure 415 {object} response.Envelope
// @Router /attachments [post]
func (h *AttachmentHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file required"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload"))
		return
	}
	defer file.Close()

	attachment, err := h.attachments.Upload(c.Request.Context(), service.UploadRequest{
		OwnerType:    models.AttachmentOwner(c.PostForm("owner_type")),
		OwnerID:      c.PostForm("owner_id"),
		OriginalName: fileHeader.Filename,
		MimeType:     fileHeader.Header.Get("Content-Type"),
		Size:         fileHeader.Size,
		Body:         file,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, attachment)
}

// ListByOwner godoc
// @Summary List attachments for an entity
// @Tags Attachments
// @Produce json
// @Param owner_type query string true "Owner kind"
// @Param owner_id query string true "Owner ID"
// @Success 200 {object} response.Envelope
// @Router /attachments [get]
func (h *AttachmentHandler) ListByOwner(c *gin.Context) {
	ownerType := c.Query("owner_type")
	ownerID := c.Query("owner_id")
	if ownerType == "" || ownerID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "owner_type and owner_id required"))
		return
	}
	attachments, err := h.attachments.ListByOwner(c.Request.Context(), models.AttachmentOwner(ownerType), ownerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, attachments, nil)
}

// SignedURL godoc
// @Summary Issue signed download URL
// @Tags Attachments
// @Produce json
// @Param id path string true "Attachment ID"
// @Success 200 {object} response.Envelope
// @Router /attachments/{id}/url [get]
func (h *AttachmentHandler) SignedURL(c *gin.Context) {
	token, expiresAt, err := h.attachments.SignedURL(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"token":      token,
		"url":        fmt.Sprintf("/api/v1/attachments/download/%s", token),
		"expires_at": expiresAt.Format(time.RFC3339),
	}, nil)
}

// Download godoc
// @Summary Download attachment by signed token
// @Description Token-authenticated download, no session required
// @Tags Attachments
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Router /attachments/download/{token} [get]
func (h *AttachmentHandler) Download(c *gin.Context) {
	attachment, file, err := h.attachments.OpenByToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	filename := attachment.ID
	var meta models.AttachmentMetadata
	if len(attachment.Metadata) > 0 {
		if err := json.Unmarshal(attachment.Metadata, &meta); err == nil && meta.OriginalName != "" {
			filename = meta.OriginalName
		}
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if attachment.MimeType != "" {
		c.Header("Content-Type", attachment.MimeType)
	}
	http.ServeContent(c.Writer, c.Request, filename, attachment.CreatedAt, file)
}

// Delete godoc
// @Summary Delete attachment
// @Tags Attachments
// @Produce json
// @Param id path string true "Attachment ID"
// @Success 204
// @Router /attachments/{id} [delete]
func (h *AttachmentHandler) Delete(c *gin.Context) {
	if err := h.attachments.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
