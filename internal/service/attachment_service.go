package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/mycad-io/fleet-api/internal/models"
	appErrors "github.com/mycad-io/fleet-api/pkg/errors"
	"github.com/mycad-io/fleet-api/pkg/storage"
)

type attachmentRepository interface {
	Create(ctx context.Context, attachment *models.Attachment) error
	FindByID(ctx context.Context, id string) (*models.Attachment, error)
	ListByOwner(ctx context.Context, ownerType models.AttachmentOwner, ownerID string) ([]models.Attachment, error)
	OwnerExists(ctx context.Context, ownerType models.AttachmentOwner, ownerID string) (bool, error)
	Delete(ctx context.Context, id string) error
}

// UploadRequest describes an incoming file for an owner record.
type UploadRequest struct {
	OwnerType    models.AttachmentOwner
	OwnerID      string
	OriginalName string
	MimeType     string
	Size         int64
	Body         io.Reader
}

// AttachmentConfig bounds uploads.
type AttachmentConfig struct {
	MaxFileSizeBytes int64
	AllowedMIMEs     []string
}

// AttachmentService stores uploaded files and their metadata records, and
// issues signed download URLs.
type AttachmentService struct {
	repo    attachmentRepository
	store   *storage.LocalStorage
	signer  *storage.SignedURLSigner
	config  AttachmentConfig
	allowed map[string]struct{}
	logger  *zap.Logger
}

// NewAttachmentService constructs the attachment service.
func NewAttachmentService(repo attachmentRepository, store *storage.LocalStorage, signer *storage.SignedURLSigner, config AttachmentConfig, logger *zap.Logger) *AttachmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	allowed := make(map[string]struct{}, len(config.AllowedMIMEs))
	for _, m := range config.AllowedMIMEs {
		allowed[m] = struct{}{}
	}
	return &AttachmentService{repo: repo, store: store, signer: signer, config: config, allowed: allowed, logger: logger}
}

// Upload validates, stores and records a file for an owner record.
func (s *AttachmentService) Upload(ctx context.Context, req UploadRequest) (*models.Attachment, error) {
	if req.OwnerID == "" || req.OriginalName == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "missing file or owner")
	}
	if _, ok := s.allowed[req.MimeType]; !ok {
		return nil, appErrors.Clone(appErrors.ErrUnsupportedMedia, "file type not allowed: "+req.MimeType)
	}
	if s.config.MaxFileSizeBytes > 0 && req.Size > s.config.MaxFileSizeBytes {
		return nil, appErrors.Clone(appErrors.ErrFileTooLarge, "file exceeds size limit")
	}
	exists, err := s.repo.OwnerExists(ctx, req.OwnerType, req.OwnerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check owner record")
	}
	if !exists {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "owner record not found")
	}

	relPath := storage.UniqueName(string(req.OwnerType), req.OriginalName)
	body := req.Body
	if s.config.MaxFileSizeBytes > 0 {
		// A lying Content-Length is caught while streaming.
		body = io.LimitReader(body, s.config.MaxFileSizeBytes+1)
	}
	written, err := s.store.SaveStream(relPath, body)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store file")
	}
	if s.config.MaxFileSizeBytes > 0 && written > s.config.MaxFileSizeBytes {
		if err := s.store.Delete(relPath); err != nil {
			s.logger.Warn("failed to remove oversized upload", zap.String("path", relPath), zap.Error(err))
		}
		return nil, appErrors.Clone(appErrors.ErrFileTooLarge, "file exceeds size limit")
	}

	metadata, err := json.Marshal(models.AttachmentMetadata{OriginalName: req.OriginalName, Size: written})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode metadata")
	}

	attachment := &models.Attachment{
		OwnerType: req.OwnerType,
		OwnerID:   req.OwnerID,
		URL:       relPath,
		MimeType:  req.MimeType,
		Metadata:  metadata,
	}
	if err := s.repo.Create(ctx, attachment); err != nil {
		if derr := s.store.Delete(relPath); derr != nil {
			s.logger.Warn("failed to remove orphaned upload", zap.String("path", relPath), zap.Error(derr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attachment")
	}
	return attachment, nil
}

// ListByOwner returns the attachments of one record.
func (s *AttachmentService) ListByOwner(ctx context.Context, ownerType models.AttachmentOwner, ownerID string) ([]models.Attachment, error) {
	attachments, err := s.repo.ListByOwner(ctx, ownerType, ownerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attachments")
	}
	return attachments, nil
}

// SignedURL issues a time-limited download token for an attachment.
func (s *AttachmentService) SignedURL(ctx context.Context, id string) (string, time.Time, error) {
	attachment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", time.Time{}, appErrors.Clone(appErrors.ErrNotFound, "attachment not found")
		}
		return "", time.Time{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attachment")
	}
	token, expiresAt, err := s.signer.Generate(attachment.ID, attachment.URL)
	if err != nil {
		return "", time.Time{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download url")
	}
	return token, expiresAt, nil
}

// OpenByToken validates a download token and opens the underlying file.
func (s *AttachmentService) OpenByToken(ctx context.Context, token string) (*models.Attachment, *os.File, error) {
	resourceID, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}
	attachment, err := s.repo.FindByID(ctx, resourceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "attachment not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attachment")
	}
	if attachment.URL != relPath {
		return nil, nil, appErrors.Clone(appErrors.ErrUnauthorized, "token does not match attachment")
	}
	file, err := s.store.Open(attachment.URL)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file")
	}
	return attachment, file, nil
}

// Delete removes an attachment record and its stored file.
func (s *AttachmentService) Delete(ctx context.Context, id string) error {
	attachment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "attachment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attachment")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete attachment")
	}
	if err := s.store.Delete(attachment.URL); err != nil {
		s.logger.Warn("failed to remove stored file", zap.String("path", attachment.URL), zap.Error(err))
	}
	return nil
}
