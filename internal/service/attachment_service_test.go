package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mycad-io/fleet-api/internal/models"
	appErrors "github.com/mycad-io/fleet-api/pkg/errors"
	"github.com/mycad-io/fleet-api/pkg/storage"
)

type attachmentRepoMock struct {
	attachments map[string]*models.Attachment
	ownerKnown  bool
	deletedID   string
}

func newAttachmentRepoMock() *attachmentRepoMock {
	return &attachmentRepoMock{attachments: map[string]*models.Attachment{}, ownerKnown: true}
}

func (m *attachmentRepoMock) Create(ctx context.Context, attachment *models.Attachment) error {
	if attachment.ID == "" {
		attachment.ID = "att-new"
	}
	m.attachments[attachment.ID] = attachment
	return nil
}

func (m *attachmentRepoMock) FindByID(ctx context.Context, id string) (*models.Attachment, error) {
	attachment, ok := m.attachments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return attachment, nil
}

func (m *attachmentRepoMock) ListByOwner(ctx context.Context, ownerType models.AttachmentOwner, ownerID string) ([]models.Attachment, error) {
	out := make([]models.Attachment, 0)
	for _, a := range m.attachments {
		if a.OwnerType == ownerType && a.OwnerID == ownerID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *attachmentRepoMock) OwnerExists(ctx context.Context, ownerType models.AttachmentOwner, ownerID string) (bool, error) {
	return m.ownerKnown, nil
}

func (m *attachmentRepoMock) Delete(ctx context.Context, id string) error {
	m.deletedID = id
	delete(m.attachments, id)
	return nil
}

func newAttachmentServiceForTest(t *testing.T, repo *attachmentRepoMock) *AttachmentService {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("secret", time.Hour)
	cfg := AttachmentConfig{
		MaxFileSizeBytes: 1024,
		AllowedMIMEs:     []string{"image/png", "application/pdf"},
	}
	return NewAttachmentService(repo, store, signer, cfg, zap.NewNop())
}

func TestAttachmentServiceUpload(t *testing.T) {
	repo := newAttachmentRepoMock()
	svc := newAttachmentServiceForTest(t, repo)

	attachment, err := svc.Upload(context.Background(), UploadRequest{
		OwnerType:    models.AttachmentOwnerRental,
		OwnerID:      "ren-1",
		OriginalName: "contract.pdf",
		MimeType:     "application/pdf",
		Size:         12,
		Body:         strings.NewReader("pdf contents"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.AttachmentOwnerRental, attachment.OwnerType)
	assert.Contains(t, attachment.URL, "contract.pdf")
	assert.Contains(t, string(attachment.Metadata), "contract.pdf")
	assert.Contains(t, repo.attachments, attachment.ID)
}

func TestAttachmentServiceUploadRejectsMime(t *testing.T) {
	svc := newAttachmentServiceForTest(t, newAttachmentRepoMock())

	_, err := svc.Upload(context.Background(), UploadRequest{
		OwnerType:    models.AttachmentOwnerRental,
		OwnerID:      "ren-1",
		OriginalName: "virus.exe",
		MimeType:     "application/x-msdownload",
		Size:         10,
		Body:         strings.NewReader("MZ"),
	})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrUnsupportedMedia.Code, appErr.Code)
	assert.Equal(t, 415, appErr.Status)
}

func TestAttachmentServiceUploadRejectsOversize(t *testing.T) {
	svc := newAttachmentServiceForTest(t, newAttachmentRepoMock())

	_, err := svc.Upload(context.Background(), UploadRequest{
		OwnerType:    models.AttachmentOwnerRental,
		OwnerID:      "ren-1",
		OriginalName: "big.png",
		MimeType:     "image/png",
		Size:         4096,
		Body:         strings.NewReader(strings.Repeat("x", 4096)),
	})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrFileTooLarge.Code, appErr.Code)
	assert.Equal(t, 413, appErr.Status)
}

func TestAttachmentServiceUploadRejectsLyingContentLength(t *testing.T) {
	repo := newAttachmentRepoMock()
	svc := newAttachmentServiceForTest(t, repo)

	_, err := svc.Upload(context.Background(), UploadRequest{
		OwnerType:    models.AttachmentOwnerRental,
		OwnerID:      "ren-1",
		OriginalName: "sneaky.png",
		MimeType:     "image/png",
		Size:         10,
		Body:         strings.NewReader(strings.Repeat("x", 4096)),
	})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrFileTooLarge.Code, appErr.Code)
	assert.Empty(t, repo.attachments)
}

func TestAttachmentServiceUploadRejectsMissingOwner(t *testing.T) {
	repo := newAttachmentRepoMock()
	repo.ownerKnown = false
	svc := newAttachmentServiceForTest(t, repo)

	_, err := svc.Upload(context.Background(), UploadRequest{
		OwnerType:    models.AttachmentOwnerRepairReport,
		OwnerID:      "rep-missing",
		OriginalName: "photo.png",
		MimeType:     "image/png",
		Size:         4,
		Body:         strings.NewReader("data"),
	})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestAttachmentServiceSignedURLRoundTrip(t *testing.T) {
	repo := newAttachmentRepoMock()
	svc := newAttachmentServiceForTest(t, repo)

	attachment, err := svc.Upload(context.Background(), UploadRequest{
		OwnerType:    models.AttachmentOwnerServiceReport,
		OwnerID:      "srv-1",
		OriginalName: "invoice.pdf",
		MimeType:     "application/pdf",
		Size:         7,
		Body:         strings.NewReader("invoice"),
	})
	require.NoError(t, err)

	token, expiresAt, err := svc.SignedURL(context.Background(), attachment.ID)
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	resolved, file, err := svc.OpenByToken(context.Background(), token)
	require.NoError(t, err)
	defer file.Close()
	assert.Equal(t, attachment.ID, resolved.ID)
}

func TestAttachmentServiceDeleteRemovesFile(t *testing.T) {
	repo := newAttachmentRepoMock()
	svc := newAttachmentServiceForTest(t, repo)

	attachment, err := svc.Upload(context.Background(), UploadRequest{
		OwnerType:    models.AttachmentOwnerRental,
		OwnerID:      "ren-1",
		OriginalName: "photo.png",
		MimeType:     "image/png",
		Size:         4,
		Body:         strings.NewReader("data"),
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), attachment.ID))
	assert.Equal(t, attachment.ID, repo.deletedID)

	_, _, err = svc.SignedURL(context.Background(), attachment.ID)
	require.Error(t, err)
}
