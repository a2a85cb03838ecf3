package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mycad-io/fleet-api/internal/models"
	"github.com/mycad-io/fleet-api/internal/query"
	appErrors "github.com/mycad-io/fleet-api/pkg/errors"
)

type clientRepoMock struct {
	clients    map[string]*models.Client
	emailTaken bool
	renting    bool
	deletedID  string
}

func newClientRepoMock() *clientRepoMock {
	return &clientRepoMock{clients: map[string]*models.Client{}}
}

func (m *clientRepoMock) Search(ctx context.Context, req query.Request) (query.Page[models.Client], error) {
	return query.Page[models.Client]{Data: []models.Client{}, Pagination: models.NewPagination(0, req.Page, req.PageSize)}, nil
}

func (m *clientRepoMock) FindByID(ctx context.Context, id string) (*models.Client, error) {
	client, ok := m.clients[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *client
	return &copied, nil
}

func (m *clientRepoMock) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	return m.emailTaken, nil
}

func (m *clientRepoMock) Create(ctx context.Context, client *models.Client) error {
	if client.ID == "" {
		client.ID = "cli-new"
	}
	m.clients[client.ID] = client
	return nil
}

func (m *clientRepoMock) Update(ctx context.Context, client *models.Client) error {
	m.clients[client.ID] = client
	return nil
}

func (m *clientRepoMock) Delete(ctx context.Context, id string) error {
	m.deletedID = id
	return nil
}

func (m *clientRepoMock) HasActiveRentals(ctx context.Context, id string) (bool, error) {
	return m.renting, nil
}

func newClientServiceForTest(repo *clientRepoMock) *ClientService {
	return NewClientService(repo, nil, zap.NewNop())
}

func TestClientServiceCreate(t *testing.T) {
	repo := newClientRepoMock()
	svc := newClientServiceForTest(repo)

	client, err := svc.Create(context.Background(), ClientRequest{
		Name:  "Acme SA",
		Email: "contact@acme.mx",
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme SA", client.Name)
	assert.True(t, client.Enabled)
}

func TestClientServiceCreateRejectsBadEmail(t *testing.T) {
	svc := newClientServiceForTest(newClientRepoMock())

	_, err := svc.Create(context.Background(), ClientRequest{Name: "Acme SA", Email: "not-an-email"})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestClientServiceCreateDuplicateEmail(t *testing.T) {
	repo := newClientRepoMock()
	repo.emailTaken = true
	svc := newClientServiceForTest(repo)

	_, err := svc.Create(context.Background(), ClientRequest{Name: "Acme SA", Email: "contact@acme.mx"})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestClientServiceDeleteRejectsActiveRentals(t *testing.T) {
	repo := newClientRepoMock()
	repo.clients["cli-1"] = &models.Client{ID: "cli-1", Name: "Acme SA", Enabled: true}
	repo.renting = true
	svc := newClientServiceForTest(repo)

	err := svc.Delete(context.Background(), "cli-1")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Empty(t, repo.deletedID)
}

func TestClientServiceDelete(t *testing.T) {
	repo := newClientRepoMock()
	repo.clients["cli-1"] = &models.Client{ID: "cli-1", Name: "Acme SA", Enabled: true}
	svc := newClientServiceForTest(repo)

	require.NoError(t, svc.Delete(context.Background(), "cli-1"))
	assert.Equal(t, "cli-1", repo.deletedID)
}
