package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mycad-io/fleet-api/internal/folio"
	appErrors "github.com/mycad-io/fleet-api/pkg/errors"
)

// memoryFolioStore keeps issued folios per category in memory.
type memoryFolioStore struct {
	last   map[folio.Category]string
	issued map[string]bool
}

func newMemoryFolioStore() *memoryFolioStore {
	return &memoryFolioStore{
		last:   map[folio.Category]string{},
		issued: map[string]bool{},
	}
}

func (s *memoryFolioStore) LastFolio(ctx context.Context, category folio.Category) (string, error) {
	return s.last[category], nil
}

func (s *memoryFolioStore) Exists(ctx context.Context, category folio.Category, f string) (bool, error) {
	return s.issued[f], nil
}

func (s *memoryFolioStore) record(category folio.Category, f string) {
	s.last[category] = f
	s.issued[f] = true
}

func newFolioServiceForTest(store folio.Store) *FolioService {
	gen := folio.NewGenerator(store, folio.Config{RandomMaxAttempts: 5})
	return NewFolioService(gen, zap.NewNop())
}

func TestFolioServiceSequentialChain(t *testing.T) {
	store := newMemoryFolioStore()
	svc := newFolioServiceForTest(store)

	for i := 1; i <= 3; i++ {
		issued, err := svc.Next(context.Background(), folio.CategoryRepair)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("RPR-%04d", i), issued)
		store.record(folio.CategoryRepair, issued)
	}
}

func TestFolioServicePrefixPerCategory(t *testing.T) {
	store := newMemoryFolioStore()
	svc := newFolioServiceForTest(store)

	preventive, err := svc.Next(context.Background(), folio.CategoryPreventive)
	require.NoError(t, err)
	assert.Equal(t, "MANT-0001", preventive)

	corrective, err := svc.Next(context.Background(), folio.CategoryCorrective)
	require.NoError(t, err)
	assert.Equal(t, "SERV-0001", corrective)

	rental, err := svc.Next(context.Background(), folio.CategoryRental)
	require.NoError(t, err)
	assert.Regexp(t, `^RNT-\d{4}-[0-9A-F]{6}$`, rental)
}

func TestFolioServiceInvalidCategory(t *testing.T) {
	svc := newFolioServiceForTest(newMemoryFolioStore())

	_, err := svc.Next(context.Background(), folio.Category("INSURANCE"))
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrInvalidFolioCategory.Code, appErr.Code)
	assert.Equal(t, 400, appErr.Status)
}

type malformedFolioStore struct{ memoryFolioStore }

func (malformedFolioStore) LastFolio(ctx context.Context, category folio.Category) (string, error) {
	return "RPR-XYZ", nil
}

func TestFolioServiceMalformedStoredFolio(t *testing.T) {
	svc := newFolioServiceForTest(&malformedFolioStore{})

	_, err := svc.Next(context.Background(), folio.CategoryRepair)
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrMalformedFolio.Code, appErr.Code)
	assert.Equal(t, 500, appErr.Status)
}

type saturatedFolioStore struct{ memoryFolioStore }

func (saturatedFolioStore) Exists(ctx context.Context, category folio.Category, f string) (bool, error) {
	return true, nil
}

func TestFolioServiceExhaustedRandomSpace(t *testing.T) {
	svc := newFolioServiceForTest(&saturatedFolioStore{})

	_, err := svc.Next(context.Background(), folio.CategoryRental)
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrFolioExhausted.Code, appErr.Code)
	assert.Equal(t, 503, appErr.Status)
}
