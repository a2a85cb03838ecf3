package folio

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	last     map[Category]string
	existing map[string]bool
	lastErr  error
}

func (m *mockStore) LastFolio(ctx context.Context, category Category) (string, error) {
	if m.lastErr != nil {
		return "", m.lastErr
	}
	return m.last[category], nil
}

func (m *mockStore) Exists(ctx context.Context, category Category, folio string) (bool, error) {
	return m.existing[folio], nil
}

func TestNextSequentialFirstFolio(t *testing.T) {
	gen := NewGenerator(&mockStore{}, Config{})

	cases := map[Category]string{
		CategoryRepair:     "RPR-0001",
		CategoryPreventive: "MANT-0001",
		CategoryCorrective: "SERV-0001",
	}
	for category, want := range cases {
		got, err := gen.Next(context.Background(), category)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestNextSequentialIncrements(t *testing.T) {
	store := &mockStore{last: map[Category]string{
		CategoryRepair:     "RPR-0041",
		CategoryPreventive: "MANT-0999",
	}}
	gen := NewGenerator(store, Config{})

	got, err := gen.Next(context.Background(), CategoryRepair)
	require.NoError(t, err)
	assert.Equal(t, "RPR-0042", got)

	got, err = gen.Next(context.Background(), CategoryPreventive)
	require.NoError(t, err)
	assert.Equal(t, "MANT-1000", got)
}

func TestNextIsIdempotentWithoutWrites(t *testing.T) {
	store := &mockStore{last: map[Category]string{CategoryRepair: "RPR-0007"}}
	gen := NewGenerator(store, Config{})

	first, err := gen.Next(context.Background(), CategoryRepair)
	require.NoError(t, err)
	second, err := gen.Next(context.Background(), CategoryRepair)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestNextInvalidCategory(t *testing.T) {
	gen := NewGenerator(&mockStore{}, Config{})

	_, err := gen.Next(context.Background(), Category("LEASE"))
	assert.ErrorIs(t, err, ErrInvalidCategory)
}

func TestNextMalformedStoredFolio(t *testing.T) {
	store := &mockStore{last: map[Category]string{CategoryRepair: "RPR-00X1"}}
	gen := NewGenerator(store, Config{})

	_, err := gen.Next(context.Background(), CategoryRepair)
	assert.ErrorIs(t, err, ErrMalformedFolio)

	store.last[CategoryRepair] = "RPR"
	_, err = gen.Next(context.Background(), CategoryRepair)
	assert.ErrorIs(t, err, ErrMalformedFolio)
}

func TestNextPropagatesStoreErrors(t *testing.T) {
	boom := errors.New("db down")
	gen := NewGenerator(&mockStore{lastErr: boom}, Config{})

	_, err := gen.Next(context.Background(), CategoryCorrective)
	assert.ErrorIs(t, err, boom)
}

func TestNextRandomFormat(t *testing.T) {
	gen := NewGenerator(&mockStore{}, Config{})
	gen.now = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }

	got, err := gen.Next(context.Background(), CategoryRental)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^RNT-2026-[0-9A-F]{6}$`), got)
}

func TestNextRandomRetriesOnCollision(t *testing.T) {
	// Deterministic random source: first candidate collides, second is free.
	gen := NewGenerator(&mockStore{existing: map[string]bool{"RNT-2026-000000": true}}, Config{})
	gen.now = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }
	gen.random = bytes.NewReader([]byte{0, 0, 0, 0xAB, 0xCD, 0xEF})

	got, err := gen.Next(context.Background(), CategoryRental)
	require.NoError(t, err)
	assert.Equal(t, "RNT-2026-ABCDEF", got)
}

func TestNextRandomExhaustsAttempts(t *testing.T) {
	store := &mockStore{existing: map[string]bool{"RNT-2026-000000": true}}
	gen := NewGenerator(store, Config{RandomMaxAttempts: 3})
	gen.now = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }
	gen.random = bytes.NewReader(make([]byte, 3*3))

	_, err := gen.Next(context.Background(), CategoryRental)
	assert.ErrorIs(t, err, ErrExhausted)
}

func TestPrefix(t *testing.T) {
	prefix, err := Prefix(CategoryRental)
	require.NoError(t, err)
	assert.Equal(t, "RNT", prefix)

	_, err = Prefix(Category("NOPE"))
	assert.ErrorIs(t, err, ErrInvalidCategory)
}
