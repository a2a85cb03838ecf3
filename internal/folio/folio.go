package folio

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Category identifies the record family a folio is minted for.
type Category string

const (
	CategoryRepair     Category = "REPAIR"
	CategoryPreventive Category = "PREVENTIVE"
	CategoryCorrective Category = "CORRECTIVE"
	CategoryRental     Category = "RENTAL"
)

// Sentinel errors surfaced by the generator. Services translate these into
// HTTP-aware errors.
var (
	// ErrInvalidCategory is returned for categories outside the closed set.
	ErrInvalidCategory = errors.New("folio: unrecognized category")
	// ErrMalformedFolio is returned when the last stored folio's suffix does
	// not parse as an integer. The store was edited out of band; minting from
	// a defaulted counter could collide, so generation aborts.
	ErrMalformedFolio = errors.New("folio: stored folio suffix is not numeric")
	// ErrExhausted is returned when the random policy cannot find a free
	// suffix within the configured attempt budget.
	ErrExhausted = errors.New("folio: space exhausted")
)

type policyKind int

const (
	// sequential folios read the last issued folio and increment its
	// zero-padded numeric suffix: RPR-0001, RPR-0002, ...
	sequential policyKind = iota
	// randomYearly folios embed the year and a random hex suffix retried
	// against a uniqueness check: RNT-2026-A3F09B.
	randomYearly
)

type policy struct {
	prefix string
	kind   policyKind
}

// policies is the closed category table. Adding a category means adding a
// Category constant and a row here.
var policies = map[Category]policy{
	CategoryRepair:     {prefix: "RPR", kind: sequential},
	CategoryPreventive: {prefix: "MANT", kind: sequential},
	CategoryCorrective: {prefix: "SERV", kind: sequential},
	CategoryRental:     {prefix: "RNT", kind: randomYearly},
}

// Prefix returns the folio prefix for a category.
func Prefix(category Category) (string, error) {
	p, ok := policies[category]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}
	return p.prefix, nil
}

// Store provides the read capabilities the generator needs. Implementations
// back onto the table owning the category's records.
type Store interface {
	// LastFolio returns the greatest folio issued for the category ordered by
	// folio descending, or "" when the category has no records yet.
	LastFolio(ctx context.Context, category Category) (string, error)
	// Exists reports whether the folio is already assigned within the category.
	Exists(ctx context.Context, category Category, folio string) (bool, error)
}

// Config tunes generator behaviour.
type Config struct {
	// RandomMaxAttempts caps the random policy's collision retries.
	RandomMaxAttempts int
}

// Generator mints business folios per category.
//
// Sequential generation is read-then-increment with no locking: two
// concurrent calls for the same category can compute the same folio. The
// unique constraint on the folio column is the backstop; callers should
// retry the create on a uniqueness violation.
type Generator struct {
	store       Store
	maxAttempts int

	// injectable for tests
	now    func() time.Time
	random io.Reader
}

// NewGenerator constructs a Generator over the provided store.
func NewGenerator(store Store, cfg Config) *Generator {
	attempts := cfg.RandomMaxAttempts
	if attempts <= 0 {
		attempts = 10
	}
	return &Generator{
		store:       store,
		maxAttempts: attempts,
		now:         time.Now,
		random:      rand.Reader,
	}
}

// Next returns a new folio for the category. The folio is not persisted by
// this call; the caller persists the owning record with it.
func (g *Generator) Next(ctx context.Context, category Category) (string, error) {
	p, ok := policies[category]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}

	switch p.kind {
	case randomYearly:
		return g.nextRandom(ctx, category, p.prefix)
	default:
		return g.nextSequential(ctx, category, p.prefix)
	}
}

func (g *Generator) nextSequential(ctx context.Context, category Category, prefix string) (string, error) {
	last, err := g.store.LastFolio(ctx, category)
	if err != nil {
		return "", fmt.Errorf("read last folio for %s: %w", category, err)
	}

	lastNumber := 0
	if last != "" {
		lastNumber, err = parseSuffix(last)
		if err != nil {
			return "", err
		}
	}

	return fmt.Sprintf("%s-%04d", prefix, lastNumber+1), nil
}

func (g *Generator) nextRandom(ctx context.Context, category Category, prefix string) (string, error) {
	year := g.now().Year()
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		buf := make([]byte, 3)
		if _, err := io.ReadFull(g.random, buf); err != nil {
			return "", fmt.Errorf("read random suffix: %w", err)
		}
		candidate := fmt.Sprintf("%s-%d-%s", prefix, year, strings.ToUpper(hex.EncodeToString(buf)))

		exists, err := g.store.Exists(ctx, category, candidate)
		if err != nil {
			return "", fmt.Errorf("check folio uniqueness: %w", err)
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %d attempts for %s", ErrExhausted, g.maxAttempts, category)
}

// parseSuffix extracts the numeric tail of a folio such as RPR-0012.
func parseSuffix(folio string) (int, error) {
	idx := strings.LastIndex(folio, "-")
	if idx < 0 || idx == len(folio)-1 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedFolio, folio)
	}
	n, err := strconv.Atoi(folio[idx+1:])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedFolio, folio)
	}
	return n, nil
}
