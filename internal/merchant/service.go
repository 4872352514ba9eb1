package merchant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/MrJamesThe3rd/lumen/internal/account"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=merchant
type Repository interface {
	// FindByName returns the owner's merchant whose normalized name equals name, or
	// contains it, or is contained in it. Exact matches win, then the longest name.
	FindByName(ctx context.Context, owner account.Owner, name string) (*Merchant, error)
	ListByOwner(ctx context.Context, owner account.Owner) ([]*Merchant, error)
	CreateMerchant(ctx context.Context, m *Merchant) error
	AddVariant(ctx context.Context, id uuid.UUID, variant string) error
}

// Resolution is the outcome of resolving a raw counterparty name.
type Resolution struct {
	Merchant *Merchant
	Created  bool
	// Suggestion is a close spelling among the owner's other merchants, set only when
	// a new merchant was created.
	Suggestion *Merchant
}

type Resolver struct {
	repo        Repository
	log         zerolog.Logger
	maxDistance int
}

func NewResolver(repo Repository, log zerolog.Logger) *Resolver {
	return &Resolver{repo: repo, log: log, maxDistance: defaultMaxDistance}
}

// Resolve looks up or lazily creates the merchant for rawName within owner.
// Extra variants (such as a full payment handle) are recorded alongside the raw name.
func (r *Resolver) Resolve(ctx context.Context, rawName string, owner account.Owner, variants ...string) (*Resolution, error) {
	raw := strings.TrimSpace(rawName)

	name := Normalize(raw)
	if name == "" {
		return nil, ErrEmptyName
	}

	seen := make([]string, 0, len(variants)+1)
	seen = append(seen, raw)

	for _, v := range variants {
		if v = strings.TrimSpace(v); v != "" && v != raw {
			seen = append(seen, v)
		}
	}

	m, err := r.repo.FindByName(ctx, owner, name)

	switch {
	case err == nil:
		if err := r.appendVariants(ctx, m, seen); err != nil {
			return nil, err
		}

		return &Resolution{Merchant: m}, nil
	case !errors.Is(err, ErrNotFound):
		return nil, fmt.Errorf("finding merchant: %w", err)
	}

	suggestion := r.suggest(ctx, owner, name)

	m = &Merchant{
		Owner:          owner,
		NormalizedName: name,
		NameVariants:   seen,
	}

	if err := r.repo.CreateMerchant(ctx, m); err != nil {
		return nil, fmt.Errorf("creating merchant: %w", err)
	}

	if suggestion != nil {
		r.log.Info().
			Str("merchant", name).
			Str("similar_to", suggestion.NormalizedName).
			Msg("created merchant close to an existing one")
	}

	return &Resolution{Merchant: m, Created: true, Suggestion: suggestion}, nil
}

func (r *Resolver) appendVariants(ctx context.Context, m *Merchant, variants []string) error {
	for _, v := range variants {
		if m.HasVariant(v) {
			continue
		}

		if err := r.repo.AddVariant(ctx, m.ID, v); err != nil {
			return fmt.Errorf("adding merchant variant: %w", err)
		}

		m.NameVariants = append(m.NameVariants, v)
	}

	return nil
}

// suggest is best-effort; lookup errors only cost the suggestion.
func (r *Resolver) suggest(ctx context.Context, owner account.Owner, name string) *Merchant {
	existing, err := r.repo.ListByOwner(ctx, owner)
	if err != nil {
		r.log.Warn().Err(err).Msg("listing merchants for suggestion")
		return nil
	}

	return Nearest(name, existing, r.maxDistance)
}
