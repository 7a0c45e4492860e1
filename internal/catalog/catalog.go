// Package catalog composes provider queries into storefront listings.
//
// Provider failures never escape: listings degrade to empty results and
// lookups to "not found", with the cause logged.
package catalog

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/bookstore/internal/domain/book"
)

// Provider is the upstream catalog source.
type Provider interface {
	Search(ctx context.Context, query string, limit int) ([]book.Record, error)
	Work(ctx context.Context, id string) (*book.Record, error)
}

// Listing defaults.
const (
	DefaultQuery   = "fantasy"
	DefaultLimit   = 40
	FeaturedQuery  = "fantasy"
	FeaturedLimit  = 10
	ArrivalsLimit  = 10
	ArrivalsTotal  = 40
	RelatedLimit   = 4
	maxSearchLimit = 100
)

// ArrivalQueries are issued concurrently by NewArrivals, in display order.
var ArrivalQueries = []string{"fantasy", "romance", "adventure", "young adult"}

// Catalog answers storefront queries.
type Catalog struct {
	provider   Provider
	normalizer *book.Normalizer
	lg         *zap.Logger
}

// New returns a Catalog over provider.
func New(provider Provider, normalizer *book.Normalizer, lg *zap.Logger) *Catalog {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Catalog{provider: provider, normalizer: normalizer, lg: lg}
}

// Search runs a full-text query. A blank term searches DefaultQuery and a
// non-positive limit means DefaultLimit. Records without a cover or title are
// skipped.
func (c *Catalog) Search(ctx context.Context, term string, limit int) []book.Book {
	books, err := c.search(ctx, term, limit)
	if err != nil {
		c.lg.Warn("Catalog search failed",
			zap.String("query", term),
			zap.Int("limit", limit),
			zap.Error(err),
		)
		return []book.Book{}
	}
	return books
}

func (c *Catalog) search(ctx context.Context, term string, limit int) ([]book.Book, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		term = DefaultQuery
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	limit = min(limit, maxSearchLimit)

	records, err := c.provider.Search(ctx, term, limit)
	if err != nil {
		return nil, err
	}

	books := make([]book.Book, 0, len(records))
	for _, r := range records {
		if r.CoverID <= 0 || strings.TrimSpace(r.Title) == "" {
			continue
		}
		books = append(books, c.normalizer.Normalize(r))
	}
	return book.Dedupe(books), nil
}

// ByCategory lists books for category. CategoryAll lists the default query.
func (c *Catalog) ByCategory(ctx context.Context, category book.Category) []book.Book {
	return c.Search(ctx, category.QueryTerm(), DefaultLimit)
}

// Featured lists the home page highlights.
func (c *Catalog) Featured(ctx context.Context) []book.Book {
	return c.Search(ctx, FeaturedQuery, FeaturedLimit)
}

// NewArrivals runs ArrivalQueries concurrently and joins whatever succeeds.
// Results keep query order, are deduplicated and capped at ArrivalsTotal.
func (c *Catalog) NewArrivals(ctx context.Context) []book.Book {
	results := make([][]book.Book, len(ArrivalQueries))

	var g errgroup.Group
	for i, q := range ArrivalQueries {
		g.Go(func() error {
			books, err := c.search(ctx, q, ArrivalsLimit)
			if err != nil {
				// A failed query contributes nothing.
				c.lg.Warn("New arrivals query failed", zap.String("query", q), zap.Error(err))
				return nil
			}
			results[i] = books
			return nil
		})
	}
	_ = g.Wait()

	var all []book.Book
	for _, r := range results {
		all = append(all, r...)
	}
	all = book.Dedupe(all)
	if len(all) > ArrivalsTotal {
		all = all[:ArrivalsTotal]
	}
	return all
}

// ByID looks up a single book. It reports false when the lookup fails or the
// work does not exist.
func (c *Catalog) ByID(ctx context.Context, id string) (*book.Book, bool) {
	id = book.IDFromKey(id)
	r, err := c.provider.Work(ctx, id)
	if err != nil || r == nil {
		if err != nil {
			c.lg.Info("Book lookup failed", zap.String("id", id), zap.Error(err))
		}
		return nil, false
	}
	b := c.normalizer.Normalize(*r)
	return &b, true
}

// Related lists up to limit other books from the category of b.
func (c *Catalog) Related(ctx context.Context, b book.Book, limit int) []book.Book {
	if limit <= 0 {
		limit = RelatedLimit
	}
	candidates := c.Search(ctx, b.Category.QueryTerm(), limit+1)

	related := make([]book.Book, 0, limit)
	for _, cand := range candidates {
		if cand.ID == b.ID {
			continue
		}
		related = append(related, cand)
		if len(related) == limit {
			break
		}
	}
	return related
}
