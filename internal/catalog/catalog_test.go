package catalog

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xenking/bookstore/internal/domain/book"
)

// --- Mock implementations ---

type searchCall struct {
	query string
	limit int
}

type mockProvider struct {
	mu      sync.Mutex
	results map[string][]book.Record
	errs    map[string]error
	calls   []searchCall

	work    *book.Record
	workErr error
}

func (m *mockProvider) Search(_ context.Context, query string, limit int) ([]book.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, searchCall{query: query, limit: limit})
	if err := m.errs[query]; err != nil {
		return nil, err
	}
	return m.results[query], nil
}

func (m *mockProvider) Work(context.Context, string) (*book.Record, error) {
	return m.work, m.workErr
}

// --- Helpers ---

func rec(id string) book.Record {
	return book.Record{Key: "/works/" + id, Title: "Title " + id, CoverID: 1}
}

func recs(prefix string, n int) []book.Record {
	out := make([]book.Record, n)
	for i := range out {
		out[i] = rec(fmt.Sprintf("%s%d", prefix, i))
	}
	return out
}

func newTestCatalog(t *testing.T, p Provider) *Catalog {
	return New(p, book.NewNormalizer(book.SeededPricer{}), zaptest.NewLogger(t))
}

func ids(books []book.Book) []string {
	out := make([]string, len(books))
	for i, b := range books {
		out[i] = b.ID
	}
	return out
}

// --- Tests ---

func TestSearch_Defaults(t *testing.T) {
	p := &mockProvider{}
	c := newTestCatalog(t, p)

	books := c.Search(context.Background(), "   ", 0)

	assert.NotNil(t, books)
	assert.Empty(t, books)
	require.Len(t, p.calls, 1)
	assert.Equal(t, searchCall{query: "fantasy", limit: 40}, p.calls[0])
}

func TestSearch_SkipsRecordsWithoutCoverOrTitle(t *testing.T) {
	noCover := rec("B")
	noCover.CoverID = 0
	noTitle := rec("C")
	noTitle.Title = ""
	p := &mockProvider{results: map[string][]book.Record{
		"dune": {rec("A"), noCover, noTitle, rec("D")},
	}}

	books := newTestCatalog(t, p).Search(context.Background(), "dune", 10)

	assert.Equal(t, []string{"A", "D"}, ids(books))
}

func TestSearch_DuplicateKeysYieldOneBook(t *testing.T) {
	first := rec("OL1W")
	first.Title = "First"
	second := rec("OL1W")
	second.Title = "Second"
	p := &mockProvider{results: map[string][]book.Record{"q": {first, second}}}

	books := newTestCatalog(t, p).Search(context.Background(), "q", 10)

	require.Len(t, books, 1)
	assert.Equal(t, "OL1W", books[0].ID)
	assert.Equal(t, "First", books[0].Title)
}

func TestSearch_ProviderErrorYieldsEmpty(t *testing.T) {
	p := &mockProvider{errs: map[string]error{"q": errors.New("connection reset")}}

	books := newTestCatalog(t, p).Search(context.Background(), "q", 10)

	assert.NotNil(t, books)
	assert.Empty(t, books)
}

func TestByCategory_UsesQueryTable(t *testing.T) {
	tests := []struct {
		category book.Category
		query    string
	}{
		{category: book.CategoryScience, query: "science fiction"},
		{category: book.CategorySelfHelp, query: "self help"},
		{category: book.CategoryJuvenile, query: "young adult"},
		{category: book.CategoryAll, query: "fiction"},
	}
	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			p := &mockProvider{}
			newTestCatalog(t, p).ByCategory(context.Background(), tt.category)

			require.Len(t, p.calls, 1)
			assert.Equal(t, searchCall{query: tt.query, limit: 40}, p.calls[0])
		})
	}
}

func TestFeatured(t *testing.T) {
	p := &mockProvider{results: map[string][]book.Record{"fantasy": recs("F", 3)}}

	books := newTestCatalog(t, p).Featured(context.Background())

	assert.Len(t, books, 3)
	assert.Equal(t, []searchCall{{query: "fantasy", limit: 10}}, p.calls)
}

func TestNewArrivals_OrderDedupeAndCap(t *testing.T) {
	p := &mockProvider{results: map[string][]book.Record{
		"fantasy":     append(recs("fa", 10), rec("shared")),
		"romance":     append([]book.Record{rec("shared")}, recs("ro", 10)...),
		"adventure":   recs("ad", 10),
		"young adult": recs("ya", 10),
	}}

	books := newTestCatalog(t, p).NewArrivals(context.Background())

	require.Len(t, books, ArrivalsTotal)
	got := ids(books)
	assert.Equal(t, "fa0", got[0])
	assert.Equal(t, "shared", got[10])
	assert.Equal(t, "ro0", got[11])
	assert.Equal(t, "ad0", got[21])
	assert.Equal(t, "ya0", got[31])
	assert.Len(t, p.calls, 4)
	for _, call := range p.calls {
		assert.Equal(t, ArrivalsLimit, call.limit)
	}
}

func TestNewArrivals_PartialFailure(t *testing.T) {
	p := &mockProvider{
		results: map[string][]book.Record{
			"fantasy":     recs("fa", 2),
			"adventure":   recs("ad", 2),
			"young adult": recs("ya", 2),
		},
		errs: map[string]error{"romance": errors.New("timeout")},
	}

	books := newTestCatalog(t, p).NewArrivals(context.Background())

	assert.Equal(t, []string{"fa0", "fa1", "ad0", "ad1", "ya0", "ya1"}, ids(books))
}

func TestNewArrivals_AllFail(t *testing.T) {
	boom := errors.New("down")
	p := &mockProvider{errs: map[string]error{
		"fantasy": boom, "romance": boom, "adventure": boom, "young adult": boom,
	}}

	assert.Empty(t, newTestCatalog(t, p).NewArrivals(context.Background()))
}

func TestByID(t *testing.T) {
	r := rec("OL45804W")
	p := &mockProvider{work: &r}

	b, ok := newTestCatalog(t, p).ByID(context.Background(), "OL45804W")

	require.True(t, ok)
	assert.Equal(t, "OL45804W", b.ID)
	assert.True(t, b.InStock)
}

func TestByID_FailureIsNotFound(t *testing.T) {
	p := &mockProvider{workErr: errors.New("502")}

	b, ok := newTestCatalog(t, p).ByID(context.Background(), "OL1W")

	assert.False(t, ok)
	assert.Nil(t, b)
}

func TestByID_SamePriceAsListing(t *testing.T) {
	r := rec("OL7W")
	p := &mockProvider{work: &r, results: map[string][]book.Record{"q": {r}}}
	c := newTestCatalog(t, p)

	listed := c.Search(context.Background(), "q", 10)
	detail, ok := c.ByID(context.Background(), "OL7W")

	require.True(t, ok)
	require.Len(t, listed, 1)
	assert.True(t, listed[0].Price.Equal(detail.Price))
}

func TestRelated_ExcludesSelf(t *testing.T) {
	p := &mockProvider{results: map[string][]book.Record{
		"history": {rec("self"), rec("a"), rec("b"), rec("c"), rec("d")},
	}}
	self := book.Book{ID: "self", Category: book.CategoryHistory}

	related := newTestCatalog(t, p).Related(context.Background(), self, 0)

	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(related))
	assert.Equal(t, []searchCall{{query: "history", limit: 5}}, p.calls)
}
