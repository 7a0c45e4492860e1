package book

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedPricer returns the same synthetic values for every id.
type fixedPricer struct {
	s Synthetic
}

func (p fixedPricer) Synthesize(string) Synthetic { return p.s }

func newFixedPricer() fixedPricer {
	return fixedPricer{s: Synthetic{
		Price:   decimal.RequireFromString("19.99"),
		Rating:  4.2,
		Reviews: 1234,
	}}
}

func TestNormalize_FullRecord(t *testing.T) {
	n := NewNormalizer(newFixedPricer())

	b := n.Normalize(Record{
		Key:              "/works/OL123W",
		Title:            "The Hobbit",
		AuthorNames:      []string{"J.R.R. Tolkien", "Someone Else"},
		FirstPublishYear: 1937,
		ISBN:             []string{"9780261102217"},
		CoverID:          42,
		Subjects:         []string{"Fantasy fiction", "Dragons"},
		Publishers:       []string{"Allen & Unwin"},
		PagesMedian:      310,
		Languages:        []string{"eng", "spa"},
		RatingsAverage:   4.6,
		RatingsCount:     900,
		FirstSentences:   []string{"In a hole in the ground there lived a hobbit."},
	})

	assert.Equal(t, "OL123W", b.ID)
	assert.Equal(t, "The Hobbit", b.Title)
	assert.Equal(t, "J.R.R. Tolkien", b.Author)
	assert.Equal(t, CategoryFiction, b.Category)
	assert.True(t, b.Price.Equal(decimal.RequireFromString("19.99")))
	assert.Nil(t, b.OriginalPrice)
	assert.Equal(t, "https://covers.openlibrary.org/b/id/42-L.jpg", b.CoverImage)
	assert.Equal(t, "In a hole in the ground there lived a hobbit.", b.Description)
	assert.Equal(t, "9780261102217", b.ISBN)
	assert.Equal(t, 310, b.Pages)
	assert.Equal(t, LanguageSpanish, b.Language)
	assert.Equal(t, "Allen & Unwin", b.Publisher)
	assert.Equal(t, "1937-01-01", b.PublishDate)
	assert.Equal(t, 4.6, b.Rating)
	assert.Equal(t, 900, b.Reviews)
	assert.True(t, b.InStock)
}

func TestNormalize_MissingFieldsUseDefaults(t *testing.T) {
	n := NewNormalizer(newFixedPricer())

	b := n.Normalize(Record{Key: "/works/OL9W"})

	assert.Equal(t, "OL9W", b.ID)
	assert.Equal(t, UnknownTitle, b.Title)
	assert.Equal(t, UnknownAuthor, b.Author)
	assert.Equal(t, CategoryFiction, b.Category)
	assert.Equal(t, PlaceholderCover, b.CoverImage)
	assert.Equal(t, "A captivating fiction title that will hook you from the very first page.", b.Description)
	assert.Empty(t, b.ISBN)
	assert.Zero(t, b.Pages)
	assert.Equal(t, LanguageEnglish, b.Language)
	assert.Equal(t, UnknownPublisher, b.Publisher)
	assert.Equal(t, DefaultPublish, b.PublishDate)
	assert.Equal(t, 4.2, b.Rating)
	assert.Equal(t, 1234, b.Reviews)
	assert.True(t, b.InStock)
}

func TestNormalize_Clamps(t *testing.T) {
	n := NewNormalizer(newFixedPricer())

	b := n.Normalize(Record{Key: "OL1W", PagesMedian: -5, RatingsAverage: 7.5})

	assert.Zero(t, b.Pages)
	assert.Equal(t, 5.0, b.Rating)
}

func TestNormalize_DiscountCarried(t *testing.T) {
	original := decimal.RequireFromString("20.00")
	n := NewNormalizer(fixedPricer{s: Synthetic{
		Price:         decimal.RequireFromString("17.00"),
		OriginalPrice: &original,
		Rating:        4,
		Reviews:       100,
	}})

	b := n.Normalize(Record{Key: "/works/OL2W"})

	require.NotNil(t, b.OriginalPrice)
	assert.True(t, b.HasDiscount())
	assert.Equal(t, int64(15), b.DiscountPercent())
}

func TestNormalize_DescriptionMentionsCategory(t *testing.T) {
	n := NewNormalizer(newFixedPricer())

	b := n.Normalize(Record{Key: "/works/OL3W", Subjects: []string{"World War history"}})

	assert.Equal(t, CategoryHistory, b.Category)
	assert.Contains(t, b.Description, "history")
}

func TestNormalize_CoversURLOverride(t *testing.T) {
	n := NewNormalizer(newFixedPricer(), WithCoversURL("http://covers.test/"))

	b := n.Normalize(Record{Key: "/works/OL4W", CoverID: 7})

	assert.Equal(t, "http://covers.test/b/id/7-L.jpg", b.CoverImage)
}

func TestNormalize_BlankValuesSkipped(t *testing.T) {
	n := NewNormalizer(newFixedPricer())

	b := n.Normalize(Record{
		Key:         "/works/OL5W",
		Title:       "  ",
		AuthorNames: []string{"", "Second Author"},
	})

	assert.Equal(t, UnknownTitle, b.Title)
	assert.Equal(t, "Second Author", b.Author)
}

func TestNormalizeAll_PreservesOrder(t *testing.T) {
	n := NewNormalizer(newFixedPricer())

	books := n.NormalizeAll([]Record{{Key: "/works/B"}, {Key: "/works/A"}})

	require.Len(t, books, 2)
	assert.Equal(t, "B", books[0].ID)
	assert.Equal(t, "A", books[1].ID)
}

func TestIDFromKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{key: "/works/OL45804W", want: "OL45804W"},
		{key: "OL45804W", want: "OL45804W"},
		{key: "/OL45804W", want: "OL45804W"},
		{key: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, IDFromKey(tt.key))
		})
	}
}

func TestFieldRules_CoverEveryField(t *testing.T) {
	want := []string{
		"id", "title", "author", "category", "price", "coverImage", "description",
		"isbn", "pages", "language", "publisher", "publishDate", "rating", "reviews", "inStock",
	}
	got := make([]string, 0, len(fieldRules))
	for _, r := range fieldRules {
		got = append(got, r.field)
	}
	assert.Equal(t, want, got)
}
