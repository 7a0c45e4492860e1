package book

import (
	"fmt"
	"strings"
)

// Defaults applied when a source record lacks a field.
const (
	UnknownTitle     = "Untitled"
	UnknownAuthor    = "Unknown Author"
	UnknownPublisher = "Unknown Publisher"
	DefaultPublish   = "2020-01-01"

	DefaultCoversURL  = "https://covers.openlibrary.org"
	PlaceholderCover  = "https://images.unsplash.com/photo-1544947950-fa07a98d237f?w=400&h=600&fit=crop"
	workKeyPrefix     = "/works/"
	descriptionFormat = "A captivating %s title that will hook you from the very first page."
)

// Record is a raw catalog record as returned by the provider. Zero values mean
// the provider did not supply the field.
type Record struct {
	Key              string
	Title            string
	AuthorNames      []string
	FirstPublishYear int
	ISBN             []string
	CoverID          int64
	Subjects         []string
	Publishers       []string
	PagesMedian      int
	Languages        []string
	RatingsAverage   float64
	RatingsCount     int
	FirstSentences   []string
}

// IDFromKey strips the work prefix from a provider key. The result is stable
// for a given key and safe to use as a URL path segment.
func IDFromKey(key string) string {
	id := strings.TrimPrefix(key, workKeyPrefix)
	return strings.Trim(id, "/")
}

// Normalizer converts provider records into Books.
type Normalizer struct {
	pricer    Pricer
	coversURL string
}

// NormalizerOption configures a Normalizer.
type NormalizerOption func(*Normalizer)

// WithCoversURL overrides the cover image host.
func WithCoversURL(u string) NormalizerOption {
	return func(n *Normalizer) {
		if u != "" {
			n.coversURL = strings.TrimRight(u, "/")
		}
	}
}

// NewNormalizer returns a Normalizer drawing synthetic fields from pricer.
func NewNormalizer(pricer Pricer, opts ...NormalizerOption) *Normalizer {
	n := &Normalizer{pricer: pricer, coversURL: DefaultCoversURL}
	for _, o := range opts {
		o(n)
	}
	return n
}

// fieldRule fills one Book field from a record, falling back to a default.
type fieldRule struct {
	field string
	apply func(n *Normalizer, b *Book, r Record, s Synthetic)
}

// fieldRules is the defaulting table. Rules run in order; description reads
// the category, so category comes first.
var fieldRules = []fieldRule{
	{"id", func(_ *Normalizer, b *Book, r Record, _ Synthetic) {
		b.ID = IDFromKey(r.Key)
	}},
	{"title", func(_ *Normalizer, b *Book, r Record, _ Synthetic) {
		b.Title = firstOr([]string{r.Title}, UnknownTitle)
	}},
	{"author", func(_ *Normalizer, b *Book, r Record, _ Synthetic) {
		b.Author = firstOr(r.AuthorNames, UnknownAuthor)
	}},
	{"category", func(_ *Normalizer, b *Book, r Record, _ Synthetic) {
		b.Category = CategoryFromSubject(firstOr(r.Subjects, string(DefaultCategory)))
	}},
	{"price", func(_ *Normalizer, b *Book, _ Record, s Synthetic) {
		b.Price = s.Price
		b.OriginalPrice = s.OriginalPrice
	}},
	{"coverImage", func(n *Normalizer, b *Book, r Record, _ Synthetic) {
		if r.CoverID > 0 {
			b.CoverImage = fmt.Sprintf("%s/b/id/%d-L.jpg", n.coversURL, r.CoverID)
			return
		}
		b.CoverImage = PlaceholderCover
	}},
	{"description", func(_ *Normalizer, b *Book, r Record, _ Synthetic) {
		b.Description = firstOr(r.FirstSentences, fmt.Sprintf(descriptionFormat, strings.ToLower(string(b.Category))))
	}},
	{"isbn", func(_ *Normalizer, b *Book, r Record, _ Synthetic) {
		b.ISBN = firstOr(r.ISBN, "")
	}},
	{"pages", func(_ *Normalizer, b *Book, r Record, _ Synthetic) {
		b.Pages = max(r.PagesMedian, 0)
	}},
	{"language", func(_ *Normalizer, b *Book, r Record, _ Synthetic) {
		b.Language = languageFromCodes(r.Languages)
	}},
	{"publisher", func(_ *Normalizer, b *Book, r Record, _ Synthetic) {
		b.Publisher = firstOr(r.Publishers, UnknownPublisher)
	}},
	{"publishDate", func(_ *Normalizer, b *Book, r Record, _ Synthetic) {
		if r.FirstPublishYear > 0 {
			b.PublishDate = fmt.Sprintf("%04d-01-01", r.FirstPublishYear)
			return
		}
		b.PublishDate = DefaultPublish
	}},
	{"rating", func(_ *Normalizer, b *Book, r Record, s Synthetic) {
		if r.RatingsAverage > 0 {
			b.Rating = min(r.RatingsAverage, 5)
			return
		}
		b.Rating = s.Rating
	}},
	{"reviews", func(_ *Normalizer, b *Book, r Record, s Synthetic) {
		if r.RatingsCount > 0 {
			b.Reviews = r.RatingsCount
			return
		}
		b.Reviews = s.Reviews
	}},
	{"inStock", func(_ *Normalizer, b *Book, _ Record, _ Synthetic) {
		b.InStock = true
	}},
}

// Normalize builds a fully populated Book from r. It never fails: missing
// fields degrade to the defaults in fieldRules.
func (n *Normalizer) Normalize(r Record) Book {
	s := n.pricer.Synthesize(IDFromKey(r.Key))

	var b Book
	for _, rule := range fieldRules {
		rule.apply(n, &b, r, s)
	}
	return b
}

// NormalizeAll normalizes every record in order.
func (n *Normalizer) NormalizeAll(records []Record) []Book {
	books := make([]Book, len(records))
	for i, r := range records {
		books[i] = n.Normalize(r)
	}
	return books
}

// firstOr returns the first non-blank value or def.
func firstOr(values []string, def string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return def
}
