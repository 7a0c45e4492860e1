package book

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestSeededPricer_StablePerID(t *testing.T) {
	p := SeededPricer{}

	a := p.Synthesize("OL45804W")
	b := p.Synthesize("OL45804W")

	assert.True(t, a.Price.Equal(b.Price))
	assert.Equal(t, a.Rating, b.Rating)
	assert.Equal(t, a.Reviews, b.Reviews)
	assert.Equal(t, a.OriginalPrice == nil, b.OriginalPrice == nil)
}

func TestRandomPricer_Deterministic(t *testing.T) {
	a := NewRandomPricer(7).Synthesize("x")
	b := NewRandomPricer(7).Synthesize("y")

	assert.True(t, a.Price.Equal(b.Price), "same seed draws the same sequence")
}

func TestNewPricer(t *testing.T) {
	assert.IsType(t, SeededPricer{}, NewPricer(PricingSeeded))
	assert.IsType(t, SeededPricer{}, NewPricer("bogus"))
	assert.IsType(t, &RandomPricer{}, NewPricer(PricingRandom))
}

func TestSynthesize_Ranges(t *testing.T) {
	minPrice := decimal.RequireFromString("8.50")
	maxPrice := decimal.NewFromInt(35)

	rapid.Check(t, func(t *rapid.T) {
		id := rapid.StringMatching(`OL[0-9]{1,8}W`).Draw(t, "id")
		s := SeededPricer{}.Synthesize(id)

		if s.Price.LessThan(minPrice) || s.Price.GreaterThan(maxPrice) {
			t.Fatalf("price %s out of range", s.Price)
		}
		if !s.Price.Equal(s.Price.Round(2)) {
			t.Fatalf("price %s not rounded", s.Price)
		}
		if s.OriginalPrice != nil && !s.OriginalPrice.GreaterThan(s.Price) {
			t.Fatalf("original %s not above price %s", s.OriginalPrice, s.Price)
		}
		if s.Rating < minRating || s.Rating > minRating+ratingSpan {
			t.Fatalf("rating %v out of range", s.Rating)
		}
		if s.Reviews < minReviews || s.Reviews >= minReviews+reviewsSpan {
			t.Fatalf("reviews %d out of range", s.Reviews)
		}
	})
}
