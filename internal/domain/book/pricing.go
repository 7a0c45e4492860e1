package book

import (
	"hash/fnv"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/shopspring/decimal"
)

// Synthetic price and popularity ranges. The catalog provider carries no
// commercial data, so these are made up within plausible bounds.
const (
	minBasePrice   = 10.0
	basePriceSpan  = 25.0
	discountChance = 0.4
	discountFactor = 0.85

	minRating  = 3.5
	ratingSpan = 1.5

	minReviews  = 100
	reviewsSpan = 5000
)

// Synthetic holds the commercial attributes a Pricer invents for a book.
type Synthetic struct {
	Price         decimal.Decimal
	OriginalPrice *decimal.Decimal
	Rating        float64
	Reviews       int
}

// Pricer invents commercial attributes for a book id.
type Pricer interface {
	Synthesize(id string) Synthetic
}

// PricingMode selects a Pricer implementation.
type PricingMode string

const (
	// PricingRandom draws new values on every call.
	PricingRandom PricingMode = "random"
	// PricingSeeded derives values from the book id, so repeated fetches agree.
	PricingSeeded PricingMode = "seeded"
)

// NewPricer returns the Pricer for mode. Unknown modes fall back to seeded.
func NewPricer(mode PricingMode) Pricer {
	if mode == PricingRandom {
		return NewRandomPricer(rand.Uint64())
	}
	return SeededPricer{}
}

// RandomPricer draws from one shared source, so the same id can be priced
// differently on each fetch.
type RandomPricer struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandomPricer returns a RandomPricer seeded with seed.
func NewRandomPricer(seed uint64) *RandomPricer {
	return &RandomPricer{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (p *RandomPricer) Synthesize(_ string) Synthetic {
	p.mu.Lock()
	defer p.mu.Unlock()
	return synthesize(p.rnd)
}

// SeededPricer derives every value from an FNV-1a hash of the book id.
type SeededPricer struct{}

func (SeededPricer) Synthesize(id string) Synthetic {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	seed := h.Sum64()
	return synthesize(rand.New(rand.NewPCG(seed, ^seed)))
}

func synthesize(rnd *rand.Rand) Synthetic {
	base := rnd.Float64()*basePriceSpan + minBasePrice
	discounted := rnd.Float64() < discountChance

	s := Synthetic{
		Price:   roundMoney(base),
		Rating:  math.Round((rnd.Float64()*ratingSpan+minRating)*10) / 10,
		Reviews: rnd.IntN(reviewsSpan) + minReviews,
	}
	if discounted {
		original := roundMoney(base)
		s.Price = roundMoney(base * discountFactor)
		s.OriginalPrice = &original
	}
	return s
}

func roundMoney(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}
