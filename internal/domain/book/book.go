package book

import (
	"github.com/shopspring/decimal"
)

// Book is the storefront's canonical catalog record. A Book is treated as an
// immutable value once it has been built by a Normalizer.
type Book struct {
	ID            string           `json:"id"`
	Title         string           `json:"title"`
	Author        string           `json:"author"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"originalPrice,omitempty"`
	Description   string           `json:"description"`
	Category      Category         `json:"category"`
	CoverImage    string           `json:"coverImage"`
	ISBN          string           `json:"isbn"`
	Pages         int              `json:"pages"`
	Language      Language         `json:"language"`
	Publisher     string           `json:"publisher"`
	PublishDate   string           `json:"publishDate"`
	Rating        float64          `json:"rating"`
	Reviews       int              `json:"reviews"`
	InStock       bool             `json:"inStock"`
}

// HasDiscount reports whether an undiscounted price is attached to the book.
func (b Book) HasDiscount() bool {
	return b.OriginalPrice != nil && b.OriginalPrice.GreaterThan(b.Price)
}

// DiscountPercent returns the whole-number percentage taken off the original
// price, or zero when the book is not discounted.
func (b Book) DiscountPercent() int64 {
	if !b.HasDiscount() {
		return 0
	}
	off := b.OriginalPrice.Sub(b.Price).Div(*b.OriginalPrice).Mul(decimal.NewFromInt(100))
	return off.Round(0).IntPart()
}

// Language is the closed set of languages a Book can be listed in.
type Language string

const (
	LanguageSpanish Language = "Spanish"
	LanguageEnglish Language = "English"
)

// languageFromCodes returns Spanish if codes carries the "spa" tag and the
// default language otherwise.
func languageFromCodes(codes []string) Language {
	for _, c := range codes {
		if c == "spa" {
			return LanguageSpanish
		}
	}
	return LanguageEnglish
}
