package book

import "strings"

// Category is the closed set of storefront categories.
type Category string

const (
	CategoryFiction    Category = "Fiction"
	CategoryNonfiction Category = "Nonfiction"
	CategoryScience    Category = "Science"
	CategoryTechnology Category = "Technology"
	CategoryHistory    Category = "History"
	CategoryBiography  Category = "Biography"
	CategorySelfHelp   Category = "SelfHelp"
	CategoryChildren   Category = "Children"
	CategoryJuvenile   Category = "Juvenile"

	// CategoryAll is a listing filter, never assigned to a Book.
	CategoryAll Category = "All"
)

// DefaultCategory is assigned when no subject rule matches.
const DefaultCategory = CategoryFiction

// Categories lists every category a Book can carry, in display order.
var Categories = []Category{
	CategoryFiction,
	CategoryNonfiction,
	CategoryScience,
	CategoryTechnology,
	CategoryHistory,
	CategoryBiography,
	CategorySelfHelp,
	CategoryChildren,
	CategoryJuvenile,
}

// Valid reports whether c is one of Categories.
func (c Category) Valid() bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// ParseCategory matches s case-insensitively against Categories and CategoryAll.
func ParseCategory(s string) (Category, bool) {
	if strings.EqualFold(s, string(CategoryAll)) {
		return CategoryAll, true
	}
	for _, c := range Categories {
		if strings.EqualFold(s, string(c)) {
			return c, true
		}
	}
	return "", false
}

type subjectRule struct {
	keywords []string
	category Category
}

// subjectRules is evaluated top to bottom. Order matters: several keywords
// overlap, so "science fiction" must stay a separate rule from the generic
// fiction keywords that precede it.
var subjectRules = []subjectRule{
	{keywords: []string{"young adult", "juvenile"}, category: CategoryJuvenile},
	{keywords: []string{"fantasy", "fantasia"}, category: CategoryFiction},
	{keywords: []string{"romance", "love"}, category: CategoryFiction},
	{keywords: []string{"science fiction", "sci-fi"}, category: CategoryScience},
	{keywords: []string{"mystery", "thriller"}, category: CategoryFiction},
	{keywords: []string{"adventure"}, category: CategoryFiction},
	{keywords: []string{"horror"}, category: CategoryFiction},
	{keywords: []string{"history"}, category: CategoryHistory},
	{keywords: []string{"biography"}, category: CategoryBiography},
	{keywords: []string{"children"}, category: CategoryChildren},
}

// CategoryFromSubject maps a free-text subject tag to a Category. The mapping
// is total: unmatched subjects fall back to DefaultCategory.
func CategoryFromSubject(subject string) Category {
	s := strings.ToLower(subject)
	for _, rule := range subjectRules {
		for _, kw := range rule.keywords {
			if strings.Contains(s, kw) {
				return rule.category
			}
		}
	}
	return DefaultCategory
}

// categoryQueries holds the search term used to list each category.
var categoryQueries = map[Category]string{
	CategoryFiction:    "fiction",
	CategoryNonfiction: "nonfiction",
	CategoryScience:    "science fiction",
	CategoryTechnology: "technology",
	CategoryHistory:    "history",
	CategoryBiography:  "biography",
	CategorySelfHelp:   "self help",
	CategoryChildren:   "children",
	CategoryJuvenile:   "young adult",
}

// DefaultCategoryQuery is used for categories without a dedicated search term.
const DefaultCategoryQuery = "fiction"

// QueryTerm returns the catalog search term for c.
func (c Category) QueryTerm() string {
	if q, ok := categoryQueries[c]; ok {
		return q
	}
	return DefaultCategoryQuery
}
