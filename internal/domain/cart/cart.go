// Package cart implements the shopping cart transitions. Every function is
// total and returns a new Cart; inputs are never modified.
package cart

import (
	"github.com/shopspring/decimal"

	"github.com/xenking/bookstore/internal/domain/book"
)

// MaxQuantity caps the quantity of a single line.
const MaxQuantity = 999

// Item is one cart line. Book is the snapshot taken when the line was
// created; later catalog changes do not refresh it.
type Item struct {
	Book     book.Book `json:"book"`
	Quantity int       `json:"quantity"`
}

// Subtotal returns price × quantity for the line.
func (i Item) Subtotal() decimal.Decimal {
	return i.Book.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is an ordered set of items, unique by book id. Total always equals
// CalculateTotal(Items).
type Cart struct {
	Items []Item          `json:"items"`
	Total decimal.Decimal `json:"total"`
}

// Empty returns a cart with no items and a zero total.
func Empty() Cart {
	return Cart{Items: []Item{}, Total: decimal.Zero}
}

// Find returns the item holding book id.
func (c Cart) Find(id string) (Item, bool) {
	if i := c.index(id); i >= 0 {
		return c.Items[i], true
	}
	return Item{}, false
}

func (c Cart) index(id string) int {
	for i, it := range c.Items {
		if it.Book.ID == id {
			return i
		}
	}
	return -1
}

func (c Cart) clone() []Item {
	items := make([]Item, len(c.Items), len(c.Items)+1)
	copy(items, c.Items)
	return items
}

func build(items []Item) Cart {
	return Cart{Items: items, Total: CalculateTotal(items)}
}

// Add puts one more copy of b into the cart. An existing line keeps its
// stored book and gains one unit, saturating at MaxQuantity; otherwise a new
// line is appended.
func Add(c Cart, b book.Book) Cart {
	items := c.clone()
	if i := c.index(b.ID); i >= 0 {
		if items[i].Quantity < MaxQuantity {
			items[i].Quantity++
		}
		return build(items)
	}
	return build(append(items, Item{Book: b, Quantity: 1}))
}

// Remove drops the line for id. An absent id yields an equal cart.
func Remove(c Cart, id string) Cart {
	i := c.index(id)
	if i < 0 {
		return build(c.clone())
	}
	items := make([]Item, 0, len(c.Items)-1)
	items = append(items, c.Items[:i]...)
	items = append(items, c.Items[i+1:]...)
	return build(items)
}

// UpdateQuantity sets the quantity for id to q, clamped to MaxQuantity. A
// non-positive q removes the line; an absent id is a no-op.
func UpdateQuantity(c Cart, id string, q int) Cart {
	if q <= 0 {
		return Remove(c, id)
	}
	items := c.clone()
	if i := c.index(id); i >= 0 {
		items[i].Quantity = min(q, MaxQuantity)
	}
	return build(items)
}

// CalculateTotal sums price × quantity over items without rounding.
func CalculateTotal(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// ItemCount sums quantities across all lines.
func ItemCount(c Cart) int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// Restore re-establishes the cart invariants on a value of unknown origin,
// such as a decoded snapshot. Lines without an id, with a non-positive price
// or with a non-positive quantity are dropped. Repeated ids are merged into
// the first line, quantities are clamped to MaxQuantity, and the total is
// recomputed.
func Restore(c Cart) Cart {
	items := make([]Item, 0, len(c.Items))
	pos := make(map[string]int, len(c.Items))
	for _, it := range c.Items {
		if it.Book.ID == "" || !it.Book.Price.IsPositive() || it.Quantity <= 0 {
			continue
		}
		it.Quantity = min(it.Quantity, MaxQuantity)
		if i, ok := pos[it.Book.ID]; ok {
			// Both operands are at most MaxQuantity, so the sum cannot overflow.
			items[i].Quantity = min(items[i].Quantity+it.Quantity, MaxQuantity)
			continue
		}
		pos[it.Book.ID] = len(items)
		items = append(items, it)
	}
	return build(items)
}
