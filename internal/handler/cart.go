package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"github.com/shopspring/decimal"

	"github.com/xenking/bookstore/internal/cartstore"
	"github.com/xenking/bookstore/internal/domain/book"
	"github.com/xenking/bookstore/internal/domain/cart"
)

// HeaderCartSession identifies the cart of a client. A new session is
// issued when the header is absent.
const HeaderCartSession = "X-Cart-Session"

type cartResponse struct {
	Session   string          `json:"session"`
	Items     []cart.Item     `json:"items"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"itemCount"`
	Summary   cart.Summary    `json:"summary"`
}

func newCartResponse(session string, c cart.Cart) cartResponse {
	items := c.Items
	if items == nil {
		items = []cart.Item{}
	}
	return cartResponse{
		Session:   session,
		Items:     items,
		Total:     c.Total,
		ItemCount: cart.ItemCount(c),
		Summary:   cart.Summarize(c),
	}
}

// session resolves the cart session of r and echoes it on w.
func session(w http.ResponseWriter, r *http.Request) (string, error) {
	s := strings.TrimSpace(r.Header.Get(HeaderCartSession))
	if s == "" {
		s = uuid.NewString()
	} else if _, err := uuid.Parse(s); err != nil {
		return "", badRequest("invalid cart session")
	}
	w.Header().Set(HeaderCartSession, s)
	return s, nil
}

func (h *Handler) store(w http.ResponseWriter, r *http.Request) (*cartstore.Store, string, bool) {
	s, err := session(w, r)
	if err != nil {
		fail(w, r, err)
		return nil, "", false
	}
	return h.carts.Store(r.Context(), s), s, true
}

// respondCart writes c, or a 500 when the mutation could not be persisted.
// The in-memory cart has advanced either way.
func respondCart(w http.ResponseWriter, r *http.Request, s string, c cart.Cart, err error) {
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCartResponse(s, c))
}

// GetCart handles GET /api/cart.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	st, s, ok := h.store(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newCartResponse(s, st.Cart()))
}

// ClearCart handles DELETE /api/cart.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	st, s, ok := h.store(w, r)
	if !ok {
		return
	}
	c, err := st.Clear(r.Context())
	respondCart(w, r, s, c, err)
}

type addItemRequest struct {
	BookID string     `json:"bookId"`
	Book   *book.Book `json:"book"`
}

func (h *Handler) resolveBook(r *http.Request, req addItemRequest) (book.Book, error) {
	switch {
	case req.Book != nil:
		b := *req.Book
		if strings.TrimSpace(b.ID) == "" {
			return book.Book{}, &RequestError{Status: http.StatusUnprocessableEntity, Message: "book id is required"}
		}
		if !b.Price.IsPositive() {
			return book.Book{}, &RequestError{Status: http.StatusUnprocessableEntity, Message: "book price must be positive"}
		}
		return b, nil
	case strings.TrimSpace(req.BookID) != "":
		b, ok := h.catalog.ByID(r.Context(), strings.TrimSpace(req.BookID))
		if !ok {
			return book.Book{}, &RequestError{Status: http.StatusNotFound, Message: "book not found"}
		}
		return *b, nil
	default:
		return book.Book{}, badRequest("bookId or book is required")
	}
}

// AddCartItem handles POST /api/cart/items.
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req addItemRequest
	if err := decode(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	b, err := h.resolveBook(r, req)
	if err != nil {
		fail(w, r, err)
		return
	}
	st, s, ok := h.store(w, r)
	if !ok {
		return
	}
	c, err := st.AddBook(r.Context(), b)
	respondCart(w, r, s, c, err)
}

type updateItemRequest struct {
	Quantity *int `json:"quantity"`
}

// UpdateCartItem handles PUT /api/cart/items/:id. A quantity of zero or less
// removes the line.
func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req updateItemRequest
	if err := decode(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	if req.Quantity == nil {
		fail(w, r, badRequest("quantity is required"))
		return
	}
	if *req.Quantity > cart.MaxQuantity {
		fail(w, r, &RequestError{
			Status:  http.StatusUnprocessableEntity,
			Message: "quantity must not exceed " + strconv.Itoa(cart.MaxQuantity),
		})
		return
	}
	st, s, ok := h.store(w, r)
	if !ok {
		return
	}
	id := ps.ByName("id")
	if _, found := st.Cart().Find(id); !found {
		writeError(w, http.StatusNotFound, "book not in cart")
		return
	}
	c, err := st.UpdateBookQuantity(r.Context(), id, *req.Quantity)
	respondCart(w, r, s, c, err)
}

// RemoveCartItem handles DELETE /api/cart/items/:id. Removing an absent book
// succeeds with the unchanged cart.
func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	st, s, ok := h.store(w, r)
	if !ok {
		return
	}
	c, err := st.RemoveBook(r.Context(), ps.ByName("id"))
	respondCart(w, r, s, c, err)
}
