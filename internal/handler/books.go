package handler

import (
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"github.com/xenking/bookstore/internal/catalog"
	"github.com/xenking/bookstore/internal/domain/book"
)

// Listing names served under /api/books/.
const (
	listingFeatured = "featured"
	listingNew      = "new"
)

type booksResponse struct {
	Books []book.Book `json:"books"`
	Count int         `json:"count"`
}

func writeBooks(w http.ResponseWriter, books []book.Book) {
	if books == nil {
		books = []book.Book{}
	}
	writeJSON(w, http.StatusOK, booksResponse{Books: books, Count: len(books)})
}

func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, badRequest("limit must be a non-negative integer")
	}
	return n, nil
}

// SearchBooks handles GET /api/books?q=&limit=.
func (h *Handler) SearchBooks(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, err := parseLimit(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeBooks(w, h.catalog.Search(r.Context(), r.URL.Query().Get("q"), limit))
}

// GetBook handles GET /api/books/:id, plus the featured and new listings.
func (h *Handler) GetBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	switch id {
	case listingFeatured:
		writeBooks(w, h.catalog.Featured(r.Context()))
		return
	case listingNew:
		writeBooks(w, h.catalog.NewArrivals(r.Context()))
		return
	}

	b, ok := h.catalog.ByID(r.Context(), id)
	if !ok {
		writeError(w, http.StatusNotFound, "book not found")
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// RelatedBooks handles GET /api/books/:id/related.
func (h *Handler) RelatedBooks(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	limit, err := parseLimit(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	if limit == 0 {
		limit = catalog.RelatedLimit
	}
	b, ok := h.catalog.ByID(r.Context(), ps.ByName("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "book not found")
		return
	}
	writeBooks(w, h.catalog.Related(r.Context(), *b, limit))
}

// ListCategories handles GET /api/categories.
func (h *Handler) ListCategories(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string][]book.Category{"categories": book.Categories})
}

// BooksByCategory handles GET /api/categories/:category/books.
func (h *Handler) BooksByCategory(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	c, ok := book.ParseCategory(ps.ByName("category"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown category")
		return
	}
	writeBooks(w, h.catalog.ByCategory(r.Context(), c))
}
