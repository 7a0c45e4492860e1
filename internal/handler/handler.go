// Package handler exposes the catalog and carts as a JSON HTTP API.
package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"github.com/xenking/bookstore/internal/cartstore"
	"github.com/xenking/bookstore/internal/catalog"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 64 << 10

// Handler serves the storefront API.
type Handler struct {
	catalog *catalog.Catalog
	carts   *cartstore.Registry
}

// New returns a Handler over the catalog and cart registry.
func New(c *catalog.Catalog, carts *cartstore.Registry) *Handler {
	return &Handler{catalog: c, carts: carts}
}

// Router returns the API routes. Extra handlers, such as health probes,
// can be mounted on the returned router.
func (h *Handler) Router() *httprouter.Router {
	r := httprouter.New()
	r.RedirectTrailingSlash = true
	r.HandleMethodNotAllowed = true
	r.NotFound = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.GET("/api/books", h.SearchBooks)
	// httprouter cannot register static siblings of :id, so the featured and
	// new listings are dispatched by GetBook.
	r.GET("/api/books/:id", h.GetBook)
	r.GET("/api/books/:id/related", h.RelatedBooks)
	r.GET("/api/categories", h.ListCategories)
	r.GET("/api/categories/:category/books", h.BooksByCategory)

	r.GET("/api/cart", h.GetCart)
	r.DELETE("/api/cart", h.ClearCart)
	r.POST("/api/cart/items", h.AddCartItem)
	r.PUT("/api/cart/items/:id", h.UpdateCartItem)
	r.DELETE("/api/cart/items/:id", h.RemoveCartItem)

	r.POST("/api/auth/messages", h.AuthMessage)
	r.POST("/api/auth/validate", h.ValidateSignUp)
	return r
}

// RequestError is a client error with the status it maps to.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string { return e.Message }

func badRequest(msg string) error {
	return &RequestError{Status: http.StatusBadRequest, Message: msg}
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Code: status, Message: msg})
}

// fail maps err to a response. RequestErrors keep their status, anything
// else is logged and reported as 500.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		writeError(w, reqErr.Status, reqErr.Message)
		return
	}
	zctx.From(r.Context()).Error("Request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

// decode reads a JSON body into v, rejecting unknown fields.
func decode(r *http.Request, v any) error {
	d := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	d.DisallowUnknownFields()
	if err := d.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return badRequest("request body is empty")
		}
		return badRequest("invalid request body: " + err.Error())
	}
	return nil
}
