package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/xenking/bookstore/internal/identity"
)

type messageRequest struct {
	Code string `json:"code"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// AuthMessage handles POST /api/auth/messages, translating an identity
// provider error code into the message shown to the user.
func (h *Handler) AuthMessage(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req messageRequest
	if err := decode(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: identity.Message(req.Code)})
}

type signUpRequest struct {
	DisplayName string `json:"displayName"`
}

// ValidateSignUp handles POST /api/auth/validate.
func (h *Handler) ValidateSignUp(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req signUpRequest
	if err := decode(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	if msg := identity.ValidateSignUp(req.DisplayName); msg != "" {
		writeError(w, http.StatusUnprocessableEntity, msg)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
