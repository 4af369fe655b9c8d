package api

import (
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/najdeno/internal/store"
)

// UsersHandler handles account management endpoints (admin only).
type UsersHandler struct {
	DB         *sqlx.DB
	BcryptCost int
}

type createUserRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// List handles GET /api/users.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := store.ListUsers(r.Context(), h.DB)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, orEmpty(users))
}

// Create handles POST /api/users. Unlike registration it can create
// administrators.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := createAccount(r.Context(), h.DB, req.Email, req.Name, req.Password, req.Role, h.BcryptCost)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("user created", "user", GetClaims(r.Context()).Email, "new_user", user.Email, "role", user.Role)
	jsonResponse(w, http.StatusCreated, user)
}
