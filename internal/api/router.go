package api

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"

	"github.com/erazemk/najdeno/internal/adjudication"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/search"
)

// Deps are the services behind the API.
type Deps struct {
	DB        *sqlx.DB
	Engine    *adjudication.Engine
	Search    *search.Service
	JWTSecret string
	// BcryptCost is used when hashing new passwords. Zero means bcrypt.DefaultCost.
	BcryptCost int
}

// NewRouter creates the API router with all endpoints registered, wrapped in
// request id, real IP, access log and panic recovery middleware.
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: d.DB, JWTSecret: d.JWTSecret, BcryptCost: d.BcryptCost}
	usersHandler := &UsersHandler{DB: d.DB, BcryptCost: d.BcryptCost}
	itemsHandler := &ItemsHandler{Engine: d.Engine, Search: d.Search}
	issuesHandler := &IssuesHandler{Engine: d.Engine}
	dashboardHandler := &DashboardHandler{Engine: d.Engine}
	attachmentsHandler := &AttachmentsHandler{DB: d.DB}

	authMW := AuthMiddleware(d.JWTSecret, d.DB)
	requireAdmin := RequireRole(model.RoleAdmin)
	authed := func(h http.HandlerFunc) http.Handler { return authMW(h) }
	admin := func(h http.HandlerFunc) http.Handler { return authMW(requireAdmin(h)) }

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusOK, map[string]bool{"ok": true})
	})

	// Public.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("GET /api/items", itemsHandler.List)
	mux.HandleFunc("GET /api/items/{id}", itemsHandler.Get)
	mux.HandleFunc("GET /api/attachments/{ref}", attachmentsHandler.Get)

	// Any signed-in user.
	mux.Handle("PUT /api/auth/password", authed(authHandler.ChangePassword))
	mux.Handle("POST /api/auth/logout", authed(authHandler.Logout))
	mux.Handle("POST /api/items", authed(itemsHandler.Create))
	mux.Handle("POST /api/items/{id}/issues", authed(itemsHandler.RaiseIssue))
	mux.Handle("GET /api/issues/{id}", authed(issuesHandler.Get))
	mux.Handle("POST /api/attachments", authed(attachmentsHandler.Upload))

	// Administrators.
	mux.Handle("GET /api/users", admin(usersHandler.List))
	mux.Handle("POST /api/users", admin(usersHandler.Create))
	mux.Handle("DELETE /api/items/{id}", admin(itemsHandler.Delete))
	mux.Handle("POST /api/items/{id}/found", admin(itemsHandler.MarkFound))
	mux.Handle("POST /api/items/{id}/confirm", admin(itemsHandler.ConfirmMatch))
	mux.Handle("GET /api/items/{id}/issues", admin(itemsHandler.Issues))
	mux.Handle("GET /api/items/{id}/match", admin(itemsHandler.Match))
	mux.Handle("GET /api/matches", admin(itemsHandler.Matches))
	mux.Handle("GET /api/issues", admin(issuesHandler.List))
	mux.Handle("POST /api/issues/{id}/approve", admin(issuesHandler.Approve))
	mux.Handle("POST /api/issues/{id}/reject", admin(issuesHandler.Reject))
	mux.Handle("GET /api/dashboard", admin(dashboardHandler.Get))

	return middleware.RequestID(middleware.RealIP(LoggingMiddleware(middleware.Recoverer(mux))))
}
