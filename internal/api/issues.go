package api

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/najdeno/internal/adjudication"
	"github.com/erazemk/najdeno/internal/model"
)

// IssuesHandler handles ownership claims and their adjudication.
type IssuesHandler struct {
	Engine *adjudication.Engine
}

// List handles GET /api/issues.
func (h *IssuesHandler) List(w http.ResponseWriter, r *http.Request) {
	issues, err := h.Engine.ListIssues(r.Context(), actor(r), r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, orEmpty(issues))
}

// Get handles GET /api/issues/{id}.
func (h *IssuesHandler) Get(w http.ResponseWriter, r *http.Request) {
	issue, err := h.Engine.GetIssue(r.Context(), actor(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, issue)
}

// Approve handles POST /api/issues/{id}/approve.
func (h *IssuesHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, model.IssueStatusApproved)
}

// Reject handles POST /api/issues/{id}/reject.
func (h *IssuesHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, model.IssueStatusRejected)
}

func (h *IssuesHandler) decide(w http.ResponseWriter, r *http.Request, decision string) {
	issue, err := h.Engine.DecideIssue(r.Context(), actor(r), r.PathValue("id"), decision)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("issue decided", "issue", issue.ID, "item", issue.ItemID, "decision", decision, "user", actor(r).Email)
	jsonResponse(w, http.StatusOK, issue)
}

// DashboardHandler serves the admin overview.
type DashboardHandler struct {
	Engine *adjudication.Engine
}

// Get handles GET /api/dashboard.
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.Engine.Dashboard(r.Context(), actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, d)
}
