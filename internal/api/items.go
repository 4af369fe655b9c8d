package api

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/najdeno/internal/adjudication"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/search"
)

// ItemsHandler handles the item catalog and its lifecycle.
type ItemsHandler struct {
	Engine *adjudication.Engine
	Search *search.Service
}

type raiseIssueRequest struct {
	Description string `json:"description"`
	Proof       string `json:"proof"`
}

// List handles GET /api/items. Every query parameter narrows the result.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	criteria, err := search.ParseCriteria(r.URL.Query(), h.Search.Location)
	if err != nil {
		writeError(w, r, err)
		return
	}

	items, err := h.Search.Search(r.Context(), criteria)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, orEmpty(items))
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.Engine.GetItem(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.NewItem
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.Engine.ReportItem(r.Context(), actor(r), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("item reported", "item", item.ID, "user", item.ReportedBy.Email)
	jsonResponse(w, http.StatusCreated, item)
}

// Delete handles DELETE /api/items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.Engine.DeleteItem(r.Context(), actor(r), id); err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("item deleted", "item", id, "user", actor(r).Email)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// MarkFound handles POST /api/items/{id}/found.
func (h *ItemsHandler) MarkFound(w http.ResponseWriter, r *http.Request) {
	item, err := h.Engine.MarkFound(r.Context(), actor(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// ConfirmMatch handles POST /api/items/{id}/confirm.
func (h *ItemsHandler) ConfirmMatch(w http.ResponseWriter, r *http.Request) {
	item, err := h.Engine.ConfirmMatch(r.Context(), actor(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("match confirmed", "item", item.ID, "user", actor(r).Email)
	jsonResponse(w, http.StatusOK, item)
}

// Issues handles GET /api/items/{id}/issues.
func (h *ItemsHandler) Issues(w http.ResponseWriter, r *http.Request) {
	issues, err := h.Engine.IssuesForItem(r.Context(), actor(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, orEmpty(issues))
}

// RaiseIssue handles POST /api/items/{id}/issues.
func (h *ItemsHandler) RaiseIssue(w http.ResponseWriter, r *http.Request) {
	var req raiseIssueRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	issue, err := h.Engine.RaiseIssue(r.Context(), actor(r), model.NewIssue{
		ItemID:      r.PathValue("id"),
		Description: req.Description,
		Proof:       req.Proof,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("issue raised", "issue", issue.ID, "item", issue.ItemID, "user", issue.Claimant.Email)
	jsonResponse(w, http.StatusCreated, issue)
}

// Match handles GET /api/items/{id}/match: the approved claim behind a match.
func (h *ItemsHandler) Match(w http.ResponseWriter, r *http.Request) {
	issue, err := h.Engine.MatchAudit(r.Context(), actor(r), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, issue)
}

// Matches handles GET /api/matches.
func (h *ItemsHandler) Matches(w http.ResponseWriter, r *http.Request) {
	items, err := h.Engine.MatchedItems(r.Context(), actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, orEmpty(items))
}
