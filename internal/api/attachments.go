package api

import (
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/najdeno/internal/attachment"
	"github.com/erazemk/najdeno/internal/store"
)

// AttachmentsHandler stores and serves item photos and claim proof.
type AttachmentsHandler struct {
	DB *sqlx.DB
}

// Upload handles POST /api/attachments. The image is sent as the multipart
// field "image"; the response carries the reference to put on an item or
// issue.
func (h *AttachmentsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, attachment.MaxUploadSize+64<<10)

	if err := r.ParseMultipartForm(attachment.MaxUploadSize); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	img, err := attachment.Process(file)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	err = store.PutAttachment(r.Context(), h.DB, store.Attachment{
		Ref:        img.Ref,
		MIME:       img.MIME,
		Data:       img.Data,
		UploadedBy: actor(r).ID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("attachment uploaded", "ref", img.Ref, "size", len(img.Data), "user", actor(r).Email)
	jsonResponse(w, http.StatusCreated, map[string]string{"ref": img.Ref})
}

// Get handles GET /api/attachments/{ref}.
func (h *AttachmentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ref := r.PathValue("ref")
	if !attachment.ValidRef(ref) {
		jsonError(w, http.StatusBadRequest, "invalid attachment reference")
		return
	}

	a, err := store.GetAttachment(r.Context(), h.DB, ref)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if a == nil {
		jsonError(w, http.StatusNotFound, "attachment not found")
		return
	}

	w.Header().Set("Content-Type", a.MIME)
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Write(a.Data)
}
