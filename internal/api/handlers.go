package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ignite/opentrack/internal/tracker"
	"github.com/ignite/opentrack/internal/tracking"
)

// Handlers holds the registration and reporting API handlers.
type Handlers struct {
	store   *tracker.Store
	baseURL string
}

// NewHandlers creates the API handlers. baseURL is the public origin
// used to build pixel and redirect URLs.
func NewHandlers(store *tracker.Store, baseURL string) *Handlers {
	return &Handlers{store: store, baseURL: baseURL}
}

// HealthCheck returns service health status
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createEmailRequest struct {
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
}

type createEmailResponse struct {
	EmailID  string `json:"email_id"`
	PixelURL string `json:"pixel_url"`
	ImgTag   string `json:"img_tag"`
}

// HandleCreateEmail registers a new tracked email and returns the
// pixel URL plus a ready-to-embed img tag.
func (h *Handlers) HandleCreateEmail(w http.ResponseWriter, r *http.Request) {
	var req createEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Recipient == "" || req.Subject == "" {
		respondError(w, http.StatusBadRequest, "recipient and subject are required")
		return
	}

	email, err := h.store.CreateEmail(r.Context(), req.Recipient, req.Subject)
	if err != nil {
		log.Printf("create email failed: %v", err)
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}

	pixelURL := tracking.PixelURL(h.baseURL, email.ID)
	respondJSON(w, http.StatusOK, createEmailResponse{
		EmailID:  email.ID,
		PixelURL: pixelURL,
		ImgTag:   tracking.ImgTag(pixelURL),
	})
}

type createLinkRequest struct {
	EmailID string `json:"email_id"`
	URL     string `json:"url"`
	Label   string `json:"label"`
}

type createLinkResponse struct {
	LinkID      string `json:"link_id"`
	TrackedURL  string `json:"tracked_url"`
	OriginalURL string `json:"original_url"`
}

// HandleCreateLink registers a tracked link for an existing email and
// returns the redirect URL to embed in place of the original.
func (h *Handlers) HandleCreateLink(w http.ResponseWriter, r *http.Request) {
	var req createLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.EmailID == "" || req.URL == "" {
		respondError(w, http.StatusBadRequest, "email_id and url are required")
		return
	}

	link, err := h.store.CreateLink(r.Context(), req.EmailID, req.URL, req.Label)
	if err == tracker.ErrNotFound {
		respondError(w, http.StatusNotFound, "email not found")
		return
	}
	if err != nil {
		log.Printf("create link failed: %v", err)
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}

	respondJSON(w, http.StatusOK, createLinkResponse{
		LinkID:      link.ID,
		TrackedURL:  tracking.LinkURL(h.baseURL, link.ID),
		OriginalURL: link.OriginalURL,
	})
}

// HandleListEmails returns all tracked emails with aggregated counts,
// newest-created first.
func (h *Handlers) HandleListEmails(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.store.ListEmails(r.Context())
	if err != nil {
		log.Printf("list emails failed: %v", err)
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	respondJSON(w, http.StatusOK, summaries)
}

// HandleEmailDetail returns the full open/link/click history for one
// email. An unknown id yields empty sequences rather than an error.
func (h *Handlers) HandleEmailDetail(w http.ResponseWriter, r *http.Request) {
	emailID := chi.URLParam(r, "emailID")

	detail, err := h.store.GetEmailDetail(r.Context(), emailID)
	if err != nil {
		log.Printf("email detail failed email=%s: %v", emailID, err)
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	respondJSON(w, http.StatusOK, detail)
}

// HandleDeleteEmail removes an email and everything recorded against
// it. Deletion is idempotent: an unknown id still reports success.
func (h *Handlers) HandleDeleteEmail(w http.ResponseWriter, r *http.Request) {
	emailID := chi.URLParam(r, "emailID")

	if err := h.store.DeleteEmail(r.Context(), emailID); err != nil {
		log.Printf("delete email failed email=%s: %v", emailID, err)
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
