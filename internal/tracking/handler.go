package tracking

import (
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/ignite/opentrack/internal/tracker"
)

// 1x1 transparent GIF
var pixelGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00,
	0x80, 0x00, 0x00, 0xff, 0xff, 0xff, 0x00, 0x00, 0x00, 0x2c,
	0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00, 0x02,
	0x02, 0x44, 0x01, 0x00, 0x3b,
}

type Handler struct {
	store *tracker.Store
}

func NewHandler(store *tracker.Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/p/{emailID}.gif", h.HandlePixel)
	r.Get("/l/{linkID}", h.HandleClick)
	r.Get("/health", h.HandleHealth)
	return r
}

// HandlePixel records an open for the email and serves the pixel. The
// pixel is served no matter what: an unknown id must look identical to
// a known one, and a broken-image icon in the mail client would give
// the tracking away.
func (h *Handler) HandlePixel(w http.ResponseWriter, r *http.Request) {
	emailID := chi.URLParam(r, "emailID")

	if err := h.store.RecordOpen(r.Context(), emailID, realIP(r), r.UserAgent(), tracker.MethodPixel); err != nil {
		log.Printf("OPEN record failed email=%s: %v", emailID, err)
	} else {
		log.Printf("OPEN email=%s", emailID)
	}

	h.servePixel(w)
}

// HandleClick records a click (and its companion open) for the link,
// then redirects the visitor to the link's original URL. A recording
// failure is logged but does not block the redirect; only an unknown
// link id terminates with 404.
func (h *Handler) HandleClick(w http.ResponseWriter, r *http.Request) {
	linkID := chi.URLParam(r, "linkID")

	link, err := h.store.RecordClick(r.Context(), linkID, realIP(r), r.UserAgent())
	if err == tracker.ErrNotFound {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		log.Printf("CLICK record failed link=%s: %v", linkID, err)
		if link == nil {
			http.NotFound(w, r)
			return
		}
	} else {
		log.Printf("CLICK link=%s email=%s url=%s", link.ID, link.EmailID, link.OriginalURL)
	}

	http.Redirect(w, r, link.OriginalURL, http.StatusFound)
}

func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (h *Handler) servePixel(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "image/gif")
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
	w.Write(pixelGIF)
}

func realIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx > 0 {
			return strings.TrimSpace(xff[:idx])
		}
		return xff
	}
	if xri := r.Header.Get("X-Real-Ip"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
