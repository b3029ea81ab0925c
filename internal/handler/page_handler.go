package handler

import (
	"log/slog"
	"net/http"

	"github.com/3dmm/site/internal/site"
)

// PageHandler renders the marketing pages.
type PageHandler struct {
	renderer *site.Renderer
}

func NewPageHandler(renderer *site.Renderer) *PageHandler {
	return &PageHandler{renderer: renderer}
}

// Page handles GET for every path in site.Routes. Unknown paths get 404.
// The tab query param selects the active tab on tabbed pages.
func (h *PageHandler) Page(w http.ResponseWriter, r *http.Request) {
	rt, ok := site.Lookup(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.renderer.Render(w, rt, r.URL.Query().Get("tab")); err != nil {
		slog.Error("render page failed", "path", rt.Path, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
