package handler

import (
	"net/http"
	"strings"

	"github.com/3dmm/site/internal/site"
)

// allowedLegalTypes is the allowlist of legal document type names.
// Only these values may be requested via GET /api/legal/{type}.
var allowedLegalTypes = map[string]bool{
	site.LegalPrivacy: true,
	site.LegalTerms:   true,
	site.LegalCookies: true,
}

// LegalHandler handles GET /api/legal/{type}.
type LegalHandler struct {
	content *site.Content
}

// NewLegalHandler creates a LegalHandler serving documents from content.
func NewLegalHandler(content *site.Content) *LegalHandler {
	return &LegalHandler{content: content}
}

type legalResponse struct {
	Type string `json:"type"`
	site.LegalDocument
}

// Legal handles GET /api/legal/{type}.
// Returns the requested legal document as JSON.
// Responds 404 when the document does not exist.
// Rejects path traversal attempts with 400.
func (h *LegalHandler) Legal(w http.ResponseWriter, r *http.Request) {
	docType := r.PathValue("type")

	// Security: reject any traversal characters before allowlist check.
	if strings.Contains(docType, "/") || strings.Contains(docType, "\\") || strings.Contains(docType, "..") {
		writeError(w, http.StatusBadRequest, "bad request")
		return
	}

	if !allowedLegalTypes[docType] {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	doc, ok := h.content.LegalDoc(docType)
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	writeJSON(w, http.StatusOK, legalResponse{Type: docType, LegalDocument: doc})
}
