package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/3dmm/site/internal/metrics"
	"github.com/3dmm/site/internal/model"
	"github.com/3dmm/site/internal/service"
)

// maxContactBody caps the request body; a 5000 character message fits with room
// for multi-byte text and the other fields.
const maxContactBody = 64 << 10

// Error bodies returned by POST /api/contact.
const (
	errInvalidBody    = "Invalid request body"
	errFieldsRequired = "All fields are required"
	errMessageTooLong = "Message is too long"
	errSubmitFailed   = "Failed to submit form"
)

// contactSentHref is where a url-encoded submission lands on success, so the
// About page form works without its script.
const contactSentHref = "/about#contact-sent"

// ContactHandler handles contact form submission and admin listing.
type ContactHandler struct {
	contactService service.ContactService
}

// NewContactHandler creates a ContactHandler with the given service.
func NewContactHandler(contactService service.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

// submitRequest is the expected JSON body for POST /api/contact.
type submitRequest struct {
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Email         string `json:"email"`
	Subject       string `json:"subject"`
	Message       string `json:"message"`
	SignUpForNews bool   `json:"signUpForNews"`
}

func isFormPost(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/x-www-form-urlencoded"
}

// decodeSubmit reads a JSON body, or the About page's url-encoded form.
func decodeSubmit(w http.ResponseWriter, r *http.Request) (submitRequest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxContactBody)
	var req submitRequest
	if !isFormPost(r) {
		err := json.NewDecoder(r.Body).Decode(&req)
		return req, err
	}
	if err := r.ParseForm(); err != nil {
		return req, err
	}
	f := r.PostForm
	req = submitRequest{
		FirstName:     f.Get("firstName"),
		LastName:      f.Get("lastName"),
		Email:         f.Get("email"),
		Subject:       f.Get("subject"),
		Message:       f.Get("message"),
		SignUpForNews: checked(f.Get("signUpForNews")),
	}
	return req, nil
}

// checked reports whether a checkbox value means true.
func checked(v string) bool {
	switch v {
	case "on", "true", "1":
		return true
	}
	return false
}

// Submit handles POST /api/contact.
// All fields except signUpForNews are required; message max 5000 chars.
// JSON posts get a JSON reply; url-encoded posts are redirected on success.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	req, err := decodeSubmit(w, r)
	if err != nil {
		metrics.IncContact("invalid")
		writeError(w, http.StatusBadRequest, errInvalidBody)
		return
	}

	msg := &model.ContactSubmission{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		Subject:       req.Subject,
		Message:       req.Message,
		SignUpForNews: req.SignUpForNews,
	}

	if err := h.contactService.Submit(r.Context(), msg); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidSubmission):
			metrics.IncContact("invalid")
			writeError(w, http.StatusBadRequest, errFieldsRequired)
		case errors.Is(err, service.ErrMessageTooLong):
			metrics.IncContact("invalid")
			writeError(w, http.StatusBadRequest, errMessageTooLong)
		default:
			metrics.IncContact("failed")
			slog.Error("contact form submission failed", "error", err)
			writeError(w, http.StatusInternalServerError, errSubmitFailed)
		}
		return
	}

	if isFormPost(r) {
		http.Redirect(w, r, contactSentHref, http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// listOptions reads limit and offset query params. Out of range values fall
// back to the defaults.
func listOptions(r *http.Request) model.ListOptions {
	opts := model.ListOptions{Limit: model.DefaultListLimit}
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= model.MaxListLimit {
			opts.Limit = n
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if n, err := strconv.Atoi(o); err == nil && n >= 0 {
			opts.Offset = n
		}
	}
	return opts
}

// adminListResponse is the JSON response for GET /api/admin/contacts.
type adminListResponse struct {
	Messages []*model.ContactSubmission `json:"messages"`
	Limit    int                        `json:"limit"`
	Offset   int                        `json:"offset"`
}

// AdminList handles GET /api/admin/contacts (admin token required).
func (h *ContactHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	opts := listOptions(r)
	messages, err := h.contactService.List(r.Context(), opts)
	if err != nil {
		slog.Error("list contacts failed", "error", err)
		writeError(w, http.StatusInternalServerError, "list_failed")
		return
	}

	// Return [] not null for empty lists
	if messages == nil {
		messages = []*model.ContactSubmission{}
	}

	writeJSON(w, http.StatusOK, adminListResponse{Messages: messages, Limit: opts.Limit, Offset: opts.Offset})
}

type adminNewsletterResponse struct {
	Subscribers []*model.NewsletterSubscriber `json:"subscribers"`
	Limit       int                           `json:"limit"`
	Offset      int                           `json:"offset"`
}

// AdminNewsletter handles GET /api/admin/newsletter (admin token required).
func (h *ContactHandler) AdminNewsletter(w http.ResponseWriter, r *http.Request) {
	opts := listOptions(r)
	subs, err := h.contactService.ListSubscribers(r.Context(), opts)
	if err != nil {
		slog.Error("list subscribers failed", "error", err)
		writeError(w, http.StatusInternalServerError, "list_failed")
		return
	}

	if subs == nil {
		subs = []*model.NewsletterSubscriber{}
	}

	writeJSON(w, http.StatusOK, adminNewsletterResponse{Subscribers: subs, Limit: opts.Limit, Offset: opts.Offset})
}
