package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"paperindex/application/queries"
	"paperindex/pkg/errors"
)

// PaperHandler serves the paper read endpoints
type PaperHandler struct {
	router *queries.Router
	errors *errors.ErrorHandler
	logger *zap.Logger
}

// NewPaperHandler creates a new paper handler
func NewPaperHandler(router *queries.Router, errorHandler *errors.ErrorHandler, logger *zap.Logger) *PaperHandler {
	return &PaperHandler{
		router: router,
		errors: errorHandler,
		logger: logger,
	}
}

// Recent handles GET /papers/recent?category=&limit=
func (h *PaperHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	result, err := h.router.RecentInCategory(r.Context(), r.URL.Query().Get("category"), limit)
	h.respond(w, r, result, err)
}

// Search handles GET /papers/search?category=&start=&end=
func (h *PaperHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := h.router.PapersInDateRange(r.Context(), q.Get("category"), q.Get("start"), q.Get("end"))
	h.respond(w, r, result, err)
}

// ByAuthor handles GET /papers/author/{name}
func (h *PaperHandler) ByAuthor(w http.ResponseWriter, r *http.Request) {
	result, err := h.router.PapersByAuthor(r.Context(), pathParam(r, "name"))
	h.respond(w, r, result, err)
}

// ByKeyword handles GET /papers/keyword/{keyword}?limit=
func (h *PaperHandler) ByKeyword(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	result, err := h.router.PapersByKeyword(r.Context(), pathParam(r, "keyword"), limit)
	h.respond(w, r, result, err)
}

// ByID handles GET /papers/{arxiv_id}. Old-style ids contain a slash, so the
// id is the whole remainder of the path.
func (h *PaperHandler) ByID(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "*")
	result, err := h.router.PaperByID(r.Context(), id)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if result.Count == 0 {
		h.errors.Handle(w, r, errors.NewNotFoundError("paper").WithDetails(map[string]interface{}{"arxiv_id": id}))
		return
	}
	h.respondJSON(w, http.StatusOK, result.Map())
}

func (h *PaperHandler) respond(w http.ResponseWriter, r *http.Request, result *queries.Result, err error) {
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, result.Map())
}

func (h *PaperHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// parseLimit reads the optional limit parameter; absent means the default.
func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 0, errors.NewInvalidQueryParameterError("limit", "must be a positive integer")
	}
	return limit, nil
}

// pathParam returns a decoded path parameter. chi matches on the raw path
// when the request carries escaped slashes, leaving the value escaped.
func pathParam(r *http.Request, key string) string {
	value := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return value
	}
	if decoded, err := url.PathUnescape(value); err == nil {
		return decoded
	}
	return value
}
