package adapter

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"local-library/internal/core"
	"local-library/internal/core/model"
	"local-library/internal/logger"
)

type Handler struct {
	svc        *core.Service
	log        *logger.Logger
	production bool
}

func NewHandler(svc *core.Service, log *logger.Logger, production bool) *Handler {
	return &Handler{svc: svc, log: log.With("component", "http"), production: production}
}

// Routes mounts the catalog surface.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Route("/catalog", func(r chi.Router) {
		r.Get("/", h.Dashboard)

		r.Get("/titles", h.ListTitles)
		r.Route("/title", func(r chi.Router) {
			r.Get("/create", h.NewTitleForm)
			r.Post("/create", h.CreateTitle)
			r.Get("/{id}", h.TitleDetail)
			r.Get("/{id}/update", h.EditTitleForm)
			r.Post("/{id}/update", h.UpdateTitle)
			r.Get("/{id}/delete", h.DeleteTitleForm)
			r.Post("/{id}/delete", h.DeleteTitle)
		})

		r.Get("/creators", h.ListCreators)
		r.Route("/creator", func(r chi.Router) {
			r.Get("/create", h.NewCreatorForm)
			r.Post("/create", h.CreateCreator)
			r.Get("/{id}", h.CreatorDetail)
			r.Get("/{id}/update", h.EditCreatorForm)
			r.Post("/{id}/update", h.UpdateCreator)
		})

		r.Get("/categories", h.ListCategories)
		r.Route("/category", func(r chi.Router) {
			r.Get("/create", h.NewCategoryForm)
			r.Post("/create", h.CreateCategory)
			r.Get("/{id}", h.CategoryDetail)
		})

		r.Get("/copies", h.ListCopies)
		r.Route("/copy", func(r chi.Router) {
			r.Get("/create", h.NewCopyForm)
			r.Post("/create", h.CreateCopy)
			r.Get("/{id}", h.CopyDetail)
		})
	})
	return r
}

type httpError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	e := httpError{}
	e.Error.Code = code
	e.Error.Message = msg
	writeJSON(w, status, e)
}

// fail is the single outer boundary for errors that escape the
// handlers: NotFound becomes a 404, everything else a generic 500 with
// the detail logged and echoed only outside production.
func (h *Handler) fail(w http.ResponseWriter, err error) {
	if errors.Is(err, model.ErrNotFound) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "resource not found")
		return
	}
	h.log.Error("request failed", "error", err)
	msg := "internal error"
	if !h.production {
		msg = err.Error()
	}
	writeError(w, http.StatusInternalServerError, "INTERNAL", msg)
}

func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// urlID parses the {id} segment. A malformed identifier can never
// match a stored record, so it reads as NotFound.
func urlID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, model.ErrNotFound
	}
	return id, nil
}

func parseForm(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "malformed form body")
		return false
	}
	return true
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	counts, err := h.svc.Dashboard(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

func (h *Handler) ListTitles(w http.ResponseWriter, r *http.Request) {
	titles, err := h.svc.ListTitles(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, titles)
}

func (h *Handler) TitleDetail(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	detail, err := h.svc.TitleDetail(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *Handler) NewTitleForm(w http.ResponseWriter, r *http.Request) {
	state, err := h.svc.NewTitleForm(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *Handler) CreateTitle(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	title, state, err := h.svc.CreateTitle(r.Context(), r.PostForm)
	if err != nil {
		h.fail(w, err)
		return
	}
	if state != nil {
		writeJSON(w, http.StatusOK, state)
		return
	}
	h.redirect(w, r, title.DetailPath())
}

func (h *Handler) EditTitleForm(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	state, err := h.svc.EditTitleForm(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *Handler) UpdateTitle(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	if !parseForm(w, r) {
		return
	}
	title, state, err := h.svc.UpdateTitle(r.Context(), id, r.PostForm)
	if err != nil {
		h.fail(w, err)
		return
	}
	if state != nil {
		writeJSON(w, http.StatusOK, state)
		return
	}
	h.redirect(w, r, title.DetailPath())
}

func (h *Handler) DeleteTitleForm(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	state, err := h.svc.DeleteTitleForm(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *Handler) DeleteTitle(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	state, err := h.svc.DeleteTitle(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	if state != nil {
		writeJSON(w, http.StatusOK, state)
		return
	}
	h.redirect(w, r, "/catalog/titles")
}

func (h *Handler) ListCreators(w http.ResponseWriter, r *http.Request) {
	creators, err := h.svc.ListCreators(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, creators)
}

func (h *Handler) CreatorDetail(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	detail, err := h.svc.CreatorDetail(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *Handler) NewCreatorForm(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, core.CreatorFormState{})
}

func (h *Handler) CreateCreator(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	creator, state, err := h.svc.CreateCreator(r.Context(), r.PostForm)
	if err != nil {
		h.fail(w, err)
		return
	}
	if state != nil {
		writeJSON(w, http.StatusOK, state)
		return
	}
	h.redirect(w, r, creator.DetailPath())
}

func (h *Handler) EditCreatorForm(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	state, err := h.svc.EditCreatorForm(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *Handler) UpdateCreator(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	if !parseForm(w, r) {
		return
	}
	creator, state, err := h.svc.UpdateCreator(r.Context(), id, r.PostForm)
	if err != nil {
		h.fail(w, err)
		return
	}
	if state != nil {
		writeJSON(w, http.StatusOK, state)
		return
	}
	h.redirect(w, r, creator.DetailPath())
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.ListCategories(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *Handler) CategoryDetail(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	detail, err := h.svc.CategoryDetail(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *Handler) NewCategoryForm(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, core.CategoryFormState{})
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	category, state, err := h.svc.CreateCategory(r.Context(), r.PostForm)
	if err != nil {
		h.fail(w, err)
		return
	}
	if state != nil {
		writeJSON(w, http.StatusOK, state)
		return
	}
	// existing or newly created, either way the redirect targets it
	h.redirect(w, r, category.DetailPath())
}

func (h *Handler) ListCopies(w http.ResponseWriter, r *http.Request) {
	copies, err := h.svc.ListCopies(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, copies)
}

func (h *Handler) CopyDetail(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	c, err := h.svc.CopyDetail(r.Context(), id)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) NewCopyForm(w http.ResponseWriter, r *http.Request) {
	state, err := h.svc.NewCopyForm(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *Handler) CreateCopy(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	c, state, err := h.svc.CreateCopy(r.Context(), r.PostForm)
	if err != nil {
		h.fail(w, err)
		return
	}
	if state != nil {
		writeJSON(w, http.StatusOK, state)
		return
	}
	h.redirect(w, r, c.DetailPath())
}
