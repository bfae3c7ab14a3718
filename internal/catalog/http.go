package catalog

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"Storefront/pkg/kit"
)

const (
	readyTimeout       = 1 * time.Second
	defaultSearchLimit = 10
	maxSearchLimit     = 100
)

type Server struct {
	Service *Service
	Log     *zap.Logger

	// Tokens enables the admin routes when set.
	Tokens *TokenMaker

	// WriteLimiter throttles form submissions per client IP when set.
	WriteLimiter *kit.IPRateLimiter
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", s.ready)

	r.Route("/products", func(pr chi.Router) {
		pr.Get("/", s.list)
		pr.Get("/search", s.search)
		pr.Post("/validate", s.validateField)
		pr.With(s.throttle).Post("/", s.create)

		pr.Get("/{id}", s.get)
		pr.Get("/{id}/images/{index}", s.image)

		if s.Tokens != nil {
			pr.Group(func(ar chi.Router) {
				ar.Use(RequireAdmin(s.Tokens))
				ar.Put("/", s.replaceAll)
				ar.Patch("/{id}", s.update)
				ar.Delete("/{id}", s.remove)
			})
		}
	})

	r.Get("/api/products/{id}", s.get)

	return r
}

func (s *Server) logger() *zap.Logger { return kit.OrNop(s.Log) }

func (s *Server) throttle(next http.Handler) http.Handler {
	if s.WriteLimiter == nil {
		return next
	}
	return s.WriteLimiter.Middleware(next)
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := s.Service.Ping(ctx); err != nil {
		s.logger().Warn("readyz failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	c, err := ParseCriteria(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, s.Service.List(r.Context(), c))
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	limit := defaultSearchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxSearchLimit {
			kit.WriteError(w, r, http.StatusBadRequest, "bad limit", map[string]any{"max": maxSearchLimit})
			return
		}
		limit = n
	}
	kit.WriteJSON(w, http.StatusOK, s.Service.Search(r.Context(), r.URL.Query().Get("q"), limit))
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	p, err := s.Service.Detail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

type imageResp struct {
	URL   string `json:"url"`
	Index int    `json:"index"`
	Count int    `json:"count"`
}

// image serves one carousel slot; the index wraps around like the
// carousel's previous/next controls.
func (s *Server) image(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad image index", nil)
		return
	}

	p, err := s.Service.Detail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	c := NewCarousel(p.ImageURLs)
	url := c.Seek(idx)
	kit.WriteJSON(w, http.StatusOK, imageResp{URL: url, Index: c.Index(), Count: c.Len()})
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var d ProductDraft
	if err := kit.DecodeJSON(w, r, &d); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	p, err := s.Service.AddProduct(r.Context(), d)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusCreated, p)
}

type validateReq struct {
	Field string `json:"field"`
	Value string `json:"value"`
	Price string `json:"price"`
}

type validateResp struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

// validateField backs inline, per-keystroke form feedback.
func (s *Server) validateField(w http.ResponseWriter, r *http.Request) {
	var req validateReq
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	err := ValidateField(req.Field, req.Value, ProductDraft{Price: req.Price})
	if err == nil {
		kit.WriteJSON(w, http.StatusOK, validateResp{Valid: true})
		return
	}

	var ferr *FieldError
	if !errors.As(err, &ferr) {
		kit.WriteError(w, r, http.StatusBadRequest, "unknown field", map[string]any{"field": req.Field})
		return
	}
	kit.WriteJSON(w, http.StatusOK, validateResp{Valid: false, Message: ferr.Message})
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	var patch ProductPatch
	if err := kit.DecodeJSON(w, r, &patch); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	p, err := s.Service.UpdateProduct(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	if err := s.Service.RemoveProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) replaceAll(w http.ResponseWriter, r *http.Request) {
	var products []Product
	if err := kit.DecodeJSON(w, r, &products); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	if err := s.Service.ReplaceAll(r.Context(), products); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr *ValidationError
		perr *PersistenceError
	)

	switch {
	case errors.Is(err, ErrNotFound):
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": chi.URLParam(r, "id")})
	case errors.As(err, &verr):
		kit.WriteError(w, r, http.StatusUnprocessableEntity, verr.Message, verr.Fields)
	case errors.As(err, &perr):
		kit.WriteError(w, r, http.StatusServiceUnavailable, "storage unavailable, please try again", nil)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		kit.WriteError(w, r, http.StatusGatewayTimeout, "timeout", nil)
	default:
		s.logger().Error("catalog request failed", zap.Error(err), zap.String("path", r.URL.Path))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	}
}
