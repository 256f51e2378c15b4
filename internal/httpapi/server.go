// Package httpapi exposes the review service over HTTP and a websocket
// progress stream.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/park285/Cheese-GameReview/internal/domain"
	"github.com/park285/Cheese-GameReview/internal/metrics"
	"github.com/park285/Cheese-GameReview/internal/service/review"
	"github.com/park285/Cheese-GameReview/pkg/reviewdto"
)

// ReviewService is the part of review.Service the API calls.
type ReviewService interface {
	Submit(ctx context.Context, req review.SubmitRequest) (*domain.Review, error)
	Get(ctx context.Context, id string) (*domain.Review, error)
	List(ctx context.Context, limit int) ([]domain.ReviewListItem, error)
	RenderPosition(ctx context.Context, id string, ply int) ([]byte, error)
}

const maxBodyBytes = 512 << 10

type Server struct {
	svc      ReviewService
	validate *validator.Validate
	logger   *zap.Logger
}

func NewServer(svc ReviewService, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{svc: svc, validate: validator.New(), logger: logger}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1/reviews", func(r chi.Router) {
		r.Post("/", s.submit)
		r.Get("/", s.list)
		r.Get("/stream", s.stream)
		r.Get("/{id}", s.get)
		r.Get("/{id}/positions/{ply}.png", s.position)
	})
	return r
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request) {
	var body reviewdto.SubmitRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, reviewdto.DomainError{Code: reviewdto.CodeInvalidRequest, Message: "invalid request body: " + err.Error()})
		return
	}
	req, derr := s.submitRequest(body)
	if derr != nil {
		writeJSON(w, http.StatusBadRequest, derr)
		return
	}
	rev, err := s.svc.Submit(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ToReview(rev))
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, reviewdto.DomainError{Code: reviewdto.CodeInvalidRequest, Message: "limit must be a non-negative integer"})
			return
		}
		limit = n
	}
	items, err := s.svc.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reviewdto.ListResponse{Reviews: toListItems(items)})
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	rev, err := s.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ToReview(rev))
}

func (s *Server) position(w http.ResponseWriter, r *http.Request) {
	ply, err := strconv.Atoi(chi.URLParam(r, "ply"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, reviewdto.DomainError{Code: reviewdto.CodeInvalidRequest, Message: "ply must be an integer"})
		return
	}
	data, err := s.svc.RenderPosition(r.Context(), chi.URLParam(r, "id"), ply)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400, immutable")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// requestLogger logs one line per request once the response is written.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.logger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("elapsed", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
