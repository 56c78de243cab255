// Package demo is an in-memory implementation of the book review service,
// used for local development and as the backend of end-to-end tests.
package demo

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/hay-kot/bookreview/internal/core/config"
	"github.com/hay-kot/bookreview/internal/core/logging"
	"github.com/hay-kot/bookreview/internal/core/review"
	"github.com/hay-kot/bookreview/internal/core/validate"
)

// DefaultLogoutPath is mounted when the endpoints leave logout unset.
const DefaultLogoutPath = "/auth/logout"

// Server serves the review API from a Store.
type Server struct {
	store     *Store
	endpoints config.Endpoints
	pageSize  int
	log       zerolog.Logger
}

// NewServer creates a server. pageSize is used when a list request does not
// send a limit.
func NewServer(store *Store, endpoints config.Endpoints, pageSize int) *Server {
	if endpoints.Logout == "" {
		endpoints.Logout = DefaultLogoutPath
	}
	if pageSize < 1 {
		pageSize = config.DefaultConfig().Demo.PageSize
	}
	return &Server{
		store:     store,
		endpoints: endpoints,
		pageSize:  pageSize,
		log:       logging.Component("demo"),
	}
}

// Handler returns the HTTP handler for the API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Post(s.endpoints.SignIn, s.handleSignIn)
	r.Post(s.endpoints.Register, s.handleRegister)

	r.Group(func(r chi.Router) {
		r.Use(s.requireToken)
		r.Get(s.endpoints.Books, s.handleListReviews)
		r.Post(s.endpoints.Books, s.handleCreateReview)
		r.Post(s.endpoints.Logout, s.handleLogout)
	})

	return r
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("demo server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

type tokenKey struct{}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			respondError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		if _, ok := s.store.Lookup(token); !ok {
			respondError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), tokenKey{}, token)))
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("handled")
	})
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Credentials(payload.Email, payload.Password); err != nil {
		respondFieldErrors(w, err)
		return
	}

	token, err := s.store.Authenticate(payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			respondError(w, http.StatusUnauthorized, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "sign in failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Registration(payload.Name, payload.Email, payload.Password); err != nil {
		respondFieldErrors(w, err)
		return
	}

	if err := s.store.CreateUser(payload.Name, payload.Email, payload.Password); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			respondError(w, http.StatusConflict, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"message": "user created"})
}

func (s *Server) handleListReviews(w http.ResponseWriter, r *http.Request) {
	offset, err := queryInt(r, "offset", 0)
	if err != nil || offset < 0 {
		respondError(w, http.StatusBadRequest, "offset must be a non-negative integer")
		return
	}
	limit, err := queryInt(r, "limit", s.pageSize)
	if err != nil || limit < 1 {
		respondError(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}
	limit = min(limit, config.MaxPageSize)

	reviews, total := s.store.Page(offset, limit)

	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	respondJSON(w, http.StatusOK, struct {
		Reviews    []review.Review `json:"reviews"`
		TotalCount int             `json:"totalCount"`
	}{reviews, total})
}

func (s *Server) handleCreateReview(w http.ResponseWriter, r *http.Request) {
	var draft review.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	draft = draft.Normalize()
	if err := validate.Draft(draft); err != nil {
		respondFieldErrors(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, s.store.AddReview(draft))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token, _ := r.Context().Value(tokenKey{}).(string)
	s.store.Revoke(token)
	w.WriteHeader(http.StatusNoContent)
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"message": msg})
}

func respondFieldErrors(w http.ResponseWriter, err error) {
	respondJSON(w, http.StatusBadRequest, map[string]any{
		"message": "validation failed",
		"fields":  validate.FieldMessages(err),
	})
}
