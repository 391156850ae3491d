package web

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/aliskhannn/trivia-quiz/internal/domain/entities"
	"github.com/aliskhannn/trivia-quiz/internal/service"
)

const (
	frontend       = "web"
	cookieName     = "quiz_session"
	resultsLimit   = 20
	shutdownPeriod = 5 * time.Second
)

// Sessions is the part of the session manager the web front-end needs.
type Sessions interface {
	Acquire(key, frontend string, listener service.Listener) (*service.Session, bool, error)
	Len() int
	RecentResults(ctx context.Context, limit int) ([]*entities.QuizResult, error)
}

type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	SessionTTL   time.Duration // cookie lifetime
}

type Server struct {
	cfg      Config
	sessions Sessions
	logger   *zap.Logger
	page     *template.Template
	router   *mux.Router
}

func NewServer(cfg Config, sessions Sessions, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		cfg:      cfg,
		sessions: sessions,
		logger:   logger.With(zap.String("frontend", frontend)),
		page:     template.Must(template.New("page").Parse(pageHTML)),
		router:   mux.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("/", s.withErrorHandling(s.handlePage)).Methods(http.MethodGet)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/state", s.withErrorHandling(s.handleState)).Methods(http.MethodGet)
	api.HandleFunc("/answer", s.withErrorHandling(s.handleAnswer)).Methods(http.MethodPost)
	api.HandleFunc("/restart", s.withErrorHandling(s.handleRestart)).Methods(http.MethodPost)
	api.HandleFunc("/results", s.withErrorHandling(s.handleResults)).Methods(http.MethodGet)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("web server started", zap.String("addr", s.cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownPeriod)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("web server stopped")
	return nil
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) error {
	sess, _, err := s.session(w, r)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return s.page.Execute(w, newStateResponse(sess.Snapshot()))
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) error {
	sess, _, err := s.session(w, r)
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, newStateResponse(sess.Snapshot()))
	return nil
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) error {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return nil
	}

	sess, _, err := s.session(w, r)
	if err != nil {
		return err
	}

	st, err := sess.Submit(req.Answer)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, newStateResponse(st))
	case errors.Is(err, service.ErrSessionClosed):
		writeJSON(w, http.StatusGone, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrEmptyAnswer):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrAnswerPending), errors.Is(err, service.ErrNotInProgress):
		resp := newStateResponse(st)
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error(), State: &resp})
	default:
		return err
	}
	return nil
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) error {
	sess, created, err := s.session(w, r)
	if err != nil {
		return err
	}

	// A freshly created session is already fetching its first batch.
	if created {
		writeJSON(w, http.StatusOK, newStateResponse(sess.Snapshot()))
		return nil
	}

	st, err := sess.Restart()
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, newStateResponse(st))
	return nil
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) error {
	results, err := s.sessions.RecentResults(r.Context(), resultsLimit)
	if err != nil {
		return err
	}

	out := make([]resultPayload, 0, len(results))
	for _, res := range results {
		out = append(out, resultPayload{
			Frontend:    res.Frontend,
			Score:       res.Score,
			Total:       res.Total,
			Percent:     res.Percentage(),
			CompletedAt: res.CompletedAt.UTC().Format(time.RFC3339),
		})
	}

	writeJSON(w, http.StatusOK, out)
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.sessions.Len(),
	})
}

// session resolves the caller's session from the cookie, issuing a new one when
// the cookie is missing or malformed. created reports whether the session was
// started by this call.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*service.Session, bool, error) {
	id := ""
	if c, err := r.Cookie(cookieName); err == nil {
		if parsed, err := uuid.Parse(c.Value); err == nil {
			id = parsed.String()
		}
	}
	if id == "" {
		id = uuid.NewString()
	}

	cookie := &http.Cookie{
		Name:     cookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if s.cfg.SessionTTL > 0 {
		cookie.MaxAge = int(s.cfg.SessionTTL.Seconds())
	}
	http.SetCookie(w, cookie)

	return s.sessions.Acquire(frontend+":"+id, frontend, nil)
}
