package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/secmon-lab/queuewatch/pkg/domain/model"
	"github.com/secmon-lab/queuewatch/pkg/domain/types"
	"github.com/secmon-lab/queuewatch/pkg/usecase"
	"github.com/secmon-lab/queuewatch/pkg/utils/logging"
)

// TriageUseCase is the slice of the use-case layer exposed over HTTP.
type TriageUseCase interface {
	RunPollCycle(ctx context.Context, mode types.Mode) (*model.PollResult, error)
	ActiveMode(ctx context.Context) (types.Mode, error)
	SwitchMode(ctx context.Context, mode types.Mode) error
	SnoozeCase(ctx context.Context, caseID types.CaseID, minutes int) error
	WakeCase(ctx context.Context, caseID types.CaseID) error
	ToggleActionTaken(ctx context.Context, caseID types.CaseID, taken bool) error
	ConfirmAction(ctx context.Context, caseID types.CaseID, actionType types.ActionType, rec *model.CaseRecord) error
	ForceReprocess(ctx context.Context, caseRef string) (*usecase.ReprocessResult, error)
}

type Server struct {
	router *chi.Mux
	uc     TriageUseCase
}

type Options func(*Server)

func New(uc TriageUseCase, opts ...Options) (*Server, error) {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/poll", pollHandler(s.uc))
		r.Get("/mode", getModeHandler(s.uc))
		r.Put("/mode", putModeHandler(s.uc))
		r.Post("/reprocess", reprocessHandler(s.uc))

		r.Route("/cases/{caseID}", func(r chi.Router) {
			r.Post("/snooze", snoozeHandler(s.uc))
			r.Delete("/snooze", wakeHandler(s.uc))
			r.Post("/action", actionHandler(s.uc))
			r.Post("/confirm", confirmHandler(s.uc))
		})
	})

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.From(r.Context()).Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
