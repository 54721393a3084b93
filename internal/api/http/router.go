package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mind-engage/mindengage-quiz/internal/attempt"
	"github.com/mind-engage/mindengage-quiz/internal/auth"
	"github.com/mind-engage/mindengage-quiz/internal/enrollment"
	"github.com/mind-engage/mindengage-quiz/internal/events"
	"github.com/mind-engage/mindengage-quiz/internal/quiz"
	"github.com/mind-engage/mindengage-quiz/internal/rbac"
)

type Deps struct {
	Auth     *auth.AuthService
	Users    *auth.UserStore // nil disables local login and user admin
	Quizzes  quiz.Store
	Attempts *attempt.Service
	Roster   enrollment.Roster
	Notifier events.Notifier
	Events   EventSource // nil hides GET /events

	// AttachRole, when set, runs after token parsing.
	AttachRole func(http.Handler) http.Handler
	Ready      func(ctx context.Context) error

	CORSOrigins    []string
	RequestTimeout time.Duration
}

func NewRouter(d Deps) http.Handler {
	if d.RequestTimeout <= 0 {
		d.RequestTimeout = 30 * time.Second
	}
	checker := rbac.NewChecker(nil)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(d.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if d.Users != nil {
		r.Post("/auth/login", auth.LoginHandler(d.Auth, d.Users))
	}

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(d.Auth))
		if d.AttachRole != nil {
			pr.Use(d.AttachRole)
		}

		pr.Route("/quizzes", func(qr chi.Router) {
			qr.With(rbac.Require("quiz:create")).Post("/", CreateQuizHandler(d.Quizzes))
			qr.With(rbac.Require("quiz:view")).Get("/", ListQuizzesHandler(d.Quizzes))

			qr.Route("/{quizID}", func(one chi.Router) {
				one.With(rbac.Require("quiz:view")).Get("/", GetQuizHandler(d.Quizzes, checker))
				one.With(rbac.Require("quiz:update")).Put("/", UpdateQuizHandler(d.Quizzes))
				one.With(rbac.Require("quiz:delete")).Delete("/", DeleteQuizHandler(d.Attempts))

				one.With(rbac.Require("attempt:start")).Post("/attempts", StartAttemptHandler(d.Attempts))
				one.With(rbac.Require("attempt:submit")).Post("/submit", SubmitAttemptHandler(d.Attempts, d.Notifier))
				one.With(rbac.Require("attempt:view-own")).Get("/attempts/me", AttemptHistoryHandler(d.Attempts))
				one.With(rbac.Require("attempt:view-all")).Get("/attempts", ListAttemptsHandler(d.Attempts))
			})
		})

		pr.With(rbac.Require("enrollment:manage")).
			Post("/courses/{courseID}/students", EnrollStudentsHandler(d.Roster))

		if d.Events != nil {
			pr.With(rbac.Require("events:read")).Get("/events", ListEventsHandler(d.Events))
		}

		if d.Users != nil {
			pr.With(rbac.Require("users:create")).Post("/users", CreateUserHandler(d.Users))
			pr.With(rbac.Require("users:create")).Post("/users/bulk", BulkCreateUsersHandler(d.Users))
			pr.With(rbac.RequireAny("users:list", "enrollment:manage")).Get("/users", ListUsersHandler(d.Users))
			pr.With(rbac.Require("user:change_password")).
				Post("/users/change-password", ChangePasswordHandler(d.Users))
		}
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if d.Ready != nil {
			if err := d.Ready(r.Context()); err != nil {
				writeError(w, http.StatusServiceUnavailable, "not ready")
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})
	return r
}
