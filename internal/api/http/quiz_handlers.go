package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-quiz/internal/attempt"
	"github.com/mind-engage/mindengage-quiz/internal/auth"
	"github.com/mind-engage/mindengage-quiz/internal/quiz"
	"github.com/mind-engage/mindengage-quiz/internal/rbac"
)

// POST /quizzes
func CreateQuizHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var q quiz.Quiz
		if !decodeJSON(w, r, &q) {
			return
		}
		q.ID = ""
		q.CreatedBy = auth.SubjectFromContext(r.Context())
		saved, err := store.Put(r.Context(), q)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeOK(w, http.StatusCreated, map[string]any{"quiz": saved})
	}
}

// PUT /quizzes/{quizID} replaces the quiz content. Authorship and creation
// time are kept.
func UpdateQuizHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "quizID")
		existing, err := store.Get(r.Context(), id)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		var q quiz.Quiz
		if !decodeJSON(w, r, &q) {
			return
		}
		q.ID = existing.ID
		q.CreatedBy = existing.CreatedBy
		saved, err := store.Put(r.Context(), q)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeOK(w, http.StatusOK, map[string]any{"quiz": saved})
	}
}

// GET /quizzes?course_id=...&limit=50&offset=0
func ListQuizzesHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		list, err := store.List(r.Context(), quiz.ListOpts{
			CourseID:  strings.TrimSpace(q.Get("course_id")),
			CreatedBy: strings.TrimSpace(q.Get("created_by")),
			Limit:     parseIntDefault(q.Get("limit"), 50),
			Offset:    parseIntDefault(q.Get("offset"), 0),
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeOK(w, http.StatusOK, map[string]any{"quizzes": list})
	}
}

// GET /quizzes/{quizID}. Callers without quiz:view-key get the key-free view.
func GetQuizHandler(store quiz.Store, checker *rbac.Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := store.Get(r.Context(), chi.URLParam(r, "quizID"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		if checker.Allowed(r.Context(), "quiz:view-key") {
			writeOK(w, http.StatusOK, map[string]any{"quiz": q})
			return
		}
		writeOK(w, http.StatusOK, map[string]any{"quiz": quiz.StudentView(q, nil)})
	}
}

// DELETE /quizzes/{quizID}; 409 while any attempt references the quiz.
func DeleteQuizHandler(svc *attempt.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.RemoveQuiz(r.Context(), chi.URLParam(r, "quizID")); err != nil {
			writeServiceError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
