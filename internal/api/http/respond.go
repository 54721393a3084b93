package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/mind-engage/mindengage-quiz/internal/attempt"
	"github.com/mind-engage/mindengage-quiz/internal/auth"
	"github.com/mind-engage/mindengage-quiz/internal/quiz"
)

var validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}()

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeOK(w http.ResponseWriter, status int, fields map[string]any) {
	body := map[string]any{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	writeJSON(w, status, body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "message": msg})
}

// writeServiceError maps domain errors to HTTP statuses. Unknown errors are
// logged with the request id and reported as a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *quiz.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false, "message": "validation failed", "errors": ve.Problems,
		})
	case errors.Is(err, attempt.ErrMissingFields):
		writeError(w, http.StatusBadRequest, "attemptId and answers are required")
	case errors.Is(err, attempt.ErrMaxAttempts):
		writeError(w, http.StatusBadRequest, "maximum attempts reached")
	case errors.Is(err, auth.ErrInvalidRole), errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, attempt.ErrNotEnrolled):
		writeError(w, http.StatusForbidden, "not enrolled in this course")
	case errors.Is(err, quiz.ErrNotFound):
		writeError(w, http.StatusNotFound, "quiz not found")
	case errors.Is(err, attempt.ErrAttemptNotFound):
		writeError(w, http.StatusNotFound, "attempt not found or already submitted")
	case errors.Is(err, auth.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, quiz.ErrInUse):
		writeError(w, http.StatusConflict, "quiz has attempts and cannot be deleted")
	case errors.Is(err, auth.ErrUserExists):
		writeError(w, http.StatusConflict, "username already taken")
	case errors.Is(err, attempt.ErrDuplicateInProgress):
		writeError(w, http.StatusConflict, "another attempt is being started, retry")
	default:
		log.Printf("[%s] %s %s: %v", middleware.GetReqID(r.Context()), r.Method, r.URL.Path, err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return false
	}
	return true
}

// decodeValid decodes the body into dst and runs its validate tags.
func decodeValid(w http.ResponseWriter, r *http.Request, dst any) bool {
	if !decodeJSON(w, r, dst) {
		return false
	}
	err := validate.Struct(dst)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		problems = append(problems, fe.Field()+" failed "+fe.Tag())
	}
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"success": false, "message": "validation failed", "errors": problems,
	})
	return false
}

func identity(r *http.Request) attempt.Identity {
	return attempt.Identity{UserID: auth.SubjectFromContext(r.Context())}
}

func parseIntDefault(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return def
	}
	return n
}
