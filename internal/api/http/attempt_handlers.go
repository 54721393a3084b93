package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-quiz/internal/attempt"
	"github.com/mind-engage/mindengage-quiz/internal/events"
	"github.com/mind-engage/mindengage-quiz/internal/grading"
)

// POST /quizzes/{quizID}/attempts
func StartAttemptHandler(svc *attempt.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := svc.Start(r.Context(), identity(r), chi.URLParam(r, "quizID"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		status := http.StatusCreated
		if res.Resumed {
			status = http.StatusOK
		}
		writeOK(w, status, map[string]any{
			"attemptId": res.Attempt.ID,
			"attempt":   res.Attempt,
			"quiz":      res.Quiz,
			"resumed":   res.Resumed,
		})
	}
}

type submitReq struct {
	AttemptID string             `json:"attemptId"`
	Answers   []grading.Response `json:"answers"`
}

// POST /quizzes/{quizID}/submit
//
// The result is handed to notify after the attempt is finalized. Delivery
// failures never change the response.
func SubmitAttemptHandler(svc *attempt.Service, notify events.Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req submitReq
		if !decodeJSON(w, r, &req) {
			return
		}
		who := identity(r)
		res, err := svc.Submit(r.Context(), who, chi.URLParam(r, "quizID"), attempt.SubmitInput{
			AttemptID: strings.TrimSpace(req.AttemptID),
			Answers:   req.Answers,
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		if notify != nil {
			// the request context may already be cancelled once we respond
			ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), 5*time.Second)
			_ = notify.AttemptSubmitted(ctx, events.AttemptSubmitted{
				AttemptID:     res.AttemptID,
				AttemptNumber: res.AttemptNumber,
				QuizID:        res.QuizID,
				CourseID:      res.CourseID,
				StudentID:     who.UserID,
				Score:         res.Score,
				EarnedPoints:  res.EarnedPoints,
				TotalPoints:   res.TotalPoints,
				Passed:        res.Passed,
				TimeSpent:     res.TimeSpent,
				SubmittedAt:   res.SubmittedAt.Unix(),
			})
			cancel()
		}
		body := map[string]any{
			"attemptId":     res.AttemptID,
			"attemptNumber": res.AttemptNumber,
			"quizId":        res.QuizID,
			"score":         res.Score,
			"earnedPoints":  res.EarnedPoints,
			"totalPoints":   res.TotalPoints,
			"passed":        res.Passed,
			"timeSpent":     res.TimeSpent,
			"submittedAt":   res.SubmittedAt,
		}
		if res.DetailedResults != nil {
			body["detailedResults"] = res.DetailedResults
		}
		writeOK(w, http.StatusOK, body)
	}
}

// GET /quizzes/{quizID}/attempts/me
func AttemptHistoryHandler(svc *attempt.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h, err := svc.History(r.Context(), identity(r), chi.URLParam(r, "quizID"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeOK(w, http.StatusOK, map[string]any{"history": h})
	}
}

// GET /quizzes/{quizID}/attempts?student_id=...&status=...&limit=50&offset=0
func ListAttemptsHandler(svc *attempt.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		list, err := svc.ListAttempts(r.Context(), chi.URLParam(r, "quizID"), attempt.ListOpts{
			StudentID: strings.TrimSpace(q.Get("student_id")),
			Status:    strings.TrimSpace(q.Get("status")),
			Limit:     parseIntDefault(q.Get("limit"), 50),
			Offset:    parseIntDefault(q.Get("offset"), 0),
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeOK(w, http.StatusOK, map[string]any{"attempts": list})
	}
}
