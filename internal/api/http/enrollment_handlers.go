package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-quiz/internal/enrollment"
)

type enrollReq struct {
	StudentIDs []string `json:"student_ids" validate:"required,min=1,dive,required"`
	Status     string   `json:"status" validate:"omitempty,oneof=active invited dropped"`
}

// POST /courses/{courseID}/students { "student_ids": [...], "status": "active" }
func EnrollStudentsHandler(roster enrollment.Roster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req enrollReq
		if !decodeValid(w, r, &req) {
			return
		}
		courseID := chi.URLParam(r, "courseID")
		status := enrollment.NormalizeStatus(req.Status)
		if err := roster.Enroll(r.Context(), courseID, req.StudentIDs, status); err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeOK(w, http.StatusOK, map[string]any{
			"courseId": courseID,
			"status":   status,
			"enrolled": len(req.StudentIDs),
		})
	}
}
