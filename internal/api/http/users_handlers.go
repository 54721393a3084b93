package http

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/mind-engage/mindengage-quiz/internal/auth"
)

type createUserReq struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,min=4"`
	Role     string `json:"role" validate:"omitempty,oneof=student trainer admin"`
}

// POST /users
func CreateUserHandler(users *auth.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createUserReq
		if !decodeValid(w, r, &req) {
			return
		}
		u, err := users.Create(r.Context(), req.Username, req.Password, req.Role)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeOK(w, http.StatusCreated, map[string]any{"user": u})
	}
}

// GET /users?role=student
func ListUsersHandler(users *auth.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := users.List(r.Context(), strings.TrimSpace(r.URL.Query().Get("role")))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeOK(w, http.StatusOK, map[string]any{"users": list})
	}
}

// POST /users/bulk accepts a JSON array or a multipart file= (CSV with a
// username,password[,role] header, or JSON).
func BulkCreateUsersHandler(users *auth.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rows []auth.NewAccount
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			f, _, err := r.FormFile("file")
			if err != nil {
				writeError(w, http.StatusBadRequest, "file required")
				return
			}
			defer f.Close()
			body, err := io.ReadAll(f)
			if err != nil {
				writeError(w, http.StatusBadRequest, "unreadable file")
				return
			}
			trimmed := strings.TrimSpace(string(body))
			if strings.HasPrefix(trimmed, "[") {
				err = json.Unmarshal([]byte(trimmed), &rows)
			} else {
				rows, err = parseAccountsCSV(strings.NewReader(trimmed))
			}
			if err != nil {
				writeError(w, http.StatusBadRequest, "bad file: "+err.Error())
				return
			}
		} else if !decodeJSON(w, r, &rows) {
			return
		}

		created, skipped, err := users.Import(r.Context(), rows)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeOK(w, http.StatusOK, map[string]any{"created": created, "skipped": skipped})
	}
}

func parseAccountsCSV(r io.Reader) ([]auth.NewAccount, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	hdr, err := cr.Read()
	if err != nil {
		return nil, err
	}
	idx := map[string]int{}
	for i, h := range hdr {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, k := range []string{"username", "password"} {
		if _, ok := idx[k]; !ok {
			return nil, errors.New("missing column: " + k)
		}
	}
	var rows []auth.NewAccount
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		row := auth.NewAccount{Username: rec[idx["username"]], Password: rec[idx["password"]]}
		if i, ok := idx["role"]; ok {
			row.Role = rec[i]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

type changePasswordReq struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=4"`
}

// POST /users/change-password
func ChangePasswordHandler(users *auth.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := auth.SubjectFromContext(r.Context())
		if userID == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		var req changePasswordReq
		if !decodeValid(w, r, &req) {
			return
		}
		if err := users.ChangePassword(r.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				writeError(w, http.StatusForbidden, "incorrect old password")
				return
			}
			writeServiceError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
