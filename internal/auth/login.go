package auth

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
)

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginHandler serves POST /auth/login { "username": "...", "password": "..." }.
func LoginHandler(a *AuthService, users *UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		u, err := users.Authenticate(r.Context(), req.Username, req.Password)
		if err != nil {
			if !errors.Is(err, ErrInvalidCredentials) {
				log.Printf("auth: login %q: %v", req.Username, err)
			}
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		tok, err := a.IssueJWT(u.ID, u.Role)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "issue token")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success":      true,
			"access_token": tok,
			"user":         u,
		})
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": msg})
}
