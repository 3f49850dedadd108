package http

import "net/http"

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string    `json:"token"`
	User  loginUser `json:"user"`
}

type loginUser struct {
	Username string `json:"username"`
}

// handleLogin is the shared-secret stub: exact match against the two
// configured values, a fixed token back, and a deliberately generic failure
// message. The token is never validated anywhere else.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	var req loginRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Username and password are required")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	if req.Username != s.auth.User || req.Password != s.auth.Pass {
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Token: s.auth.Token,
		User:  loginUser{Username: req.Username},
	})
}
