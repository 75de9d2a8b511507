package instagram

import (
	"encoding/json"
	"errors"
	"log"
	"log/slog"
	"net/http"

	"github.com/startzy/social-connect/connection"
)

// Server exposes the Instagram connection flow over HTTP.
type Server struct {
	svc  *Service
	eval *connection.Evaluator
	corr connection.Correlator
}

func NewServer(svc *Service, eval *connection.Evaluator, corr connection.Correlator) *Server {
	return &Server{svc: svc, eval: eval, corr: corr}
}

// Register mounts the Instagram routes on the mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /auth/instagram/auth-url", s.HandleAuthURL)
	mux.HandleFunc("GET /auth/instagram/callback", s.HandleCallback)
	mux.HandleFunc("GET /auth/instagram/connection-status/{userId}", s.HandleConnectionStatus)
}

func (s *Server) HandleAuthURL(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "Missing userId parameter", "")
		return
	}

	state, err := s.corr.Issue(r.Context(), userID)
	if err != nil {
		log.Printf("Error issuing state token: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to generate auth URL", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"authUrl": s.svc.cfg.AuthCodeURL(state),
	})
}

func (s *Server) HandleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	code, state, oauthErr := q.Get("code"), q.Get("state"), q.Get("error")

	if oauthErr != "" {
		writeError(w, http.StatusBadRequest, "Instagram OAuth failed", oauthErr)
		return
	}
	if code == "" || state == "" {
		writeError(w, http.StatusBadRequest, "Missing required parameters", "Code and state are required")
		return
	}

	userID, err := s.corr.Resolve(r.Context(), state)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid state parameter", err.Error())
		return
	}

	profile, err := s.svc.Connect(r.Context(), userID, code)
	if err != nil {
		slog.Error("instagram connect failed", "user_id", userID, "err", err)
		switch {
		case errors.Is(err, connection.ErrNoLinkedAccount):
			writeError(w, http.StatusBadRequest, "No Instagram Business Account found",
				"Please connect an Instagram Business or Creator account to your Facebook page.")
		case errors.Is(err, connection.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "User not found", "")
		default:
			writeError(w, http.StatusInternalServerError, "Instagram connection failed", err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data": map[string]any{
			"username":            profile.DisplayName,
			"followers_count":     profile.Followers,
			"media_count":         profile.MediaCount,
			"profile_picture_url": profile.AvatarURL,
		},
	})
}

func (s *Server) HandleConnectionStatus(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "User ID is required", "")
		return
	}

	status, err := s.eval.Evaluate(r.Context(), userID)
	if err != nil {
		if errors.Is(err, connection.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "User not found", "")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to check connection status", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error writing JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	body := map[string]string{"error": message}
	if details != "" {
		body["details"] = details
	}
	writeJSON(w, status, body)
}
