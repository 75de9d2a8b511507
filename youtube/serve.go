package youtube

import (
	"encoding/json"
	"errors"
	"log"
	"log/slog"
	"net/http"

	"github.com/startzy/social-connect/connection"
)

// Server exposes the YouTube connection flow over HTTP. Unlike the
// Instagram callback, the YouTube callback answers with a browser redirect
// to the frontend carrying a success or error query parameter.
type Server struct {
	svc  *Service
	eval *connection.Evaluator
	corr connection.Correlator
}

func NewServer(svc *Service, eval *connection.Evaluator, corr connection.Correlator) *Server {
	return &Server{svc: svc, eval: eval, corr: corr}
}

// Register mounts the YouTube routes on the mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /auth/youtube/auth-url", s.HandleAuthURL)
	mux.HandleFunc("GET /auth/youtube/callback", s.HandleCallback)
	mux.HandleFunc("GET /auth/youtube/connection-status/{userId}", s.HandleConnectionStatus)
	mux.HandleFunc("POST /auth/youtube/refresh-token", s.HandleRefreshToken)
	mux.HandleFunc("POST /auth/youtube/validate-token", s.HandleValidateToken)
}

func (s *Server) HandleAuthURL(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "User ID is required", "")
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
		slog.Warn("youtube oauth declined", "err", oauthErr)
		s.redirectError(w, r, "oauth_failed")
		return
	}
	if code == "" || state == "" {
		s.redirectError(w, r, "missing_code")
		return
	}

	userID, err := s.corr.Resolve(r.Context(), state)
	if err != nil {
		// State was present but unresolvable (expired or replayed opaque
		// token): not the same thing as a missing parameter.
		slog.Warn("youtube state resolution failed", "err", err)
		s.redirectError(w, r, "callback_failed")
		return
	}

	if err := s.svc.Connect(r.Context(), userID, code); err != nil {
		slog.Error("youtube connect failed", "user_id", userID, "err", err)
		s.redirectError(w, r, callbackErrorCode(err))
		return
	}

	http.Redirect(w, r, s.svc.cfg.FrontendURL+"/profile?success=youtube_connected", http.StatusFound)
}

// callbackErrorCode maps a failed connection attempt to the error code the
// frontend knows how to display.
func callbackErrorCode(err error) string {
	if errors.Is(err, errIncompleteTokens) {
		return "incomplete_tokens"
	}
	var step *connection.StepError
	if errors.As(err, &step) {
		switch step.Step {
		case connection.StepCodeExchange:
			return "token_exchange_failed"
		case connection.StepChannelFetch:
			return "channel_fetch_failed"
		}
	}
	return "callback_failed"
}

func (s *Server) redirectError(w http.ResponseWriter, r *http.Request, code string) {
	http.Redirect(w, r, s.svc.cfg.FrontendURL+"/profile?error="+code, http.StatusFound)
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

// HandleRefreshToken forces a refresh regardless of expiry, falling back to
// cached channel data when the refresh cannot be performed.
func (s *Server) HandleRefreshToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		writeError(w, http.StatusBadRequest, "User ID is required", "")
		return
	}

	rec, err := s.svc.store.Get(r.Context(), req.UserID, connection.PlatformYouTube)
	if err != nil {
		if errors.Is(err, connection.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "User not found", "")
			return
		}
		writeError(w, http.StatusInternalServerError, "Token refresh failed", err.Error())
		return
	}

	if rec.Credential == nil || rec.Credential.RefreshToken == "" {
		if rec.Profile.Usable() {
			writeJSON(w, http.StatusOK, map[string]any{
				"success":        true,
				"channelData":    rec.Profile,
				"warning":        "Using cached data - no refresh token available",
				"needsReconnect": true,
			})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":          "No refresh token found. Please reconnect your YouTube account.",
			"needsReconnect": true,
		})
		return
	}

	cred, err := s.eval.RefreshCredential(r.Context(), req.UserID, rec.Credential)
	if err != nil {
		slog.Warn("manual token refresh failed", "user_id", req.UserID, "err", err)
		if rec.Profile.Usable() {
			writeJSON(w, http.StatusOK, map[string]any{
				"success":        true,
				"channelData":    rec.Profile,
				"warning":        "Using cached data - token refresh failed",
				"needsReconnect": true,
			})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":          "Token refresh failed and no cached data available",
			"details":        err.Error(),
			"needsReconnect": true,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"accessToken":  cred.AccessToken,
		"expiresAt":    cred.ExpiresAt,
		"refreshToken": cred.RefreshToken,
	})
}

func (s *Server) HandleValidateToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AccessToken == "" {
		writeError(w, http.StatusBadRequest, "Access token is required", "")
		return
	}

	valid, status, err := s.svc.ValidateToken(r.Context(), req.AccessToken)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Token validation failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"valid":  valid,
		"status": status,
	})
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
