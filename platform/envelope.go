package platform

import "encoding/json"

// GraphErrorMessage extracts the human-readable message from a Facebook
// Graph API error envelope: {"error":{"message":"...","type":...}}.
func GraphErrorMessage(body []byte) string {
	var env struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &env); err != nil || env.Error.Message == "" {
		return "unknown error"
	}
	return env.Error.Message
}

// OAuthErrorMessage extracts the message from a standard OAuth2 token
// endpoint error body: {"error":"...","error_description":"..."}.
func OAuthErrorMessage(body []byte) string {
	var env struct {
		Error       string `json:"error"`
		Description string `json:"error_description"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return "unknown error"
	}
	if env.Description != "" {
		return env.Description
	}
	if env.Error != "" {
		return env.Error
	}
	return "unknown error"
}
