package api

import (
	"net/http"

	"github.com/seenimoa/newspulse/internal/config"
)

// ConfigResponse is the JSON envelope returned by GET /api/v1/config.
type ConfigResponse struct {
	Config      *config.Config            `json:"config"`
	Credentials []config.CredentialStatus `json:"credentials"`
}

// handleGetConfig returns the running configuration. Secrets are excluded
// via json:"-" tags and reported only as masked credential status.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: ConfigResponse{
			Config:      s.cfg,
			Credentials: config.CheckCredentials(s.cfg),
		},
	})
}
