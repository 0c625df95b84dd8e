package handlers

import (
	"net/http"

	"github.com/Harshitk-cp/concord/internal/profile"
)

type DomainHandler struct {
	profiles *profile.Registry
}

// NewDomainHandler creates a new domain handler.
func NewDomainHandler(profiles *profile.Registry) *DomainHandler {
	return &DomainHandler{profiles: profiles}
}

func (h *DomainHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"default": profile.DefaultDomain,
		"domains": h.profiles.All(),
	})
}
