// Package permission decides who may invoke relay commands.
package permission

import (
	"strings"

	"icrelay/internal/models"
)

// Gate holds the fixed allow-list of role ids and the single allow-listed user
type Gate struct {
	roles  map[string]struct{}
	userID string
}

// NewGate builds a gate from the permissions configuration
func NewGate(cfg models.PermissionsConfig) *Gate {
	roles := make(map[string]struct{}, len(cfg.RoleIDs))
	for _, id := range cfg.RoleIDs {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			roles[trimmed] = struct{}{}
		}
	}
	return &Gate{
		roles:  roles,
		userID: strings.TrimSpace(cfg.UserID),
	}
}

// Allowed reports whether the identity may invoke the relay.
//
// Callers without role information (direct messages, HTTP) are always allowed.
// Members need an allow-listed role or the allow-listed user id.
func (g *Gate) Allowed(identity models.Identity) bool {
	if !identity.Member {
		return true
	}
	if g.userID != "" && identity.ID == g.userID {
		return true
	}
	for _, role := range identity.RoleIDs {
		if _, ok := g.roles[role]; ok {
			return true
		}
	}
	return false
}
