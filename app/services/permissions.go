package services

import (
	"strings"

	"github.com/shashiranjanraj/uniformhub/app/models"
	"github.com/shashiranjanraj/uniformhub/config"
)

// IsAdmin reports the admin sentinel: the admin role or the configured
// admin address.
func IsAdmin(role, email string) bool {
	if role == models.RoleAdmin {
		return true
	}
	admin := config.AdminEmail()
	return admin != "" && strings.EqualFold(strings.TrimSpace(email), admin)
}

// ResolvePermissions returns the full key set with a bool for each. The
// admin sentinel gets everything; others get bag with unknown keys dropped
// and missing keys false.
func ResolvePermissions(roleName string, bag models.PermissionSet, email string) map[string]bool {
	admin := IsAdmin(roleName, email)
	out := make(map[string]bool, len(models.AllPermissions))
	for _, key := range models.AllPermissions {
		out[key] = admin || bag[key]
	}
	return out
}

// normalizePermissions rejects unknown keys and returns a bag holding only
// the granted ones.
func normalizePermissions(in map[string]bool) (models.PermissionSet, error) {
	out := models.PermissionSet{}
	for key, granted := range in {
		if !models.IsPermission(key) {
			return nil, invalid("permissions", "Unknown permission key: "+key+".")
		}
		if granted {
			out[key] = true
		}
	}
	return out, nil
}
