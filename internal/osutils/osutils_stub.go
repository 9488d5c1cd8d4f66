//go:build !windows

package osutils

import (
	"github.com/rs/zerolog"
)

// IsAdmin is a stub for non-Windows platforms
func IsAdmin() bool {
	return false
}

// EnsureFirewallRule is a stub for non-Windows platforms
func EnsureFirewallRule(port int, log zerolog.Logger) error {
	log.Debug().Int("port", port).Msg("Firewall: Automatic rule management is only supported on Windows")
	return nil
}
