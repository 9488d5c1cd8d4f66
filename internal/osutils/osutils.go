// Package osutils holds OS integration helpers for the server process.
package osutils

import "fmt"

// RuleName is the display name of the inbound firewall rule
const RuleName = "Remote Key Server"

// firewallScript returns the PowerShell that replaces the rule with one
// allowing inbound TCP on port. The rule is not bound to the executable path.
func firewallScript(port int) string {
	return fmt.Sprintf(
		"Remove-NetFirewallRule -DisplayName '%s' -ErrorAction SilentlyContinue; New-NetFirewallRule -DisplayName '%s' -Direction Inbound -LocalPort %d -Protocol TCP -Action Allow -Profile Any",
		RuleName, RuleName, port,
	)
}
