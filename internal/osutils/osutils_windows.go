//go:build windows

package osutils

import (
	"fmt"
	"os/exec"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"golang.org/x/sys/windows"
)

// IsAdmin checks if the current process has administrative privileges
func IsAdmin() bool {
	var token windows.Token
	h, _ := windows.GetCurrentProcess()
	err := windows.OpenProcessToken(h, windows.TOKEN_QUERY, &token)
	if err != nil {
		return false
	}
	defer token.Close()

	var sid *windows.SID
	err = windows.AllocateAndInitializeSid(
		&windows.SECURITY_NT_AUTHORITY,
		2,
		windows.SECURITY_BUILTIN_DOMAIN_RID,
		windows.DOMAIN_ALIAS_RID_ADMINS,
		0, 0, 0, 0, 0, 0,
		&sid,
	)
	if err != nil {
		return false
	}
	defer windows.FreeSid(sid)

	member, err := token.IsMember(sid)
	if err != nil {
		return false
	}

	return member
}

// EnsureFirewallRule checks that an inbound rule for port exists and, if
// not, creates it with PowerShell, elevating through UAC when needed.
func EnsureFirewallRule(port int, log zerolog.Logger) error {
	log = log.With().Str("component", "firewall").Str("rule", RuleName).Int("port", port).Logger()

	output, err := exec.Command("netsh", "advfirewall", "firewall", "show", "rule", "name="+RuleName).CombinedOutput()
	outputStr := string(output)

	if err == nil && strings.Contains(outputStr, RuleName) {
		if strings.Contains(outputStr, fmt.Sprintf("%d", port)) && strings.Contains(outputStr, "Allow") {
			log.Debug().Msg("Firewall rule already present")
			return nil
		}
		log.Info().Msg("Firewall rule exists but port/action mismatch, updating")
	} else {
		log.Info().Msg("Firewall rule not found, creating")
	}

	psCommand := firewallScript(port)

	if !IsAdmin() {
		log.Info().Msg("Requesting UAC elevation to create firewall rule")

		verbPtr, _ := syscall.UTF16PtrFromString("runas")
		exePtr, _ := syscall.UTF16PtrFromString("powershell.exe")
		argPtr, _ := syscall.UTF16PtrFromString(fmt.Sprintf("-NoProfile -WindowStyle Hidden -Command \"%s\"", psCommand))

		var showCmd int32 = 0 // SW_HIDE

		if err := windows.ShellExecute(0, verbPtr, exePtr, argPtr, nil, showCmd); err != nil {
			return fmt.Errorf("failed to launch elevated powershell via ShellExecute: %w", err)
		}
		return nil
	}

	cmd := exec.Command("powershell", "-NoProfile", "-Command", psCommand)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("failed to create firewall rule: %w (Output: %s)", err, string(output))
	}
	log.Info().Msg("Firewall rule applied")
	return nil
}
