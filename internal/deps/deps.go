package deps

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// Requirement defines an external program samplerank can hand work to.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// FirstAvailable returns the first command found on PATH, or "" when none is.
func FirstAvailable(commands ...string) string {
	for _, cmd := range commands {
		if _, err := exec.LookPath(cmd); err == nil {
			return cmd
		}
	}
	return ""
}

// OpenerCommand is the platform's "open with default application" program.
func OpenerCommand() string {
	if runtime.GOOS == "darwin" {
		return "open"
	}
	return "xdg-open"
}

// ClipboardCommands lists clipboard writers that accept a MIME type, in
// preference order.
func ClipboardCommands() []string {
	if runtime.GOOS == "darwin" {
		return []string{"pbcopy"}
	}
	return []string{"wl-copy", "xclip"}
}

// DesktopRequirements describes the optional helpers behind reveal, copy,
// and opening samples from the play loop.
func DesktopRequirements() []Requirement {
	clipboard := FirstAvailable(ClipboardCommands()...)
	if clipboard == "" {
		clipboard = ClipboardCommands()[len(ClipboardCommands())-1]
	}
	return []Requirement{
		{
			Name:        "Opener",
			Command:     OpenerCommand(),
			Description: "Opens samples and reveals folders",
			Optional:    true,
		},
		{
			Name:        "Clipboard",
			Command:     clipboard,
			Description: "Copies sample file URIs to the clipboard",
			Optional:    true,
		},
	}
}
