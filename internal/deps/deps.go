package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement names an external binary an engine shells out to.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status is a Requirement resolved against PATH.
type Status struct {
	Requirement
	Available bool
	Path      string // resolved executable when Available
	Detail    string // why the binary is unusable otherwise
}

// Check resolves a single requirement.
func Check(req Requirement) Status {
	req.Command = strings.TrimSpace(req.Command)
	req.Description = strings.TrimSpace(req.Description)
	status := Status{Requirement: req}
	if req.Command == "" {
		status.Detail = "command not configured"
		return status
	}
	path, err := exec.LookPath(req.Command)
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", req.Command)
		return status
	}
	status.Available = true
	status.Path = path
	return status
}

// CheckBinaries resolves every requirement, preserving order.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, len(requirements))
	for i, req := range requirements {
		results[i] = Check(req)
	}
	return results
}

// RequireBinaries fails with one error naming every unavailable required
// binary. Optional requirements never fail.
func RequireBinaries(requirements []Requirement) error {
	var missing []string
	for _, req := range requirements {
		if status := Check(req); !status.Available && !status.Optional {
			missing = append(missing, fmt.Sprintf("%s (%s)", status.Name, status.Detail))
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("missing required binaries: %s", strings.Join(missing, ", "))
}
