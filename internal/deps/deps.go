package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement is an engine binary a render shells out to. ConfigKey names
// the setting that overrides its location.
type Requirement struct {
	Name        string
	Command     string
	Description string
	ConfigKey   string
	Optional    bool
}

// Status is the resolved state of one Requirement. Path is the executable
// the render service would run; it is empty when the binary is missing.
type Status struct {
	Name        string
	Command     string
	Path        string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Check resolves a single engine binary against PATH.
func Check(req Requirement) Status {
	st := Status{
		Name:        req.Name,
		Command:     strings.TrimSpace(req.Command),
		Description: strings.TrimSpace(req.Description),
		Optional:    req.Optional,
	}
	if st.Command == "" {
		st.Detail = withHint("no binary configured", req.ConfigKey)
		return st
	}
	path, err := exec.LookPath(st.Command)
	if err != nil {
		st.Detail = withHint(fmt.Sprintf("%q is not an executable on PATH", st.Command), req.ConfigKey)
		return st
	}
	st.Path = path
	st.Available = true
	return st
}

// CheckAll resolves every requirement in order.
func CheckAll(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		results = append(results, Check(req))
	}
	return results
}

// Blocking returns the required binaries that are unavailable. A render
// cannot run while this is non-empty; missing optional binaries only
// degrade media detection.
func Blocking(statuses []Status) []Status {
	var out []Status
	for _, st := range statuses {
		if !st.Available && !st.Optional {
			out = append(out, st)
		}
	}
	return out
}

func withHint(detail, key string) string {
	if key == "" {
		return detail
	}
	return detail + "; set " + key
}
