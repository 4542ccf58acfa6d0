package preflight

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"archconv/internal/config"
	"archconv/internal/deps"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckTools turns tool availability into results. Missing optional tools
// pass with a note since they only limit which formats can be converted.
func CheckTools(cfg *config.Config) []Result {
	statuses := deps.CheckTools(cfg)
	results := make([]Result, 0, len(statuses))
	for _, status := range statuses {
		switch {
		case status.Available:
			results = append(results, Result{Name: status.Name, Passed: true, Detail: status.Command})
		case status.Optional:
			results = append(results, Result{Name: status.Name, Passed: true, Detail: "optional: " + status.Detail})
		default:
			results = append(results, Result{Name: status.Name, Detail: status.Detail})
		}
	}
	return results
}
