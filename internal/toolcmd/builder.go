package toolcmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"archconv/internal/process"
	"archconv/internal/services"
)

// Utility is implemented by every builder.
type Utility interface {
	// UtilityPath returns the program path or name invoked by the builder.
	UtilityPath() string
}

// ExtractBuilder builds extraction-side commands.
type ExtractBuilder interface {
	Utility
	ExtractCommand(archive, destination string) process.Command
	ListCommand(archive string) process.Command
	// EntryName maps one listing stdout line to an entry name. ok is false
	// for lines that do not name an entry.
	EntryName(line string) (name string, ok bool)
	// TestCommand returns the integrity test command, or an ErrUnsupported
	// error when the tool integration does not provide one.
	TestCommand(archive string) (process.Command, error)
}

// PackBuilder builds packing commands.
type PackBuilder interface {
	Utility
	PackCommand(archive, sourceFolder string) process.Command
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// folderContents addresses every item inside folder without the folder
// itself. The tools expand the wildcard; no shell is involved.
func folderContents(folder string) string {
	return filepath.Join(absPath(folder), "*")
}

func unsupportedTest(tool, archive string) error {
	return services.Wrap(services.ErrUnsupported, tool, "test", fmt.Sprintf("integrity test is not implemented for %s", filepath.Base(archive)), nil)
}

func trimLine(line string) string {
	return strings.TrimRight(line, "\r\n")
}
