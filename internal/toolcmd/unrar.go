package toolcmd

import (
	"strings"

	"archconv/internal/process"
)

// Unrar drives the unrar extractor:
//
//	unrar x -y <archive> <destination>/
//	unrar lb <archive>
type Unrar struct {
	path string
}

// NewUnrar returns a builder for the unrar program at path.
func NewUnrar(path string) *Unrar {
	return &Unrar{path: strings.TrimSpace(path)}
}

func (u *Unrar) UtilityPath() string { return u.path }

// ExtractCommand extracts with full paths, answering yes to every prompt.
// The trailing separator makes unrar treat destination as a directory.
func (u *Unrar) ExtractCommand(archive, destination string) process.Command {
	dest := absPath(destination)
	if !strings.HasSuffix(dest, "/") {
		dest += "/"
	}
	return process.Command{u.path, "x", "-y", absPath(archive), dest}
}

// ListCommand prints bare entry names, one per line.
func (u *Unrar) ListCommand(archive string) process.Command {
	return process.Command{u.path, "lb", absPath(archive)}
}

func (u *Unrar) EntryName(line string) (string, bool) {
	name := strings.TrimSpace(trimLine(line))
	return name, name != ""
}

func (u *Unrar) TestCommand(archive string) (process.Command, error) {
	return nil, unsupportedTest("unrar", archive)
}
