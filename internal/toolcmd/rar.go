package toolcmd

import (
	"strings"

	"archconv/internal/process"
)

// Rar drives the rar packer:
//
//	rar a -y -ep1 -r <archive> <folder>/*
//
// -ep1 drops the source folder from stored names so entries sit at the
// archive root, matching what 7z stores for the same folder.
type Rar struct {
	path string
}

// NewRar returns a builder for the rar program at path.
func NewRar(path string) *Rar {
	return &Rar{path: strings.TrimSpace(path)}
}

func (r *Rar) UtilityPath() string { return r.path }

func (r *Rar) PackCommand(archive, sourceFolder string) process.Command {
	return process.Command{r.path, "a", "-y", "-ep1", "-r", absPath(archive), folderContents(sourceFolder)}
}
