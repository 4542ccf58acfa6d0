package toolcmd

import (
	"strings"

	"archconv/internal/archive"
	"archconv/internal/process"
)

// Column where the name starts in `7z l -ba` output:
// "2024-01-02 10:11:12 ....A        12345         6789  dir/name.txt"
const sevenZipNameColumn = 53

// SevenZip drives 7z for both ZIP and 7z archives:
//
//	7z x -y <archive> -o<destination>
//	7z l -ba <archive>
//	7z a -y -t<format> <archive> <folder>/*
type SevenZip struct {
	path string
}

// NewSevenZip returns a builder for the 7z program at path.
func NewSevenZip(path string) *SevenZip {
	return &SevenZip{path: strings.TrimSpace(path)}
}

func (s *SevenZip) UtilityPath() string { return s.path }

func (s *SevenZip) ExtractCommand(archivePath, destination string) process.Command {
	return process.Command{s.path, "x", "-y", absPath(archivePath), "-o" + absPath(destination)}
}

// ListCommand uses -ba so only entry rows are printed.
func (s *SevenZip) ListCommand(archivePath string) process.Command {
	return process.Command{s.path, "l", "-ba", absPath(archivePath)}
}

// EntryName strips the date, attribute, and size columns of a -ba row.
// Lines too short to carry the columns are taken as bare names.
func (s *SevenZip) EntryName(line string) (string, bool) {
	line = trimLine(line)
	if strings.TrimSpace(line) == "" {
		return "", false
	}
	if len(line) > sevenZipNameColumn && looksLikeListingRow(line) {
		name := strings.TrimSpace(line[sevenZipNameColumn:])
		return name, name != ""
	}
	return strings.TrimSpace(line), true
}

func looksLikeListingRow(line string) bool {
	// yyyy-mm-dd hh:mm:ss
	return len(line) >= 19 && line[4] == '-' && line[7] == '-' && line[10] == ' ' && line[13] == ':' && line[16] == ':'
}

func (s *SevenZip) PackCommand(archivePath, sourceFolder string) process.Command {
	cmd := process.Command{s.path, "a", "-y"}
	switch archive.TypeOf(archivePath) {
	case archive.ZIP:
		cmd = append(cmd, "-tzip")
	case archive.S7Z:
		cmd = append(cmd, "-t7z")
	}
	return append(cmd, absPath(archivePath), folderContents(sourceFolder))
}

func (s *SevenZip) TestCommand(archivePath string) (process.Command, error) {
	return nil, unsupportedTest("7z", archivePath)
}
