package archive

import (
	"path/filepath"
	"strings"
)

// Type identifies a supported archive container format.
type Type int

const (
	Unknown Type = iota
	RAR
	ZIP
	S7Z
)

var extensions = map[Type]string{
	RAR: "rar",
	ZIP: "zip",
	S7Z: "7z",
}

// Types lists the known formats, excluding Unknown.
func Types() []Type {
	return []Type{RAR, ZIP, S7Z}
}

// TypeOf derives the archive type from the file name extension. Matching is
// case-insensitive and never inspects file content.
func TypeOf(path string) Type {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(strings.TrimSpace(path))), ".")
	if ext == "" {
		return Unknown
	}
	for t, candidate := range extensions {
		if candidate == ext {
			return t
		}
	}
	return Unknown
}

// ParseType resolves a user-supplied format name ("zip", ".7z", "RAR").
func ParseType(value string) Type {
	value = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(value)), ".")
	switch value {
	case "rar":
		return RAR
	case "zip":
		return ZIP
	case "7z", "s7z", "7zip":
		return S7Z
	default:
		return Unknown
	}
}

// Ext returns the file extension with a leading dot, or "" for Unknown.
func (t Type) Ext() string {
	ext, ok := extensions[t]
	if !ok {
		return ""
	}
	return "." + ext
}

func (t Type) String() string {
	switch t {
	case RAR:
		return "RAR"
	case ZIP:
		return "ZIP"
	case S7Z:
		return "S7Z"
	default:
		return "UNKNOWN"
	}
}

// BaseName returns the file name of path without its last extension.
func BaseName(path string) string {
	name := filepath.Base(path)
	if idx := strings.LastIndex(name, "."); idx > 0 {
		name = name[:idx]
	}
	return strings.TrimSpace(name)
}
