package deps

import (
	"fmt"

	"archconv/internal/archive"
	"archconv/internal/config"
)

// ToolRequirements lists the configured archive utilities. The extractor and
// packer of the configured target format are required; every other format's
// tools are optional since a conversion only touches two formats.
func ToolRequirements(cfg *config.Config) []Requirement {
	if cfg == nil {
		return nil
	}
	target := archive.ParseType(cfg.Conversion.TargetFormat)
	tools := cfg.Tools
	entries := []struct {
		t       archive.Type
		role    string
		command string
	}{
		{archive.RAR, "extractor", tools.RarExtractor},
		{archive.RAR, "packer", tools.RarPacker},
		{archive.ZIP, "extractor", tools.ZipExtractor},
		{archive.ZIP, "packer", tools.ZipPacker},
		{archive.S7Z, "extractor", tools.S7zExtractor},
		{archive.S7Z, "packer", tools.S7zPacker},
	}
	requirements := make([]Requirement, 0, len(entries))
	for _, e := range entries {
		verb := "Extracts"
		if e.role == "packer" {
			verb = "Creates"
		}
		requirements = append(requirements, Requirement{
			Name:        fmt.Sprintf("%s %s", e.t, e.role),
			Command:     e.command,
			Description: fmt.Sprintf("%s %s archives", verb, e.t.Ext()),
			Optional:    e.t != target,
		})
	}
	return requirements
}

// CheckTools evaluates ToolRequirements for cfg.
func CheckTools(cfg *config.Config) []Status {
	return CheckBinaries(ToolRequirements(cfg))
}
