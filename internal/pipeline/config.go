package pipeline

import (
	"fmt"
	"strings"

	"archconv/internal/archive"
	"archconv/internal/services"
)

// Config describes one conversion.
type Config struct {
	// Source is the archive to convert.
	Source string
	// DestinationFolder receives <source base name><target extension>.
	DestinationFolder string
	TargetFormat      archive.Type
	// TempRoot holds the working folder <TempRoot>/<source base name>.
	TempRoot string
	// Options selects any of StepTestBefore, StepTestAfter, StepCompare.
	Options []Step
}

// FieldError names the configuration field that failed validation.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// Is lets errors.Is match FieldError against ErrIllegalState.
func (e *FieldError) Is(target error) bool {
	return target == services.ErrIllegalState
}

// Validate returns every violated field. It touches no files.
func (c Config) Validate() []error {
	var errs []error
	if strings.TrimSpace(c.Source) == "" {
		errs = append(errs, &FieldError{Field: "Source", Message: "source archive is required"})
	}
	if strings.TrimSpace(c.DestinationFolder) == "" {
		errs = append(errs, &FieldError{Field: "DestinationFolder", Message: "destination folder is required"})
	}
	if c.TargetFormat == archive.Unknown {
		errs = append(errs, &FieldError{Field: "TargetFormat", Message: "target format is required"})
	}
	if strings.TrimSpace(c.TempRoot) == "" {
		errs = append(errs, &FieldError{Field: "TempRoot", Message: "temporary root folder is required"})
	}
	for _, option := range c.Options {
		if !option.IsOption() {
			errs = append(errs, &FieldError{Field: "Options", Message: fmt.Sprintf("%s is not an optional step", option)})
		}
	}
	return errs
}

func (c Config) has(step Step) bool {
	for _, option := range c.Options {
		if option == step {
			return true
		}
	}
	return false
}
