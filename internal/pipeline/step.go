package pipeline

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Step identifies a pipeline stage. StepAll marks full success.
type Step int

const (
	StepStart Step = iota
	StepTestBefore
	StepExtracting
	StepPacking
	StepTestAfter
	StepCompare
	StepAll
)

var stepNames = map[Step]string{
	StepStart:      "START",
	StepTestBefore: "TEST_BEFORE",
	StepExtracting: "EXTRACTING",
	StepPacking:    "PACKING",
	StepTestAfter:  "TEST_AFTER",
	StepCompare:    "COMPARE",
	StepAll:        "ALL",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// Label returns a human-readable name such as "Test Before".
func (s Step) Label() string {
	words := strings.ReplaceAll(strings.ToLower(s.String()), "_", " ")
	return cases.Title(language.Und).String(words)
}

// IsOption reports whether s may be requested as an optional step.
func (s Step) IsOption() bool {
	switch s {
	case StepTestBefore, StepTestAfter, StepCompare:
		return true
	default:
		return false
	}
}

// ParseStep resolves a step name case-insensitively, accepting either
// "test_before" or "TEST-BEFORE" spellings.
func ParseStep(value string) (Step, bool) {
	normalized := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(value), "-", "_"))
	for step, name := range stepNames {
		if name == normalized {
			return step, true
		}
	}
	return StepStart, false
}

// ParseOptions converts option names into steps. Unknown names and
// non-optional steps are returned as errors by Config.Validate, so they are
// kept here as invalid values rather than dropped.
func ParseOptions(values []string) []Step {
	steps := make([]Step, 0, len(values))
	for _, v := range values {
		step, ok := ParseStep(v)
		if !ok {
			step = Step(-1)
		}
		steps = append(steps, step)
	}
	return steps
}

// State is the terminal outcome of a run: StepAll with a nil Err on success,
// otherwise the step that halted the run and why.
type State struct {
	Step Step
	Err  error
}

// Success reports whether the run completed every step.
func (s State) Success() bool {
	return s.Step == StepAll && s.Err == nil
}

func (s State) String() string {
	if s.Err == nil {
		return s.Step.String()
	}
	return s.Step.String() + ": " + s.Err.Error()
}
