package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	duerrors "github.com/duautomation/diagrunner/pkg/errors"
)

// Default poll budgets, matching the pipeline's scenario timings.
const (
	DefaultConnectAttempts = 5
	DefaultConnectInterval = 30 * time.Second
	DefaultStatusAttempts  = 15
	DefaultStatusInterval  = 5 * time.Second
)

var yamlLineRegex = regexp.MustCompile(`line (\d+)`)

// Scenario describes one diagnostics test scenario: the device and operation
// it targets plus poll budgets for its two wait loops.
type Scenario struct {
	Name             string       `yaml:"name" validate:"required,min=1,max=100"`
	DeviceID         string       `yaml:"device_id" validate:"required,identifier"`
	ModuleID         string       `yaml:"module_id,omitempty" validate:"omitempty,identifier"`
	OperationID      string       `yaml:"operation_id" validate:"required,identifier"`
	Description      string       `yaml:"description,omitempty" validate:"max=512"`
	ResultFilePrefix string       `yaml:"result_file_prefix" validate:"required,file_prefix"`
	Connectivity     PollSettings `yaml:"connectivity,omitempty"`
	Collection       PollSettings `yaml:"collection,omitempty"`
}

// PollSettings bounds one poll loop. Zero values fall back to the scenario
// defaults during parsing.
type PollSettings struct {
	Attempts int      `yaml:"attempts,omitempty" validate:"omitempty,min=1,max=100"`
	Interval Duration `yaml:"interval,omitempty"`
}

// Duration wraps time.Duration so poll intervals can be written as Go
// duration strings ("30s") in scenario files.
type Duration time.Duration

// UnmarshalYAML decodes a duration string into a Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	if parsed < 0 {
		return fmt.Errorf("duration %q must not be negative", raw)
	}

	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped standard library duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// ParseScenario loads a scenario file from disk, validates it, applies
// default poll budgets, and returns the resulting model.
func ParseScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, duerrors.NewParseError(path, 0, err)
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, duerrors.NewParseError(path, extractLine(err), err)
	}

	applyDefaults(&sc)

	if err := ValidateScenario(&sc); err != nil {
		return nil, err
	}

	return &sc, nil
}

// ValidateScenario performs structural validation on a scenario.
func ValidateScenario(sc *Scenario) error {
	if sc == nil {
		return duerrors.NewValidationError("scenario", "scenario is nil", nil)
	}

	if err := validatorInstance().Struct(sc); err != nil {
		return convertValidationError(err)
	}

	return nil
}

func applyDefaults(sc *Scenario) {
	if sc.Connectivity.Attempts == 0 {
		sc.Connectivity.Attempts = DefaultConnectAttempts
	}
	if sc.Connectivity.Interval == 0 {
		sc.Connectivity.Interval = Duration(DefaultConnectInterval)
	}
	if sc.Collection.Attempts == 0 {
		sc.Collection.Attempts = DefaultStatusAttempts
	}
	if sc.Collection.Interval == 0 {
		sc.Collection.Interval = Duration(DefaultStatusInterval)
	}
}

func extractLine(err error) int {
	if err == nil {
		return 0
	}

	matches := yamlLineRegex.FindStringSubmatch(err.Error())
	if len(matches) != 2 {
		return 0
	}

	var line int
	if _, scanErr := fmt.Sscanf(matches[1], "%d", &line); scanErr != nil {
		return 0
	}

	return line
}
