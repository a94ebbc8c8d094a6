package simulation

import (
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/KirkDiggler/rpg-action/internal/engine/input"
	"github.com/KirkDiggler/rpg-action/internal/errors"
)

// Script is a timeline of raw input events. JSON is valid YAML, so both
// formats parse.
type Script struct {
	Steps []Step `yaml:"steps" json:"steps"`
}

// Step delivers events once the gameplay run reaches At seconds
type Step struct {
	At     float64       `yaml:"at" json:"at"`
	Events []input.Event `yaml:"events" json:"events"`
}

// ParseScript decodes and validates a script, ordering steps by time
func ParseScript(data []byte) (*Script, error) {
	var script Script
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to parse script")
	}
	if err := script.Validate(); err != nil {
		return nil, err
	}
	sort.SliceStable(script.Steps, func(i, j int) bool {
		return script.Steps[i].At < script.Steps[j].At
	})
	return &script, nil
}

// Validate checks step times and every event
func (s *Script) Validate() error {
	vb := errors.NewValidationBuilder()
	for i, step := range s.Steps {
		if step.At < 0 {
			vb.Fieldf("steps", "step %d has negative time %.2f", i, step.At)
		}
		for j, ev := range step.Events {
			if err := ev.Validate(); err != nil {
				vb.Fieldf("steps", "step %d event %d: %s", i, j, errors.GetMessage(err))
			}
		}
	}
	return vb.Build()
}
