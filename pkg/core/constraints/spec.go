package constraints

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/jakechorley/class-scheduler/pkg/core/model"
)

// Constraint type names accepted in Spec.Type (case-insensitive)
const (
	TypeBlockTimes = "blockTimes"
	TypeBlockDays  = "blockDays"
	TypeStartAfter = "startAfter"
	TypeEndBefore  = "endBefore"
	TypeCampus     = "campus"
)

// Spec is the untyped description of a constraint as it appears in a config file or API body.
//
// Fields used per type:
//   - blockTimes: start, end, days
//   - blockDays:  days (required)
//   - startAfter: time, days
//   - endBefore:  time, days
//   - campus:     name
//
// days defaults to everyday when omitted.
type Spec struct {
	Type  string `mapstructure:"type" yaml:"type" json:"type"`
	Time  string `mapstructure:"time" yaml:"time,omitempty" json:"time,omitempty"`
	Start string `mapstructure:"start" yaml:"start,omitempty" json:"start,omitempty"`
	End   string `mapstructure:"end" yaml:"end,omitempty" json:"end,omitempty"`
	Days  string `mapstructure:"days" yaml:"days,omitempty" json:"days,omitempty"`
	Name  string `mapstructure:"name" yaml:"name,omitempty" json:"name,omitempty"`
}

// DecodeSpecs decodes generic maps (from YAML or JSON) into constraint specs.
// Unknown keys are rejected so typos surface instead of silently disabling a rule.
func DecodeSpecs(raw []map[string]any) ([]Spec, error) {
	specs := make([]Spec, len(raw))
	for i, entry := range raw {
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &specs[i],
			ErrorUnused:      true,
			WeaklyTypedInput: true,
			TagName:          "mapstructure",
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create decoder: %w", err)
		}
		if err := decoder.Decode(entry); err != nil {
			return nil, fmt.Errorf("invalid constraint at index %d: %w", i, err)
		}
	}
	return specs, nil
}

// FromSpec builds a typed constraint from its spec
func FromSpec(spec Spec) (Constraint, error) {
	days := model.Everyday
	if strings.TrimSpace(spec.Days) != "" {
		parsed, err := model.ParseDaySet(spec.Days)
		if err != nil {
			return nil, err
		}
		days = parsed
	}

	switch strings.ToLower(spec.Type) {
	case strings.ToLower(TypeBlockTimes):
		start, err := parseField("start", spec.Start)
		if err != nil {
			return nil, err
		}
		end, err := parseField("end", spec.End)
		if err != nil {
			return nil, err
		}
		if end.Before(start) {
			return nil, fmt.Errorf("blockTimes end %s is before start %s", end, start)
		}
		return NewBlockTimesConstraint(start, end, days), nil

	case strings.ToLower(TypeBlockDays):
		if strings.TrimSpace(spec.Days) == "" {
			return nil, fmt.Errorf("blockDays requires days")
		}
		return NewBlockDaysConstraint(days), nil

	case strings.ToLower(TypeStartAfter):
		t, err := parseField("time", spec.Time)
		if err != nil {
			return nil, err
		}
		return NewStartAfterConstraint(t, days), nil

	case strings.ToLower(TypeEndBefore):
		t, err := parseField("time", spec.Time)
		if err != nil {
			return nil, err
		}
		return NewEndBeforeConstraint(t, days), nil

	case strings.ToLower(TypeCampus):
		if spec.Name == "" {
			return nil, fmt.Errorf("campus requires name")
		}
		return NewCampusConstraint(spec.Name), nil
	}

	return nil, fmt.Errorf("unknown constraint type %q", spec.Type)
}

// FromSpecs builds typed constraints from a list of specs
func FromSpecs(specs []Spec) ([]Constraint, error) {
	built := make([]Constraint, 0, len(specs))
	for i, spec := range specs {
		constraint, err := FromSpec(spec)
		if err != nil {
			return nil, fmt.Errorf("constraints[%d]: %w", i, err)
		}
		built = append(built, constraint)
	}
	return built, nil
}

func parseField(field, value string) (model.Time, error) {
	if strings.TrimSpace(value) == "" {
		return model.Time{}, fmt.Errorf("missing %s", field)
	}
	t, err := model.ParseTime(value)
	if err != nil {
		return model.Time{}, fmt.Errorf("invalid %s: %w", field, err)
	}
	return t, nil
}
