package rules

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/skedplan/intake/internal/schema"
)

// Type identifies one of the six rule kinds.
type Type string

const (
	TypeCoRun              Type = "co-run"
	TypeSlotRestriction    Type = "slot-restriction"
	TypeLoadLimit          Type = "load-limit"
	TypePhaseWindow        Type = "phase-window"
	TypePatternMatch       Type = "pattern-match"
	TypePrecedenceOverride Type = "precedence-override"
)

var validate = validator.New()

// Parameters is the tagged union of per-kind rule parameters: one concrete
// struct per rule kind, each validating its own shape. Creation is rejected
// when Validate fails.
type Parameters interface {
	Kind() Type
	Validate() error
}

// CoRunParams groups tasks that must run together.
type CoRunParams struct {
	TaskIDs []string `json:"tasks" yaml:"tasks" validate:"min=2,dive,required"`
}

func (CoRunParams) Kind() Type { return TypeCoRun }

func (p CoRunParams) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("co-run rule needs at least two task ids: %w", err)
	}
	return nil
}

// SlotRestrictionParams requires a minimum number of common slots within a
// client or worker group.
type SlotRestrictionParams struct {
	GroupType      string `json:"groupType" yaml:"groupType" validate:"oneof=client worker"`
	GroupTag       string `json:"groupTag" yaml:"groupTag" validate:"required"`
	MinCommonSlots int    `json:"minCommonSlots" yaml:"minCommonSlots" validate:"min=1"`
}

func (SlotRestrictionParams) Kind() Type { return TypeSlotRestriction }

func (p SlotRestrictionParams) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid slot-restriction parameters: %w", err)
	}
	return nil
}

// LoadLimitParams caps the per-phase load of a worker group.
type LoadLimitParams struct {
	WorkerGroup      string `json:"workerGroup" yaml:"workerGroup" validate:"required"`
	MaxSlotsPerPhase int    `json:"maxSlotsPerPhase" yaml:"maxSlotsPerPhase" validate:"min=1"`
}

func (LoadLimitParams) Kind() Type { return TypeLoadLimit }

func (p LoadLimitParams) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid load-limit parameters: %w", err)
	}
	return nil
}

// PhaseWindowParams restricts a task to an allowed set of phases. The phase
// set accepts either a list or "start-end" range syntax.
type PhaseWindowParams struct {
	TaskID        string    `json:"taskId" yaml:"taskId" validate:"required"`
	AllowedPhases PhaseList `json:"allowedPhases" yaml:"allowedPhases"`
}

func (PhaseWindowParams) Kind() Type { return TypePhaseWindow }

func (p PhaseWindowParams) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid phase-window parameters: %w", err)
	}
	if len(p.AllowedPhases) == 0 {
		return fmt.Errorf("phase-window rule needs at least one allowed phase")
	}
	for _, phase := range p.AllowedPhases {
		if phase < 1 {
			return fmt.Errorf("phase %d is out of range, phases start at 1", phase)
		}
	}
	return nil
}

// PatternMatchParams applies a regex-driven action to matching entities.
type PatternMatchParams struct {
	Pattern string `json:"pattern" yaml:"pattern" validate:"required"`
	Action  string `json:"action" yaml:"action" validate:"oneof=restrict allow prioritize"`
}

func (PatternMatchParams) Kind() Type { return TypePatternMatch }

func (p PatternMatchParams) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid pattern-match parameters: %w", err)
	}
	if _, err := regexp.Compile(p.Pattern); err != nil {
		return fmt.Errorf("pattern does not compile: %w", err)
	}
	return nil
}

// PrecedenceOverrideParams marks a priority condition as overriding.
type PrecedenceOverrideParams struct {
	Condition string `json:"condition" yaml:"condition" validate:"required"`
	Override  bool   `json:"override" yaml:"override"`
}

func (PrecedenceOverrideParams) Kind() Type { return TypePrecedenceOverride }

func (p PrecedenceOverrideParams) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid precedence-override parameters: %w", err)
	}
	return nil
}

// PhaseList unmarshals from either a JSON array of integers or a string in
// list/range syntax ("1-3", "1,3,5").
type PhaseList []int

func (p *PhaseList) UnmarshalJSON(data []byte) error {
	var ints []int
	if err := json.Unmarshal(data, &ints); err == nil {
		*p = ints
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("allowed phases must be a list of integers or a range string")
	}
	*p = schema.ParsePhaseList(s)
	return nil
}

// Rule is one configured allocation rule. References inside Parameters (task
// ids, group tags) are advisory and not re-validated against entity data.
// Lower Priority means higher precedence; ties break by insertion order.
// IsActive is advisory metadata, never enforced here.
type Rule struct {
	ID          string     `json:"id"`
	Type        Type       `json:"type"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Priority    int        `json:"priority"`
	IsActive    bool       `json:"isActive"`
	Parameters  Parameters `json:"parameters"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// ruleEnvelope is the wire form: parameters stay raw until the type is known.
type ruleEnvelope struct {
	ID          string          `json:"id"`
	Type        Type            `json:"type"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Priority    int             `json:"priority"`
	IsActive    bool            `json:"isActive"`
	Parameters  json.RawMessage `json:"parameters"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// UnmarshalJSON decodes a rule, dispatching the parameter payload to the
// concrete struct for its type.
func (r *Rule) UnmarshalJSON(data []byte) error {
	var env ruleEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}

	params, err := DecodeParameters(env.Type, env.Parameters)
	if err != nil {
		return err
	}

	*r = Rule{
		ID:          env.ID,
		Type:        env.Type,
		Name:        env.Name,
		Description: env.Description,
		Priority:    env.Priority,
		IsActive:    env.IsActive,
		Parameters:  params,
		CreatedAt:   env.CreatedAt,
		UpdatedAt:   env.UpdatedAt,
	}
	return nil
}

// DecodeParameters decodes a raw parameter payload into the concrete struct
// for the given rule type.
func DecodeParameters(t Type, raw json.RawMessage) (Parameters, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("rule parameters are required")
	}

	unmarshal := func(into Parameters) (Parameters, error) {
		if err := json.Unmarshal(raw, into); err != nil {
			return nil, fmt.Errorf("invalid %s parameters: %w", t, err)
		}
		return into, nil
	}

	switch t {
	case TypeCoRun:
		p := &CoRunParams{}
		return unmarshal(p)
	case TypeSlotRestriction:
		p := &SlotRestrictionParams{}
		return unmarshal(p)
	case TypeLoadLimit:
		p := &LoadLimitParams{}
		return unmarshal(p)
	case TypePhaseWindow:
		p := &PhaseWindowParams{}
		return unmarshal(p)
	case TypePatternMatch:
		p := &PatternMatchParams{}
		return unmarshal(p)
	case TypePrecedenceOverride:
		p := &PrecedenceOverrideParams{}
		return unmarshal(p)
	default:
		return nil, fmt.Errorf("unknown rule type %q", t)
	}
}

// ParseType parses a rule type from its string form.
func ParseType(s string) (Type, error) {
	switch Type(strings.ToLower(strings.TrimSpace(s))) {
	case TypeCoRun:
		return TypeCoRun, nil
	case TypeSlotRestriction:
		return TypeSlotRestriction, nil
	case TypeLoadLimit:
		return TypeLoadLimit, nil
	case TypePhaseWindow:
		return TypePhaseWindow, nil
	case TypePatternMatch:
		return TypePatternMatch, nil
	case TypePrecedenceOverride:
		return TypePrecedenceOverride, nil
	default:
		return "", fmt.Errorf("unknown rule type %q", s)
	}
}
