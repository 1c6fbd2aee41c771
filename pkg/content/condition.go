package content

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Operator compares a state variable against a threshold.
type Operator string

const (
	OpGT      Operator = "gt"
	OpLT      Operator = "lt"
	OpEQ      Operator = "eq"
	OpGTE     Operator = "gte"
	OpLTE     Operator = "lte"
	OpInRange Operator = "in_range"
)

// IsValid reports whether o is a recognised comparison operator.
func (o Operator) IsValid() bool {
	switch o {
	case OpGT, OpLT, OpEQ, OpGTE, OpLTE, OpInRange:
		return true
	}
	return false
}

// Threshold is either a single number or a closed interval [min,max].
// In YAML and JSON it is authored as a scalar or a two-element array.
type Threshold struct {
	Value   float64
	Min     float64
	Max     float64
	IsRange bool
}

// UnmarshalYAML accepts a numeric scalar or a [min,max] sequence.
func (t *Threshold) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var v float64
		if err := value.Decode(&v); err != nil {
			return fmt.Errorf("threshold must be a number: %w", err)
		}
		*t = Threshold{Value: v}
		return nil
	case yaml.SequenceNode:
		var pair []float64
		if err := value.Decode(&pair); err != nil {
			return fmt.Errorf("threshold range must be numeric: %w", err)
		}
		if len(pair) != 2 {
			return fmt.Errorf("threshold range must have exactly 2 elements, got %d", len(pair))
		}
		*t = Threshold{Min: pair[0], Max: pair[1], IsRange: true}
		return nil
	default:
		return fmt.Errorf("threshold must be a number or a [min, max] pair")
	}
}

// MarshalJSON mirrors the authored shape: scalar or two-element array.
func (t Threshold) MarshalJSON() ([]byte, error) {
	if t.IsRange {
		return json.Marshal([2]float64{t.Min, t.Max})
	}
	return json.Marshal(t.Value)
}

// UnmarshalJSON accepts a numeric scalar or a [min,max] array.
func (t *Threshold) UnmarshalJSON(data []byte) error {
	var v float64
	if err := json.Unmarshal(data, &v); err == nil {
		*t = Threshold{Value: v}
		return nil
	}
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("threshold must be a number or a [min, max] pair")
	}
	if len(pair) != 2 {
		return fmt.Errorf("threshold range must have exactly 2 elements, got %d", len(pair))
	}
	*t = Threshold{Min: pair[0], Max: pair[1], IsRange: true}
	return nil
}

// StateView is the minimal view of a player's numeric state needed to
// evaluate gating conditions. session.StateVector satisfies it; the
// indirection keeps content free of a session dependency at evaluation time.
type StateView interface {
	GetAxis(name string) (float64, bool)
}

// Condition gates scenario entry or per-action visibility on the player's
// current state vector.
type Condition struct {
	Variable  string    `yaml:"variable" json:"variable"`
	Operator  Operator  `yaml:"operator" json:"operator"`
	Threshold Threshold `yaml:"threshold" json:"threshold"`
}

// Evaluate checks the condition against the given state. A condition on an
// unknown variable never passes.
func (c Condition) Evaluate(view StateView) bool {
	v, ok := view.GetAxis(c.Variable)
	if !ok {
		return false
	}
	switch c.Operator {
	case OpGT:
		return v > c.Threshold.Value
	case OpLT:
		return v < c.Threshold.Value
	case OpEQ:
		return v == c.Threshold.Value
	case OpGTE:
		return v >= c.Threshold.Value
	case OpLTE:
		return v <= c.Threshold.Value
	case OpInRange:
		return v >= c.Threshold.Min && v <= c.Threshold.Max
	default:
		return false
	}
}

// EvaluateAll reports whether every condition passes. An empty list passes.
func EvaluateAll(conds []Condition, view StateView) bool {
	for _, c := range conds {
		if !c.Evaluate(view) {
			return false
		}
	}
	return true
}
