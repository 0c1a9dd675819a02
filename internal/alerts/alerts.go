package alerts

import (
	"fleetmon/internal/metrics"
	"fleetmon/internal/models"
)

// Alert labels emitted by the default rule set.
const (
	CriticalOverheating = "Critical Overheating"
	LowFuelWarning      = "Low Fuel Warning"
)

// epsilon tolerates decimal thresholds that do not round-trip exactly in
// binary floating point. Boundary semantics: temperature exactly 110 fires,
// fuel exactly 15 does not.
const epsilon = 1e-6

// Trigger selects which side of the threshold fires a rule.
type Trigger int

const (
	// AtOrAbove fires when the value reaches the threshold (inclusive).
	AtOrAbove Trigger = iota
	// Below fires when the value is under the threshold (exclusive).
	Below
)

// Rule is one threshold test against a single telemetry field.
type Rule struct {
	Name      string
	Field     func(models.Reader) float64
	Threshold float64
	Trigger   Trigger
}

// Fires reports whether the rule triggers for the given value.
func (r Rule) Fires(value float64) bool {
	switch r.Trigger {
	case AtOrAbove:
		return value > r.Threshold-epsilon
	case Below:
		return value < r.Threshold-epsilon
	default:
		return false
	}
}

// Engine evaluates an ordered rule set against one record at a time. It holds
// no mutable state: evaluation is pure, and rule order is part of the
// contract since the result is an ordered sequence.
type Engine struct {
	rules []Rule
}

// NewEngine builds an engine from rules, evaluated in the order given.
func NewEngine(rules ...Rule) *Engine {
	return &Engine{rules: rules}
}

// DefaultRules returns the fleet rule set: overheating checked before low
// fuel.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:      CriticalOverheating,
			Field:     models.Reader.Temperature,
			Threshold: 110,
			Trigger:   AtOrAbove,
		},
		{
			Name:      LowFuelWarning,
			Field:     models.Reader.Fuel,
			Threshold: 15,
			Trigger:   Below,
		},
	}
}

// DefaultEngine returns an engine with the fleet rule set.
func DefaultEngine() *Engine {
	return NewEngine(DefaultRules()...)
}

// Evaluate returns the ordered labels of all rules that trigger for the
// record, or an empty result if none do. Each field is read once, under the
// record's own lock when the record is the mutable variant.
func (e *Engine) Evaluate(r models.Reader) []string {
	var triggered []string
	for _, rule := range e.rules {
		if rule.Fires(rule.Field(r)) {
			triggered = append(triggered, rule.Name)
			metrics.AlertsTriggered.WithLabelValues(rule.Name).Inc()
		}
	}
	return triggered
}
