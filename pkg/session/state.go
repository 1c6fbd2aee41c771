package session

// EmotionalState is the categorical component of a player's state vector.
type EmotionalState string

const (
	EmotionCalm      EmotionalState = "calm"
	EmotionAnxious   EmotionalState = "anxious"
	EmotionConfident EmotionalState = "confident"
	EmotionDeflated  EmotionalState = "deflated"
	EmotionNumb      EmotionalState = "numb"
)

// IsValid reports whether e is a recognised emotional state.
func (e EmotionalState) IsValid() bool {
	switch e {
	case EmotionCalm, EmotionAnxious, EmotionConfident, EmotionDeflated, EmotionNumb:
		return true
	}
	return false
}

// Axis names form a closed set. Deltas referencing any other name are ignored
// by the state engine, so content can ship axes ahead of the engine.
const (
	AxisEnergy            = "energy"
	AxisConfidence        = "confidence"
	AxisFinancialPressure = "financial_pressure"
	AxisSkillSignal       = "skill_signal"
	AxisNetwork           = "network"
)

// AxisNames lists the known numeric axes in display order.
var AxisNames = []string{
	AxisEnergy,
	AxisConfidence,
	AxisFinancialPressure,
	AxisSkillSignal,
	AxisNetwork,
}

// IsAxis reports whether name is a known numeric axis.
func IsAxis(name string) bool {
	for _, a := range AxisNames {
		if a == name {
			return true
		}
	}
	return false
}

// StateVector is the player's current standing: one value in [0,1] per known
// axis, plus an emotional state. It is only ever mutated by the state engine.
type StateVector struct {
	Axes           map[string]float64 `json:"axes"`
	EmotionalState EmotionalState     `json:"emotional_state"`
}

// NewStateVector returns the documented default vector used at session start.
func NewStateVector() StateVector {
	return StateVector{
		Axes: map[string]float64{
			AxisEnergy:            0.7,
			AxisConfidence:        0.5,
			AxisFinancialPressure: 0.4,
			AxisSkillSignal:       0.3,
			AxisNetwork:           0.2,
		},
		EmotionalState: EmotionCalm,
	}
}

// GetAxis returns the current value for a named axis.
// It satisfies the condition-evaluation view used by authored content.
func (sv StateVector) GetAxis(name string) (float64, bool) {
	v, ok := sv.Axes[name]
	return v, ok
}

// Clone returns a deep copy of the vector.
func (sv StateVector) Clone() StateVector {
	out := StateVector{
		Axes:           make(map[string]float64, len(sv.Axes)),
		EmotionalState: sv.EmotionalState,
	}
	for k, v := range sv.Axes {
		out.Axes[k] = v
	}
	return out
}

// Clamp01 bounds v to the closed interval [0,1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
