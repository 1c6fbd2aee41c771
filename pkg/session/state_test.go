package session

import "testing"

func TestNewStateVectorDefaults(t *testing.T) {
	sv := NewStateVector()

	expected := map[string]float64{
		AxisEnergy:            0.7,
		AxisConfidence:        0.5,
		AxisFinancialPressure: 0.4,
		AxisSkillSignal:       0.3,
		AxisNetwork:           0.2,
	}
	for axis, want := range expected {
		got, ok := sv.GetAxis(axis)
		if !ok {
			t.Errorf("expected axis %q to exist", axis)
			continue
		}
		if got != want {
			t.Errorf("axis %q: expected %v, got %v", axis, want, got)
		}
	}
	if sv.EmotionalState != EmotionCalm {
		t.Errorf("expected default emotional state calm, got %q", sv.EmotionalState)
	}
}

func TestClamp01(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"below zero", -0.3, 0},
		{"zero", 0, 0},
		{"mid", 0.42, 0.42},
		{"one", 1, 1},
		{"above one", 1.7, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clamp01(tt.in); got != tt.want {
				t.Errorf("Clamp01(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestStateVectorClone(t *testing.T) {
	sv := NewStateVector()
	clone := sv.Clone()
	clone.Axes[AxisEnergy] = 0.1
	clone.EmotionalState = EmotionAnxious

	if sv.Axes[AxisEnergy] != 0.7 {
		t.Errorf("clone mutation leaked into original: energy = %v", sv.Axes[AxisEnergy])
	}
	if sv.EmotionalState != EmotionCalm {
		t.Errorf("clone mutation leaked into original emotional state: %q", sv.EmotionalState)
	}
}

func TestIsAxis(t *testing.T) {
	if !IsAxis(AxisNetwork) {
		t.Error("expected network to be a known axis")
	}
	if IsAxis("reputation") {
		t.Error("expected reputation to be unknown")
	}
}

func TestEmotionalStateIsValid(t *testing.T) {
	for _, e := range []EmotionalState{EmotionCalm, EmotionAnxious, EmotionConfident, EmotionDeflated, EmotionNumb} {
		if !e.IsValid() {
			t.Errorf("expected %q to be valid", e)
		}
	}
	if EmotionalState("euphoric").IsValid() {
		t.Error("expected euphoric to be invalid")
	}
}
