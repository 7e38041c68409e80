package domain

import "testing"

// TestTemperatureForBands checks the band boundaries, including the exact
// floor values where the band switches.
func TestTemperatureForBands(t *testing.T) {
	cases := []struct {
		avg  float64
		want Temperature
	}{
		{0, TemperatureCold},
		{1, TemperatureCold},
		{5.99, TemperatureCold},
		{6.0, TemperatureWarm},
		{7.5, TemperatureWarm},
		{7.99, TemperatureWarm},
		{8.0, TemperatureHot},
		{9.2, TemperatureHot},
		{10, TemperatureHot},
	}

	for _, tc := range cases {
		if got := TemperatureFor(tc.avg); got != tc.want {
			t.Errorf("TemperatureFor(%.2f) = %s, want %s", tc.avg, got, tc.want)
		}
	}
}

func TestGateThresholds(t *testing.T) {
	// The gate constants are part of the product contract and must not move
	// without a deliberate migration of in-flight contacts.
	if QualificationGate != 7.0 {
		t.Errorf("QualificationGate = %v, want 7.0", QualificationGate)
	}
	if EvangelistGate != 8.0 {
		t.Errorf("EvangelistGate = %v, want 8.0", EvangelistGate)
	}
}

func TestIsKnownSessionStatus(t *testing.T) {
	for _, s := range []SessionStatus{SessionConnected, SessionNotConnected, SessionBadTiming} {
		if !IsKnownSessionStatus(s) {
			t.Errorf("IsKnownSessionStatus(%s) = false, want true", s)
		}
	}
	if IsKnownSessionStatus(SessionStatus("VOICEMAIL")) {
		t.Error("IsKnownSessionStatus(VOICEMAIL) = true, want false")
	}
}
