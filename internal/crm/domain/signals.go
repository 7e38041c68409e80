package domain

// Temperature is the derived engagement band of a contact, computed from
// session ratings. It is orthogonal to pipeline status.
type Temperature string

const (
	TemperatureCold Temperature = "COLD"
	TemperatureWarm Temperature = "WARM"
	TemperatureHot  Temperature = "HOT"
)

// Gate thresholds. Averages at or above the threshold satisfy the gate.
const (
	// QualificationGate is the minimum average MQL-stage session rating for
	// the MQL→SQL transition.
	QualificationGate = 7.0
	// EvangelistGate is the minimum average feedback rating for the
	// CUSTOMER→EVANGELIST transition.
	EvangelistGate = 8.0

	temperatureHotFloor  = 8.0
	temperatureWarmFloor = 6.0
)

// TemperatureFor maps an average session rating to a temperature band.
// A zero average (no rated sessions) is COLD.
func TemperatureFor(avgRating float64) Temperature {
	switch {
	case avgRating >= temperatureHotFloor:
		return TemperatureHot
	case avgRating >= temperatureWarmFloor:
		return TemperatureWarm
	default:
		return TemperatureCold
	}
}

// OpportunityStatus is the lifecycle of a tracked potential sale.
type OpportunityStatus string

const (
	OpportunityOpen OpportunityStatus = "OPEN"
	OpportunityWon  OpportunityStatus = "WON"
	OpportunityLost OpportunityStatus = "LOST"
)

// SessionStatus describes the outcome of a logged interaction.
type SessionStatus string

const (
	SessionConnected    SessionStatus = "CONNECTED"
	SessionNotConnected SessionStatus = "NOT_CONNECTED"
	SessionBadTiming    SessionStatus = "BAD_TIMING"
)

var knownSessionStatuses = map[SessionStatus]struct{}{
	SessionConnected:    {},
	SessionNotConnected: {},
	SessionBadTiming:    {},
}

// IsKnownSessionStatus reports whether s is a defined session outcome.
func IsKnownSessionStatus(s SessionStatus) bool {
	_, ok := knownSessionStatuses[s]
	return ok
}
