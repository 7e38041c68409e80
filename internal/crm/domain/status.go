// Package domain holds the pipeline vocabulary of the CRM: contact statuses,
// the allowed transition edges between them, temperature bands and the
// numeric gates certain transitions must satisfy.
package domain

// Status is the pipeline position of a contact.
type Status string

const (
	StatusLead        Status = "LEAD"
	StatusMQL         Status = "MQL"
	StatusSQL         Status = "SQL"
	StatusOpportunity Status = "OPPORTUNITY"
	StatusCustomer    Status = "CUSTOMER"
	StatusEvangelist  Status = "EVANGELIST"
	StatusDormant     Status = "DORMANT"
)

var knownStatuses = map[Status]struct{}{
	StatusLead:        {},
	StatusMQL:         {},
	StatusSQL:         {},
	StatusOpportunity: {},
	StatusCustomer:    {},
	StatusEvangelist:  {},
	StatusDormant:     {},
}

// IsKnownStatus reports whether s is one of the defined pipeline statuses.
func IsKnownStatus(s Status) bool {
	_, ok := knownStatuses[s]
	return ok
}

// IsTerminal reports whether no further transitions are defined from s.
func IsTerminal(s Status) bool {
	return s == StatusEvangelist || s == StatusDormant
}

// Transition is a single allowed edge in the lifecycle state machine.
type Transition struct {
	From Status
	To   Status
}

// transitionsTable lists every legal edge. DORMANT is additionally reachable
// from any non-terminal status through the administrative path, which is
// checked separately in CanTransition.
var transitionsTable = []Transition{
	{From: StatusLead, To: StatusMQL},
	{From: StatusMQL, To: StatusSQL},
	{From: StatusSQL, To: StatusOpportunity},
	{From: StatusOpportunity, To: StatusCustomer},
	{From: StatusOpportunity, To: StatusDormant},
	{From: StatusCustomer, To: StatusEvangelist},
}

// CanTransition reports whether the edge from→to exists in the state machine.
func CanTransition(from, to Status) bool {
	if to == StatusDormant {
		// Administrative deactivation is allowed from any non-terminal status.
		return !IsTerminal(from)
	}
	for _, tr := range transitionsTable {
		if tr.From == from && tr.To == to {
			return true
		}
	}
	return false
}
