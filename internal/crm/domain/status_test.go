package domain

import "testing"

// TestCanTransitionFunnelEdges walks every ordered pair of statuses and checks
// the state machine only admits the funnel edges plus administrative
// deactivation from non-terminal statuses.
func TestCanTransitionFunnelEdges(t *testing.T) {
	all := []Status{
		StatusLead,
		StatusMQL,
		StatusSQL,
		StatusOpportunity,
		StatusCustomer,
		StatusEvangelist,
		StatusDormant,
	}

	allowed := map[Transition]bool{
		{From: StatusLead, To: StatusMQL}:              true,
		{From: StatusMQL, To: StatusSQL}:               true,
		{From: StatusSQL, To: StatusOpportunity}:       true,
		{From: StatusOpportunity, To: StatusCustomer}:  true,
		{From: StatusOpportunity, To: StatusDormant}:   true,
		{From: StatusCustomer, To: StatusEvangelist}:   true,
		{From: StatusLead, To: StatusDormant}:          true,
		{From: StatusMQL, To: StatusDormant}:           true,
		{From: StatusSQL, To: StatusDormant}:           true,
		{From: StatusCustomer, To: StatusDormant}:      true,
	}

	for _, from := range all {
		for _, to := range all {
			want := allowed[Transition{From: from, To: to}]
			if got := CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

// TestCanTransitionRejectsSkips spells out the skip paths sales teams ask for
// most so a table regression fails with a readable name.
func TestCanTransitionRejectsSkips(t *testing.T) {
	cases := []struct {
		name string
		from Status
		to   Status
	}{
		{"lead cannot skip to sql", StatusLead, StatusSQL},
		{"lead cannot skip to customer", StatusLead, StatusCustomer},
		{"mql cannot skip to opportunity", StatusMQL, StatusOpportunity},
		{"sql cannot skip to customer", StatusSQL, StatusCustomer},
		{"customer cannot go back to lead", StatusCustomer, StatusLead},
		{"evangelist is terminal", StatusEvangelist, StatusDormant},
		{"dormant is terminal", StatusDormant, StatusLead},
		{"no self transition", StatusLead, StatusLead},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if CanTransition(tc.from, tc.to) {
				t.Errorf("CanTransition(%s, %s) = true, want false", tc.from, tc.to)
			}
		})
	}
}

func TestIsTerminal(t *testing.T) {
	cases := []struct {
		status Status
		want   bool
	}{
		{StatusLead, false},
		{StatusMQL, false},
		{StatusSQL, false},
		{StatusOpportunity, false},
		{StatusCustomer, false},
		{StatusEvangelist, true},
		{StatusDormant, true},
	}

	for _, tc := range cases {
		if got := IsTerminal(tc.status); got != tc.want {
			t.Errorf("IsTerminal(%s) = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestIsKnownStatus(t *testing.T) {
	if !IsKnownStatus(StatusOpportunity) {
		t.Error("IsKnownStatus(OPPORTUNITY) = false, want true")
	}
	if IsKnownStatus(Status("PROSPECT")) {
		t.Error("IsKnownStatus(PROSPECT) = true, want false")
	}
	if IsKnownStatus(Status("lead")) {
		t.Error("IsKnownStatus is case sensitive, lowercase must not match")
	}
}
