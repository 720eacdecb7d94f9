package models

import (
	"testing"
)

func TestComplaintStatusValid(t *testing.T) {
	tests := []struct {
		status ComplaintStatus
		valid  bool
	}{
		{StatusPending, true},
		{StatusAssigned, true},
		{StatusInProgress, true},
		{StatusResolved, true},
		{StatusClosed, true},
		{"open", false},
		{"IN_PROGRESS", false},
		{"", false},
	}

	for _, test := range tests {
		if got := test.status.Valid(); got != test.valid {
			t.Errorf("For status '%s', expected valid=%v, got %v", test.status, test.valid, got)
		}
	}
}

func TestComplaintPriorityValid(t *testing.T) {
	tests := []struct {
		priority ComplaintPriority
		valid    bool
	}{
		{PriorityLow, true},
		{PriorityMedium, true},
		{PriorityHigh, true},
		{PriorityUrgent, true},
		{"critical", false},
		{"", false},
	}

	for _, test := range tests {
		if got := test.priority.Valid(); got != test.valid {
			t.Errorf("For priority '%s', expected valid=%v, got %v", test.priority, test.valid, got)
		}
	}
}

func TestParseUserRole(t *testing.T) {
	for _, name := range []string{"farmer", "officer", "expert"} {
		role, ok := ParseUserRole(name)
		if !ok || string(role) != name {
			t.Errorf("Expected %q to parse, got %q ok=%v", name, role, ok)
		}
	}
	if _, ok := ParseUserRole("admin"); ok {
		t.Error("Expected unknown role to be rejected")
	}
}
