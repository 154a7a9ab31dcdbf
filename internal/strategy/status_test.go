package strategy

import (
	"strings"
	"testing"
)

func TestTransitionMatrix(t *testing.T) {
	all := []Status{StatusDraft, StatusTesting, StatusActive, StatusInactive, StatusDeprecated}
	allowed := map[[2]Status]bool{
		{StatusDraft, StatusDraft}:        true,
		{StatusDraft, StatusTesting}:      true,
		{StatusTesting, StatusActive}:     true,
		{StatusTesting, StatusDraft}:      true,
		{StatusActive, StatusInactive}:    true,
		{StatusInactive, StatusDeprecated}: true,
		{StatusInactive, StatusActive}:    true,
	}
	for _, from := range all {
		for _, to := range all {
			want := allowed[[2]Status{from, to}]
			if got := CanTransition(from, to); got != want {
				t.Fatalf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestDeprecatedIsTerminal(t *testing.T) {
	if next := AllowedNext(StatusDeprecated); len(next) != 0 {
		t.Fatalf("deprecated must have zero outgoing transitions, got %v", next)
	}
}

func TestActiveCannotGoBackToTesting(t *testing.T) {
	if CanTransition(StatusActive, StatusTesting) {
		t.Fatal("active -> testing must be forbidden")
	}
}

func TestParseStatus(t *testing.T) {
	for _, in := range []string{"draft", " Active ", "DEPRECATED"} {
		if _, err := ParseStatus(in); err != nil {
			t.Fatalf("ParseStatus(%q) error: %v", in, err)
		}
	}
	if _, err := ParseStatus("archived"); err == nil {
		t.Fatal("ParseStatus(archived) must fail")
	}
}

func TestInvalidTransitionErrorNamesAllowedStates(t *testing.T) {
	err := &InvalidStatusTransitionError{StrategyID: 7, From: StatusTesting, To: StatusInactive}
	msg := err.Error()
	for _, want := range []string{"testing", "inactive", "active", "draft"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("error %q missing %q", msg, want)
		}
	}
	terminal := &InvalidStatusTransitionError{StrategyID: 7, From: StatusDeprecated, To: StatusActive}
	if !strings.Contains(terminal.Error(), "terminal") {
		t.Fatalf("terminal error %q should say terminal", terminal.Error())
	}
}

