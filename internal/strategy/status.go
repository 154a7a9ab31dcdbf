package strategy

import (
	"fmt"
	"sort"
	"strings"
)

// Status is the lifecycle state of a strategy version.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusTesting    Status = "testing"
	StatusActive     Status = "active"
	StatusInactive   Status = "inactive"
	StatusDeprecated Status = "deprecated"
)

// transitions is the full lifecycle map. deprecated is terminal, and there is
// no way back to testing once a version has been live. The draft -> draft
// self-transition is allowed as a no-op; see DESIGN.md for the open product
// question around it.
var transitions = map[Status][]Status{
	StatusDraft:      {StatusDraft, StatusTesting},
	StatusTesting:    {StatusActive, StatusDraft},
	StatusActive:     {StatusInactive},
	StatusInactive:   {StatusActive, StatusDeprecated},
	StatusDeprecated: {},
}

// ParseStatus validates a status string from an API or config surface.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := transitions[st]; !ok {
		return "", fmt.Errorf("unknown strategy status %q", s)
	}
	return st, nil
}

// CanTransition reports whether from -> to is an allowed lifecycle move.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// AllowedNext returns the allowed successor states of from, sorted for
// stable error messages.
func AllowedNext(from Status) []Status {
	out := append([]Status(nil), transitions[from]...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// InvalidStatusTransitionError names the current state and the allowed next
// states, so an operator sees exactly what moves remain.
type InvalidStatusTransitionError struct {
	StrategyID uint64
	From       Status
	To         Status
}

func (e *InvalidStatusTransitionError) Error() string {
	allowed := AllowedNext(e.From)
	if len(allowed) == 0 {
		return fmt.Sprintf("strategy %d: cannot transition %s -> %s: %s is terminal",
			e.StrategyID, e.From, e.To, e.From)
	}
	names := make([]string, len(allowed))
	for i, st := range allowed {
		names[i] = string(st)
	}
	return fmt.Sprintf("strategy %d: cannot transition %s -> %s: allowed next states are %s",
		e.StrategyID, e.From, e.To, strings.Join(names, ", "))
}

// DuplicateVersionError reports an attempt to create a (name, version) pair
// that already exists. Version naming discipline (v1.0 -> v1.1 for minor
// changes, v2.0 for breaking ones) is a caller convention, not enforced here.
type DuplicateVersionError struct {
	Name    string
	Version string
}

func (e *DuplicateVersionError) Error() string {
	return fmt.Sprintf("strategy %s %s already exists; create a new version instead", e.Name, e.Version)
}
