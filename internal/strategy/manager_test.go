package strategy

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"sportsbot/internal/scd"
	"sportsbot/internal/validate"
)

func TestCreateAndDuplicateVersion(t *testing.T) {
	m := &Manager{Repo: newStubRepo()}
	ctx := context.Background()

	first, err := m.Create(ctx, "halftime_entry", "v1.0", map[string]any{"min_edge": "0.05"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.Status != string(StatusDraft) {
		t.Fatalf("new strategy status = %s, want draft", first.Status)
	}

	_, err = m.Create(ctx, "halftime_entry", "v1.0", map[string]any{"min_edge": "0.10"})
	var dup *DuplicateVersionError
	if !errors.As(err, &dup) {
		t.Fatalf("second create error = %v, want DuplicateVersionError", err)
	}

	// A new version of the same name is a distinct identity.
	second, err := m.Create(ctx, "halftime_entry", "v1.1", map[string]any{"min_edge": "0.04"})
	if err != nil {
		t.Fatalf("create v1.1: %v", err)
	}
	if second.ID == first.ID {
		t.Fatal("versions must get distinct surrogate ids")
	}
}

func TestConfigImmutableAcrossLifecycle(t *testing.T) {
	m := &Manager{Repo: newStubRepo()}
	ctx := context.Background()

	created, err := m.Create(ctx, "halftime_entry", "v1.0", map[string]any{"min_edge": "0.05"})
	if err != nil {
		t.Fatal(err)
	}
	configAtCreate := string(created.Config)

	for _, next := range []Status{StatusTesting, StatusActive, StatusInactive, StatusDeprecated} {
		if _, err := m.UpdateStatus(ctx, created.ID, next); err != nil {
			t.Fatalf("transition to %s: %v", next, err)
		}
	}
	roi := decimal.RequireFromString("0.12")
	if err := m.UpdateMetrics(ctx, created.ID, MetricsUpdate{PaperROI: &roi}); err != nil {
		t.Fatal(err)
	}

	reread, err := m.Get(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if string(reread.Config) != configAtCreate {
		t.Fatalf("config drifted: %s != %s", reread.Config, configAtCreate)
	}
}

func TestUpdateStatusHappyPath(t *testing.T) {
	m := &Manager{Repo: newStubRepo()}
	ctx := context.Background()
	created, _ := m.Create(ctx, "s", "v1.0", nil)

	path := []Status{StatusTesting, StatusActive, StatusInactive, StatusActive, StatusInactive, StatusDeprecated}
	for _, next := range path {
		item, err := m.UpdateStatus(ctx, created.ID, next)
		if err != nil {
			t.Fatalf("transition to %s: %v", next, err)
		}
		if item.Status != string(next) {
			t.Fatalf("status = %s, want %s", item.Status, next)
		}
	}
}

func TestUpdateStatusOutOfDeprecated(t *testing.T) {
	m := &Manager{Repo: newStubRepo()}
	ctx := context.Background()
	created, _ := m.Create(ctx, "s", "v1.0", nil)
	for _, next := range []Status{StatusTesting, StatusActive, StatusInactive, StatusDeprecated} {
		if _, err := m.UpdateStatus(ctx, created.ID, next); err != nil {
			t.Fatal(err)
		}
	}
	_, err := m.UpdateStatus(ctx, created.ID, StatusActive)
	var invalid *InvalidStatusTransitionError
	if !errors.As(err, &invalid) {
		t.Fatalf("error = %v, want InvalidStatusTransitionError", err)
	}
	if invalid.From != StatusDeprecated {
		t.Fatalf("error names from=%s, want deprecated", invalid.From)
	}
}

func TestDraftSelfTransitionIsNoop(t *testing.T) {
	m := &Manager{Repo: newStubRepo()}
	ctx := context.Background()
	created, _ := m.Create(ctx, "s", "v1.0", nil)
	item, err := m.UpdateStatus(ctx, created.ID, StatusDraft)
	if err != nil {
		t.Fatalf("draft -> draft must be a permitted no-op: %v", err)
	}
	if item.Status != string(StatusDraft) {
		t.Fatalf("status = %s", item.Status)
	}
}

func TestUpdateStatusNotFound(t *testing.T) {
	m := &Manager{Repo: newStubRepo()}
	_, err := m.UpdateStatus(context.Background(), 404, StatusTesting)
	var nf *scd.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("error = %v, want NotFoundError", err)
	}
}

func TestUpdateMetricsPartial(t *testing.T) {
	repo := newStubRepo()
	m := &Manager{Repo: repo}
	ctx := context.Background()
	created, _ := m.Create(ctx, "s", "v1.0", nil)

	roi := decimal.RequireFromString("0.08")
	count := int64(12)
	if err := m.UpdateMetrics(ctx, created.ID, MetricsUpdate{LiveROI: &roi, LiveTradesCount: &count}); err != nil {
		t.Fatal(err)
	}
	item, _ := m.Get(ctx, created.ID)
	if !item.LiveROI.Equal(roi) || item.LiveTradesCount != 12 {
		t.Fatalf("metrics not applied: %+v", item)
	}
	if !item.PaperROI.IsZero() || item.PaperTradesCount != 0 {
		t.Fatalf("untouched metrics must stay zero: %+v", item)
	}
}

func TestUpdateMetricsAllEmptyRejected(t *testing.T) {
	m := &Manager{Repo: newStubRepo()}
	created, _ := m.Create(context.Background(), "s", "v1.0", nil)
	err := m.UpdateMetrics(context.Background(), created.ID, MetricsUpdate{})
	var verr *validate.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
}

func TestUpdateMetricsNotFound(t *testing.T) {
	m := &Manager{Repo: newStubRepo()}
	count := int64(1)
	err := m.UpdateMetrics(context.Background(), 404, MetricsUpdate{PaperTradesCount: &count})
	var nf *scd.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("error = %v, want NotFoundError", err)
	}
}

func TestActiveSupportsParallelVersions(t *testing.T) {
	m := &Manager{Repo: newStubRepo()}
	ctx := context.Background()
	a, _ := m.Create(ctx, "halftime_entry", "v1.0", nil)
	b, _ := m.Create(ctx, "halftime_entry", "v1.1", nil)
	for _, id := range []uint64{a.ID, b.ID} {
		if _, err := m.UpdateStatus(ctx, id, StatusTesting); err != nil {
			t.Fatal(err)
		}
		if _, err := m.UpdateStatus(ctx, id, StatusActive); err != nil {
			t.Fatal(err)
		}
	}
	active, err := m.Active(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 2 {
		t.Fatalf("active = %d, want both versions of the same name", len(active))
	}
}
