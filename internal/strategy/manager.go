// Package strategy manages versioned, immutable strategy configurations and
// their lifecycle. A strategy version's config is written exactly once at
// creation; only status and the accumulated performance metrics ever change
// afterwards. Trades and positions reference a strategy row's surrogate id,
// so history stays attributable even after the version is deprecated.
package strategy

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"sportsbot/internal/models"
	"sportsbot/internal/repository"
	"sportsbot/internal/scd"
	"sportsbot/internal/validate"
)

// statusRetries bounds the guarded-update loop when operator sessions race
// on the same strategy row.
const statusRetries = 3

type Manager struct {
	Repo   repository.Repository
	Logger *zap.Logger
}

// Create inserts a new immutable (name, version) strategy row in draft
// status. Reusing an existing pair fails with DuplicateVersionError, both on
// the pre-check and on the unique-index race.
func (m *Manager) Create(ctx context.Context, name, version string, config map[string]any) (*models.Strategy, error) {
	name = strings.TrimSpace(name)
	version = strings.TrimSpace(version)
	if name == "" || version == "" {
		return nil, &validate.ValidationError{
			Entity:      "strategy",
			BusinessKey: name + " " + version,
			Issues: []validate.Issue{{
				Severity: validate.SeverityError,
				Field:    "name",
				Message:  "name and version are required",
			}},
		}
	}
	if config == nil {
		config = map[string]any{}
	}
	raw, err := json.Marshal(config)
	if err != nil {
		return nil, fmt.Errorf("encode config for %s %s: %w", name, version, err)
	}

	existing, err := m.Repo.GetStrategyByNameVersion(ctx, name, version)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &DuplicateVersionError{Name: name, Version: version}
	}

	item := &models.Strategy{
		Name:   name,
		Semver: version,
		Config: raw,
		Status: string(StatusDraft),
	}
	if err := m.Repo.InsertStrategy(ctx, item); err != nil {
		if scd.IsUniqueViolation(err) {
			return nil, &DuplicateVersionError{Name: name, Version: version}
		}
		return nil, err
	}
	if m.Logger != nil {
		m.Logger.Info("strategy created",
			zap.String("name", name),
			zap.String("version", version),
			zap.Uint64("strategy_id", item.ID),
		)
	}
	return item, nil
}

// Get returns a strategy by surrogate id.
func (m *Manager) Get(ctx context.Context, id uint64) (*models.Strategy, error) {
	item, err := m.Repo.GetStrategyByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, &scd.NotFoundError{Entity: "strategy", BusinessKey: fmt.Sprintf("%d", id)}
	}
	return item, nil
}

// List returns every strategy version.
func (m *Manager) List(ctx context.Context) ([]models.Strategy, error) {
	return m.Repo.ListStrategies(ctx)
}

// Active returns all strategies in active status. Multiple simultaneously
// active versions of the same name are expected: that is how A/B comparison
// between versions works.
func (m *Manager) Active(ctx context.Context) ([]models.Strategy, error) {
	return m.Repo.ListStrategiesByStatus(ctx, string(StatusActive))
}

// UpdateStatus transitions a strategy through the lifecycle state machine.
// The current status is re-read immediately before each validation so a
// concurrent transition from another session invalidates this one instead of
// being clobbered; a lost guarded update retries from the fresh state.
func (m *Manager) UpdateStatus(ctx context.Context, id uint64, next Status) (*models.Strategy, error) {
	if _, ok := transitions[next]; !ok {
		return nil, fmt.Errorf("unknown strategy status %q", next)
	}
	for attempt := 0; attempt < statusRetries; attempt++ {
		item, err := m.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		from := Status(item.Status)
		if !CanTransition(from, next) {
			return nil, &InvalidStatusTransitionError{StrategyID: id, From: from, To: next}
		}
		if from == next {
			// Allowed self-transition (draft -> draft) is a no-op.
			return item, nil
		}
		affected, err := m.Repo.UpdateStrategyStatusGuarded(ctx, id, string(from), string(next))
		if err != nil {
			return nil, err
		}
		if affected > 0 {
			if m.Logger != nil {
				m.Logger.Info("strategy status changed",
					zap.Uint64("strategy_id", id),
					zap.String("from", string(from)),
					zap.String("to", string(next)),
				)
			}
			item.Status = string(next)
			return item, nil
		}
		// Another session moved the row; re-read and revalidate.
	}
	return nil, fmt.Errorf("strategy %d: status contention persisted across %d attempts", id, statusRetries)
}

// MetricsUpdate is a partial update of the accumulated performance metrics.
// Nil fields are left untouched.
type MetricsUpdate struct {
	PaperROI         *decimal.Decimal
	LiveROI          *decimal.Decimal
	PaperTradesCount *int64
	LiveTradesCount  *int64
}

// UpdateMetrics applies a non-empty subset of metric fields. The config
// column is not reachable from here or any other update path.
func (m *Manager) UpdateMetrics(ctx context.Context, id uint64, update MetricsUpdate) error {
	fields := map[string]any{}
	if update.PaperROI != nil {
		fields["paper_roi"] = *update.PaperROI
	}
	if update.LiveROI != nil {
		fields["live_roi"] = *update.LiveROI
	}
	if update.PaperTradesCount != nil {
		fields["paper_trades_count"] = *update.PaperTradesCount
	}
	if update.LiveTradesCount != nil {
		fields["live_trades_count"] = *update.LiveTradesCount
	}
	if len(fields) == 0 {
		return &validate.ValidationError{
			Entity:      "strategy",
			BusinessKey: fmt.Sprintf("%d", id),
			Issues: []validate.Issue{{
				Severity: validate.SeverityError,
				Field:    "metrics",
				Message:  "at least one metric field is required",
			}},
		}
	}
	affected, err := m.Repo.UpdateStrategyMetrics(ctx, id, fields)
	if err != nil {
		return err
	}
	if affected == 0 {
		return &scd.NotFoundError{Entity: "strategy", BusinessKey: fmt.Sprintf("%d", id)}
	}
	return nil
}
