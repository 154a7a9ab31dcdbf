package service

import (
	"context"
	"time"

	"sportsbot/internal/metrics"
	"sportsbot/internal/models"
	"sportsbot/internal/repository"
	"sportsbot/internal/validate"
)

// persistAnomalies records every issue from one validation run, marking the
// blocking ones when the delta was rejected.
func persistAnomalies(ctx context.Context, repo repository.Repository, entity, key string, res validate.Result, outcome validate.Outcome) error {
	if len(res.Issues) == 0 || repo == nil {
		return nil
	}
	now := time.Now().UTC()
	rows := make([]models.Anomaly, 0, len(res.Issues))
	for _, issue := range res.Issues {
		metrics.AnomaliesTotal.WithLabelValues(entity, string(issue.Severity)).Inc()
		rows = append(rows, models.Anomaly{
			Entity:      entity,
			BusinessKey: key,
			Severity:    string(issue.Severity),
			Field:       issue.Field,
			Message:     issue.Message,
			Blocked:     outcome == validate.Rejected && issue.Severity == validate.SeverityError,
			ObservedAt:  now,
		})
	}
	return repo.InsertAnomalies(ctx, rows)
}
