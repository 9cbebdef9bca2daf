package cron

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/graingrove-backend/pkg/db/models"
	"github.com/angelmondragon/graingrove-backend/pkg/logger"
)

const deadLetterReportLimit = 100

type deadLetterLister interface {
	ListFailedSince(ctx context.Context, since time.Time, limit int) ([]models.OutboxDLQ, error)
}

// deadLetterReportJob warns once per order event that was dead-lettered
// during the last window, so stuck order notifications surface in the logs.
type deadLetterReportJob struct {
	logg   *logger.Logger
	lister deadLetterLister
	window time.Duration
	now    func() time.Time
}

// NewDeadLetterReportJob reports dead letters newer than window, which should match the scheduler interval.
func NewDeadLetterReportJob(logg *logger.Logger, lister deadLetterLister, window time.Duration) (Job, error) {
	if logg == nil {
		return nil, errors.New("logger required")
	}
	if lister == nil {
		return nil, errors.New("dead letter repository required")
	}
	if window <= 0 {
		window = defaultInterval
	}
	return &deadLetterReportJob{logg: logg, lister: lister, window: window, now: time.Now}, nil
}

func (j *deadLetterReportJob) Name() string { return "dead-letter-report" }

func (j *deadLetterReportJob) Run(ctx context.Context) error {
	rows, err := j.lister.ListFailedSince(ctx, j.now().UTC().Add(-j.window), deadLetterReportLimit)
	if err != nil {
		return err
	}
	for _, row := range rows {
		fields := map[string]any{
			"outbox_id":     row.EventID.String(),
			"event_type":    row.EventType,
			"order_id":      row.AggregateID,
			"error_reason":  row.ErrorReason,
			"attempt_count": row.AttemptCount,
			"failed_at":     row.FailedAt,
		}
		if row.ErrorMessage != nil {
			fields["last_error"] = *row.ErrorMessage
		}
		j.logg.Warn(j.logg.WithFields(ctx, fields), "order event dead-lettered")
	}
	j.logg.Info(j.logg.WithField(ctx, "dead_letters", len(rows)), "dead letter report complete")
	return nil
}
