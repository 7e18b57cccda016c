package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"yatube/internal/model"
	"yatube/internal/pkg"
	"yatube/internal/repository/sqldb"
)

// Sender delivers one outbox event.
type Sender func(ctx context.Context, ob *model.Outbox) error

// OutboxRelayer drains the outbox table to a Sender.
type OutboxRelayer struct {
	repo      *sqldb.OutboxRepository
	batchSize int
	retention time.Duration
	sender    Sender
	now       func() time.Time
}

func NewOutboxRelayer(db *gorm.DB, sender Sender, batchSize int, retention time.Duration) *OutboxRelayer {
	if batchSize <= 0 {
		batchSize = 200
	}
	return &OutboxRelayer{
		repo:      &sqldb.OutboxRepository{DB: db},
		batchSize: batchSize,
		retention: retention,
		sender:    sender,
		now:       time.Now,
	}
}

// RelayOnce delivers one batch. A failed event is marked for retry and
// does not stop the batch.
func (r *OutboxRelayer) RelayOnce(ctx context.Context) (sent, failed int, err error) {
	rows, err := r.repo.ListDeliverable(ctx, r.batchSize)
	if err != nil {
		return 0, 0, err
	}
	for i := range rows {
		ob := rows[i]
		if err := r.sender(ctx, &ob); err != nil {
			log.Warn().Err(err).Uint64("id", ob.ID).Str("event", ob.EventType).Msg("outbox delivery failed")
			if err := r.repo.MarkFailed(ctx, ob.ID); err != nil {
				return sent, failed, err
			}
			failed++
			continue
		}
		if err := r.repo.MarkSent(ctx, ob.ID); err != nil {
			return sent, failed, err
		}
		sent++
	}
	return sent, failed, nil
}

// Purge removes delivered events older than the retention window.
func (r *OutboxRelayer) Purge(ctx context.Context) (int64, error) {
	if r.retention <= 0 {
		return 0, nil
	}
	return r.repo.PurgeSent(ctx, r.now().Add(-r.retention))
}

// LogSender writes events to the log; used when no broker is configured.
func LogSender(_ context.Context, ob *model.Outbox) error {
	log.Info().
		Str("event", ob.EventType).
		Uint64("aggregate_id", ob.AggregateID).
		RawJSON("payload", []byte(ob.Payload)).
		Msg("outbox event")
	return nil
}

func KafkaSender(p *pkg.KafkaProducer) Sender {
	return func(ctx context.Context, ob *model.Outbox) error {
		return p.Publish(ctx, ob.EventType, ob.AggregateID, []byte(ob.Payload))
	}
}
