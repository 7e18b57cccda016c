package sqldb

import (
	"context"
	"time"

	jsoniter "github.com/json-iterator/go"
	"gorm.io/gorm"

	"yatube/internal/model"
)

// MaxOutboxRetry stops redelivery of an event that keeps failing.
const MaxOutboxRetry = 10

type OutboxRepository struct {
	DB *gorm.DB
}

// Insert writes an event row; call it with the transaction of the change.
func (r *OutboxRepository) Insert(ctx context.Context, event string, aggregateID uint64, data map[string]any) error {
	payload, err := jsoniter.Marshal(map[string]any{
		"event":        event,
		"aggregate_id": aggregateID,
		"event_time":   time.Now().UTC().Format(time.RFC3339Nano),
		"data":         data,
	})
	if err != nil {
		return err
	}
	return r.DB.WithContext(ctx).Create(&model.Outbox{
		EventType:   event,
		AggregateID: aggregateID,
		Payload:     string(payload),
		Status:      model.OutboxPending,
	}).Error
}

// ListDeliverable returns pending events and failed ones still under the
// retry limit, oldest first.
func (r *OutboxRepository) ListDeliverable(ctx context.Context, batchSize int) ([]model.Outbox, error) {
	var list []model.Outbox
	if err := r.DB.WithContext(ctx).
		Where("status = ? OR (status = ? AND retry < ?)", model.OutboxPending, model.OutboxFailed, MaxOutboxRetry).
		Order("id ASC").
		Limit(batchSize).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// MarkFailed records a failed delivery attempt.
func (r *OutboxRepository) MarkFailed(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&model.Outbox{}).Where("id = ?", id).
		Updates(map[string]any{"status": model.OutboxFailed, "retry": gorm.Expr("retry + 1")}).Error
}

func (r *OutboxRepository) MarkSent(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&model.Outbox{}).Where("id = ?", id).
		Update("status", model.OutboxSent).Error
}

// PurgeSent deletes delivered events last touched before the cutoff.
func (r *OutboxRepository) PurgeSent(ctx context.Context, before time.Time) (int64, error) {
	tx := r.DB.WithContext(ctx).
		Where("status = ? AND updated_at < ?", model.OutboxSent, before).
		Delete(&model.Outbox{})
	return tx.RowsAffected, tx.Error
}
