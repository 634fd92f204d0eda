package outbox

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/rodolfodevapp/eventshop-messaging-go/core/abstractions"
	"github.com/rodolfodevapp/eventshop-messaging-go/core/primitives"
	"go.uber.org/zap"

	"github.com/RodolfoDevApp/eventshop-salability-go/internal/domain"
)

type Dispatcher struct {
	repo      domain.OutboxRepository
	eventBus  abstractions.EventBus
	maxRetry  int
	batchSize int
	logger    *zap.Logger
}

func NewDispatcher(
	repo domain.OutboxRepository,
	eventBus abstractions.EventBus,
	maxRetry, batchSize int,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		repo:      repo,
		eventBus:  eventBus,
		maxRetry:  maxRetry,
		batchSize: batchSize,
		logger:    logger,
	}
}

// DispatchOnce publishes one batch of pending messages and returns how many
// were marked processed. Failed messages get their retry count bumped.
func (d *Dispatcher) DispatchOnce(ctx context.Context) (int, error) {
	msgs, err := d.repo.GetPendingBatch(ctx, d.maxRetry, d.batchSize)
	if err != nil {
		return 0, errors.Wrap(err, "load pending outbox batch")
	}

	processed := 0
	for i := range msgs {
		msg := &msgs[i]
		log := d.logger.With(zap.String("type", msg.Type), zap.Stringer("id", msg.ID))

		if !json.Valid([]byte(msg.PayloadJSON)) {
			log.Warn("outbox payload is not valid json")
			msg.RetryCount++
			d.save(ctx, log, *msg)
			continue
		}

		envelope := primitives.NewIntegrationEventEnvelope(msg.Type, msg.PayloadJSON)
		envelope.SetRoutingKey(msg.Type)

		if err := d.eventBus.Publish(ctx, &envelope); err != nil {
			log.Warn("outbox publish failed", zap.Error(err), zap.Int("retry", msg.RetryCount+1))
			msg.RetryCount++
		} else {
			now := time.Now().UTC().Unix()
			msg.ProcessedAtUtc = &now
			processed++
		}
		d.save(ctx, log, *msg)
	}
	return processed, nil
}

func (d *Dispatcher) save(ctx context.Context, log *zap.Logger, msg domain.OutboxMessage) {
	if err := d.repo.Save(ctx, msg); err != nil {
		log.Error("outbox save failed", zap.Error(err))
	}
}
