package application

import (
	"context"
	"encoding/json"

	"github.com/rodolfodevapp/eventshop-messaging-go/core/primitives"
	"go.uber.org/zap"

	"github.com/RodolfoDevApp/eventshop-salability-go/internal/domain"
)

// SourceItemsUpdatedHandler reindexes the stocks fed by updated source items.
type SourceItemsUpdatedHandler struct {
	indexer domain.SourceItemIndexer
	logger  *zap.Logger
}

func NewSourceItemsUpdatedHandler(indexer domain.SourceItemIndexer, logger *zap.Logger) *SourceItemsUpdatedHandler {
	return &SourceItemsUpdatedHandler{indexer: indexer, logger: logger}
}

func (h *SourceItemsUpdatedHandler) Handle(ctx context.Context, ev primitives.Event) error {
	env, ok := ev.(*primitives.IntegrationEventEnvelope)
	if !ok {
		h.logger.Warn("SourceItemsUpdatedHandler: invalid event type", zap.String("type", typeNameOf(ev)))
		return nil
	}
	if env.Type != "SourceItemsUpdated" {
		return nil
	}

	var payload domain.SourceItemsUpdatedPayload
	if err := json.Unmarshal([]byte(env.PayloadJSON), &payload); err != nil {
		h.logger.Error("SourceItemsUpdatedHandler: failed to unmarshal payload", zap.Error(err))
		return nil
	}
	if len(payload.SourceItemIDs) == 0 {
		return nil
	}

	h.logger.Info("SourceItemsUpdatedHandler: reindexing", zap.Ints("source_item_ids", payload.SourceItemIDs))
	return h.indexer.ExecuteList(ctx, payload.SourceItemIDs)
}
