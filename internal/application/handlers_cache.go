package application

import (
	"context"
	"encoding/json"

	"github.com/rodolfodevapp/eventshop-messaging-go/core/primitives"
	"go.uber.org/zap"

	"github.com/RodolfoDevApp/eventshop-salability-go/internal/domain"
)

// CleanCacheByTagsHandler purges the local response cache for identities
// flushed by another process, such as the compensation CLI.
type CleanCacheByTagsHandler struct {
	cache  domain.Cache
	logger *zap.Logger
}

func NewCleanCacheByTagsHandler(cache domain.Cache, logger *zap.Logger) *CleanCacheByTagsHandler {
	return &CleanCacheByTagsHandler{cache: cache, logger: logger}
}

func (h *CleanCacheByTagsHandler) Handle(ctx context.Context, ev primitives.Event) error {
	env, ok := ev.(*primitives.IntegrationEventEnvelope)
	if !ok {
		h.logger.Warn("CleanCacheByTagsHandler: invalid event type", zap.String("type", typeNameOf(ev)))
		return nil
	}
	if env.Type != "CleanCacheByTags" {
		return nil
	}

	var payload domain.CleanCacheByTagsPayload
	if err := json.Unmarshal([]byte(env.PayloadJSON), &payload); err != nil {
		h.logger.Error("CleanCacheByTagsHandler: failed to unmarshal payload", zap.Error(err))
		return nil
	}
	if len(payload.Identities) == 0 {
		return nil
	}

	h.logger.Debug("CleanCacheByTagsHandler: cleaning", zap.Strings("identities", payload.Identities))
	return h.cache.Clean(ctx, payload.Identities)
}
