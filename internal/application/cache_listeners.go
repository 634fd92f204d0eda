package application

import (
	"context"

	"github.com/pkg/errors"

	"github.com/RodolfoDevApp/eventshop-salability-go/internal/domain"
)

// ParentProductRepository resolves composite parents of child products.
type ParentProductRepository interface {
	GetParentIDsByChildIDs(ctx context.Context, childIDs []int) ([]int, error)
}

// ParentProductsCacheListener adds the parents of flushed products, whose
// pages render their children's stock status.
type ParentProductsCacheListener struct {
	parents ParentProductRepository
}

func NewParentProductsCacheListener(parents ParentProductRepository) *ParentProductsCacheListener {
	return &ParentProductsCacheListener{parents: parents}
}

func (l *ParentProductsCacheListener) CleanCacheByTags(ctx context.Context, cacheContext *CacheContext) error {
	children := cacheContext.RegisteredEntities(ProductCacheTag)
	if len(children) == 0 {
		return nil
	}
	parents, err := l.parents.GetParentIDsByChildIDs(ctx, children)
	if err != nil {
		return errors.Wrap(err, "load parent products")
	}
	cacheContext.RegisterEntities(ProductCacheTag, parents)
	return nil
}

// OutboxCacheListener publishes the identities for caches outside this
// process.
type OutboxCacheListener struct {
	outbox OutboxWriter
}

func NewOutboxCacheListener(outbox OutboxWriter) *OutboxCacheListener {
	return &OutboxCacheListener{outbox: outbox}
}

func (l *OutboxCacheListener) CleanCacheByTags(ctx context.Context, cacheContext *CacheContext) error {
	identities := cacheContext.Identities()
	if len(identities) == 0 {
		return nil
	}
	return l.outbox.Enqueue(ctx, domain.NewCleanCacheByTagsEvent(identities))
}
