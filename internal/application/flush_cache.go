package application

import (
	"context"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/RodolfoDevApp/eventshop-salability-go/internal/domain"
)

// CacheTagsDispatcher broadcasts a cache context before it is purged.
type CacheTagsDispatcher interface {
	DispatchCleanCacheByTags(ctx context.Context, cacheContext *CacheContext) error
}

// FlushCacheByIDs purges the application cache for entities of one tag.
// Without a cache only the listeners run.
type FlushCacheByIDs struct {
	tag        string
	dispatcher CacheTagsDispatcher
	cache      domain.Cache
	logger     *zap.Logger
}

func NewFlushCacheByIDs(
	tag string,
	dispatcher CacheTagsDispatcher,
	cache domain.Cache,
	logger *zap.Logger,
) *FlushCacheByIDs {
	return &FlushCacheByIDs{
		tag:        tag,
		dispatcher: dispatcher,
		cache:      cache,
		logger:     logger,
	}
}

func (f *FlushCacheByIDs) Execute(ctx context.Context, ids []int) error {
	if len(ids) == 0 {
		return nil
	}

	ctx, span := tracer.Start(ctx, "FlushCacheByIDs.Execute")
	defer span.End()
	span.SetAttributes(attribute.String("tag", f.tag), attribute.Int("ids", len(ids)))

	cacheContext := NewCacheContext()
	cacheContext.RegisterEntities(f.tag, ids)
	if err := f.dispatcher.DispatchCleanCacheByTags(ctx, cacheContext); err != nil {
		return errors.Wrap(err, "dispatch clean cache by tags")
	}

	identities := cacheContext.Identities()
	if f.cache == nil {
		return nil
	}
	if err := f.cache.Clean(ctx, identities); err != nil {
		return errors.Wrap(err, "clean cache")
	}
	f.logger.Debug("cache flushed", zap.String("tag", f.tag), zap.Strings("identities", identities))
	return nil
}

// SkuCacheFlusher purges cached answers for the given skus.
type SkuCacheFlusher interface {
	Execute(ctx context.Context, skus []string) error
}

// FlushCacheBySkus flushes the product cache of skus whose reserved
// quantity changed. Unknown skus are skipped.
type FlushCacheBySkus struct {
	products domain.ProductRepository
	flush    *FlushCacheByIDs
}

var _ SkuCacheFlusher = (*FlushCacheBySkus)(nil)

func NewFlushCacheBySkus(products domain.ProductRepository, flush *FlushCacheByIDs) *FlushCacheBySkus {
	return &FlushCacheBySkus{products: products, flush: flush}
}

func (f *FlushCacheBySkus) Execute(ctx context.Context, skus []string) error {
	ids, err := productIDsBySkus(ctx, f.products, skus)
	if err != nil {
		return err
	}
	return f.flush.Execute(ctx, ids)
}

func productIDsBySkus(ctx context.Context, products domain.ProductRepository, skus []string) ([]int, error) {
	seen := map[int]struct{}{}
	var ids []int
	for _, sku := range skus {
		id, err := products.GetIDBySku(ctx, sku)
		if errors.Is(err, domain.ErrNoSuchEntity) {
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "product id of %s", sku)
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}
