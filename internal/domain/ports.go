package domain

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReservationRepository is the append-only reservation ledger.
type ReservationRepository interface {
	List(ctx context.Context) ([]ReservationRow, error)
	Append(ctx context.Context, reservations ...Reservation) error
	SumQuantity(ctx context.Context, sku string, stockID int) (decimal.Decimal, error)
}

// StockItemConfigurationRepository returns ErrSkuNotAssignedToStock when
// the sku has no configuration on the stock.
type StockItemConfigurationRepository interface {
	Get(ctx context.Context, sku string, stockID int) (StockItemConfiguration, error)
}

// StockItemDataRepository returns nil data when nothing is tracked.
type StockItemDataRepository interface {
	Get(ctx context.Context, sku string, stockID int) (*StockItemData, error)
}

// LegacyStockItemRepository reads the single-source stock item table of the default stock.
type LegacyStockItemRepository interface {
	GetByProductID(ctx context.Context, productID int) (*StockItemData, error)
}

type StockRepository interface {
	List(ctx context.Context) ([]Stock, error)
	GetByWebsiteID(ctx context.Context, websiteID int) (Stock, error)
}

type OrderRepository interface {
	ListNotInStates(ctx context.Context, states []OrderState, pageSize, page int) ([]Order, error)
	GetByIncrementID(ctx context.Context, incrementID string) (*Order, error)
	GetIncrementID(ctx context.Context, entityID int) (string, error)
}

// ProductRepository resolves skus to product ids. GetIDBySku returns
// ErrNoSuchEntity for unknown skus.
type ProductRepository interface {
	GetIDBySku(ctx context.Context, sku string) (int, error)
}

// Cache is the application cache purged by identities.
type Cache interface {
	Clean(ctx context.Context, identities []string) error
}

// SourceItemIndexer reindexes the stocks affected by the given source items.
type SourceItemIndexer interface {
	ExecuteList(ctx context.Context, sourceItemIDs []int) error
}

type SkuListInStockProvider interface {
	GetSkuListInStock(ctx context.Context, sourceItemIDs []int) ([]SkuListInStock, error)
}

// StockIndexRepository builds and stores per-stock salability indexes.
// A nil sku filter means every sku of the stock.
type StockIndexRepository interface {
	EnsureIndex(ctx context.Context, stockID int) error
	IndexData(ctx context.Context, stockID int, skus []string) ([]StockIndexRow, error)
	CleanIndex(ctx context.Context, stockID int, skus []string) error
	SaveIndex(ctx context.Context, stockID int, rows []StockIndexRow) error
}

// SalableProductRepository answers which products are salable in a stock index.
type SalableProductRepository interface {
	SalableProductIDs(ctx context.Context, stockID int, productIDs []int) (map[int]bool, error)
}

type OutboxRepository interface {
	Insert(ctx context.Context, msg OutboxMessage) error
	GetPendingBatch(ctx context.Context, maxRetry, batchSize int) ([]OutboxMessage, error)
	Save(ctx context.Context, msg OutboxMessage) error
}

type OutboxMessage struct {
	ID             uuid.UUID
	Type           string
	PayloadJSON    string
	OccurredAtUtc  int64 // unix seconds
	RetryCount     int
	ProcessedAtUtc *int64
}
