package domain

import (
	"github.com/shopspring/decimal"
)

// BackordersPolicy mirrors the stored backorders setting.
type BackordersPolicy int

const (
	BackordersNo          BackordersPolicy = 0
	BackordersYesNoNotify BackordersPolicy = 1
	BackordersYesNotify   BackordersPolicy = 2
)

func (b BackordersPolicy) String() string {
	switch b {
	case BackordersNo:
		return "NO"
	case BackordersYesNoNotify:
		return "YES_NONOTIFY"
	case BackordersYesNotify:
		return "YES_NOTIFY"
	default:
		return "UNKNOWN"
	}
}

// StockItemConfiguration is the per (sku, stock) inventory configuration.
type StockItemConfiguration struct {
	Sku         string
	StockID     int
	ManageStock bool
	Backorders  BackordersPolicy
	MinQty      decimal.Decimal
}

// StockItemData is the indexed quantity and salable flag for (sku, stock).
type StockItemData struct {
	Quantity  decimal.Decimal
	IsSalable bool
}

type Stock struct {
	StockID int
	Name    string
}

// SkuListInStock groups the skus affected by a set of source items per stock.
type SkuListInStock struct {
	StockID int
	Skus    []string
}

// StockIndexRow is one row of a stock's salability index.
type StockIndexRow struct {
	Sku       string
	Quantity  decimal.Decimal
	IsSalable bool
}

// Product type codes relevant to inventory.
const (
	ProductTypeSimple       = "simple"
	ProductTypeVirtual      = "virtual"
	ProductTypeDownloadable = "downloadable"
	ProductTypeConfigurable = "configurable"
	ProductTypeBundle       = "bundle"
	ProductTypeGrouped      = "grouped"
)

// IsSourceItemManagementAllowedForProductType reports whether products of
// the given type carry their own source items.
func IsSourceItemManagementAllowedForProductType(productType string) bool {
	switch productType {
	case ProductTypeSimple, ProductTypeVirtual, ProductTypeDownloadable:
		return true
	default:
		return false
	}
}
