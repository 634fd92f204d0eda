package application

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/RodolfoDevApp/eventshop-salability-go/internal/application")

func withStockID(stockID int) trace.EventOption {
	return trace.WithAttributes(attribute.Int("stock_id", stockID))
}
