package messaging

import (
	"context"

	"github.com/pkg/errors"
	messaging "github.com/rodolfodevapp/eventshop-messaging-go/rabbitmq"

	"github.com/RodolfoDevApp/eventshop-salability-go/internal/application"
)

const (
	OrdersExchange    = "orders.events"
	CatalogExchange   = "catalog.events"
	InventoryExchange = "inventory.events"
)

type EventBuses struct {
	OrdersConsumer  *messaging.RabbitMqEventBus
	CatalogConsumer *messaging.RabbitMqEventBus
	Producer        *messaging.RabbitMqEventBus
}

func newBus(rabbitUri, exchange, queuePrefix string) *messaging.RabbitMqEventBus {
	opts := messaging.RabbitMqOptions{
		URI:          rabbitUri,
		ExchangeName: exchange,
		QueuePrefix:  queuePrefix,
		Prefetch:     32,
		RetryDelayMs: 30000,
	}
	return messaging.NewRabbitMqEventBus(opts, nil, nil)
}

// NewEventBuses consumes orders.events and catalog.events and produces
// inventory.events.
func NewEventBuses(rabbitUri, queuePrefix string) EventBuses {
	return EventBuses{
		OrdersConsumer:  newBus(rabbitUri, OrdersExchange, queuePrefix+".orders-events.v1"),
		CatalogConsumer: newBus(rabbitUri, CatalogExchange, queuePrefix+".catalog-events.v1"),
		Producer:        newBus(rabbitUri, InventoryExchange, queuePrefix+".dispatcher.v1"),
	}
}

// NewCacheConsumer reads inventory.events on a queue of its own per
// instance so every replica purges its local cache.
func NewCacheConsumer(rabbitUri, queuePrefix, instance string) *messaging.RabbitMqEventBus {
	return newBus(rabbitUri, InventoryExchange, queuePrefix+".cache-"+instance+".v1")
}

func RegisterOrderSubscriptions(
	ctx context.Context,
	bus *messaging.RabbitMqEventBus,
	orderPlacedHandler application.EventHandler,
	orderCancelledHandler application.EventHandler,
) error {
	bus.Subscribe("OrderPlacedEvent", orderPlacedHandler)
	bus.Subscribe("OrderCancelledEvent", orderCancelledHandler)
	bus.Subscribe("OrderRejectedEvent", orderCancelledHandler)

	return errors.Wrap(bus.StartConsumers(ctx), "start orders consumers")
}

func RegisterCatalogSubscriptions(
	ctx context.Context,
	bus *messaging.RabbitMqEventBus,
	sourceItemsUpdatedHandler application.EventHandler,
) error {
	bus.Subscribe("SourceItemsUpdated", sourceItemsUpdatedHandler)

	return errors.Wrap(bus.StartConsumers(ctx), "start catalog consumers")
}

func RegisterCacheSubscriptions(
	ctx context.Context,
	bus *messaging.RabbitMqEventBus,
	cleanCacheByTagsHandler application.EventHandler,
) error {
	bus.Subscribe("CleanCacheByTags", cleanCacheByTagsHandler)

	return errors.Wrap(bus.StartConsumers(ctx), "start cache consumers")
}
