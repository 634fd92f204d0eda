package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pkg/errors"
)

const schema = `
create table if not exists inventory_stock (
    stock_id serial primary key,
    name     text not null
);

create table if not exists inventory_stock_sales_channel (
    website_id int primary key,
    stock_id   int not null references inventory_stock(stock_id)
);

create table if not exists inventory_source_stock_link (
    source_code text not null,
    stock_id    int  not null references inventory_stock(stock_id),
    primary key (source_code, stock_id)
);

create table if not exists inventory_source_item (
    source_item_id serial primary key,
    source_code    text          not null,
    sku            text          not null,
    quantity       numeric(12,4) not null default 0,
    status         smallint      not null default 1,
    unique (source_code, sku)
);

create table if not exists inventory_stock_item_configuration (
    sku          text          not null,
    stock_id     int           not null,
    manage_stock boolean       not null default true,
    backorders   smallint      not null default 0,
    min_qty      numeric(12,4) not null default 0,
    primary key (sku, stock_id)
);

create table if not exists inventory_reservation (
    reservation_id bigserial primary key,
    stock_id       int           not null,
    sku            text          not null,
    quantity       numeric(12,4) not null,
    metadata       text
);
create index if not exists inventory_reservation_sku_stock on inventory_reservation (sku, stock_id);

create table if not exists catalog_product_entity (
    entity_id serial primary key,
    sku       text     not null unique,
    type_id   text     not null default 'simple',
    status    smallint not null default 1
);

create table if not exists catalog_product_super_link (
    product_id int not null,
    parent_id  int not null,
    primary key (product_id, parent_id)
);

create table if not exists cataloginventory_stock_item (
    product_id  int primary key,
    qty         numeric(12,4) not null default 0,
    is_in_stock boolean       not null default false
);

create table if not exists sales_order (
    entity_id    serial primary key,
    increment_id text not null unique,
    state        text not null,
    stock_id     int  not null
);

create table if not exists sales_order_item (
    item_id      serial primary key,
    order_id     int           not null references sales_order(entity_id),
    sku          text          not null,
    product_type text          not null default 'simple',
    qty_ordered  numeric(12,4) not null default 0,
    qty_shipped  numeric(12,4) not null default 0,
    qty_canceled numeric(12,4) not null default 0
);

create table if not exists outbox_messages (
    id               uuid primary key,
    type             text        not null,
    payload_json     text        not null,
    occurred_at_utc  timestamptz not null,
    retry_count      int         not null default 0,
    processed_at_utc timestamptz
);
`

// InitializeSchema creates the tables owned or read by this service.
func InitializeSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "initialize schema")
	}
	return nil
}

// stockIndexTable names the salability index table of a stock.
func stockIndexTable(stockID int) string {
	return fmt.Sprintf("inventory_stock_%d", stockID)
}
