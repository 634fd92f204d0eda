package domain

import (
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Object types recorded in reservation metadata.
const (
	ObjectTypeOrder = "order"
)

// Event types recorded in reservation metadata.
const (
	EventOrderPlaced        = "order_placed"
	EventOrderCanceled      = "order_canceled"
	EventManualCompensation = "manual_compensation"
)

// ReservationMetadata identifies the sales object that produced a reservation.
type ReservationMetadata struct {
	EventType         string `json:"event_type,omitempty"`
	ObjectType        string `json:"object_type"`
	ObjectID          string `json:"object_id"`
	ObjectIncrementID string `json:"object_increment_id,omitempty"`
}

// ObjectIDInt returns the numeric object id, or 0 when it is not numeric.
func (m ReservationMetadata) ObjectIDInt() int {
	n, err := strconv.Atoi(m.ObjectID)
	if err != nil {
		return 0
	}
	return n
}

// Serialize encodes the metadata in the stored blob format.
func (m ReservationMetadata) Serialize() (string, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return "", errors.Wrap(err, "serialize reservation metadata")
	}
	return string(b), nil
}

// ParseReservationMetadata decodes a stored metadata blob.
// Object ids are accepted both as JSON strings and numbers.
func ParseReservationMetadata(blob string) (ReservationMetadata, error) {
	var raw struct {
		EventType         string          `json:"event_type"`
		ObjectType        string          `json:"object_type"`
		ObjectID          json.RawMessage `json:"object_id"`
		ObjectIncrementID json.RawMessage `json:"object_increment_id"`
	}
	if err := json.Unmarshal([]byte(blob), &raw); err != nil {
		return ReservationMetadata{}, &DeserializationError{Blob: blob, Err: err}
	}

	objectID, err := scalarString(raw.ObjectID)
	if err != nil {
		return ReservationMetadata{}, &DeserializationError{Blob: blob, Err: err}
	}
	incrementID, err := scalarString(raw.ObjectIncrementID)
	if err != nil {
		return ReservationMetadata{}, &DeserializationError{Blob: blob, Err: err}
	}

	return ReservationMetadata{
		EventType:         raw.EventType,
		ObjectType:        raw.ObjectType,
		ObjectID:          objectID,
		ObjectIncrementID: incrementID,
	}, nil
}

func scalarString(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", errors.Errorf("expected string or number, got %s", string(raw))
	}
	return n.String(), nil
}

// Reservation is one signed quantity delta in the ledger. Negative
// quantities take stock out of availability.
type Reservation struct {
	Sku      string
	StockID  int
	Quantity decimal.Decimal
	Metadata ReservationMetadata
}

// ReservationRow is a reservation as stored, metadata still serialized.
type ReservationRow struct {
	ReservationID int64
	StockID       int
	Sku           string
	Quantity      decimal.Decimal
	Metadata      string
}

// ReservationBuilder assembles and validates reservations.
type ReservationBuilder struct {
	sku      string
	stockID  int
	quantity decimal.Decimal
	metadata ReservationMetadata
}

func NewReservationBuilder() *ReservationBuilder {
	return &ReservationBuilder{}
}

func (b *ReservationBuilder) SetSku(sku string) *ReservationBuilder {
	b.sku = sku
	return b
}

func (b *ReservationBuilder) SetStockID(stockID int) *ReservationBuilder {
	b.stockID = stockID
	return b
}

func (b *ReservationBuilder) SetQuantity(qty decimal.Decimal) *ReservationBuilder {
	b.quantity = qty
	return b
}

func (b *ReservationBuilder) SetMetadata(m ReservationMetadata) *ReservationBuilder {
	b.metadata = m
	return b
}

// Build validates the collected fields and resets the builder.
func (b *ReservationBuilder) Build() (Reservation, error) {
	defer b.reset()

	var problems []string
	if b.sku == "" {
		problems = append(problems, `"sku" can not be empty`)
	}
	if b.stockID <= 0 {
		problems = append(problems, `"stock_id" must be a positive integer`)
	}
	if b.quantity.IsZero() {
		problems = append(problems, `"quantity" can not be zero`)
	}
	if b.metadata.ObjectType == "" {
		problems = append(problems, `"object_type" is required in metadata`)
	}
	if b.metadata.ObjectID == "" {
		problems = append(problems, `"object_id" is required in metadata`)
	}
	if len(problems) > 0 {
		return Reservation{}, &ValidationError{Problems: problems}
	}

	return Reservation{
		Sku:      b.sku,
		StockID:  b.stockID,
		Quantity: b.quantity,
		Metadata: b.metadata,
	}, nil
}

func (b *ReservationBuilder) reset() {
	*b = ReservationBuilder{}
}

// SumReservations adds up the quantity of the given reservations.
func SumReservations(reservations []Reservation) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range reservations {
		sum = sum.Add(r.Quantity)
	}
	return sum
}
