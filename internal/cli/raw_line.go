package cli

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// CompensationLine is one "<incrementId>:<sku>:<quantity>:<stockId>" entry,
// the format list-inconsistencies prints in raw mode and
// create-compensations reads back. Quantity is the compensation to append.
type CompensationLine struct {
	IncrementID string
	Sku         string
	Quantity    decimal.Decimal
	StockID     int
}

func (l CompensationLine) String() string {
	return l.IncrementID + ":" + l.Sku + ":" + l.Quantity.String() + ":" + strconv.Itoa(l.StockID)
}

// ParseCompensationLine splits from both ends so skus may contain colons.
func ParseCompensationLine(s string) (CompensationLine, error) {
	s = strings.TrimSpace(s)
	first := strings.Index(s, ":")
	last := strings.LastIndex(s, ":")
	if first <= 0 || last <= first {
		return CompensationLine{}, errors.Errorf("malformed compensation %q", s)
	}
	prev := strings.LastIndex(s[:last], ":")
	if prev <= first {
		return CompensationLine{}, errors.Errorf("malformed compensation %q", s)
	}

	qty, err := decimal.NewFromString(s[prev+1 : last])
	if err != nil {
		return CompensationLine{}, errors.Wrapf(err, "quantity of %q", s)
	}
	stockID, err := strconv.Atoi(s[last+1:])
	if err != nil || stockID <= 0 {
		return CompensationLine{}, errors.Errorf("stock id of %q", s)
	}
	sku := s[first+1 : prev]
	if sku == "" {
		return CompensationLine{}, errors.Errorf("sku of %q", s)
	}
	return CompensationLine{
		IncrementID: s[:first],
		Sku:         sku,
		Quantity:    qty,
		StockID:     stockID,
	}, nil
}
