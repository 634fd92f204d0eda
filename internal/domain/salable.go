package domain

// SalabilityError is one reason a quantity is not (fully) salable.
type SalabilityError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SalableResult is the outcome of a salability condition. No errors means salable.
type SalableResult struct {
	Errors []SalabilityError `json:"errors"`
}

func NewSalableResult(errs ...SalabilityError) SalableResult {
	if errs == nil {
		errs = []SalabilityError{}
	}
	return SalableResult{Errors: errs}
}

func (r SalableResult) IsSalable() bool {
	return len(r.Errors) == 0
}

// Salability error codes.
const (
	CodeBackOrderNotEnough       = "back_order-not-enough"
	CodeNotEnoughQtyWithReserves = "is_salable_with_reservations-not_enough_qty"
	CodeStockNotAssigned         = "stock_item-not_assigned"
)
