package pos

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apporder "github.com/storecore/backend/internal/application/order"
)

// SaleItem is one line of a point-of-sale checkout
type SaleItem struct {
	VariantID uuid.UUID `json:"variant_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

// PaymentDetails carries the tender for a sale. AmountReceived is required
// for cash; provider, phone number and reference are required for mobile
// money.
type PaymentDetails struct {
	AmountReceived *decimal.Decimal `json:"amount_received"`
	Provider       string           `json:"provider"`
	PhoneNumber    string           `json:"phone_number"`
	Reference      string           `json:"reference"`
}

// ExecuteSaleCommand is the input for a point-of-sale checkout
type ExecuteSaleCommand struct {
	CustomerID     *uuid.UUID     `json:"customer_id"`
	CashierID      uuid.UUID      `json:"cashier_id"`
	PaymentMethod  string         `json:"payment_method" binding:"required,oneof=CASH MOBILE_MONEY"`
	PaymentDetails PaymentDetails `json:"payment_details"`
	Items          []SaleItem     `json:"items" binding:"required,min=1,dive"`
}

// SaleResult is the outcome of a committed sale
type SaleResult struct {
	Order         *apporder.OrderResponse `json:"order"`
	TransactionID uuid.UUID               `json:"transaction_id"`
	ChangeDue     *decimal.Decimal        `json:"change_due,omitempty"`
}
