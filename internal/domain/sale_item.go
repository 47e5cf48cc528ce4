package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const maxItemQuantity = 20

// SaleItem is a line item inside a Sale. Quantity-tiered discounts are
// recomputed on every quantity/price change:
//
//	1-3 items  -> no discount
//	4-9 items  -> 10%
//	10-20 items -> 20%
//	above 20   -> rejected
type SaleItem struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	SaleID             uuid.UUID       `gorm:"type:uuid;not null;index" json:"sale_id"`
	ProductID          string          `gorm:"size:100;not null" json:"product_id"`
	ProductName        string          `gorm:"size:200;not null" json:"product_name"`
	Quantity           int             `gorm:"not null" json:"quantity"`
	UnitPrice          decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"unit_price"`
	DiscountPercentage decimal.Decimal `gorm:"type:decimal(5,2)" json:"discount_percentage"`
	DiscountAmount     decimal.Decimal `gorm:"type:decimal(18,2)" json:"discount_amount"`
	TotalAmount        decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"total_amount"`
	IsCancelled        bool            `gorm:"not null;default:false" json:"is_cancelled"`
	CreatedAt          time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt          *time.Time      `json:"updated_at,omitempty"`
}

func (SaleItem) TableName() string { return "sale_item" }

// NewSaleItem validates the input and builds an item with discount and
// total already computed.
func NewSaleItem(productID, productName string, quantity int, unitPrice decimal.Decimal, saleID uuid.UUID) (*SaleItem, error) {
	const op = "SaleItem.New"
	if err := validateQuantity(op, quantity); err != nil {
		return nil, err
	}
	if err := validateUnitPrice(op, unitPrice); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	item := &SaleItem{
		ID:          uuid.New(),
		SaleID:      saleID,
		ProductID:   productID,
		ProductName: productName,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		CreatedAt:   now,
		UpdatedAt:   &now,
	}
	item.calculateDiscountAndTotal()
	return item, nil
}

// UpdateQuantity re-validates and recomputes discount and total.
func (i *SaleItem) UpdateQuantity(newQuantity int) error {
	const op = "SaleItem.UpdateQuantity"
	if i.IsCancelled {
		return NewError(CodeInvalidState, op, "cannot update quantity of a cancelled item", nil)
	}
	if err := validateQuantity(op, newQuantity); err != nil {
		return err
	}
	i.Quantity = newQuantity
	i.calculateDiscountAndTotal()
	i.touch()
	return nil
}

// UpdateUnitPrice re-validates and recomputes discount and total.
func (i *SaleItem) UpdateUnitPrice(newUnitPrice decimal.Decimal) error {
	const op = "SaleItem.UpdateUnitPrice"
	if i.IsCancelled {
		return NewError(CodeInvalidState, op, "cannot update price of a cancelled item", nil)
	}
	if err := validateUnitPrice(op, newUnitPrice); err != nil {
		return err
	}
	i.UnitPrice = newUnitPrice
	i.calculateDiscountAndTotal()
	i.touch()
	return nil
}

// Cancel flags the item as cancelled. The parent sale emits the
// corresponding event; none is raised at item granularity.
func (i *SaleItem) Cancel() {
	i.IsCancelled = true
	i.touch()
}

func (i *SaleItem) touch() {
	now := time.Now().UTC()
	i.UpdatedAt = &now
}

func (i *SaleItem) calculateDiscountAndTotal() {
	subtotal := i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
	i.DiscountPercentage = discountPercentage(i.Quantity)
	i.DiscountAmount = subtotal.Mul(i.DiscountPercentage).Div(decimal.NewFromInt(100))
	i.TotalAmount = subtotal.Sub(i.DiscountAmount)
}

func discountPercentage(quantity int) decimal.Decimal {
	switch {
	case quantity >= 10 && quantity <= maxItemQuantity:
		return decimal.NewFromInt(20)
	case quantity >= 4:
		return decimal.NewFromInt(10)
	default:
		return decimal.Zero
	}
}

func validateQuantity(op string, quantity int) error {
	if quantity <= 0 {
		return NewError(CodeInvalidArgument, op, "quantity must be greater than zero", nil)
	}
	if quantity > maxItemQuantity {
		return NewError(CodeValidation, op, "it's not possible to sell above 20 identical items", nil)
	}
	return nil
}

func validateUnitPrice(op string, unitPrice decimal.Decimal) error {
	if unitPrice.LessThanOrEqual(decimal.Zero) {
		return NewError(CodeInvalidArgument, op, "unit price must be greater than zero", nil)
	}
	return nil
}
