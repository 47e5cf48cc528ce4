package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale is the aggregate root for a sales transaction. It owns its item
// collection and keeps TotalAmount equal to the sum of the non-cancelled
// items' totals after every item mutation. Customer and branch names are
// denormalized copies of data owned elsewhere.
type Sale struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	SaleNumber   string          `gorm:"size:50;not null;uniqueIndex" json:"sale_number"`
	SaleDate     time.Time       `gorm:"not null" json:"sale_date"`
	CustomerID   string          `gorm:"size:100;not null;index" json:"customer_id"`
	CustomerName string          `gorm:"size:200;not null" json:"customer_name"`
	BranchID     string          `gorm:"size:100;not null;index" json:"branch_id"`
	BranchName   string          `gorm:"size:200;not null" json:"branch_name"`
	TotalAmount  decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"total_amount"`
	IsCancelled  bool            `gorm:"not null;default:false" json:"is_cancelled"`
	Items        []*SaleItem     `gorm:"foreignKey:SaleID;references:ID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt    time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt    *time.Time      `json:"updated_at,omitempty"`

	events []Event
}

func (Sale) TableName() string { return "sale" }

// NewSale builds an empty sale and queues the created event.
func NewSale(saleNumber, customerID, customerName, branchID, branchName string) *Sale {
	now := time.Now().UTC()
	sale := &Sale{
		ID:           uuid.New(),
		SaleNumber:   saleNumber,
		SaleDate:     now,
		CustomerID:   customerID,
		CustomerName: customerName,
		BranchID:     branchID,
		BranchName:   branchName,
		TotalAmount:  decimal.Zero,
		CreatedAt:    now,
		UpdatedAt:    &now,
	}
	sale.addEvent(NewSaleCreatedEvent(sale.ID, sale.SaleNumber, sale.CustomerID))
	return sale
}

// AddItem appends an item and recalculates the total.
func (s *Sale) AddItem(item *SaleItem) error {
	if s.IsCancelled {
		return NewError(CodeInvalidState, "Sale.AddItem", "cannot add items to a cancelled sale", nil)
	}
	s.Items = append(s.Items, item)
	s.recalculateTotal()
	return nil
}

// RemoveItem drops the item with the given id; unknown ids are a no-op.
// Unlike AddItem/CancelItem this is not guarded by the cancelled flag:
// items can still be removed from a cancelled sale.
func (s *Sale) RemoveItem(itemID uuid.UUID) {
	kept := make([]*SaleItem, 0, len(s.Items))
	removed := false
	for _, item := range s.Items {
		if item.ID == itemID {
			removed = true
			continue
		}
		kept = append(kept, item)
	}
	if !removed {
		return
	}
	s.Items = kept
	s.recalculateTotal()
}

// CancelItem flags a single item as cancelled and queues the item event.
// Unknown or already-cancelled item ids are a no-op.
func (s *Sale) CancelItem(itemID uuid.UUID) error {
	if s.IsCancelled {
		return NewError(CodeInvalidState, "Sale.CancelItem", "cannot cancel items in a cancelled sale", nil)
	}
	for _, item := range s.Items {
		if item.ID != itemID || item.IsCancelled {
			continue
		}
		item.Cancel()
		s.recalculateTotal()
		s.addEvent(NewItemCancelledEvent(s.ID, item.ID, item.ProductID))
		return nil
	}
	return nil
}

// Cancel marks the whole sale as cancelled. Idempotent: a second call
// changes nothing and queues no event. Items are not cascade-cancelled.
func (s *Sale) Cancel() {
	if s.IsCancelled {
		return
	}
	s.IsCancelled = true
	s.addEvent(NewSaleCancelledEvent(s.ID, s.SaleNumber))
}

// Update overwrites the denormalized customer/branch names.
func (s *Sale) Update(customerName, branchName string) error {
	if s.IsCancelled {
		return NewError(CodeInvalidState, "Sale.Update", "cannot update a cancelled sale", nil)
	}
	s.CustomerName = customerName
	s.BranchName = branchName
	s.touch()
	s.addEvent(NewSaleModifiedEvent(s.ID, s.SaleNumber))
	return nil
}

// Events returns the queued domain events in append order.
func (s *Sale) Events() []Event {
	return s.events
}

// ClearEvents empties the queue. Called by the publishing collaborator
// after the events have been consumed.
func (s *Sale) ClearEvents() {
	s.events = nil
}

func (s *Sale) addEvent(ev Event) {
	s.events = append(s.events, ev)
}

func (s *Sale) touch() {
	now := time.Now().UTC()
	s.UpdatedAt = &now
}

func (s *Sale) recalculateTotal() {
	total := decimal.Zero
	for _, item := range s.Items {
		if item.IsCancelled {
			continue
		}
		total = total.Add(item.TotalAmount)
	}
	s.TotalAmount = total
}
