package domain

import (
	"time"

	"github.com/google/uuid"
)

// Event is the common capability of domain events queued on an aggregate.
// Events are immutable facts; the aggregate appends them and an external
// collaborator drains and clears them after each unit of work.
type Event interface {
	EventID() uuid.UUID
	OccurredAt() time.Time
	EventName() string
}

type eventBase struct {
	ID uuid.UUID
	At time.Time
}

func newEventBase() eventBase {
	return eventBase{ID: uuid.New(), At: time.Now().UTC()}
}

func (e eventBase) EventID() uuid.UUID    { return e.ID }
func (e eventBase) OccurredAt() time.Time { return e.At }

// SaleCreatedEvent is raised when a new sale is created.
type SaleCreatedEvent struct {
	eventBase
	SaleID     uuid.UUID
	SaleNumber string
	CustomerID string
}

func NewSaleCreatedEvent(saleID uuid.UUID, saleNumber, customerID string) SaleCreatedEvent {
	return SaleCreatedEvent{
		eventBase:  newEventBase(),
		SaleID:     saleID,
		SaleNumber: saleNumber,
		CustomerID: customerID,
	}
}

func (SaleCreatedEvent) EventName() string { return "sale_created" }

// SaleModifiedEvent is raised when a sale's header fields change.
type SaleModifiedEvent struct {
	eventBase
	SaleID     uuid.UUID
	SaleNumber string
}

func NewSaleModifiedEvent(saleID uuid.UUID, saleNumber string) SaleModifiedEvent {
	return SaleModifiedEvent{
		eventBase:  newEventBase(),
		SaleID:     saleID,
		SaleNumber: saleNumber,
	}
}

func (SaleModifiedEvent) EventName() string { return "sale_modified" }

// SaleCancelledEvent is raised when a sale is cancelled.
type SaleCancelledEvent struct {
	eventBase
	SaleID     uuid.UUID
	SaleNumber string
}

func NewSaleCancelledEvent(saleID uuid.UUID, saleNumber string) SaleCancelledEvent {
	return SaleCancelledEvent{
		eventBase:  newEventBase(),
		SaleID:     saleID,
		SaleNumber: saleNumber,
	}
}

func (SaleCancelledEvent) EventName() string { return "sale_cancelled" }

// ItemCancelledEvent is raised when a single item in a sale is cancelled.
type ItemCancelledEvent struct {
	eventBase
	SaleID    uuid.UUID
	ItemID    uuid.UUID
	ProductID string
}

func NewItemCancelledEvent(saleID, itemID uuid.UUID, productID string) ItemCancelledEvent {
	return ItemCancelledEvent{
		eventBase: newEventBase(),
		SaleID:    saleID,
		ItemID:    itemID,
		ProductID: productID,
	}
}

func (ItemCancelledEvent) EventName() string { return "sale_item_cancelled" }
