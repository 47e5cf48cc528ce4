package services

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/devstore/sales-backend/internal/domain"
	"github.com/devstore/sales-backend/internal/logger"
	"github.com/devstore/sales-backend/internal/repos"
)

type CreateSaleItemCommand struct {
	ProductID   string
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
}

type CreateSaleCommand struct {
	SaleNumber   string
	CustomerID   string
	CustomerName string
	BranchID     string
	BranchName   string
	Items        []CreateSaleItemCommand
}

// SaleListResult is a page of sales plus paging metadata.
type SaleListResult struct {
	CurrentPage int
	PageSize    int
	TotalCount  int64
	TotalPages  int
	Data        []*domain.Sale
}

type SaleService interface {
	CreateSale(ctx context.Context, tx *gorm.DB, cmd CreateSaleCommand) (*domain.Sale, error)
	GetSale(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Sale, error)
	GetSaleByNumber(ctx context.Context, tx *gorm.DB, saleNumber string) (*domain.Sale, error)
	ListSales(ctx context.Context, tx *gorm.DB, page, size int) (*SaleListResult, error)
	ListSalesByCustomer(ctx context.Context, tx *gorm.DB, customerID string) ([]*domain.Sale, error)
	ListSalesByBranch(ctx context.Context, tx *gorm.DB, branchID string) ([]*domain.Sale, error)
	UpdateSale(ctx context.Context, tx *gorm.DB, id uuid.UUID, customerName, branchName string) (*domain.Sale, error)
	CancelSale(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Sale, error)
	CancelSaleItem(ctx context.Context, tx *gorm.DB, saleID, itemID uuid.UUID) (*domain.Sale, error)
	DeleteSale(ctx context.Context, tx *gorm.DB, id uuid.UUID) (bool, error)
}

type saleService struct {
	db        *gorm.DB
	log       *logger.Logger
	saleRepo  repos.SaleRepo
	publisher EventPublisher
}

func NewSaleService(
	db *gorm.DB,
	baseLog *logger.Logger,
	saleRepo repos.SaleRepo,
	publisher EventPublisher,
) SaleService {
	serviceLog := baseLog.With("service", "SaleService")
	return &saleService{
		db:        db,
		log:       serviceLog,
		saleRepo:  saleRepo,
		publisher: publisher,
	}
}

func (ss *saleService) CreateSale(ctx context.Context, tx *gorm.DB, cmd CreateSaleCommand) (*domain.Sale, error) {
	transaction := tx
	if transaction == nil {
		transaction = ss.db
	}

	existing, err := ss.saleRepo.GetBySaleNumber(ctx, transaction, cmd.SaleNumber)
	if err != nil && !domain.IsCode(err, domain.CodeNotFound) {
		return nil, fmt.Errorf("check sale number: %w", err)
	}
	if existing != nil {
		return nil, domain.NewError(domain.CodeConflict, "SaleService.CreateSale",
			fmt.Sprintf("sale with number %s already exists", cmd.SaleNumber), nil)
	}

	sale := domain.NewSale(cmd.SaleNumber, cmd.CustomerID, cmd.CustomerName, cmd.BranchID, cmd.BranchName)
	for _, itemCmd := range cmd.Items {
		item, err := domain.NewSaleItem(itemCmd.ProductID, itemCmd.ProductName, itemCmd.Quantity, itemCmd.UnitPrice, sale.ID)
		if err != nil {
			return nil, err
		}
		if err := sale.AddItem(item); err != nil {
			return nil, err
		}
	}

	if err := ss.saleRepo.Create(ctx, transaction, sale); err != nil {
		ss.log.Error("CreateSale failed", "error", err, "sale_number", cmd.SaleNumber)
		return nil, fmt.Errorf("create sale: %w", err)
	}

	ss.drainEvents(ctx, sale)
	return sale, nil
}

func (ss *saleService) GetSale(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Sale, error) {
	transaction := tx
	if transaction == nil {
		transaction = ss.db
	}
	return ss.saleRepo.GetByID(ctx, transaction, id)
}

func (ss *saleService) GetSaleByNumber(ctx context.Context, tx *gorm.DB, saleNumber string) (*domain.Sale, error) {
	transaction := tx
	if transaction == nil {
		transaction = ss.db
	}
	return ss.saleRepo.GetBySaleNumber(ctx, transaction, saleNumber)
}

func (ss *saleService) ListSales(ctx context.Context, tx *gorm.DB, page, size int) (*SaleListResult, error) {
	transaction := tx
	if transaction == nil {
		transaction = ss.db
	}
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 10
	}

	sales, err := ss.saleRepo.List(ctx, transaction, page, size)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	total, err := ss.saleRepo.Count(ctx, transaction)
	if err != nil {
		return nil, fmt.Errorf("count sales: %w", err)
	}

	return &SaleListResult{
		CurrentPage: page,
		PageSize:    size,
		TotalCount:  total,
		TotalPages:  int(math.Ceil(float64(total) / float64(size))),
		Data:        sales,
	}, nil
}

func (ss *saleService) ListSalesByCustomer(ctx context.Context, tx *gorm.DB, customerID string) ([]*domain.Sale, error) {
	transaction := tx
	if transaction == nil {
		transaction = ss.db
	}
	sales, err := ss.saleRepo.GetByCustomerID(ctx, transaction, customerID)
	if err != nil {
		return nil, fmt.Errorf("list sales by customer: %w", err)
	}
	return sales, nil
}

func (ss *saleService) ListSalesByBranch(ctx context.Context, tx *gorm.DB, branchID string) ([]*domain.Sale, error) {
	transaction := tx
	if transaction == nil {
		transaction = ss.db
	}
	sales, err := ss.saleRepo.GetByBranchID(ctx, transaction, branchID)
	if err != nil {
		return nil, fmt.Errorf("list sales by branch: %w", err)
	}
	return sales, nil
}

func (ss *saleService) UpdateSale(ctx context.Context, tx *gorm.DB, id uuid.UUID, customerName, branchName string) (*domain.Sale, error) {
	transaction := tx
	if transaction == nil {
		transaction = ss.db
	}

	sale, err := ss.saleRepo.GetByID(ctx, transaction, id)
	if err != nil {
		return nil, err
	}
	if err := sale.Update(customerName, branchName); err != nil {
		return nil, err
	}
	if err := ss.saleRepo.Update(ctx, transaction, sale); err != nil {
		ss.log.Error("UpdateSale failed", "error", err, "sale_id", id)
		return nil, fmt.Errorf("update sale: %w", err)
	}

	ss.drainEvents(ctx, sale)
	return sale, nil
}

func (ss *saleService) CancelSale(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Sale, error) {
	transaction := tx
	if transaction == nil {
		transaction = ss.db
	}

	sale, err := ss.saleRepo.GetByID(ctx, transaction, id)
	if err != nil {
		return nil, err
	}
	sale.Cancel()
	if err := ss.saleRepo.Update(ctx, transaction, sale); err != nil {
		ss.log.Error("CancelSale failed", "error", err, "sale_id", id)
		return nil, fmt.Errorf("cancel sale: %w", err)
	}

	ss.drainEvents(ctx, sale)
	return sale, nil
}

func (ss *saleService) CancelSaleItem(ctx context.Context, tx *gorm.DB, saleID, itemID uuid.UUID) (*domain.Sale, error) {
	transaction := tx
	if transaction == nil {
		transaction = ss.db
	}

	sale, err := ss.saleRepo.GetByID(ctx, transaction, saleID)
	if err != nil {
		return nil, err
	}
	if err := sale.CancelItem(itemID); err != nil {
		return nil, err
	}
	if err := ss.saleRepo.Update(ctx, transaction, sale); err != nil {
		ss.log.Error("CancelSaleItem failed", "error", err, "sale_id", saleID, "item_id", itemID)
		return nil, fmt.Errorf("cancel sale item: %w", err)
	}

	ss.drainEvents(ctx, sale)
	return sale, nil
}

func (ss *saleService) DeleteSale(ctx context.Context, tx *gorm.DB, id uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = ss.db
	}

	found, err := ss.saleRepo.Delete(ctx, transaction, id)
	if err != nil {
		ss.log.Error("DeleteSale failed", "error", err, "sale_id", id)
		return false, fmt.Errorf("delete sale: %w", err)
	}
	return found, nil
}

func (ss *saleService) drainEvents(ctx context.Context, sale *domain.Sale) {
	events := sale.Events()
	if len(events) == 0 {
		return
	}
	ss.publisher.Publish(ctx, events)
	sale.ClearEvents()
}
