package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/devstore/sales-backend/internal/domain"
	"github.com/devstore/sales-backend/internal/logger"
	"github.com/devstore/sales-backend/internal/repos"
)

type capturePublisher struct {
	events []domain.Event
}

func (p *capturePublisher) Publish(_ context.Context, events []domain.Event) {
	p.events = append(p.events, events...)
}

func (p *capturePublisher) names() []string {
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.EventName())
	}
	return out
}

func newTestService(t *testing.T) (SaleService, *capturePublisher, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := gdb.AutoMigrate(&domain.Sale{}, &domain.SaleItem{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	publisher := &capturePublisher{}
	saleRepo := repos.NewSaleRepo(gdb, logger.Nop())
	return NewSaleService(gdb, logger.Nop(), saleRepo, publisher), publisher, gdb
}

func testCreateCommand(saleNumber string) CreateSaleCommand {
	return CreateSaleCommand{
		SaleNumber:   saleNumber,
		CustomerID:   "cust-1",
		CustomerName: "Customer One",
		BranchID:     "branch-1",
		BranchName:   "Branch One",
		Items: []CreateSaleItemCommand{
			{ProductID: "prod-1", ProductName: "Product One", Quantity: 5, UnitPrice: decimal.RequireFromString("10.00")},
			{ProductID: "prod-2", ProductName: "Product Two", Quantity: 3, UnitPrice: decimal.RequireFromString("20.00")},
		},
	}
}

func TestCreateSale(t *testing.T) {
	svc, publisher, _ := newTestService(t)
	ctx := context.Background()

	sale, err := svc.CreateSale(ctx, nil, testCreateCommand("S-200"))
	if err != nil {
		t.Fatalf("CreateSale: %v", err)
	}
	if !sale.TotalAmount.Equal(decimal.RequireFromString("105.00")) {
		t.Fatalf("total = %s, want 105.00", sale.TotalAmount)
	}
	if len(sale.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(sale.Items))
	}
	if len(sale.Events()) != 0 {
		t.Fatalf("events not drained, %d left", len(sale.Events()))
	}
	if got := publisher.names(); len(got) != 1 || got[0] != "sale_created" {
		t.Fatalf("published events = %v, want [sale_created]", got)
	}

	loaded, err := svc.GetSale(ctx, nil, sale.ID)
	if err != nil {
		t.Fatalf("GetSale: %v", err)
	}
	if !loaded.TotalAmount.Equal(decimal.RequireFromString("105.00")) {
		t.Fatalf("persisted total = %s, want 105.00", loaded.TotalAmount)
	}
}

func TestCreateSaleDuplicateNumber(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateSale(ctx, nil, testCreateCommand("S-201")); err != nil {
		t.Fatalf("first CreateSale: %v", err)
	}
	_, err := svc.CreateSale(ctx, nil, testCreateCommand("S-201"))
	if !domain.IsCode(err, domain.CodeConflict) {
		t.Fatalf("duplicate error = %v, want conflict code", err)
	}
}

func TestCreateSaleInvalidItemLeavesNoState(t *testing.T) {
	svc, publisher, gdb := newTestService(t)
	ctx := context.Background()

	cmd := testCreateCommand("S-202")
	cmd.Items = append(cmd.Items, CreateSaleItemCommand{
		ProductID: "prod-3", ProductName: "Product Three", Quantity: 21, UnitPrice: decimal.RequireFromString("10.00"),
	})

	_, err := svc.CreateSale(ctx, nil, cmd)
	if !domain.IsCode(err, domain.CodeValidation) {
		t.Fatalf("error = %v, want validation code", err)
	}
	if len(publisher.events) != 0 {
		t.Fatalf("events published on rejected create: %v", publisher.names())
	}

	var count int64
	if err := gdb.Model(&domain.Sale{}).Count(&count).Error; err != nil {
		t.Fatalf("count sales: %v", err)
	}
	if count != 0 {
		t.Fatalf("sale persisted despite rejection, count = %d", count)
	}
}

func TestUpdateSale(t *testing.T) {
	svc, publisher, _ := newTestService(t)
	ctx := context.Background()

	sale, err := svc.CreateSale(ctx, nil, testCreateCommand("S-203"))
	if err != nil {
		t.Fatalf("CreateSale: %v", err)
	}

	updated, err := svc.UpdateSale(ctx, nil, sale.ID, "Customer Two", "Branch Two")
	if err != nil {
		t.Fatalf("UpdateSale: %v", err)
	}
	if updated.CustomerName != "Customer Two" || updated.BranchName != "Branch Two" {
		t.Fatalf("names not updated: %s / %s", updated.CustomerName, updated.BranchName)
	}
	if got := publisher.names(); got[len(got)-1] != "sale_modified" {
		t.Fatalf("last published event = %v, want sale_modified", got)
	}

	if _, err := svc.UpdateSale(ctx, nil, uuid.New(), "X", "Y"); !domain.IsCode(err, domain.CodeNotFound) {
		t.Fatalf("missing sale error = %v, want not_found code", err)
	}
}

func TestCancelSaleIsIdempotent(t *testing.T) {
	svc, publisher, _ := newTestService(t)
	ctx := context.Background()

	sale, err := svc.CreateSale(ctx, nil, testCreateCommand("S-204"))
	if err != nil {
		t.Fatalf("CreateSale: %v", err)
	}

	cancelled, err := svc.CancelSale(ctx, nil, sale.ID)
	if err != nil {
		t.Fatalf("CancelSale: %v", err)
	}
	if !cancelled.IsCancelled {
		t.Fatal("sale not flagged cancelled")
	}
	firstCount := len(publisher.events)

	if _, err := svc.CancelSale(ctx, nil, sale.ID); err != nil {
		t.Fatalf("second CancelSale: %v", err)
	}
	if len(publisher.events) != firstCount {
		t.Fatalf("second cancel published events: %v", publisher.names())
	}

	// mutations rejected after cancel
	if _, err := svc.UpdateSale(ctx, nil, sale.ID, "X", "Y"); !domain.IsCode(err, domain.CodeInvalidState) {
		t.Fatalf("update after cancel error = %v, want invalid_state code", err)
	}
}

func TestCancelSaleItem(t *testing.T) {
	svc, publisher, _ := newTestService(t)
	ctx := context.Background()

	sale, err := svc.CreateSale(ctx, nil, testCreateCommand("S-205"))
	if err != nil {
		t.Fatalf("CreateSale: %v", err)
	}
	var target *domain.SaleItem
	for _, item := range sale.Items {
		if item.ProductID == "prod-1" {
			target = item
		}
	}
	if target == nil {
		t.Fatal("prod-1 item missing")
	}

	updated, err := svc.CancelSaleItem(ctx, nil, sale.ID, target.ID)
	if err != nil {
		t.Fatalf("CancelSaleItem: %v", err)
	}
	if !updated.TotalAmount.Equal(decimal.RequireFromString("60.00")) {
		t.Fatalf("total after item cancel = %s, want 60.00", updated.TotalAmount)
	}
	if got := publisher.names(); got[len(got)-1] != "sale_item_cancelled" {
		t.Fatalf("last published event = %v, want sale_item_cancelled", got)
	}

	loaded, err := svc.GetSale(ctx, nil, sale.ID)
	if err != nil {
		t.Fatalf("GetSale: %v", err)
	}
	if !loaded.TotalAmount.Equal(decimal.RequireFromString("60.00")) {
		t.Fatalf("persisted total = %s, want 60.00", loaded.TotalAmount)
	}
}

func TestDeleteSale(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	sale, err := svc.CreateSale(ctx, nil, testCreateCommand("S-206"))
	if err != nil {
		t.Fatalf("CreateSale: %v", err)
	}

	found, err := svc.DeleteSale(ctx, nil, sale.ID)
	if err != nil {
		t.Fatalf("DeleteSale: %v", err)
	}
	if !found {
		t.Fatal("DeleteSale reported not found for existing sale")
	}
	found, err = svc.DeleteSale(ctx, nil, sale.ID)
	if err != nil {
		t.Fatalf("DeleteSale second call: %v", err)
	}
	if found {
		t.Fatal("DeleteSale reported found for missing sale")
	}
}

func TestListSalesPaging(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := svc.CreateSale(ctx, nil, testCreateCommand(fmt.Sprintf("S-21%d", i))); err != nil {
			t.Fatalf("CreateSale: %v", err)
		}
	}

	result, err := svc.ListSales(ctx, nil, 2, 2)
	if err != nil {
		t.Fatalf("ListSales: %v", err)
	}
	if result.CurrentPage != 2 || result.PageSize != 2 {
		t.Fatalf("paging meta = %d/%d, want 2/2", result.CurrentPage, result.PageSize)
	}
	if result.TotalCount != 5 {
		t.Fatalf("total count = %d, want 5", result.TotalCount)
	}
	if result.TotalPages != 3 {
		t.Fatalf("total pages = %d, want 3", result.TotalPages)
	}
	if len(result.Data) != 2 {
		t.Fatalf("page size = %d, want 2", len(result.Data))
	}
}

func TestListSalesByCustomerAndBranch(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	cmd := testCreateCommand("S-220")
	cmd.CustomerID = "cust-a"
	if _, err := svc.CreateSale(ctx, nil, cmd); err != nil {
		t.Fatalf("CreateSale: %v", err)
	}
	other := testCreateCommand("S-221")
	other.CustomerID = "cust-b"
	if _, err := svc.CreateSale(ctx, nil, other); err != nil {
		t.Fatalf("CreateSale: %v", err)
	}

	byCustomer, err := svc.ListSalesByCustomer(ctx, nil, "cust-a")
	if err != nil {
		t.Fatalf("ListSalesByCustomer: %v", err)
	}
	if len(byCustomer) != 1 || byCustomer[0].SaleNumber != "S-220" {
		t.Fatalf("unexpected customer result: %+v", byCustomer)
	}

	byBranch, err := svc.ListSalesByBranch(ctx, nil, "branch-1")
	if err != nil {
		t.Fatalf("ListSalesByBranch: %v", err)
	}
	if len(byBranch) != 2 {
		t.Fatalf("branch results = %d, want 2", len(byBranch))
	}
}
