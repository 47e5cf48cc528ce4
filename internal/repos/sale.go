package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/devstore/sales-backend/internal/domain"
	"github.com/devstore/sales-backend/internal/logger"
)

// SaleRepo persists Sale aggregates as a whole: headers and items are
// written together, reads preload the item collection.
type SaleRepo interface {
	Create(ctx context.Context, tx *gorm.DB, sale *domain.Sale) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Sale, error)
	GetBySaleNumber(ctx context.Context, tx *gorm.DB, saleNumber string) (*domain.Sale, error)
	List(ctx context.Context, tx *gorm.DB, page, size int) ([]*domain.Sale, error)
	GetByCustomerID(ctx context.Context, tx *gorm.DB, customerID string) ([]*domain.Sale, error)
	GetByBranchID(ctx context.Context, tx *gorm.DB, branchID string) ([]*domain.Sale, error)
	Update(ctx context.Context, tx *gorm.DB, sale *domain.Sale) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) (bool, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
}

type saleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSaleRepo(db *gorm.DB, baseLog *logger.Logger) SaleRepo {
	repoLog := baseLog.With("repo", "SaleRepo")
	return &saleRepo{db: db, log: repoLog}
}

func (sr *saleRepo) Create(ctx context.Context, tx *gorm.DB, sale *domain.Sale) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	if err := transaction.WithContext(ctx).Create(sale).Error; err != nil {
		return err
	}
	return nil
}

func (sr *saleRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Sale, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var sale domain.Sale
	if err := transaction.WithContext(ctx).
		Preload("Items").
		First(&sale, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewError(domain.CodeNotFound, "SaleRepo.GetByID", "sale not found", err)
		}
		return nil, err
	}
	return &sale, nil
}

func (sr *saleRepo) GetBySaleNumber(ctx context.Context, tx *gorm.DB, saleNumber string) (*domain.Sale, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var sale domain.Sale
	if err := transaction.WithContext(ctx).
		Preload("Items").
		First(&sale, "sale_number = ?", saleNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewError(domain.CodeNotFound, "SaleRepo.GetBySaleNumber", "sale not found", err)
		}
		return nil, err
	}
	return &sale, nil
}

func (sr *saleRepo) List(ctx context.Context, tx *gorm.DB, page, size int) ([]*domain.Sale, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 10
	}

	var results []*domain.Sale
	if err := transaction.WithContext(ctx).
		Preload("Items").
		Order("sale_date DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (sr *saleRepo) GetByCustomerID(ctx context.Context, tx *gorm.DB, customerID string) ([]*domain.Sale, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var results []*domain.Sale
	if err := transaction.WithContext(ctx).
		Preload("Items").
		Where("customer_id = ?", customerID).
		Order("sale_date DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (sr *saleRepo) GetByBranchID(ctx context.Context, tx *gorm.DB, branchID string) ([]*domain.Sale, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var results []*domain.Sale
	if err := transaction.WithContext(ctx).
		Preload("Items").
		Where("branch_id = ?", branchID).
		Order("sale_date DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// Update replaces the persisted aggregate with the in-memory one: header
// fields are saved, removed items are deleted, remaining items upserted.
func (sr *saleRepo) Update(ctx context.Context, tx *gorm.DB, sale *domain.Sale) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	return transaction.WithContext(ctx).Transaction(func(txn *gorm.DB) error {
		if err := txn.Omit("Items").Save(sale).Error; err != nil {
			return err
		}

		itemIDs := make([]uuid.UUID, 0, len(sale.Items))
		for _, item := range sale.Items {
			itemIDs = append(itemIDs, item.ID)
		}

		stale := txn.Where("sale_id = ?", sale.ID)
		if len(itemIDs) > 0 {
			stale = stale.Where("id NOT IN ?", itemIDs)
		}
		if err := stale.Delete(&domain.SaleItem{}).Error; err != nil {
			return err
		}

		if len(sale.Items) > 0 {
			if err := txn.Clauses(clause.OnConflict{UpdateAll: true}).Create(&sale.Items).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (sr *saleRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	found := false
	err := transaction.WithContext(ctx).Transaction(func(txn *gorm.DB) error {
		if err := txn.Where("sale_id = ?", id).Delete(&domain.SaleItem{}).Error; err != nil {
			return err
		}
		res := txn.Where("id = ?", id).Delete(&domain.Sale{})
		if res.Error != nil {
			return res.Error
		}
		found = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

func (sr *saleRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&domain.Sale{}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
