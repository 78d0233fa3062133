package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/nbv3/kip-ventory/internal/caching"
	"github.com/nbv3/kip-ventory/internal/common"
	"github.com/nbv3/kip-ventory/internal/models"
	"github.com/nbv3/kip-ventory/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const itemCacheTTL = 5 * time.Minute

// CatalogService manages the item catalog: items, tags, custom fields,
// per-unit assets and administrative stock adjustments.
type CatalogService interface {
	CreateItem(ctx context.Context, item *models.Item) error
	GetItem(ctx context.Context, itemID uuid.UUID) (*models.Item, error)
	UpdateItem(ctx context.Context, item *models.Item) error
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
	SearchItems(ctx context.Context, filter *models.ItemSearchFilter) ([]*models.Item, error)
	ListTags(ctx context.Context) ([]string, error)

	CreateCustomField(ctx context.Context, field *models.CustomField) error
	DeleteCustomField(ctx context.Context, name string) error
	ListCustomFields(ctx context.Context) ([]*models.CustomField, error)
	SetFieldValue(ctx context.Context, value *models.CustomFieldValue) error
	GetFieldValues(ctx context.Context, itemID uuid.UUID) ([]*models.CustomFieldValue, error)

	CreateAsset(ctx context.Context, asset *models.Asset) error
	DeleteAsset(ctx context.Context, assetID uuid.UUID) error
	ListAssets(ctx context.Context, itemID uuid.UUID, status models.AssetStatus) ([]*models.Asset, error)
	GetAssetByTag(ctx context.Context, tag string) (*models.Asset, error)

	// CreateTransaction records an administrative stock adjustment and
	// applies it to the item's quantity in the same transaction.
	CreateTransaction(ctx context.Context, transaction *models.Transaction) error
	ListTransactions(ctx context.Context, itemID *uuid.UUID, limit, offset int) ([]*models.Transaction, error)
}

type catalogService struct {
	db               repositories.DB
	itemsRepo        repositories.ItemsRepository
	assetsRepo       repositories.AssetsRepository
	transactionsRepo repositories.TransactionsRepository
	requestsRepo     repositories.RequestsRepository
	loansRepo        repositories.LoansRepository
	logsRepo         repositories.LogsRepository
	cache            caching.CacheService
}

func NewCatalogService(
	db repositories.DB,
	itemsRepo repositories.ItemsRepository,
	assetsRepo repositories.AssetsRepository,
	transactionsRepo repositories.TransactionsRepository,
	requestsRepo repositories.RequestsRepository,
	loansRepo repositories.LoansRepository,
	logsRepo repositories.LogsRepository,
	cache caching.CacheService,
) CatalogService {
	return &catalogService{
		db:               db,
		itemsRepo:        itemsRepo,
		assetsRepo:       assetsRepo,
		transactionsRepo: transactionsRepo,
		requestsRepo:     requestsRepo,
		loansRepo:        loansRepo,
		logsRepo:         logsRepo,
		cache:            cache,
	}
}

func (s *catalogService) CreateItem(ctx context.Context, item *models.Item) error {
	actor, err := requireAdmin(ctx)
	if err != nil {
		return err
	}
	if item.Name == "" {
		return &common.ValidationError{Field: "name", Message: "must not be empty"}
	}
	if item.Quantity < 0 {
		return &common.ValidationError{Field: "quantity", Message: "must not be negative"}
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	items := s.itemsRepo.WithTx(tx)
	if err := items.Create(ctx, item); err != nil {
		return err
	}

	// Asset-tracked items get one tagged asset per unit of initial stock.
	if item.HasAssets {
		assets := s.assetsRepo.WithTx(tx)
		for i := 0; i < item.Quantity; i++ {
			if err := assets.Create(ctx, newAsset(item.ID)); err != nil {
				return err
			}
		}
	}

	if err := s.logsRepo.WithTx(tx).Create(ctx, &models.Log{
		ItemID:           &item.ID,
		InitiatingUserID: actor.ID,
		Category:         models.LogItemCreation,
		Quantity:         &item.Quantity,
		Message:          fmt.Sprintf("%s created item %q with %d units", actor.Username, item.Name, item.Quantity),
	}); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *catalogService) GetItem(ctx context.Context, itemID uuid.UUID) (*models.Item, error) {
	if cached, err := s.cache.GetItem(ctx, itemID); err != nil {
		log.Printf("WARN: item cache read failed: %v", err)
	} else if cached != nil {
		return cached, nil
	}

	item, err := s.itemsRepo.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &common.NotFoundError{Resource: "item", Key: itemID.String()}
		}
		return nil, err
	}

	if err := s.cache.SetItem(ctx, item, itemCacheTTL); err != nil {
		log.Printf("WARN: item cache write failed: %v", err)
	}
	return item, nil
}

func (s *catalogService) UpdateItem(ctx context.Context, item *models.Item) error {
	actor, err := requireAdmin(ctx)
	if err != nil {
		return err
	}
	if item.Name == "" {
		return &common.ValidationError{Field: "name", Message: "must not be empty"}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	items := s.itemsRepo.WithTx(tx)
	existing, err := items.GetByIDForUpdate(ctx, item.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &common.NotFoundError{Resource: "item", Key: item.ID.String()}
		}
		return err
	}

	// Quantity moves through transactions and fulfillment, not edits. For
	// asset-tracked items it always derives from the asset count.
	item.Quantity = existing.Quantity
	item.HasAssets = existing.HasAssets

	if err := items.Update(ctx, item); err != nil {
		return err
	}
	if err := s.logsRepo.WithTx(tx).Create(ctx, &models.Log{
		ItemID:           &item.ID,
		InitiatingUserID: actor.ID,
		Category:         models.LogItemModification,
		Message:          fmt.Sprintf("%s edited item %q", actor.Username, item.Name),
	}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	s.invalidateItem(ctx, item.ID)
	return nil
}

// DeleteItem refuses to delete an item that outstanding requests or open
// loans still reference; those must be resolved first so their history is
// not silently discarded.
func (s *catalogService) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	actor, err := requireAdmin(ctx)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	items := s.itemsRepo.WithTx(tx)
	item, err := items.GetByIDForUpdate(ctx, itemID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &common.NotFoundError{Resource: "item", Key: itemID.String()}
		}
		return err
	}

	outstanding, err := s.requestsRepo.WithTx(tx).CountOutstandingByItem(ctx, itemID)
	if err != nil {
		return err
	}
	if outstanding > 0 {
		return &common.InvalidStateError{
			Entity: "item",
			State:  "referenced",
			Reason: fmt.Sprintf("%d outstanding request(s) reference %q; resolve them before deleting", outstanding, item.Name),
		}
	}
	openLoans, err := s.loansRepo.WithTx(tx).CountOpenByItem(ctx, itemID)
	if err != nil {
		return err
	}
	if openLoans > 0 {
		return &common.InvalidStateError{
			Entity: "item",
			State:  "referenced",
			Reason: fmt.Sprintf("%d open loan(s) reference %q; close them before deleting", openLoans, item.Name),
		}
	}

	if err := items.Delete(ctx, itemID); err != nil {
		return err
	}
	if err := s.logsRepo.WithTx(tx).Create(ctx, &models.Log{
		InitiatingUserID: actor.ID,
		Category:         models.LogItemDeletion,
		Message:          fmt.Sprintf("%s deleted item %q", actor.Username, item.Name),
	}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	s.invalidateItem(ctx, itemID)
	return nil
}

func (s *catalogService) SearchItems(ctx context.Context, filter *models.ItemSearchFilter) ([]*models.Item, error) {
	if filter == nil {
		filter = &models.ItemSearchFilter{}
	}
	return s.itemsRepo.List(ctx, filter)
}

func (s *catalogService) ListTags(ctx context.Context) ([]string, error) {
	return s.itemsRepo.ListTags(ctx)
}

func (s *catalogService) CreateCustomField(ctx context.Context, field *models.CustomField) error {
	if _, err := requireAdmin(ctx); err != nil {
		return err
	}
	if field.Name == "" {
		return &common.ValidationError{Field: "name", Message: "must not be empty"}
	}
	switch field.FieldType {
	case models.FieldShortText, models.FieldLongText, models.FieldInteger, models.FieldFloat:
	default:
		return &common.ValidationError{Field: "field_type", Message: fmt.Sprintf("unknown field type %q", field.FieldType)}
	}
	return s.itemsRepo.CreateCustomField(ctx, field)
}

func (s *catalogService) DeleteCustomField(ctx context.Context, name string) error {
	if _, err := requireAdmin(ctx); err != nil {
		return err
	}
	return s.itemsRepo.DeleteCustomField(ctx, name)
}

// ListCustomFields hides private fields from non-administrators.
func (s *catalogService) ListCustomFields(ctx context.Context) ([]*models.CustomField, error) {
	actor, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	return s.itemsRepo.ListCustomFields(ctx, actor.IsAdmin())
}

func (s *catalogService) SetFieldValue(ctx context.Context, value *models.CustomFieldValue) error {
	if _, err := requireAdmin(ctx); err != nil {
		return err
	}
	if err := s.itemsRepo.SetFieldValue(ctx, value); err != nil {
		return err
	}
	s.invalidateItem(ctx, value.ItemID)
	return nil
}

func (s *catalogService) GetFieldValues(ctx context.Context, itemID uuid.UUID) ([]*models.CustomFieldValue, error) {
	actor, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	return s.itemsRepo.GetFieldValues(ctx, itemID, actor.IsAdmin())
}

func (s *catalogService) CreateAsset(ctx context.Context, asset *models.Asset) error {
	if _, err := requireAdmin(ctx); err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	items := s.itemsRepo.WithTx(tx)
	item, err := items.GetByIDForUpdate(ctx, asset.ItemID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &common.NotFoundError{Resource: "item", Key: asset.ItemID.String()}
		}
		return err
	}
	if !item.HasAssets {
		return &common.InvalidStateError{Entity: "item", State: "aggregate", Reason: "item does not track per-unit assets"}
	}

	if asset.ID == uuid.Nil {
		asset.ID = uuid.New()
	}
	if asset.Tag == "" {
		asset.Tag = asset.ID.String()
	}
	asset.Status = models.AssetInStock

	assets := s.assetsRepo.WithTx(tx)
	if err := assets.Create(ctx, asset); err != nil {
		return err
	}
	if err := s.syncAssetQuantity(ctx, items, assets, item.ID); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	s.invalidateItem(ctx, item.ID)
	return nil
}

func (s *catalogService) DeleteAsset(ctx context.Context, assetID uuid.UUID) error {
	if _, err := requireAdmin(ctx); err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	assets := s.assetsRepo.WithTx(tx)
	asset, err := assets.GetByID(ctx, assetID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &common.NotFoundError{Resource: "asset", Key: assetID.String()}
		}
		return err
	}
	if asset.Status == models.AssetLoaned {
		return &common.InvalidStateError{Entity: "asset", State: string(asset.Status), Reason: "asset is on loan"}
	}

	items := s.itemsRepo.WithTx(tx)
	if _, err := items.GetByIDForUpdate(ctx, asset.ItemID); err != nil {
		return err
	}
	if err := assets.Delete(ctx, assetID); err != nil {
		return err
	}
	if err := s.syncAssetQuantity(ctx, items, assets, asset.ItemID); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	s.invalidateItem(ctx, asset.ItemID)
	return nil
}

func (s *catalogService) ListAssets(ctx context.Context, itemID uuid.UUID, status models.AssetStatus) ([]*models.Asset, error) {
	return s.assetsRepo.ListByItem(ctx, itemID, status)
}

func (s *catalogService) GetAssetByTag(ctx context.Context, tag string) (*models.Asset, error) {
	asset, err := s.assetsRepo.GetByTag(ctx, tag)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &common.NotFoundError{Resource: "asset", Key: tag}
		}
		return nil, err
	}
	return asset, nil
}

func (s *catalogService) CreateTransaction(ctx context.Context, transaction *models.Transaction) error {
	actor, err := requireAdmin(ctx)
	if err != nil {
		return err
	}
	if transaction.Quantity <= 0 {
		return &common.InvalidQuantityError{Quantity: transaction.Quantity, Reason: "adjustment quantity must be positive"}
	}
	if transaction.Category != models.TransactionAcquisition && transaction.Category != models.TransactionLoss {
		return &common.ValidationError{Field: "category", Message: fmt.Sprintf("unknown category %q", transaction.Category)}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	items := s.itemsRepo.WithTx(tx)
	item, err := items.GetByIDForUpdate(ctx, transaction.ItemID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &common.NotFoundError{Resource: "item", Key: transaction.ItemID.String()}
		}
		return err
	}

	assets := s.assetsRepo.WithTx(tx)
	switch transaction.Category {
	case models.TransactionAcquisition:
		if item.HasAssets {
			for i := 0; i < transaction.Quantity; i++ {
				if err := assets.Create(ctx, newAsset(item.ID)); err != nil {
					return err
				}
			}
			if err := s.syncAssetQuantity(ctx, items, assets, item.ID); err != nil {
				return err
			}
		} else {
			if err := items.UpdateQuantity(ctx, item.ID, item.Quantity+transaction.Quantity); err != nil {
				return err
			}
		}
	case models.TransactionLoss:
		if item.HasAssets {
			claimed, err := assets.SelectAvailableForUpdate(ctx, item.ID, transaction.Quantity)
			if err != nil {
				return err
			}
			if len(claimed) < transaction.Quantity {
				return &common.InsufficientStockError{Item: item.Name, Available: len(claimed), Requested: transaction.Quantity}
			}
			for _, asset := range claimed {
				if err := assets.Delete(ctx, asset.ID); err != nil {
					return err
				}
			}
			if err := s.syncAssetQuantity(ctx, items, assets, item.ID); err != nil {
				return err
			}
		} else {
			if item.Quantity < transaction.Quantity {
				return &common.InsufficientStockError{Item: item.Name, Available: item.Quantity, Requested: transaction.Quantity}
			}
			if err := items.UpdateQuantity(ctx, item.ID, item.Quantity-transaction.Quantity); err != nil {
				return err
			}
		}
	}

	transaction.AdministratorID = actor.ID
	if transaction.ID == uuid.Nil {
		transaction.ID = uuid.New()
	}
	if err := s.transactionsRepo.WithTx(tx).Create(ctx, transaction); err != nil {
		return err
	}
	if err := s.logsRepo.WithTx(tx).Create(ctx, &models.Log{
		ItemID:           &item.ID,
		InitiatingUserID: actor.ID,
		Category:         models.LogTransactionCreation,
		Quantity:         &transaction.Quantity,
		Message: fmt.Sprintf("%s recorded %s of %d units of %q: %s",
			actor.Username, transaction.Category, transaction.Quantity, item.Name, transaction.Comment),
	}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	s.invalidateItem(ctx, item.ID)
	return nil
}

func (s *catalogService) ListTransactions(ctx context.Context, itemID *uuid.UUID, limit, offset int) ([]*models.Transaction, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	if itemID != nil {
		return s.transactionsRepo.ListByItem(ctx, *itemID, limit, offset)
	}
	return s.transactionsRepo.List(ctx, limit, offset)
}

// syncAssetQuantity rewrites an asset-tracked item's aggregate quantity from
// its non-disbursed asset count.
func (s *catalogService) syncAssetQuantity(ctx context.Context, items repositories.ItemsRepository, assets repositories.AssetsRepository, itemID uuid.UUID) error {
	count, err := assets.CountActive(ctx, itemID)
	if err != nil {
		return err
	}
	return items.UpdateQuantity(ctx, itemID, count)
}

func (s *catalogService) invalidateItem(ctx context.Context, itemID uuid.UUID) {
	if err := s.cache.DeleteItem(ctx, itemID); err != nil {
		log.Printf("WARN: item cache invalidation failed: %v", err)
	}
}

func newAsset(itemID uuid.UUID) *models.Asset {
	id := uuid.New()
	return &models.Asset{
		ID:     id,
		ItemID: itemID,
		Tag:    id.String(),
		Status: models.AssetInStock,
	}
}
