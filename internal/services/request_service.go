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

const requestCacheTTL = 5 * time.Minute

// RequestService resolves outstanding requests and fulfills approvals.
// Approval is atomic across a request's lines: if any line cannot be
// fulfilled the whole transaction rolls back and a FulfillmentError names
// the failing item.
type RequestService interface {
	GetRequest(ctx context.Context, requestID uuid.UUID) (*models.Request, error)
	ListRequests(ctx context.Context, filter *repositories.RequestSearchFilter) ([]*models.Request, error)
	ResolveRequest(ctx context.Context, requestID uuid.UUID, decision models.RequestDecision, closedComment string) (*models.Request, error)
	// DeleteRequest lets a requester withdraw their own request while it is
	// still outstanding.
	DeleteRequest(ctx context.Context, requestID uuid.UUID) error
	// DirectDisburse creates a request on behalf of a user that is born
	// approved and fulfilled in the same transaction.
	DirectDisburse(ctx context.Context, targetUserID uuid.UUID, lines []*models.RequestedItem, comment string) (*models.Request, error)
}

type requestService struct {
	db                repositories.DB
	requestsRepo      repositories.RequestsRepository
	itemsRepo         repositories.ItemsRepository
	assetsRepo        repositories.AssetsRepository
	loansRepo         repositories.LoansRepository
	disbursementsRepo repositories.DisbursementsRepository
	usersRepo         repositories.UsersRepository
	logsRepo          repositories.LogsRepository
	cache             caching.CacheService
	notifications     NotificationService
}

func NewRequestService(
	db repositories.DB,
	requestsRepo repositories.RequestsRepository,
	itemsRepo repositories.ItemsRepository,
	assetsRepo repositories.AssetsRepository,
	loansRepo repositories.LoansRepository,
	disbursementsRepo repositories.DisbursementsRepository,
	usersRepo repositories.UsersRepository,
	logsRepo repositories.LogsRepository,
	cache caching.CacheService,
	notifications NotificationService,
) RequestService {
	return &requestService{
		db:                db,
		requestsRepo:      requestsRepo,
		itemsRepo:         itemsRepo,
		assetsRepo:        assetsRepo,
		loansRepo:         loansRepo,
		disbursementsRepo: disbursementsRepo,
		usersRepo:         usersRepo,
		logsRepo:          logsRepo,
		cache:             cache,
		notifications:     notifications,
	}
}

// GetRequest returns a request with its lines. Non-administrators may only
// read their own requests.
func (s *requestService) GetRequest(ctx context.Context, requestID uuid.UUID) (*models.Request, error) {
	actor, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	if cached, err := s.cache.GetRequest(ctx, requestID); err != nil {
		log.Printf("WARN: request cache read failed: %v", err)
	} else if cached != nil {
		if !actor.IsAdmin() && cached.RequesterID != actor.ID {
			return nil, &common.PermissionError{Reason: "requests are only visible to their requester and administrators"}
		}
		return cached, nil
	}

	request, err := s.requestsRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &common.NotFoundError{Resource: "request", Key: requestID.String()}
		}
		return nil, err
	}
	if !actor.IsAdmin() && request.RequesterID != actor.ID {
		return nil, &common.PermissionError{Reason: "requests are only visible to their requester and administrators"}
	}

	request.Items, err = s.requestsRepo.ListRequestedItems(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetRequest(ctx, request, requestCacheTTL); err != nil {
		log.Printf("WARN: request cache write failed: %v", err)
	}
	return request, nil
}

func (s *requestService) ListRequests(ctx context.Context, filter *repositories.RequestSearchFilter) ([]*models.Request, error) {
	actor, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if filter == nil {
		filter = &repositories.RequestSearchFilter{}
	}
	if !actor.IsAdmin() {
		filter.RequesterID = &actor.ID
	}
	return s.requestsRepo.List(ctx, filter)
}

func (s *requestService) ResolveRequest(ctx context.Context, requestID uuid.UUID, decision models.RequestDecision, closedComment string) (*models.Request, error) {
	actor, err := requireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if decision != models.DecisionApprove && decision != models.DecisionDeny {
		return nil, &common.ValidationError{Field: "decision", Message: fmt.Sprintf("unknown decision %q", decision)}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	requests := s.requestsRepo.WithTx(tx)
	request, err := requests.GetByIDForUpdate(ctx, requestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &common.NotFoundError{Resource: "request", Key: requestID.String()}
		}
		return nil, err
	}
	if request.Status != models.RequestOutstanding {
		return nil, &common.InvalidStateError{
			Entity: "request",
			State:  string(request.Status),
			Reason: "only outstanding requests can be resolved",
		}
	}

	request.Items, err = requests.ListRequestedItems(ctx, requestID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	request.AdministratorID = &actor.ID
	request.DateClosed = &now
	request.ClosedComment = closedComment

	logs := s.logsRepo.WithTx(tx)
	var touchedItems []uuid.UUID

	switch decision {
	case models.DecisionDeny:
		request.Status = models.RequestDenied
		for _, line := range request.Items {
			if err := logs.Create(ctx, &models.Log{
				ItemID:           &line.ItemID,
				RequestID:        &request.ID,
				InitiatingUserID: actor.ID,
				AffectedUserID:   &request.RequesterID,
				Category:         models.LogRequestItemDenial,
				Quantity:         &line.Quantity,
				Message:          fmt.Sprintf("%s denied %d unit(s): %s", actor.Username, line.Quantity, closedComment),
			}); err != nil {
				return nil, err
			}
		}
	case models.DecisionApprove:
		request.Status = models.RequestApproved
		for _, line := range request.Items {
			if err := s.fulfillLine(ctx, tx, actor, request, line); err != nil {
				return nil, err
			}
			touchedItems = append(touchedItems, line.ItemID)
		}
	}

	if err := requests.Update(ctx, request); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	for _, itemID := range touchedItems {
		s.invalidateItem(ctx, itemID)
	}
	s.invalidateRequest(ctx, request.ID)
	s.notifyResolved(ctx, request)
	return request, nil
}

// fulfillLine applies one requested item inside the approval transaction.
// Loans never move aggregate stock; disbursements decrement it. For
// asset-tracked items each fulfilled unit claims a specific in-stock asset.
func (s *requestService) fulfillLine(ctx context.Context, tx pgx.Tx, actor *models.User, request *models.Request, line *models.RequestedItem) error {
	items := s.itemsRepo.WithTx(tx)
	item, err := items.GetByIDForUpdate(ctx, line.ItemID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &common.FulfillmentError{Item: line.ItemID.String(), Err: &common.NotFoundError{Resource: "item", Key: line.ItemID.String()}}
		}
		return err
	}

	var claimed []*models.Asset
	if item.HasAssets {
		assets := s.assetsRepo.WithTx(tx)
		claimed, err = assets.SelectAvailableForUpdate(ctx, item.ID, line.Quantity)
		if err != nil {
			return err
		}
		if len(claimed) < line.Quantity {
			return &common.FulfillmentError{Item: item.Name, Err: &common.InsufficientStockError{
				Item: item.Name, Available: len(claimed), Requested: line.Quantity,
			}}
		}
	}

	switch line.RequestType {
	case models.RequestTypeLoan:
		if err := s.fulfillLoan(ctx, tx, request, line, claimed); err != nil {
			return err
		}
	case models.RequestTypeDisbursement:
		if err := s.fulfillDisbursement(ctx, tx, item, request, line, claimed); err != nil {
			return err
		}
	default:
		return &common.FulfillmentError{Item: item.Name, Err: &common.ValidationError{
			Field: "request_type", Message: fmt.Sprintf("unknown request type %q", line.RequestType),
		}}
	}

	category := models.LogApprovalLoan
	if line.RequestType == models.RequestTypeDisbursement {
		category = models.LogApprovalDisburse
	}
	return s.logsRepo.WithTx(tx).Create(ctx, &models.Log{
		ItemID:           &item.ID,
		RequestID:        &request.ID,
		InitiatingUserID: actor.ID,
		AffectedUserID:   &request.RequesterID,
		Category:         category,
		Quantity:         &line.Quantity,
		Message:          fmt.Sprintf("%s approved %d unit(s) of %q as %s", actor.Username, line.Quantity, item.Name, line.RequestType),
	})
}

func (s *requestService) fulfillLoan(ctx context.Context, tx pgx.Tx, request *models.Request, line *models.RequestedItem, claimed []*models.Asset) error {
	loans := s.loansRepo.WithTx(tx)
	now := time.Now()

	if len(claimed) > 0 {
		assets := s.assetsRepo.WithTx(tx)
		for _, asset := range claimed {
			assetID := asset.ID
			if err := loans.Create(ctx, &models.Loan{
				ID:             uuid.New(),
				RequestID:      request.ID,
				ItemID:         line.ItemID,
				AssetID:        &assetID,
				QuantityLoaned: 1,
				DateLoaned:     now,
				DueDate:        line.DueDate,
			}); err != nil {
				return err
			}
			if err := assets.UpdateStatus(ctx, asset.ID, models.AssetLoaned); err != nil {
				return err
			}
		}
		return nil
	}

	return loans.Create(ctx, &models.Loan{
		ID:             uuid.New(),
		RequestID:      request.ID,
		ItemID:         line.ItemID,
		QuantityLoaned: line.Quantity,
		DateLoaned:     now,
		DueDate:        line.DueDate,
	})
}

func (s *requestService) fulfillDisbursement(ctx context.Context, tx pgx.Tx, item *models.Item, request *models.Request, line *models.RequestedItem, claimed []*models.Asset) error {
	items := s.itemsRepo.WithTx(tx)
	disbursements := s.disbursementsRepo.WithTx(tx)
	now := time.Now()

	if len(claimed) > 0 {
		assets := s.assetsRepo.WithTx(tx)
		for _, asset := range claimed {
			assetID := asset.ID
			if err := disbursements.Create(ctx, &models.Disbursement{
				ID:        uuid.New(),
				RequestID: request.ID,
				ItemID:    item.ID,
				AssetID:   &assetID,
				Quantity:  1,
				Date:      now,
			}); err != nil {
				return err
			}
			if err := assets.UpdateStatus(ctx, asset.ID, models.AssetDisbursed); err != nil {
				return err
			}
		}
		count, err := s.assetsRepo.WithTx(tx).CountActive(ctx, item.ID)
		if err != nil {
			return err
		}
		return items.UpdateQuantity(ctx, item.ID, count)
	}

	if item.Quantity < line.Quantity {
		return &common.FulfillmentError{Item: item.Name, Err: &common.InsufficientStockError{
			Item: item.Name, Available: item.Quantity, Requested: line.Quantity,
		}}
	}
	if err := items.UpdateQuantity(ctx, item.ID, item.Quantity-line.Quantity); err != nil {
		return err
	}
	return disbursements.CreateOrIncrement(ctx, &models.Disbursement{
		ID:        uuid.New(),
		RequestID: request.ID,
		ItemID:    item.ID,
		Quantity:  line.Quantity,
		Date:      now,
	})
}

func (s *requestService) DeleteRequest(ctx context.Context, requestID uuid.UUID) error {
	actor, err := requireUser(ctx)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	requests := s.requestsRepo.WithTx(tx)
	request, err := requests.GetByIDForUpdate(ctx, requestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &common.NotFoundError{Resource: "request", Key: requestID.String()}
		}
		return err
	}
	if request.RequesterID != actor.ID {
		return &common.PermissionError{Reason: "only the requester may withdraw a request"}
	}
	if request.Status != models.RequestOutstanding {
		return &common.PermissionError{Reason: "resolved requests are immutable to the requester"}
	}
	if err := requests.Delete(ctx, requestID); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	s.invalidateRequest(ctx, requestID)
	return nil
}

func (s *requestService) DirectDisburse(ctx context.Context, targetUserID uuid.UUID, lines []*models.RequestedItem, comment string) (*models.Request, error) {
	actor, err := requireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, &common.ValidationError{Field: "items", Message: "at least one item is required"}
	}
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, &common.InvalidQuantityError{Quantity: line.Quantity, Reason: "disbursement quantity must be positive"}
		}
	}

	target, err := s.usersRepo.GetByID(ctx, targetUserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &common.NotFoundError{Resource: "user", Key: targetUserID.String()}
		}
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	now := time.Now()
	request := &models.Request{
		ID:              uuid.New(),
		RequesterID:     target.ID,
		AdministratorID: &actor.ID,
		Status:          models.RequestApproved,
		DateOpen:        now,
		OpenComment:     comment,
		DateClosed:      &now,
		ClosedComment:   comment,
	}
	requests := s.requestsRepo.WithTx(tx)
	if err := requests.Create(ctx, request); err != nil {
		return nil, err
	}

	var touchedItems []uuid.UUID
	for _, line := range lines {
		line.ID = uuid.New()
		line.RequestID = request.ID
		line.RequestType = models.RequestTypeDisbursement
		line.DueDate = nil
		if err := requests.CreateRequestedItem(ctx, line); err != nil {
			return nil, err
		}
		if err := s.fulfillLine(ctx, tx, actor, request, line); err != nil {
			return nil, err
		}
		request.Items = append(request.Items, line)
		touchedItems = append(touchedItems, line.ItemID)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	for _, itemID := range touchedItems {
		s.invalidateItem(ctx, itemID)
	}
	s.notifications.RequestResolved(ctx, request, target)
	return request, nil
}

func (s *requestService) notifyResolved(ctx context.Context, request *models.Request) {
	requester, err := s.usersRepo.GetByID(ctx, request.RequesterID)
	if err != nil {
		log.Printf("WARN: requester lookup for notification failed: %v", err)
		return
	}
	s.notifications.RequestResolved(ctx, request, requester)
}

func (s *requestService) invalidateItem(ctx context.Context, itemID uuid.UUID) {
	if err := s.cache.DeleteItem(ctx, itemID); err != nil {
		log.Printf("WARN: item cache invalidation failed: %v", err)
	}
}

func (s *requestService) invalidateRequest(ctx context.Context, requestID uuid.UUID) {
	if err := s.cache.DeleteRequest(ctx, requestID); err != nil {
		log.Printf("WARN: request cache invalidation failed: %v", err)
	}
}
