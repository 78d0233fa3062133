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

// LoanService owns the loan lifecycle after fulfillment: partial returns,
// loan-to-disbursement conversion and the backfill write-off workflow. A
// loan ceases to exist once its unreturned quantity reaches zero, whether
// by return or by conversion; its history survives only in the audit log.
type LoanService interface {
	GetLoan(ctx context.Context, loanID uuid.UUID) (*models.Loan, error)
	ListLoans(ctx context.Context, requestID *uuid.UUID) ([]*models.Loan, error)
	ReturnLoan(ctx context.Context, loanID uuid.UUID, delta int) (*models.Loan, error)
	ConvertLoanToDisbursement(ctx context.Context, loanID uuid.UUID, quantity int) (*models.Disbursement, error)

	CreateBackfillRequest(ctx context.Context, loanID uuid.UUID, requesterComment, receipt string) (*models.BackfillRequest, error)
	ResolveBackfillRequest(ctx context.Context, backfillRequestID uuid.UUID, decision models.RequestDecision, adminComment string) (*models.BackfillRequest, error)
	DeleteBackfillRequest(ctx context.Context, backfillRequestID uuid.UUID) error
	ListBackfillRequests(ctx context.Context, loanID uuid.UUID) ([]*models.BackfillRequest, error)
	ListBackfills(ctx context.Context, requestID uuid.UUID, status models.BackfillStatus) ([]*models.Backfill, error)
	// SatisfyBackfill marks a backfill's replacement items as arrived.
	SatisfyBackfill(ctx context.Context, backfillID uuid.UUID) (*models.Backfill, error)

	CreateLoanReminder(ctx context.Context, reminder *models.LoanReminder) error
	ListLoanReminders(ctx context.Context) ([]*models.LoanReminder, error)
	DeleteLoanReminder(ctx context.Context, reminderID uuid.UUID) error
}

type loanService struct {
	db                repositories.DB
	loansRepo         repositories.LoansRepository
	itemsRepo         repositories.ItemsRepository
	assetsRepo        repositories.AssetsRepository
	disbursementsRepo repositories.DisbursementsRepository
	backfillsRepo     repositories.BackfillsRepository
	requestsRepo      repositories.RequestsRepository
	usersRepo         repositories.UsersRepository
	remindersRepo     repositories.LoanRemindersRepository
	logsRepo          repositories.LogsRepository
	cache             caching.CacheService
	notifications     NotificationService
}

func NewLoanService(
	db repositories.DB,
	loansRepo repositories.LoansRepository,
	itemsRepo repositories.ItemsRepository,
	assetsRepo repositories.AssetsRepository,
	disbursementsRepo repositories.DisbursementsRepository,
	backfillsRepo repositories.BackfillsRepository,
	requestsRepo repositories.RequestsRepository,
	usersRepo repositories.UsersRepository,
	remindersRepo repositories.LoanRemindersRepository,
	logsRepo repositories.LogsRepository,
	cache caching.CacheService,
	notifications NotificationService,
) LoanService {
	return &loanService{
		db:                db,
		loansRepo:         loansRepo,
		itemsRepo:         itemsRepo,
		assetsRepo:        assetsRepo,
		disbursementsRepo: disbursementsRepo,
		backfillsRepo:     backfillsRepo,
		requestsRepo:      requestsRepo,
		usersRepo:         usersRepo,
		remindersRepo:     remindersRepo,
		logsRepo:          logsRepo,
		cache:             cache,
		notifications:     notifications,
	}
}

func (s *loanService) GetLoan(ctx context.Context, loanID uuid.UUID) (*models.Loan, error) {
	actor, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	loan, err := s.loansRepo.GetByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &common.NotFoundError{Resource: "loan", Key: loanID.String()}
		}
		return nil, err
	}
	if !actor.IsAdmin() {
		if _, err := s.requesterOf(ctx, loan, actor); err != nil {
			return nil, err
		}
	}
	return loan, nil
}

func (s *loanService) ListLoans(ctx context.Context, requestID *uuid.UUID) ([]*models.Loan, error) {
	actor, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if requestID != nil {
		request, err := s.requestsRepo.GetByID(ctx, *requestID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, &common.NotFoundError{Resource: "request", Key: requestID.String()}
			}
			return nil, err
		}
		if !actor.IsAdmin() && request.RequesterID != actor.ID {
			return nil, &common.PermissionError{Reason: "loans are only visible to their requester and administrators"}
		}
		return s.loansRepo.ListByRequest(ctx, *requestID)
	}
	if actor.IsAdmin() {
		return s.loansRepo.ListOpen(ctx)
	}
	return s.loansRepo.ListByRequester(ctx, actor.ID)
}

func (s *loanService) ReturnLoan(ctx context.Context, loanID uuid.UUID, delta int) (*models.Loan, error) {
	actor, err := requireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if delta <= 0 {
		return nil, &common.InvalidQuantityError{Quantity: delta, Reason: "return quantity must be positive"}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	loans := s.loansRepo.WithTx(tx)
	loan, err := loans.GetByIDForUpdate(ctx, loanID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &common.NotFoundError{Resource: "loan", Key: loanID.String()}
		}
		return nil, err
	}

	if loan.QuantityReturned+delta > loan.QuantityLoaned {
		return nil, &common.OverReturnError{
			Loaned:   loan.QuantityLoaned,
			Returned: loan.QuantityReturned,
			Delta:    delta,
		}
	}

	loan.QuantityReturned += delta
	if loan.QuantityReturned == loan.QuantityLoaned {
		now := time.Now()
		loan.DateReturned = &now
	}

	if loan.AssetID != nil && loan.Outstanding() == 0 {
		if err := s.assetsRepo.WithTx(tx).UpdateStatus(ctx, *loan.AssetID, models.AssetInStock); err != nil {
			return nil, err
		}
	}

	if err := s.logsRepo.WithTx(tx).Create(ctx, &models.Log{
		ItemID:           &loan.ItemID,
		RequestID:        &loan.RequestID,
		InitiatingUserID: actor.ID,
		Category:         models.LogLoanModify,
		Quantity:         &delta,
		Message:          fmt.Sprintf("%s recorded return of %d unit(s), %d of %d now returned", actor.Username, delta, loan.QuantityReturned, loan.QuantityLoaned),
	}); err != nil {
		return nil, err
	}

	if loan.Outstanding() == 0 {
		if err := loans.Delete(ctx, loan.ID); err != nil {
			return nil, err
		}
	} else {
		if err := loans.Update(ctx, loan); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.notifyLoan(ctx, loan, "Loan returned",
		fmt.Sprintf("%d unit(s) were returned against your loan; %d of %d returned.", delta, loan.QuantityReturned, loan.QuantityLoaned))
	return loan, nil
}

func (s *loanService) ConvertLoanToDisbursement(ctx context.Context, loanID uuid.UUID, quantity int) (*models.Disbursement, error) {
	actor, err := requireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	loans := s.loansRepo.WithTx(tx)
	loan, err := loans.GetByIDForUpdate(ctx, loanID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &common.NotFoundError{Resource: "loan", Key: loanID.String()}
		}
		return nil, err
	}

	if quantity <= 0 || quantity > loan.Outstanding() {
		return nil, &common.InvalidQuantityError{
			Quantity: quantity,
			Reason:   fmt.Sprintf("conversion must be between 1 and the %d unreturned unit(s)", loan.Outstanding()),
		}
	}

	disbursement, err := s.convert(ctx, tx, actor, loan, quantity)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.invalidateItem(ctx, loan.ItemID)
	s.notifyLoan(ctx, loan, "Loan converted to disbursement",
		fmt.Sprintf("%d unit(s) of your loan were converted to a permanent disbursement.", quantity))
	return disbursement, nil
}

// convert performs the shared conversion bookkeeping inside the caller's
// transaction: decrement quantity_loaned, create or grow the disbursement,
// and delete the loan once nothing unreturned remains. Loans never
// decremented aggregate stock, so no stock movement happens here; an
// asset-backed conversion marks the asset disbursed and re-derives the
// item's asset count.
func (s *loanService) convert(ctx context.Context, tx pgx.Tx, actor *models.User, loan *models.Loan, quantity int) (*models.Disbursement, error) {
	disbursement := &models.Disbursement{
		ID:        uuid.New(),
		RequestID: loan.RequestID,
		ItemID:    loan.ItemID,
		AssetID:   loan.AssetID,
		Quantity:  quantity,
		Date:      time.Now(),
	}

	disbursements := s.disbursementsRepo.WithTx(tx)
	if loan.AssetID != nil {
		items := s.itemsRepo.WithTx(tx)
		if _, err := items.GetByIDForUpdate(ctx, loan.ItemID); err != nil {
			return nil, err
		}
		if err := disbursements.Create(ctx, disbursement); err != nil {
			return nil, err
		}
		assets := s.assetsRepo.WithTx(tx)
		if err := assets.UpdateStatus(ctx, *loan.AssetID, models.AssetDisbursed); err != nil {
			return nil, err
		}
		count, err := assets.CountActive(ctx, loan.ItemID)
		if err != nil {
			return nil, err
		}
		if err := items.UpdateQuantity(ctx, loan.ItemID, count); err != nil {
			return nil, err
		}
	} else {
		if err := disbursements.CreateOrIncrement(ctx, disbursement); err != nil {
			return nil, err
		}
	}

	loan.QuantityLoaned -= quantity

	if err := s.logsRepo.WithTx(tx).Create(ctx, &models.Log{
		ItemID:           &loan.ItemID,
		RequestID:        &loan.RequestID,
		InitiatingUserID: actor.ID,
		Category:         models.LogLoanToDisburse,
		Quantity:         &quantity,
		Message:          fmt.Sprintf("%s converted %d loaned unit(s) to a disbursement", actor.Username, quantity),
	}); err != nil {
		return nil, err
	}

	loans := s.loansRepo.WithTx(tx)
	if loan.Outstanding() == 0 {
		if err := loans.Delete(ctx, loan.ID); err != nil {
			return nil, err
		}
	} else {
		if err := loans.Update(ctx, loan); err != nil {
			return nil, err
		}
	}
	return disbursement, nil
}

func (s *loanService) CreateBackfillRequest(ctx context.Context, loanID uuid.UUID, requesterComment, receipt string) (*models.BackfillRequest, error) {
	actor, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	loan, err := s.loansRepo.GetByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &common.NotFoundError{Resource: "loan", Key: loanID.String()}
		}
		return nil, err
	}

	request, err := s.requestsRepo.GetByID(ctx, loan.RequestID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && request.RequesterID != actor.ID {
		return nil, &common.PermissionError{Reason: "only the loan's requester may ask for a backfill"}
	}
	if loan.Outstanding() <= 0 {
		return nil, &common.InvalidStateError{
			Entity: "loan",
			State:  "returned",
			Reason: "nothing unreturned remains to back fill",
		}
	}

	backfillRequest := &models.BackfillRequest{
		ID:               uuid.New(),
		LoanID:           loan.ID,
		Status:           models.RequestOutstanding,
		RequesterComment: requesterComment,
		Receipt:          receipt,
		DateOpen:         time.Now(),
	}
	if err := s.backfillsRepo.CreateBackfillRequest(ctx, backfillRequest); err != nil {
		return nil, err
	}
	return backfillRequest, nil
}

func (s *loanService) ResolveBackfillRequest(ctx context.Context, backfillRequestID uuid.UUID, decision models.RequestDecision, adminComment string) (*models.BackfillRequest, error) {
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

	backfills := s.backfillsRepo.WithTx(tx)
	backfillRequest, err := backfills.GetBackfillRequestForUpdate(ctx, backfillRequestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &common.NotFoundError{Resource: "backfill request", Key: backfillRequestID.String()}
		}
		return nil, err
	}
	if backfillRequest.Status != models.RequestOutstanding {
		return nil, &common.InvalidStateError{
			Entity: "backfill request",
			State:  string(backfillRequest.Status),
			Reason: "only outstanding backfill requests can be resolved",
		}
	}

	now := time.Now()
	backfillRequest.AdminComment = adminComment
	backfillRequest.DateClosed = &now

	loans := s.loansRepo.WithTx(tx)
	loan, err := loans.GetByIDForUpdate(ctx, backfillRequest.LoanID)
	if err != nil {
		return nil, err
	}

	var touchedItem *uuid.UUID
	switch decision {
	case models.DecisionDeny:
		backfillRequest.Status = models.RequestDenied
		if err := backfills.UpdateBackfillRequest(ctx, backfillRequest); err != nil {
			return nil, err
		}
	case models.DecisionApprove:
		backfillRequest.Status = models.RequestApproved
		// Partial backfills are not supported: the backfill always covers
		// the loan's full unreturned remainder at approval time.
		quantity := loan.Outstanding()
		if quantity <= 0 {
			return nil, &common.InvalidStateError{
				Entity: "loan",
				State:  "returned",
				Reason: "nothing unreturned remains to back fill",
			}
		}

		backfill := &models.Backfill{
			ID:               uuid.New(),
			RequestID:        loan.RequestID,
			ItemID:           loan.ItemID,
			Quantity:         quantity,
			RequesterComment: backfillRequest.RequesterComment,
			AdminComment:     adminComment,
			Receipt:          backfillRequest.Receipt,
			Status:           models.BackfillAwaitingItems,
			Date:             now,
		}
		if err := backfills.CreateBackfill(ctx, backfill); err != nil {
			return nil, err
		}
		if err := s.logsRepo.WithTx(tx).Create(ctx, &models.Log{
			ItemID:           &loan.ItemID,
			RequestID:        &loan.RequestID,
			InitiatingUserID: actor.ID,
			Category:         models.LogBackfillApproval,
			Quantity:         &quantity,
			Message:          fmt.Sprintf("%s approved a backfill for %d unreturned unit(s)", actor.Username, quantity),
		}); err != nil {
			return nil, err
		}

		// Same bookkeeping as a loan-to-disbursement conversion. The
		// backfill covers the full remainder, so the loan always ends with
		// nothing unreturned and is deleted, cascading to this backfill
		// request.
		if _, err := s.convert(ctx, tx, actor, loan, quantity); err != nil {
			return nil, err
		}
		touchedItem = &loan.ItemID
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if touchedItem != nil {
		s.invalidateItem(ctx, *touchedItem)
	}
	s.notifyBackfill(ctx, loan, backfillRequest)
	return backfillRequest, nil
}

func (s *loanService) DeleteBackfillRequest(ctx context.Context, backfillRequestID uuid.UUID) error {
	actor, err := requireUser(ctx)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	backfills := s.backfillsRepo.WithTx(tx)
	backfillRequest, err := backfills.GetBackfillRequestForUpdate(ctx, backfillRequestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &common.NotFoundError{Resource: "backfill request", Key: backfillRequestID.String()}
		}
		return err
	}

	loan, err := s.loansRepo.WithTx(tx).GetByID(ctx, backfillRequest.LoanID)
	if err != nil {
		return err
	}
	if _, err := s.requesterOfTx(ctx, tx, loan, actor); err != nil {
		return err
	}
	if backfillRequest.Status != models.RequestOutstanding {
		return &common.PermissionError{Reason: "resolved backfill requests are immutable to the requester"}
	}

	if err := backfills.DeleteBackfillRequest(ctx, backfillRequestID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *loanService) ListBackfillRequests(ctx context.Context, loanID uuid.UUID) ([]*models.BackfillRequest, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	return s.backfillsRepo.ListBackfillRequestsByLoan(ctx, loanID)
}

func (s *loanService) ListBackfills(ctx context.Context, requestID uuid.UUID, status models.BackfillStatus) ([]*models.Backfill, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	return s.backfillsRepo.ListBackfillsByRequest(ctx, requestID, status)
}

func (s *loanService) SatisfyBackfill(ctx context.Context, backfillID uuid.UUID) (*models.Backfill, error) {
	actor, err := requireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	backfills := s.backfillsRepo.WithTx(tx)
	backfill, err := backfills.GetBackfill(ctx, backfillID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &common.NotFoundError{Resource: "backfill", Key: backfillID.String()}
		}
		return nil, err
	}
	if backfill.Status != models.BackfillAwaitingItems {
		return nil, &common.InvalidStateError{
			Entity: "backfill",
			State:  string(backfill.Status),
			Reason: "backfill is already satisfied",
		}
	}

	backfill.Status = models.BackfillSatisfied
	if err := backfills.UpdateBackfill(ctx, backfill); err != nil {
		return nil, err
	}
	if err := s.logsRepo.WithTx(tx).Create(ctx, &models.Log{
		ItemID:           &backfill.ItemID,
		RequestID:        &backfill.RequestID,
		InitiatingUserID: actor.ID,
		Category:         models.LogBackfillSatisfied,
		Quantity:         &backfill.Quantity,
		Message:          fmt.Sprintf("%s marked backfill of %d unit(s) satisfied", actor.Username, backfill.Quantity),
	}); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return backfill, nil
}

func (s *loanService) CreateLoanReminder(ctx context.Context, reminder *models.LoanReminder) error {
	if _, err := requireAdmin(ctx); err != nil {
		return err
	}
	if reminder.Subject == "" {
		return &common.ValidationError{Field: "subject", Message: "must not be empty"}
	}
	if reminder.ID == uuid.Nil {
		reminder.ID = uuid.New()
	}
	return s.remindersRepo.Create(ctx, reminder)
}

func (s *loanService) ListLoanReminders(ctx context.Context) ([]*models.LoanReminder, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	return s.remindersRepo.List(ctx)
}

func (s *loanService) DeleteLoanReminder(ctx context.Context, reminderID uuid.UUID) error {
	if _, err := requireAdmin(ctx); err != nil {
		return err
	}
	return s.remindersRepo.Delete(ctx, reminderID)
}

// requesterOf resolves a loan's requester and enforces ownership for
// non-administrators.
func (s *loanService) requesterOf(ctx context.Context, loan *models.Loan, actor *models.User) (*models.Request, error) {
	request, err := s.requestsRepo.GetByID(ctx, loan.RequestID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && request.RequesterID != actor.ID {
		return nil, &common.PermissionError{Reason: "loans are only visible to their requester and administrators"}
	}
	return request, nil
}

func (s *loanService) requesterOfTx(ctx context.Context, tx pgx.Tx, loan *models.Loan, actor *models.User) (*models.Request, error) {
	request, err := s.requestsRepo.WithTx(tx).GetByID(ctx, loan.RequestID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && request.RequesterID != actor.ID {
		return nil, &common.PermissionError{Reason: "only the loan's requester may withdraw a backfill request"}
	}
	return request, nil
}

func (s *loanService) invalidateItem(ctx context.Context, itemID uuid.UUID) {
	if err := s.cache.DeleteItem(ctx, itemID); err != nil {
		log.Printf("WARN: item cache invalidation failed: %v", err)
	}
}

func (s *loanService) notifyLoan(ctx context.Context, loan *models.Loan, subject, body string) {
	request, err := s.requestsRepo.GetByID(ctx, loan.RequestID)
	if err != nil {
		log.Printf("WARN: request lookup for loan notification failed: %v", err)
		return
	}
	requester, err := s.usersRepo.GetByID(ctx, request.RequesterID)
	if err != nil {
		log.Printf("WARN: requester lookup for loan notification failed: %v", err)
		return
	}
	s.notifications.SendReminder(ctx, &models.LoanReminder{Subject: subject, Body: body}, []*models.User{requester})
}

func (s *loanService) notifyBackfill(ctx context.Context, loan *models.Loan, backfillRequest *models.BackfillRequest) {
	request, err := s.requestsRepo.GetByID(ctx, loan.RequestID)
	if err != nil {
		log.Printf("WARN: request lookup for backfill notification failed: %v", err)
		return
	}
	requester, err := s.usersRepo.GetByID(ctx, request.RequesterID)
	if err != nil {
		log.Printf("WARN: requester lookup for backfill notification failed: %v", err)
		return
	}
	s.notifications.BackfillRequestResolved(ctx, backfillRequest, requester)
}
