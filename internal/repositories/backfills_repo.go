package repositories

import (
	"context"

	"github.com/nbv3/kip-ventory/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type BackfillsRepository interface {
	WithTx(tx pgx.Tx) BackfillsRepository

	CreateBackfill(ctx context.Context, backfill *models.Backfill) error
	GetBackfill(ctx context.Context, id uuid.UUID) (*models.Backfill, error)
	UpdateBackfill(ctx context.Context, backfill *models.Backfill) error
	ListBackfillsByRequest(ctx context.Context, requestID uuid.UUID, status models.BackfillStatus) ([]*models.Backfill, error)

	CreateBackfillRequest(ctx context.Context, backfillRequest *models.BackfillRequest) error
	GetBackfillRequest(ctx context.Context, id uuid.UUID) (*models.BackfillRequest, error)
	// GetBackfillRequestForUpdate locks the row so concurrent resolutions
	// serialize.
	GetBackfillRequestForUpdate(ctx context.Context, id uuid.UUID) (*models.BackfillRequest, error)
	UpdateBackfillRequest(ctx context.Context, backfillRequest *models.BackfillRequest) error
	DeleteBackfillRequest(ctx context.Context, id uuid.UUID) error
	ListBackfillRequestsByRequest(ctx context.Context, requestID uuid.UUID, status models.RequestStatus) ([]*models.BackfillRequest, error)
	ListBackfillRequestsByLoan(ctx context.Context, loanID uuid.UUID) ([]*models.BackfillRequest, error)
}

type backfillsRepo struct {
	db Querier
}

func NewBackfillsRepo(db Querier) BackfillsRepository {
	return &backfillsRepo{db: db}
}

func (r *backfillsRepo) WithTx(tx pgx.Tx) BackfillsRepository {
	return &backfillsRepo{db: tx}
}

const backfillColumns = `id, request_id, item_id, quantity, requester_comment, admin_comment, receipt, status, date`

func (r *backfillsRepo) CreateBackfill(ctx context.Context, backfill *models.Backfill) error {
	query := `
		INSERT INTO backfills (id, request_id, item_id, quantity, requester_comment, admin_comment, receipt, status, date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.Exec(ctx, query, backfill.ID, backfill.RequestID, backfill.ItemID, backfill.Quantity, backfill.RequesterComment, backfill.AdminComment, backfill.Receipt, backfill.Status, backfill.Date)
	return err
}

func (r *backfillsRepo) GetBackfill(ctx context.Context, id uuid.UUID) (*models.Backfill, error) {
	backfill := &models.Backfill{}
	err := r.db.QueryRow(ctx, `SELECT `+backfillColumns+` FROM backfills WHERE id = $1`, id).
		Scan(&backfill.ID, &backfill.RequestID, &backfill.ItemID, &backfill.Quantity, &backfill.RequesterComment, &backfill.AdminComment, &backfill.Receipt, &backfill.Status, &backfill.Date)
	if err != nil {
		return nil, err
	}
	return backfill, nil
}

func (r *backfillsRepo) UpdateBackfill(ctx context.Context, backfill *models.Backfill) error {
	query := `
		UPDATE backfills
		SET admin_comment = $1, receipt = $2, status = $3
		WHERE id = $4
	`
	_, err := r.db.Exec(ctx, query, backfill.AdminComment, backfill.Receipt, backfill.Status, backfill.ID)
	return err
}

func (r *backfillsRepo) ListBackfillsByRequest(ctx context.Context, requestID uuid.UUID, status models.BackfillStatus) ([]*models.Backfill, error) {
	query := `SELECT ` + backfillColumns + ` FROM backfills WHERE request_id = $1`
	args := []any{requestID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY date`
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var backfills []*models.Backfill
	for rows.Next() {
		backfill := &models.Backfill{}
		if err := rows.Scan(&backfill.ID, &backfill.RequestID, &backfill.ItemID, &backfill.Quantity, &backfill.RequesterComment, &backfill.AdminComment, &backfill.Receipt, &backfill.Status, &backfill.Date); err != nil {
			return nil, err
		}
		backfills = append(backfills, backfill)
	}
	return backfills, rows.Err()
}

const backfillRequestColumns = `id, loan_id, status, requester_comment, admin_comment, receipt, date_open, date_closed`

func (r *backfillsRepo) CreateBackfillRequest(ctx context.Context, backfillRequest *models.BackfillRequest) error {
	query := `
		INSERT INTO backfill_requests (id, loan_id, status, requester_comment, admin_comment, receipt, date_open, date_closed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query, backfillRequest.ID, backfillRequest.LoanID, backfillRequest.Status, backfillRequest.RequesterComment, backfillRequest.AdminComment, backfillRequest.Receipt, backfillRequest.DateOpen, backfillRequest.DateClosed)
	return err
}

func (r *backfillsRepo) scanBackfillRequest(row pgx.Row) (*models.BackfillRequest, error) {
	backfillRequest := &models.BackfillRequest{}
	err := row.Scan(&backfillRequest.ID, &backfillRequest.LoanID, &backfillRequest.Status, &backfillRequest.RequesterComment, &backfillRequest.AdminComment, &backfillRequest.Receipt, &backfillRequest.DateOpen, &backfillRequest.DateClosed)
	if err != nil {
		return nil, err
	}
	return backfillRequest, nil
}

func (r *backfillsRepo) GetBackfillRequest(ctx context.Context, id uuid.UUID) (*models.BackfillRequest, error) {
	return r.scanBackfillRequest(r.db.QueryRow(ctx, `SELECT `+backfillRequestColumns+` FROM backfill_requests WHERE id = $1`, id))
}

func (r *backfillsRepo) GetBackfillRequestForUpdate(ctx context.Context, id uuid.UUID) (*models.BackfillRequest, error) {
	return r.scanBackfillRequest(r.db.QueryRow(ctx, `SELECT `+backfillRequestColumns+` FROM backfill_requests WHERE id = $1 FOR UPDATE`, id))
}

func (r *backfillsRepo) UpdateBackfillRequest(ctx context.Context, backfillRequest *models.BackfillRequest) error {
	query := `
		UPDATE backfill_requests
		SET status = $1, requester_comment = $2, admin_comment = $3, receipt = $4, date_closed = $5
		WHERE id = $6
	`
	_, err := r.db.Exec(ctx, query, backfillRequest.Status, backfillRequest.RequesterComment, backfillRequest.AdminComment, backfillRequest.Receipt, backfillRequest.DateClosed, backfillRequest.ID)
	return err
}

func (r *backfillsRepo) DeleteBackfillRequest(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM backfill_requests WHERE id = $1`, id)
	return err
}

func (r *backfillsRepo) ListBackfillRequestsByRequest(ctx context.Context, requestID uuid.UUID, status models.RequestStatus) ([]*models.BackfillRequest, error) {
	query := `
		SELECT br.id, br.loan_id, br.status, br.requester_comment, br.admin_comment, br.receipt, br.date_open, br.date_closed
		FROM backfill_requests br
		JOIN loans l ON l.id = br.loan_id
		WHERE l.request_id = $1
	`
	args := []any{requestID}
	if status != "" {
		query += ` AND br.status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY br.date_open`
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collectBackfillRequests(rows)
}

func (r *backfillsRepo) ListBackfillRequestsByLoan(ctx context.Context, loanID uuid.UUID) ([]*models.BackfillRequest, error) {
	rows, err := r.db.Query(ctx, `SELECT `+backfillRequestColumns+` FROM backfill_requests WHERE loan_id = $1 ORDER BY date_open`, loanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collectBackfillRequests(rows)
}

func (r *backfillsRepo) collectBackfillRequests(rows pgx.Rows) ([]*models.BackfillRequest, error) {
	var backfillRequests []*models.BackfillRequest
	for rows.Next() {
		backfillRequest := &models.BackfillRequest{}
		if err := rows.Scan(&backfillRequest.ID, &backfillRequest.LoanID, &backfillRequest.Status, &backfillRequest.RequesterComment, &backfillRequest.AdminComment, &backfillRequest.Receipt, &backfillRequest.DateOpen, &backfillRequest.DateClosed); err != nil {
			return nil, err
		}
		backfillRequests = append(backfillRequests, backfillRequest)
	}
	return backfillRequests, rows.Err()
}
