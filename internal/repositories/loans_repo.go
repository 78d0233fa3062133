package repositories

import (
	"context"

	"github.com/nbv3/kip-ventory/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type LoansRepository interface {
	WithTx(tx pgx.Tx) LoansRepository

	Create(ctx context.Context, loan *models.Loan) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Loan, error)
	// GetByIDForUpdate locks the loan row so concurrent returns and
	// conversions against the same loan serialize.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Loan, error)
	Update(ctx context.Context, loan *models.Loan) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]*models.Loan, error)
	ListByItem(ctx context.Context, itemID uuid.UUID) ([]*models.Loan, error)
	ListByRequester(ctx context.Context, requesterID uuid.UUID) ([]*models.Loan, error)
	// ListOpen returns loans with unreturned quantity, for reminder jobs.
	ListOpen(ctx context.Context) ([]*models.Loan, error)
	CountOpenByItem(ctx context.Context, itemID uuid.UUID) (int, error)
}

type loansRepo struct {
	db Querier
}

func NewLoansRepo(db Querier) LoansRepository {
	return &loansRepo{db: db}
}

func (r *loansRepo) WithTx(tx pgx.Tx) LoansRepository {
	return &loansRepo{db: tx}
}

const loanColumns = `id, request_id, item_id, asset_id, quantity_loaned, quantity_returned, date_loaned, date_returned, due_date`

func (r *loansRepo) Create(ctx context.Context, loan *models.Loan) error {
	query := `
		INSERT INTO loans (id, request_id, item_id, asset_id, quantity_loaned, quantity_returned, date_loaned, date_returned, due_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.Exec(ctx, query, loan.ID, loan.RequestID, loan.ItemID, loan.AssetID, loan.QuantityLoaned, loan.QuantityReturned, loan.DateLoaned, loan.DateReturned, loan.DueDate)
	return err
}

func (r *loansRepo) scan(row pgx.Row) (*models.Loan, error) {
	loan := &models.Loan{}
	err := row.Scan(&loan.ID, &loan.RequestID, &loan.ItemID, &loan.AssetID, &loan.QuantityLoaned, &loan.QuantityReturned, &loan.DateLoaned, &loan.DateReturned, &loan.DueDate)
	if err != nil {
		return nil, err
	}
	return loan, nil
}

func (r *loansRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Loan, error) {
	return r.scan(r.db.QueryRow(ctx, `SELECT `+loanColumns+` FROM loans WHERE id = $1`, id))
}

func (r *loansRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Loan, error) {
	return r.scan(r.db.QueryRow(ctx, `SELECT `+loanColumns+` FROM loans WHERE id = $1 FOR UPDATE`, id))
}

func (r *loansRepo) Update(ctx context.Context, loan *models.Loan) error {
	query := `
		UPDATE loans
		SET quantity_loaned = $1, quantity_returned = $2, date_returned = $3, due_date = $4
		WHERE id = $5
	`
	_, err := r.db.Exec(ctx, query, loan.QuantityLoaned, loan.QuantityReturned, loan.DateReturned, loan.DueDate, loan.ID)
	return err
}

// Delete removes a fully drained loan. Backfill requests referencing it are
// cascade-deleted: the loan they petition against no longer exists.
func (r *loansRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM backfill_requests WHERE loan_id = $1`, id); err != nil {
		return err
	}
	_, err := r.db.Exec(ctx, `DELETE FROM loans WHERE id = $1`, id)
	return err
}

func (r *loansRepo) collect(rows pgx.Rows) ([]*models.Loan, error) {
	var loans []*models.Loan
	for rows.Next() {
		loan := &models.Loan{}
		if err := rows.Scan(&loan.ID, &loan.RequestID, &loan.ItemID, &loan.AssetID, &loan.QuantityLoaned, &loan.QuantityReturned, &loan.DateLoaned, &loan.DateReturned, &loan.DueDate); err != nil {
			return nil, err
		}
		loans = append(loans, loan)
	}
	return loans, rows.Err()
}

func (r *loansRepo) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]*models.Loan, error) {
	rows, err := r.db.Query(ctx, `SELECT `+loanColumns+` FROM loans WHERE request_id = $1 ORDER BY date_loaned`, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(rows)
}

func (r *loansRepo) ListByItem(ctx context.Context, itemID uuid.UUID) ([]*models.Loan, error) {
	rows, err := r.db.Query(ctx, `SELECT `+loanColumns+` FROM loans WHERE item_id = $1 ORDER BY date_loaned`, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(rows)
}

func (r *loansRepo) ListByRequester(ctx context.Context, requesterID uuid.UUID) ([]*models.Loan, error) {
	query := `
		SELECT l.id, l.request_id, l.item_id, l.asset_id, l.quantity_loaned, l.quantity_returned, l.date_loaned, l.date_returned, l.due_date
		FROM loans l
		JOIN requests req ON req.id = l.request_id
		WHERE req.requester_id = $1
		ORDER BY l.date_loaned
	`
	rows, err := r.db.Query(ctx, query, requesterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(rows)
}

func (r *loansRepo) ListOpen(ctx context.Context) ([]*models.Loan, error) {
	rows, err := r.db.Query(ctx, `SELECT `+loanColumns+` FROM loans WHERE quantity_returned < quantity_loaned ORDER BY date_loaned`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(rows)
}

func (r *loansRepo) CountOpenByItem(ctx context.Context, itemID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM loans WHERE item_id = $1 AND quantity_returned < quantity_loaned`, itemID).Scan(&count)
	return count, err
}
