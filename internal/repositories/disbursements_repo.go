package repositories

import (
	"context"
	"errors"

	"github.com/nbv3/kip-ventory/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type DisbursementsRepository interface {
	WithTx(tx pgx.Tx) DisbursementsRepository

	Create(ctx context.Context, disbursement *models.Disbursement) error
	// CreateOrIncrement folds quantity into the existing asset-less
	// (request, item) disbursement if one exists, creating it otherwise.
	CreateOrIncrement(ctx context.Context, disbursement *models.Disbursement) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Disbursement, error)
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]*models.Disbursement, error)
	ListByItem(ctx context.Context, itemID uuid.UUID) ([]*models.Disbursement, error)
}

type disbursementsRepo struct {
	db Querier
}

func NewDisbursementsRepo(db Querier) DisbursementsRepository {
	return &disbursementsRepo{db: db}
}

func (r *disbursementsRepo) WithTx(tx pgx.Tx) DisbursementsRepository {
	return &disbursementsRepo{db: tx}
}

const disbursementColumns = `id, request_id, item_id, asset_id, quantity, date`

func (r *disbursementsRepo) Create(ctx context.Context, disbursement *models.Disbursement) error {
	query := `
		INSERT INTO disbursements (id, request_id, item_id, asset_id, quantity, date)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query, disbursement.ID, disbursement.RequestID, disbursement.ItemID, disbursement.AssetID, disbursement.Quantity, disbursement.Date)
	return err
}

func (r *disbursementsRepo) CreateOrIncrement(ctx context.Context, disbursement *models.Disbursement) error {
	// Asset-scoped disbursements are always distinct records.
	if disbursement.AssetID != nil {
		return r.Create(ctx, disbursement)
	}

	query := `SELECT id, quantity FROM disbursements WHERE request_id = $1 AND item_id = $2 AND asset_id IS NULL`
	var existingID uuid.UUID
	var existingQuantity int
	err := r.db.QueryRow(ctx, query, disbursement.RequestID, disbursement.ItemID).Scan(&existingID, &existingQuantity)
	if errors.Is(err, pgx.ErrNoRows) {
		return r.Create(ctx, disbursement)
	}
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, `UPDATE disbursements SET quantity = $1, date = $2 WHERE id = $3`, existingQuantity+disbursement.Quantity, disbursement.Date, existingID)
	return err
}

func (r *disbursementsRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Disbursement, error) {
	disbursement := &models.Disbursement{}
	err := r.db.QueryRow(ctx, `SELECT `+disbursementColumns+` FROM disbursements WHERE id = $1`, id).
		Scan(&disbursement.ID, &disbursement.RequestID, &disbursement.ItemID, &disbursement.AssetID, &disbursement.Quantity, &disbursement.Date)
	if err != nil {
		return nil, err
	}
	return disbursement, nil
}

func (r *disbursementsRepo) collect(rows pgx.Rows) ([]*models.Disbursement, error) {
	var disbursements []*models.Disbursement
	for rows.Next() {
		disbursement := &models.Disbursement{}
		if err := rows.Scan(&disbursement.ID, &disbursement.RequestID, &disbursement.ItemID, &disbursement.AssetID, &disbursement.Quantity, &disbursement.Date); err != nil {
			return nil, err
		}
		disbursements = append(disbursements, disbursement)
	}
	return disbursements, rows.Err()
}

func (r *disbursementsRepo) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]*models.Disbursement, error) {
	rows, err := r.db.Query(ctx, `SELECT `+disbursementColumns+` FROM disbursements WHERE request_id = $1 ORDER BY date`, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(rows)
}

func (r *disbursementsRepo) ListByItem(ctx context.Context, itemID uuid.UUID) ([]*models.Disbursement, error) {
	rows, err := r.db.Query(ctx, `SELECT `+disbursementColumns+` FROM disbursements WHERE item_id = $1 ORDER BY date`, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(rows)
}
