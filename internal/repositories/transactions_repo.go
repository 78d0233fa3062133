package repositories

import (
	"context"

	"github.com/nbv3/kip-ventory/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type TransactionsRepository interface {
	WithTx(tx pgx.Tx) TransactionsRepository

	Create(ctx context.Context, transaction *models.Transaction) error
	ListByItem(ctx context.Context, itemID uuid.UUID, limit, offset int) ([]*models.Transaction, error)
	List(ctx context.Context, limit, offset int) ([]*models.Transaction, error)
}

type transactionsRepo struct {
	db Querier
}

func NewTransactionsRepo(db Querier) TransactionsRepository {
	return &transactionsRepo{db: db}
}

func (r *transactionsRepo) WithTx(tx pgx.Tx) TransactionsRepository {
	return &transactionsRepo{db: tx}
}

const transactionColumns = `id, item_id, administrator_id, category, quantity, comment, date`

func (r *transactionsRepo) Create(ctx context.Context, transaction *models.Transaction) error {
	query := `
		INSERT INTO transactions (id, item_id, administrator_id, category, quantity, comment, date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query, transaction.ID, transaction.ItemID, transaction.AdministratorID, transaction.Category, transaction.Quantity, transaction.Comment, transaction.Date)
	return err
}

func (r *transactionsRepo) collect(rows pgx.Rows) ([]*models.Transaction, error) {
	var transactions []*models.Transaction
	for rows.Next() {
		transaction := &models.Transaction{}
		if err := rows.Scan(&transaction.ID, &transaction.ItemID, &transaction.AdministratorID, &transaction.Category, &transaction.Quantity, &transaction.Comment, &transaction.Date); err != nil {
			return nil, err
		}
		transactions = append(transactions, transaction)
	}
	return transactions, rows.Err()
}

func (r *transactionsRepo) ListByItem(ctx context.Context, itemID uuid.UUID, limit, offset int) ([]*models.Transaction, error) {
	if limit == 0 {
		limit = 50
	}
	rows, err := r.db.Query(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE item_id = $1 ORDER BY date DESC LIMIT $2 OFFSET $3`, itemID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(rows)
}

func (r *transactionsRepo) List(ctx context.Context, limit, offset int) ([]*models.Transaction, error) {
	if limit == 0 {
		limit = 50
	}
	rows, err := r.db.Query(ctx, `SELECT `+transactionColumns+` FROM transactions ORDER BY date DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(rows)
}
