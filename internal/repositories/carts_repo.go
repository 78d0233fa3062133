package repositories

import (
	"context"

	"github.com/nbv3/kip-ventory/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type CartsRepository interface {
	WithTx(tx pgx.Tx) CartsRepository

	Upsert(ctx context.Context, cartItem *models.CartItem) error
	GetByOwnerAndItem(ctx context.Context, ownerID, itemID uuid.UUID) (*models.CartItem, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.CartItem, error)
	Delete(ctx context.Context, ownerID, itemID uuid.UUID) error
	DeleteByOwner(ctx context.Context, ownerID uuid.UUID) error
}

type cartsRepo struct {
	db Querier
}

func NewCartsRepo(db Querier) CartsRepository {
	return &cartsRepo{db: db}
}

func (r *cartsRepo) WithTx(tx pgx.Tx) CartsRepository {
	return &cartsRepo{db: tx}
}

const cartColumns = `id, owner_id, item_id, quantity, request_type, due_date, created_at`

// Upsert inserts a cart entry, folding into the existing (owner, item) row if
// one is already staged.
func (r *cartsRepo) Upsert(ctx context.Context, cartItem *models.CartItem) error {
	query := `
		INSERT INTO cart_items (id, owner_id, item_id, quantity, request_type, due_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (owner_id, item_id) DO UPDATE
		SET quantity = EXCLUDED.quantity, request_type = EXCLUDED.request_type, due_date = EXCLUDED.due_date
	`
	_, err := r.db.Exec(ctx, query, cartItem.ID, cartItem.OwnerID, cartItem.ItemID, cartItem.Quantity, cartItem.RequestType, cartItem.DueDate)
	return err
}

func (r *cartsRepo) GetByOwnerAndItem(ctx context.Context, ownerID, itemID uuid.UUID) (*models.CartItem, error) {
	cartItem := &models.CartItem{}
	query := `SELECT ` + cartColumns + ` FROM cart_items WHERE owner_id = $1 AND item_id = $2`
	err := r.db.QueryRow(ctx, query, ownerID, itemID).Scan(&cartItem.ID, &cartItem.OwnerID, &cartItem.ItemID, &cartItem.Quantity, &cartItem.RequestType, &cartItem.DueDate, &cartItem.CreatedAt)
	if err != nil {
		return nil, err
	}
	return cartItem, nil
}

func (r *cartsRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.CartItem, error) {
	query := `SELECT ` + cartColumns + ` FROM cart_items WHERE owner_id = $1 ORDER BY created_at`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cartItems []*models.CartItem
	for rows.Next() {
		cartItem := &models.CartItem{}
		if err := rows.Scan(&cartItem.ID, &cartItem.OwnerID, &cartItem.ItemID, &cartItem.Quantity, &cartItem.RequestType, &cartItem.DueDate, &cartItem.CreatedAt); err != nil {
			return nil, err
		}
		cartItems = append(cartItems, cartItem)
	}
	return cartItems, rows.Err()
}

func (r *cartsRepo) Delete(ctx context.Context, ownerID, itemID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE owner_id = $1 AND item_id = $2`, ownerID, itemID)
	return err
}

func (r *cartsRepo) DeleteByOwner(ctx context.Context, ownerID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE owner_id = $1`, ownerID)
	return err
}
