package repositories

import (
	"context"

	"github.com/nbv3/kip-ventory/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type AssetsRepository interface {
	WithTx(tx pgx.Tx) AssetsRepository

	Create(ctx context.Context, asset *models.Asset) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Asset, error)
	GetByTag(ctx context.Context, tag string) (*models.Asset, error)
	ListByItem(ctx context.Context, itemID uuid.UUID, status models.AssetStatus) ([]*models.Asset, error)
	// SelectAvailableForUpdate locks up to limit in-stock assets of an item
	// so a fulfillment step can claim them without racing a concurrent
	// approval.
	SelectAvailableForUpdate(ctx context.Context, itemID uuid.UUID, limit int) ([]*models.Asset, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.AssetStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountActive(ctx context.Context, itemID uuid.UUID) (int, error)
}

type assetsRepo struct {
	db Querier
}

func NewAssetsRepo(db Querier) AssetsRepository {
	return &assetsRepo{db: db}
}

func (r *assetsRepo) WithTx(tx pgx.Tx) AssetsRepository {
	return &assetsRepo{db: tx}
}

const assetColumns = `id, item_id, tag, status, created_at`

func (r *assetsRepo) Create(ctx context.Context, asset *models.Asset) error {
	query := `
		INSERT INTO assets (id, item_id, tag, status, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`
	_, err := r.db.Exec(ctx, query, asset.ID, asset.ItemID, asset.Tag, asset.Status)
	return err
}

func (r *assetsRepo) scan(row pgx.Row) (*models.Asset, error) {
	asset := &models.Asset{}
	err := row.Scan(&asset.ID, &asset.ItemID, &asset.Tag, &asset.Status, &asset.CreatedAt)
	if err != nil {
		return nil, err
	}
	return asset, nil
}

func (r *assetsRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Asset, error) {
	return r.scan(r.db.QueryRow(ctx, `SELECT `+assetColumns+` FROM assets WHERE id = $1`, id))
}

func (r *assetsRepo) GetByTag(ctx context.Context, tag string) (*models.Asset, error) {
	return r.scan(r.db.QueryRow(ctx, `SELECT `+assetColumns+` FROM assets WHERE tag = $1`, tag))
}

func (r *assetsRepo) ListByItem(ctx context.Context, itemID uuid.UUID, status models.AssetStatus) ([]*models.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE item_id = $1`
	args := []any{itemID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY tag`
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(rows)
}

func (r *assetsRepo) SelectAvailableForUpdate(ctx context.Context, itemID uuid.UUID, limit int) ([]*models.Asset, error) {
	query := `
		SELECT ` + assetColumns + `
		FROM assets
		WHERE item_id = $1 AND status = $2
		ORDER BY tag
		LIMIT $3
		FOR UPDATE
	`
	rows, err := r.db.Query(ctx, query, itemID, models.AssetInStock, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(rows)
}

func (r *assetsRepo) collect(rows pgx.Rows) ([]*models.Asset, error) {
	var assets []*models.Asset
	for rows.Next() {
		asset := &models.Asset{}
		if err := rows.Scan(&asset.ID, &asset.ItemID, &asset.Tag, &asset.Status, &asset.CreatedAt); err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}
	return assets, rows.Err()
}

func (r *assetsRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.AssetStatus) error {
	_, err := r.db.Exec(ctx, `UPDATE assets SET status = $1 WHERE id = $2`, status, id)
	return err
}

func (r *assetsRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM assets WHERE id = $1`, id)
	return err
}

// CountActive counts assets still in custody of the inventory, i.e. not
// disbursed. Loaned assets remain counted because loans do not move stock.
func (r *assetsRepo) CountActive(ctx context.Context, itemID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM assets WHERE item_id = $1 AND status <> $2`, itemID, models.AssetDisbursed).Scan(&count)
	return count, err
}
