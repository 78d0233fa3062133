package repositories

import (
	"context"
	"fmt"

	"github.com/nbv3/kip-ventory/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ItemsRepository interface {
	WithTx(tx pgx.Tx) ItemsRepository

	Create(ctx context.Context, item *models.Item) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error)
	GetByName(ctx context.Context, name string) (*models.Item, error)
	// GetByIDForUpdate locks the item row for the duration of the enclosing
	// transaction so concurrent stock mutations serialize.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Item, error)
	Update(ctx context.Context, item *models.Item) error
	UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter *models.ItemSearchFilter) ([]*models.Item, error)
	SetTags(ctx context.Context, itemID uuid.UUID, tags []string) error
	ListTags(ctx context.Context) ([]string, error)

	CreateCustomField(ctx context.Context, field *models.CustomField) error
	ListCustomFields(ctx context.Context, includePrivate bool) ([]*models.CustomField, error)
	DeleteCustomField(ctx context.Context, name string) error
	SetFieldValue(ctx context.Context, value *models.CustomFieldValue) error
	GetFieldValues(ctx context.Context, itemID uuid.UUID, includePrivate bool) ([]*models.CustomFieldValue, error)
}

type itemsRepo struct {
	db Querier
}

func NewItemsRepo(db Querier) ItemsRepository {
	return &itemsRepo{db: db}
}

func (r *itemsRepo) WithTx(tx pgx.Tx) ItemsRepository {
	return &itemsRepo{db: tx}
}

func (r *itemsRepo) Create(ctx context.Context, item *models.Item) error {
	query := `
		INSERT INTO items (id, name, model_number, description, quantity, minimum_stock, has_assets, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, item.ID, item.Name, item.ModelNumber, item.Description, item.Quantity, item.MinimumStock, item.HasAssets)
	if err != nil {
		return err
	}
	return r.SetTags(ctx, item.ID, item.Tags)
}

const itemColumns = `id, name, model_number, description, quantity, minimum_stock, has_assets, created_at, updated_at`

func (r *itemsRepo) scanItem(row pgx.Row) (*models.Item, error) {
	item := &models.Item{}
	err := row.Scan(&item.ID, &item.Name, &item.ModelNumber, &item.Description, &item.Quantity, &item.MinimumStock, &item.HasAssets, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *itemsRepo) loadTags(ctx context.Context, item *models.Item) error {
	rows, err := r.db.Query(ctx, `SELECT tag FROM item_tags WHERE item_id = $1 ORDER BY tag`, item.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return err
		}
		item.Tags = append(item.Tags, tag)
	}
	return rows.Err()
}

func (r *itemsRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	item, err := r.scanItem(r.db.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadTags(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (r *itemsRepo) GetByName(ctx context.Context, name string) (*models.Item, error) {
	item, err := r.scanItem(r.db.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE name = $1`, name))
	if err != nil {
		return nil, err
	}
	if err := r.loadTags(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (r *itemsRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	return r.scanItem(r.db.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1 FOR UPDATE`, id))
}

func (r *itemsRepo) Update(ctx context.Context, item *models.Item) error {
	query := `
		UPDATE items
		SET name = $1, model_number = $2, description = $3, quantity = $4, minimum_stock = $5, has_assets = $6, updated_at = NOW()
		WHERE id = $7
	`
	_, err := r.db.Exec(ctx, query, item.Name, item.ModelNumber, item.Description, item.Quantity, item.MinimumStock, item.HasAssets, item.ID)
	if err != nil {
		return err
	}
	return r.SetTags(ctx, item.ID, item.Tags)
}

func (r *itemsRepo) UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) error {
	_, err := r.db.Exec(ctx, `UPDATE items SET quantity = $1, updated_at = NOW() WHERE id = $2`, quantity, id)
	return err
}

func (r *itemsRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM items WHERE id = $1`, id)
	return err
}

func (r *itemsRepo) List(ctx context.Context, filter *models.ItemSearchFilter) ([]*models.Item, error) {
	if filter == nil {
		filter = &models.ItemSearchFilter{}
	}
	if filter.Limit == 0 {
		filter.Limit = 50
	}

	queryBase := `SELECT ` + itemColumns + ` FROM items WHERE 1=1`
	args := []any{}
	n := 0

	if filter.Query != "" {
		n++
		queryBase += fmt.Sprintf(` AND (name ILIKE $%d OR model_number ILIKE $%d OR description ILIKE $%d)`, n, n, n)
		args = append(args, "%"+filter.Query+"%")
	}
	if len(filter.IncludeTags) > 0 {
		n++
		queryBase += fmt.Sprintf(` AND EXISTS (SELECT 1 FROM item_tags t WHERE t.item_id = items.id AND t.tag = ANY($%d))`, n)
		args = append(args, filter.IncludeTags)
	}
	if len(filter.ExcludeTags) > 0 {
		n++
		queryBase += fmt.Sprintf(` AND NOT EXISTS (SELECT 1 FROM item_tags t WHERE t.item_id = items.id AND t.tag = ANY($%d))`, n)
		args = append(args, filter.ExcludeTags)
	}
	if filter.LowStock {
		queryBase += ` AND quantity < minimum_stock`
	}

	queryBase += ` ORDER BY name`
	n++
	queryBase += fmt.Sprintf(` LIMIT $%d`, n)
	args = append(args, filter.Limit)
	if filter.Offset > 0 {
		n++
		queryBase += fmt.Sprintf(` OFFSET $%d`, n)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.Query(ctx, queryBase, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.Item
	for rows.Next() {
		item := &models.Item{}
		if err := rows.Scan(&item.ID, &item.Name, &item.ModelNumber, &item.Description, &item.Quantity, &item.MinimumStock, &item.HasAssets, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, item := range items {
		if err := r.loadTags(ctx, item); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (r *itemsRepo) SetTags(ctx context.Context, itemID uuid.UUID, tags []string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM item_tags WHERE item_id = $1`, itemID); err != nil {
		return err
	}
	for _, tag := range tags {
		if _, err := r.db.Exec(ctx, `INSERT INTO item_tags (item_id, tag) VALUES ($1, $2) ON CONFLICT DO NOTHING`, itemID, tag); err != nil {
			return err
		}
	}
	return nil
}

func (r *itemsRepo) ListTags(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT tag FROM item_tags ORDER BY tag`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

func (r *itemsRepo) CreateCustomField(ctx context.Context, field *models.CustomField) error {
	_, err := r.db.Exec(ctx, `INSERT INTO custom_fields (name, field_type, private) VALUES ($1, $2, $3)`, field.Name, field.FieldType, field.Private)
	return err
}

func (r *itemsRepo) ListCustomFields(ctx context.Context, includePrivate bool) ([]*models.CustomField, error) {
	query := `SELECT name, field_type, private FROM custom_fields`
	if !includePrivate {
		query += ` WHERE private = FALSE`
	}
	query += ` ORDER BY name`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var fields []*models.CustomField
	for rows.Next() {
		field := &models.CustomField{}
		if err := rows.Scan(&field.Name, &field.FieldType, &field.Private); err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}
	return fields, rows.Err()
}

func (r *itemsRepo) DeleteCustomField(ctx context.Context, name string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM custom_field_values WHERE field = $1`, name); err != nil {
		return err
	}
	_, err := r.db.Exec(ctx, `DELETE FROM custom_fields WHERE name = $1`, name)
	return err
}

func (r *itemsRepo) SetFieldValue(ctx context.Context, value *models.CustomFieldValue) error {
	query := `
		INSERT INTO custom_field_values (item_id, field, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (item_id, field) DO UPDATE SET value = EXCLUDED.value
	`
	_, err := r.db.Exec(ctx, query, value.ItemID, value.Field, value.Value)
	return err
}

func (r *itemsRepo) GetFieldValues(ctx context.Context, itemID uuid.UUID, includePrivate bool) ([]*models.CustomFieldValue, error) {
	query := `
		SELECT v.item_id, v.field, v.value
		FROM custom_field_values v
		JOIN custom_fields f ON f.name = v.field
		WHERE v.item_id = $1
	`
	if !includePrivate {
		query += ` AND f.private = FALSE`
	}
	rows, err := r.db.Query(ctx, query, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var values []*models.CustomFieldValue
	for rows.Next() {
		value := &models.CustomFieldValue{}
		if err := rows.Scan(&value.ItemID, &value.Field, &value.Value); err != nil {
			return nil, err
		}
		values = append(values, value)
	}
	return values, rows.Err()
}
