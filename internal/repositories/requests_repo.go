package repositories

import (
	"context"
	"fmt"

	"github.com/nbv3/kip-ventory/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// RequestSearchFilter narrows request listings.
type RequestSearchFilter struct {
	RequesterID *uuid.UUID
	Status      models.RequestStatus
	Limit       int
	Offset      int
}

type RequestsRepository interface {
	WithTx(tx pgx.Tx) RequestsRepository

	Create(ctx context.Context, request *models.Request) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Request, error)
	// GetByIDForUpdate locks the request row so two concurrent resolutions
	// of the same request serialize.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Request, error)
	Update(ctx context.Context, request *models.Request) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter *RequestSearchFilter) ([]*models.Request, error)
	CountOutstandingByItem(ctx context.Context, itemID uuid.UUID) (int, error)

	CreateRequestedItem(ctx context.Context, requestedItem *models.RequestedItem) error
	ListRequestedItems(ctx context.Context, requestID uuid.UUID) ([]*models.RequestedItem, error)
}

type requestsRepo struct {
	db Querier
}

func NewRequestsRepo(db Querier) RequestsRepository {
	return &requestsRepo{db: db}
}

func (r *requestsRepo) WithTx(tx pgx.Tx) RequestsRepository {
	return &requestsRepo{db: tx}
}

const requestColumns = `id, requester_id, administrator_id, status, date_open, open_comment, date_closed, closed_comment`

func (r *requestsRepo) Create(ctx context.Context, request *models.Request) error {
	query := `
		INSERT INTO requests (id, requester_id, administrator_id, status, date_open, open_comment, date_closed, closed_comment)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query, request.ID, request.RequesterID, request.AdministratorID, request.Status, request.DateOpen, request.OpenComment, request.DateClosed, request.ClosedComment)
	return err
}

func (r *requestsRepo) scan(row pgx.Row) (*models.Request, error) {
	request := &models.Request{}
	err := row.Scan(&request.ID, &request.RequesterID, &request.AdministratorID, &request.Status, &request.DateOpen, &request.OpenComment, &request.DateClosed, &request.ClosedComment)
	if err != nil {
		return nil, err
	}
	return request, nil
}

func (r *requestsRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Request, error) {
	return r.scan(r.db.QueryRow(ctx, `SELECT `+requestColumns+` FROM requests WHERE id = $1`, id))
}

func (r *requestsRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Request, error) {
	return r.scan(r.db.QueryRow(ctx, `SELECT `+requestColumns+` FROM requests WHERE id = $1 FOR UPDATE`, id))
}

func (r *requestsRepo) Update(ctx context.Context, request *models.Request) error {
	query := `
		UPDATE requests
		SET administrator_id = $1, status = $2, date_closed = $3, closed_comment = $4
		WHERE id = $5
	`
	_, err := r.db.Exec(ctx, query, request.AdministratorID, request.Status, request.DateClosed, request.ClosedComment, request.ID)
	return err
}

// Delete removes a request and everything it owns. Requested items, loans,
// disbursements and backfill records reference the request with ON DELETE
// CASCADE; this makes the ownership rule explicit regardless.
func (r *requestsRepo) Delete(ctx context.Context, id uuid.UUID) error {
	for _, query := range []string{
		`DELETE FROM backfill_requests WHERE loan_id IN (SELECT id FROM loans WHERE request_id = $1)`,
		`DELETE FROM backfills WHERE request_id = $1`,
		`DELETE FROM loans WHERE request_id = $1`,
		`DELETE FROM disbursements WHERE request_id = $1`,
		`DELETE FROM requested_items WHERE request_id = $1`,
		`DELETE FROM requests WHERE id = $1`,
	} {
		if _, err := r.db.Exec(ctx, query, id); err != nil {
			return err
		}
	}
	return nil
}

func (r *requestsRepo) List(ctx context.Context, filter *RequestSearchFilter) ([]*models.Request, error) {
	if filter == nil {
		filter = &RequestSearchFilter{}
	}
	if filter.Limit == 0 {
		filter.Limit = 50
	}

	queryBase := `SELECT ` + requestColumns + ` FROM requests WHERE 1=1`
	args := []any{}
	n := 0

	if filter.RequesterID != nil {
		n++
		queryBase += fmt.Sprintf(` AND requester_id = $%d`, n)
		args = append(args, *filter.RequesterID)
	}
	if filter.Status != "" {
		n++
		queryBase += fmt.Sprintf(` AND status = $%d`, n)
		args = append(args, filter.Status)
	}

	queryBase += ` ORDER BY date_open DESC`
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

	var requests []*models.Request
	for rows.Next() {
		request := &models.Request{}
		if err := rows.Scan(&request.ID, &request.RequesterID, &request.AdministratorID, &request.Status, &request.DateOpen, &request.OpenComment, &request.DateClosed, &request.ClosedComment); err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}
	return requests, rows.Err()
}

func (r *requestsRepo) CountOutstandingByItem(ctx context.Context, itemID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM requested_items ri
		JOIN requests req ON req.id = ri.request_id
		WHERE ri.item_id = $1 AND req.status = $2
	`
	var count int
	err := r.db.QueryRow(ctx, query, itemID, models.RequestOutstanding).Scan(&count)
	return count, err
}

func (r *requestsRepo) CreateRequestedItem(ctx context.Context, requestedItem *models.RequestedItem) error {
	query := `
		INSERT INTO requested_items (id, request_id, item_id, quantity, request_type, due_date)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query, requestedItem.ID, requestedItem.RequestID, requestedItem.ItemID, requestedItem.Quantity, requestedItem.RequestType, requestedItem.DueDate)
	return err
}

func (r *requestsRepo) ListRequestedItems(ctx context.Context, requestID uuid.UUID) ([]*models.RequestedItem, error) {
	query := `
		SELECT id, request_id, item_id, quantity, request_type, due_date
		FROM requested_items
		WHERE request_id = $1
		ORDER BY id
	`
	rows, err := r.db.Query(ctx, query, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requestedItems []*models.RequestedItem
	for rows.Next() {
		requestedItem := &models.RequestedItem{}
		if err := rows.Scan(&requestedItem.ID, &requestedItem.RequestID, &requestedItem.ItemID, &requestedItem.Quantity, &requestedItem.RequestType, &requestedItem.DueDate); err != nil {
			return nil, err
		}
		requestedItems = append(requestedItems, requestedItem)
	}
	return requestedItems, rows.Err()
}
