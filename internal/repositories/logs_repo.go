package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/nbv3/kip-ventory/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// LogsRepository is the append-only audit sink. Entries are written inside
// the same transaction as the state change they describe, so an aborted
// operation leaves no trace.
type LogsRepository interface {
	WithTx(tx pgx.Tx) LogsRepository

	Create(ctx context.Context, log *models.Log) error
	List(ctx context.Context, filter *models.LogFilter) ([]*models.Log, error)
}

type logsRepo struct {
	db Querier
}

func NewLogsRepo(db Querier) LogsRepository {
	return &logsRepo{db: db}
}

func (r *logsRepo) WithTx(tx pgx.Tx) LogsRepository {
	return &logsRepo{db: tx}
}

func (r *logsRepo) Create(ctx context.Context, log *models.Log) error {
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	if log.Date.IsZero() {
		log.Date = time.Now()
	}
	query := `
		INSERT INTO logs (id, item_id, request_id, initiating_user_id, affected_user_id, category, quantity, message, date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.Exec(ctx, query, log.ID, log.ItemID, log.RequestID, log.InitiatingUserID, log.AffectedUserID, log.Category, log.Quantity, log.Message, log.Date)
	return err
}

func (r *logsRepo) List(ctx context.Context, filter *models.LogFilter) ([]*models.Log, error) {
	if filter == nil {
		filter = &models.LogFilter{}
	}
	if filter.Limit == 0 {
		filter.Limit = 100
	}

	queryBase := `
		SELECT id, item_id, request_id, initiating_user_id, affected_user_id, category, quantity, message, date
		FROM logs
		WHERE 1=1
	`
	args := []any{}
	n := 0

	if filter.ItemID != nil {
		n++
		queryBase += fmt.Sprintf(` AND item_id = $%d`, n)
		args = append(args, *filter.ItemID)
	}
	if filter.RequestID != nil {
		n++
		queryBase += fmt.Sprintf(` AND request_id = $%d`, n)
		args = append(args, *filter.RequestID)
	}
	if filter.UserID != nil {
		n++
		queryBase += fmt.Sprintf(` AND (initiating_user_id = $%d OR affected_user_id = $%d)`, n, n)
		args = append(args, *filter.UserID)
	}
	if filter.Category != "" {
		n++
		queryBase += fmt.Sprintf(` AND category = $%d`, n)
		args = append(args, filter.Category)
	}
	if filter.From != nil {
		n++
		queryBase += fmt.Sprintf(` AND date >= $%d`, n)
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		n++
		queryBase += fmt.Sprintf(` AND date <= $%d`, n)
		args = append(args, *filter.To)
	}

	queryBase += ` ORDER BY date DESC`
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

	var logs []*models.Log
	for rows.Next() {
		log := &models.Log{}
		if err := rows.Scan(&log.ID, &log.ItemID, &log.RequestID, &log.InitiatingUserID, &log.AffectedUserID, &log.Category, &log.Quantity, &log.Message, &log.Date); err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}
