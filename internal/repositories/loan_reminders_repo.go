package repositories

import (
	"context"
	"time"

	"github.com/nbv3/kip-ventory/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type LoanRemindersRepository interface {
	WithTx(tx pgx.Tx) LoanRemindersRepository

	Create(ctx context.Context, reminder *models.LoanReminder) error
	Update(ctx context.Context, reminder *models.LoanReminder) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*models.LoanReminder, error)
	// ListPending returns unsent reminders whose send date is on or
	// before asOf.
	ListPending(ctx context.Context, asOf time.Time) ([]*models.LoanReminder, error)
	MarkSent(ctx context.Context, id uuid.UUID) error
}

type loanRemindersRepo struct {
	db Querier
}

func NewLoanRemindersRepo(db Querier) LoanRemindersRepository {
	return &loanRemindersRepo{db: db}
}

func (r *loanRemindersRepo) WithTx(tx pgx.Tx) LoanRemindersRepository {
	return &loanRemindersRepo{db: tx}
}

func (r *loanRemindersRepo) Create(ctx context.Context, reminder *models.LoanReminder) error {
	query := `
		INSERT INTO loan_reminders (id, subject, body, send_date, sent)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query, reminder.ID, reminder.Subject, reminder.Body, reminder.SendDate, reminder.Sent)
	return err
}

func (r *loanRemindersRepo) Update(ctx context.Context, reminder *models.LoanReminder) error {
	query := `UPDATE loan_reminders SET subject = $1, body = $2, send_date = $3 WHERE id = $4`
	_, err := r.db.Exec(ctx, query, reminder.Subject, reminder.Body, reminder.SendDate, reminder.ID)
	return err
}

func (r *loanRemindersRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM loan_reminders WHERE id = $1`, id)
	return err
}

func (r *loanRemindersRepo) List(ctx context.Context) ([]*models.LoanReminder, error) {
	rows, err := r.db.Query(ctx, `SELECT id, subject, body, send_date, sent FROM loan_reminders ORDER BY send_date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(rows)
}

func (r *loanRemindersRepo) ListPending(ctx context.Context, asOf time.Time) ([]*models.LoanReminder, error) {
	rows, err := r.db.Query(ctx, `SELECT id, subject, body, send_date, sent FROM loan_reminders WHERE NOT sent AND send_date <= $1 ORDER BY send_date`, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(rows)
}

func (r *loanRemindersRepo) MarkSent(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `UPDATE loan_reminders SET sent = TRUE WHERE id = $1`, id)
	return err
}

func (r *loanRemindersRepo) collect(rows pgx.Rows) ([]*models.LoanReminder, error) {
	var reminders []*models.LoanReminder
	for rows.Next() {
		reminder := &models.LoanReminder{}
		if err := rows.Scan(&reminder.ID, &reminder.Subject, &reminder.Body, &reminder.SendDate, &reminder.Sent); err != nil {
			return nil, err
		}
		reminders = append(reminders, reminder)
	}
	return reminders, rows.Err()
}
