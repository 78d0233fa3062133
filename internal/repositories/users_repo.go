package repositories

import (
	"context"

	"github.com/nbv3/kip-ventory/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type UsersRepository interface {
	WithTx(tx pgx.Tx) UsersRepository

	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	List(ctx context.Context, limit, offset int) ([]*models.User, error)
	// ListSubscribedAdmins returns administrators who opted into
	// new-request notifications.
	ListSubscribedAdmins(ctx context.Context) ([]*models.User, error)
}

type usersRepo struct {
	db Querier
}

func NewUsersRepo(db Querier) UsersRepository {
	return &usersRepo{db: db}
}

func (r *usersRepo) WithTx(tx pgx.Tx) UsersRepository {
	return &usersRepo{db: tx}
}

const userColumns = `id, username, email, first_name, last_name, is_staff, is_superuser, subscribed, created_at`

func (r *usersRepo) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, username, email, first_name, last_name, is_staff, is_superuser, subscribed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	`
	_, err := r.db.Exec(ctx, query, user.ID, user.Username, user.Email, user.FirstName, user.LastName, user.IsStaff, user.IsSuperuser, user.Subscribed)
	return err
}

func (r *usersRepo) scan(row pgx.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.FirstName, &user.LastName, &user.IsStaff, &user.IsSuperuser, &user.Subscribed, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *usersRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.scan(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *usersRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.scan(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

func (r *usersRepo) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET email = $1, first_name = $2, last_name = $3, is_staff = $4, is_superuser = $5, subscribed = $6
		WHERE id = $7
	`
	_, err := r.db.Exec(ctx, query, user.Email, user.FirstName, user.LastName, user.IsStaff, user.IsSuperuser, user.Subscribed, user.ID)
	return err
}

func (r *usersRepo) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	if limit == 0 {
		limit = 50
	}
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY username LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(rows)
}

func (r *usersRepo) ListSubscribedAdmins(ctx context.Context) ([]*models.User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users WHERE (is_staff OR is_superuser) AND subscribed ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(rows)
}

func (r *usersRepo) collect(rows pgx.Rows) ([]*models.User, error) {
	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		if err := rows.Scan(&user.ID, &user.Username, &user.Email, &user.FirstName, &user.LastName, &user.IsStaff, &user.IsSuperuser, &user.Subscribed, &user.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}
