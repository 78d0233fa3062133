package testhelpers

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nbv3/kip-ventory/internal/models"
)

// TestDB holds the database connection for testing
type TestDB struct {
	Pool    *pgxpool.Pool
	Cleanup func() error
}

// SetupTestDB creates a pooled connection for testing
func SetupTestDB(t *testing.T, connString string) *TestDB {
	t.Helper()

	if connString == "" {
		connString = os.Getenv("TEST_DATABASE_URL")
		if connString == "" {
			connString = "host=localhost port=5432 user=postgres password=postgres dbname=kipventory_test sslmode=disable"
		}
	}

	pool, err := pgxpool.New(context.Background(), connString)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	return &TestDB{
		Pool: pool,
		Cleanup: func() error {
			pool.Close()
			return nil
		},
	}
}

// SetupTestUser creates a user row for testing and returns it.
func SetupTestUser(t *testing.T, db *TestDB, username string, admin bool) *models.User {
	t.Helper()

	user := &models.User{
		ID:          uuid.New(),
		Username:    username,
		Email:       username + "@example.com",
		FirstName:   "Test",
		LastName:    "User",
		IsStaff:     admin,
		IsSuperuser: false,
		Subscribed:  admin,
		CreatedAt:   time.Now(),
	}
	query := `
		INSERT INTO users (id, username, email, first_name, last_name, is_staff, is_superuser, subscribed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (username) DO NOTHING
	`
	_, err := db.Pool.Exec(context.Background(), query,
		user.ID, user.Username, user.Email, user.FirstName, user.LastName,
		user.IsStaff, user.IsSuperuser, user.Subscribed, user.CreatedAt)
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// SetupTestItem creates an item row for testing and returns it.
func SetupTestItem(t *testing.T, db *TestDB, name string, quantity int, hasAssets bool) *models.Item {
	t.Helper()

	item := &models.Item{
		ID:           uuid.New(),
		Name:         name,
		ModelNumber:  "TM-100",
		Description:  "Test item description",
		Quantity:     quantity,
		MinimumStock: 1,
		HasAssets:    hasAssets,
		Tags:         []string{"test"},
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	query := `
		INSERT INTO items (id, name, model_number, description, quantity, minimum_stock, has_assets, tags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := db.Pool.Exec(context.Background(), query,
		item.ID, item.Name, item.ModelNumber, item.Description, item.Quantity,
		item.MinimumStock, item.HasAssets, item.Tags, item.CreatedAt, item.UpdatedAt)
	if err != nil {
		t.Fatalf("Failed to create test item: %v", err)
	}

	return item
}

// SetupTestAssets creates n in-stock assets for an item and returns their tags.
func SetupTestAssets(t *testing.T, db *TestDB, itemID uuid.UUID, n int) []string {
	t.Helper()

	tags := make([]string, 0, n)
	query := `
		INSERT INTO assets (id, item_id, tag, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	for i := 0; i < n; i++ {
		tag := uuid.New().String()
		_, err := db.Pool.Exec(context.Background(), query,
			uuid.New(), itemID, tag, models.AssetInStock, time.Now())
		if err != nil {
			t.Fatalf("Failed to create test asset: %v", err)
		}
		tags = append(tags, tag)
	}
	return tags
}
